package activeapp

import "strings"

// parseWMClass reads a WM_CLASS property value, a pair of NUL terminated
// strings holding the instance and class. The class becomes the identifier
// and names the app unless it is a known browser.
func parseWMClass(value []byte) (App, error) {
	var app App
	for _, part := range strings.Split(string(value), "\x00") {
		if part = strings.TrimSpace(part); part != "" {
			app.Identifier = part
		}
	}
	if app.Identifier == "" {
		return App{}, ErrNoActiveApp
	}
	app.Name = app.Identifier
	if browser, ok := BrowserName(app.Identifier); ok {
		app.Name = browser
	}
	return app, nil
}

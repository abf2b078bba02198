//go:build !darwin && !linux

package activeapp

// NewPlatformResolver returns a resolver that always reports no active app.
func NewPlatformResolver() Resolver {
	return Unsupported{}
}

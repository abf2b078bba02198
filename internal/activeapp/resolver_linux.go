//go:build linux

package activeapp

import (
	"context"
	"fmt"
	"sync"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
)

const activeWindowAtom = "_NET_ACTIVE_WINDOW"

// windowSource reads the X properties the resolver needs.
type windowSource interface {
	ActiveWindow() (xproto.Window, error)
	WMClass(win xproto.Window) ([]byte, error)
	Close()
}

type x11Resolver struct {
	open func() (windowSource, error)

	mu  sync.Mutex
	src windowSource
}

// NewPlatformResolver returns a resolver that reads _NET_ACTIVE_WINDOW and
// WM_CLASS from the X server. The connection is opened on first use and
// reopened after a failed root window query.
func NewPlatformResolver() Resolver {
	return &x11Resolver{open: dialX11}
}

func (r *x11Resolver) ActiveApp(ctx context.Context) (App, error) {
	if err := ctx.Err(); err != nil {
		return App{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.src == nil {
		src, err := r.open()
		if err != nil {
			return App{}, err
		}
		r.src = src
	}
	win, err := r.src.ActiveWindow()
	if err != nil {
		r.src.Close()
		r.src = nil
		return App{}, err
	}
	if win == 0 {
		return App{}, ErrNoActiveApp
	}
	// The window may close between the two queries.
	value, err := r.src.WMClass(win)
	if err != nil {
		return App{}, fmt.Errorf("%w: %v", ErrNoActiveApp, err)
	}
	return parseWMClass(value)
}

type xgbSource struct {
	conn   *xgb.Conn
	root   xproto.Window
	active xproto.Atom
}

func dialX11() (windowSource, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, fmt.Errorf("connect to X server: %w", err)
	}
	reply, err := xproto.InternAtom(conn, true, uint16(len(activeWindowAtom)), activeWindowAtom).Reply()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("intern %s: %w", activeWindowAtom, err)
	}
	return &xgbSource{
		conn:   conn,
		root:   xproto.Setup(conn).DefaultScreen(conn).Root,
		active: reply.Atom,
	}, nil
}

func (s *xgbSource) ActiveWindow() (xproto.Window, error) {
	if s.active == 0 {
		// Window manager without EWMH support.
		return 0, nil
	}
	reply, err := xproto.GetProperty(s.conn, false, s.root, s.active,
		xproto.GetPropertyTypeAny, 0, 1).Reply()
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", activeWindowAtom, err)
	}
	if reply.Format != 32 || len(reply.Value) < 4 {
		return 0, nil
	}
	return xproto.Window(xgb.Get32(reply.Value)), nil
}

func (s *xgbSource) WMClass(win xproto.Window) ([]byte, error) {
	reply, err := xproto.GetProperty(s.conn, false, win, xproto.AtomWmClass,
		xproto.AtomString, 0, 64).Reply()
	if err != nil {
		return nil, fmt.Errorf("read WM_CLASS of window %#x: %w", uint32(win), err)
	}
	return reply.Value, nil
}

func (s *xgbSource) Close() {
	s.conn.Close()
}

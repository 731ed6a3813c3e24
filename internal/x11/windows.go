package x11

import (
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/xwindow"

	"github.com/1broseidon/glport/internal/errstate"
)

// WindowTitle is set on every window glport creates.
const WindowTitle = "glport"

// Window is a top-level X window created for a GL visual.
type Window struct {
	conn *Connection
	win  *xwindow.Window
	cmap xproto.Colormap
}

// CreateWindow creates an unmapped width x height window using visual,
// with its own colormap so visuals other than the root's work.
func (c *Connection) CreateWindow(visual xproto.Visualid, width, height int) (*Window, error) {
	if err := checkSize(width, height); err != nil {
		return nil, err
	}
	conn := c.XUtil.Conn()
	depth, ok := depthForVisual(c.XUtil.Screen(), visual)
	if !ok {
		return nil, errstate.Errorf(errstate.UnknownError, "visual 0x%x is not available on the screen", uint32(visual))
	}

	cmap, err := xproto.NewColormapId(conn)
	if err != nil {
		return nil, errstate.Errorf(errstate.UnknownError, "failed to allocate colormap id: %v", err)
	}
	if err := xproto.CreateColormapChecked(conn, xproto.ColormapAllocNone, cmap, c.Root, visual).Check(); err != nil {
		return nil, errstate.Errorf(errstate.UnknownError, "xcb_create_colormap failed: %v", err)
	}

	win, err := xwindow.Generate(c.XUtil)
	if err != nil {
		xproto.FreeColormap(conn, cmap)
		return nil, errstate.Errorf(errstate.UnknownError, "failed to allocate window id: %v", err)
	}

	mask := uint32(xproto.CwBackPixel | xproto.CwBorderPixel | xproto.CwEventMask | xproto.CwColormap)
	values := []uint32{
		0,
		0,
		xproto.EventMaskExposure | xproto.EventMaskStructureNotify | xproto.EventMaskKeyPress,
		uint32(cmap),
	}
	err = xproto.CreateWindowChecked(conn, depth, win.Id, c.Root,
		0, 0, uint16(width), uint16(height), 0,
		xproto.WindowClassInputOutput, visual, mask, values).Check()
	if err != nil {
		xproto.FreeColormap(conn, cmap)
		return nil, errstate.Errorf(errstate.UnknownError, "xcb_create_window failed: %v", err)
	}

	// Titles are cosmetic; a window manager without EWMH support is fine.
	ewmh.WmNameSet(c.XUtil, win.Id, WindowTitle)
	ewmh.WmWindowTypeSet(c.XUtil, win.Id, []string{"_NET_WM_WINDOW_TYPE_NORMAL"})

	return &Window{conn: c, win: win, cmap: cmap}, nil
}

// ID is the X window id, usable as an EGLNativeWindowType or GLX drawable.
func (w *Window) ID() xproto.Window {
	return w.win.Id
}

// Map shows the window and waits for the server to process the request.
func (w *Window) Map() error {
	w.win.Map()
	w.conn.XUtil.Sync()
	return nil
}

// Resize sets the window size. A window manager may adjust it later.
func (w *Window) Resize(width, height int) error {
	if err := checkSize(width, height); err != nil {
		return err
	}
	w.win.Resize(width, height)
	w.conn.XUtil.Sync()
	return nil
}

// Destroy destroys the window and frees its colormap.
func (w *Window) Destroy() error {
	w.win.Destroy()
	xproto.FreeColormap(w.conn.XUtil.Conn(), w.cmap)
	w.conn.XUtil.Sync()
	return nil
}

// MaxWindowSize is the largest width or height the X protocol can carry.
const MaxWindowSize = 0xffff

func checkSize(width, height int) error {
	if width <= 0 || height <= 0 || width > MaxWindowSize || height > MaxWindowSize {
		return errstate.Errorf(errstate.BadParameter, "window size %dx%d is out of range", width, height)
	}
	return nil
}

// depthForVisual finds the depth a visual belongs to on screen.
func depthForVisual(screen *xproto.ScreenInfo, visual xproto.Visualid) (byte, bool) {
	if screen == nil {
		return 0, false
	}
	if visual == screen.RootVisual {
		return screen.RootDepth, true
	}
	for _, d := range screen.AllowedDepths {
		for _, v := range d.Visuals {
			if v.VisualId == visual {
				return d.Depth, true
			}
		}
	}
	return 0, false
}

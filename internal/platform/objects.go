package platform

import (
	"github.com/1broseidon/glport/internal/errstate"
)

// Display is a connection to the native window system or DRM device.
type Display struct {
	object
	name string
}

// ConnectDisplay opens the named display; an empty name selects the
// backend's default.
func (p *Platform) ConnectDisplay(name string) (*Display, error) {
	if err := p.check(); err != nil {
		return nil, err
	}
	native, err := p.backend.DisplayConnect(name)
	if err != nil {
		return nil, err
	}
	p.displays++
	p.logger.Debug("display connected", "display", name)
	return &Display{object: object{plat: p, native: native}, name: name}, nil
}

// Disconnect closes the display. It fails with BadParameter while configs
// chosen from it are alive.
func (d *Display) Disconnect() error {
	if d == nil || d.destroyed {
		return nil
	}
	if d.children > 0 {
		return errstate.Errorf(errstate.BadParameter, "display still owns %d config(s)", d.children)
	}
	p := d.plat
	err := p.backend.DisplayDisconnect(d.native)
	d.release()
	p.displays--
	p.logger.Debug("display disconnected", "display", d.name, "error", err)
	return err
}

func (d *Display) Name() string        { return d.name }
func (d *Display) Platform() *Platform { return d.plat }
func (d *Display) Native() Native      { return d.native }

// SupportsContextAPI asks the backend whether contexts for api can be
// created on this display.
func (d *Display) SupportsContextAPI(api ContextAPI) (bool, error) {
	if d == nil {
		return false, errstate.Errorf(errstate.BadParameter, "display is nil")
	}
	if err := d.usable("display"); err != nil {
		return false, err
	}
	if !api.Valid() {
		return false, errstate.Errorf(errstate.BadParameter, "invalid context api %d", int(api))
	}
	return d.plat.backend.DisplaySupportsContextAPI(d.native, api), nil
}

func (p *Platform) ownsDisplay(d *Display) error {
	if d == nil {
		return errstate.Errorf(errstate.BadParameter, "display is nil")
	}
	if err := d.usable("display"); err != nil {
		return err
	}
	if d.plat != p {
		return errstate.Errorf(errstate.BadParameter, "display belongs to a different platform")
	}
	return nil
}

// Config is an immutable framebuffer and context configuration.
type Config struct {
	object
	display *Display
	attrs   ConfigAttrs
}

// ChooseConfig validates attrs and asks the backend for a matching native
// configuration on d.
func (p *Platform) ChooseConfig(d *Display, attrs ConfigAttrs) (*Config, error) {
	if err := p.check(); err != nil {
		return nil, err
	}
	if err := p.ownsDisplay(d); err != nil {
		return nil, err
	}
	norm, err := attrs.Normalize()
	if err != nil {
		return nil, err
	}
	native, err := p.backend.ConfigChoose(d.native, norm)
	if err != nil {
		return nil, err
	}
	d.children++
	return &Config{object: object{plat: p, native: native}, display: d, attrs: norm}, nil
}

// Destroy releases the config. It fails with BadParameter while contexts or
// windows created from it are alive.
func (c *Config) Destroy() error {
	if c == nil || c.destroyed {
		return nil
	}
	if c.children > 0 {
		return errstate.Errorf(errstate.BadParameter, "config still owns %d context(s) or window(s)", c.children)
	}
	err := c.plat.backend.ConfigDestroy(c.native)
	c.release()
	c.display.children--
	return err
}

// Attrs returns the normalized attributes the config was chosen with.
func (c *Config) Attrs() ConfigAttrs  { return c.attrs }
func (c *Config) Display() *Display   { return c.display }
func (c *Config) Platform() *Platform { return c.plat }
func (c *Config) Native() Native      { return c.native }

func (p *Platform) ownsConfig(cfg *Config) error {
	if cfg == nil {
		return errstate.Errorf(errstate.BadParameter, "config is nil")
	}
	if err := cfg.usable("config"); err != nil {
		return err
	}
	if cfg.plat != p {
		return errstate.Errorf(errstate.BadParameter, "config belongs to a different platform")
	}
	return nil
}

// Context is a rendering context.
type Context struct {
	object
	config *Config
}

// CreateContext creates a context from cfg, sharing objects with share when
// it is not nil. share must live on the same display.
func (p *Platform) CreateContext(cfg *Config, share *Context) (*Context, error) {
	if err := p.check(); err != nil {
		return nil, err
	}
	if err := p.ownsConfig(cfg); err != nil {
		return nil, err
	}
	var shareNative Native
	if share != nil {
		if err := share.usable("shared context"); err != nil {
			return nil, err
		}
		if share.config.display != cfg.display {
			return nil, errstate.Errorf(errstate.BadParameter, "shared context lives on a different display")
		}
		shareNative = share.native
	}

	native, err := p.backend.ContextCreate(cfg.native, shareNative)
	if err != nil {
		return nil, err
	}
	cfg.children++
	return &Context{object: object{plat: p, native: native}, config: cfg}, nil
}

func (c *Context) Destroy() error {
	if c == nil || c.destroyed {
		return nil
	}
	err := c.plat.backend.ContextDestroy(c.native)
	c.release()
	c.config.children--
	return err
}

func (c *Context) Config() *Config     { return c.config }
func (c *Context) Platform() *Platform { return c.plat }
func (c *Context) Native() Native      { return c.native }

// Window is an on-screen (or scanout) drawable.
type Window struct {
	object
	config *Config
	width  int
	height int
	shown  bool
}

// CreateWindow creates a width x height window for cfg.
func (p *Platform) CreateWindow(cfg *Config, width, height int) (*Window, error) {
	if err := p.check(); err != nil {
		return nil, err
	}
	if err := p.ownsConfig(cfg); err != nil {
		return nil, err
	}
	if width <= 0 || height <= 0 {
		return nil, errstate.Errorf(errstate.BadParameter, "window size %dx%d must be positive", width, height)
	}
	native, err := p.backend.WindowCreate(cfg.native, width, height)
	if err != nil {
		return nil, err
	}
	cfg.children++
	return &Window{object: object{plat: p, native: native}, config: cfg, width: width, height: height}, nil
}

func (w *Window) Destroy() error {
	if w == nil || w.destroyed {
		return nil
	}
	err := w.plat.backend.WindowDestroy(w.native)
	w.release()
	w.config.children--
	return err
}

func (w *Window) check() error {
	if w == nil {
		return errstate.Errorf(errstate.BadParameter, "window is nil")
	}
	return w.usable("window")
}

// Show maps the window.
func (w *Window) Show() error {
	if err := w.check(); err != nil {
		return err
	}
	if err := w.plat.backend.WindowShow(w.native); err != nil {
		return err
	}
	w.shown = true
	return nil
}

// Resize changes the window size. The recorded size only changes when the
// backend accepts it.
func (w *Window) Resize(width, height int) error {
	if err := w.check(); err != nil {
		return err
	}
	if width <= 0 || height <= 0 {
		return errstate.Errorf(errstate.BadParameter, "window size %dx%d must be positive", width, height)
	}
	if err := w.plat.backend.WindowResize(w.native, width, height); err != nil {
		return err
	}
	w.width, w.height = width, height
	return nil
}

func (w *Window) SwapBuffers() error {
	if err := w.check(); err != nil {
		return err
	}
	return w.plat.backend.WindowSwapBuffers(w.native)
}

func (w *Window) Size() (width, height int) { return w.width, w.height }
func (w *Window) Shown() bool               { return w.shown }
func (w *Window) Config() *Config           { return w.config }
func (w *Window) Platform() *Platform       { return w.plat }
func (w *Window) Native() Native            { return w.native }

// Describe reports what the backend knows about the display. Backends that
// cannot describe displays return an empty DisplayInfo.
func (d *Display) Describe() (DisplayInfo, error) {
	if d == nil {
		return DisplayInfo{}, errstate.Errorf(errstate.BadParameter, "display is nil")
	}
	if err := d.usable("display"); err != nil {
		return DisplayInfo{}, err
	}
	desc, ok := d.plat.backend.(Describer)
	if !ok {
		return DisplayInfo{}, nil
	}
	return desc.DescribeDisplay(d.native)
}

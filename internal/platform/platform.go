package platform

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/1broseidon/glport/internal/dl"
	"github.com/1broseidon/glport/internal/errstate"
)

// object is the header shared by every handle.
type object struct {
	plat      *Platform
	native    Native
	children  int
	destroyed bool
}

func (o *object) usable(what string) error {
	if o.destroyed {
		return errstate.Errorf(errstate.OldObject, "%s has been destroyed", what)
	}
	if o.plat == nil || o.plat.destroyed {
		return errstate.Errorf(errstate.OldObject, "%s belongs to a destroyed platform", what)
	}
	return nil
}

func (o *object) release() {
	o.destroyed = true
	o.native = nil
}

// Platform owns one backend and everything created through it.
type Platform struct {
	id        uuid.UUID
	kind      Kind
	backend   Backend
	opts      Options
	logger    *slog.Logger
	apiLibs   map[ContextAPI]*dl.Library
	displays  int
	destroyed bool
}

// Create loads the backend registered for kind. On failure nothing stays
// loaded.
func Create(kind Kind, opts Options) (*Platform, error) {
	if !kind.Valid() {
		return nil, errstate.Errorf(errstate.BadParameter, "invalid platform %d", int(kind))
	}
	factory, ok := lookup(kind)
	if !ok {
		return nil, errstate.Errorf(errstate.UnsupportedOnPlatform,
			"%v support is not built into this binary", kind)
	}

	opts = opts.withDefaults()
	backend, err := factory(opts)
	if err != nil {
		opts.Logger.Debug("platform create failed", "platform", kind.String(), "error", err)
		return nil, err
	}
	if backend == nil {
		return nil, errstate.Internalf("%v factory returned no backend", kind)
	}
	if backend.Kind() != kind {
		got := backend.Kind()
		backend.Teardown()
		return nil, errstate.Internalf("%v factory built a %v backend", kind, got)
	}

	p := &Platform{
		id:      uuid.New(),
		kind:    kind,
		backend: backend,
		opts:    opts,
		apiLibs: make(map[ContextAPI]*dl.Library),
	}
	p.logger = opts.Logger.With("platform", kind.String(), "platform_id", p.id.String())
	p.logger.Debug("platform created")
	return p, nil
}

// Destroy tears the backend down. Destroying nil or an already destroyed
// platform succeeds without effect; a platform that still has connected
// displays is left untouched and BadParameter is reported.
func (p *Platform) Destroy() error {
	if p == nil || p.destroyed {
		return nil
	}
	if p.displays > 0 {
		return errstate.Errorf(errstate.BadParameter,
			"%v platform still has %d connected display(s)", p.kind, p.displays)
	}

	p.destroyed = true
	err := p.backend.Teardown()
	for api, lib := range p.apiLibs {
		if cerr := lib.Close(); cerr != nil && err == nil {
			err = cerr
		}
		delete(p.apiLibs, api)
	}
	p.backend = nil
	p.logger.Debug("platform destroyed", "error", err)
	return err
}

func (p *Platform) check() error {
	if p == nil {
		return errstate.Errorf(errstate.BadParameter, "platform is nil")
	}
	if p.destroyed {
		return errstate.Errorf(errstate.OldObject, "%v platform has been destroyed", p.kind)
	}
	return nil
}

func (p *Platform) Kind() Kind {
	return p.kind
}

// ID identifies this platform instance in logs.
func (p *Platform) ID() uuid.UUID {
	return p.id
}

// Logger returns the platform's logger, already tagged with its identity.
func (p *Platform) Logger() *slog.Logger {
	return p.logger
}

// GetProcAddress resolves a client API entry point. A zero address with a
// nil error means the backend does not know the name.
func (p *Platform) GetProcAddress(name string) (uintptr, error) {
	if err := p.check(); err != nil {
		return 0, err
	}
	if name == "" {
		return 0, errstate.Errorf(errstate.BadParameter, "proc name is empty")
	}
	return p.backend.GetProcAddress(name), nil
}

// DLCanOpen reports whether the library for api can be loaded. It never
// touches the caller's error state.
func (p *Platform) DLCanOpen(api ContextAPI) bool {
	var ok bool
	errstate.Disabled(func() {
		_, err := p.apiLibrary(api)
		ok = err == nil
	})
	return ok
}

// DLSym looks name up in the library for api. The library stays open until
// the platform is destroyed.
func (p *Platform) DLSym(api ContextAPI, name string) (uintptr, error) {
	lib, err := p.apiLibrary(api)
	if err != nil {
		return 0, err
	}
	addr, err := lib.Lookup(name)
	if err != nil {
		return 0, errstate.Errorf(errstate.UnknownError, "dlsym(%s, %q) failed: %v", lib.Name(), name, err)
	}
	return addr, nil
}

func (p *Platform) apiLibrary(api ContextAPI) (*dl.Library, error) {
	if err := p.check(); err != nil {
		return nil, err
	}
	if !api.Valid() {
		return nil, errstate.Errorf(errstate.BadParameter, "invalid context api %d", int(api))
	}
	if lib, ok := p.apiLibs[api]; ok {
		return lib, nil
	}
	lib, err := dl.Open(p.opts.LibraryNames(libraryKey(api), defaultLibraryNames(api)...)...)
	if err != nil {
		return nil, err
	}
	p.apiLibs[api] = lib
	return lib, nil
}

// MakeCurrent binds ctx and win on the calling thread. Passing nil for both
// releases the current binding.
func (p *Platform) MakeCurrent(d *Display, w *Window, c *Context) error {
	if err := p.check(); err != nil {
		return err
	}
	if err := p.ownsDisplay(d); err != nil {
		return err
	}

	var winNative, ctxNative Native
	if w != nil {
		if err := w.usable("window"); err != nil {
			return err
		}
		if w.config.display != d {
			return errstate.Errorf(errstate.BadParameter, "window was created on a different display")
		}
		winNative = w.native
	}
	if c != nil {
		if err := c.usable("context"); err != nil {
			return err
		}
		if c.config.display != d {
			return errstate.Errorf(errstate.BadParameter, "context was created on a different display")
		}
		ctxNative = c.native
	}
	return p.backend.MakeCurrent(d.native, winNative, ctxNative)
}

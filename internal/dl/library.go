// Package dl opens native shared libraries at runtime and binds their entry
// points into Go func variables.
package dl

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/1broseidon/glport/internal/errstate"
)

// OS hooks, replaced in tests.
var (
	sysOpen      func(name string) (uintptr, error)
	sysSym       func(handle uintptr, name string) (uintptr, error)
	sysClose     func(handle uintptr) error
	registerFunc func(fptr any, addr uintptr)
)

// Symbol describes one entry point to bind. Fn must point at a func
// variable; it stays nil when an Optional symbol is absent.
type Symbol struct {
	Name     string
	Fn       any
	Optional bool
}

// Library is an open shared library.
type Library struct {
	name    string
	handle  uintptr
	present map[string]bool
}

// Open opens the first library in names that the dynamic loader accepts.
func Open(names ...string) (*Library, error) {
	if len(names) == 0 {
		return nil, errstate.Internalf("dl.Open called without library names")
	}

	var failures []string
	for _, name := range names {
		if name == "" {
			continue
		}
		handle, err := sysOpen(name)
		if err != nil || handle == 0 {
			if err == nil {
				err = fmt.Errorf("null handle")
			}
			failures = append(failures, fmt.Sprintf("%s (%v)", name, err))
			continue
		}
		return &Library{name: name, handle: handle, present: make(map[string]bool)}, nil
	}
	return nil, errstate.Errorf(errstate.UnsupportedOnPlatform,
		"failed to open any of %s", strings.Join(failures, ", "))
}

// Load opens a library and binds symbols into it. When binding fails the
// library is closed before returning.
func Load(names []string, symbols []Symbol) (*Library, error) {
	lib, err := Open(names...)
	if err != nil {
		return nil, err
	}
	if err := lib.Bind(symbols); err != nil {
		lib.Close()
		return nil, err
	}
	return lib, nil
}

// Name returns the name the library was opened under.
func (l *Library) Name() string {
	if l == nil {
		return ""
	}
	return l.name
}

// Bind resolves every symbol and registers it into its Fn. A missing
// required symbol fails the whole bind.
func (l *Library) Bind(symbols []Symbol) error {
	if l == nil || l.handle == 0 {
		return errstate.Internalf("bind on a closed library")
	}
	for _, sym := range symbols {
		if !isFuncPointer(sym.Fn) {
			return errstate.Internalf("%s: destination for %s is %T, not a pointer to func", l.name, sym.Name, sym.Fn)
		}
		addr, err := sysSym(l.handle, sym.Name)
		if err != nil || addr == 0 {
			l.present[sym.Name] = false
			if sym.Optional {
				continue
			}
			return errstate.Errorf(errstate.UnsupportedOnPlatform,
				"%s: missing required symbol %s", l.name, sym.Name)
		}
		registerFunc(sym.Fn, addr)
		l.present[sym.Name] = true
	}
	return nil
}

// Has reports whether name was resolved by a previous Bind.
func (l *Library) Has(name string) bool {
	if l == nil {
		return false
	}
	return l.present[name]
}

// Lookup resolves name without binding it and without reporting.
func (l *Library) Lookup(name string) (uintptr, error) {
	if l == nil || l.handle == 0 {
		return 0, fmt.Errorf("lookup %s on closed library", name)
	}
	addr, err := sysSym(l.handle, name)
	if err != nil {
		return 0, err
	}
	if addr == 0 {
		return 0, fmt.Errorf("%s: symbol %s resolved to null", l.name, name)
	}
	return addr, nil
}

// Close releases the library. Entry points bound from it must not be called
// afterwards. Closing twice, or closing nil, is a no-op.
func (l *Library) Close() error {
	if l == nil || l.handle == 0 {
		return nil
	}
	handle := l.handle
	l.handle = 0
	if err := sysClose(handle); err != nil {
		return errstate.Errorf(errstate.UnknownError, "closing %s: %v", l.name, err)
	}
	return nil
}

// RegisterFunc binds an address obtained outside Bind, for example through
// an API-specific GetProcAddress, into a func variable.
func RegisterFunc(fptr any, addr uintptr) error {
	if !isFuncPointer(fptr) {
		return errstate.Internalf("RegisterFunc destination is %T, not a pointer to func", fptr)
	}
	if addr == 0 {
		return errstate.Internalf("RegisterFunc called with a null address")
	}
	registerFunc(fptr, addr)
	return nil
}

func isFuncPointer(fptr any) bool {
	t := reflect.TypeOf(fptr)
	return t != nil && t.Kind() == reflect.Pointer && t.Elem().Kind() == reflect.Func
}

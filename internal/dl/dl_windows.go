//go:build windows

package dl

import (
	"github.com/ebitengine/purego"
	"golang.org/x/sys/windows"
)

func init() {
	sysOpen = func(name string) (uintptr, error) {
		h, err := windows.LoadLibrary(name)
		return uintptr(h), err
	}
	sysSym = func(handle uintptr, name string) (uintptr, error) {
		return windows.GetProcAddress(windows.Handle(handle), name)
	}
	sysClose = func(handle uintptr) error {
		return windows.FreeLibrary(windows.Handle(handle))
	}
	registerFunc = purego.RegisterFunc
}

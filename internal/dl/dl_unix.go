//go:build darwin || freebsd || linux || netbsd

package dl

import "github.com/ebitengine/purego"

func init() {
	sysOpen = func(name string) (uintptr, error) {
		return purego.Dlopen(name, purego.RTLD_NOW|purego.RTLD_GLOBAL)
	}
	sysSym = purego.Dlsym
	sysClose = purego.Dlclose
	registerFunc = purego.RegisterFunc
}

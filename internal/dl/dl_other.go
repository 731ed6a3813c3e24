//go:build !darwin && !freebsd && !linux && !netbsd && !windows

package dl

import (
	"fmt"
	"runtime"
)

func init() {
	unsupported := fmt.Errorf("dynamic loading is not available on %s", runtime.GOOS)
	sysOpen = func(string) (uintptr, error) { return 0, unsupported }
	sysSym = func(uintptr, string) (uintptr, error) { return 0, unsupported }
	sysClose = func(uintptr) error { return nil }
	registerFunc = func(any, uintptr) { panic(unsupported) }
}

//go:build linux

package gbm

import (
	"github.com/1broseidon/glport/internal/dl"
)

const (
	FORMAT_XRGB8888 = 0x34325258
	FORMAT_ARGB8888 = 0x34325241

	BO_USE_SCANOUT   = 1 << 0
	BO_USE_RENDERING = 1 << 2
)

// DefaultLibraries are the libgbm names tried when no override is set.
var DefaultLibraries = []string{"libgbm.so.1", "libgbm.so"}

type api struct {
	lib *dl.Library

	CreateDevice           func(fd int32) uintptr
	DeviceGetFd            func(dev uintptr) int32
	DeviceDestroy          func(dev uintptr)
	SurfaceCreate          func(dev uintptr, width, height, format, flags uint32) uintptr
	SurfaceDestroy         func(surface uintptr)
	SurfaceLockFrontBuffer func(surface uintptr) uintptr
	SurfaceReleaseBuffer   func(surface, bo uintptr)
}

func loadAPI(names []string) (*api, error) {
	a := &api{}
	lib, err := dl.Load(names, []dl.Symbol{
		{Name: "gbm_create_device", Fn: &a.CreateDevice},
		{Name: "gbm_device_get_fd", Fn: &a.DeviceGetFd},
		{Name: "gbm_device_destroy", Fn: &a.DeviceDestroy},
		{Name: "gbm_surface_create", Fn: &a.SurfaceCreate},
		{Name: "gbm_surface_destroy", Fn: &a.SurfaceDestroy},
		{Name: "gbm_surface_lock_front_buffer", Fn: &a.SurfaceLockFrontBuffer},
		{Name: "gbm_surface_release_buffer", Fn: &a.SurfaceReleaseBuffer},
	})
	if err != nil {
		return nil, err
	}
	a.lib = lib
	return a, nil
}

// formatFor picks the GBM format matching the requested alpha channel.
func formatFor(alphaSize int) uint32 {
	if alphaSize > 0 {
		return FORMAT_ARGB8888
	}
	return FORMAT_XRGB8888
}

// Package gbm implements the gbm platform: EGL over a GBM device opened on a
// DRM render node. Windows are gbm_surfaces, suitable for offscreen rendering
// or scanout.
package gbm

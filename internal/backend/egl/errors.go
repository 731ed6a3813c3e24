package egl

import (
	"fmt"

	"github.com/1broseidon/glport/internal/errstate"
)

var errorNames = map[int32]string{
	SUCCESS:             "EGL_SUCCESS",
	NOT_INITIALIZED:     "EGL_NOT_INITIALIZED",
	BAD_ACCESS:          "EGL_BAD_ACCESS",
	BAD_ALLOC:           "EGL_BAD_ALLOC",
	BAD_ATTRIBUTE:       "EGL_BAD_ATTRIBUTE",
	BAD_CONFIG:          "EGL_BAD_CONFIG",
	BAD_CONTEXT:         "EGL_BAD_CONTEXT",
	BAD_CURRENT_SURFACE: "EGL_BAD_CURRENT_SURFACE",
	BAD_DISPLAY:         "EGL_BAD_DISPLAY",
	BAD_MATCH:           "EGL_BAD_MATCH",
	BAD_NATIVE_PIXMAP:   "EGL_BAD_NATIVE_PIXMAP",
	BAD_NATIVE_WINDOW:   "EGL_BAD_NATIVE_WINDOW",
	BAD_PARAMETER:       "EGL_BAD_PARAMETER",
	BAD_SURFACE:         "EGL_BAD_SURFACE",
	CONTEXT_LOST:        "EGL_CONTEXT_LOST",
}

// ErrorName returns the symbolic name of an EGL error code.
func ErrorName(code int32) string {
	if name, ok := errorNames[code]; ok {
		return name
	}
	return fmt.Sprintf("0x%x", code)
}

// errorFor maps an eglGetError value to the code and message reported for
// a failed call to fn.
func errorFor(fn string, code int32) (errstate.Code, string) {
	c := errstate.UnknownError
	if code == BAD_ALLOC {
		c = errstate.OutOfMemory
	}
	return c, fmt.Sprintf("%s failed with %s", fn, ErrorName(code))
}

// fail reports the pending EGL error for fn.
func (a *API) fail(fn string) error {
	code, msg := errorFor(fn, a.GetError())
	return errstate.Errorf(code, "%s", msg)
}

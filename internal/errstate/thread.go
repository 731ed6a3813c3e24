// Package errstate implements the per-thread error reporting used by every
// layer of glport.
//
// Each goroutine owns one State, created on first use. GL binds contexts to
// the OS thread, so callers pin with runtime.LockOSThread; a pinned goroutine
// maps one to one onto its thread and its State is that thread's error state.
//
// Every helper that reports also returns an *Error so the failure can travel
// up the stack as an ordinary Go error. Layers that propagate such an error
// must not report it again.
package errstate

import (
	"fmt"
	"runtime"
	"sync"
)

var states sync.Map // goroutine id -> *State

// Current returns the calling thread's State.
func Current() *State {
	id := goroutineID()
	if v, ok := states.Load(id); ok {
		return v.(*State)
	}
	v, _ := states.LoadOrStore(id, &State{})
	return v.(*State)
}

// Release forgets the calling goroutine's State. Long-running programs that
// spawn many reporting goroutines call it before the goroutine exits so the
// table does not grow.
func Release() {
	states.Delete(goroutineID())
}

// New reports code without a message and returns the matching error.
func New(code Code) error {
	Current().Report(code)
	return &Error{Code: code}
}

// Errorf reports code with a formatted message and returns the matching
// error.
func Errorf(code Code, format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	Current().report(code, msg)
	return &Error{Code: code, Message: truncate(msg)}
}

// Internalf reports an InternalError located at the caller.
func Internalf(format string, args ...any) error {
	_, file, line, ok := runtime.Caller(1)
	if !ok {
		file, line = "???", 0
	}
	return InternalAt(file, line, format, args...)
}

// InternalAt reports an InternalError at an explicit location.
func InternalAt(file string, line int, format string, args ...any) error {
	msg := fmt.Sprintf("%s:%d: %s", file, line, fmt.Sprintf(format, args...))
	Current().report(InternalError, msg)
	return &Error{Code: InternalError, Message: truncate(msg)}
}

// Reset clears the calling thread's State.
func Reset() {
	Current().Reset()
}

// LastCode returns the code last recorded on the calling thread.
func LastCode() Code {
	return Current().Code()
}

// LastInfo returns the code and message last recorded on the calling thread.
func LastInfo() Info {
	return Current().Info()
}

// Disabled runs fn with reporting switched off on the calling thread.
func Disabled(fn func()) {
	Current().Disabled(fn)
}

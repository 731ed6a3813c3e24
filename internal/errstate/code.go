package errstate

import (
	"errors"
	"fmt"
)

// Code identifies the class of the last failure reported on a thread.
type Code int32

const (
	NoError Code = iota
	FatalError
	UnknownError
	InternalError
	OutOfMemory
	NotInitialized
	AlreadyInitialized
	OldObject
	BadAttribute
	IncompatibleAttributes
	BadParameter
	UnsupportedOnPlatform
	NotImplemented
)

var codeNames = map[Code]string{
	NoError:                "NO_ERROR",
	FatalError:             "FATAL_ERROR",
	UnknownError:           "UNKNOWN_ERROR",
	InternalError:          "INTERNAL_ERROR",
	OutOfMemory:            "OUT_OF_MEMORY",
	NotInitialized:         "NOT_INITIALIZED",
	AlreadyInitialized:     "ALREADY_INITIALIZED",
	OldObject:              "OLD_OBJECT",
	BadAttribute:           "BAD_ATTRIBUTE",
	IncompatibleAttributes: "INCOMPATIBLE_ATTRIBUTES",
	BadParameter:           "BAD_PARAMETER",
	UnsupportedOnPlatform:  "UNSUPPORTED_ON_PLATFORM",
	NotImplemented:         "NOT_IMPLEMENTED",
}

// Name returns the display name of code. Unknown codes yield ("", false).
func Name(code Code) (string, bool) {
	name, ok := codeNames[code]
	return name, ok
}

// Codes returns every known code in numeric order.
func Codes() []Code {
	out := make([]Code, 0, len(codeNames))
	for c := NoError; c <= NotImplemented; c++ {
		out = append(out, c)
	}
	return out
}

func (c Code) String() string {
	if name, ok := Name(c); ok {
		return name
	}
	return fmt.Sprintf("Code(%d)", int32(c))
}

func (c Code) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// Error is the error value handed back to callers alongside the report
// recorded in the thread's State.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Message == "" {
		return e.Code.String()
	}
	return e.Code.String() + ": " + e.Message
}

// Is matches another *Error with the same code. A target carrying a message
// must match it too.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil || t == nil {
		return false
	}
	if t.Code != e.Code {
		return false
	}
	return t.Message == "" || t.Message == e.Message
}

// CodeOf maps err back to a Code. nil is NoError; errors that did not come
// from this package are UnknownError.
func CodeOf(err error) Code {
	if err == nil {
		return NoError
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return UnknownError
}

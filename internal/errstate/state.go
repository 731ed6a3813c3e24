package errstate

import (
	"fmt"
	"unicode/utf8"
)

// MaxMessageLen bounds the stored message, in bytes.
const MaxMessageLen = 1024

// Info is a snapshot of a State.
type Info struct {
	Code    Code   `json:"code" yaml:"code"`
	Message string `json:"message" yaml:"message"`
}

// State is the error state of a single thread. It is never shared, so it
// carries no lock; use Current to reach the calling thread's instance.
type State struct {
	code     Code
	message  string
	set      bool
	disabled bool
}

// Report records code with no message.
func (s *State) Report(code Code) {
	s.report(code, "")
}

// Reportf records code with a formatted message.
func (s *State) Reportf(code Code, format string, args ...any) {
	s.report(code, fmt.Sprintf(format, args...))
}

// ReportInternal records an InternalError prefixed with its source location.
func (s *State) ReportInternal(file string, line int, format string, args ...any) {
	s.report(InternalError, fmt.Sprintf("%s:%d: %s", file, line, fmt.Sprintf(format, args...)))
}

// report applies the overwrite rule: the first report after a reset always
// lands; afterwards only a message-bearing report may replace a record that
// has no message yet.
func (s *State) report(code Code, msg string) {
	if s.disabled {
		return
	}
	if s.set && (s.message != "" || msg == "") {
		return
	}
	s.code = code
	s.message = truncate(msg)
	s.set = true
}

// Reset clears the state to NoError regardless of the disabled flag.
func (s *State) Reset() {
	s.code = NoError
	s.message = ""
	s.set = false
}

func (s *State) Code() Code {
	return s.code
}

func (s *State) Info() Info {
	return Info{Code: s.code, Message: s.message}
}

// IsDisabled reports whether reports are currently dropped.
func (s *State) IsDisabled() bool {
	return s.disabled
}

// Disabled runs fn with reporting switched off. The previous setting is
// restored however fn exits.
func (s *State) Disabled(fn func()) {
	prev := s.disabled
	s.disabled = true
	defer func() { s.disabled = prev }()
	fn()
}

func truncate(msg string) string {
	if len(msg) <= MaxMessageLen {
		return msg
	}
	cut := MaxMessageLen
	for cut > 0 && !utf8.RuneStart(msg[cut]) {
		cut--
	}
	return msg[:cut]
}

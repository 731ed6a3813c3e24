package errstate

import (
	"bytes"
	"runtime"
	"strconv"
)

// goroutineID parses the id from the calling goroutine's stack header.
// Ids are never reused, so a new goroutine always starts with a fresh State
// even when the runtime hands it a recycled OS thread.
func goroutineID() int64 {
	var buf [64]byte
	b := buf[:runtime.Stack(buf[:], false)]
	b = bytes.TrimPrefix(b, []byte("goroutine "))
	if i := bytes.IndexByte(b, ' '); i >= 0 {
		b = b[:i]
	}
	id, _ := strconv.ParseInt(string(b), 10, 64)
	return id
}

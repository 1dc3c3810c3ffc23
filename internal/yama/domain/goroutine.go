package domain

import (
	"bytes"
	"runtime"
	"strconv"
)

// goroutineID extracts the calling goroutine's id from its own stack trace
// header ("goroutine 123 [running]:"). Go deliberately exposes no public
// goroutine-id API; parsing runtime.Stack's header is the standard workaround
// reentrantLock needs to tell "same goroutine re-entering" from "a different
// goroutine contending" (spec.md §5's re-entrant new-data lock).
func goroutineID() int64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	b := buf[:n]
	b = bytes.TrimPrefix(b, []byte("goroutine "))
	if i := bytes.IndexByte(b, ' '); i >= 0 {
		b = b[:i]
	}
	id, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		panic("domain: could not parse goroutine id: " + err.Error())
	}
	return id
}

//go:build !fastrace_disable

package fastrace

import (
	"bytes"
	"runtime"
	"strconv"
)

// goroutineID extracts the numeric id Go's runtime assigns the calling
// goroutine from the header line of runtime.Stack's output.
//
// Go deliberately exposes no goroutine-local storage, but spec.md's local
// span stack is only cheap because it is confined to one goroutine and
// reached without threading a handle through every call site (mirroring
// the Rust original's thread-local discipline). This is the standard,
// if unglamorous, way Go libraries recover that property; it is used only
// to key the per-goroutine LocalSpanStack registry in localstack.go and is
// never exposed on the public API.
func goroutineID() int64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	b := buf[:n]

	const prefix = "goroutine "
	if !bytes.HasPrefix(b, []byte(prefix)) {
		return 0
	}
	b = b[len(prefix):]

	end := bytes.IndexByte(b, ' ')
	if end < 0 {
		return 0
	}

	id, err := strconv.ParseInt(string(b[:end]), 10, 64)
	if err != nil {
		return 0
	}
	return id
}

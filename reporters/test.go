package reporters

import (
	"sync"

	"github.com/fast/fastrace"
)

// Test collects every reported SpanRecord into a slice under a mutex, for
// assertions in package tests - the Go rendering of fastrace's own
// test_reporter.rs, minus the Arc (Go's garbage collector already lets
// the test and the collector goroutine share one *Test safely).
type Test struct {
	mu    sync.Mutex
	spans []fastrace.SpanRecord
}

// NewTest returns a ready-to-install Test reporter.
func NewTest() *Test {
	return &Test{}
}

// Report appends records to the reporter's buffer.
func (t *Test) Report(records []fastrace.SpanRecord) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.spans = append(t.spans, records...)
}

// Shutdown is a no-op; Spans remains readable after shutdown.
func (t *Test) Shutdown() {}

// Spans returns a copy of every record collected so far.
func (t *Test) Spans() []fastrace.SpanRecord {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]fastrace.SpanRecord, len(t.spans))
	copy(out, t.spans)
	return out
}

// Reset clears the buffer, for reuse across subtests.
func (t *Test) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.spans = nil
}

//go:build !fastrace_disable

package fastrace

import "sync/atomic"

// droppedCounter is a shared, lock-free counter of silently dropped
// commands, incremented by producer rings on overflow. The package exports
// no accessor for it.
type droppedCounter struct {
	n atomic.Uint64
}

func (d *droppedCounter) add(delta uint64) {
	d.n.Add(delta)
}

func (d *droppedCounter) load() uint64 {
	return d.n.Load()
}

// spanPayload is the shared-by-pointer body of a SubmitSpans command: either
// one finished cross-thread Span or one drained LocalSpans batch. Go's
// garbage collector gives us the Rust implementation's Arc-based sharing for
// free — holding the same pointer in N commands costs O(1) per extra
// reference, never a deep copy.
type spanPayload interface {
	walk(func(*rawSpan))

	// fallbackEnd is the Instant materialize substitutes for any span in
	// this payload that was never finished - e.g. a LocalSpan left open
	// when its line drained - so its duration can never go negative.
	fallbackEnd() Instant
}

type singleSpanPayload struct {
	span *rawSpan
}

func (p singleSpanPayload) walk(f func(*rawSpan)) { f(p.span) }

// fallbackEnd is unused in practice: Span.End always finishes its own raw
// span before submitting it. It still returns a sane value (the span's own
// begin) rather than zero, in case that ever stops holding.
func (p singleSpanPayload) fallbackEnd() Instant { return p.span.begin }

type batchSpanPayload struct {
	batch *LocalSpans
}

func (p batchSpanPayload) walk(f func(*rawSpan)) {
	for i := range p.batch.spans {
		f(&p.batch.spans[i])
	}
}

// fallbackEnd is the Instant the line was drained at (guard.End's or
// LocalCollector.Collect's call to now()), substituted for any span in the
// batch still open at drain time.
func (p batchSpanPayload) fallbackEnd() Instant { return p.batch.end }

// collectCommand is the sealed set of messages a producer ring carries to
// the global collector.
type collectCommand interface {
	isCollectCommand()
}

type startCollectCmd struct {
	id collectID
}

type commitCollectCmd struct {
	id collectID
}

type dropCollectCmd struct {
	id collectID
}

type submitSpansCmd struct {
	item    collectTokenItem
	payload spanPayload
}

func (startCollectCmd) isCollectCommand()  {}
func (commitCollectCmd) isCollectCommand() {}
func (dropCollectCmd) isCollectCommand()   {}
func (submitSpansCmd) isCollectCommand()   {}

//go:build !fastrace_disable

package fastrace

// LocalSpans is a batch of raw span data drained from one local span line,
// produced either by SubmitSpans's normal flow through pushLine/popLine
// (spec §4.6) or by a standalone LocalCollector below. Its zero value is an
// empty batch.
type LocalSpans struct {
	spans []rawSpan
	end   Instant
}

// ToSpanRecords materializes this batch on its own, parenting every root
// span in it under parentCtx instead of going through the global
// collector's trace assembly at all. This is the detached-collection path
// fastrace exposes on its own LocalCollector: a caller can gather local
// spans and render them to records synchronously, without ever installing
// a Reporter or touching SetReporter.
func (ls *LocalSpans) ToSpanRecords(parentCtx SpanContext) []SpanRecord {
	asm := &traceAssembly{}
	item := collectTokenItem{
		traceID:  parentCtx.TraceID,
		parentID: parentCtx.SpanID,
	}
	asm.append(item, batchSpanPayload{batch: ls}, 0)
	return materialize(asm, globalCollectorInst().anchor)
}

// LocalCollector gathers local spans within the calling goroutine without
// ever registering a CollectToken with the global collector - useful for
// synchronous, ad hoc collection such as a test asserting on the spans one
// call produced, or a caller forwarding records through its own pipeline
// rather than a Reporter (spec's local span stack, run standalone).
type LocalCollector struct {
	epoch uint64
	open  bool
}

// StartLocalCollector begins a fresh local span line with no parent. Any
// LocalSpan entered afterwards on this goroutine, until Collect is called,
// is captured by this collector instead of submitted anywhere.
func StartLocalCollector() *LocalCollector {
	epoch, ok := pushLine(nil, 0, false)
	return &LocalCollector{epoch: epoch, open: ok}
}

// Collect pops the line and returns everything it accumulated. A second
// call, or a call made while a nested guard left the line non-topmost, is a
// no-op returning an empty LocalSpans - the same epoch-mismatch discipline
// every other local stack operation uses.
func (lc *LocalCollector) Collect() LocalSpans {
	if !lc.open {
		return LocalSpans{}
	}
	lc.open = false

	line, popped := popLine(lc.epoch)
	if !popped {
		return LocalSpans{}
	}
	return LocalSpans{spans: line.queue, end: globalCollectorInst().now()}
}

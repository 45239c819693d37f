//go:build !fastrace_disable

package fastrace

// LocalParentGuard is returned by Span.SetLocalParent. While open, it marks
// its Span as the calling goroutine's local parent; new LocalSpans entered
// on this goroutine attach under it until the guard ends.
//
// Guards must end in reverse creation order - nested guards are honored by
// stack discipline, matching the teacher's own defer-ordered Finish calls.
// Ending an outer guard while an inner one is still open is a no-op: the
// epoch check in popLine catches the mismatch and leaves the line in place
// for its rightful owner to pop.
type LocalParentGuard struct {
	epoch uint64
	open  bool
}

// noopGuard is returned when SetLocalParent has nothing to guard - a noop
// Span, or a local stack already at capacity.
var noopGuard = &LocalParentGuard{}

// End pops the span line this guard pushed, converts whatever it
// accumulated into a LocalSpans batch, and submits one SubmitSpans command
// per token entry, exactly as Span's own End submits its raw span (spec
// §4.6).
func (g *LocalParentGuard) End() {
	if g == nil || !g.open {
		return
	}
	g.open = false

	line, popped := popLine(g.epoch)
	if !popped {
		return
	}
	if len(line.token) == 0 || len(line.queue) == 0 {
		return
	}

	batch := &LocalSpans{spans: line.queue, end: globalCollectorInst().now()}
	collector := globalCollectorInst()
	for _, item := range line.token {
		collector.send(submitSpansCmd{item: item, payload: batchSpanPayload{batch: batch}})
	}
}

//go:build !fastrace_disable

package fastrace

import (
	"sync"
	"time"
)

// Span is the cross-thread span handle: safe to pass to another goroutine
// (e.g. across a channel, as the seed for a worker's own child spans), at
// the cost of one allocation per span and a small amount of locking around
// its end-of-life transition, unlike LocalSpan's bare append onto a
// goroutine-confined queue (spec §4.5).
//
// A Span must be ended exactly once, by calling End (or Cancel for a
// root). Callers are expected to `defer span.End()`, the Go analogue of
// the original's implicit drop - mirroring the teacher's own
// `defer span.Finish()` convention.
type Span struct {
	mu            sync.Mutex
	noop          bool
	ended         bool
	raw           rawSpan
	pendingEvents []rawSpan
	token         collectToken
	isRoot        bool
	id            collectID
}

// noopSpan is returned whenever sampling or the absence of a parent means
// there is nothing to collect; every method on it is a cheap no-op, so
// callers never need to nil-check a Span before using it.
var noopSpan = &Span{noop: true}

// Root starts a new trace rooted at name. If ctx.Sampled is false, Root
// returns a noop Span holding no state at all, exactly as Span::root does
// when the caller has already decided not to sample.
func Root(name string, ctx SpanContext) *Span {
	if !ctx.Sampled {
		return noopSpan
	}

	g := globalCollectorInst()
	id := g.allocateCollectID()
	g.send(startCollectCmd{id: id})

	parentID := ctx.SpanID
	hasParent := parentID != 0

	return &Span{
		raw: newRawSpan(globalIDs().nextSpanID(), parentID, hasParent, g.now(), name, rawKindSpan),
		token: singleToken(collectTokenItem{
			traceID:   ctx.TraceID,
			parentID:  parentID,
			collectID: id,
			isRoot:    true,
			isSampled: true,
		}),
		isRoot: true,
		id:     id,
	}
}

// EnterWithParent creates a child span under an explicit parent Span,
// reissuing the parent's (possibly multi-entry) collect token so fan-in
// from a span with several logical parents carries forward correctly -
// each item keeps its trace/collect id but is re-pointed at parent's own
// span id, per fastrace's issue_collect_token (amend_span re-parents every
// item onto the span that issued it, not onto that span's own parent).
func EnterWithParent(name string, parent *Span) *Span {
	if parent == nil || parent.noop {
		return noopSpan
	}

	parent.mu.Lock()
	token := parent.token.clone()
	parentID := parent.raw.id
	parent.mu.Unlock()

	return enterWithToken(name, reissueToken(token, parentID), parentID)
}

// EnterWithLocalParent creates a child span seeded from the calling
// goroutine's current local span line, the cross-thread counterpart to
// LocalSpan's own enter. Absent a local parent - no line pushed via
// SetLocalParent on this goroutine - it returns a noop Span. The new
// span's parent is the line's innermost open span, not the token's own
// external seed id.
func EnterWithLocalParent(name string) *Span {
	token, parentID, hasParent, ok := topLineToken()
	if !ok || !hasParent {
		return noopSpan
	}
	return enterWithToken(name, reissueToken(token, parentID), parentID)
}

// reissueToken rebuilds every item of token so it is parented on parentID
// instead of whatever its issuer was parented on, and marks each item as a
// non-root entry - the child span itself, never the items it carries
// forward, can be a trace root.
func reissueToken(token collectToken, parentID SpanID) collectToken {
	out := make(collectToken, len(token))
	for i, item := range token {
		item.parentID = parentID
		item.isRoot = false
		out[i] = item
	}
	return out
}

func enterWithToken(name string, token collectToken, parentID SpanID) *Span {
	if len(token) == 0 {
		return noopSpan
	}

	g := globalCollectorInst()
	id := globalIDs().nextSpanID()
	begin := g.now()

	return &Span{
		raw:   newRawSpan(id, parentID, true, begin, name, rawKindSpan),
		token: token,
	}
}

// SetLocalParent installs this span as the calling goroutine's local
// parent, returning a LocalParentGuard that must be ended - typically via
// `defer guard.End()` - to pop the line it pushed. A noop Span returns a
// noop guard.
func (s *Span) SetLocalParent() *LocalParentGuard {
	if s == nil || s.noop {
		return noopGuard
	}

	s.mu.Lock()
	token := s.token.clone()
	spanID := s.raw.id
	s.mu.Unlock()

	epoch, ok := pushLine(token, spanID, true)
	if !ok {
		return noopGuard
	}
	return &LocalParentGuard{epoch: epoch, open: true}
}

// AddEvent appends a point-in-time annotation to this span.
func (s *Span) AddEvent(name string, props ...Property) {
	if s == nil || s.noop {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		return
	}
	ev := newRawSpan(0, s.raw.id, true, globalCollectorInst().now(), name, rawKindEvent)
	ev.properties = props
	s.pendingEvents = append(s.pendingEvents, ev)
}

// AddProperty appends one key/value annotation directly on this span.
func (s *Span) AddProperty(key, value string) {
	s.AddProperties([]Property{{Key: key, Value: value}})
}

// AddProperties appends key/value annotations directly on this span.
func (s *Span) AddProperties(props []Property) {
	if s == nil || s.noop {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		return
	}
	s.raw.addProperties(props)
}

// PushChildSpans attaches a LocalSpans batch gathered by a standalone
// LocalCollector under this span's token, as if it had been submitted by a
// LocalParentGuard rooted at this span (spec §4.4).
func (s *Span) PushChildSpans(batch LocalSpans) {
	if s == nil || s.noop || len(batch.spans) == 0 {
		return
	}
	s.mu.Lock()
	token := reissueToken(s.token, s.raw.id)
	s.mu.Unlock()

	g := globalCollectorInst()
	shared := &batch
	for _, item := range token {
		g.send(submitSpansCmd{item: item, payload: batchSpanPayload{batch: shared}})
	}
}

// Elapsed returns the time since this span began. For a noop Span it
// returns zero.
func (s *Span) Elapsed() time.Duration {
	if s == nil || s.noop {
		return 0
	}
	g := globalCollectorInst()
	s.mu.Lock()
	defer s.mu.Unlock()
	return time.Duration(g.now() - s.raw.begin)
}

// Cancel ends a root span without submitting any of its spans, sending
// DropCollect instead of CommitCollect: the whole trace is discarded (spec
// §4.5, §8 property 6). Calling Cancel on a non-root span behaves like End
// - there is no per-span cancellation, only a whole-trace one.
func (s *Span) Cancel() {
	if s == nil || s.noop {
		return
	}
	if !s.isRoot {
		s.End()
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		return
	}
	s.ended = true
	globalCollectorInst().send(dropCollectCmd{id: s.id})
}

// End finishes the span, submitting it (and, for a root, a CommitCollect)
// to the global collector. End is idempotent: calling it again, or after
// Cancel, is a no-op.
func (s *Span) End() {
	if s == nil || s.noop {
		return
	}

	s.mu.Lock()
	if s.ended {
		s.mu.Unlock()
		return
	}
	s.ended = true
	s.raw.finish(globalCollectorInst().now())
	token := s.token.clone()
	isRoot := s.isRoot
	id := s.id
	shared := &s.raw
	events := s.pendingEvents
	s.mu.Unlock()

	// Each queued event rides along as its own rawSpan in the same
	// submission, parented on this span's id, so the collector re-attaches
	// it exactly the way a LocalSpans batch's own Event entries are
	// re-attached in mountDanglings.
	g := globalCollectorInst()
	for _, item := range token {
		g.send(submitSpansCmd{item: item, payload: singleSpanPayload{span: shared}})
		for i := range events {
			ev := events[i]
			g.send(submitSpansCmd{item: item, payload: singleSpanPayload{span: &ev}})
		}
	}

	if isRoot {
		g.send(commitCollectCmd{id: id})
	}
}

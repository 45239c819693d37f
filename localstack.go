//go:build !fastrace_disable

package fastrace

import "sync"

// defaultStackDepth and defaultQueueCapacity mirror spec's memory bounds:
// at most 4096 nested span lines per goroutine, at most 10240 buffered raw
// spans per line. Both overflows are silent drops (spec §5).
const (
	defaultStackDepth    = 4096
	defaultQueueCapacity = 10240
)

// spanLine is one tracing context on the local span stack: a bounded
// buffer of raw spans plus the collect token and currently-open parent for
// whichever LocalSpan is innermost right now.
type spanLine struct {
	queue           []rawSpan
	token           collectToken
	currentParentID SpanID
	hasParent       bool
	epoch           uint64
}

// localSpanStack is the goroutine-confined stack of spanLines. It must never
// be shared across goroutines; the package enforces that by keying its
// registry on the calling goroutine's id (see goroutine.go) rather than
// exposing the stack itself on the public API.
type localSpanStack struct {
	lines []spanLine
}

var (
	stacksMu      sync.Mutex
	stacks        = map[int64]*localSpanStack{}
	nextLineEpoch uint64
)

func currentStack(create bool) (*localSpanStack, int64) {
	gid := goroutineID()
	stacksMu.Lock()
	defer stacksMu.Unlock()
	s := stacks[gid]
	if s == nil && create {
		s = &localSpanStack{}
		stacks[gid] = s
	}
	return s, gid
}

// dropStackIfEmpty removes the goroutine's registry entry once its stack is
// empty, so idle goroutines never hold tracing state, and so a reused
// goroutine id never inherits another goroutine's stale lines.
func dropStackIfEmpty(gid int64, s *localSpanStack) {
	if len(s.lines) != 0 {
		return
	}
	stacksMu.Lock()
	defer stacksMu.Unlock()
	if stacks[gid] == s {
		delete(stacks, gid)
	}
}

// pushLine installs a new spanLine on top of the calling goroutine's stack.
// Returns false (a no-op push) if the stack is already at capacity.
func pushLine(token collectToken, parentID SpanID, hasParent bool) (epoch uint64, ok bool) {
	s, _ := currentStack(true)
	stacksMu.Lock()
	defer stacksMu.Unlock()
	if len(s.lines) >= defaultStackDepth {
		return 0, false
	}
	nextLineEpoch++
	e := nextLineEpoch
	s.lines = append(s.lines, spanLine{
		token:           token,
		currentParentID: parentID,
		hasParent:       hasParent,
		epoch:           e,
	})
	return e, true
}

// popLine pops the top spanLine if its epoch still matches (i.e. no nested
// guard/collector was left open on top of it), returning the drained line
// and true on success. A mismatched epoch is a no-op per spec §4.3/§4.6.
func popLine(epoch uint64) (spanLine, bool) {
	s, gid := currentStack(false)
	if s == nil {
		return spanLine{}, false
	}
	stacksMu.Lock()
	if len(s.lines) == 0 || s.lines[len(s.lines)-1].epoch != epoch {
		stacksMu.Unlock()
		return spanLine{}, false
	}
	line := s.lines[len(s.lines)-1]
	s.lines = s.lines[:len(s.lines)-1]
	stacksMu.Unlock()

	dropStackIfEmpty(gid, s)
	return line, true
}

// topLineToken returns a snapshot of the current top line's token and its
// innermost open span id, if any. The innermost open span id - not the
// token's own parent_id, which names the line's external seed - is what a
// new cross-thread span entered via EnterWithLocalParent must be parented
// under.
func topLineToken() (token collectToken, parentID SpanID, hasParent bool, ok bool) {
	s, _ := currentStack(false)
	if s == nil {
		return nil, 0, false, false
	}
	stacksMu.Lock()
	defer stacksMu.Unlock()
	if len(s.lines) == 0 {
		return nil, 0, false, false
	}
	top := &s.lines[len(s.lines)-1]
	return top.token, top.currentParentID, top.hasParent, true
}

// enterLocal pushes a new rawSpan onto the top line, per spec §4.3. It
// returns a handle (epoch, index) used to close the span later, or ok=false
// if there is no open line or its queue is at capacity (both silent drops).
func enterLocal(name string) (handle localSpanHandle, ok bool) {
	s, _ := currentStack(false)
	if s == nil {
		return localSpanHandle{}, false
	}

	stacksMu.Lock()
	defer stacksMu.Unlock()

	if len(s.lines) == 0 {
		return localSpanHandle{}, false
	}
	top := &s.lines[len(s.lines)-1]
	if len(top.queue) >= defaultQueueCapacity {
		return localSpanHandle{}, false
	}

	id := globalIDs().nextSpanID()
	begin := globalCollectorInst().now()
	parentID, hasParent := top.currentParentID, top.hasParent

	top.queue = append(top.queue, newRawSpan(id, parentID, hasParent, begin, name, rawKindSpan))
	idx := len(top.queue) - 1

	top.currentParentID = id
	top.hasParent = true

	return localSpanHandle{epoch: top.epoch, index: idx, id: id}, true
}

// localSpanHandle identifies one open local span: the line it lives on
// (by epoch, so a popped line is detected) and its index within that
// line's queue.
type localSpanHandle struct {
	epoch uint64
	index int
	id    SpanID
}

// endLocal stamps the end time on the span identified by handle and
// restores the line's current parent, provided handle still refers to the
// innermost open span on the (unpopped) top line. A stale epoch or a
// non-LIFO close is a no-op (spec §4.3, §8 property 8).
func endLocal(handle localSpanHandle, end Instant) {
	s, _ := currentStack(false)
	if s == nil {
		return
	}

	stacksMu.Lock()
	defer stacksMu.Unlock()

	if len(s.lines) == 0 {
		return
	}
	top := &s.lines[len(s.lines)-1]
	if top.epoch != handle.epoch {
		return
	}
	if handle.index < 0 || handle.index >= len(top.queue) {
		return
	}
	if top.currentParentID != handle.id || !top.hasParent {
		// LIFO violation: some other span is innermost. Skip closing.
		return
	}

	span := &top.queue[handle.index]
	span.finish(end)
	top.currentParentID = span.parentID
	top.hasParent = span.hasParent
}

// addLocalAnnotation pushes an Event or PropertiesOnly entry parented under
// the current top line's open span, or is a no-op if there is no open line
// or its queue is full.
func addLocalAnnotation(name string, props []Property, kind rawKind) {
	s, _ := currentStack(false)
	if s == nil {
		return
	}

	stacksMu.Lock()
	defer stacksMu.Unlock()

	if len(s.lines) == 0 {
		return
	}
	top := &s.lines[len(s.lines)-1]
	if len(top.queue) >= defaultQueueCapacity {
		return
	}

	begin := globalCollectorInst().now()
	rs := newRawSpan(0, top.currentParentID, top.hasParent, begin, name, kind)
	rs.properties = props
	top.queue = append(top.queue, rs)
}

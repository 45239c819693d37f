//go:build !fastrace_disable

package fastrace

// LocalSpan is the cheap, goroutine-confined span handle: entering one
// costs an append onto the current SpanLine's queue, no allocation beyond
// the slice growth already amortized by the queue's capacity, and a short
// hold of the package's local-stack registry mutex (spec §4.3). Use it for
// the common case; reach for Span only when a span handle must cross
// goroutines.
//
// The zero value is not meaningful; construct one with LocalSpanEnter.
type LocalSpan struct {
	handle localSpanHandle
	ok     bool
}

// LocalSpanEnter pushes a new LocalSpan onto the calling goroutine's
// current span line. If there is no line (no SetLocalParent/LocalCollector
// is active on this goroutine) or the line's queue is at capacity, it
// returns a no-op LocalSpan whose methods are all safe, silent no-ops.
func LocalSpanEnter(name string) LocalSpan {
	handle, ok := enterLocal(name)
	return LocalSpan{handle: handle, ok: ok}
}

// AddEvent appends a point-in-time annotation parented under this
// LocalSpan's current innermost span.
func (ls LocalSpan) AddEvent(name string, props ...Property) {
	if !ls.ok {
		return
	}
	addLocalAnnotation(name, props, rawKindEvent)
}

// AddProperty appends one key/value annotation to the innermost open span on
// the calling goroutine's current line, as AddProperties does.
func (ls LocalSpan) AddProperty(key, value string) {
	ls.AddProperties([]Property{{Key: key, Value: value}})
}

// AddProperties appends key/value annotations to the innermost open span on
// the calling goroutine's current line. That is this LocalSpan while no
// LocalSpan entered after it is still open; otherwise the properties land on
// that later span.
func (ls LocalSpan) AddProperties(props []Property) {
	if !ls.ok {
		return
	}
	addLocalAnnotation("", props, rawKindPropertiesOnly)
}

// End stamps the end time on this LocalSpan and restores its line's
// current parent, provided no other LocalSpan was entered afterward and
// left open (a LIFO violation, silently skipped per spec §4.3/§8 property
// 8). End is idempotent: a second call is a no-op.
func (ls *LocalSpan) End() {
	if !ls.ok {
		return
	}
	ls.ok = false
	endLocal(ls.handle, globalCollectorInst().now())
}

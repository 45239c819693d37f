//go:build !fastrace_disable

package fastrace

// rawKind distinguishes the three flavors of raw span entry: a real timed
// span, a point-in-time event, or a properties-only annotation that merges
// into its parent without producing its own record.
type rawKind uint8

const (
	rawKindSpan rawKind = iota
	rawKindEvent
	rawKindPropertiesOnly
)

// rawSpan is the internal record produced by both local spans and
// cross-thread Spans before it is materialized into a SpanRecord. It is
// mutated only by the goroutine that created it, until submission; after
// submission it must be treated as immutable.
type rawSpan struct {
	id         SpanID
	parentID   SpanID // zero means "no parent in this batch"
	hasParent  bool
	begin      Instant
	end        Instant
	finished   bool // false until finish is called; see materialize's fallback end.
	name       string
	properties []Property
	kind       rawKind
}

func newRawSpan(id SpanID, parentID SpanID, hasParent bool, begin Instant, name string, kind rawKind) rawSpan {
	return rawSpan{
		id:        id,
		parentID:  parentID,
		hasParent: hasParent,
		begin:     begin,
		name:      name,
		kind:      kind,
	}
}

func (r *rawSpan) addProperty(key, value string) {
	r.properties = append(r.properties, Property{Key: key, Value: value})
}

func (r *rawSpan) addProperties(props []Property) {
	r.properties = append(r.properties, props...)
}

func (r *rawSpan) finish(end Instant) {
	if end < r.begin {
		end = r.begin
	}
	r.end = end
	r.finished = true
}

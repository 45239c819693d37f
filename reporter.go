package fastrace

// Property is one ordered key/value annotation on a span or event. It is
// an ordered slice rather than a map throughout this package because spec
// requires annotation order to survive to the Reporter, which a map
// cannot provide - the teacher's own tag map is generalized into this
// shape for that reason (see DESIGN.md).
type Property struct {
	Key   string
	Value string
}

// SpanRecord is a fully materialized, immutable span ready for export. The
// global collector hands a batch of these to the installed Reporter once
// per tick.
type SpanRecord struct {
	TraceID         TraceID
	SpanID          SpanID
	ParentID        SpanID // zero if this is a root span
	BeginUnixTimeNS int64
	DurationNS      int64
	Name            string
	Properties      []Property
	Events          []EventRecord
}

// EventRecord is a point-in-time annotation attached to its resolved parent
// SpanRecord.
type EventRecord struct {
	Name            string
	TimestampUnixNS int64
	Properties      []Property
}

// Reporter receives finished span records from the collector thread. report
// must not block indefinitely: the collector does not protect other
// producers from a slow reporter beyond ring backpressure.
type Reporter interface {
	// Report is called with zero or more records on the collector's
	// dedicated goroutine.
	Report(records []SpanRecord)

	// Shutdown is called once per installed Reporter, from the package-level
	// Shutdown at process teardown; Flush never calls it.
	Shutdown()
}

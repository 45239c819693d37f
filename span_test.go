//go:build !fastrace_disable

package fastrace

import (
	"testing"
	"time"

	"github.com/zoobzio/clockz"

	"github.com/fast/fastrace/reporters"
)

func testClockConfig(clock Clock) Config {
	cfg := DefaultConfig()
	cfg.Clock = clock
	cfg.ReportInterval = time.Hour // ticks never fire; tests drive via Flush.
	return cfg
}

func findRecord(records []SpanRecord, name string) (SpanRecord, bool) {
	for _, r := range records {
		if r.Name == name {
			return r, true
		}
	}
	return SpanRecord{}, false
}

// TestSingleLocalSpan covers spec scenario S1: a root with one LocalSpan
// nested under it yields exactly two records with the expected parentage.
func TestSingleLocalSpan(t *testing.T) {
	reporter := reporters.NewTest()
	SetReporter(reporter, testClockConfig(clockz.NewFakeClock()))

	ctx := SpanContext{TraceID: TraceID{Lo: 1}, SpanID: SpanID(99), Sampled: true}
	root := Root("r", ctx)
	guard := root.SetLocalParent()
	ls := LocalSpanEnter("a")
	ls.End()
	guard.End()
	root.End()
	Flush()

	records := reporter.Spans()
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d: %+v", len(records), records)
	}

	rootRec, ok := findRecord(records, "r")
	if !ok {
		t.Fatal("missing root record")
	}
	if rootRec.ParentID != SpanID(99) {
		t.Errorf("expected root parent 99, got %v", rootRec.ParentID)
	}
	if rootRec.TraceID != ctx.TraceID {
		t.Errorf("expected root trace %v, got %v", ctx.TraceID, rootRec.TraceID)
	}

	childRec, ok := findRecord(records, "a")
	if !ok {
		t.Fatal("missing child record")
	}
	if childRec.ParentID != rootRec.SpanID {
		t.Errorf("expected child parent %v, got %v", rootRec.SpanID, childRec.ParentID)
	}
	if childRec.TraceID != rootRec.TraceID {
		t.Error("expected child to share trace id with root")
	}
}

// TestUnsampledRootEmitsNothing covers spec scenario S2 and property 5.
func TestUnsampledRootEmitsNothing(t *testing.T) {
	reporter := reporters.NewTest()
	SetReporter(reporter, testClockConfig(clockz.NewFakeClock()))

	ctx := SpanContext{TraceID: TraceID{Lo: 2}, SpanID: SpanID(1), Sampled: false}
	root := Root("r", ctx)
	if root != noopSpan {
		t.Fatal("expected Root with Sampled=false to return the shared noop span")
	}

	guard := root.SetLocalParent()
	ls := LocalSpanEnter("a")
	ls.AddProperty("k", "v")
	ls.End()
	guard.End()
	root.End()
	Flush()

	if got := reporter.Spans(); len(got) != 0 {
		t.Errorf("expected 0 records for an unsampled trace, got %d", len(got))
	}
}

// TestCancelEmitsNothing covers spec scenario S3 and property 6.
func TestCancelEmitsNothing(t *testing.T) {
	reporter := reporters.NewTest()
	SetReporter(reporter, testClockConfig(clockz.NewFakeClock()))

	ctx := SpanContext{TraceID: TraceID{Lo: 3}, SpanID: SpanID(1), Sampled: true}
	root := Root("r", ctx)
	guard := root.SetLocalParent()
	ls := LocalSpanEnter("a")
	ls.End()
	guard.End()
	root.Cancel()
	Flush()

	if got := reporter.Spans(); len(got) != 0 {
		t.Errorf("expected 0 records after Cancel, got %d", len(got))
	}

	// Cancel and End are both idempotent terminal transitions.
	root.End()
	Flush()
	if got := reporter.Spans(); len(got) != 0 {
		t.Errorf("expected End after Cancel to remain a no-op, got %d records", len(got))
	}
}

// TestCrossThreadParentPreserved covers spec scenario S4: a Span handed to
// another goroutine via EnterWithParent preserves trace and parentage.
func TestCrossThreadParentPreserved(t *testing.T) {
	reporter := reporters.NewTest()
	SetReporter(reporter, testClockConfig(clockz.NewFakeClock()))

	ctx := SpanContext{TraceID: TraceID{Lo: 4}, SpanID: SpanID(1), Sampled: true}
	root := Root("r", ctx)

	done := make(chan struct{})
	go func() {
		defer close(done)
		child := EnterWithParent("worker", root)
		child.AddProperty("thread", "B")
		child.End()
	}()
	<-done

	root.End()
	Flush()

	records := reporter.Spans()
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	rootRec, _ := findRecord(records, "r")
	childRec, ok := findRecord(records, "worker")
	if !ok {
		t.Fatal("missing child record")
	}
	if childRec.ParentID != rootRec.SpanID {
		t.Errorf("expected cross-thread child's parent to be the root span, got %v want %v", childRec.ParentID, rootRec.SpanID)
	}
	if childRec.TraceID != rootRec.TraceID {
		t.Error("expected cross-thread child to share the root's trace id")
	}
}

// TestTailSampledDropDiscardsEverything covers spec scenario S6: with tail
// sampling on, cancelling the root discards every raw span already
// submitted for that trace, not just the root's own.
func TestTailSampledDropDiscardsEverything(t *testing.T) {
	reporter := reporters.NewTest()
	cfg := testClockConfig(clockz.NewFakeClock())
	cfg.TailSampled = true
	SetReporter(reporter, cfg)

	ctx := SpanContext{TraceID: TraceID{Lo: 6}, SpanID: SpanID(1), Sampled: true}
	root := Root("r", ctx)
	guard := root.SetLocalParent()
	for _, name := range []string{"a", "b", "c"} {
		ls := LocalSpanEnter(name)
		ls.End()
	}
	guard.End()
	root.Cancel()
	Flush()

	if got := reporter.Spans(); len(got) != 0 {
		t.Errorf("expected 0 records after a tail-sampled drop, got %d", len(got))
	}
}

// TestTailSampledCommitIsAtomic covers property 7: nothing from a
// tail-sampled trace is visible until its root commits, and then the whole
// trace arrives together.
func TestTailSampledCommitIsAtomic(t *testing.T) {
	reporter := reporters.NewTest()
	cfg := testClockConfig(clockz.NewFakeClock())
	cfg.TailSampled = true
	SetReporter(reporter, cfg)

	ctx := SpanContext{TraceID: TraceID{Lo: 7}, SpanID: SpanID(1), Sampled: true}
	root := Root("r", ctx)
	guard := root.SetLocalParent()
	ls := LocalSpanEnter("a")
	ls.End()
	guard.End()
	Flush()

	if got := reporter.Spans(); len(got) != 0 {
		t.Fatalf("expected 0 records before the root commits, got %d", len(got))
	}

	root.End()
	Flush()

	if got := reporter.Spans(); len(got) != 2 {
		t.Fatalf("expected both records to arrive together on commit, got %d", len(got))
	}
}

// TestDurationNonNegative covers property 4.
func TestDurationNonNegative(t *testing.T) {
	reporter := reporters.NewTest()
	SetReporter(reporter, testClockConfig(clockz.NewFakeClock()))

	ctx := RandomSpanContext()
	root := Root("r", ctx)
	root.End()
	Flush()

	records := reporter.Spans()
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].DurationNS < 0 {
		t.Errorf("expected nonnegative duration, got %d", records[0].DurationNS)
	}
}

// TestEventsAttachToSpan exercises Span.AddEvent's queued-event path
// through End, verifying the event rides along as its own record attached
// to the span that produced it.
func TestEventsAttachToSpan(t *testing.T) {
	reporter := reporters.NewTest()
	SetReporter(reporter, testClockConfig(clockz.NewFakeClock()))

	ctx := RandomSpanContext()
	root := Root("r", ctx)
	root.AddEvent("checkpoint", Property{Key: "n", Value: "1"})
	root.End()
	Flush()

	records := reporter.Spans()
	rootRec, ok := findRecord(records, "r")
	if !ok {
		t.Fatal("missing root record")
	}
	if len(rootRec.Events) != 1 {
		t.Fatalf("expected 1 event on the root record, got %d", len(rootRec.Events))
	}
	if rootRec.Events[0].Name != "checkpoint" {
		t.Errorf("expected event name checkpoint, got %s", rootRec.Events[0].Name)
	}
}

// TestPushChildSpansGraftsBatch exercises Span.PushChildSpans: a detached
// LocalCollector's batch attaches under the span's token just like a
// LocalParentGuard's own submission would.
func TestPushChildSpansGraftsBatch(t *testing.T) {
	reporter := reporters.NewTest()
	SetReporter(reporter, testClockConfig(clockz.NewFakeClock()))

	ctx := RandomSpanContext()
	root := Root("r", ctx)

	lc := StartLocalCollector()
	ls := LocalSpanEnter("detached")
	ls.End()
	batch := lc.Collect()

	root.PushChildSpans(batch)
	root.End()
	Flush()

	records := reporter.Spans()
	if _, ok := findRecord(records, "detached"); !ok {
		t.Errorf("expected the grafted batch's span to be reported, got %+v", records)
	}
}

// TestElapsedIsNonNegative sanity-checks Span.Elapsed and its noop
// counterpart.
func TestElapsedIsNonNegative(t *testing.T) {
	if noopSpan.Elapsed() != 0 {
		t.Error("expected a noop span's Elapsed to be zero")
	}

	SetReporter(reporters.NewTest(), testClockConfig(clockz.NewFakeClock()))
	root := Root("r", RandomSpanContext())
	defer root.End()
	if root.Elapsed() < 0 {
		t.Error("expected nonnegative elapsed duration")
	}
}

//go:build !fastrace_disable

package fastrace

import (
	"testing"
	"time"

	"github.com/zoobzio/clockz"

	"github.com/fast/fastrace/reporters"
)

// TestLocalSpanLIFOViolationIsSafe covers spec property 8: closing spans
// out of order never corrupts unrelated records, it just leaves the
// violating End calls as silent no-ops.
func TestLocalSpanLIFOViolationIsSafe(t *testing.T) {
	reporter := reporters.NewTest()
	cfg := DefaultConfig()
	cfg.Clock = clockz.NewFakeClock()
	cfg.ReportInterval = time.Hour
	SetReporter(reporter, cfg)

	root := Root("r", RandomSpanContext())
	guard := root.SetLocalParent()

	a := LocalSpanEnter("a")
	b := LocalSpanEnter("b")

	// Violate LIFO: close a (the outer span) while b is still open.
	a.End()
	// The violating End is a no-op; b is still innermost.
	b.End()
	// a.End() was already consumed (ls.ok is now false), so a second call
	// here is also a no-op, not a double-close of b.
	a.End()

	guard.End()
	root.End()
	Flush()

	records := reporter.Spans()
	bRec, ok := findRecord(records, "b")
	if !ok {
		t.Fatal("missing record b")
	}
	// b's duration must still be well-formed: the violation never corrupted
	// its own end stamp.
	if bRec.DurationNS < 0 {
		t.Errorf("expected b's duration to remain nonnegative, got %d", bRec.DurationNS)
	}
	if _, ok := findRecord(records, "a"); !ok {
		t.Error("expected a's own record to still be reported despite the violation")
	}
}

// TestLocalCollectorDetachedCollection exercises LocalCollector/LocalSpans
// outside the global collector entirely: ToSpanRecords materializes
// synchronously without ever installing a Reporter.
func TestLocalCollectorDetachedCollection(t *testing.T) {
	lc := StartLocalCollector()
	a := LocalSpanEnter("a")
	a.AddProperty("k", "v")
	a.End()
	batch := lc.Collect()

	parentCtx := SpanContext{TraceID: TraceID{Lo: 9}, SpanID: SpanID(5), Sampled: true}
	records := batch.ToSpanRecords(parentCtx)

	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].ParentID != SpanID(5) {
		t.Errorf("expected the detached span's parent to fall back to parentCtx, got %v", records[0].ParentID)
	}
	if records[0].TraceID != parentCtx.TraceID {
		t.Error("expected the detached span to carry parentCtx's trace id")
	}
}

// TestLocalCollectorSecondCollectIsNoop ensures Collect is not repeatable.
func TestLocalCollectorSecondCollectIsNoop(t *testing.T) {
	lc := StartLocalCollector()
	ls := LocalSpanEnter("a")
	ls.End()
	_ = lc.Collect()

	second := lc.Collect()
	if len(second.spans) != 0 {
		t.Errorf("expected a second Collect to return an empty batch, got %d spans", len(second.spans))
	}
}

// TestNestedGuardsPopInReverseOrder verifies that ending an outer guard
// while an inner one is still open does not pop the inner line: the inner
// guard still drains its own line afterwards, and the leaf span entered
// under it is reported.
func TestNestedGuardsPopInReverseOrder(t *testing.T) {
	reporter := reporters.NewTest()
	cfg := DefaultConfig()
	cfg.Clock = clockz.NewFakeClock()
	cfg.ReportInterval = time.Hour
	SetReporter(reporter, cfg)

	outer := Root("outer", RandomSpanContext())
	outerGuard := outer.SetLocalParent()
	outerEpoch := outerGuard.epoch

	inner := EnterWithLocalParent("inner")
	innerGuard := inner.SetLocalParent()

	ls := LocalSpanEnter("leaf")
	ls.End()

	// Violate guard order: ending outer first must not pop inner's line -
	// the epoch check in popLine leaves it in place for its rightful owner.
	outerGuard.End()
	innerGuard.End()

	// Drain the line outerGuard abandoned so it cannot leak into another
	// goroutine-confined test sharing this test binary's process.
	popLine(outerEpoch)

	inner.End()
	outer.End()
	Flush()

	records := reporter.Spans()
	if _, ok := findRecord(records, "leaf"); !ok {
		t.Errorf("expected leaf span to survive the guard misordering, got %+v", records)
	}
}

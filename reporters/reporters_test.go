package reporters

import (
	"testing"

	"github.com/fast/fastrace"
)

func TestTestReporterAccumulatesAndResets(t *testing.T) {
	r := NewTest()
	r.Report([]fastrace.SpanRecord{{Name: "a"}, {Name: "b"}})
	r.Report([]fastrace.SpanRecord{{Name: "c"}})

	got := r.Spans()
	if len(got) != 3 {
		t.Fatalf("expected 3 accumulated records, got %d", len(got))
	}

	// Spans returns a copy: mutating it must not affect the reporter's
	// own buffer.
	got[0].Name = "mutated"
	if r.Spans()[0].Name != "a" {
		t.Error("expected Spans() to return an independent copy")
	}

	r.Reset()
	if got := r.Spans(); len(got) != 0 {
		t.Errorf("expected Reset to clear the buffer, got %d records", len(got))
	}

	r.Shutdown() // no-op, but must not panic and must not clear anything.
}

func TestConsoleReporterDoesNotPanic(t *testing.T) {
	c := Console{}
	c.Report([]fastrace.SpanRecord{
		{Name: "a", Properties: []fastrace.Property{{Key: "k", Value: "v"}}},
	})
	c.Report(nil)
	c.Shutdown()
}

// Package reporters carries minimal, ambient Reporter implementations:
// dev-loop and test-harness conveniences, not concrete network exporters
// (those stay out of scope for the core module).
package reporters

import (
	"fmt"
	"os"

	"github.com/fast/fastrace"
)

// Console prints every received SpanRecord to stderr, one per line,
// grounded on fastrace's own console_reporter.rs.
type Console struct{}

// Report writes each record to stderr.
func (Console) Report(records []fastrace.SpanRecord) {
	for _, r := range records {
		fmt.Fprintf(os.Stderr, "%s trace=%s span=%s parent=%s begin=%d dur=%dns props=%v events=%d\n",
			r.Name, r.TraceID, r.SpanID, r.ParentID, r.BeginUnixTimeNS, r.DurationNS, r.Properties, len(r.Events))
	}
}

// Shutdown is a no-op; stderr needs no draining.
func (Console) Shutdown() {}

//go:build fastrace_disable

package fastrace

import (
	"crypto/rand"
	"encoding/binary"
	"time"
)

// This file provides the static-disable build of the package (spec §4.10):
// every exported operation compiles to a cheap no-op, no global state is
// ever allocated, and the collector goroutine is never started. Build with
// -tags fastrace_disable to link this implementation instead of the real
// engine in collector.go/span.go/localspan.go/guard.go/localcollector.go,
// which this build excludes entirely via their own build constraints.

// Span is the disabled build's stand-in for the real cross-thread span
// handle. Every method is a no-op; there is nothing to collect.
type Span struct{}

// LocalSpan is the disabled build's stand-in for the real goroutine-
// confined span handle.
type LocalSpan struct{}

// LocalParentGuard is the disabled build's stand-in for the real guard.
type LocalParentGuard struct{}

// LocalCollector is the disabled build's stand-in for the real detached
// collector.
type LocalCollector struct{}

// LocalSpans is the disabled build's stand-in for a drained span-line
// batch; it is always empty.
type LocalSpans struct{}

var noopSpanDisabled = &Span{}

// RandomSpanContext still returns a usable SpanContext in the disabled
// build (SpanContext is inert data with no engine behind it), generating
// its TraceID directly from crypto/rand rather than through the engine's
// pooled id generator, which this build never allocates.
func RandomSpanContext() SpanContext {
	var b [16]byte
	_, _ = rand.Read(b[:])
	return SpanContext{
		TraceID: TraceID{Hi: binary.BigEndian.Uint64(b[0:8]), Lo: binary.BigEndian.Uint64(b[8:16])},
		Sampled: true,
	}
}

// Root always returns a no-op Span; the disabled build never samples.
func Root(string, SpanContext) *Span { return noopSpanDisabled }

// EnterWithParent always returns a no-op Span.
func EnterWithParent(string, *Span) *Span { return noopSpanDisabled }

// EnterWithLocalParent always returns a no-op Span.
func EnterWithLocalParent(string) *Span { return noopSpanDisabled }

// LocalSpanEnter always returns a no-op LocalSpan.
func LocalSpanEnter(string) LocalSpan { return LocalSpan{} }

// StartLocalCollector always returns a no-op LocalCollector.
func StartLocalCollector() *LocalCollector { return &LocalCollector{} }

// SetReporter is a no-op: no collector goroutine is ever started.
func SetReporter(Reporter, Config) {}

// SetPanicHook is a no-op.
func SetPanicHook(func(r any)) {}

// Flush is a no-op: there is never anything buffered to drain.
func Flush() {}

// Shutdown is a no-op.
func Shutdown() {}

func (*Span) SetLocalParent() *LocalParentGuard { return &LocalParentGuard{} }
func (*Span) AddEvent(string, ...Property)      {}
func (*Span) AddProperty(string, string)        {}
func (*Span) AddProperties([]Property)          {}
func (*Span) PushChildSpans(LocalSpans)         {}
func (*Span) Elapsed() time.Duration            { return 0 }
func (*Span) Cancel()                           {}
func (*Span) End()                              {}

func (LocalSpan) AddEvent(string, ...Property) {}
func (LocalSpan) AddProperty(string, string)   {}
func (LocalSpan) AddProperties([]Property)     {}
func (*LocalSpan) End()                        {}

func (*LocalParentGuard) End() {}

func (*LocalCollector) Collect() LocalSpans { return LocalSpans{} }

func (LocalSpans) ToSpanRecords(SpanContext) []SpanRecord { return nil }

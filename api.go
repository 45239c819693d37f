// Package fastrace is a minimal, primitive distributed tracing core.
//
// It focuses purely on span collection: reconciling a cheap, goroutine-
// confined LocalSpan with a heavier cross-goroutine Span into one
// parent/child graph, buffering spans per producer, and draining them
// across a lock-free boundary into a single global collector. Export to
// any concrete backend (Jaeger, Datadog, OTel collectors) is left to a
// Reporter implementation the caller supplies; this package does not ship
// one.
//
// Core Components:
//   - Span: the cross-thread span handle, safe to pass between goroutines.
//   - LocalSpan: the cheap, goroutine-confined span handle.
//   - LocalParentGuard: marks a Span as the calling goroutine's local
//     parent for the lifetime of the guard.
//   - LocalCollector: gathers LocalSpans outside of any Span at all.
//   - Reporter: receives finished SpanRecord batches from the collector.
//
// Basic Usage:
//
//	fastrace.SetReporter(myReporter, fastrace.DefaultConfig())
//	defer fastrace.Flush()
//
//	span := fastrace.Root("handle-request", fastrace.RandomSpanContext())
//	defer span.End()
//
//	guard := span.SetLocalParent()
//	defer guard.End()
//
//	ls := fastrace.LocalSpanEnter("load-user")
//	ls.AddProperty("user.id", "123")
//	ls.End()
//
// Thread Safety:
//
// Span is safe to hand to another goroutine once constructed; its methods
// take an internal lock around the end-of-life transition. LocalSpan is
// deliberately goroutine-confined and must never be shared.
//
// Resource Cleanup:
//
// Call Flush to drain every producer ring and force a Reporter.Report. Call
// Shutdown before process exit to flush, stop the collector goroutine, and
// call Reporter.Shutdown.
package fastrace

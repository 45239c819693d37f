package fastrace

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
)

// TraceID identifies the set of spans that make up one trace. It is
// nonzero for every active trace.
type TraceID struct {
	Hi uint64
	Lo uint64
}

// SpanID identifies a single span within a trace. It is nonzero for every
// active span.
type SpanID uint64

// String renders the TraceID as 32 lowercase hex characters.
func (t TraceID) String() string {
	return fmt.Sprintf("%016x%016x", t.Hi, t.Lo)
}

// IsZero reports whether the TraceID is the zero value.
func (t TraceID) IsZero() bool {
	return t.Hi == 0 && t.Lo == 0
}

// String renders the SpanID as 16 lowercase hex characters.
func (s SpanID) String() string {
	return fmt.Sprintf("%016x", uint64(s))
}

// ParseTraceID parses a 32-hex-character TraceID.
func ParseTraceID(s string) (TraceID, bool) {
	if len(s) != 32 {
		return TraceID{}, false
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return TraceID{}, false
	}
	return TraceID{
		Hi: binary.BigEndian.Uint64(raw[0:8]),
		Lo: binary.BigEndian.Uint64(raw[8:16]),
	}, true
}

// ParseSpanID parses a 16-hex-character SpanID.
func ParseSpanID(s string) (SpanID, bool) {
	if len(s) != 16 {
		return 0, false
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return 0, false
	}
	return SpanID(binary.BigEndian.Uint64(raw)), true
}

// SpanContext carries the identity of a span across process boundaries:
// the trace it belongs to, the span it should be parented under, and
// whether the trace is sampled. It is a value type safe to copy.
type SpanContext struct {
	TraceID TraceID
	SpanID  SpanID
	Sampled bool
}

// NewSpanContext builds a SpanContext with Sampled defaulted to true.
func NewSpanContext(traceID TraceID, spanID SpanID) SpanContext {
	return SpanContext{TraceID: traceID, SpanID: spanID, Sampled: true}
}

// WithSampled returns a copy of the SpanContext with the Sampled flag set.
func (c SpanContext) WithSampled(sampled bool) SpanContext {
	c.Sampled = sampled
	return c
}

// EncodeW3CTraceparent renders the SpanContext as a W3C Trace Context
// traceparent header value: "00-<trace_id>-<span_id>-<flags>".
func (c SpanContext) EncodeW3CTraceparent() string {
	flags := byte(0)
	if c.Sampled {
		flags = 1
	}
	return fmt.Sprintf("00-%s-%s-%02x", c.TraceID.String(), c.SpanID.String(), flags)
}

// DecodeW3CTraceparent parses a W3C Trace Context traceparent header value.
// It returns false for malformed input, a wrong length, or a version other
// than "00".
func DecodeW3CTraceparent(traceparent string) (SpanContext, bool) {
	// version(2) '-' trace_id(32) '-' span_id(16) '-' flags(2) == 55 chars.
	if len(traceparent) != 55 {
		return SpanContext{}, false
	}
	if traceparent[2] != '-' || traceparent[35] != '-' || traceparent[52] != '-' {
		return SpanContext{}, false
	}
	if traceparent[0:2] != "00" {
		return SpanContext{}, false
	}

	traceID, ok := ParseTraceID(traceparent[3:35])
	if !ok {
		return SpanContext{}, false
	}
	spanID, ok := ParseSpanID(traceparent[36:52])
	if !ok {
		return SpanContext{}, false
	}
	flagsByte, err := hex.DecodeString(traceparent[53:55])
	if err != nil {
		return SpanContext{}, false
	}

	return SpanContext{
		TraceID: traceID,
		SpanID:  spanID,
		Sampled: flagsByte[0]&1 == 1,
	}, true
}

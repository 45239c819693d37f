//go:build !fastrace_disable

package fastrace

// materialize turns one finished traceAssembly into the SpanRecords the
// Reporter sees. It is grounded on fastrace's own amend_span/
// amend_local_span/mount_danglings trio: every rawSpan of kind Span becomes
// a record first, then every Event and PropertiesOnly entry is folded into
// the record its parent id resolves to.
//
// Per spec §4.8, a span's own parent_id (set when a caller calls
// EnterWithParent/PushChildSpans) takes priority over the submission's
// token-level parent; only a span with no parent of its own falls back to
// the parent the token carried when it was submitted.
func materialize(asm *traceAssembly, anc anchor) []SpanRecord {
	records := make(map[SpanID]*SpanRecord, len(asm.payloads))
	order := make([]SpanID, 0, len(asm.payloads))

	for _, p := range asm.payloads {
		fallback := p.payload.fallbackEnd()
		p.payload.walk(func(rs *rawSpan) {
			if rs.kind != rawKindSpan {
				return
			}
			end := rs.end
			if !rs.finished {
				// Never ended - e.g. a LocalSpan still open when its line
				// drained. Substitute the batch's drain instant so the
				// duration can never go negative (spec §3).
				end = fallback
				if end < rs.begin {
					end = rs.begin
				}
			}
			records[rs.id] = &SpanRecord{
				TraceID:         p.traceID,
				SpanID:          rs.id,
				ParentID:        resolveParent(rs, p),
				BeginUnixTimeNS: anc.toWallNS(rs.begin),
				DurationNS:      int64(end - rs.begin),
				Name:            rs.name,
				Properties:      rs.properties,
			}
			order = append(order, rs.id)
		})
	}

	mountDanglings(asm, records, anc)

	out := make([]SpanRecord, len(order))
	for i, id := range order {
		out[i] = *records[id]
	}
	return out
}

func resolveParent(rs *rawSpan, p pendingPayload) SpanID {
	if rs.hasParent {
		return rs.parentID
	}
	return p.parentID
}

// mountDanglings attaches every Event and PropertiesOnly rawSpan to the
// SpanRecord its resolved parent id names. If that parent is not present
// in this assembly - it finished in an earlier batch, or never arrived -
// the entry is re-parented onto the submission's own batch-root parent
// instead, per spec §4.8. Only an entry whose batch-root parent is also
// absent (e.g. a root already committed in a prior tick) is discarded.
func mountDanglings(asm *traceAssembly, records map[SpanID]*SpanRecord, anc anchor) {
	for _, p := range asm.payloads {
		p.payload.walk(func(rs *rawSpan) {
			if rs.kind == rawKindSpan {
				return
			}
			target, ok := records[resolveParent(rs, p)]
			if !ok {
				target, ok = records[p.parentID]
			}
			if !ok {
				return
			}
			amendOne(target, rs, anc)
		})
	}
}

// amendOne folds one non-span rawSpan into its resolved parent record.
func amendOne(target *SpanRecord, rs *rawSpan, anc anchor) {
	switch rs.kind {
	case rawKindEvent:
		target.Events = append(target.Events, EventRecord{
			Name:            rs.name,
			TimestampUnixNS: anc.toWallNS(rs.begin),
			Properties:      rs.properties,
		})
	case rawKindPropertiesOnly:
		target.Properties = append(target.Properties, rs.properties...)
	}
}

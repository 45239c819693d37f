//go:build !fastrace_disable

package fastrace

import (
	"crypto/rand"
	"encoding/binary"
	"runtime"
	"sync"

	"github.com/zoobzio/clockz"
)

// idGenerator amortizes crypto/rand overhead for trace and span ID
// generation via a background-refilled pool, matching the teacher's
// IDPool strategy generalized across both ID types.
type idGenerator struct {
	traceIDs *idPool[TraceID]
	spanIDs  *idPool[SpanID]
	once     sync.Once
}

func newIDGenerator() *idGenerator {
	return &idGenerator{}
}

func (g *idGenerator) ensurePools() {
	g.once.Do(func() {
		poolSize := runtime.NumCPU() * 100
		if poolSize < 16 {
			poolSize = 16
		}

		g.traceIDs = newIDPool(poolSize, func() TraceID {
			var b [16]byte
			if _, err := rand.Read(b[:]); err != nil {
				// Fallback: derive pseudo-randomness from wall time when
				// crypto/rand is unavailable.
				now := uint64(clockz.RealClock.Now().UnixNano())
				return TraceID{Hi: now, Lo: now ^ 0x9e3779b97f4a7c15}
			}
			return TraceID{
				Hi: binary.BigEndian.Uint64(b[0:8]),
				Lo: binary.BigEndian.Uint64(b[8:16]),
			}
		})

		g.spanIDs = newIDPool(poolSize, func() SpanID {
			var b [8]byte
			if _, err := rand.Read(b[:]); err != nil {
				now := uint64(clockz.RealClock.Now().UnixNano())
				return SpanID(now)
			}
			id := SpanID(binary.BigEndian.Uint64(b[:]))
			if id == 0 {
				id = 1
			}
			return id
		})
	})
}

func (g *idGenerator) nextTraceID() TraceID {
	g.ensurePools()
	return g.traceIDs.Get()
}

func (g *idGenerator) nextSpanID() SpanID {
	g.ensurePools()
	return g.spanIDs.Get()
}

func (g *idGenerator) close() {
	if g.traceIDs != nil {
		g.traceIDs.Close()
	}
	if g.spanIDs != nil {
		g.spanIDs.Close()
	}
}

var (
	idGenOnce sync.Once
	idGen     *idGenerator
)

// globalIDs returns the process-wide ID generator, created lazily on first
// use so that importing the package never allocates anything (spec §4.10).
func globalIDs() *idGenerator {
	idGenOnce.Do(func() {
		idGen = newIDGenerator()
	})
	return idGen
}

// RandomSpanContext creates a SpanContext with a fresh random TraceID and a
// zero SpanID, sampled by default. Use this to seed a new root trace.
func RandomSpanContext() SpanContext {
	return SpanContext{TraceID: globalIDs().nextTraceID(), Sampled: true}
}

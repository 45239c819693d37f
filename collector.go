//go:build !fastrace_disable

package fastrace

import (
	"sync"
	"sync/atomic"
)

// globalCollector is the single, process-wide worker that drains every
// producer ring, assembles traces, applies the tail-sampling policy, and
// dispatches finished records to the installed Reporter (spec §4.7).
//
// Its background-goroutine lifecycle (stopCh/done channel pair, a "started"
// flag guarded by lifecycleMu) is adapted from the teacher's Collector.start/close; what
// it does once woken - trace assembly, tail sampling, record
// materialization - has no teacher analogue and is grounded on fastrace's
// global_collector.rs instead.
//
// Fields below the dashed comment are touched only from inside
// handleCommands, which the tick goroutine and Flush take turns calling
// under lifecycleMu - so active-trace bookkeeping needs no locks of its
// own, matching spec §5's "the collector's assembly map is touched only by
// the collector thread."
type globalCollector struct {
	anchor anchor
	clock  Clock

	nextCollectID atomic.Uint32
	dropped       droppedCounter

	ringsMu sync.Mutex
	rings   map[int64]*producerRing

	lifecycleMu   sync.Mutex
	reporter      Reporter
	config        Config
	panicHook     func(r any)
	started       bool
	stopCh        chan struct{}
	done          chan struct{}
	flushRequests chan chan struct{}

	// -----------------------------------------------------------------
	active  map[collectID]*traceAssembly
	dropIDs *droppedIDSet
}

var (
	collectorOnce sync.Once
	collectorInst *globalCollector
)

// globalCollectorInst returns the process-wide collector, creating it
// lazily so importing the package allocates nothing until tracing actually
// starts.
func globalCollectorInst() *globalCollector {
	collectorOnce.Do(func() {
		c := DefaultConfig().Clock
		collectorInst = &globalCollector{
			clock:   c,
			rings:   make(map[int64]*producerRing),
			active:  make(map[collectID]*traceAssembly),
			dropIDs: newDroppedIDSet(),
		}
		collectorInst.anchor = newAnchor(c)
	})
	return collectorInst
}

func (g *globalCollector) now() Instant {
	return g.anchor.now(g.clock)
}

// ring returns (creating if necessary) the calling goroutine's producer
// ring. Registration under a goroutine-keyed map is the Go rendering of
// spec §4.2's "registered with the global collector under a thread-lifetime
// token". Rings are never removed from the map, so a ring outlives the
// goroutine that created it.
func (g *globalCollector) ring() *producerRing {
	gid := goroutineID()

	g.ringsMu.Lock()
	defer g.ringsMu.Unlock()

	r := g.rings[gid]
	if r == nil {
		r = newProducerRing(defaultRingCapacity, &g.dropped)
		g.rings[gid] = r
	}
	return r
}

func (g *globalCollector) send(cmd collectCommand) {
	g.ring().push(cmd)
}

func (g *globalCollector) allocateCollectID() collectID {
	return collectID(g.nextCollectID.Add(1))
}

// SetReporter installs the process-wide Reporter and Config, starting the
// collector's dedicated goroutine on first install (spec §4.9). Subsequent
// calls replace the reporter and configuration in place; the collector
// never runs more than one background goroutine for the life of the
// process no matter how many times SetReporter is called.
func SetReporter(reporter Reporter, config Config) {
	g := globalCollectorInst()
	config = config.normalized()

	g.lifecycleMu.Lock()
	defer g.lifecycleMu.Unlock()

	g.reporter = reporter
	g.config = config
	g.clock = config.Clock
	g.anchor = newAnchor(config.Clock)

	if !g.started {
		g.started = true
		g.stopCh = make(chan struct{})
		g.done = make(chan struct{})
		g.flushRequests = make(chan chan struct{})
		go g.run()
	}
}

// SetPanicHook installs a function called when the installed Reporter's
// Report panics, mirroring the teacher's Tracer.SetPanicHook/safeCall
// pattern - the collector's substitute for a logging bridge, since the
// core itself carries no structured-logging dependency.
func SetPanicHook(hook func(r any)) {
	g := globalCollectorInst()
	g.lifecycleMu.Lock()
	defer g.lifecycleMu.Unlock()
	g.panicHook = hook
}

func (g *globalCollector) reportSafely(reporter Reporter, records []SpanRecord) {
	defer func() {
		if r := recover(); r != nil {
			g.lifecycleMu.Lock()
			hook := g.panicHook
			g.lifecycleMu.Unlock()
			if hook != nil {
				hook(r)
			}
		}
	}()
	reporter.Report(records)
}

// run is the collector's dedicated worker: it ticks at
// config.ReportInterval, draining and assembling spans each time, and
// services synchronous Flush requests in between ticks.
func (g *globalCollector) run() {
	defer close(g.done)

	for {
		g.lifecycleMu.Lock()
		interval := g.config.ReportInterval
		clock := g.clock
		g.lifecycleMu.Unlock()

		select {
		case <-g.stopCh:
			g.handleCommands()
			return
		case ack := <-g.flushRequests:
			g.handleCommands()
			close(ack)
		case <-clock.After(interval):
			g.handleCommands()
		}
	}
}

// Flush drains every producer ring and forces one final materialization
// and Report call before returning (spec §4.9). If the worker never
// started - SetReporter was never called - it drains the rings itself.
func Flush() {
	g := globalCollectorInst()

	g.lifecycleMu.Lock()
	started := g.started
	reqs := g.flushRequests
	done := g.done
	g.lifecycleMu.Unlock()

	if !started {
		g.handleCommands()
		return
	}

	ack := make(chan struct{})
	select {
	case reqs <- ack:
		<-ack
	case <-done:
		g.handleCommands()
	}
}

// Shutdown performs one final Flush, calls the installed Reporter's
// Shutdown, and stops the collector's background goroutine - the
// process-end counterpart to the periodic Flush spec §4.9 describes. It is
// safe to call even if SetReporter was never called. A repeated call with no
// SetReporter in between only flushes; the Reporter's Shutdown runs once.
func Shutdown() {
	Flush()

	g := globalCollectorInst()
	g.lifecycleMu.Lock()
	reporter := g.reporter
	started := g.started
	stopCh := g.stopCh
	done := g.done
	if started {
		g.started = false
	}
	g.lifecycleMu.Unlock()

	if !started {
		return
	}
	close(stopCh)
	<-done
	if reporter != nil {
		reporter.Shutdown()
	}
}

// traceAssembly accumulates the payloads submitted for one in-flight trace
// until its root commits or drops.
type traceAssembly struct {
	payloads []pendingPayload
	count    int
}

type pendingPayload struct {
	traceID  TraceID
	parentID SpanID
	payload  spanPayload
}

func (a *traceAssembly) append(item collectTokenItem, payload spanPayload, maxSpans int) {
	if maxSpans > 0 && a.count >= maxSpans {
		return
	}
	a.payloads = append(a.payloads, pendingPayload{
		traceID:  item.traceID,
		parentID: item.parentID,
		payload:  payload,
	})
	a.count++
}

// recentlyDroppedCapacity bounds droppedIDSet the same way defaultRingCapacity
// bounds a producer ring: large enough that a dropped trace's stragglers
// have long since arrived before its id is evicted, without growing the set
// without bound over the life of the process.
const recentlyDroppedCapacity = 4096

// droppedIDSet remembers the most recently dropped collect ids across
// ticks, in FIFO order, so a DropCollect keeps suppressing that trace's
// SubmitSpans even after the tick it arrived in (spec §8 property 6).
type droppedIDSet struct {
	order []collectID
	set   map[collectID]struct{}
}

func newDroppedIDSet() *droppedIDSet {
	return &droppedIDSet{set: make(map[collectID]struct{})}
}

func (d *droppedIDSet) add(id collectID) {
	if _, ok := d.set[id]; ok {
		return
	}
	if len(d.order) >= recentlyDroppedCapacity {
		oldest := d.order[0]
		d.order = d.order[1:]
		delete(d.set, oldest)
	}
	d.order = append(d.order, id)
	d.set[id] = struct{}{}
}

func (d *droppedIDSet) contains(id collectID) bool {
	_, ok := d.set[id]
	return ok
}

// handleCommands is one collector tick. It drains every producer ring and
// applies commands in the order starts -> drops -> submits -> commits, so a
// DropCollect observed in the same tick as a late SubmitSpans always wins,
// and a commit sees every submission the same tick delivered ahead of it
// (spec §5's cross-thread ordering guarantee).
func (g *globalCollector) handleCommands() {
	g.lifecycleMu.Lock()
	reporter := g.reporter
	config := g.config
	g.lifecycleMu.Unlock()

	var starts []startCollectCmd
	var drops []dropCollectCmd
	var submits []submitSpansCmd
	var commits []commitCollectCmd

	g.ringsMu.Lock()
	rings := make([]*producerRing, 0, len(g.rings))
	for _, r := range g.rings {
		rings = append(rings, r)
	}
	g.ringsMu.Unlock()

	for _, r := range rings {
		r.drainInto(func(cmd collectCommand) {
			switch c := cmd.(type) {
			case startCollectCmd:
				starts = append(starts, c)
			case dropCollectCmd:
				drops = append(drops, c)
			case submitSpansCmd:
				submits = append(submits, c)
			case commitCollectCmd:
				commits = append(commits, c)
			}
		})
	}

	if reporter == nil {
		// No reporter installed: clear the channel and dismiss everything.
		return
	}

	for _, s := range starts {
		g.active[s.id] = &traceAssembly{}
	}
	for _, d := range drops {
		delete(g.active, d.id)
		// Remembered beyond this tick: a DropCollect always wins over any
		// SubmitSpans for the same id, including one that only arrives in a
		// later tick (spec §8 property 6, cancellation totality).
		g.dropIDs.add(d.id)
	}

	var staleGroups map[collectID]*traceAssembly
	for _, sub := range submits {
		item := sub.item
		if asm, ok := g.active[item.collectID]; ok {
			asm.append(item, sub.payload, config.MaxSpansPerTrace)
			continue
		}
		if g.dropIDs.contains(item.collectID) {
			// This trace was cancelled - in this tick or an earlier one.
			// Every one of its submissions is discarded, not just the ones
			// that happened to race the DropCollect.
			continue
		}
		if config.TailSampled {
			// Tail sampling forbids any emission not part of an atomic
			// commit; a submission with no active assembly is discarded.
			continue
		}
		if staleGroups == nil {
			staleGroups = make(map[collectID]*traceAssembly)
		}
		asm := staleGroups[item.collectID]
		if asm == nil {
			asm = &traceAssembly{}
			staleGroups[item.collectID] = asm
		}
		asm.append(item, sub.payload, 0)
	}

	var records []SpanRecord
	for _, c := range commits {
		if asm, ok := g.active[c.id]; ok {
			delete(g.active, c.id)
			records = append(records, materialize(asm, g.anchor)...)
		}
	}
	// Stale entries are late SubmitSpans for a collect_id with no active
	// assembly and no record of having been dropped, reported within the
	// same tick they arrive, exactly as global_collector.rs's own
	// stale_spans handling behaves and as spec §4.7's note on late
	// SubmitSpans describes.
	for _, asm := range staleGroups {
		records = append(records, materialize(asm, g.anchor)...)
	}

	g.reportSafely(reporter, records)
}

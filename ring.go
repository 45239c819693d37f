//go:build !fastrace_disable

package fastrace

// producerRing is the bounded, single-producer/single-consumer submission
// channel one producer goroutine uses to hand commands to the global
// collector. It is a thin, non-blocking wrapper over a buffered Go channel:
// channels already give us a safe SPSC boundary without hand-rolled atomics,
// exactly the way the teacher's Collector buffers completed spans through
// spansCh with a select/default drop on overflow.
//
// Enqueue never blocks and never allocates beyond the one-time channel
// creation: on a full ring the command is silently dropped, trading
// completeness for producer throughput per spec.
type producerRing struct {
	commands chan collectCommand
	dropped  *droppedCounter
}

// defaultRingCapacity is the producer ring size. It is not part of the
// public contract (spec leaves ring size unspecified); ≥1024 as required.
const defaultRingCapacity = 10240

func newProducerRing(capacity int, dropped *droppedCounter) *producerRing {
	if capacity <= 0 {
		capacity = defaultRingCapacity
	}
	return &producerRing{
		commands: make(chan collectCommand, capacity),
		dropped:  dropped,
	}
}

// push enqueues a command without blocking. On a full ring the command is
// dropped and the drop counter incremented.
func (r *producerRing) push(cmd collectCommand) {
	select {
	case r.commands <- cmd:
	default:
		r.dropped.add(1)
	}
}

// drainInto pulls every currently-available command off the ring into the
// collector's per-tick scratch slices, returning once the ring is empty.
// It never blocks.
func (r *producerRing) drainInto(handle func(collectCommand)) {
	for {
		select {
		case cmd := <-r.commands:
			handle(cmd)
		default:
			return
		}
	}
}

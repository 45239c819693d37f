package fastrace

import (
	"time"

	"github.com/zoobzio/clockz"
)

// Clock abstracts wall-clock reads so tests can inject a fake clock instead
// of depending on wall-clock time, exactly as the teacher's Tracer does via
// clockz.Clock. It stays defined outside the collector engine so Config
// remains usable - and harmless to construct - even when the engine itself
// is compiled out under fastrace_disable.
type Clock = clockz.Clock

// Config controls the global collector's behavior. Start from DefaultConfig
// and override fields as needed, the way the teacher's Tracer/Collector
// constructors take explicit parameters rather than a long functional-options
// chain. SetReporter replaces a zero ReportInterval or a nil Clock with its
// default, so a zero Config behaves like DefaultConfig().
type Config struct {
	// ReportInterval is the collector's tick period: how often it drains
	// producer rings and reports every trace committed since the previous
	// tick to the Reporter. Default 10ms.
	ReportInterval time.Duration

	// TailSampled defers emission of every span in a trace until its root
	// completes, then emits the whole trace atomically; on cancellation,
	// the entire trace is discarded instead. Default false.
	TailSampled bool

	// MaxSpansPerTrace softly caps the number of span collections retained
	// per in-flight trace assembly, to bound memory under a stuck or
	// enormous trace. Zero means unbounded. The cap is applied strictly in
	// arrival order across the whole assembly - including the root's own
	// submission - so a trace that already hit the cap before its root
	// arrives will drop the root's collection too. Default 0.
	MaxSpansPerTrace int

	// Clock is read for all span timestamps and the collector's tick
	// scheduler. Defaults to clockz.RealClock; inject clockz.NewFakeClock()
	// for deterministic tests, the same way the teacher's Tracer.WithClock
	// does.
	Clock Clock
}

// DefaultConfig returns the spec-mandated defaults: a 10ms report interval,
// tail sampling off, no per-trace span cap, and the real wall clock.
func DefaultConfig() Config {
	return Config{
		ReportInterval: 10 * time.Millisecond,
		TailSampled:    false,
		Clock:          clockz.RealClock,
	}
}

func (c Config) normalized() Config {
	if c.ReportInterval <= 0 {
		c.ReportInterval = 10 * time.Millisecond
	}
	if c.Clock == nil {
		c.Clock = clockz.RealClock
	}
	return c
}

package sim

import "time"

// Clock frequency bounds in Hz. Requests outside this range are clamped,
// never rejected.
const (
	MinClockHz = 1
	MaxClockHz = 100
)

// Config controls the timing behavior of the simulation engine.
type Config struct {
	// Signal generation
	ClockHz int // Emission cycles per second (default: 10, clamped to [1, 100])

	// Tick periods
	AdvanceInterval time.Duration // Signal advancement tick (default: 10ms)
	SweepInterval   time.Duration // Enable/output expiry sweep period (default: 200ms)

	// State machine windows
	ClockDebounce time.Duration // Repeat clock edges inside this window are ignored (default: 50ms)
	EnableTimeout time.Duration // Enable staleness before forced deassertion (default: 500ms)
	OutputTimeout time.Duration // Output-lit staleness before clearing (default: 500ms)
	OutputDelay   time.Duration // Pause between a latch and its output emission (default: 100ms)
}

// DefaultConfig returns a Config with the standard timing windows.
func DefaultConfig() *Config {
	return &Config{
		ClockHz:         10,
		AdvanceInterval: 10 * time.Millisecond,
		SweepInterval:   200 * time.Millisecond,
		ClockDebounce:   50 * time.Millisecond,
		EnableTimeout:   500 * time.Millisecond,
		OutputTimeout:   500 * time.Millisecond,
		OutputDelay:     100 * time.Millisecond,
	}
}

// Validate clamps out-of-range values to their nearest legal setting and
// fills unset durations with their defaults.
func (c *Config) Validate() error {
	c.ClockHz = clampClockHz(c.ClockHz)

	def := DefaultConfig()
	if c.AdvanceInterval <= 0 {
		c.AdvanceInterval = def.AdvanceInterval
	}
	if c.SweepInterval <= 0 {
		c.SweepInterval = def.SweepInterval
	}
	if c.ClockDebounce <= 0 {
		c.ClockDebounce = def.ClockDebounce
	}
	if c.EnableTimeout <= 0 {
		c.EnableTimeout = def.EnableTimeout
	}
	if c.OutputTimeout <= 0 {
		c.OutputTimeout = def.OutputTimeout
	}
	if c.OutputDelay <= 0 {
		c.OutputDelay = def.OutputDelay
	}

	return nil
}

// EmissionPeriod returns the interval between emission ticks at the
// configured clock rate.
func (c *Config) EmissionPeriod() time.Duration {
	return time.Duration(float64(time.Second) / float64(c.ClockHz))
}

// AdvanceStep returns the progress fraction one advancement tick adds to
// every in-flight signal. Full traversal of any wire takes 1/ClockHz
// seconds regardless of its geometric length.
func (c *Config) AdvanceStep() float64 {
	return c.AdvanceInterval.Seconds() * float64(c.ClockHz)
}

func clampClockHz(hz int) int {
	if hz < MinClockHz {
		return MinClockHz
	}
	if hz > MaxClockHz {
		return MaxClockHz
	}
	return hz
}

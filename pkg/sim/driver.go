package sim

import (
	"sync"
	"time"

	"github.com/OpenTraceLab/OpenTraceSim/pkg/netlist"
)

// Driver runs an Engine's periodic processes on one background goroutine
// and serializes every command and tick behind a mutex, preserving the
// engine's single-threaded transition model. All Driver methods are safe
// to call from any goroutine.
type Driver struct {
	mu      sync.Mutex
	eng     *Engine
	running bool

	stop   chan struct{}
	done   chan struct{}
	retime chan time.Duration
}

// NewDriver creates a stopped driver around a fresh engine.
func NewDriver(cfg *Config) *Driver {
	return &Driver{eng: NewEngine(cfg)}
}

// Start launches the four periodic processes: emission at the clock rate,
// advancement, the enable sweep, and the output sweep. Starting a running
// driver is a no-op.
func (d *Driver) Start() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.running {
		return
	}
	d.running = true
	d.stop = make(chan struct{})
	d.done = make(chan struct{})
	d.retime = make(chan time.Duration, 1)

	cfg := d.eng.Config()
	go d.loop(d.stop, d.done, d.retime,
		cfg.EmissionPeriod(), cfg.AdvanceInterval, cfg.SweepInterval)
}

// Stop cancels all four processes atomically, discards in-flight signals,
// and cancels every pending deferred emission. It returns after the
// background goroutine has exited. Stopping a stopped driver is a no-op.
func (d *Driver) Stop() {
	d.mu.Lock()
	if !d.running {
		d.mu.Unlock()
		return
	}
	d.running = false
	close(d.stop)
	done := d.done
	d.eng.DiscardFlight()
	d.mu.Unlock()

	<-done
}

// Running reports whether the periodic processes are active.
func (d *Driver) Running() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.running
}

func (d *Driver) loop(stop, done chan struct{}, retime chan time.Duration,
	emitEvery, advanceEvery, sweepEvery time.Duration) {
	defer close(done)

	emit := time.NewTicker(emitEvery)
	defer emit.Stop()
	advance := time.NewTicker(advanceEvery)
	defer advance.Stop()
	enables := time.NewTicker(sweepEvery)
	defer enables.Stop()
	outputs := time.NewTicker(sweepEvery)
	defer outputs.Stop()

	for {
		select {
		case <-stop:
			return
		case period := <-retime:
			emit.Reset(period)
		case <-emit.C:
			d.tick(func(e *Engine, now time.Time) { e.EmitTick(now) })
		case <-advance.C:
			d.tick(func(e *Engine, now time.Time) {
				e.AdvanceTick(now)
				e.FirePending(now)
			})
		case <-enables.C:
			d.tick(func(e *Engine, now time.Time) { e.SweepEnables(now) })
		case <-outputs.C:
			d.tick(func(e *Engine, now time.Time) { e.SweepOutputs(now) })
		}
	}
}

// tick runs one engine transition under the lock. A tick that fires while
// the driver is stopping is dropped, so no transition can land after Stop
// has discarded the flight state.
func (d *Driver) tick(fn func(*Engine, time.Time)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.running {
		return
	}
	fn(d.eng, time.Now())
}

// LoadNetlist replaces the simulated world. Safe while running: the next
// tick operates on the new netlist.
func (d *Driver) LoadNetlist(n *netlist.Netlist) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.eng.LoadNetlist(n)
}

// Reset clears all transient simulation state, whether running or not.
func (d *Driver) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.eng.Reset()
}

// ToggleInput flips one module input and returns its new active state.
func (d *Driver) ToggleInput(id int) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.eng.ToggleInput(id)
}

// SetClockHz changes the emission rate, clamped to [MinClockHz,
// MaxClockHz]. A running driver re-times its emission ticker live.
func (d *Driver) SetClockHz(hz int) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	hz = d.eng.SetClockHz(hz)
	if d.running {
		select {
		case <-d.retime:
		default:
		}
		d.retime <- d.eng.Config().EmissionPeriod()
	}
	return hz
}

// MoveElement repositions one element and reroutes its wires.
func (d *Driver) MoveElement(id int, x, y float64) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.eng.MoveElement(id, x, y)
}

// Arrange recomputes all element positions on demand.
func (d *Driver) Arrange() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.eng.Arrange()
}

// Snapshot returns a deep copy of the observable state.
func (d *Driver) Snapshot() Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()
	snap := d.eng.Snapshot()
	snap.Running = d.running
	return snap
}

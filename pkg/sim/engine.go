package sim

import (
	"fmt"
	"sort"
	"time"

	"github.com/OpenTraceLab/OpenTraceSim/pkg/layout"
	"github.com/OpenTraceLab/OpenTraceSim/pkg/netlist"
	"github.com/OpenTraceLab/OpenTraceSim/pkg/route"
)

// Engine is the single-threaded simulation state machine. It owns every
// mutable collection (signals, flip-flop states, active inputs, active
// outputs, pending emissions) and mutates them only inside its tick
// methods, each of which takes the current time explicitly.
//
// Engine is not safe for concurrent use; the Driver serializes access.
type Engine struct {
	cfg *Config

	net     *netlist.Netlist
	routes  map[string]route.Path
	signals map[string]*Signal
	flops   map[int]*FlipFlop

	activeInputs  map[int]struct{}
	activeOutputs map[int]time.Time

	pending []pendingEmission
}

// pendingEmission is a deferred output emission scheduled by a flip-flop
// latch. It re-checks wire occupancy when it fires, not when scheduled.
type pendingEmission struct {
	wire string
	due  time.Time
}

// NewEngine creates an engine with an empty netlist.
func NewEngine(cfg *Config) *Engine {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	cfg.Validate()

	e := &Engine{cfg: cfg}
	e.LoadNetlist(nil)
	return e
}

// Config returns the engine's timing configuration.
func (e *Engine) Config() *Config {
	return e.cfg
}

// Netlist returns the engine's current netlist.
func (e *Engine) Netlist() *netlist.Netlist {
	return e.net
}

// LoadNetlist replaces the simulated world. All transient state is
// discarded, flip-flop states are rebuilt, and elements without positions
// are arranged automatically.
func (e *Engine) LoadNetlist(n *netlist.Netlist) {
	if n == nil {
		n = netlist.New("", nil, nil)
	}
	e.net = n
	e.signals = make(map[string]*Signal)
	e.pending = nil
	e.activeInputs = make(map[int]struct{})
	e.activeOutputs = make(map[int]time.Time)
	e.flops = make(map[int]*FlipFlop)
	for _, el := range n.Elements {
		if el.Type.IsFlipFlop() {
			e.flops[el.ID] = newFlipFlop(el.ID, el.Type)
		}
	}

	if !n.Positioned() {
		e.Arrange()
		return
	}
	e.rebuildRoutes()
}

// Reset clears signals, pending emissions, active inputs, active outputs,
// and every flip-flop, keeping the netlist and its positions.
func (e *Engine) Reset() {
	e.signals = make(map[string]*Signal)
	e.pending = nil
	e.activeInputs = make(map[int]struct{})
	e.activeOutputs = make(map[int]time.Time)
	for _, ff := range e.flops {
		ff.Reset()
	}
}

// DiscardFlight drops all in-flight signals and cancels every pending
// emission. Called when the driver stops, so nothing scheduled before the
// stop can resurrect a signal after it.
func (e *Engine) DiscardFlight() {
	e.signals = make(map[string]*Signal)
	e.pending = nil
}

// ToggleInput flips the active state of a module input and returns the
// new state.
func (e *Engine) ToggleInput(id int) (bool, error) {
	el, ok := e.net.Element(id)
	if !ok {
		return false, fmt.Errorf("sim: no element %d", id)
	}
	if el.Type != netlist.KindInput {
		return false, fmt.Errorf("sim: element %d is %s, not %s", id, el.Type, netlist.KindInput)
	}
	if _, on := e.activeInputs[id]; on {
		delete(e.activeInputs, id)
		return false, nil
	}
	e.activeInputs[id] = struct{}{}
	return true, nil
}

// SetClockHz sets the emission rate, clamped to [MinClockHz, MaxClockHz],
// and returns the effective value.
func (e *Engine) SetClockHz(hz int) int {
	e.cfg.ClockHz = clampClockHz(hz)
	return e.cfg.ClockHz
}

// MoveElement repositions one element and reroutes the affected wires.
func (e *Engine) MoveElement(id int, x, y float64) error {
	if _, ok := e.net.Element(id); !ok {
		return fmt.Errorf("sim: no element %d", id)
	}
	e.net.SetPosition(id, x, y)
	e.rebuildRoutes()
	return nil
}

// Arrange recomputes every element position with the layout planner and
// reroutes all wires.
func (e *Engine) Arrange() {
	for _, el := range layout.Arrange(e.net.Elements, e.net.Connections) {
		e.net.SetPosition(el.ID, el.X, el.Y)
	}
	e.rebuildRoutes()
}

// rebuildRoutes recomputes the path of every resolvable connection.
// In-flight signals adopt the new geometry; their progress fraction is
// unchanged, so arrival timing is unaffected.
func (e *Engine) rebuildRoutes() {
	e.routes = make(map[string]route.Path, len(e.net.Connections))
	for _, c := range e.net.Connections {
		src, dst, ok := e.net.Endpoints(c.Name)
		if !ok {
			continue
		}
		e.routes[c.Name] = route.Route(*src, *dst, c)
	}
	for wire, s := range e.signals {
		p, ok := e.routes[wire]
		if !ok {
			delete(e.signals, wire)
			continue
		}
		s.Path = p
	}
}

// emit places a new signal at progress 0 on wire. Emission is suppressed
// when the wire is occupied or cannot be routed.
func (e *Engine) emit(wire string, now time.Time) bool {
	if _, busy := e.signals[wire]; busy {
		return false
	}
	path, ok := e.routes[wire]
	if !ok {
		return false
	}
	src, dst, ok := e.net.Endpoints(wire)
	if !ok {
		return false
	}
	e.signals[wire] = &Signal{
		Wire: wire,
		Path: path,
		Born: now,
		From: src.Name,
		To:   dst.Name,
	}
	return true
}

// EmitTick generates signals for the current cycle: every connection
// sourced by a clock, and every connection sourced by an active module
// input.
func (e *Engine) EmitTick(now time.Time) {
	for _, c := range e.net.Connections {
		if !c.Resolved() {
			continue
		}
		src, ok := e.net.Element(c.SourceID)
		if !ok {
			continue
		}
		switch src.Type {
		case netlist.KindClock:
		case netlist.KindInput:
			if _, on := e.activeInputs[src.ID]; !on {
				continue
			}
		default:
			continue
		}
		e.emit(c.Name, now)
	}
}

// AdvanceTick moves every in-flight signal forward by one step. A signal
// whose progress reaches 1.0 dispatches its arrival exactly once and is
// retired in the same tick. Wires advance in sorted order so same-tick
// arrivals dispatch deterministically.
func (e *Engine) AdvanceTick(now time.Time) {
	if len(e.signals) == 0 {
		return
	}
	step := e.cfg.AdvanceStep()

	wires := make([]string, 0, len(e.signals))
	for w := range e.signals {
		wires = append(wires, w)
	}
	sort.Strings(wires)

	for _, w := range wires {
		s := e.signals[w]
		s.Progress += step
		if s.Progress < 1 {
			continue
		}
		e.dispatchArrival(w, now)
		delete(e.signals, w)
	}
}

// dispatchArrival routes an arrived signal to its destination: outputs
// are stamped active, flip-flops transition by port role, and all other
// destinations absorb the pulse.
func (e *Engine) dispatchArrival(wire string, now time.Time) {
	c, ok := e.net.Connection(wire)
	if !ok || !c.Resolved() {
		return
	}
	dst, ok := e.net.Element(c.DestID)
	if !ok {
		return
	}
	switch {
	case dst.Type == netlist.KindOutput:
		e.activeOutputs[dst.ID] = now
	case dst.Type.IsFlipFlop():
		e.arriveAtFlipFlop(dst, wire, now)
	}
}

func (e *Engine) arriveAtFlipFlop(dst *netlist.Element, wire string, now time.Time) {
	ff, ok := e.flops[dst.ID]
	if !ok {
		return
	}
	switch dst.InputRole(dst.InputIndex(wire)) {
	case netlist.RoleClock:
		if ff.ArriveClock(now, e.cfg.ClockDebounce) {
			e.scheduleOutput(dst, now)
		}
	case netlist.RoleEnable:
		ff.ArriveEnable(now)
	default:
		ff.ArriveD()
	}
}

// scheduleOutput queues a deferred emission on the flip-flop's output
// wire. The delay is visual pacing; the latch itself has already
// happened.
func (e *Engine) scheduleOutput(dst *netlist.Element, now time.Time) {
	if len(dst.Outputs) == 0 {
		return
	}
	e.pending = append(e.pending, pendingEmission{
		wire: dst.Outputs[0].Wire,
		due:  now.Add(e.cfg.OutputDelay),
	})
}

// FirePending emits every due deferred emission, re-checking wire
// occupancy at fire time. Not-yet-due entries stay queued.
func (e *Engine) FirePending(now time.Time) {
	if len(e.pending) == 0 {
		return
	}
	remaining := e.pending[:0]
	for _, p := range e.pending {
		if p.due.After(now) {
			remaining = append(remaining, p)
			continue
		}
		e.emit(p.wire, now)
	}
	e.pending = remaining
}

// SweepEnables deasserts every stale flip-flop enable.
func (e *Engine) SweepEnables(now time.Time) {
	for _, ff := range e.flops {
		ff.ExpireEnable(now, e.cfg.EnableTimeout)
	}
}

// SweepOutputs clears active-output entries that have not been refreshed
// within the output timeout.
func (e *Engine) SweepOutputs(now time.Time) {
	for id, stamp := range e.activeOutputs {
		if now.Sub(stamp) >= e.cfg.OutputTimeout {
			delete(e.activeOutputs, id)
		}
	}
}

package sim

import (
	"time"

	"github.com/OpenTraceLab/OpenTraceSim/pkg/netlist"
)

// FlipFlop holds the runtime state of one DFF or DFF_NE element. All
// transitions are driven by signal arrivals dispatched from the engine.
type FlipFlop struct {
	ID       int
	NoEnable bool // DFF_NE: enable is pinned asserted

	HasD      bool // a data pulse arrived since the last accepted clock edge
	HasEnable bool
	Output    bool

	lastClock  time.Time
	lastEnable time.Time
}

func newFlipFlop(id int, kind netlist.Kind) *FlipFlop {
	ff := &FlipFlop{ID: id, NoEnable: kind == netlist.KindDFFNE}
	ff.Reset()
	return ff
}

// Reset returns the flip-flop to its power-on state.
func (ff *FlipFlop) Reset() {
	ff.HasD = false
	ff.HasEnable = ff.NoEnable
	ff.Output = false
	ff.lastClock = time.Time{}
	ff.lastEnable = time.Time{}
}

// ArriveD records a data pulse. The value is sampled at the next accepted
// clock edge.
func (ff *FlipFlop) ArriveD() {
	ff.HasD = true
}

// ArriveEnable asserts the enable level and stamps its freshness. DFF_NE
// has no live enable port; a pulse routed there is absorbed.
func (ff *FlipFlop) ArriveEnable(now time.Time) {
	if ff.NoEnable {
		return
	}
	ff.HasEnable = true
	ff.lastEnable = now
}

// ArriveClock applies one clock edge. An edge closer than debounce to the
// last accepted edge is ignored entirely, pending D included. Otherwise
// the edge latches when the type has no enable or the enable is asserted,
// and the pending D is cleared whether or not latching happened: the
// sample window closes on every accepted edge.
//
// Returns true when the edge latched a true output, i.e. when the caller
// should schedule an emission on the flip-flop's output wire.
func (ff *FlipFlop) ArriveClock(now time.Time, debounce time.Duration) bool {
	if !ff.lastClock.IsZero() && now.Sub(ff.lastClock) < debounce {
		return false
	}
	ff.lastClock = now

	latch := ff.NoEnable || ff.HasEnable
	if latch {
		ff.Output = ff.HasD
	}
	ff.HasD = false
	return latch && ff.Output
}

// ExpireEnable deasserts an enable that has not been refreshed within
// timeout. The enable is a level that must be continuously re-driven, not
// a one-shot latch. Returns true when it deasserted.
func (ff *FlipFlop) ExpireEnable(now time.Time, timeout time.Duration) bool {
	if ff.NoEnable || !ff.HasEnable {
		return false
	}
	if now.Sub(ff.lastEnable) < timeout {
		return false
	}
	ff.HasEnable = false
	return true
}

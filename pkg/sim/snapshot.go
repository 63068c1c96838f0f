package sim

import (
	"sort"
	"time"

	"github.com/OpenTraceLab/OpenTraceSim/pkg/netlist"
	"github.com/OpenTraceLab/OpenTraceSim/pkg/route"
)

// Snapshot is a deep copy of the observable simulation state. Consumers
// render or inspect it freely; nothing in it aliases engine memory.
type Snapshot struct {
	Name     string
	Running  bool
	ClockHz  int
	Elements []netlist.Element

	Signals       []SignalView
	ActiveInputs  []int
	ActiveOutputs map[int]time.Time
	FlipFlops     map[int]FlipFlopView
}

// SignalView is the renderable state of one in-flight signal.
type SignalView struct {
	Wire     string
	Progress float64
	Length   float64
	Position route.Point
	From     string
	To       string
}

// FlipFlopView is the externally visible state of one flip-flop.
type FlipFlopView struct {
	Output    bool
	HasD      bool
	HasEnable bool
}

// Snapshot captures the engine's observable state. The driver stamps the
// Running flag; a bare engine always reports not running.
func (e *Engine) Snapshot() Snapshot {
	snap := Snapshot{
		Name:          e.net.Name,
		ClockHz:       e.cfg.ClockHz,
		Elements:      copyElements(e.net.Elements),
		ActiveOutputs: make(map[int]time.Time, len(e.activeOutputs)),
		FlipFlops:     make(map[int]FlipFlopView, len(e.flops)),
	}

	for wire, s := range e.signals {
		snap.Signals = append(snap.Signals, SignalView{
			Wire:     wire,
			Progress: s.Progress,
			Length:   s.Path.Length,
			Position: s.Position(),
			From:     s.From,
			To:       s.To,
		})
	}
	sort.Slice(snap.Signals, func(i, j int) bool {
		return snap.Signals[i].Wire < snap.Signals[j].Wire
	})

	for id := range e.activeInputs {
		snap.ActiveInputs = append(snap.ActiveInputs, id)
	}
	sort.Ints(snap.ActiveInputs)

	for id, stamp := range e.activeOutputs {
		snap.ActiveOutputs[id] = stamp
	}
	for id, ff := range e.flops {
		snap.FlipFlops[id] = FlipFlopView{
			Output:    ff.Output,
			HasD:      ff.HasD,
			HasEnable: ff.HasEnable,
		}
	}

	return snap
}

func copyElements(elements []netlist.Element) []netlist.Element {
	out := make([]netlist.Element, len(elements))
	for i, e := range elements {
		out[i] = e
		out[i].Inputs = append([]netlist.Port(nil), e.Inputs...)
		out[i].Outputs = append([]netlist.Port(nil), e.Outputs...)
	}
	return out
}

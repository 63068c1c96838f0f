package sim

import (
	"testing"
	"time"

	"github.com/OpenTraceLab/OpenTraceSim/pkg/netlist"
)

// wireThrough is the minimal world: one module input wired straight to
// one module output.
func wireThrough() *netlist.Netlist {
	return netlist.New("t", []netlist.Element{
		{ID: 1, Name: "a", Type: netlist.KindInput,
			Outputs: []netlist.Port{{Name: "out", Wire: "w1"}}},
		{ID: 2, Name: "y", Type: netlist.KindOutput,
			Inputs: []netlist.Port{{Name: "in", Wire: "w1"}}},
	}, nil)
}

// latchPipeline wires an input to a DFF_NE data port and a clock to its
// clock port, with the Q output feeding a module output. Wire names sort
// so that same-tick arrivals dispatch D before the clock edge.
func latchPipeline() *netlist.Netlist {
	return netlist.New("t", []netlist.Element{
		{ID: 1, Name: "a", Type: netlist.KindInput,
			Outputs: []netlist.Port{{Name: "out", Wire: "d"}}},
		{ID: 2, Name: "ff", Type: netlist.KindDFFNE,
			Inputs: []netlist.Port{
				{Name: "D", Wire: "d"},
				{Name: "clk", Wire: "k"},
			},
			Outputs: []netlist.Port{{Name: "Q", Wire: "q"}}},
		{ID: 3, Name: "clock", Type: netlist.KindClock,
			Outputs: []netlist.Port{{Name: "out", Wire: "k"}}},
		{ID: 4, Name: "y", Type: netlist.KindOutput,
			Inputs: []netlist.Port{{Name: "in", Wire: "q"}}},
	}, nil)
}

// testEngine builds an engine at the given clock rate. 50Hz gives an
// advancement step of exactly 0.5, so signals arrive on their second
// tick with no floating-point residue.
func testEngine(t *testing.T, n *netlist.Netlist, hz int) *Engine {
	t.Helper()
	cfg := DefaultConfig()
	cfg.ClockHz = hz
	e := NewEngine(cfg)
	e.LoadNetlist(n)
	return e
}

func TestEmitRequiresActiveInput(t *testing.T) {
	e := testEngine(t, wireThrough(), 50)
	base := time.Unix(1000, 0)

	e.EmitTick(base)
	if len(e.signals) != 0 {
		t.Fatal("inactive input emitted a signal")
	}

	on, err := e.ToggleInput(1)
	if err != nil || !on {
		t.Fatalf("ToggleInput = %v, %v, want true, nil", on, err)
	}
	e.EmitTick(base)
	if len(e.signals) != 1 {
		t.Fatalf("active input produced %d signals, want 1", len(e.signals))
	}
	if s := e.signals["w1"]; s == nil || s.Progress != 0 || s.From != "a" || s.To != "y" {
		t.Fatalf("signal = %+v, want fresh a->y signal on w1", s)
	}
}

func TestEmitOccupancy(t *testing.T) {
	e := testEngine(t, wireThrough(), 50)
	base := time.Unix(1000, 0)
	e.ToggleInput(1)

	e.EmitTick(base)
	born := e.signals["w1"].Born

	e.EmitTick(base.Add(20 * time.Millisecond))
	if len(e.signals) != 1 {
		t.Fatalf("occupied wire accepted a second signal, have %d", len(e.signals))
	}
	if e.signals["w1"].Born != born {
		t.Fatal("second emission replaced the in-flight signal")
	}
}

func TestClockAlwaysEmits(t *testing.T) {
	n := netlist.New("t", []netlist.Element{
		{ID: 1, Name: "clock", Type: netlist.KindClock,
			Outputs: []netlist.Port{{Name: "out", Wire: "k"}}},
		{ID: 2, Name: "y", Type: netlist.KindOutput,
			Inputs: []netlist.Port{{Name: "in", Wire: "k"}}},
	}, nil)
	e := testEngine(t, n, 50)

	e.EmitTick(time.Unix(1000, 0))
	if len(e.signals) != 1 {
		t.Fatalf("clock source produced %d signals, want 1", len(e.signals))
	}
}

func TestUnresolvedWireNeverEmits(t *testing.T) {
	n := netlist.New("t", []netlist.Element{
		{ID: 1, Name: "a", Type: netlist.KindInput,
			Outputs: []netlist.Port{{Name: "out", Wire: "dangling"}}},
	}, nil)
	e := testEngine(t, n, 50)
	e.ToggleInput(1)

	e.EmitTick(time.Unix(1000, 0))
	if len(e.signals) != 0 {
		t.Fatal("half-wired connection emitted a signal")
	}
}

func TestArrivalStampsOutput(t *testing.T) {
	e := testEngine(t, wireThrough(), 50)
	base := time.Unix(1000, 0)
	e.ToggleInput(1)
	e.EmitTick(base)

	e.AdvanceTick(base.Add(10 * time.Millisecond))
	if len(e.signals) != 1 {
		t.Fatal("signal retired after half its traversal")
	}
	if got := e.signals["w1"].Progress; got != 0.5 {
		t.Fatalf("progress after one tick = %v, want 0.5", got)
	}

	arrive := base.Add(20 * time.Millisecond)
	e.AdvanceTick(arrive)
	if len(e.signals) != 0 {
		t.Fatal("signal still in flight after crossing 1.0")
	}
	stamp, ok := e.activeOutputs[2]
	if !ok || !stamp.Equal(arrive) {
		t.Fatalf("output stamp = %v (ok=%v), want %v", stamp, ok, arrive)
	}

	// Further ticks must not re-dispatch the arrival.
	e.AdvanceTick(base.Add(30 * time.Millisecond))
	if got := e.activeOutputs[2]; !got.Equal(arrive) {
		t.Fatal("arrival dispatched more than once")
	}
}

func TestTenHertzTraversal(t *testing.T) {
	e := testEngine(t, wireThrough(), 10)
	base := time.Unix(1000, 0)
	e.ToggleInput(1)
	e.EmitTick(base)

	// At 10Hz the step is 0.1: traversal takes ten ticks plus at most one
	// more for accumulated floating-point shortfall.
	ticks := 0
	for ; len(e.signals) > 0 && ticks < 12; ticks++ {
		e.AdvanceTick(base.Add(time.Duration(ticks+1) * 10 * time.Millisecond))
	}
	if ticks < 10 || ticks > 11 {
		t.Fatalf("traversal took %d ticks, want 10 or 11", ticks)
	}
	if _, ok := e.activeOutputs[2]; !ok {
		t.Fatal("arrival did not stamp the output")
	}
}

func TestOutputExpiry(t *testing.T) {
	e := testEngine(t, wireThrough(), 50)
	base := time.Unix(1000, 0)
	e.ToggleInput(1)
	e.EmitTick(base)
	e.AdvanceTick(base.Add(10 * time.Millisecond))
	arrive := base.Add(20 * time.Millisecond)
	e.AdvanceTick(arrive)

	e.SweepOutputs(arrive.Add(499 * time.Millisecond))
	if _, ok := e.activeOutputs[2]; !ok {
		t.Fatal("output cleared before its timeout")
	}
	e.SweepOutputs(arrive.Add(500 * time.Millisecond))
	if _, ok := e.activeOutputs[2]; ok {
		t.Fatal("stale output not cleared")
	}
}

func TestLatchPipeline(t *testing.T) {
	e := testEngine(t, latchPipeline(), 50)
	base := time.Unix(1000, 0)
	e.ToggleInput(1)

	// One emission cycle puts signals on both the D wire and the clock
	// wire; they arrive together two ticks later, D dispatching first.
	e.EmitTick(base)
	if len(e.signals) != 2 {
		t.Fatalf("expected signals on d and k, have %d", len(e.signals))
	}
	e.AdvanceTick(base.Add(10 * time.Millisecond))
	latch := base.Add(20 * time.Millisecond)
	e.AdvanceTick(latch)

	ff := e.flops[2]
	if !ff.Output {
		t.Fatal("clock edge with same-tick D did not latch true")
	}
	if len(e.pending) != 1 {
		t.Fatalf("latch queued %d emissions, want 1", len(e.pending))
	}

	// The deferred emission is not due yet.
	e.FirePending(latch.Add(50 * time.Millisecond))
	if len(e.signals) != 0 {
		t.Fatal("deferred emission fired before its delay")
	}
	e.FirePending(latch.Add(100 * time.Millisecond))
	if _, ok := e.signals["q"]; !ok {
		t.Fatal("deferred emission did not fire at its due time")
	}
	if len(e.pending) != 0 {
		t.Fatal("fired emission left the queue")
	}

	// Q's signal arrives at the module output.
	fire := latch.Add(100 * time.Millisecond)
	e.AdvanceTick(fire.Add(10 * time.Millisecond))
	e.AdvanceTick(fire.Add(20 * time.Millisecond))
	if _, ok := e.activeOutputs[4]; !ok {
		t.Fatal("flip-flop output pulse never reached the module output")
	}
}

func TestDeferredEmissionRespectsOccupancy(t *testing.T) {
	e := testEngine(t, latchPipeline(), 50)
	base := time.Unix(1000, 0)

	e.pending = append(e.pending,
		pendingEmission{wire: "q", due: base},
		pendingEmission{wire: "q", due: base},
	)
	e.FirePending(base)
	if len(e.signals) != 1 {
		t.Fatalf("two due emissions on one wire produced %d signals, want 1", len(e.signals))
	}
}

func TestDiscardFlight(t *testing.T) {
	e := testEngine(t, latchPipeline(), 50)
	base := time.Unix(1000, 0)
	e.ToggleInput(1)
	e.EmitTick(base)
	e.pending = append(e.pending, pendingEmission{wire: "q", due: base})

	e.DiscardFlight()
	if len(e.signals) != 0 || len(e.pending) != 0 {
		t.Fatal("discard left signals or pending emissions behind")
	}
	e.FirePending(base.Add(time.Hour))
	if len(e.signals) != 0 {
		t.Fatal("cancelled emission fired anyway")
	}
}

func TestResetClearsEverything(t *testing.T) {
	e := testEngine(t, latchPipeline(), 50)
	base := time.Unix(1000, 0)
	e.ToggleInput(1)
	e.EmitTick(base)
	e.AdvanceTick(base.Add(10 * time.Millisecond))
	e.AdvanceTick(base.Add(20 * time.Millisecond))

	e.Reset()
	if len(e.signals) != 0 || len(e.pending) != 0 {
		t.Fatal("reset left transit state behind")
	}
	if len(e.activeInputs) != 0 || len(e.activeOutputs) != 0 {
		t.Fatal("reset left activation state behind")
	}
	if ff := e.flops[2]; ff.Output || ff.HasD {
		t.Fatal("reset left flip-flop state behind")
	}
	// Positions survive a reset.
	if el, _ := e.net.Element(1); el.X == 0 && el.Y == 0 {
		t.Fatal("reset wiped element positions")
	}
}

func TestToggleInputErrors(t *testing.T) {
	e := testEngine(t, wireThrough(), 50)

	if _, err := e.ToggleInput(99); err == nil {
		t.Fatal("toggling an unknown element should fail")
	}
	if _, err := e.ToggleInput(2); err == nil {
		t.Fatal("toggling a module output should fail")
	}

	on, _ := e.ToggleInput(1)
	off, _ := e.ToggleInput(1)
	if !on || off {
		t.Fatalf("toggle sequence = %v, %v, want true, false", on, off)
	}
}

func TestSetClockHzClamps(t *testing.T) {
	e := testEngine(t, wireThrough(), 10)
	cases := []struct {
		in, want int
	}{
		{0, 1},
		{-5, 1},
		{60, 60},
		{200, 100},
	}
	for _, tc := range cases {
		if got := e.SetClockHz(tc.in); got != tc.want {
			t.Fatalf("SetClockHz(%d) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestLoadNetlistArranges(t *testing.T) {
	e := testEngine(t, wireThrough(), 50)
	if !e.net.Positioned() {
		t.Fatal("unpositioned netlist was not arranged on load")
	}
	for _, el := range e.net.Elements {
		if el.X <= 0 || el.Y <= 0 {
			t.Fatalf("element %d left at (%v,%v)", el.ID, el.X, el.Y)
		}
	}
}

func TestLoadNetlistKeepsPositions(t *testing.T) {
	n := wireThrough()
	n.SetPosition(1, 12, 34)
	n.SetPosition(2, 56, 78)
	e := testEngine(t, n, 50)

	if el, _ := e.net.Element(1); el.X != 12 || el.Y != 34 {
		t.Fatalf("positioned netlist was rearranged: element 1 at (%v,%v)", el.X, el.Y)
	}
}

func TestMoveElementReroutes(t *testing.T) {
	e := testEngine(t, wireThrough(), 50)
	base := time.Unix(1000, 0)
	e.ToggleInput(1)
	e.EmitTick(base)

	if err := e.MoveElement(2, 500, 300); err != nil {
		t.Fatalf("MoveElement: %v", err)
	}
	end := e.routes["w1"].Points[3]
	if end.X != 500 || end.Y == 0 {
		t.Fatalf("route end %v does not follow the moved element", end)
	}
	if got := e.signals["w1"].Path.Points[3]; got != end {
		t.Fatal("in-flight signal kept its stale path after the move")
	}

	if err := e.MoveElement(99, 0, 0); err == nil {
		t.Fatal("moving an unknown element should fail")
	}
}

func TestSnapshotIsolation(t *testing.T) {
	e := testEngine(t, latchPipeline(), 50)
	base := time.Unix(1000, 0)
	e.ToggleInput(1)
	e.EmitTick(base)

	snap := e.Snapshot()
	if len(snap.Signals) != 2 || snap.Signals[0].Wire != "d" || snap.Signals[1].Wire != "k" {
		t.Fatalf("snapshot signals = %+v, want sorted d, k", snap.Signals)
	}
	if len(snap.ActiveInputs) != 1 || snap.ActiveInputs[0] != 1 {
		t.Fatalf("snapshot active inputs = %v, want [1]", snap.ActiveInputs)
	}
	if snap.ClockHz != 50 || snap.Running {
		t.Fatalf("snapshot clock/running = %d/%v, want 50/false", snap.ClockHz, snap.Running)
	}

	// Mutating the snapshot must not touch the engine.
	snap.Elements[0].X = -1
	snap.Elements[0].Inputs = append(snap.Elements[0].Inputs, netlist.Port{Name: "x"})
	snap.ActiveOutputs[99] = base
	if el, _ := e.net.Element(1); el.X == -1 {
		t.Fatal("snapshot aliases element storage")
	}
	if _, ok := e.activeOutputs[99]; ok {
		t.Fatal("snapshot aliases the active-output map")
	}
}

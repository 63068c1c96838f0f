package sim

import (
	"testing"
	"time"
)

// waitFor polls cond every 10ms until it holds or the deadline passes.
func waitFor(t *testing.T, d *Driver, deadline time.Duration, cond func(Snapshot) bool) Snapshot {
	t.Helper()
	end := time.Now().Add(deadline)
	for {
		snap := d.Snapshot()
		if cond(snap) {
			return snap
		}
		if time.Now().After(end) {
			t.Fatalf("condition not reached within %v; last snapshot: %+v", deadline, snap)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestDriverEndToEnd(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ClockHz = 50

	d := NewDriver(cfg)
	d.LoadNetlist(wireThrough())
	if _, err := d.ToggleInput(1); err != nil {
		t.Fatalf("ToggleInput: %v", err)
	}

	d.Start()
	defer d.Stop()
	if !d.Running() {
		t.Fatal("driver not running after Start")
	}

	snap := waitFor(t, d, 3*time.Second, func(s Snapshot) bool {
		_, lit := s.ActiveOutputs[2]
		return lit
	})
	if !snap.Running {
		t.Fatal("snapshot taken while running reports stopped")
	}

	d.Stop()
	if d.Running() {
		t.Fatal("driver still running after Stop")
	}
	after := d.Snapshot()
	if len(after.Signals) != 0 {
		t.Fatalf("stop left %d signals in flight", len(after.Signals))
	}
}

func TestDriverResetWhileRunning(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ClockHz = 50

	d := NewDriver(cfg)
	d.LoadNetlist(wireThrough())
	d.ToggleInput(1)
	d.Start()
	defer d.Stop()

	waitFor(t, d, 3*time.Second, func(s Snapshot) bool {
		_, lit := s.ActiveOutputs[2]
		return lit
	})

	d.Reset()
	snap := d.Snapshot()
	if len(snap.ActiveOutputs) != 0 || len(snap.ActiveInputs) != 0 {
		t.Fatalf("reset left activation state: %+v", snap)
	}
}

func TestDriverStartStopIdempotent(t *testing.T) {
	d := NewDriver(nil)
	d.Stop()
	d.Start()
	d.Start()
	if !d.Running() {
		t.Fatal("driver not running after double Start")
	}
	d.Stop()
	d.Stop()
	if d.Running() {
		t.Fatal("driver running after double Stop")
	}
	// A stopped driver restarts cleanly.
	d.Start()
	if !d.Running() {
		t.Fatal("driver did not restart")
	}
	d.Stop()
}

func TestDriverSetClockHzLive(t *testing.T) {
	d := NewDriver(nil)
	d.LoadNetlist(wireThrough())
	d.Start()
	defer d.Stop()

	if got := d.SetClockHz(500); got != MaxClockHz {
		t.Fatalf("SetClockHz(500) = %d, want clamp to %d", got, MaxClockHz)
	}
	if got := d.Snapshot().ClockHz; got != MaxClockHz {
		t.Fatalf("snapshot clock = %d, want %d", got, MaxClockHz)
	}
}

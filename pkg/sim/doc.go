// Package sim is the discrete-event simulation core for logic netlists.
//
// The engine owns the netlist, the routed wire paths, the in-flight
// signals, and the per-flip-flop state, and advances them through four
// periodic processes: signal emission at the clock rate, fast signal
// advancement, an enable-expiry sweep, and an output-expiry sweep.
//
// # Overview
//
// The package provides two layers:
//   - Engine: the single-threaded state machine. Every mutating method
//     takes an explicit time, so tests drive it with a synthetic clock.
//     It is not safe for concurrent use.
//   - Driver: wraps an Engine with a mutex and one background goroutine
//     that multiplexes the four tickers, serializing all transitions.
//     Commands and Snapshot are safe to call from any goroutine.
//
// # Usage
//
// Typical usage follows this pattern:
//
//	drv := sim.NewDriver(sim.DefaultConfig())
//	drv.LoadNetlist(n)
//	drv.ToggleInput(1)
//	drv.Start()
//	defer drv.Stop()
//
//	for {
//		snap := drv.Snapshot()
//		// render snap.Signals, snap.ActiveOutputs, snap.FlipFlops
//	}
//
// Signals travel along routed paths at a rate derived from the clock
// frequency: one full wire traversal takes 1/ClockHz seconds, whatever
// the wire's drawn length. At most one signal is ever in flight per
// wire; emissions onto an occupied wire are suppressed.
package sim

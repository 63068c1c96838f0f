package cmd

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceSim/pkg/netlist"
	"github.com/OpenTraceLab/OpenTraceSim/pkg/sim"
)

var (
	runHz      int
	runFor     time.Duration
	runToggles []string
)

var runCmd = &cobra.Command{
	Use:   "run <netlist file>",
	Short: "Simulate a netlist and trace its activity",
	Long: `Load a netlist, activate the named module inputs, run the simulation
for a fixed duration, and print a line whenever the observable state
changes: signals in flight, lit module outputs, flip-flop outputs.`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func init() {
	runCmd.Flags().IntVar(&runHz, "hz", 10, "clock frequency in Hz (clamped to 1..100)")
	runCmd.Flags().DurationVar(&runFor, "for", 2*time.Second, "how long to simulate")
	runCmd.Flags().StringSliceVar(&runToggles, "toggle", nil, "module inputs to activate, by name or id")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	n, err := loadNetlist(args[0])
	if err != nil {
		return fmt.Errorf("error loading netlist: %w", err)
	}

	cfg := sim.DefaultConfig()
	cfg.ClockHz = runHz

	drv := sim.NewDriver(cfg)
	drv.LoadNetlist(n)

	for _, key := range runToggles {
		id, err := findInput(n, key)
		if err != nil {
			return err
		}
		if _, err := drv.ToggleInput(id); err != nil {
			return err
		}
	}

	snap := drv.Snapshot()
	fmt.Printf("Running %s for %v at %dHz (%d elements, %d inputs active)\n",
		snap.Name, runFor, snap.ClockHz, len(snap.Elements), len(snap.ActiveInputs))

	drv.Start()
	trace(drv, runFor)
	drv.Stop()

	printSummary(drv.Snapshot())
	return nil
}

// findInput resolves a --toggle key to a module input element id. Numeric
// keys are taken as ids verbatim so inputs with no name stay reachable.
func findInput(n *netlist.Netlist, key string) (int, error) {
	if id, err := strconv.Atoi(key); err == nil {
		return id, nil
	}
	for _, e := range n.Elements {
		if e.Type == netlist.KindInput && e.Name == key {
			return e.ID, nil
		}
	}
	return 0, fmt.Errorf("no module input named %q", key)
}

// trace polls the driver until the deadline and prints one line per
// observable state change.
func trace(drv *sim.Driver, dur time.Duration) {
	start := time.Now()
	deadline := start.Add(dur)
	last := ""
	for time.Now().Before(deadline) {
		snap := drv.Snapshot()
		line := describe(snap)
		if line != last {
			fmt.Printf("%6.0fms  %s\n", time.Since(start).Seconds()*1000, line)
			last = line
		}
		time.Sleep(25 * time.Millisecond)
	}
}

// describe renders a snapshot as a single stable line so the trace loop
// can de-duplicate unchanged states.
func describe(snap sim.Snapshot) string {
	names := make(map[int]string, len(snap.Elements))
	for _, e := range snap.Elements {
		names[e.ID] = e.Name
	}

	var parts []string
	if len(snap.Signals) > 0 {
		wires := make([]string, len(snap.Signals))
		for i, s := range snap.Signals {
			wires[i] = s.Wire
		}
		parts = append(parts, "signals "+strings.Join(wires, ","))
	}
	if out := sortedNames(names, outputIDs(snap)); len(out) > 0 {
		parts = append(parts, "outputs "+strings.Join(out, ","))
	}
	if high := sortedNames(names, highFlipFlops(snap)); len(high) > 0 {
		parts = append(parts, "Q high "+strings.Join(high, ","))
	}
	if len(parts) == 0 {
		return "idle"
	}
	return strings.Join(parts, "  ")
}

func outputIDs(snap sim.Snapshot) []int {
	ids := make([]int, 0, len(snap.ActiveOutputs))
	for id := range snap.ActiveOutputs {
		ids = append(ids, id)
	}
	return ids
}

func highFlipFlops(snap sim.Snapshot) []int {
	var ids []int
	for id, ff := range snap.FlipFlops {
		if ff.Output {
			ids = append(ids, id)
		}
	}
	return ids
}

func sortedNames(names map[int]string, ids []int) []string {
	sort.Ints(ids)
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if name, ok := names[id]; ok && name != "" {
			out = append(out, name)
		} else {
			out = append(out, strconv.Itoa(id))
		}
	}
	return out
}

func printSummary(snap sim.Snapshot) {
	names := make(map[int]string, len(snap.Elements))
	for _, e := range snap.Elements {
		names[e.ID] = e.Name
	}

	fmt.Println()
	fmt.Println("Final state:")
	if out := sortedNames(names, outputIDs(snap)); len(out) > 0 {
		fmt.Printf("  Lit outputs: %s\n", strings.Join(out, ", "))
	} else {
		fmt.Println("  Lit outputs: none")
	}

	ids := make([]int, 0, len(snap.FlipFlops))
	for id := range snap.FlipFlops {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		ff := snap.FlipFlops[id]
		fmt.Printf("  %s: Q=%s D=%v enable=%v\n",
			names[id], bit(ff.Output), ff.HasD, ff.HasEnable)
	}
}

func bit(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

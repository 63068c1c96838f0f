package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "otsim",
	Short: "OpenTraceSim - logic netlist simulation and layout tools",
	Long: `OpenTraceSim (otsim) works with small digital-logic netlists:
  - JSON and ISCAS-style .bench netlist loading
  - Automatic layer-based element placement and orthogonal wire routing
  - Discrete-event signal propagation with D flip-flop state tracking

Examples:
  otsim info counter.json                    # Show netlist statistics
  otsim convert s27.bench -o s27.json        # Convert .bench to JSON
  otsim arrange counter.json -o placed.json  # Compute element positions
  otsim run counter.json --hz 20 --for 2s --toggle reset
  otsim svg counter.json -o counter.svg      # Render placement and routes`,
	Version: "0.1.0",
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

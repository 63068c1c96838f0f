package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceSim/pkg/layout"
)

var arrangeOutput string

var arrangeCmd = &cobra.Command{
	Use:   "arrange <netlist file>",
	Short: "Compute element positions",
	Long: `Run the automatic layout planner and write the positioned netlist.

Elements are grouped into dependency layers and placed on a fixed grid.
Existing positions are overwritten.`,
	Args: cobra.ExactArgs(1),
	RunE: runArrange,
}

func init() {
	arrangeCmd.Flags().StringVarP(&arrangeOutput, "output", "o", "", "output file (default: stdout)")
	rootCmd.AddCommand(arrangeCmd)
}

func runArrange(cmd *cobra.Command, args []string) error {
	n, err := loadNetlist(args[0])
	if err != nil {
		return fmt.Errorf("error loading netlist: %w", err)
	}

	for _, e := range layout.Arrange(n.Elements, n.Connections) {
		n.SetPosition(e.ID, e.X, e.Y)
	}

	return writeNetlist(n, arrangeOutput)
}

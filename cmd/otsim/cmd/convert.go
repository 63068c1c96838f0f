package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceSim/pkg/bench"
)

var convertOutput string

var convertCmd = &cobra.Command{
	Use:   "convert <file.bench>",
	Short: "Convert an ISCAS-style .bench netlist to JSON",
	Long: `Parse a .bench text netlist and write it in the JSON interchange
format used by the other commands.

Beyond the classic ISCAS gate set the parser accepts CLK() clock
sources and DFFE(d, clk, en) enable-gated flip-flops.`,
	Args: cobra.ExactArgs(1),
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().StringVarP(&convertOutput, "output", "o", "", "output file (default: stdout)")
	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	n, err := bench.LoadFile(args[0])
	if err != nil {
		return fmt.Errorf("error converting %s: %w", args[0], err)
	}
	return writeNetlist(n, convertOutput)
}

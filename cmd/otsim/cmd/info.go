package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/OpenTraceSim/pkg/layout"
	"github.com/OpenTraceLab/OpenTraceSim/pkg/netlist"
)

var infoCmd = &cobra.Command{
	Use:   "info <netlist file>",
	Short: "Show netlist information",
	Long: `Display element and connection statistics for a netlist.

Accepts netlist JSON or ISCAS-style .bench text, chosen by extension.`,
	Args: cobra.ExactArgs(1),
	RunE: runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	n, err := loadNetlist(args[0])
	if err != nil {
		return fmt.Errorf("error loading netlist: %w", err)
	}

	fmt.Printf("Netlist: %s\n", n.Name)
	fmt.Println()
	fmt.Println("Statistics:")
	fmt.Printf("  Elements: %d\n", len(n.Elements))

	byType := make(map[string]int)
	for _, e := range n.Elements {
		byType[string(e.Type)]++
	}
	kinds := make([]string, 0, len(byType))
	for k := range byType {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	for _, k := range kinds {
		fmt.Printf("    %s: %d\n", k, byType[k])
	}

	routable, inert := 0, 0
	for _, c := range n.Connections {
		if c.Resolved() {
			routable++
		} else {
			inert++
		}
	}
	fmt.Printf("  Connections: %d (%d routable, %d inert)\n",
		len(n.Connections), routable, inert)

	layers := layout.Layers(n.Elements, n.Connections)
	fmt.Printf("  Layers: %d\n", len(layers))
	for i, ids := range layers {
		fmt.Printf("    %d: %s\n", i, strings.Join(elementNames(n, ids), ", "))
	}

	if problems := n.Problems(); len(problems) > 0 {
		fmt.Println()
		fmt.Println("Problems:")
		for _, p := range problems {
			fmt.Printf("  %s\n", p)
		}
	}

	return nil
}

func elementNames(n *netlist.Netlist, ids []int) []string {
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		if e, ok := n.Element(id); ok {
			names = append(names, e.Name)
		}
	}
	return names
}

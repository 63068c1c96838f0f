package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/OpenTraceLab/OpenTraceSim/pkg/bench"
	"github.com/OpenTraceLab/OpenTraceSim/pkg/netlist"
)

// loadNetlist reads a netlist in either interchange format, chosen by
// file extension: .bench text or netlist JSON.
func loadNetlist(path string) (*netlist.Netlist, error) {
	if strings.EqualFold(filepath.Ext(path), ".bench") {
		return bench.LoadFile(path)
	}
	return netlist.LoadFile(path)
}

// writeNetlist saves a netlist to the given path, or to stdout when the
// path is empty.
func writeNetlist(n *netlist.Netlist, path string) error {
	if path == "" {
		return n.Save(os.Stdout)
	}
	if err := n.SaveFile(path); err != nil {
		return fmt.Errorf("error writing %s: %w", path, err)
	}
	fmt.Printf("Wrote %s\n", path)
	return nil
}

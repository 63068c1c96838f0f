// Package layout computes deterministic positions for netlist elements.
//
// Elements are arranged into columns by signal flow: sources (module
// inputs and clocks) occupy the first column, and every other element
// joins a column only once all of its drivers have been placed in
// earlier columns. Elements that can never satisfy that rule, such as
// participants in feedback loops, are swept into one final catch-all
// column, so every element always receives a finite position.
package layout

import (
	"gonum.org/v1/gonum/graph/simple"

	"github.com/OpenTraceLab/OpenTraceSim/pkg/netlist"
)

// Grid spacing, in the same units as element coordinates.
const (
	OffsetX      = 80
	OffsetY      = 60
	LayerSpacing = 180
	RowSpacing   = 100
)

// Layers groups element ids into placement layers. Layer membership is a
// function of the dependency graph only, and slot order within a layer
// follows the order of the elements slice, so the grouping is reproducible
// for a stable input ordering.
func Layers(elements []netlist.Element, connections []netlist.Connection) [][]int {
	g := simple.NewDirectedGraph()
	known := make(map[int]struct{}, len(elements))
	for _, e := range elements {
		if _, ok := known[e.ID]; ok {
			continue
		}
		known[e.ID] = struct{}{}
		g.AddNode(simple.Node(e.ID))
	}
	for _, c := range connections {
		if !c.Resolved() || c.SourceID == c.DestID {
			continue
		}
		if _, ok := known[c.SourceID]; !ok {
			continue
		}
		if _, ok := known[c.DestID]; !ok {
			continue
		}
		g.SetEdge(g.NewEdge(simple.Node(c.SourceID), simple.Node(c.DestID)))
	}

	placed := make(map[int]struct{}, len(elements))
	var layers [][]int

	var seed []int
	for _, e := range elements {
		if _, ok := placed[e.ID]; ok {
			continue
		}
		if e.Type.IsSource() || len(e.Inputs) == 0 {
			placed[e.ID] = struct{}{}
			seed = append(seed, e.ID)
		}
	}
	if len(seed) > 0 {
		layers = append(layers, seed)
	}

	// Breadth expansion. Candidates are collected against the placements
	// of earlier rounds and committed together, so an element with several
	// upstream dependencies waits for the slowest one.
	for {
		var next []int
		for _, e := range elements {
			if _, ok := placed[e.ID]; ok {
				continue
			}
			if driversPlaced(g, placed, e.ID) {
				next = append(next, e.ID)
			}
		}
		if len(next) == 0 {
			break
		}
		for _, id := range next {
			placed[id] = struct{}{}
		}
		layers = append(layers, next)
	}

	var rest []int
	for _, e := range elements {
		if _, ok := placed[e.ID]; ok {
			continue
		}
		placed[e.ID] = struct{}{}
		rest = append(rest, e.ID)
	}
	if len(rest) > 0 {
		layers = append(layers, rest)
	}

	return layers
}

func driversPlaced(g *simple.DirectedGraph, placed map[int]struct{}, id int) bool {
	drivers := g.To(int64(id))
	for drivers.Next() {
		if _, ok := placed[int(drivers.Node().ID())]; !ok {
			return false
		}
	}
	return true
}

// Arrange returns a copy of elements with positions assigned from their
// layer and slot. The input slice is not modified.
func Arrange(elements []netlist.Element, connections []netlist.Connection) []netlist.Element {
	byID := make(map[int]int, len(elements))
	out := make([]netlist.Element, len(elements))
	for i, e := range elements {
		out[i] = e
		if _, ok := byID[e.ID]; !ok {
			byID[e.ID] = i
		}
	}
	for layer, ids := range Layers(elements, connections) {
		for slot, id := range ids {
			e := &out[byID[id]]
			e.X = OffsetX + float64(layer)*LayerSpacing
			e.Y = OffsetY + float64(slot)*RowSpacing
		}
	}
	return out
}

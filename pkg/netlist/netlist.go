// Package netlist defines the element/connection data model consumed by the
// simulation engine: typed elements with named ports, and the wire
// connections derived from matching port wire names.
package netlist

import (
	"fmt"
	"sort"
)

// Kind identifies the element type. The string values match the type tags
// used in the JSON interchange files.
type Kind string

const (
	KindInput  Kind = "module_input"
	KindOutput Kind = "module_output"
	KindClock  Kind = "clk"
	KindDFF    Kind = "DFF"
	KindDFFNE  Kind = "DFF_NE"
	KindLUT1   Kind = "LUT1"
	KindLUT2   Kind = "LUT2"
	KindLUT3   Kind = "LUT3"
	KindLUT4   Kind = "LUT4"
	KindAnd    Kind = "and"
	KindOr     Kind = "or"
	KindNand   Kind = "nand"
	KindNor    Kind = "nor"
	KindXor    Kind = "xor"
	KindNxor   Kind = "nxor"
)

var validKinds = map[Kind]bool{
	KindInput: true, KindOutput: true, KindClock: true,
	KindDFF: true, KindDFFNE: true,
	KindLUT1: true, KindLUT2: true, KindLUT3: true, KindLUT4: true,
	KindAnd: true, KindOr: true, KindNand: true, KindNor: true,
	KindXor: true, KindNxor: true,
}

// Valid reports whether k is one of the defined element kinds.
func (k Kind) Valid() bool {
	return validKinds[k]
}

// IsFlipFlop reports whether the kind carries per-element latch state.
func (k Kind) IsFlipFlop() bool {
	return k == KindDFF || k == KindDFFNE
}

// IsSource reports whether elements of this kind originate signals on their
// own (clocks tick, module inputs can be toggled active). Elements without
// input ports are also treated as sources by the layout planner, but that is
// a per-element property, not a kind property.
func (k Kind) IsSource() bool {
	return k == KindInput || k == KindClock
}

// Port is one named input or output slot on an element. Wire is the
// connection name that joins the port to its peer; an empty wire leaves the
// port unconnected.
type Port struct {
	Name string `json:"name"`
	Wire string `json:"wire,omitempty"`
}

// Element is a single netlist node. IDs are positive and unique within a
// netlist; X/Y is the mutable canvas position (zero until the layout planner
// or a drag command assigns one).
type Element struct {
	ID      int     `json:"id"`
	Name    string  `json:"name"`
	Type    Kind    `json:"type"`
	X       float64 `json:"x,omitempty"`
	Y       float64 `json:"y,omitempty"`
	Inputs  []Port  `json:"inputs,omitempty"`
	Outputs []Port  `json:"outputs,omitempty"`
}

// InputIndex returns the position of the input port bound to the named wire,
// or -1 if no input uses it.
func (e *Element) InputIndex(wire string) int {
	if wire == "" {
		return -1
	}
	for i, p := range e.Inputs {
		if p.Wire == wire {
			return i
		}
	}
	return -1
}

// OutputIndex returns the position of the output port bound to the named
// wire, or -1 if no output uses it.
func (e *Element) OutputIndex(wire string) int {
	if wire == "" {
		return -1
	}
	for i, p := range e.Outputs {
		if p.Wire == wire {
			return i
		}
	}
	return -1
}

// Connection is one named wire binding an output port to an input port.
// Either side may be unresolved (zero SourceID/DestID), in which case the
// connection is inert: it never routes, never carries a signal, and never
// participates in layout.
type Connection struct {
	Name       string `json:"name"`
	SourceID   int    `json:"source,omitempty"`
	SourcePort string `json:"source_port,omitempty"`
	DestID     int    `json:"dest,omitempty"`
	DestPort   string `json:"dest_port,omitempty"`
}

// Resolved reports whether both endpoints of the connection exist.
func (c *Connection) Resolved() bool {
	return c.SourceID > 0 && c.DestID > 0
}

// Netlist is the owning container for one loaded design. It is replaced
// wholesale when a new design loads; element positions are the only part
// mutated in place afterwards.
type Netlist struct {
	Name        string
	Elements    []Element
	Connections []Connection

	byID   map[int]int    // element id -> index into Elements
	byWire map[string]int // wire name -> index into Connections

	problems []string
}

// New builds a netlist from elements and optional explicit connections.
// Connections are derived from port wire names and merged with the explicit
// list; conflicts (duplicate ids, a wire driven by two outputs, unknown
// kinds) are downgraded to recorded problems rather than errors, with the
// first binding winning.
func New(name string, elements []Element, connections []Connection) *Netlist {
	n := &Netlist{
		Name:     name,
		Elements: elements,
		byID:     make(map[int]int, len(elements)),
		byWire:   make(map[string]int),
	}

	for i := range n.Elements {
		e := &n.Elements[i]
		if e.ID <= 0 {
			n.problem("element %q has non-positive id %d; it cannot be connected", e.Name, e.ID)
			continue
		}
		if _, dup := n.byID[e.ID]; dup {
			n.problem("duplicate element id %d (%q); keeping the first", e.ID, e.Name)
			continue
		}
		if !e.Type.Valid() {
			n.problem("element %d (%q) has unknown type %q", e.ID, e.Name, e.Type)
		}
		n.byID[e.ID] = i
	}

	n.deriveConnections(connections)
	return n
}

// deriveConnections seeds the connection table from the explicit list, then
// scans every element port and attaches endpoints by wire name.
func (n *Netlist) deriveConnections(explicit []Connection) {
	for _, c := range explicit {
		if c.Name == "" {
			n.problem("connection with empty name ignored")
			continue
		}
		if _, dup := n.byWire[c.Name]; dup {
			n.problem("duplicate connection %q; keeping the first", c.Name)
			continue
		}
		// Endpoints supplied explicitly are kept only when they resolve to a
		// real port; otherwise the scan below refills them.
		if !n.portExists(c.SourceID, c.SourcePort, false) {
			c.SourceID, c.SourcePort = 0, ""
		}
		if !n.portExists(c.DestID, c.DestPort, true) {
			c.DestID, c.DestPort = 0, ""
		}
		n.byWire[c.Name] = len(n.Connections)
		n.Connections = append(n.Connections, c)
	}

	// Wires named only by ports come next, in sorted order so the derived
	// part of the table is deterministic.
	var derived []string
	seen := make(map[string]bool)
	note := func(wire string) {
		if wire == "" || seen[wire] {
			return
		}
		seen[wire] = true
		if _, ok := n.byWire[wire]; !ok {
			derived = append(derived, wire)
		}
	}
	for i := range n.Elements {
		for _, p := range n.Elements[i].Outputs {
			note(p.Wire)
		}
		for _, p := range n.Elements[i].Inputs {
			note(p.Wire)
		}
	}
	sort.Strings(derived)
	for _, wire := range derived {
		n.byWire[wire] = len(n.Connections)
		n.Connections = append(n.Connections, Connection{Name: wire})
	}

	// Attach endpoints. Elements are scanned in input order, so when two
	// ports claim the same side of a wire the earlier element wins.
	for i := range n.Elements {
		e := &n.Elements[i]
		if idx, ok := n.byID[e.ID]; !ok || idx != i {
			continue // shadowed duplicate
		}
		for _, p := range e.Outputs {
			if p.Wire == "" {
				continue
			}
			c := &n.Connections[n.byWire[p.Wire]]
			switch {
			case c.SourceID == 0:
				c.SourceID, c.SourcePort = e.ID, p.Name
			case c.SourceID == e.ID && c.SourcePort == p.Name:
				// explicit binding, confirmed by the port scan
			default:
				n.problem("wire %q driven by both element %d and element %d; keeping element %d",
					p.Wire, c.SourceID, e.ID, c.SourceID)
			}
		}
		for _, p := range e.Inputs {
			if p.Wire == "" {
				continue
			}
			// Wires are point to point. Fan-out keeps the first reader and
			// leaves later input ports unconnected; unlike a second driver,
			// extra readers are not worth a problem report.
			c := &n.Connections[n.byWire[p.Wire]]
			if c.DestID == 0 {
				c.DestID, c.DestPort = e.ID, p.Name
			}
		}
	}
}

func (n *Netlist) portExists(id int, port string, input bool) bool {
	e, ok := n.Element(id)
	if !ok {
		return false
	}
	ports := e.Outputs
	if input {
		ports = e.Inputs
	}
	for _, p := range ports {
		if p.Name == port {
			return true
		}
	}
	return false
}

// Element returns the element with the given id.
func (n *Netlist) Element(id int) (*Element, bool) {
	i, ok := n.byID[id]
	if !ok {
		return nil, false
	}
	return &n.Elements[i], true
}

// Connection returns the connection with the given wire name.
func (n *Netlist) Connection(wire string) (*Connection, bool) {
	i, ok := n.byWire[wire]
	if !ok {
		return nil, false
	}
	return &n.Connections[i], true
}

// Endpoints resolves a wire to its source and destination elements. ok is
// false for unknown wires and for inert connections, so callers can skip
// both with one check.
func (n *Netlist) Endpoints(wire string) (src, dst *Element, ok bool) {
	c, found := n.Connection(wire)
	if !found || !c.Resolved() {
		return nil, nil, false
	}
	src, sok := n.Element(c.SourceID)
	dst, dok := n.Element(c.DestID)
	if !sok || !dok {
		return nil, nil, false
	}
	return src, dst, true
}

// Positioned reports whether any element carries a non-zero position,
// distinguishing a saved layout from a freshly imported netlist.
func (n *Netlist) Positioned() bool {
	for i := range n.Elements {
		if n.Elements[i].X != 0 || n.Elements[i].Y != 0 {
			return true
		}
	}
	return false
}

// SetPosition moves one element. Unknown ids are ignored, matching the
// engine's treat-absence-as-no-op error model.
func (n *Netlist) SetPosition(id int, x, y float64) {
	if e, ok := n.Element(id); ok {
		e.X, e.Y = x, y
	}
}

// Problems lists the non-fatal issues recorded while building the netlist
// (duplicate ids, contested wires, unknown kinds). Inert connections are not
// problems by themselves; partially wired designs are expected.
func (n *Netlist) Problems() []string {
	return append([]string(nil), n.problems...)
}

// Clone returns a deep copy, used by snapshot readers so renderers never
// share slices with the live netlist.
func (n *Netlist) Clone() *Netlist {
	elements := make([]Element, len(n.Elements))
	for i, e := range n.Elements {
		e.Inputs = append([]Port(nil), e.Inputs...)
		e.Outputs = append([]Port(nil), e.Outputs...)
		elements[i] = e
	}
	return New(n.Name, elements, n.Connections)
}

func (n *Netlist) problem(format string, args ...interface{}) {
	n.problems = append(n.problems, fmt.Sprintf(format, args...))
}

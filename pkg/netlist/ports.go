package netlist

import (
	"strings"
)

// PortRole identifies what a flip-flop input port means to the engine.
type PortRole int

const (
	RoleData PortRole = iota
	RoleClock
	RoleEnable
	RoleOther
)

// String returns a human-readable role name
func (r PortRole) String() string {
	switch r {
	case RoleData:
		return "data"
	case RoleClock:
		return "clock"
	case RoleEnable:
		return "enable"
	default:
		return "other"
	}
}

// InputRole classifies the input port at the given index. Port names are
// matched first (a name containing "clk" is the clock, "en" the enable,
// "d" the data input); ports with nonstandard names fall back to
// positional classification in the conventional (D, clock, enable) order.
func (e Element) InputRole(index int) PortRole {
	if index < 0 || index >= len(e.Inputs) {
		return RoleOther
	}
	name := strings.ToLower(e.Inputs[index].Name)
	switch {
	case strings.Contains(name, "clk") || strings.Contains(name, "clock"):
		return RoleClock
	case strings.Contains(name, "en"):
		return RoleEnable
	case strings.Contains(name, "d"):
		return RoleData
	}
	switch index {
	case 0:
		return RoleData
	case 1:
		return RoleClock
	case 2:
		return RoleEnable
	}
	return RoleOther
}

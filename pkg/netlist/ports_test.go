package netlist

import (
	"testing"
)

func TestInputRoleByName(t *testing.T) {
	e := Element{
		Type: KindDFF,
		Inputs: []Port{
			{Name: "en"}, {Name: "D"}, {Name: "clk"},
		},
	}
	// Nonstandard ordering still classifies correctly by name.
	cases := []struct {
		index int
		want  PortRole
	}{
		{0, RoleEnable},
		{1, RoleData},
		{2, RoleClock},
		{3, RoleOther},
		{-1, RoleOther},
	}
	for _, tc := range cases {
		if got := e.InputRole(tc.index); got != tc.want {
			t.Fatalf("InputRole(%d) = %s, want %s", tc.index, got, tc.want)
		}
	}
}

func TestInputRoleByIndex(t *testing.T) {
	e := Element{
		Type: KindDFF,
		Inputs: []Port{
			{Name: "p0"}, {Name: "p1"}, {Name: "p2"},
		},
	}
	for index, want := range []PortRole{RoleData, RoleClock, RoleEnable} {
		if got := e.InputRole(index); got != want {
			t.Fatalf("InputRole(%d) = %s, want positional %s", index, got, want)
		}
	}
}

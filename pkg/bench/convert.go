package bench

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
	"github.com/pkg/errors"

	"github.com/OpenTraceLab/OpenTraceSim/pkg/netlist"
)

// gateKind maps a .bench gate keyword and argument count onto a netlist
// element kind plus the input port names to wire, in argument order.
//
// DFF takes (D) or (D, clock) and lowers to the no-enable flip-flop;
// DFFE takes (D, clock, enable) and lowers to the enable-gated one.
// NOT and BUF are single-input lookup tables.
func gateKind(gate string, argc int) (netlist.Kind, []string, error) {
	arity := func(min, max int) error {
		if argc < min || argc > max {
			if min == max {
				return errors.Errorf("%s takes %d inputs, got %d", gate, min, argc)
			}
			return errors.Errorf("%s takes %d to %d inputs, got %d", gate, min, max, argc)
		}
		return nil
	}

	switch strings.ToUpper(gate) {
	case "CLK":
		return netlist.KindClock, nil, arity(0, 0)
	case "DFF":
		return netlist.KindDFFNE, []string{"D", "clk"}[:min(argc, 2)], arity(1, 2)
	case "DFFE":
		return netlist.KindDFF, []string{"D", "clk", "en"}, arity(3, 3)
	case "NOT", "BUF", "BUFF":
		return netlist.KindLUT1, numberedInputs(argc), arity(1, 1)
	case "AND":
		return netlist.KindAnd, numberedInputs(argc), arity(2, 4)
	case "OR":
		return netlist.KindOr, numberedInputs(argc), arity(2, 4)
	case "NAND":
		return netlist.KindNand, numberedInputs(argc), arity(2, 4)
	case "NOR":
		return netlist.KindNor, numberedInputs(argc), arity(2, 4)
	case "XOR":
		return netlist.KindXor, numberedInputs(argc), arity(2, 4)
	case "NXOR", "XNOR":
		return netlist.KindNxor, numberedInputs(argc), arity(2, 4)
	case "LUT1":
		return netlist.KindLUT1, numberedInputs(argc), arity(1, 1)
	case "LUT2":
		return netlist.KindLUT2, numberedInputs(argc), arity(2, 2)
	case "LUT3":
		return netlist.KindLUT3, numberedInputs(argc), arity(3, 3)
	case "LUT4":
		return netlist.KindLUT4, numberedInputs(argc), arity(4, 4)
	default:
		return "", nil, errors.Errorf("unknown gate type %q", gate)
	}
}

func numberedInputs(n int) []string {
	names := make([]string, n)
	for i := range names {
		names[i] = fmt.Sprintf("in%d", i)
	}
	return names
}

func outputPort(kind netlist.Kind) string {
	if kind.IsFlipFlop() {
		return "Q"
	}
	return "out"
}

// Convert lowers a parsed .bench file into a netlist. Signal names become
// wire names, each declaration or assignment becomes one element, and ids
// are assigned sequentially in statement order.
func Convert(f *File, name string) (*netlist.Netlist, error) {
	var elements []netlist.Element
	drivers := make(map[string]lexer.Position)
	nextID := 1

	claim := func(signal string, pos lexer.Position) error {
		if prev, ok := drivers[signal]; ok {
			return errors.Errorf("line %d: signal %q already driven at line %d",
				pos.Line, signal, prev.Line)
		}
		drivers[signal] = pos
		return nil
	}

	for _, s := range f.Statements {
		switch {
		case s.Input != nil:
			if err := claim(*s.Input, s.Pos); err != nil {
				return nil, err
			}
			elements = append(elements, netlist.Element{
				ID: nextID, Name: *s.Input, Type: netlist.KindInput,
				Outputs: []netlist.Port{{Name: "out", Wire: *s.Input}},
			})

		case s.Output != nil:
			elements = append(elements, netlist.Element{
				ID: nextID, Name: *s.Output, Type: netlist.KindOutput,
				Inputs: []netlist.Port{{Name: "in", Wire: *s.Output}},
			})

		case s.Assign != nil:
			a := s.Assign
			kind, ports, err := gateKind(a.Gate, len(a.Args))
			if err != nil {
				return nil, errors.Wrapf(err, "line %d", a.Pos.Line)
			}
			if err := claim(a.Target, a.Pos); err != nil {
				return nil, err
			}
			inputs := make([]netlist.Port, len(a.Args))
			for i, arg := range a.Args {
				inputs[i] = netlist.Port{Name: ports[i], Wire: arg}
			}
			elements = append(elements, netlist.Element{
				ID: nextID, Name: a.Target, Type: kind,
				Inputs: inputs,
				Outputs: []netlist.Port{{Name: outputPort(kind), Wire: a.Target}},
			})

		default:
			continue
		}
		nextID++
	}

	return netlist.New(name, elements, nil), nil
}

// LoadFile parses path and lowers it into a netlist named after the file.
func LoadFile(path string) (*netlist.Netlist, error) {
	p, err := NewParser()
	if err != nil {
		return nil, err
	}
	f, err := p.ParseFile(path)
	if err != nil {
		return nil, err
	}
	base := filepath.Base(path)
	return Convert(f, strings.TrimSuffix(base, filepath.Ext(base)))
}

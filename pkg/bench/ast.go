package bench

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// File represents a complete parsed .bench netlist: a flat sequence of
// input/output declarations and gate assignments in source order.
type File struct {
	Statements []*Statement `parser:"@@*"`
}

// Statement is a single .bench statement
// Example: INPUT(a) / OUTPUT(y) / y = AND(a, b)
type Statement struct {
	Pos lexer.Position

	Input  *string     `parser:"  KwInput LParen @Ident RParen"`
	Output *string     `parser:"| KwOutput LParen @Ident RParen"`
	Assign *Assignment `parser:"| @@"`
}

// Assignment binds a gate invocation to its output signal
// Example: q = DFFE(d, c, e)
type Assignment struct {
	Pos lexer.Position

	Target string   `parser:"@Ident Assign"`
	Gate   string   `parser:"@Ident"`
	Args   []string `parser:"LParen ( @Ident ( Comma @Ident )* )? RParen"`
}

// Inputs returns the declared module input signals in source order.
func (f *File) Inputs() []string {
	var names []string
	for _, s := range f.Statements {
		if s.Input != nil {
			names = append(names, *s.Input)
		}
	}
	return names
}

// Outputs returns the declared module output signals in source order.
func (f *File) Outputs() []string {
	var names []string
	for _, s := range f.Statements {
		if s.Output != nil {
			names = append(names, *s.Output)
		}
	}
	return names
}

// Assignments returns all gate assignments in source order.
func (f *File) Assignments() []*Assignment {
	var assigns []*Assignment
	for _, s := range f.Statements {
		if s.Assign != nil {
			assigns = append(assigns, s.Assign)
		}
	}
	return assigns
}

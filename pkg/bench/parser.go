package bench

import (
	"io"
	"os"

	"github.com/alecthomas/participle/v2"
	"github.com/pkg/errors"
)

// Parser parses .bench netlist files
type Parser struct {
	parser *participle.Parser[File]
}

// NewParser creates a new .bench parser instance
func NewParser() (*Parser, error) {
	parser, err := participle.Build[File](
		participle.Lexer(benchLexer),
		participle.Elide("Comment", "Whitespace"),
		participle.UseLookahead(2),
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build parser")
	}

	return &Parser{parser: parser}, nil
}

// Parse parses a .bench file from a reader
func (p *Parser) Parse(r io.Reader) (*File, error) {
	f, err := p.parser.Parse("", r)
	if err != nil {
		return nil, errors.Wrap(err, "parse error")
	}
	return f, nil
}

// ParseString parses a .bench file from a string
func (p *Parser) ParseString(input string) (*File, error) {
	f, err := p.parser.ParseString("", input)
	if err != nil {
		return nil, errors.Wrap(err, "parse error")
	}
	return f, nil
}

// ParseFile parses a .bench file from a file path
func (p *Parser) ParseFile(filename string) (*File, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open file")
	}
	defer file.Close()

	return p.Parse(file)
}

package netlist

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// document is the on-disk JSON shape. Connections are optional: ports carry
// wire names, which is enough to rebuild the table.
type document struct {
	Name        string       `json:"name,omitempty"`
	Elements    []Element    `json:"elements"`
	Connections []Connection `json:"connections,omitempty"`
}

// Load reads a netlist from JSON. Only malformed JSON is an error; semantic
// issues (duplicate ids, contested wires) become Problems on the returned
// netlist so the caller can warn without aborting.
func Load(r io.Reader) (*Netlist, error) {
	var doc document
	dec := json.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("netlist: decode: %w", err)
	}
	return New(doc.Name, doc.Elements, doc.Connections), nil
}

// LoadFile reads a netlist from a JSON file.
func LoadFile(path string) (*Netlist, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("netlist: open %s: %w", path, err)
	}
	defer f.Close()

	n, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if n.Name == "" {
		n.Name = path
	}
	return n, nil
}

// Save writes the netlist as indented JSON, including resolved connection
// endpoints and element positions so a later load restores the layout.
func (n *Netlist) Save(w io.Writer) error {
	doc := document{
		Name:        n.Name,
		Elements:    n.Elements,
		Connections: n.Connections,
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("netlist: encode: %w", err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("netlist: write: %w", err)
	}
	return nil
}

// SaveFile writes the netlist to a JSON file.
func (n *Netlist) SaveFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("netlist: create %s: %w", path, err)
	}
	defer f.Close()
	return n.Save(f)
}

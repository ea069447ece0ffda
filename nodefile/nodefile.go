// Package nodefile loads node listings from YAML (or JSON) files.
//
// A node file describes a parameter tree the way a live target would list
// it, plus what a listing cannot carry: initial values and parser
// expressions. It is the input of the nodectl simulation mode and a handy
// way to preload a registry in tests:
//
//	device: dev8000
//	nodes:
//	  /dev8000/demods/0/rate:
//	    type: Double
//	    unit: Hz
//	    properties: Read, Write, Setting
//	    value: 1674.0
package nodefile

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/kvasirlab/nodekit/nodetree"
	"github.com/kvasirlab/nodekit/parse"
)

// File is a parsed node file.
type File struct {
	// Device is the hidden prefix to construct the registry with.
	Device string `yaml:"device"`

	// Nodes maps absolute paths to their definitions.
	Nodes map[string]Entry `yaml:"nodes"`
}

// Entry is one node definition. The listing fields mirror the wire
// descriptor; Value, GetParser and SetParser are file-only extras.
type Entry struct {
	Description string           `yaml:"description"`
	Type        string           `yaml:"type"`
	Unit        string           `yaml:"unit"`
	Properties  string           `yaml:"properties"`
	Options     map[int64]string `yaml:"options"`

	Value     any    `yaml:"value"`
	GetParser string `yaml:"getparser"`
	SetParser string `yaml:"setparser"`
}

// Load reads and parses a node file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("nodefile: %w", err)
	}
	return Parse(data)
}

// Parse parses node file contents.
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("nodefile: %w", err)
	}
	if len(f.Nodes) == 0 {
		return nil, fmt.Errorf("nodefile: no nodes defined")
	}
	return &f, nil
}

// Defs converts the file into the wire listing form consumed by
// nodetree.WithPreloaded and sim.New.
func (f *File) Defs() map[string]nodetree.NodeDef {
	defs := make(map[string]nodetree.NodeDef, len(f.Nodes))
	for path, e := range f.Nodes {
		def := nodetree.NodeDef{
			Node:        path,
			Description: e.Description,
			Properties:  e.Properties,
			Type:        e.Type,
			Unit:        e.Unit,
		}
		if len(e.Options) > 0 {
			def.Options = make(map[string]string, len(e.Options))
			for code, text := range e.Options {
				def.Options[strconv.FormatInt(code, 10)] = text
			}
		}
		defs[path] = def
	}
	return defs
}

// Values returns the initial values declared in the file, keyed by
// absolute path.
func (f *File) Values() map[string]any {
	values := make(map[string]any)
	for path, e := range f.Nodes {
		if e.Value != nil {
			values[path] = e.Value
		}
	}
	return values
}

// ParserUpdates compiles the parser expressions declared in the file into
// descriptor patches, ready for Tree.UpdateMany.
func (f *File) ParserUpdates() (map[string]nodetree.DescriptorUpdate, error) {
	updates := make(map[string]nodetree.DescriptorUpdate)
	for path, e := range f.Nodes {
		var upd nodetree.DescriptorUpdate
		if e.GetParser != "" {
			p, err := parse.Compile(e.GetParser)
			if err != nil {
				return nil, fmt.Errorf("nodefile: getparser of %s: %w", path, err)
			}
			upd.GetParser = p
		}
		if e.SetParser != "" {
			p, err := parse.Compile(e.SetParser)
			if err != nil {
				return nil, fmt.Errorf("nodefile: setparser of %s: %w", path, err)
			}
			upd.SetParser = p
		}
		if upd.GetParser != nil || upd.SetParser != nil {
			updates[path] = upd
		}
	}
	return updates, nil
}

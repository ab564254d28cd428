package loader

import (
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dd0wney/cluso-adtree/pkg/adtree"
	"github.com/dd0wney/cluso-adtree/pkg/validation"
)

// Document is the YAML form of a tree
type Document struct {
	Root  string         `yaml:"root" validate:"required,adtlabel"`
	Nodes []NodeDocument `yaml:"nodes" validate:"required,min=1,dive"`
}

// NodeDocument is one node entry of a Document
type NodeDocument struct {
	Label    string   `yaml:"label" validate:"required,adtlabel"`
	Actor    string   `yaml:"actor" validate:"required,oneof=a d attacker defender"`
	Kind     string   `yaml:"kind,omitempty" validate:"omitempty,oneof=basic or and sand"`
	Children []string `yaml:"children,omitempty" validate:"dive,adtlabel"`
	Counter  string   `yaml:"counter,omitempty" validate:"omitempty,adtlabel"`
}

// ParseYAML decodes, validates and builds a YAML tree document
func ParseYAML(r io.Reader) (*adtree.ADTree, error) {
	var doc Document
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	return doc.Build()
}

// Build validates the document and assembles its tree
func (d *Document) Build() (*adtree.ADTree, error) {
	if err := validation.Struct(d); err != nil {
		return nil, fmt.Errorf("invalid tree document: %w", err)
	}

	reg := newRegistry()
	for _, n := range d.Nodes {
		actor, err := adtree.ParseActor(n.Actor)
		if err != nil {
			return nil, fmt.Errorf("node %q: %w", n.Label, err)
		}
		kind, err := adtree.ParseKind(n.Kind)
		if err != nil {
			return nil, fmt.Errorf("node %q: %w", n.Label, err)
		}
		if err := reg.add(adtree.NodeDef{
			Label:    n.Label,
			Actor:    actor,
			Kind:     kind,
			Children: n.Children,
			Counter:  n.Counter,
		}); err != nil {
			return nil, err
		}
	}
	return reg.build(d.Root)
}

// FromTree converts a tree to its YAML document, listing nodes in discovery order
func FromTree(tree *adtree.ADTree) *Document {
	doc := &Document{Root: tree.RootLabel()}
	for _, n := range tree.Nodes() {
		nd := NodeDocument{
			Label:    n.Label,
			Actor:    n.Actor.String(),
			Children: n.Children,
			Counter:  n.Counter,
		}
		if n.Kind != adtree.Basic {
			nd.Kind = strings.ToLower(n.Kind.String())
		}
		doc.Nodes = append(doc.Nodes, nd)
	}
	return doc
}

// WriteYAML encodes tree as a YAML document
func WriteYAML(w io.Writer, tree *adtree.ADTree) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(FromTree(tree)); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}

package adtree

import (
	"fmt"

	"github.com/dd0wney/cluso-adtree/pkg/validation"
)

// Builder provides a fluent interface for assembling a tree. The first error is
// captured and returned by Build, so chains do not need per-call checks.
type Builder struct {
	nodes map[string]*Node
	root  string
	err   error
}

// NewBuilder creates an empty builder
func NewBuilder() *Builder {
	return &Builder{
		nodes: make(map[string]*Node),
	}
}

// Add registers a node. Labels must pass validation.ValidateLabel.
// Registering the same label again with an identical shape is a no-op; a
// different shape is an error.
func (b *Builder) Add(def NodeDef) *Builder {
	if b.err != nil {
		return b
	}
	if def.Label == "" {
		b.err = malformed("", ErrEmptyLabel)
		return b
	}
	if err := validation.ValidateLabel(def.Label); err != nil {
		b.err = malformed(def.Label, fmt.Errorf("%w: %w", ErrInvalidLabel, err))
		return b
	}

	n := &Node{
		Label:    def.Label,
		Actor:    def.Actor,
		Kind:     def.Kind,
		Children: append([]string(nil), def.Children...),
		Counter:  def.Counter,
	}

	if existing, ok := b.nodes[def.Label]; ok {
		if !existing.sameShape(n) {
			b.err = malformed(def.Label, ErrConflictingLabel)
		}
		return b
	}

	b.nodes[def.Label] = n
	return b
}

// Basic registers a basic action
func (b *Builder) Basic(label string, actor Actor) *Builder {
	return b.Add(NodeDef{Label: label, Actor: actor, Kind: Basic})
}

// Or registers a disjunctive gate
func (b *Builder) Or(label string, actor Actor, children ...string) *Builder {
	return b.Add(NodeDef{Label: label, Actor: actor, Kind: Or, Children: children})
}

// And registers a conjunctive gate
func (b *Builder) And(label string, actor Actor, children ...string) *Builder {
	return b.Add(NodeDef{Label: label, Actor: actor, Kind: And, Children: children})
}

// Sand registers a sequential conjunctive gate; child order is significant
func (b *Builder) Sand(label string, actor Actor, children ...string) *Builder {
	return b.Add(NodeDef{Label: label, Actor: actor, Kind: Sand, Children: children})
}

// Counter attaches a countering node to an already registered node
func (b *Builder) Counter(label, counter string) *Builder {
	if b.err != nil {
		return b
	}
	n, ok := b.nodes[label]
	if !ok {
		b.err = malformed(label, ErrUnknownLabel)
		return b
	}
	if n.Counter != "" && n.Counter != counter {
		b.err = malformed(label, ErrConflictingLabel)
		return b
	}
	n.Counter = counter
	return b
}

// Root sets the distinguished root label
func (b *Builder) Root(label string) *Builder {
	if b.err != nil {
		return b
	}
	b.root = label
	return b
}

// Err returns the first error captured so far
func (b *Builder) Err() error {
	return b.err
}

// Build validates the registered nodes and returns an immutable tree
func (b *Builder) Build() (*ADTree, error) {
	if b.err != nil {
		return nil, b.err
	}

	nodes := make(map[string]*Node, len(b.nodes))
	for label, n := range b.nodes {
		nodes[label] = n.clone()
	}

	t := &ADTree{
		root:  b.root,
		nodes: nodes,
	}
	if err := t.validate(); err != nil {
		return nil, err
	}
	t.index()
	return t, nil
}

package adtree

import (
	"fmt"
	"strings"
)

// Actor identifies which side owns a goal
type Actor int

const (
	// Attacker is the proponent in the original tree orientation
	Attacker Actor = iota
	// Defender owns countermeasures
	Defender
)

// String returns the string representation of an actor
func (a Actor) String() string {
	switch a {
	case Attacker:
		return "attacker"
	case Defender:
		return "defender"
	default:
		return "unknown"
	}
}

// Opponent returns the other actor
func (a Actor) Opponent() Actor {
	if a == Attacker {
		return Defender
	}
	return Attacker
}

// ParseActor converts a string to an Actor. Both the short forms used by
// tree files ("a", "d") and the long forms are accepted.
func ParseActor(s string) (Actor, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "a", "attacker", "proponent":
		return Attacker, nil
	case "d", "defender", "opponent":
		return Defender, nil
	default:
		return Attacker, fmt.Errorf("unknown actor %q", s)
	}
}

// Kind is the refinement of a node
type Kind int

const (
	// Basic nodes are leaves: atomic actions
	Basic Kind = iota
	// Or is satisfied by any child
	Or
	// And requires every child
	And
	// Sand requires every child, in order
	Sand
)

// String returns the string representation of a kind
func (k Kind) String() string {
	switch k {
	case Basic:
		return "BASIC"
	case Or:
		return "OR"
	case And:
		return "AND"
	case Sand:
		return "SAND"
	default:
		return "UNKNOWN"
	}
}

// IsGate reports whether nodes of this kind refine into children
func (k Kind) IsGate() bool {
	return k == Or || k == And || k == Sand
}

// ParseKind converts a string to a Kind. ADTool refinement names are accepted.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "basic", "leaf", "":
		return Basic, nil
	case "or", "disjunctive":
		return Or, nil
	case "and", "conjunctive":
		return And, nil
	case "sand", "sequential":
		return Sand, nil
	default:
		return Basic, fmt.Errorf("unknown refinement %q", s)
	}
}

// Node is one vertex of the tree. Children and Counter reference other nodes
// by label, so two parents naming the same label share a single node.
type Node struct {
	Label    string
	Actor    Actor
	Kind     Kind
	Children []string
	Counter  string
}

// IsBasic reports whether the node is a basic action
func (n *Node) IsBasic() bool {
	return n.Kind == Basic
}

// IsCountered reports whether the node has a countering node
func (n *Node) IsCountered() bool {
	return n.Counter != ""
}

// clone returns a deep copy so callers cannot mutate the arena
func (n *Node) clone() *Node {
	c := *n
	c.Children = append([]string(nil), n.Children...)
	return &c
}

// sameShape reports whether two definitions of a label agree
func (n *Node) sameShape(o *Node) bool {
	if n.Actor != o.Actor || n.Kind != o.Kind || n.Counter != o.Counter {
		return false
	}
	if len(n.Children) != len(o.Children) {
		return false
	}
	for i := range n.Children {
		if n.Children[i] != o.Children[i] {
			return false
		}
	}
	return true
}

// NodeDef describes a node to add to a Builder
type NodeDef struct {
	Label    string
	Actor    Actor
	Kind     Kind
	Children []string
	Counter  string
}

// Stats summarises a tree
type Stats struct {
	Nodes           int
	AttackerActions int
	DefenderActions int
	CounteredNodes  int
	SharedNodes     int // nodes referenced by more than one parent
	Depth           int
}

// Package adtree models attack-defense trees as a DAG of labelled nodes.
//
// Nodes live in an arena keyed by label. Gates and counter edges reference
// their targets by label, so a sub-goal shared by several parents is stored
// once and visited once by every traversal in this package.
package adtree

// ADTree is an immutable attack-defense DAG with a distinguished root
type ADTree struct {
	root  string
	nodes map[string]*Node

	discovery []string       // reachable labels, depth-first pre-order
	postOrder []string       // reachable labels, dependencies first
	inDegree  map[string]int // parent references per reachable label
	depth     int
}

// Root returns the root node
func (t *ADTree) Root() *Node {
	return t.nodes[t.root].clone()
}

// RootLabel returns the label of the root node
func (t *ADTree) RootLabel() string {
	return t.root
}

// Node returns the node registered under label
func (t *ADTree) Node(label string) (*Node, bool) {
	n, ok := t.nodes[label]
	if !ok {
		return nil, false
	}
	return n.clone(), true
}

// Nodes returns the distinct nodes reachable from the root in discovery order
func (t *ADTree) Nodes() []*Node {
	out := make([]*Node, 0, len(t.discovery))
	for _, label := range t.discovery {
		out = append(out, t.nodes[label].clone())
	}
	return out
}

// NodeCount returns the number of distinct nodes reachable from the root
func (t *ADTree) NodeCount() int {
	return len(t.discovery)
}

// BasicActions returns the basic actions of the given actor reachable from
// the root, in discovery order and without duplicates
func (t *ADTree) BasicActions(actor Actor) []string {
	out := make([]string, 0)
	for _, label := range t.discovery {
		n := t.nodes[label]
		if n.Kind == Basic && n.Actor == actor {
			out = append(out, label)
		}
	}
	return out
}

// PostOrder returns every reachable label once, each after all of its
// children and its counter
func (t *ADTree) PostOrder() []string {
	return append([]string(nil), t.postOrder...)
}

// Stats computes summary figures for the tree
func (t *ADTree) Stats() Stats {
	stats := Stats{
		Nodes:           len(t.discovery),
		AttackerActions: len(t.BasicActions(Attacker)),
		DefenderActions: len(t.BasicActions(Defender)),
		Depth:           t.depth,
	}
	for _, label := range t.discovery {
		if t.nodes[label].Counter != "" {
			stats.CounteredNodes++
		}
		if t.inDegree[label] > 1 {
			stats.SharedNodes++
		}
	}
	return stats
}

// successors returns the children of a node followed by its counter
func successors(n *Node) []string {
	if n.Counter == "" {
		return n.Children
	}
	out := make([]string, 0, len(n.Children)+1)
	out = append(out, n.Children...)
	return append(out, n.Counter)
}

// index computes the traversal orders of a validated tree
func (t *ADTree) index() {
	visited := make(map[string]bool, len(t.nodes))
	t.inDegree = make(map[string]int, len(t.nodes))
	t.discovery = make([]string, 0, len(t.nodes))
	t.postOrder = make([]string, 0, len(t.nodes))
	height := make(map[string]int, len(t.nodes))

	var walk func(label string)
	walk = func(label string) {
		visited[label] = true
		t.discovery = append(t.discovery, label)

		n := t.nodes[label]
		h := 1
		for _, next := range successors(n) {
			t.inDegree[next]++
			if !visited[next] {
				walk(next)
			}
			if height[next]+1 > h {
				h = height[next] + 1
			}
		}
		height[label] = h
		t.postOrder = append(t.postOrder, label)
	}

	walk(t.root)
	t.depth = height[t.root]
}

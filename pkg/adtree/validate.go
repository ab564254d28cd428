package adtree

import "golang.org/x/exp/slices"

// validate checks the structural invariants of the arena. It runs before any
// traversal order is computed, so a failure leaves no partial index behind.
func (t *ADTree) validate() error {
	if t.root == "" {
		return malformed("", ErrRootUnset)
	}
	if _, ok := t.nodes[t.root]; !ok {
		return malformed(t.root, ErrUnknownLabel)
	}

	// Sorted labels keep the reported error stable across runs
	labels := make([]string, 0, len(t.nodes))
	for label := range t.nodes {
		labels = append(labels, label)
	}
	slices.Sort(labels)

	for _, label := range labels {
		if err := t.validateNode(t.nodes[label]); err != nil {
			return err
		}
	}

	if label, ok := t.findCycle(labels); ok {
		return malformed(label, ErrCycle)
	}
	return nil
}

func (t *ADTree) validateNode(n *Node) error {
	switch {
	case n.Kind == Basic && len(n.Children) > 0:
		return malformed(n.Label, ErrBasicWithChildren)
	case n.Kind.IsGate() && len(n.Children) == 0:
		return malformed(n.Label, ErrEmptyGate)
	}

	for _, child := range n.Children {
		if _, ok := t.nodes[child]; !ok {
			return malformed(child, ErrUnknownLabel)
		}
	}

	if n.Counter != "" {
		counter, ok := t.nodes[n.Counter]
		if !ok {
			return malformed(n.Counter, ErrUnknownLabel)
		}
		if counter.Actor == n.Actor {
			return malformed(n.Label, ErrSameActorCounter)
		}
	}
	return nil
}

// findCycle runs a depth-first search with three-colour marking. Reaching a
// GRAY node means a back edge, which closes a cycle through that node.
func (t *ADTree) findCycle(labels []string) (string, bool) {
	const (
		WHITE = 0 // Unvisited
		GRAY  = 1 // In the recursion stack
		BLACK = 2 // All descendants explored
	)

	color := make(map[string]int, len(t.nodes))

	var visit func(label string) (string, bool)
	visit = func(label string) (string, bool) {
		color[label] = GRAY
		for _, next := range successors(t.nodes[label]) {
			switch color[next] {
			case GRAY:
				return next, true
			case WHITE:
				if at, found := visit(next); found {
					return at, true
				}
			}
		}
		color[label] = BLACK
		return "", false
	}

	for _, label := range labels {
		if color[label] == WHITE {
			if at, found := visit(label); found {
				return at, true
			}
		}
	}
	return "", false
}

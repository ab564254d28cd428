// Package evaluator computes the value of an attack-defense tree bottom-up
// under an attribute domain.
//
// The fold walks the tree's post-order once. Each distinct node is evaluated
// exactly once and its value memoised by label, so a sub-goal shared by many
// parents costs one evaluation however wide the DAG is. The memo belongs to a
// single call: different assignments or domains never see each other's values.
package evaluator

import (
	"errors"
	"time"

	"github.com/dd0wney/cluso-adtree/pkg/adtree"
	"github.com/dd0wney/cluso-adtree/pkg/domain"
	"github.com/dd0wney/cluso-adtree/pkg/strategy"
)

// Result holds the root value and bookkeeping from one evaluation
type Result struct {
	Value          *strategy.Set
	NodesEvaluated int
	Duration       time.Duration
}

// Evaluate returns the value at the root of tree. proponent is the actor whose
// basic actions appear in strategies; the other actor's basic actions must
// already be resolved to ∅ or {∅} in the assignment.
func Evaluate(tree *adtree.ADTree, ba Assignment, dom *domain.AttributeDomain, proponent adtree.Actor) (*strategy.Set, error) {
	res, err := EvaluateDetailed(tree, ba, dom, proponent)
	if err != nil {
		return nil, err
	}
	return res.Value, nil
}

// EvaluateDetailed is like Evaluate but also reports how much work was done
func EvaluateDetailed(tree *adtree.ADTree, ba Assignment, dom *domain.AttributeDomain, proponent adtree.Actor) (*Result, error) {
	if tree == nil {
		return nil, &adtree.MalformedTreeError{Reason: adtree.ErrRootUnset}
	}
	if dom == nil {
		return nil, errors.New("evaluator: attribute domain is nil")
	}

	start := time.Now()
	order := tree.PostOrder()

	nodes := make([]*adtree.Node, len(order))
	for i, label := range order {
		n, ok := tree.Node(label)
		if !ok {
			return nil, &adtree.MalformedTreeError{Label: label, Reason: adtree.ErrUnknownLabel}
		}
		nodes[i] = n
	}

	// Every reachable leaf must be assigned before anything is combined
	for _, n := range nodes {
		if n.IsBasic() {
			if _, ok := ba.Get(n.Label); !ok {
				return nil, &IncompleteAssignmentError{Label: n.Label}
			}
		}
	}

	memo := make(map[string]*strategy.Set, len(nodes))
	for _, n := range nodes {
		memo[n.Label] = evaluateNode(n, memo, ba, dom, proponent)
	}

	return &Result{
		Value:          memo[tree.RootLabel()],
		NodesEvaluated: len(memo),
		Duration:       time.Since(start),
	}, nil
}

// evaluateNode combines already memoised children. Post-order guarantees
// every child and counter of n is present in memo.
func evaluateNode(n *adtree.Node, memo map[string]*strategy.Set, ba Assignment, dom *domain.AttributeDomain, proponent adtree.Actor) *strategy.Set {
	isProponent := n.Actor == proponent

	var value *strategy.Set
	if n.IsBasic() {
		v, _ := ba.Get(n.Label)
		value = v.Clone()
	} else {
		// SAND folds left to right in child order, the same as AND. Gates are
		// never empty, so the fold starts from the first child.
		op := dom.Operator(domain.GateSlot(n.Kind, isProponent))
		rest := make([]*strategy.Set, 0, len(n.Children)-1)
		for _, child := range n.Children[1:] {
			rest = append(rest, memo[child])
		}
		first := memo[n.Children[0]]
		if len(rest) == 0 {
			first = first.Clone()
		}
		value = strategy.Fold(op, first, rest...)
	}

	if n.IsCountered() {
		value = dom.Combine(domain.CounterSlot(isProponent), value, memo[n.Counter])
	}
	return value
}

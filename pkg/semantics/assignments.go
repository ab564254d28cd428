package semantics

import (
	"github.com/dd0wney/cluso-adtree/pkg/adtree"
	"github.com/dd0wney/cluso-adtree/pkg/evaluator"
	"github.com/dd0wney/cluso-adtree/pkg/strategy"
)

// measuring gives every basic action of actor its singleton strategy and
// resolves the other actor's actions with resolve
func measuring(tree *adtree.ADTree, actor adtree.Actor, resolve func(label string) *strategy.Set) evaluator.Assignment {
	ba := evaluator.NewAssignment()
	if tree == nil {
		return ba
	}
	for _, b := range tree.BasicActions(actor) {
		ba.Set(b, strategy.Single(b))
	}
	for _, b := range tree.BasicActions(actor.Opponent()) {
		ba.Set(b, resolve(b))
	}
	return ba
}

// witnessAssignment blocks every attacker action and tracks defender actions
func witnessAssignment(tree *adtree.ADTree) evaluator.Assignment {
	return measuring(tree, adtree.Defender, func(string) *strategy.Set {
		return strategy.Empty()
	})
}

// executed resolves an opponent action to ∅ when it belongs to the fixed
// strategy (it is carried out and cannot fail) and to {∅} otherwise
func executed(fixed strategy.Strategy) func(string) *strategy.Set {
	return func(label string) *strategy.Set {
		if fixed.Contains(label) {
			return strategy.Empty()
		}
		return strategy.Free()
	}
}

// attackAssignment measures attacker actions against a fixed defense
func attackAssignment(tree *adtree.ADTree, witness strategy.Strategy) evaluator.Assignment {
	return measuring(tree, adtree.Attacker, executed(witness))
}

// counterAssignment measures defender actions against a fixed attack
func counterAssignment(tree *adtree.ADTree, attack strategy.Strategy) evaluator.Assignment {
	return measuring(tree, adtree.Defender, executed(attack))
}

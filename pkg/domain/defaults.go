package domain

import (
	"github.com/dd0wney/cluso-adtree/pkg/adtree"
	"github.com/dd0wney/cluso-adtree/pkg/strategy"
)

var (
	oplus  Operator = strategy.Union
	otimes Operator = strategy.Product
)

// CountStrategies computes the proponent strategies that achieve a proponent
// node, or make an opponent node fail. Opponent leaves must be resolved to
// ∅ (executed) or {∅} (not executed) by the caller.
var CountStrategies = MustNew("count-strategies",
	oplus,  // proponent OR: any child succeeds
	otimes, // proponent AND: every child succeeds
	otimes, // opponent OR fails only if every child fails
	oplus,  // opponent AND fails if any child fails
	otimes, // proponent goal needs its counter to fail
	oplus,  // opponent goal fails on its own or when countered
)

// SufficientWitnesses collects opponent action sets that may be needed to
// counter the proponent. Only opponent conjunctions multiply.
var SufficientWitnesses = MustNew("sufficient-witnesses",
	oplus, oplus, oplus, otimes, oplus, oplus,
)

// OpponentStrategies enumerates every opponent strategy relevant to the tree
var OpponentStrategies = MustNew("opponent-strategies",
	oplus, oplus, oplus, otimes, oplus, oplus,
)

// GateSlot returns the slot used to fold the children of a gate of kind k
func GateSlot(k adtree.Kind, proponent bool) Slot {
	switch {
	case k == adtree.Or && proponent:
		return ProponentOr
	case k == adtree.Or:
		return OpponentOr
	case proponent:
		return ProponentAnd
	default:
		return OpponentAnd
	}
}

// CounterSlot returns the slot used to combine a node with its counter
func CounterSlot(proponent bool) Slot {
	if proponent {
		return ProponentCounter
	}
	return OpponentCounter
}

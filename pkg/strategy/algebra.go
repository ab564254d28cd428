package strategy

import "golang.org/x/exp/slices"

// Union is the disjunctive combination A ⊕ B = A ∪ B. Its identity is ∅.
func Union(a, b *Set) *Set {
	out := NewSet()
	for _, st := range a.strategiesView() {
		out.Add(st)
	}
	for _, st := range b.strategiesView() {
		out.Add(st)
	}
	return out
}

// Product is the sequential combination A ⊗ B = { a ∪ b : a ∈ A, b ∈ B }.
// Its identity is {∅} and ∅ is absorbing.
func Product(a, b *Set) *Set {
	out := NewSet()
	if a.Len() == 0 || b.Len() == 0 {
		return out
	}
	for _, x := range a.strategiesView() {
		for _, y := range b.strategiesView() {
			out.Add(x.Union(y))
		}
	}
	return out
}

// Fold combines sets left to right with op, starting from init: either the
// operator's identity or the first operand. Order is preserved, so sequential
// gates fold their children in child order.
func Fold(op func(a, b *Set) *Set, init *Set, sets ...*Set) *Set {
	acc := init
	for _, s := range sets {
		acc = op(acc, s)
	}
	return acc
}

// Minimal returns the strategies of s that are not a proper superset of any
// other strategy in s, preserving insertion order. The check is pairwise
// against the already accepted strategies, scanned from smallest to largest:
// a strategy can only be dominated by a strictly smaller one.
func Minimal(s *Set) *Set {
	candidates := s.strategiesView()
	order := make([]int, len(candidates))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(i, j int) int {
		return len(candidates[i]) - len(candidates[j])
	})

	keep := make([]bool, len(candidates))
	accepted := make([]Strategy, 0, len(candidates))
	for _, idx := range order {
		st := candidates[idx]
		dominated := false
		for _, smaller := range accepted {
			if smaller.IsProperSubsetOf(st) {
				dominated = true
				break
			}
		}
		if !dominated {
			keep[idx] = true
			accepted = append(accepted, st)
		}
	}

	out := NewSet()
	for i, st := range candidates {
		if keep[i] {
			out.Add(st)
		}
	}
	return out
}

// strategiesView exposes the backing slice without copying; callers must not
// modify it
func (s *Set) strategiesView() []Strategy {
	if s == nil {
		return nil
	}
	return s.strategies
}

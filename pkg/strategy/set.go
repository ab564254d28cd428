package strategy

import (
	"strings"

	"golang.org/x/exp/slices"
)

// Set is a collection of strategies with set semantics. Strategies keep their
// insertion order; adding a strategy already present is a no-op. A nil *Set
// reads as the empty collection.
type Set struct {
	strategies []Strategy
	keys       map[string]struct{}
}

// NewSet creates a set holding the given strategies
func NewSet(strategies ...Strategy) *Set {
	s := &Set{
		strategies: make([]Strategy, 0, len(strategies)),
		keys:       make(map[string]struct{}, len(strategies)),
	}
	for _, st := range strategies {
		s.Add(st)
	}
	return s
}

// Empty returns ∅: no way to succeed
func Empty() *Set {
	return NewSet()
}

// Free returns {∅}: satisfied at no cost
func Free() *Set {
	return NewSet(Strategy{})
}

// Single returns {{label}}: satisfied by using exactly that action
func Single(label string) *Set {
	return NewSet(Strategy{label})
}

// Add inserts a strategy unless a set-equal one is already present.
// It reports whether the set grew. st must be canonical, as built by NewStrategy.
func (s *Set) Add(st Strategy) bool {
	if s.keys == nil {
		s.keys = make(map[string]struct{})
	}
	key := st.Key()
	if _, ok := s.keys[key]; ok {
		return false
	}
	s.keys[key] = struct{}{}
	s.strategies = append(s.strategies, st.clone())
	return true
}

// Len returns the number of strategies
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.strategies)
}

// IsEmpty reports whether the set is ∅
func (s *Set) IsEmpty() bool {
	return s.Len() == 0
}

// Contains reports whether a set-equal strategy is present
func (s *Set) Contains(st Strategy) bool {
	if s == nil {
		return false
	}
	_, ok := s.keys[st.Key()]
	return ok
}

// Strategies returns the strategies in insertion order
func (s *Set) Strategies() []Strategy {
	if s == nil {
		return nil
	}
	out := make([]Strategy, len(s.strategies))
	for i, st := range s.strategies {
		out[i] = st.clone()
	}
	return out
}

// Sorted returns the strategies ordered by size, then lexicographically
func (s *Set) Sorted() []Strategy {
	out := s.Strategies()
	slices.SortFunc(out, compareStrategies)
	return out
}

// Equal reports whether both sets hold the same strategies, in any order
func (s *Set) Equal(o *Set) bool {
	if s.Len() != o.Len() {
		return false
	}
	if s == nil {
		return true
	}
	for key := range s.keys {
		if _, ok := o.keys[key]; !ok {
			return false
		}
	}
	return true
}

// Clone returns an independent copy
func (s *Set) Clone() *Set {
	if s == nil {
		return Empty()
	}
	return NewSet(s.strategies...)
}

// String renders the set as {{a}, {b, c}}
func (s *Set) String() string {
	parts := make([]string, 0, s.Len())
	for _, st := range s.Sorted() {
		parts = append(parts, st.String())
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func compareStrategies(a, b Strategy) int {
	if len(a) != len(b) {
		return len(a) - len(b)
	}
	return slices.Compare(a, b)
}

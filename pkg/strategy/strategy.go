// Package strategy implements the set algebra used to evaluate attack-defense
// trees: a Strategy is a set of basic-action labels and a Set is a
// duplicate-free collection of strategies.
package strategy

import (
	"strconv"
	"strings"

	"golang.org/x/exp/slices"
)

// Strategy is a sorted, duplicate-free set of basic-action labels
type Strategy []string

// NewStrategy creates a strategy from labels in any order
func NewStrategy(labels ...string) Strategy {
	s := append(Strategy(nil), labels...)
	slices.Sort(s)
	return slices.Compact(s)
}

// Len returns the number of actions in the strategy
func (s Strategy) Len() int {
	return len(s)
}

// Labels returns a copy of the labels
func (s Strategy) Labels() []string {
	return append([]string{}, s...)
}

// Contains reports whether label is part of the strategy
func (s Strategy) Contains(label string) bool {
	_, found := slices.BinarySearch(s, label)
	return found
}

// Equal reports set equality
func (s Strategy) Equal(o Strategy) bool {
	return slices.Equal(s, o)
}

// IsSubsetOf reports whether every action of s is in o
func (s Strategy) IsSubsetOf(o Strategy) bool {
	if len(s) > len(o) {
		return false
	}
	j := 0
	for _, label := range s {
		for j < len(o) && o[j] < label {
			j++
		}
		if j == len(o) || o[j] != label {
			return false
		}
		j++
	}
	return true
}

// IsProperSubsetOf reports whether s is a subset of o and smaller than it
func (s Strategy) IsProperSubsetOf(o Strategy) bool {
	return len(s) < len(o) && s.IsSubsetOf(o)
}

// Union merges two strategies
func (s Strategy) Union(o Strategy) Strategy {
	out := make(Strategy, 0, len(s)+len(o))
	i, j := 0, 0
	for i < len(s) && j < len(o) {
		switch {
		case s[i] < o[j]:
			out = append(out, s[i])
			i++
		case s[i] > o[j]:
			out = append(out, o[j])
			j++
		default:
			out = append(out, s[i])
			i++
			j++
		}
	}
	out = append(out, s[i:]...)
	return append(out, o[j:]...)
}

func (s Strategy) clone() Strategy {
	out := make(Strategy, len(s))
	copy(out, s)
	return out
}

// Key returns a canonical string identifying the strategy. Each label is
// length-prefixed, so distinct strategies never share a key whatever bytes
// their labels contain.
func (s Strategy) Key() string {
	var b strings.Builder
	for _, label := range s {
		b.WriteString(strconv.Itoa(len(label)))
		b.WriteByte(':')
		b.WriteString(label)
	}
	return b.String()
}

// String renders the strategy as {a, b}
func (s Strategy) String() string {
	return "{" + strings.Join(s, ", ") + "}"
}

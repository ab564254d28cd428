// Package domain defines attribute domains: the six combination operators a
// bottom-up evaluation applies, one per structural case.
package domain

import (
	"errors"
	"fmt"

	"github.com/dd0wney/cluso-adtree/pkg/strategy"
)

// Operator combines the values of two nodes
type Operator func(a, b *strategy.Set) *strategy.Set

// Slot selects the operator for a structural case. Nodes owned by the actor
// whose strategies are measured use the proponent slots; nodes of the other
// actor use the opponent slots. SAND gates use the AND slot of their owner.
type Slot int

const (
	ProponentOr Slot = iota
	ProponentAnd
	OpponentOr
	OpponentAnd
	ProponentCounter
	OpponentCounter

	slotCount
)

// String returns the string representation of a slot
func (s Slot) String() string {
	switch s {
	case ProponentOr:
		return "proponent-or"
	case ProponentAnd:
		return "proponent-and"
	case OpponentOr:
		return "opponent-or"
	case OpponentAnd:
		return "opponent-and"
	case ProponentCounter:
		return "proponent-counter"
	case OpponentCounter:
		return "opponent-counter"
	default:
		return "unknown"
	}
}

// ErrDomainArity is returned when a domain is not given exactly six operators
var ErrDomainArity = errors.New("attribute domain requires six operators")

// ArityError reports how many usable operators were supplied
type ArityError struct {
	Name string
	Got  int
}

func (e *ArityError) Error() string {
	return fmt.Sprintf("%s: domain %q got %d", ErrDomainArity, e.Name, e.Got)
}

func (e *ArityError) Is(target error) bool {
	return target == ErrDomainArity
}

// AttributeDomain is an immutable bundle of operators indexed by Slot
type AttributeDomain struct {
	name string
	ops  [slotCount]Operator
}

// New creates a domain from operators given in Slot order: proponent OR,
// proponent AND, opponent OR, opponent AND, proponent counter, opponent counter.
func New(name string, ops ...Operator) (*AttributeDomain, error) {
	usable := 0
	for _, op := range ops {
		if op != nil {
			usable++
		}
	}
	if len(ops) != int(slotCount) || usable != int(slotCount) {
		return nil, &ArityError{Name: name, Got: usable}
	}

	d := &AttributeDomain{name: name}
	copy(d.ops[:], ops)
	return d, nil
}

// MustNew is like New but panics on error
func MustNew(name string, ops ...Operator) *AttributeDomain {
	d, err := New(name, ops...)
	if err != nil {
		panic(err)
	}
	return d
}

// Name returns the domain name
func (d *AttributeDomain) Name() string {
	return d.name
}

// Operator returns the operator for a slot
func (d *AttributeDomain) Operator(slot Slot) Operator {
	return d.ops[slot]
}

// Combine applies the operator of a slot
func (d *AttributeDomain) Combine(slot Slot, a, b *strategy.Set) *strategy.Set {
	return d.ops[slot](a, b)
}

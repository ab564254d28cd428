package evaluator

import (
	"errors"
	"fmt"

	"github.com/dd0wney/cluso-adtree/pkg/strategy"
)

// ErrIncompleteAssignment is returned when a reachable basic action has no value
var ErrIncompleteAssignment = errors.New("incomplete basic assignment")

// IncompleteAssignmentError names the basic action missing from an assignment
type IncompleteAssignmentError struct {
	Label string
}

func (e *IncompleteAssignmentError) Error() string {
	return fmt.Sprintf("%s: no value for basic action %q", ErrIncompleteAssignment, e.Label)
}

func (e *IncompleteAssignmentError) Is(target error) bool {
	return target == ErrIncompleteAssignment
}

// Assignment maps basic-action labels to their initial values
type Assignment map[string]*strategy.Set

// NewAssignment creates an empty assignment
func NewAssignment() Assignment {
	return make(Assignment)
}

// Set assigns a value to a basic action and returns the assignment for chaining
func (a Assignment) Set(label string, value *strategy.Set) Assignment {
	a[label] = value
	return a
}

// Get returns the value of a basic action
func (a Assignment) Get(label string) (*strategy.Set, bool) {
	v, ok := a[label]
	return v, ok
}

// Clone returns a copy that shares no values with a
func (a Assignment) Clone() Assignment {
	out := make(Assignment, len(a))
	for label, v := range a {
		out[label] = v.Clone()
	}
	return out
}

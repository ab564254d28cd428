package adtree

import (
	"errors"
	"fmt"
)

// ErrMalformedTree is returned when a tree violates its structural invariants
var ErrMalformedTree = errors.New("malformed tree")

// Structural reasons reported inside MalformedTreeError
var (
	ErrRootUnset         = errors.New("root is unset")
	ErrUnknownLabel      = errors.New("referenced label is not registered")
	ErrSameActorCounter  = errors.New("counter edge links nodes of the same actor")
	ErrBasicWithChildren = errors.New("basic node has children")
	ErrEmptyGate         = errors.New("gate has no children")
	ErrConflictingLabel  = errors.New("label defined twice with different shape")
	ErrCycle             = errors.New("tree contains a cycle")
	ErrEmptyLabel        = errors.New("label cannot be empty")
	ErrMultipleCounters  = errors.New("node has more than one countering node")
	ErrInvalidLabel      = errors.New("label is not valid")
)

// MalformedTreeError reports the label at which validation failed
type MalformedTreeError struct {
	Label  string
	Reason error
}

func (e *MalformedTreeError) Error() string {
	if e.Label == "" {
		return fmt.Sprintf("%s: %v", ErrMalformedTree, e.Reason)
	}
	return fmt.Sprintf("%s: node %q: %v", ErrMalformedTree, e.Label, e.Reason)
}

// Is matches ErrMalformedTree; the reason is reached through Unwrap
func (e *MalformedTreeError) Is(target error) bool {
	return target == ErrMalformedTree
}

func (e *MalformedTreeError) Unwrap() error {
	return e.Reason
}

func malformed(label string, reason error) error {
	return &MalformedTreeError{Label: label, Reason: reason}
}

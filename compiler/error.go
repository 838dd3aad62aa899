package compiler

import (
	"errors"
	"fmt"
)

// ErrCycle is the sentinel wrapped by CycleError.
var ErrCycle = errors.New("compiler: cycle in pass dependency graph")

// Edge is one dependency edge in the pass DAG, from the index of the
// producing/prior pass to the index of the dependent pass.
type Edge struct {
	From, To int
}

// CycleError reports a cycle detected during DAG construction, along
// with the edges that form it.
type CycleError struct {
	Edges []Edge
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("%v: %d edges in cycle: %v", ErrCycle, len(e.Edges), e.Edges)
}

func (e *CycleError) Unwrap() error { return ErrCycle }

// ErrConflict is the sentinel wrapped by ConflictError.
var ErrConflict = errors.New("compiler: conflicting transitions in one barrier batch")

// ConflictError reports the first pair of transitions within a single
// barrier batch that target the same subresource with incompatible
// new states.
type ConflictError struct {
	BatchIndex int
	FirstNew   string
	SecondNew  string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%v: batch %d: %s vs %s", ErrConflict, e.BatchIndex, e.FirstNew, e.SecondNew)
}

func (e *ConflictError) Unwrap() error { return ErrConflict }

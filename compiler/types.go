// Package compiler turns a declared list of passes into a scheduled,
// barriered, cross-queue-synchronized execution Plan: dependency DAG
// construction, priority topological scheduling, per-queue batch
// packing, minimal barrier emission, and timeline wait/signal
// assignment.
package compiler

import (
	"github.com/gogpu/rendergraph/pass"
	"github.com/gogpu/rendergraph/rangespec"
	"github.com/gogpu/rendergraph/registry"
	"github.com/gogpu/rendergraph/track"
)

// Transition is one subresource barrier the executor must issue.
type Transition struct {
	Resource *registry.Resource
	Range    rangespec.SubresourceRange
	Prev     track.State
	New      track.State
	Discard  bool
}

// WaitPhase names when, relative to a batch's barriers, a cross-queue
// wait must be satisfied.
type WaitPhase uint8

const (
	// BeforeTransitions: the wait must be satisfied before this
	// batch's own BeforePasses barriers are issued on the dst queue.
	BeforeTransitions WaitPhase = iota
	// BeforeExecution: the wait must be satisfied before passes in
	// this batch execute, but after its own barriers.
	BeforeExecution
)

// SignalPhase names when, relative to a batch's barriers, a timeline
// signal is raised.
type SignalPhase uint8

const (
	// AfterTransitions: signaled once this batch's BeforePasses
	// barriers have been issued (same-batch producer dependency).
	AfterTransitions SignalPhase = iota
	// AfterCompletion: signaled once every pass in this batch has
	// finished executing.
	AfterCompletion
)

// Wait is one cross-queue timeline wait a batch must satisfy before
// proceeding past Phase.
type Wait struct {
	SrcQueue pass.QueueKind
	DstQueue pass.QueueKind
	Phase    WaitPhase
	Value    uint64
}

// Signal is one timeline signal a batch raises after Phase.
type Signal struct {
	Queue pass.QueueKind
	Phase SignalPhase
	Value uint64
}

// Batch is a maximal group of passes that can run concurrently across
// queues, plus the barriers and cross-queue synchronization needed
// around it.
type Batch struct {
	Index int

	PassesByQueue map[pass.QueueKind][]*pass.Pass

	TransitionsBeforePasses map[pass.QueueKind][]Transition
	TransitionsAfterPasses  map[pass.QueueKind][]Transition

	WaitsBeforeTransitions map[pass.QueueKind][]Wait
	WaitsBeforeExecution   map[pass.QueueKind][]Wait

	SignalAfterTransitions map[pass.QueueKind]*Signal
	SignalAfterCompletion  map[pass.QueueKind]*Signal
}

func newBatch(index int) *Batch {
	return &Batch{
		Index:                   index,
		PassesByQueue:           make(map[pass.QueueKind][]*pass.Pass),
		TransitionsBeforePasses: make(map[pass.QueueKind][]Transition),
		TransitionsAfterPasses:  make(map[pass.QueueKind][]Transition),
		WaitsBeforeTransitions:  make(map[pass.QueueKind][]Wait),
		WaitsBeforeExecution:    make(map[pass.QueueKind][]Wait),
		SignalAfterTransitions:  make(map[pass.QueueKind]*Signal),
		SignalAfterCompletion:   make(map[pass.QueueKind]*Signal),
	}
}

// Plan is the full compiled output: the flat topological schedule and
// the batches it was packed into.
type Plan struct {
	Schedule []*pass.Pass
	Batches  []*Batch
}

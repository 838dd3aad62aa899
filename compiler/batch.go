package compiler

import (
	"github.com/gogpu/rendergraph/pass"
	"github.com/gogpu/rendergraph/rangespec"
	"github.com/gogpu/rendergraph/registry"
	"github.com/gogpu/rendergraph/track"
)

// batchTouch records one subresource range a pass already accepted
// into the current batch has set to newState, for the conflict check
// against later passes competing for the same batch.
type batchTouch struct {
	rng   rangespec.SubresourceRange
	state track.State
}

// packBatches groups the scheduled passes into the fewest possible
// batches such that no two passes in the same batch disagree about
// the state of an overlapping subresource range, then emits the
// barrier transitions each batch requires using one persistent
// per-resource tracker spanning the whole compile.
func packBatches(schedule []*pass.Pass) ([]*Batch, map[*pass.Pass]int) {
	trackers := make(map[registry.GlobalID]*track.Tracker)
	trackerFor := func(res *registry.Resource) *track.Tracker {
		tr, ok := trackers[res.ID()]
		if !ok {
			tr = track.New(res.NumMips(), res.NumSlices())
			trackers[res.ID()] = tr
		}
		return tr
	}

	var batches []*Batch
	var current *Batch
	// batchState, internallyTransitioned and uavUsedByQueue are reset
	// every time a new batch is opened.
	var batchState map[registry.GlobalID][]batchTouch
	var internallyTransitioned map[registry.GlobalID][]rangespec.SubresourceRange
	var uavUsedByQueue map[registry.GlobalID]pass.QueueKind

	openBatch := func() {
		current = newBatch(len(batches))
		batches = append(batches, current)
		batchState = make(map[registry.GlobalID][]batchTouch)
		internallyTransitioned = make(map[registry.GlobalID][]rangespec.SubresourceRange)
		uavUsedByQueue = make(map[registry.GlobalID]pass.QueueKind)
	}
	openBatch()

	overlapsAny := func(rngs []rangespec.SubresourceRange, rng rangespec.SubresourceRange) bool {
		for _, r := range rngs {
			if rangespec.Overlaps(r, rng) {
				return true
			}
		}
		return false
	}

	conflicts := func(p *pass.Pass) bool {
		for _, req := range p.StaticResourceRequirements {
			id := req.Resource.ID()
			for _, bt := range batchState[id] {
				if !rangespec.Overlaps(bt.rng, req.Range) {
					continue
				}
				if !bt.state.Equal(req.State) {
					return true
				}
			}
			if overlapsAny(internallyTransitioned[id], req.Range) {
				return true
			}
			if req.State.Access&track.AccessUnorderedAccess != 0 {
				if q, used := uavUsedByQueue[id]; used && q != p.Queue {
					return true
				}
			}
		}
		for _, it := range p.InternalTransitions {
			id := it.Resource.ID()
			if overlapsAny(internallyTransitioned[id], it.Range) {
				return true
			}
			for _, bt := range batchState[id] {
				if rangespec.Overlaps(bt.rng, it.Range) {
					return true
				}
			}
		}
		return false
	}

	accept := func(p *pass.Pass) {
		current.PassesByQueue[p.Queue] = append(current.PassesByQueue[p.Queue], p)

		for _, req := range p.StaticResourceRequirements {
			id := req.Resource.ID()
			batchState[id] = append(batchState[id], batchTouch{rng: req.Range, state: req.State})
			if req.State.Access&track.AccessUnorderedAccess != 0 {
				uavUsedByQueue[id] = p.Queue
			}

			tr := trackerFor(req.Resource)
			for _, tns := range tr.Apply(req.Range, req.State) {
				current.TransitionsBeforePasses[p.Queue] = append(current.TransitionsBeforePasses[p.Queue], Transition{
					Resource: req.Resource,
					Range:    tns.Range,
					Prev:     tns.Prev,
					New:      tns.New,
					Discard:  dischargeable(tns, req.Resource, tns.Range),
				})
			}
		}

		for _, it := range p.InternalTransitions {
			id := it.Resource.ID()
			internallyTransitioned[id] = append(internallyTransitioned[id], it.Range)

			tr := trackerFor(it.Resource)
			for _, tns := range tr.Apply(it.Range, it.State) {
				current.TransitionsAfterPasses[p.Queue] = append(current.TransitionsAfterPasses[p.Queue], Transition{
					Resource: it.Resource,
					Range:    tns.Range,
					Prev:     tns.Prev,
					New:      tns.New,
					Discard:  dischargeable(tns, it.Resource, tns.Range),
				})
			}
		}
	}

	passToBatch := make(map[*pass.Pass]int, len(schedule))
	for _, p := range schedule {
		if conflicts(p) {
			openBatch()
		}
		accept(p)
		passToBatch[p] = current.Index
	}

	return batches, passToBatch
}

// dischargeable reports whether a transition out of Common into a
// full-overwrite access on the resource's entire range may discard
// the prior contents instead of preserving them across the barrier.
func dischargeable(t track.Transition, res *registry.Resource, rng rangespec.SubresourceRange) bool {
	if t.Prev.Layout != track.LayoutCommon {
		return false
	}
	const fullOverwrite = track.AccessRenderTarget | track.AccessDepthWrite | track.AccessUnorderedAccess | track.AccessCopyDest
	if t.New.Access&fullOverwrite == 0 {
		return false
	}
	whole := rangespec.SubresourceRange{MipCount: res.NumMips(), SliceCount: res.NumSlices()}
	return rng == whole
}

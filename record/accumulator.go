package record

import (
	"github.com/gogpu/rendergraph/pass"
	"github.com/gogpu/rendergraph/rangespec"
	"github.com/gogpu/rendergraph/registry"
	"github.com/gogpu/rendergraph/track"
)

// Accumulator is the per-resource access tracker a Writer maintains
// alongside the opcode stream: for every touched (mip, slice) it
// records the strongest access the recorded ops imply, independent of
// declaration order.
type Accumulator struct {
	byID map[registry.GlobalID]*accEntry
}

type accEntry struct {
	res     *registry.Resource
	tracker *track.Tracker
	order   int
}

func (a *Accumulator) entryFor(res *registry.Resource) *accEntry {
	if a.byID == nil {
		a.byID = make(map[registry.GlobalID]*accEntry)
	}
	e, ok := a.byID[res.ID()]
	if !ok {
		e = &accEntry{res: res, tracker: track.New(res.NumMips(), res.NumSlices()), order: len(a.byID)}
		a.byID[res.ID()] = e
	}
	return e
}

// Requirements implements pass.Recorder: it converts the accumulated
// per-resource tracker state into a ResourceRequirement list, merged
// into the owning pass's static requirements at Finalize time.
func (a *Accumulator) Requirements() []pass.ResourceRequirement {
	entries := make([]*accEntry, 0, len(a.byID))
	for _, e := range a.byID {
		entries = append(entries, e)
	}
	// Deterministic order: by first-touched order, not map iteration.
	for i := 1; i < len(entries); i++ {
		for j := i; j > 0 && entries[j].order < entries[j-1].order; j-- {
			entries[j], entries[j-1] = entries[j-1], entries[j]
		}
	}

	var out []pass.ResourceRequirement
	for _, e := range entries {
		for _, seg := range e.tracker.Segments() {
			if seg.State.Equal(track.Common) {
				continue
			}
			out = append(out, pass.ResourceRequirement{Resource: e.res, Range: seg.Range, State: seg.State})
		}
	}
	return out
}

func (w *Writer) accumulateTexture(pin PinIndex, mip, slice uint32, state track.State) {
	res, ok := w.Pinned(pin).(*registry.Resource)
	if !ok || res == nil {
		return
	}
	if !res.HasLayout() {
		state.Layout = track.LayoutCommon
	}
	rng := rangespec.SubresourceRange{FirstMip: mip, MipCount: 1, FirstSlice: slice, SliceCount: 1}
	w.entryFor(res).tracker.Apply(rng, state)
}

func (w *Writer) accumulateBuffer(pin PinIndex, state track.State) {
	res, ok := w.Pinned(pin).(*registry.Resource)
	if !ok || res == nil {
		return
	}
	state.Layout = track.LayoutCommon
	w.entryFor(res).tracker.Apply(rangespec.SubresourceRange{MipCount: 1, SliceCount: 1}, state)
}

func (w *Writer) accumulateWhole(pin PinIndex, state track.State) {
	res, ok := w.Pinned(pin).(*registry.Resource)
	if !ok || res == nil {
		return
	}
	if !res.HasLayout() {
		state.Layout = track.LayoutCommon
	}
	whole := rangespec.Resolve(rangespec.Whole(), res.NumMips(), res.NumSlices())
	w.entryFor(res).tracker.Apply(whole, state)
}

func readAccess() track.State {
	return track.State{Access: track.AccessCopySource, Layout: track.LayoutCopySource, Sync: track.SyncCopy}
}

func writeAccess() track.State {
	return track.State{Access: track.AccessCopyDest, Layout: track.LayoutCopyDest, Sync: track.SyncCopy}
}

func rtAccess() track.State {
	return track.State{Access: track.AccessRenderTarget, Layout: track.LayoutRenderTarget, Sync: track.SyncDraw}
}

func dsAccess() track.State {
	return track.State{Access: track.AccessDepthWrite, Layout: track.LayoutDepthWrite, Sync: track.SyncDraw}
}

func uavAccess() track.State {
	return track.State{Access: track.AccessUnorderedAccess, Layout: track.LayoutUnorderedAccess, Sync: track.SyncCompute}
}

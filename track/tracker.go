package track

import (
	"sort"

	"github.com/gogpu/rendergraph/rangespec"
)

// Segment is one piece of a resource's subresource partition: a
// rectangle of (mip, slice) subresources all currently in the same
// State.
type Segment struct {
	Range rangespec.SubresourceRange
	State State
}

// Transition is the minimal state change Apply must emit for a
// sub-range of subresources moving from one state to another. The
// owning resource identity is attached by the caller (the compiler
// keeps one Tracker per resource and knows which resource it is
// calling Apply on).
type Transition struct {
	Range   rangespec.SubresourceRange
	Prev    State
	New     State
	Discard bool
}

// Tracker stores the segments of a single resource. The invariant
// maintained across every call to Apply is that Segments partitions
// the resource's full (mips x slices) rectangle: every subresource
// belongs to exactly one segment.
type Tracker struct {
	totalMips, totalSlices uint32
	segments               []Segment
}

// New creates a tracker for a resource with the given extent. The
// whole resource starts as one segment in Common state.
func New(totalMips, totalSlices uint32) *Tracker {
	return &Tracker{
		totalMips:   totalMips,
		totalSlices: totalSlices,
		segments: []Segment{{
			Range: rangespec.SubresourceRange{MipCount: totalMips, SliceCount: totalSlices},
			State: Common,
		}},
	}
}

// Segments returns a snapshot of the current partition, sorted by
// (FirstMip, FirstSlice) for deterministic inspection.
func (t *Tracker) Segments() []Segment {
	out := make([]Segment, len(t.segments))
	copy(out, t.segments)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Range.FirstMip != out[j].Range.FirstMip {
			return out[i].Range.FirstMip < out[j].Range.FirstMip
		}
		return out[i].Range.FirstSlice < out[j].Range.FirstSlice
	})
	return out
}

// WouldModify is a pure predicate: does applying newState to want
// require touching any currently different state? It leaves the
// tracker unchanged.
func (t *Tracker) WouldModify(want rangespec.SubresourceRange, newState State) bool {
	for _, seg := range t.segments {
		overlap := rangespec.Intersect(seg.Range, want)
		if overlap.Empty() {
			continue
		}
		if !seg.State.Equal(newState) {
			return true
		}
	}
	return false
}

// Apply transitions every subresource in want to newState, splitting
// and merging segments as needed, and returns the minimal set of
// transitions required. A second identical Apply call returns no
// transitions (§8 property 6).
func (t *Tracker) Apply(want rangespec.SubresourceRange, newState State) []Transition {
	if want.Empty() {
		return nil
	}

	var transitions []Transition
	next := make([]Segment, 0, len(t.segments)+4)

	for _, seg := range t.segments {
		overlap := rangespec.Intersect(seg.Range, want)
		if overlap.Empty() {
			next = append(next, seg)
			continue
		}

		// Keep the outside-of-want remainder(s) of this segment untouched.
		for _, rem := range rangespec.Subtract(seg.Range, overlap) {
			next = append(next, Segment{Range: rem, State: seg.State})
		}

		if seg.State.Equal(newState) {
			// No transition needed, but the overlap still needs to be
			// carried forward with the (possibly updated) sync bits of
			// newState; access/layout are unchanged.
			next = append(next, Segment{Range: overlap, State: newState})
			continue
		}

		transitions = append(transitions, Transition{
			Range: overlap,
			Prev:  seg.State,
			New:   newState,
		})
		next = append(next, Segment{Range: overlap, State: newState})
	}

	t.segments = coalesce(next)
	return transitions
}

// coalesce merges adjacent segments that share identical state along
// one axis, preferring mip-major coalescing as a tie-break (merge
// along the slice axis first — i.e. grow a segment's slice span
// before its mip span — which in practice means scanning mip-major
// groups and joining contiguous slice bands, so distinct mips never
// get silently joined across a slice discontinuity).
func coalesce(segs []Segment) []Segment {
	if len(segs) <= 1 {
		return segs
	}

	sort.Slice(segs, func(i, j int) bool {
		if segs[i].Range.FirstMip != segs[j].Range.FirstMip {
			return segs[i].Range.FirstMip < segs[j].Range.FirstMip
		}
		return segs[i].Range.FirstSlice < segs[j].Range.FirstSlice
	})

	merged := make([]Segment, 0, len(segs))
	for _, s := range segs {
		if n := len(merged); n > 0 {
			last := &merged[n-1]
			if last.State.Equal(s.State) && last.State == s.State &&
				last.Range.FirstMip == s.Range.FirstMip && last.Range.MipCount == s.Range.MipCount &&
				last.Range.SliceEnd() == s.Range.FirstSlice {
				last.Range.SliceCount += s.Range.SliceCount
				continue
			}
		}
		merged = append(merged, s)
	}

	// Second pass: merge mip-adjacent groups that now span identical
	// slice ranges and state (growing a segment's mip span).
	sort.Slice(merged, func(i, j int) bool {
		if merged[i].Range.FirstSlice != merged[j].Range.FirstSlice {
			return merged[i].Range.FirstSlice < merged[j].Range.FirstSlice
		}
		return merged[i].Range.FirstMip < merged[j].Range.FirstMip
	})
	final := make([]Segment, 0, len(merged))
	for _, s := range merged {
		if n := len(final); n > 0 {
			last := &final[n-1]
			if last.State == s.State &&
				last.Range.FirstSlice == s.Range.FirstSlice && last.Range.SliceCount == s.Range.SliceCount &&
				last.Range.MipEnd() == s.Range.FirstMip {
				last.Range.MipCount += s.Range.MipCount
				continue
			}
		}
		final = append(final, s)
	}
	return final
}

// Package rangespec implements the range algebra used to address
// subresources of a resource: half-open and closed mip/slice bounds,
// resolution against a resource's actual (mips, slices) extent, and
// the intersection/subtraction/enumeration operations the symbolic
// state tracker and pass builder need.
package rangespec

import "fmt"

// BoundKind selects how a single axis bound is interpreted.
type BoundKind uint8

const (
	// All selects the full extent of the axis: [0, total).
	All BoundKind = iota
	// Exact selects a single index: [n, n+1).
	Exact
	// From selects everything from n (inclusive) to the end: [n, total).
	From
	// UpTo selects everything up to and including n: [0, n+1).
	UpTo
)

// Bound is one axis bound of a RangeSpec.
type Bound struct {
	Kind  BoundKind
	Value uint32 // meaningful for Exact, From, UpTo
}

// AllBound returns a Bound selecting the whole axis.
func AllBound() Bound { return Bound{Kind: All} }

// ExactBound returns a Bound selecting a single index.
func ExactBound(n uint32) Bound { return Bound{Kind: Exact, Value: n} }

// FromBound returns a Bound selecting [n, total).
func FromBound(n uint32) Bound { return Bound{Kind: From, Value: n} }

// UpToBound returns a Bound selecting [0, n].
func UpToBound(n uint32) Bound { return Bound{Kind: UpTo, Value: n} }

// resolve reduces one axis bound against a total extent to a
// half-open [first, first+count) interval. The interval is clamped
// to [0, total); callers must check for an empty result themselves.
func (b Bound) resolve(total uint32) (first, count uint32) {
	switch b.Kind {
	case Exact:
		if b.Value >= total {
			return 0, 0
		}
		return b.Value, 1
	case From:
		if b.Value >= total {
			return 0, 0
		}
		return b.Value, total - b.Value
	case UpTo:
		end := b.Value + 1
		if end > total {
			end = total
		}
		return 0, end
	default: // All
		return 0, total
	}
}

// RangeSpec names a rectangle of (mip, slice) subresources in terms
// of per-axis bounds. The zero value denotes the whole resource on
// both axes.
type RangeSpec struct {
	MipLower, MipUpper     Bound
	SliceLower, SliceUpper Bound
}

// Whole returns the RangeSpec denoting every subresource of a resource.
func Whole() RangeSpec {
	return RangeSpec{}
}

// Mips restricts the spec to a mip sub-range, leaving slices untouched.
func (s RangeSpec) Mips(lower, upper Bound) RangeSpec {
	s.MipLower, s.MipUpper = lower, upper
	return s
}

// Slices restricts the spec to a slice sub-range, leaving mips untouched.
func (s RangeSpec) Slices(lower, upper Bound) RangeSpec {
	s.SliceLower, s.SliceUpper = lower, upper
	return s
}

// SubresourceRange is a resolved, half-open rectangle of subresources:
// mips [FirstMip, FirstMip+MipCount) by slices [FirstSlice, FirstSlice+SliceCount).
type SubresourceRange struct {
	FirstMip, MipCount     uint32
	FirstSlice, SliceCount uint32
}

// Empty reports whether the range contains no subresources.
func (r SubresourceRange) Empty() bool {
	return r.MipCount == 0 || r.SliceCount == 0
}

// MipEnd returns the exclusive upper mip bound.
func (r SubresourceRange) MipEnd() uint32 { return r.FirstMip + r.MipCount }

// SliceEnd returns the exclusive upper slice bound.
func (r SubresourceRange) SliceEnd() uint32 { return r.FirstSlice + r.SliceCount }

// Contains reports whether the (mip, slice) subresource lies in the range.
func (r SubresourceRange) Contains(mip, slice uint32) bool {
	return mip >= r.FirstMip && mip < r.MipEnd() &&
		slice >= r.FirstSlice && slice < r.SliceEnd()
}

func (r SubresourceRange) String() string {
	return fmt.Sprintf("mips[%d,%d) slices[%d,%d)", r.FirstMip, r.MipEnd(), r.FirstSlice, r.SliceEnd())
}

// Resolve reduces a RangeSpec against a resource's (totalMips,
// totalSlices) extent into a concrete SubresourceRange. When the
// lower/upper bound pair on an axis describes an inverted or
// out-of-bounds interval, the resolved range is empty and callers
// must skip it (see Resource identifier access control and §8
// boundary property 10: empty-range declarations are dropped
// without error).
func Resolve(spec RangeSpec, totalMips, totalSlices uint32) SubresourceRange {
	mipFirst, mipCount := resolveAxis(spec.MipLower, spec.MipUpper, totalMips)
	sliceFirst, sliceCount := resolveAxis(spec.SliceLower, spec.SliceUpper, totalSlices)
	return SubresourceRange{
		FirstMip:   mipFirst,
		MipCount:   mipCount,
		FirstSlice: sliceFirst,
		SliceCount: sliceCount,
	}
}

// resolveAxis combines a lower and upper bound for one axis. Only one
// of the two bounds is normally non-default; when both carry
// information the intersection of their resolved intervals is used,
// matching the builder usage of RangeSpec.Mips/Slices as independent
// axis restrictions.
func resolveAxis(lower, upper Bound, total uint32) (first, count uint32) {
	lf, lc := lower.resolve(total)
	uf, uc := upper.resolve(total)

	// A default-constructed Bound (zero value) is All{}; when both
	// bounds are All the axis is untouched.
	if lower == (Bound{}) && upper == (Bound{}) {
		return 0, total
	}
	if lower == (Bound{}) {
		return uf, uc
	}
	if upper == (Bound{}) {
		return lf, lc
	}

	// Both bounds set: intersect the two resolved intervals.
	start := lf
	if uf > start {
		start = uf
	}
	end := lf + lc
	uEnd := uf + uc
	if uEnd < end {
		end = uEnd
	}
	if end <= start {
		return 0, 0
	}
	return start, end - start
}

// Intersect returns the overlap of two subresource ranges. The
// result is empty if the ranges do not overlap.
func Intersect(a, b SubresourceRange) SubresourceRange {
	mipStart := max(a.FirstMip, b.FirstMip)
	mipEnd := min(a.MipEnd(), b.MipEnd())
	sliceStart := max(a.FirstSlice, b.FirstSlice)
	sliceEnd := min(a.SliceEnd(), b.SliceEnd())

	if mipEnd <= mipStart || sliceEnd <= sliceStart {
		return SubresourceRange{}
	}
	return SubresourceRange{
		FirstMip:   mipStart,
		MipCount:   mipEnd - mipStart,
		FirstSlice: sliceStart,
		SliceCount: sliceEnd - sliceStart,
	}
}

// Overlaps reports whether two ranges share at least one subresource.
func Overlaps(a, b SubresourceRange) bool {
	return !Intersect(a, b).Empty()
}

// Subtract returns the pieces of a that are not covered by b, as a
// set of axis-aligned rectangles. At most four rectangles are
// produced (top, bottom, left, right bands around the intersection).
func Subtract(a, b SubresourceRange) []SubresourceRange {
	overlap := Intersect(a, b)
	if overlap.Empty() {
		return []SubresourceRange{a}
	}

	var out []SubresourceRange

	// Mip band above the overlap (full slice extent of a).
	if a.FirstMip < overlap.FirstMip {
		out = append(out, SubresourceRange{
			FirstMip: a.FirstMip, MipCount: overlap.FirstMip - a.FirstMip,
			FirstSlice: a.FirstSlice, SliceCount: a.SliceCount,
		})
	}
	// Mip band below the overlap.
	if overlap.MipEnd() < a.MipEnd() {
		out = append(out, SubresourceRange{
			FirstMip: overlap.MipEnd(), MipCount: a.MipEnd() - overlap.MipEnd(),
			FirstSlice: a.FirstSlice, SliceCount: a.SliceCount,
		})
	}
	// Slice band to the left of the overlap, restricted to the
	// overlap's mip range so it isn't emitted twice.
	if a.FirstSlice < overlap.FirstSlice {
		out = append(out, SubresourceRange{
			FirstMip: overlap.FirstMip, MipCount: overlap.MipCount,
			FirstSlice: a.FirstSlice, SliceCount: overlap.FirstSlice - a.FirstSlice,
		})
	}
	// Slice band to the right of the overlap.
	if overlap.SliceEnd() < a.SliceEnd() {
		out = append(out, SubresourceRange{
			FirstMip: overlap.FirstMip, MipCount: overlap.MipCount,
			FirstSlice: overlap.SliceEnd(), SliceCount: a.SliceEnd() - overlap.SliceEnd(),
		})
	}
	return out
}

// Enumerate calls fn once for every (mip, slice) pair in r, in
// mip-major order. fn returning false stops enumeration early.
func Enumerate(r SubresourceRange, fn func(mip, slice uint32) bool) {
	for mip := r.FirstMip; mip < r.MipEnd(); mip++ {
		for slice := r.FirstSlice; slice < r.SliceEnd(); slice++ {
			if !fn(mip, slice) {
				return
			}
		}
	}
}

func max(a, b uint32) uint32 {
	if a > b {
		return a
	}
	return b
}

func min(a, b uint32) uint32 {
	if a < b {
		return a
	}
	return b
}

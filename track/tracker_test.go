package track

import (
	"testing"

	"github.com/gogpu/rendergraph/rangespec"
)

func whole(mips, slices uint32) rangespec.SubresourceRange {
	return rangespec.SubresourceRange{MipCount: mips, SliceCount: slices}
}

func TestNew_StartsAsOneCommonSegment(t *testing.T) {
	tr := New(4, 2)
	segs := tr.Segments()
	if len(segs) != 1 {
		t.Fatalf("got %d segments, want 1", len(segs))
	}
	if !segs[0].State.Equal(Common) {
		t.Errorf("initial state = %v, want Common", segs[0].State)
	}
	if segs[0].Range != whole(4, 2) {
		t.Errorf("initial range = %v, want whole resource", segs[0].Range)
	}
}

func TestApply_FirstTransitionFromCommon(t *testing.T) {
	tr := New(1, 1)
	want := State{Access: AccessUnorderedAccess, Layout: LayoutUnorderedAccess, Sync: SyncCompute}
	transitions := tr.Apply(whole(1, 1), want)

	if len(transitions) != 1 {
		t.Fatalf("got %d transitions, want 1", len(transitions))
	}
	if !transitions[0].Prev.Equal(Common) || !transitions[0].New.Equal(want) {
		t.Errorf("transition = %+v, want Common -> %v", transitions[0], want)
	}
}

func TestApply_IdempotentSecondCallIsNoOp(t *testing.T) {
	tr := New(1, 1)
	s := State{Access: AccessShaderRead, Layout: LayoutShaderResource, Sync: SyncDraw}

	first := tr.Apply(whole(1, 1), s)
	second := tr.Apply(whole(1, 1), s)

	if len(first) != 1 {
		t.Fatalf("first Apply emitted %d transitions, want 1", len(first))
	}
	if len(second) != 0 {
		t.Fatalf("second identical Apply emitted %d transitions, want 0", len(second))
	}
}

func TestApply_SplitsOnPartialRange(t *testing.T) {
	tr := New(4, 1)
	rtState := State{Access: AccessRenderTarget, Layout: LayoutRenderTarget, Sync: SyncDraw}

	// Only mip 0 goes to RenderTarget; mips 1-3 remain Common.
	mip0 := rangespec.SubresourceRange{FirstMip: 0, MipCount: 1, FirstSlice: 0, SliceCount: 1}
	transitions := tr.Apply(mip0, rtState)
	if len(transitions) != 1 {
		t.Fatalf("got %d transitions, want 1", len(transitions))
	}

	segs := tr.Segments()
	total := 0
	for _, s := range segs {
		total += int(s.Range.MipCount) * int(s.Range.SliceCount)
	}
	if total != 4 {
		t.Fatalf("segments cover %d subresources, want 4 (partition invariant broken)", total)
	}

	assertPartitions(t, tr, 4, 1)
}

func TestApply_SubresourceIndependence(t *testing.T) {
	// Mirrors E3: two disjoint mip writes should not require a
	// transition to "undo" each other and both ranges must reflect
	// their own terminal state.
	tr := New(2, 1)
	rt := State{Access: AccessRenderTarget, Layout: LayoutRenderTarget, Sync: SyncDraw}

	mip0 := rangespec.SubresourceRange{FirstMip: 0, MipCount: 1, SliceCount: 1}
	mip1 := rangespec.SubresourceRange{FirstMip: 1, MipCount: 1, SliceCount: 1}

	tr.Apply(mip0, rt)
	tr.Apply(mip1, rt)

	for _, seg := range tr.Segments() {
		if !seg.State.Equal(rt) {
			t.Errorf("segment %v has state %v, want %v", seg.Range, seg.State, rt)
		}
	}
}

func TestWouldModify(t *testing.T) {
	tr := New(1, 1)
	rt := State{Access: AccessRenderTarget, Layout: LayoutRenderTarget, Sync: SyncDraw}

	if !tr.WouldModify(whole(1, 1), rt) {
		t.Error("WouldModify should be true transitioning out of Common")
	}
	tr.Apply(whole(1, 1), rt)
	if tr.WouldModify(whole(1, 1), rt) {
		t.Error("WouldModify should be false when already in the target state")
	}
}

func TestApply_SameAccessWriteAfterWriteEmitsNoTransition(t *testing.T) {
	// §4.B: UAV->UAV write-after-write on the same access does not
	// emit a barrier since state equality holds (the batcher alone
	// is responsible for treating this as a scheduling conflict).
	tr := New(1, 1)
	uav := State{Access: AccessUnorderedAccess, Layout: LayoutUnorderedAccess, Sync: SyncCompute}

	tr.Apply(whole(1, 1), uav)
	transitions := tr.Apply(whole(1, 1), uav)
	if len(transitions) != 0 {
		t.Errorf("got %d transitions for same-access UAV reapply, want 0", len(transitions))
	}
}

func assertPartitions(t *testing.T, tr *Tracker, mips, slices uint32) {
	t.Helper()
	seen := map[[2]uint32]bool{}
	for _, seg := range tr.Segments() {
		rangespec.Enumerate(seg.Range, func(mip, slice uint32) bool {
			key := [2]uint32{mip, slice}
			if seen[key] {
				t.Fatalf("subresource (%d,%d) covered by more than one segment", mip, slice)
			}
			seen[key] = true
			return true
		})
	}
	for mip := uint32(0); mip < mips; mip++ {
		for slice := uint32(0); slice < slices; slice++ {
			if !seen[[2]uint32{mip, slice}] {
				t.Fatalf("subresource (%d,%d) not covered by any segment", mip, slice)
			}
		}
	}
}

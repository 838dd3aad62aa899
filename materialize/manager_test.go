package materialize

import (
	"errors"
	"testing"

	"github.com/gogpu/rendergraph/registry"
)

type fakeBacking struct{ released bool }

func (f *fakeBacking) Released() bool { return f.released }

func TestEnsureMaterialized_CreatesOnlyOnce(t *testing.T) {
	m := New(3)
	res := registry.NewResource(1, 1, 1, true)
	calls := 0
	create := func(*registry.Resource) (registry.Backing, error) {
		calls++
		return &fakeBacking{}, nil
	}

	if err := m.EnsureMaterialized(res, create); err != nil {
		t.Fatalf("first materialize: %v", err)
	}
	if err := m.EnsureMaterialized(res, create); err != nil {
		t.Fatalf("second materialize: %v", err)
	}
	if calls != 1 {
		t.Errorf("create called %d times, want 1", calls)
	}
	if res.Generation() != 1 {
		t.Errorf("generation = %d, want 1", res.Generation())
	}
}

func TestEnsureMaterialized_PropagatesCreateError(t *testing.T) {
	m := New(1)
	res := registry.NewResource(1, 1, 1, true)
	wantErr := errors.New("boom")
	err := m.EnsureMaterialized(res, func(*registry.Resource) (registry.Backing, error) {
		return nil, wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("err = %v, want %v", err, wantErr)
	}
}

func TestEndFrame_DematerializesAfterIdleThreshold(t *testing.T) {
	m := New(2)
	res := registry.NewResource(1, 1, 1, true)
	m.Track(res, true)
	_ = m.EnsureMaterialized(res, func(*registry.Resource) (registry.Backing, error) { return &fakeBacking{}, nil })

	destroyed := false
	destroy := func(*registry.Resource, registry.Backing) { destroyed = true }

	m.EndFrame(map[registry.GlobalID]bool{}, destroy) // idle=1
	if destroyed {
		t.Fatal("should not dematerialize before reaching the threshold")
	}
	m.EndFrame(map[registry.GlobalID]bool{}, destroy) // idle=2
	if !destroyed {
		t.Fatal("expected dematerialize once idleFrames reaches the threshold")
	}
	if res.Backing() != nil {
		t.Error("backing should be cleared after dematerialize")
	}
}

func TestEndFrame_ReferencedResourceNeverDematerializes(t *testing.T) {
	m := New(1)
	res := registry.NewResource(1, 1, 1, true)
	m.Track(res, true)
	_ = m.EnsureMaterialized(res, func(*registry.Resource) (registry.Backing, error) { return &fakeBacking{}, nil })

	for i := 0; i < 5; i++ {
		m.EndFrame(map[registry.GlobalID]bool{res.ID(): true}, func(*registry.Resource, registry.Backing) {
			t.Fatal("referenced resource must never be dematerialized")
		})
	}
}

func TestSnapshotAndStale(t *testing.T) {
	res := registry.NewResource(1, 1, 1, true)
	snap := Snapshot([]*registry.Resource{res})
	if Stale(snap, []*registry.Resource{res}) {
		t.Fatal("freshly snapshotted resource should not be stale")
	}

	res.SetBacking(&fakeBacking{})
	if !Stale(snap, []*registry.Resource{res}) {
		t.Error("materializing should bump generation and make the snapshot stale")
	}
}

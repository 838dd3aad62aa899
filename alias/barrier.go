package alias

import (
	"sort"

	"github.com/gogpu/rendergraph/registry"
	"github.com/gogpu/rendergraph/track"
)

// AcquireBarrier is the placement barrier a pooled resource needs at
// its first use: a discard transition from Common into whatever
// state that first use requires.
type AcquireBarrier struct {
	Resource *registry.Resource
	FirstUse int
	NewState track.State
}

// DischargeBarrier returns a pooled resource to Common at the end of
// its last use within the frame, so the pool can be reused by a later
// placement without carrying stale layout/access state forward.
type DischargeBarrier struct {
	Resource *registry.Resource
	LastUse  int
}

// Barriers derives the acquire/discharge barrier set for a plan.
// firstUseState supplies the state each resource's first use actually
// requires (the planner itself does not inspect pass requirements).
// A discharge barrier is only emitted when another placement reuses
// the same (pool, offset) byte range later in the frame (§4.G bullet
// 5: "if the pool is reused within the same frame").
func Barriers(plan *Plan, firstUseState func(r *registry.Resource) track.State) ([]AcquireBarrier, []DischargeBarrier) {
	needsDischarge := nonFinalOccupants(plan.Placements)

	var acquires []AcquireBarrier
	var discharges []DischargeBarrier
	for _, p := range plan.Placements {
		acquires = append(acquires, AcquireBarrier{
			Resource: p.Resource,
			FirstUse: p.FirstUse,
			NewState: firstUseState(p.Resource),
		})
		if needsDischarge[p.Resource.ID()] {
			discharges = append(discharges, DischargeBarrier{
				Resource: p.Resource,
				LastUse:  p.LastUse,
			})
		}
	}
	return acquires, discharges
}

type placementKey struct {
	pool   int
	offset uint64
}

// nonFinalOccupants groups placements by (pool, offset) byte range and
// returns the resource ids of every occupant except the last (by
// FirstUse) in each range — those are the ones whose range is handed
// to a later resource within the same frame and so need a discharge
// barrier at the end of their last use.
func nonFinalOccupants(placements []Placement) map[registry.GlobalID]bool {
	byRange := make(map[placementKey][]Placement)
	for _, p := range placements {
		key := placementKey{p.Pool, p.Offset}
		byRange[key] = append(byRange[key], p)
	}

	out := make(map[registry.GlobalID]bool)
	for _, group := range byRange {
		if len(group) < 2 {
			continue
		}
		sort.Slice(group, func(i, j int) bool { return group[i].FirstUse < group[j].FirstUse })
		for _, p := range group[:len(group)-1] {
			out[p.Resource.ID()] = true
		}
	}
	return out
}

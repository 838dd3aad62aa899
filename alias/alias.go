// Package alias implements the aliasing planner: given resource
// lifetime intervals over a compiled pass schedule, it assigns
// disjoint-lifetime resources to shared byte ranges within pools, so
// peak memory tracks concurrent footprint rather than total
// declared footprint.
package alias

import (
	"sort"

	"github.com/gogpu/rendergraph/registry"
)

// Mode selects how aggressively the planner looks for aliasing
// opportunities.
type Mode uint8

const (
	Off Mode = iota
	Conservative
	Balanced
	Aggressive
)

func (m Mode) String() string {
	switch m {
	case Off:
		return "off"
	case Conservative:
		return "conservative"
	case Balanced:
		return "balanced"
	case Aggressive:
		return "aggressive"
	default:
		return "unknown"
	}
}

// PackingStrategy selects the bin-packing algorithm used to place
// candidates into pools.
type PackingStrategy uint8

const (
	GreedySweepLine PackingStrategy = iota
	BranchAndBound
)

// Candidate is one resource considered for aliasing.
type Candidate struct {
	Resource      *registry.Resource
	SizeBytes     uint64
	Alignment     uint64
	FirstUse      int // index into the compiled schedule
	LastUse       int
	AllowAlias    bool
	LegacyInterop bool
	MultiOwner    bool
	DeclOrder     int
}

// Options configures one planning run.
type Options struct {
	Mode                 Mode
	Strategy             PackingStrategy
	GrowthHeadroom       float64 // >= 1.0
	RetireIdleFrames     uint32  // >= 1
	LogExclusionReasons  bool
	BranchAndBoundBudget int // node budget before falling back to greedy
}

// Exclusion records why a candidate was not considered for aliasing.
type Exclusion struct {
	Resource *registry.Resource
	Reason   string
}

// Placement is one resource's assigned byte range within a pool.
type Placement struct {
	Resource *registry.Resource
	Pool     int
	Offset   uint64
	Size     uint64
	FirstUse int
	LastUse  int
}

// Pool is one shared memory range committed by the plan. Idle-frame
// tracking across compiles is handled separately by Tracker.
type Pool struct {
	ID            int
	RequiredBytes uint64
	ReservedBytes uint64
}

// Plan is the full output of one aliasing run.
type Plan struct {
	Placements []Placement
	Pools      []Pool
	Exclusions []Exclusion
}

// BuildPlan filters candidates by eligibility, packs the eligible ones
// using the configured strategy, and commits pool sizes. With
// Mode == Off, every candidate is excluded and no placements are
// produced (§8 property 12).
func BuildPlan(candidates []Candidate, opts Options) *Plan {
	if opts.GrowthHeadroom < 1.0 {
		opts.GrowthHeadroom = 1.0
	}
	if opts.RetireIdleFrames == 0 {
		opts.RetireIdleFrames = 1
	}

	p := &Plan{}
	if opts.Mode == Off {
		for _, c := range candidates {
			p.Exclusions = append(p.Exclusions, Exclusion{Resource: c.Resource, Reason: "aliasing disabled (autoAliasMode=Off)"})
		}
		return p
	}

	eligible := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if reason, ok := ineligible(c); ok {
			p.Exclusions = append(p.Exclusions, Exclusion{Resource: c.Resource, Reason: reason})
			continue
		}
		eligible = append(eligible, c)
	}

	sort.Slice(eligible, func(i, j int) bool {
		a, b := eligible[i], eligible[j]
		if a.FirstUse != b.FirstUse {
			return a.FirstUse < b.FirstUse
		}
		if a.Resource.ID() != b.Resource.ID() {
			return a.Resource.ID() < b.Resource.ID()
		}
		return a.DeclOrder < b.DeclOrder
	})

	var placements []placementCandidate
	switch opts.Strategy {
	case BranchAndBound:
		placements = packBranchAndBound(eligible, opts.BranchAndBoundBudget)
	default:
		placements = packGreedySweepLine(eligible)
	}

	pools := commitPools(placements, opts.GrowthHeadroom)

	p.Pools = pools
	p.Placements = make([]Placement, len(placements))
	for i, pc := range placements {
		p.Placements[i] = Placement{
			Resource: pc.resource.Resource, Pool: pc.pool, Offset: pc.offset, Size: pc.size,
			FirstUse: pc.firstUse, LastUse: pc.lastUse,
		}
	}
	return p
}

// ineligible returns the exclusion reason (if any) a candidate fails
// eligibility for: opted out, not aliasable due to legacy interop, or
// shared across multiple owners.
func ineligible(c Candidate) (string, bool) {
	if !c.AllowAlias {
		return "resource did not opt into aliasing", true
	}
	if c.LegacyInterop {
		return "resource is shared with legacy/external interop", true
	}
	if c.MultiOwner {
		return "resource is declared by more than one owner", true
	}
	if c.LastUse < c.FirstUse {
		return "invalid lifetime interval", true
	}
	return "", false
}

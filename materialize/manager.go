// Package materialize implements the resource materialization
// lifecycle: lazy backing creation, idle-based dematerialization, and
// generation snapshots used to detect that a compiled plan has gone
// stale.
package materialize

import "github.com/gogpu/rendergraph/registry"

// CreateFunc allocates a backing for res. It is supplied by the host;
// this package only decides when to call it.
type CreateFunc func(res *registry.Resource) (registry.Backing, error)

// DestroyFunc releases a backing that is about to be detached.
type DestroyFunc func(res *registry.Resource, backing registry.Backing)

type tracked struct {
	res         *registry.Resource
	allowAlias  bool
	idleFrames  uint32
}

// Manager owns the idle-counter bookkeeping for a set of resources
// opted into automatic dematerialization. A resource not registered
// with Track is materialized lazily but never auto-dematerialized.
type Manager struct {
	idleThreshold uint32
	byID          map[registry.GlobalID]*tracked
}

// New creates a manager that dematerializes an opted-in resource once
// it has gone idleThreshold consecutive frames without being
// referenced.
func New(idleThreshold uint32) *Manager {
	if idleThreshold == 0 {
		idleThreshold = 1
	}
	return &Manager{idleThreshold: idleThreshold, byID: make(map[registry.GlobalID]*tracked)}
}

// Track opts res into idle-based dematerialization bookkeeping.
func (m *Manager) Track(res *registry.Resource, allowDematerialize bool) {
	if _, ok := m.byID[res.ID()]; ok {
		return
	}
	m.byID[res.ID()] = &tracked{res: res, allowAlias: allowDematerialize}
}

// EnsureMaterialized materializes res via create if it has no current
// backing. It is a no-op if the resource is already materialized.
func (m *Manager) EnsureMaterialized(res *registry.Resource, create CreateFunc) error {
	if res.Backing() != nil {
		return nil
	}
	backing, err := create(res)
	if err != nil {
		return err
	}
	res.SetBacking(backing)
	return nil
}

// EndFrame advances the idle bookkeeping for every tracked resource:
// referenced resources reset their idle counter to zero; the rest
// increment it, and any resource whose counter reaches the configured
// threshold is dematerialized via destroy and its backing cleared.
//
// referenced should include every resource touched by the frame just
// compiled, including resources resolved mid-frame by a resolver
// (§9 open question 3: newly-resolved resources count as used this
// frame to avoid immediate churn).
func (m *Manager) EndFrame(referenced map[registry.GlobalID]bool, destroy DestroyFunc) {
	for id, t := range m.byID {
		if referenced[id] {
			t.idleFrames = 0
			continue
		}
		t.idleFrames++
		if !t.allowAlias || t.idleFrames < m.idleThreshold {
			continue
		}
		backing := t.res.Backing()
		if backing == nil {
			continue
		}
		if destroy != nil {
			destroy(t.res, backing)
		}
		t.res.SetBacking(nil)
		t.idleFrames = 0
	}
}

// Snapshot captures the current generation of every resource in
// resources, keyed by global id.
func Snapshot(resources []*registry.Resource) map[registry.GlobalID]uint32 {
	snap := make(map[registry.GlobalID]uint32, len(resources))
	for _, r := range resources {
		snap[r.ID()] = r.Generation()
	}
	return snap
}

// Stale reports whether any resource in resources now has a
// generation different from the one captured in snap, meaning a plan
// compiled against snap is no longer valid.
func Stale(snap map[registry.GlobalID]uint32, resources []*registry.Resource) bool {
	for _, r := range resources {
		if g, ok := snap[r.ID()]; !ok || g != r.Generation() {
			return true
		}
	}
	return false
}

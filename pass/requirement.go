package pass

import (
	"github.com/gogpu/rendergraph/rangespec"
	"github.com/gogpu/rendergraph/registry"
	"github.com/gogpu/rendergraph/track"
)

// ResourceRequirement is one resolved (resource, range, desired state)
// entry a pass needs before it can execute.
type ResourceRequirement struct {
	Resource *registry.Resource
	Range    rangespec.SubresourceRange
	State    track.State
}

// InternalTransition is an end-state override a pass declares to be
// applied after it executes, e.g. to describe a side effect the pass
// performs on a resource outside its declared buckets.
type InternalTransition struct {
	Resource *registry.Resource
	Range    rangespec.SubresourceRange
	State    track.State
}

package compiler

import (
	"github.com/gogpu/rendergraph/pass"
	"github.com/gogpu/rendergraph/rangespec"
	"github.com/gogpu/rendergraph/registry"
	"github.com/gogpu/rendergraph/track"
)

// touch is one subresource-range access a node makes to a resource,
// classified as a read or a write (write dominates: a range that is
// both read and written by the same pass is recorded as a write only,
// since the builder has already folded it to its end state).
type touch struct {
	rng     rangespec.SubresourceRange
	isWrite bool
	isUAV   bool
}

// node is the Phase 1 expansion of one declared pass: its touches to
// each resource id, kept per-subresource-range so that Phase 2 only
// draws a dependency edge between passes whose ranges actually
// overlap (two passes writing disjoint mips of the same resource are
// independent).
type node struct {
	pass  *pass.Pass
	index int

	touches map[registry.GlobalID][]touch
}

func buildNodes(passes []*pass.Pass) []*node {
	nodes := make([]*node, len(passes))
	for i, p := range passes {
		n := &node{
			pass:    p,
			index:   i,
			touches: make(map[registry.GlobalID][]touch),
		}
		for _, req := range p.StaticResourceRequirements {
			id := req.Resource.ID()
			n.touches[id] = append(n.touches[id], touch{
				rng:     req.Range,
				isWrite: !req.State.Access.IsReadOnly(),
				isUAV:   req.State.Access&track.AccessUnorderedAccess != 0,
			})
		}
		for _, it := range p.InternalTransitions {
			id := it.Resource.ID()
			n.touches[id] = append(n.touches[id], touch{
				rng:     it.Range,
				isWrite: true,
				isUAV:   it.State.Access&track.AccessUnorderedAccess != 0,
			})
		}
		nodes[i] = n
	}
	return nodes
}

package compiler

import "github.com/gogpu/rendergraph/pass"

// Compile turns a declared list of passes into a scheduled Plan:
// dependency DAG construction, priority topological scheduling,
// per-queue batch packing with minimal barrier emission, and
// cross-queue timeline synchronization. extraEdges augments the DAG
// built from resource dependencies with additional ordering
// constraints a caller wants enforced (e.g. an explicit pass-order
// hint); indices refer to positions in passes.
//
// Compile is pure: it neither resolves handles nor touches the
// registry or any rhi resource. A *CycleError is returned if the
// resource dependencies (plus extraEdges) are not acyclic.
func Compile(passes []*pass.Pass, extraEdges []Edge) (*Plan, error) {
	nodes := buildNodes(passes)
	g, err := buildGraph(nodes, extraEdges)
	if err != nil {
		return nil, err
	}

	schedule := topoScheduleByPriority(g)
	batches, passToBatch := packBatches(schedule)
	assignSync(g, batches, passToBatch)

	return &Plan{Schedule: schedule, Batches: batches}, nil
}

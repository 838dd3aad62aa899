package compiler

import (
	"sort"

	"github.com/gogpu/rendergraph/pass"
)

// signalKey identifies one signal point: a queue reaching a given
// phase of a given batch. Every signal point is assigned at most one
// monotonic fence value, shared by every waiter of that point.
type signalKey struct {
	queue pass.QueueKind
	batch int
	phase SignalPhase
}

type waitKey struct {
	queue    pass.QueueKind
	batch    int
	phase    WaitPhase
	srcQueue pass.QueueKind
}

// assignSync walks every dependency edge of g that crosses a queue
// boundary and assigns the timeline wait/signal pair that must
// enforce it: same-batch cross-queue edges synchronize within the
// batch (AfterTransitions -> BeforeExecution); cross-batch edges
// synchronize across submissions (AfterCompletion -> BeforeTransitions).
func assignSync(g *graph, batches []*Batch, passToBatch map[*pass.Pass]int) {
	fenceCounters := make(map[pass.QueueKind]uint64)
	signals := make(map[signalKey]uint64)
	waits := make(map[waitKey]uint64)

	signalValue := func(queue pass.QueueKind, batchIndex int, phase SignalPhase) uint64 {
		key := signalKey{queue, batchIndex, phase}
		if v, ok := signals[key]; ok {
			return v
		}
		fenceCounters[queue]++
		v := fenceCounters[queue]
		signals[key] = v

		sig := &Signal{Queue: queue, Phase: phase, Value: v}
		switch phase {
		case AfterTransitions:
			batches[batchIndex].SignalAfterTransitions[queue] = sig
		case AfterCompletion:
			batches[batchIndex].SignalAfterCompletion[queue] = sig
		}
		return v
	}

	// addWait coalesces to the maximum fence value when multiple edges
	// target the same (dstQueue, batch, phase, srcQueue) edge (§4.F
	// phase 6): distinct source batches on the same source queue can
	// feed the same destination batch, each signaling a different
	// value, and the destination must wait for the largest of them.
	addWait := func(dstQueue pass.QueueKind, batchIndex int, phase WaitPhase, srcQueue pass.QueueKind, value uint64) {
		key := waitKey{dstQueue, batchIndex, phase, srcQueue}
		if existing, ok := waits[key]; ok && existing >= value {
			return
		}
		waits[key] = value
	}

	// Visit source nodes in batch order so each queue's counter hands out
	// values that grow with the batch index they are signaled from.
	order := make([]int, len(g.adj))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return passToBatch[g.nodes[order[i]].pass] < passToBatch[g.nodes[order[j]].pass]
	})
	for _, u := range order {
		succs := g.adj[u]
		srcPass := g.nodes[u].pass
		srcQueue := srcPass.Queue
		srcBatch := passToBatch[srcPass]

		for _, v := range succs {
			dstPass := g.nodes[v].pass
			dstQueue := dstPass.Queue
			if dstQueue == srcQueue {
				continue // same-queue ordering is implicit in submission order
			}
			dstBatch := passToBatch[dstPass]

			if srcBatch == dstBatch {
				value := signalValue(srcQueue, srcBatch, AfterTransitions)
				addWait(dstQueue, dstBatch, BeforeExecution, srcQueue, value)
				continue
			}
			value := signalValue(srcQueue, srcBatch, AfterCompletion)
			addWait(dstQueue, dstBatch, BeforeTransitions, srcQueue, value)
		}
	}

	// Materialize the coalesced waits into each batch, sorted by source
	// queue for a deterministic order independent of map iteration
	// (§8 property 8: recompiling reproduces bit-identical batches).
	keys := make([]waitKey, 0, len(waits))
	for key := range waits {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.batch != b.batch {
			return a.batch < b.batch
		}
		if a.phase != b.phase {
			return a.phase < b.phase
		}
		if a.queue != b.queue {
			return a.queue < b.queue
		}
		return a.srcQueue < b.srcQueue
	})
	for _, key := range keys {
		w := Wait{SrcQueue: key.srcQueue, DstQueue: key.queue, Phase: key.phase, Value: waits[key]}
		switch key.phase {
		case BeforeTransitions:
			batches[key.batch].WaitsBeforeTransitions[key.queue] = append(batches[key.batch].WaitsBeforeTransitions[key.queue], w)
		case BeforeExecution:
			batches[key.batch].WaitsBeforeExecution[key.queue] = append(batches[key.batch].WaitsBeforeExecution[key.queue], w)
		}
	}
}

// Package executor drives a compiled Plan against a real rhi.Device:
// per batch, it issues barrier transitions, inserts cross-queue
// waits, replays each pass's recorded opcode stream, invokes the
// pass's own execution callback, and raises the timeline signals the
// compiler assigned.
package executor

import (
	"context"
	"fmt"

	"github.com/gogpu/rendergraph/compiler"
	"github.com/gogpu/rendergraph/pass"
	"github.com/gogpu/rendergraph/record"
	"github.com/gogpu/rendergraph/rhi"
)

// Runner is what a concrete pass implementation supplies to drive its
// own execution. Bytecode may be nil if the pass recorded nothing via
// the immediate recorder. Run may return a custom fence + value the
// executor installs as an additional post-completion signal (e.g. a
// readback fence the host wants to poll independently).
type Runner interface {
	Bytecode() []byte
	Run(ctx context.Context, enc rhi.CommandEncoder) (fence rhi.Fence, value uint64, ok bool)
}

// Lookup resolves the Runner for a scheduled pass. Passes with no
// registered Runner are replayed/executed as a no-op (barriers around
// them still apply).
type Lookup func(p *pass.Pass) Runner

// Dispatcher builds the record.Dispatcher a pass's bytecode replays
// into, typically a thin adapter recording onto enc.
type Dispatcher func(p *pass.Pass, enc rhi.CommandEncoder) record.Dispatcher

// Executor owns the per-queue command-encoder pools and timeline
// fences used to drive a compiled Plan.
type Executor struct {
	device     rhi.Device
	queues     map[pass.QueueKind]rhi.Queue
	timelines  map[pass.QueueKind]rhi.Fence
	pools      map[pass.QueueKind]*encoderPool
	lookup     Lookup
	dispatcher Dispatcher
}

// New creates an Executor. queues and timelines must have an entry
// for every pass.QueueKind the plan can schedule onto.
func New(device rhi.Device, queues map[pass.QueueKind]rhi.Queue, timelines map[pass.QueueKind]rhi.Fence, lookup Lookup, dispatcher Dispatcher) *Executor {
	pools := make(map[pass.QueueKind]*encoderPool, len(queues))
	for q, queue := range queues {
		pools[q] = newEncoderPool(device, queue, timelines[q])
	}
	return &Executor{
		device: device, queues: queues, timelines: timelines,
		pools: pools, lookup: lookup, dispatcher: dispatcher,
	}
}

// Execute walks every batch of plan in order, per §4.I:
//  1. issue BeforePasses transitions per queue
//  2. satisfy BeforeExecution waits per queue
//  3. replay + run every pass per queue
//  4. issue AfterPasses transitions per queue
//  5. raise the batch's configured signals (AfterTransitions and
//     AfterCompletion alike are raised when the queue's submission
//     completes)
func (e *Executor) Execute(ctx context.Context, plan *compiler.Plan) error {
	for _, batch := range plan.Batches {
		if err := e.runBatch(ctx, batch); err != nil {
			return fmt.Errorf("executor: batch %d: %w", batch.Index, err)
		}
	}
	return nil
}

func (e *Executor) runBatch(ctx context.Context, batch *compiler.Batch) error {
	needed := make(map[pass.QueueKind]bool)
	for q := range batch.PassesByQueue {
		needed[q] = true
	}
	for q := range batch.TransitionsBeforePasses {
		needed[q] = true
	}
	for q := range batch.TransitionsAfterPasses {
		needed[q] = true
	}

	encoders := make(map[pass.QueueKind]rhi.CommandEncoder, len(needed))
	for q := range needed {
		enc, err := e.pools[q].acquire(ctx)
		if err != nil {
			return fmt.Errorf("acquire encoder on %s: %w", q, err)
		}
		encoders[q] = enc
	}

	for q, transitions := range batch.TransitionsBeforePasses {
		issueTransitions(encoders[q], transitions)
	}

	for q, waits := range batch.WaitsBeforeTransitions {
		if err := e.awaitAll(encoders, q, waits); err != nil {
			return err
		}
	}

	for q, waits := range batch.WaitsBeforeExecution {
		if err := e.awaitAll(encoders, q, waits); err != nil {
			return err
		}
	}

	extraSignals := make(map[pass.QueueKind][]queuedSignal)
	for q, passes := range batch.PassesByQueue {
		enc := encoders[q]
		for _, p := range passes {
			runner := e.lookup(p)
			if runner == nil {
				continue
			}
			if code := runner.Bytecode(); len(code) > 0 && e.dispatcher != nil {
				if err := record.Replay(code, e.dispatcher(p, enc)); err != nil {
					return fmt.Errorf("replay pass %q: %w", p.Name, err)
				}
			}
			if fence, value, ok := runner.Run(ctx, enc); ok {
				extraSignals[q] = append(extraSignals[q], queuedSignal{fence: fence, value: value})
			}
		}
	}

	for q, transitions := range batch.TransitionsAfterPasses {
		issueTransitions(encoders[q], transitions)
	}

	for q, enc := range encoders {
		var retireValue uint64
		if sig := batch.SignalAfterCompletion[q]; sig != nil {
			retireValue = sig.Value
		}
		// An AfterTransitions signal is raised by the same submission;
		// the larger value also satisfies waiters of the smaller one.
		if sig := batch.SignalAfterTransitions[q]; sig != nil && sig.Value > retireValue {
			retireValue = sig.Value
		}
		if err := e.queues[q].Submit(ctx, enc, e.timelines[q], retireValue); err != nil {
			return fmt.Errorf("submit %s: %w", q, err)
		}
		e.pools[q].release(enc, retireValue)

		for _, extra := range extraSignals[q] {
			if extra.fence == nil {
				continue
			}
			if err := e.queues[q].Submit(ctx, enc, extra.fence, extra.value); err != nil {
				return fmt.Errorf("submit pass-requested fence on %s: %w", q, err)
			}
		}
	}
	return nil
}

type queuedSignal struct {
	fence rhi.Fence
	value uint64
}

func (e *Executor) awaitAll(encoders map[pass.QueueKind]rhi.CommandEncoder, dstQueue pass.QueueKind, waits []compiler.Wait) error {
	q := e.queues[dstQueue]
	for _, w := range waits {
		srcFence := e.timelines[w.SrcQueue]
		if err := q.Wait(srcFence, w.Value); err != nil {
			return fmt.Errorf("wait on %s fence value %d: %w", w.SrcQueue, w.Value, err)
		}
	}
	return nil
}

// issueTransitions resolves each transition's resource to its current
// rhi backing and splits the batch into buffer vs. texture barriers.
// A resource with no backing or a backing of the wrong kind is
// skipped — it can only mean the resource was never materialized,
// which the materialization manager is responsible for preventing
// before the plan reaches the executor.
func issueTransitions(enc rhi.CommandEncoder, transitions []compiler.Transition) {
	if enc == nil || len(transitions) == 0 {
		return
	}
	var bufferBarriers []rhi.BufferBarrier
	var textureBarriers []rhi.TextureBarrier
	for _, t := range transitions {
		backing := t.Resource.Backing()
		if backing == nil {
			continue
		}
		if t.Resource.HasLayout() {
			if tex, ok := backing.(rhi.Texture); ok {
				textureBarriers = append(textureBarriers, rhi.TextureBarrier{
					Texture: tex, Range: t.Range, Prev: t.Prev, New: t.New, Discard: t.Discard,
				})
			}
		} else {
			if buf, ok := backing.(rhi.Buffer); ok {
				bufferBarriers = append(bufferBarriers, rhi.BufferBarrier{
					Buffer: buf, Prev: t.Prev, New: t.New, Discard: t.Discard,
				})
			}
		}
	}
	if len(bufferBarriers) > 0 {
		enc.TransitionBuffers(bufferBarriers)
	}
	if len(textureBarriers) > 0 {
		enc.TransitionTextures(textureBarriers)
	}
}

package compiler

import (
	"errors"
	"testing"

	"github.com/gogpu/rendergraph/pass"
	"github.com/gogpu/rendergraph/rangespec"
	"github.com/gogpu/rendergraph/registry"
	"github.com/gogpu/rendergraph/track"
)

func whole(mips, slices uint32) rangespec.SubresourceRange {
	return rangespec.SubresourceRange{MipCount: mips, SliceCount: slices}
}

func mipRange(mip uint32) rangespec.SubresourceRange {
	return rangespec.SubresourceRange{FirstMip: mip, MipCount: 1, SliceCount: 1}
}

func srv() track.State {
	return track.State{Access: track.AccessShaderRead, Layout: track.LayoutShaderResource, Sync: track.SyncCompute}
}
func uavState() track.State {
	return track.State{Access: track.AccessUnorderedAccess, Layout: track.LayoutUnorderedAccess, Sync: track.SyncCompute}
}
func rt() track.State {
	return track.State{Access: track.AccessRenderTarget, Layout: track.LayoutRenderTarget, Sync: track.SyncDraw}
}

func req(res *registry.Resource, rng rangespec.SubresourceRange, st track.State) pass.ResourceRequirement {
	return pass.ResourceRequirement{Resource: res, Range: rng, State: st}
}

// TestCompile_E1_PingPongBlurStaysSingleQueue: two compute passes
// ping-ponging between two textures on the same queue produce a RAW
// dependency edge but need no cross-queue synchronization.
func TestCompile_E1_PingPongBlurStaysSingleQueue(t *testing.T) {
	texA := registry.NewResource(1, 1, 1, true)
	texB := registry.NewResource(2, 1, 1, true)

	blur1 := &pass.Pass{
		Name: "blur1", Kind: pass.KindCompute, Queue: pass.QueueCompute,
		StaticResourceRequirements: []pass.ResourceRequirement{
			req(texA, whole(1, 1), srv()),
			req(texB, whole(1, 1), uavState()),
		},
	}
	blur2 := &pass.Pass{
		Name: "blur2", Kind: pass.KindCompute, Queue: pass.QueueCompute,
		StaticResourceRequirements: []pass.ResourceRequirement{
			req(texB, whole(1, 1), srv()),
			req(texA, whole(1, 1), uavState()),
		},
	}

	plan, err := Compile([]*pass.Pass{blur1, blur2}, nil)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if len(plan.Schedule) != 2 || plan.Schedule[0] != blur1 || plan.Schedule[1] != blur2 {
		t.Fatalf("expected [blur1 blur2] order, got %v", plan.Schedule)
	}
	for _, b := range plan.Batches {
		if len(b.SignalAfterCompletion) != 0 || len(b.SignalAfterTransitions) != 0 {
			t.Fatalf("unexpected cross-queue signal in single-queue pipeline: batch %d", b.Index)
		}
	}
}

// TestCompile_E2_GraphicsProducerComputeConsumerSynchronizes: a
// graphics pass writes a render target that a compute pass then reads
// as an SRV; the RT->SR transition crosses both a batch and a queue
// boundary, so it must be carried by a signal/wait pair.
func TestCompile_E2_GraphicsProducerComputeConsumerSynchronizes(t *testing.T) {
	tex := registry.NewResource(1, 1, 1, true)

	producer := &pass.Pass{
		Name: "scene", Kind: pass.KindRender, Queue: pass.QueueGraphics,
		StaticResourceRequirements: []pass.ResourceRequirement{
			req(tex, whole(1, 1), rt()),
		},
	}
	consumer := &pass.Pass{
		Name: "postfx", Kind: pass.KindCompute, Queue: pass.QueueCompute,
		StaticResourceRequirements: []pass.ResourceRequirement{
			req(tex, whole(1, 1), srv()),
		},
	}

	plan, err := Compile([]*pass.Pass{producer, consumer}, nil)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if len(plan.Batches) != 2 {
		t.Fatalf("expected 2 batches (different queues, real dependency), got %d", len(plan.Batches))
	}

	producerBatch := plan.Batches[0]
	consumerBatch := plan.Batches[1]

	sig := producerBatch.SignalAfterCompletion[pass.QueueGraphics]
	if sig == nil {
		t.Fatalf("expected AfterCompletion signal on graphics queue in producer batch")
	}
	waits := consumerBatch.WaitsBeforeTransitions[pass.QueueCompute]
	if len(waits) != 1 || waits[0].SrcQueue != pass.QueueGraphics || waits[0].Value != sig.Value {
		t.Fatalf("expected compute batch to wait on graphics signal value %d, got %+v", sig.Value, waits)
	}
}

// TestCompile_E3_DisjointMipsShareABatch verifies that two passes
// writing disjoint mip levels of the same texture are independent:
// no dependency edge between them, so they land in the same batch.
func TestCompile_E3_DisjointMipsShareABatch(t *testing.T) {
	tex := registry.NewResource(1, 2, 1, true)

	writeMip0 := &pass.Pass{
		Name: "downsample-mip0", Kind: pass.KindCompute, Queue: pass.QueueCompute,
		StaticResourceRequirements: []pass.ResourceRequirement{
			req(tex, mipRange(0), uavState()),
		},
	}
	writeMip1 := &pass.Pass{
		Name: "downsample-mip1", Kind: pass.KindCompute, Queue: pass.QueueCompute,
		StaticResourceRequirements: []pass.ResourceRequirement{
			req(tex, mipRange(1), uavState()),
		},
	}

	nodes := buildNodes([]*pass.Pass{writeMip0, writeMip1})
	g, err := buildGraph(nodes, nil)
	if err != nil {
		t.Fatalf("buildGraph: %v", err)
	}
	if len(g.adj[0]) != 0 || len(g.adj[1]) != 0 {
		t.Fatalf("expected no edges between disjoint-mip writers, got adj=%v", g.adj)
	}

	plan, err := Compile([]*pass.Pass{writeMip0, writeMip1}, nil)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if len(plan.Batches) != 1 {
		t.Fatalf("expected disjoint-mip writes to share one batch, got %d", len(plan.Batches))
	}
}

func TestCompile_CycleDetection(t *testing.T) {
	texA := registry.NewResource(1, 1, 1, true)
	texB := registry.NewResource(2, 1, 1, true)

	p1 := &pass.Pass{
		Name: "p1", Kind: pass.KindCompute, Queue: pass.QueueCompute,
		StaticResourceRequirements: []pass.ResourceRequirement{
			req(texA, whole(1, 1), srv()),
			req(texB, whole(1, 1), uavState()),
		},
	}
	p2 := &pass.Pass{
		Name: "p2", Kind: pass.KindCompute, Queue: pass.QueueCompute,
		StaticResourceRequirements: []pass.ResourceRequirement{
			req(texB, whole(1, 1), srv()),
			req(texA, whole(1, 1), uavState()),
		},
	}

	// Force an explicit extra edge p1->p2 and p2->p1 to manufacture a cycle.
	_, err := Compile([]*pass.Pass{p1, p2}, []Edge{{From: 0, To: 1}, {From: 1, To: 0}})
	if err == nil {
		t.Fatalf("expected cycle error")
	}
	var cycErr *CycleError
	if !errors.As(err, &cycErr) {
		t.Fatalf("expected *CycleError, got %T: %v", err, err)
	}
	if !errors.Is(err, ErrCycle) {
		t.Fatalf("expected errors.Is(err, ErrCycle)")
	}
	if len(cycErr.Edges) == 0 {
		t.Fatalf("expected a non-empty cycle edge list")
	}
}

func TestCompile_ConflictingReadsDoNotForceNewBatch(t *testing.T) {
	tex := registry.NewResource(1, 1, 1, true)

	readerA := &pass.Pass{
		Name: "readerA", Kind: pass.KindCompute, Queue: pass.QueueCompute,
		StaticResourceRequirements: []pass.ResourceRequirement{req(tex, whole(1, 1), srv())},
	}
	readerB := &pass.Pass{
		Name: "readerB", Kind: pass.KindCompute, Queue: pass.QueueCompute,
		StaticResourceRequirements: []pass.ResourceRequirement{req(tex, whole(1, 1), srv())},
	}

	plan, err := Compile([]*pass.Pass{readerA, readerB}, nil)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if len(plan.Batches) != 1 {
		t.Fatalf("expected two non-conflicting reads to share a batch, got %d", len(plan.Batches))
	}
}

// TestCompile_CrossQueueWaitCoalescesToMaxSourceBatchSignal exercises
// three compute passes forced into three separate batches by a shared
// token resource they alternately write/read/write, each also writing
// a distinct resource a single graphics pass reads. All three produce
// an AfterCompletion signal that feeds the same (graphics, srcQueue)
// wait key; the recorded wait must equal the largest of the three
// signal values, not whichever edge happened to be visited first.
func TestCompile_CrossQueueWaitCoalescesToMaxSourceBatchSignal(t *testing.T) {
	token := registry.NewResource(1, 1, 1, true)
	d1 := registry.NewResource(2, 1, 1, true)
	d2 := registry.NewResource(3, 1, 1, true)
	d3 := registry.NewResource(4, 1, 1, true)

	c1 := &pass.Pass{
		Name: "c1", Kind: pass.KindCompute, Queue: pass.QueueCompute,
		StaticResourceRequirements: []pass.ResourceRequirement{
			req(token, whole(1, 1), uavState()),
			req(d1, whole(1, 1), uavState()),
		},
	}
	c2 := &pass.Pass{
		Name: "c2", Kind: pass.KindCompute, Queue: pass.QueueCompute,
		StaticResourceRequirements: []pass.ResourceRequirement{
			req(token, whole(1, 1), srv()),
			req(d2, whole(1, 1), uavState()),
		},
	}
	c3 := &pass.Pass{
		Name: "c3", Kind: pass.KindCompute, Queue: pass.QueueCompute,
		StaticResourceRequirements: []pass.ResourceRequirement{
			req(token, whole(1, 1), uavState()),
			req(d3, whole(1, 1), uavState()),
		},
	}
	g := &pass.Pass{
		Name: "g", Kind: pass.KindRender, Queue: pass.QueueGraphics,
		StaticResourceRequirements: []pass.ResourceRequirement{
			req(d1, whole(1, 1), srv()),
			req(d2, whole(1, 1), srv()),
			req(d3, whole(1, 1), srv()),
		},
	}

	plan, err := Compile([]*pass.Pass{c1, c2, c3, g}, nil)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if len(plan.Batches) != 4 {
		t.Fatalf("expected 3 serialized compute batches plus 1 graphics batch, got %d: %+v", len(plan.Batches), plan.Batches)
	}

	var maxSignal uint64
	for _, b := range plan.Batches[:3] {
		if sig := b.SignalAfterCompletion[pass.QueueCompute]; sig != nil && sig.Value > maxSignal {
			maxSignal = sig.Value
		}
	}
	if maxSignal == 0 {
		t.Fatalf("expected at least one AfterCompletion signal on compute across the first 3 batches, got %+v", plan.Batches[:3])
	}

	gBatch := plan.Batches[3]
	waits := gBatch.WaitsBeforeTransitions[pass.QueueGraphics]
	if len(waits) != 1 {
		t.Fatalf("expected exactly one coalesced wait entry on graphics, got %+v", waits)
	}
	if waits[0].SrcQueue != pass.QueueCompute || waits[0].Value != maxSignal {
		t.Fatalf("expected graphics to wait for the maximum compute signal value %d, got %+v", maxSignal, waits[0])
	}
}

// TestCompile_InternalTransitionForcesNewBatch verifies Phase 4's
// second batch-split rule: a pass whose requirements touch a
// resource range already internally-transitioned by an earlier,
// already-committed pass in the current batch cannot be packed
// alongside it, even when neither pass's static requirements conflict.
func TestCompile_InternalTransitionForcesNewBatch(t *testing.T) {
	tex := registry.NewResource(1, 1, 1, true)
	other := registry.NewResource(2, 1, 1, true)

	first := &pass.Pass{
		Name: "first", Kind: pass.KindCompute, Queue: pass.QueueCompute,
		StaticResourceRequirements: []pass.ResourceRequirement{
			req(other, whole(1, 1), uavState()),
		},
		InternalTransitions: []pass.InternalTransition{
			{Resource: tex, Range: whole(1, 1), State: uavState()},
		},
	}
	second := &pass.Pass{
		Name: "second", Kind: pass.KindCompute, Queue: pass.QueueCompute,
		StaticResourceRequirements: []pass.ResourceRequirement{
			req(tex, whole(1, 1), uavState()),
		},
	}

	plan, err := Compile([]*pass.Pass{first, second}, nil)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if len(plan.Batches) != 2 {
		t.Fatalf("expected the internal transition on tex to force second into its own batch, got %d: %+v", len(plan.Batches), plan.Batches)
	}
	if len(plan.Batches[0].PassesByQueue[pass.QueueCompute]) != 1 || plan.Batches[0].PassesByQueue[pass.QueueCompute][0] != first {
		t.Fatalf("expected batch 0 to contain only first, got %+v", plan.Batches[0].PassesByQueue[pass.QueueCompute])
	}
	if len(plan.Batches[1].PassesByQueue[pass.QueueCompute]) != 1 || plan.Batches[1].PassesByQueue[pass.QueueCompute][0] != second {
		t.Fatalf("expected batch 1 to contain only second, got %+v", plan.Batches[1].PassesByQueue[pass.QueueCompute])
	}
}

func TestCompile_ScheduleIsValidTopologicalOrder(t *testing.T) {
	tex := registry.NewResource(1, 1, 1, true)
	writer := &pass.Pass{
		Name: "writer", Kind: pass.KindRender, Queue: pass.QueueGraphics,
		StaticResourceRequirements: []pass.ResourceRequirement{req(tex, whole(1, 1), rt())},
	}
	reader := &pass.Pass{
		Name: "reader", Kind: pass.KindCompute, Queue: pass.QueueCompute,
		StaticResourceRequirements: []pass.ResourceRequirement{req(tex, whole(1, 1), srv())},
	}

	plan, err := Compile([]*pass.Pass{writer, reader}, nil)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	writerPos, readerPos := -1, -1
	for i, p := range plan.Schedule {
		if p == writer {
			writerPos = i
		}
		if p == reader {
			readerPos = i
		}
	}
	if writerPos < 0 || readerPos < 0 || writerPos > readerPos {
		t.Fatalf("expected writer scheduled before reader, got schedule=%v", plan.Schedule)
	}
}

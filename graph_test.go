package rendergraph

import (
	"context"
	"errors"
	"testing"

	"github.com/gogpu/rendergraph/pass"
	"github.com/gogpu/rendergraph/registry"
)

type fakeBacking struct{ released bool }

func (b *fakeBacking) Released() bool { return b.released }

type updateCall struct{ n int }

func (u *updateCall) Update(ctx context.Context) error {
	u.n++
	return nil
}

// TestGraph_CompilesAcrossTwoPasses exercises the Compiler API surface
// end to end: two passes sharing a texture compile into a plan whose
// schedule orders the producer before the consumer.
func TestGraph_CompilesAcrossTwoPasses(t *testing.T) {
	reg := registry.New()
	g := New(reg, nil)

	sceneID := registry.ParseIdentifier("scene::color")
	tex := registry.NewResource(1, 1, 1, true)
	g.RegisterResource(sceneID, tex)

	err := g.AddRenderPass("scene", []registry.Identifier{sceneID}, func(b *pass.Builder) error {
		b.RenderTarget(pass.Ident("scene::color"))
		return nil
	})
	if err != nil {
		t.Fatalf("AddRenderPass: %v", err)
	}

	err = g.AddComputePass("post", []registry.Identifier{sceneID}, func(b *pass.Builder) error {
		b.ShaderRead(pass.Ident("scene::color"))
		return nil
	})
	if err != nil {
		t.Fatalf("AddComputePass: %v", err)
	}

	if err := g.CompileStructural(); err != nil {
		t.Fatalf("CompileStructural: %v", err)
	}
	if len(g.plan.Schedule) != 2 {
		t.Fatalf("expected 2 scheduled passes, got %d", len(g.plan.Schedule))
	}
	if g.plan.Schedule[0].Name != "scene" || g.plan.Schedule[1].Name != "post" {
		t.Fatalf("expected scene before post, got %v", g.plan.Schedule)
	}

	foundSignal := false
	for _, b := range g.plan.Batches {
		if len(b.SignalAfterTransitions) > 0 || len(b.SignalAfterCompletion) > 0 {
			foundSignal = true
		}
	}
	if !foundSignal {
		t.Fatalf("expected a cross-queue signal between the graphics producer and compute consumer")
	}
}

// TestGraph_AddPassDeniesIdentifierOutsideView is the façade-level
// version of identifier access control (E5): a pass that was only
// granted one namespace cannot touch a resource outside it.
func TestGraph_AddPassDeniesIdentifierOutsideView(t *testing.T) {
	reg := registry.New()
	g := New(reg, nil)

	allowed := registry.ParseIdentifier("gbuffer")
	forbidden := registry.ParseIdentifier("shadow::atlas")
	g.RegisterResource(forbidden, registry.NewResource(1, 1, 1, true))

	err := g.AddRenderPass("gbuffer-pass", []registry.Identifier{allowed}, func(b *pass.Builder) error {
		b.ShaderRead(pass.Ident("shadow::atlas"))
		return nil
	})
	if err == nil {
		t.Fatalf("expected access-denied error, got nil")
	}
	if !errors.Is(err, registry.ErrAccessDenied) {
		t.Fatalf("expected ErrAccessDenied, got %v", err)
	}
}

// TestGraph_UpdateInvokesAttachedUpdater verifies SetUpdater wiring:
// Update calls the pre-execute hook once per call, in declaration
// order.
func TestGraph_UpdateInvokesAttachedUpdater(t *testing.T) {
	reg := registry.New()
	g := New(reg, nil)

	id := registry.ParseIdentifier("particles::buf")
	g.RegisterResource(id, registry.NewResource(1, 1, 1, false).WithSize(1024))

	err := g.AddComputePass("sim", []registry.Identifier{id}, func(b *pass.Builder) error {
		b.UnorderedAccess(pass.Ident("particles::buf"))
		return nil
	})
	if err != nil {
		t.Fatalf("AddComputePass: %v", err)
	}

	hook := &updateCall{}
	g.SetUpdater("sim", hook)

	if err := g.Update(context.Background()); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if err := g.Update(context.Background()); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if hook.n != 2 {
		t.Fatalf("expected updater invoked twice, got %d", hook.n)
	}
}

// TestGraph_ExecuteMaterializesReferencedResources verifies the
// materialization glue: a resource declared by a pass is lazily
// created the first Execute and dematerialized once it has gone idle
// for the configured threshold.
func TestGraph_ExecuteMaterializesReferencedResources(t *testing.T) {
	reg := registry.New()
	g := New(reg, nil)

	id := registry.ParseIdentifier("scratch")
	res := registry.NewResource(1, 1, 1, false).WithSize(256)
	g.RegisterResource(id, res)
	g.ConfigureAliasing(res, 256, 0, true, false, false)

	created := 0
	destroyed := 0
	g.SetMaterialization(1,
		func(r *registry.Resource) (registry.Backing, error) {
			created++
			return &fakeBacking{}, nil
		},
		func(r *registry.Resource, b registry.Backing) {
			destroyed++
		},
	)

	if err := g.AddComputePass("touch", []registry.Identifier{id}, func(b *pass.Builder) error {
		b.UnorderedAccess(pass.Ident("scratch"))
		return nil
	}); err != nil {
		t.Fatalf("AddComputePass: %v", err)
	}

	if err := g.Execute(context.Background()); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if created != 1 {
		t.Fatalf("expected 1 materialize call, got %d", created)
	}
	if res.Backing() == nil {
		t.Fatalf("expected resource to be materialized after Execute")
	}

	// Remove the pass referencing the resource and recompile: one idle
	// frame reaches the threshold of 1, so it is dematerialized.
	g.passes = nil
	g.structuralDirty = true

	if err := g.Execute(context.Background()); err != nil {
		t.Fatalf("Execute (idle frame): %v", err)
	}
	if destroyed != 1 {
		t.Fatalf("expected resource dematerialized after one idle frame past threshold, got %d destroys", destroyed)
	}
}

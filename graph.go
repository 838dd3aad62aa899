package rendergraph

import (
	"context"
	"fmt"

	"github.com/gogpu/rendergraph/alias"
	"github.com/gogpu/rendergraph/compiler"
	"github.com/gogpu/rendergraph/executor"
	"github.com/gogpu/rendergraph/materialize"
	"github.com/gogpu/rendergraph/pass"
	"github.com/gogpu/rendergraph/registry"
	"github.com/gogpu/rendergraph/track"
)

// Updater is the pre-execute hook a concrete pass implementation may
// attach: called once per Update, before the compiled plan executes.
type Updater interface {
	Update(ctx context.Context) error
}

// aliasInfo is the per-resource aliasing policy a host opts a resource
// into via ConfigureAliasing. Resources never configured default to
// AllowAlias=false, which ineligible() in package alias excludes from
// every aliasing run regardless of Settings.AutoAliasMode.
type aliasInfo struct {
	sizeBytes     uint64
	alignment     uint64
	allowAlias    bool
	legacyInterop bool
	multiOwner    bool
}

type declaredPass struct {
	name     string
	kind     pass.Kind
	allowed  []registry.Identifier
	declare  func(*pass.Builder) error
	updater  Updater
	compiled *pass.Pass
}

// Graph is the top-level façade: a declared set of passes over a
// Registry, compiled by the Compiler and aliasing Planner into a Plan,
// kept materialized by a materialize.Manager, and driven by an
// Executor. It owns no threading model of its own — like the rest of
// this package's state, it is meant to be mutated from a single
// thread per frame (§5).
type Graph struct {
	Settings *Settings

	reg *registry.Registry

	passes []*declaredPass

	resources    []*registry.Resource
	resourceSeen map[registry.GlobalID]bool
	aliasOpts    map[registry.GlobalID]aliasInfo

	plan            *compiler.Plan
	snapshot        map[registry.GlobalID]uint32
	structuralDirty bool

	materializer *materialize.Manager
	create       materialize.CreateFunc
	destroy      materialize.DestroyFunc

	aliasTracker *alias.Tracker
	aliasPlan    *alias.Plan

	exec *executor.Executor
}

// New creates a Graph over reg, using settings for its compile-time
// policy (or DefaultSettings() if nil).
func New(reg *registry.Registry, settings *Settings) *Graph {
	if settings == nil {
		settings = DefaultSettings()
	}
	return &Graph{
		Settings:        settings,
		reg:             reg,
		resourceSeen:    make(map[registry.GlobalID]bool),
		aliasOpts:       make(map[registry.GlobalID]aliasInfo),
		structuralDirty: true,
	}
}

// RegisterResource binds id to res in the underlying registry and
// starts tracking res for generation-staleness and materialization
// bookkeeping.
func (g *Graph) RegisterResource(id registry.Identifier, res *registry.Resource) registry.Handle {
	h := g.reg.RegisterOrUpdate(id, res)
	g.track(res)
	return h
}

// RegisterResolver keys a lazily-expanded resource list under id, for
// pass declarations that request it via RequestResolver.
func (g *Graph) RegisterResolver(id registry.Identifier, r registry.Resolver) {
	g.reg.RegisterResolver(id, r)
}

// ConfigureAliasing opts res into automatic aliasing consideration.
// Resources never configured are excluded from every aliasing run,
// matching the package alias default of "not aliasable unless told
// otherwise".
func (g *Graph) ConfigureAliasing(res *registry.Resource, sizeBytes, alignment uint64, allowAlias, legacyInterop, multiOwner bool) {
	g.aliasOpts[res.ID()] = aliasInfo{
		sizeBytes: sizeBytes, alignment: alignment,
		allowAlias: allowAlias, legacyInterop: legacyInterop, multiOwner: multiOwner,
	}
}

// SetMaterialization installs the host's create/destroy callbacks and
// the idle-frame threshold governing automatic dematerialization.
// Only resources whose ConfigureAliasing call set allowAlias are
// dematerialized when idle; other resources stay materialized once
// created.
func (g *Graph) SetMaterialization(idleThreshold uint32, create materialize.CreateFunc, destroy materialize.DestroyFunc) {
	g.materializer = materialize.New(idleThreshold)
	g.create = create
	g.destroy = destroy
	for _, res := range g.resources {
		g.materializer.Track(res, g.aliasOpts[res.ID()].allowAlias)
	}
}

// SetExecutor installs the Executor used by Execute to drive the
// compiled Plan against a real device.
func (g *Graph) SetExecutor(exec *executor.Executor) {
	g.exec = exec
}

func (g *Graph) track(res *registry.Resource) {
	if g.resourceSeen[res.ID()] {
		return
	}
	g.resourceSeen[res.ID()] = true
	g.resources = append(g.resources, res)
	if g.materializer != nil {
		g.materializer.Track(res, g.aliasOpts[res.ID()].allowAlias)
	}
}

// AddRenderPass declares a graphics-queue pass. declare populates the
// builder's category buckets (and, via SetRecorder/SetDeclarer, any
// dynamic or recorder-derived requirements); allowed restricts which
// identifiers the pass may request through its view.
func (g *Graph) AddRenderPass(name string, allowed []registry.Identifier, declare func(*pass.Builder) error) error {
	return g.addPass(name, pass.KindRender, allowed, declare, nil)
}

// AddComputePass declares a compute-queue pass (async compute if
// Settings.UseAsyncCompute is enabled by the host's queue wiring).
func (g *Graph) AddComputePass(name string, allowed []registry.Identifier, declare func(*pass.Builder) error) error {
	return g.addPass(name, pass.KindCompute, allowed, declare, nil)
}

// AddCopyPass declares a copy-queue pass, restricted by the builder
// itself to copy-source/copy-dest/legacy-interop buckets.
func (g *Graph) AddCopyPass(name string, allowed []registry.Identifier, declare func(*pass.Builder) error) error {
	return g.addPass(name, pass.KindCopy, allowed, declare, nil)
}

// SetUpdater attaches a pre-execute hook to the first added pass
// named name, invoked once per Update call before the pass runs.
func (g *Graph) SetUpdater(name string, updater Updater) {
	for _, dp := range g.passes {
		if dp.name == name {
			dp.updater = updater
			return
		}
	}
}

func (g *Graph) addPass(name string, kind pass.Kind, allowed []registry.Identifier, declare func(*pass.Builder) error, updater Updater) error {
	view := registry.NewView(g.reg, allowed...)
	b := pass.NewBuilder(view, kind, name)
	if err := declare(b); err != nil {
		return fmt.Errorf("rendergraph: declare pass %q: %w", name, err)
	}
	p, err := b.Finalize()
	if err != nil {
		return fmt.Errorf("rendergraph: finalize pass %q: %w", name, err)
	}
	for _, req := range p.StaticResourceRequirements {
		g.track(req.Resource)
	}
	g.passes = append(g.passes, &declaredPass{
		name: name, kind: kind, allowed: allowed, declare: declare, updater: updater, compiled: p,
	})
	g.structuralDirty = true
	return nil
}

// CompileStructural recompiles the schedule, batches, barriers, sync
// points, and (if enabled) the aliasing plan. It always recompiles
// when called; the caller (typically Execute) is responsible for
// deciding whether a
// recompile is needed (pass set changed, or any tracked resource's
// generation moved since the last compile).
func (g *Graph) CompileStructural() error {
	finalized := make([]*pass.Pass, len(g.passes))
	for i, dp := range g.passes {
		finalized[i] = dp.compiled
	}

	plan, err := compiler.Compile(finalized, nil)
	if err != nil {
		return fmt.Errorf("rendergraph: compile: %w", err)
	}
	g.plan = plan
	g.snapshot = materialize.Snapshot(g.resources)
	g.structuralDirty = false

	if g.Settings.Snapshot().AutoAliasMode != alias.Off {
		g.aliasPlan = g.planAliasing(plan)
	} else {
		g.aliasPlan = nil
	}
	return nil
}

// planAliasing builds aliasing candidates from every resource that
// appears in plan's schedule, using its first/last index in the
// schedule as the resource's lifetime interval, and runs the
// configured planner over them.
func (g *Graph) planAliasing(plan *compiler.Plan) *alias.Plan {
	firstUse := make(map[registry.GlobalID]int)
	lastUse := make(map[registry.GlobalID]int)
	legacyUse := make(map[registry.GlobalID]bool)
	for i, p := range plan.Schedule {
		for _, req := range p.StaticResourceRequirements {
			id := req.Resource.ID()
			if _, ok := firstUse[id]; !ok {
				firstUse[id] = i
			}
			lastUse[id] = i
			if req.State.Access&track.AccessLegacyInterop != 0 {
				legacyUse[id] = true
			}
		}
	}

	values := g.Settings.Snapshot()
	candidates := make([]alias.Candidate, 0, len(firstUse))
	declOrder := 0
	for _, res := range g.resources {
		id := res.ID()
		first, ok := firstUse[id]
		if !ok {
			continue
		}
		opts := g.aliasOpts[id]
		size := opts.sizeBytes
		if size == 0 {
			size, _ = res.SizeBytes()
		}
		candidates = append(candidates, alias.Candidate{
			Resource: res, SizeBytes: size, Alignment: opts.alignment,
			FirstUse: first, LastUse: lastUse[id],
			AllowAlias: opts.allowAlias, LegacyInterop: opts.legacyInterop || legacyUse[id], MultiOwner: opts.multiOwner,
			DeclOrder: declOrder,
		})
		declOrder++
	}

	if g.aliasTracker == nil {
		g.aliasTracker = alias.NewTracker(values.AutoAliasPoolRetireIdleFrames)
	}

	return alias.BuildPlan(candidates, alias.Options{
		Mode:                values.AutoAliasMode,
		Strategy:            values.AutoAliasPackingStrategy,
		GrowthHeadroom:      values.AutoAliasPoolGrowthHeadroom,
		RetireIdleFrames:    values.AutoAliasPoolRetireIdleFrames,
		LogExclusionReasons: values.AutoAliasLogExclusionReasons,
	})
}

// AliasPlan returns the most recently computed aliasing plan, or nil
// if aliasing is disabled or no compile has run yet.
func (g *Graph) AliasPlan() *alias.Plan {
	return g.aliasPlan
}

// Update calls every declared pass's attached updater, in declaration
// order, stopping at the first error.
func (g *Graph) Update(ctx context.Context) error {
	for _, dp := range g.passes {
		if dp.updater == nil {
			continue
		}
		if err := dp.updater.Update(ctx); err != nil {
			return fmt.Errorf("rendergraph: update pass %q: %w", dp.name, err)
		}
	}
	return nil
}

// Execute recompiles the plan if the pass set or any tracked
// resource's generation has changed since the last compile, ensures
// every referenced resource is materialized, drives the Executor, and
// advances the materialization and aliasing idle-pool bookkeeping for
// the frame just submitted.
func (g *Graph) Execute(ctx context.Context) error {
	if g.structuralDirty || g.plan == nil || materialize.Stale(g.snapshot, g.resources) {
		if err := g.CompileStructural(); err != nil {
			return err
		}
	}

	referenced := make(map[registry.GlobalID]bool)
	if g.materializer != nil {
		for _, p := range g.plan.Schedule {
			for _, req := range p.StaticResourceRequirements {
				referenced[req.Resource.ID()] = true
				if err := g.materializer.EnsureMaterialized(req.Resource, g.create); err != nil {
					return fmt.Errorf("rendergraph: materialize %q: %w", p.Name, err)
				}
			}
		}
	}

	if g.exec != nil {
		if err := g.exec.Execute(ctx, g.plan); err != nil {
			return err
		}
	}

	if g.materializer != nil {
		g.materializer.EndFrame(referenced, g.destroy)
	}
	if g.aliasTracker != nil && g.aliasPlan != nil {
		g.aliasTracker.Observe(g.aliasPlan)
	}
	return nil
}

package pass

import (
	"fmt"

	"github.com/gogpu/rendergraph/rangespec"
	"github.com/gogpu/rendergraph/registry"
	"github.com/gogpu/rendergraph/track"
)

type bucketEntry struct {
	res *registry.Resource
	rng rangespec.RangeSpec
}

// Builder is a fluent, one-shot declaration object: each category
// method normalizes its accepted input forms into (handle, range)
// pairs, and Finalize computes the pass's static resource
// requirements by folding every bucket through a fresh per-resource
// tracker.
type Builder struct {
	view  *registry.View
	name  string
	kind  Kind
	queue QueueKind

	identifierSet []registry.Identifier
	buckets       map[Category][]bucketEntry
	internal      []InternalTransition
	recorder      Recorder
	declarer      Declarer

	err error
}

// NewBuilder starts declaring a pass of the given kind and name,
// resolving identifier inputs through view.
func NewBuilder(view *registry.View, kind Kind, name string) *Builder {
	return &Builder{
		view:    view,
		name:    name,
		kind:    kind,
		queue:   kind.DefaultQueue(),
		buckets: make(map[Category][]bucketEntry),
	}
}

// WithQueue overrides the pass's default queue preference.
func (b *Builder) WithQueue(q QueueKind) *Builder {
	b.queue = q
	return b
}

// SetRecorder attaches the immediate recorder whose accumulated
// per-resource access is merged into this pass's requirements.
func (b *Builder) SetRecorder(r Recorder) *Builder {
	b.recorder = r
	return b
}

// SetDeclarer attaches a hook invoked at the start of Finalize, before
// requirements are computed, so passes with dynamic inputs can push
// additional declarations.
func (b *Builder) SetDeclarer(d Declarer) *Builder {
	b.declarer = d
	return b
}

// DeclareInternalTransition records an end-state override applied
// after this pass executes, outside its declared buckets.
func (b *Builder) DeclareInternalTransition(r *registry.Resource, rng rangespec.RangeSpec, state track.State) {
	resolved := rangespec.Resolve(rng, r.NumMips(), r.NumSlices())
	if resolved.Empty() {
		return
	}
	b.internal = append(b.internal, InternalTransition{Resource: r, Range: resolved, State: state})
}

func (b *Builder) add(cat Category, inputs ...Input) {
	if b.err != nil {
		return
	}
	for _, in := range inputs {
		got, err := in.resolve(b)
		if err != nil {
			b.err = err
			return
		}
		for _, g := range got {
			if g.res == nil {
				continue
			}
			b.buckets[cat] = append(b.buckets[cat], bucketEntry{res: g.res, rng: g.rng})
		}
	}
}

func (b *Builder) ShaderRead(inputs ...Input) *Builder       { b.add(ShaderRead, inputs...); return b }
func (b *Builder) RenderTarget(inputs ...Input) *Builder     { b.add(RenderTarget, inputs...); return b }
func (b *Builder) DepthRead(inputs ...Input) *Builder        { b.add(DepthRead, inputs...); return b }
func (b *Builder) DepthWrite(inputs ...Input) *Builder       { b.add(DepthWrite, inputs...); return b }
func (b *Builder) ConstantRead(inputs ...Input) *Builder     { b.add(ConstantRead, inputs...); return b }
func (b *Builder) UnorderedAccess(inputs ...Input) *Builder  { b.add(UnorderedAccess, inputs...); return b }
func (b *Builder) CopySource(inputs ...Input) *Builder       { b.add(CopySource, inputs...); return b }
func (b *Builder) CopyDest(inputs ...Input) *Builder         { b.add(CopyDest, inputs...); return b }
func (b *Builder) Indirect(inputs ...Input) *Builder         { b.add(Indirect, inputs...); return b }
func (b *Builder) LegacyInterop(inputs ...Input) *Builder    { b.add(LegacyInterop, inputs...); return b }

// perResource accumulates the resolved (range, state) contributions
// for one resource across every bucket, in bucket-then-declaration
// order, ready to fold through a fresh tracker.
type perResource struct {
	res     *registry.Resource
	entries []trackedEntry
}

type trackedEntry struct {
	rng   rangespec.SubresourceRange
	state track.State
}

// Finalize computes the pass's static resource requirements. Copy
// passes (Kind == KindCopy) are restricted to copy-source/copy-dest/
// legacy-interop buckets by the category→queue mapping itself; any
// other bucket populated on a copy pass surfaces as an error here.
func (b *Builder) Finalize() (*Pass, error) {
	if b.declarer != nil {
		if err := b.declarer.DeclareUsage(b); err != nil {
			return nil, err
		}
	}
	if b.err != nil {
		return nil, b.err
	}

	byID := make(map[registry.GlobalID]*perResource)
	order := make([]registry.GlobalID, 0)

	// Categories are walked in a fixed order (not map iteration order)
	// so that a resource declared in more than one bucket deterministically
	// settles on the same end state across recompiles (§8 property 8).
	for cat := ShaderRead; cat <= LegacyInterop; cat++ {
		entries := b.buckets[cat]
		for _, e := range entries {
			state, err := stateFor(cat, b.queue, e.res)
			if err != nil {
				return nil, fmt.Errorf("pass %q: %w", b.name, err)
			}
			resolvedRange := rangespec.Resolve(e.rng, e.res.NumMips(), e.res.NumSlices())
			if resolvedRange.Empty() {
				continue // §8 boundary property 10: dropped silently
			}
			pr, ok := byID[e.res.ID()]
			if !ok {
				pr = &perResource{res: e.res}
				byID[e.res.ID()] = pr
				order = append(order, e.res.ID())
			}
			pr.entries = append(pr.entries, trackedEntry{rng: resolvedRange, state: state})
		}
	}

	if b.recorder != nil {
		for _, req := range b.recorder.Requirements() {
			pr, ok := byID[req.Resource.ID()]
			if !ok {
				pr = &perResource{res: req.Resource}
				byID[req.Resource.ID()] = pr
				order = append(order, req.Resource.ID())
			}
			pr.entries = append(pr.entries, trackedEntry{rng: req.Range, state: req.State})
		}
	}

	var requirements []ResourceRequirement
	for _, id := range order {
		pr := byID[id]
		tr := track.New(pr.res.NumMips(), pr.res.NumSlices())
		for _, e := range pr.entries {
			tr.Apply(e.rng, e.state)
		}
		for _, seg := range tr.Segments() {
			if seg.State.Equal(track.Common) {
				continue
			}
			requirements = append(requirements, ResourceRequirement{
				Resource: pr.res,
				Range:    seg.Range,
				State:    seg.State,
			})
		}
	}

	return &Pass{
		Name:                       b.name,
		Kind:                       b.kind,
		Queue:                      b.queue,
		identifierSet:              b.identifierSet,
		StaticResourceRequirements: requirements,
		InternalTransitions:        b.internal,
	}, nil
}

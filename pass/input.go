package pass

import (
	"github.com/gogpu/rendergraph/rangespec"
	"github.com/gogpu/rendergraph/registry"
)

// Input is one of the accepted forms a pass declares a resource
// argument in: a concrete resource, a (resource, range) pair, an
// identifier, an (identifier, range) pair, or a resolver. Construct
// values with Res, ResRange, Ident, IdentRange, or FromResolver; a
// slice of any of these is itself a valid argument to the builder's
// variadic category methods.
type Input interface {
	resolve(b *Builder) ([]resolved, error)
}

type resolved struct {
	id  registry.Identifier // zero value if the input didn't carry one
	res *registry.Resource
	rng rangespec.RangeSpec
}

type resourceInput struct {
	res *registry.Resource
	rng rangespec.RangeSpec
}

func (in resourceInput) resolve(*Builder) ([]resolved, error) {
	return []resolved{{res: in.res, rng: in.rng}}, nil
}

// Res declares a concrete resource reference over its whole extent.
func Res(r *registry.Resource) Input {
	return resourceInput{res: r, rng: rangespec.Whole()}
}

// ResRange declares a concrete resource reference over a sub-range.
func ResRange(r *registry.Resource, rng rangespec.RangeSpec) Input {
	return resourceInput{res: r, rng: rng}
}

type identifierInput struct {
	id  registry.Identifier
	rng rangespec.RangeSpec
}

func (in identifierInput) resolve(b *Builder) ([]resolved, error) {
	h, err := b.view.RequestHandle(in.id)
	if err != nil {
		return nil, err
	}
	res := b.view.Resolve(h)
	if res == nil {
		return nil, nil // stale/unresolvable: caller treats as empty declaration
	}
	b.identifierSet = append(b.identifierSet, in.id)
	return []resolved{{id: in.id, res: res, rng: in.rng}}, nil
}

// Ident declares a resource by identifier string ("A::B::C") over its
// whole extent, resolved through the builder's view when the category
// method that receives it is called.
func Ident(id string) Input {
	return identifierInput{id: registry.ParseIdentifier(id), rng: rangespec.Whole()}
}

// IdentRange declares a resource by identifier over a sub-range.
func IdentRange(id string, rng rangespec.RangeSpec) Input {
	return identifierInput{id: registry.ParseIdentifier(id), rng: rng}
}

type resolverInput struct {
	resolver registry.Resolver
}

func (in resolverInput) resolve(*Builder) ([]resolved, error) {
	whole := rangespec.Whole()
	resources := in.resolver.Resolve()
	out := make([]resolved, len(resources))
	for i, r := range resources {
		out[i] = resolved{res: r, rng: whole}
	}
	return out, nil
}

// FromResolver expands a resolver into one entry per resource it
// currently returns.
func FromResolver(r registry.Resolver) Input {
	return resolverInput{resolver: r}
}

type listInput struct {
	items []Input
}

func (in listInput) resolve(b *Builder) ([]resolved, error) {
	var out []resolved
	for _, item := range in.items {
		got, err := item.resolve(b)
		if err != nil {
			return nil, err
		}
		out = append(out, got...)
	}
	return out, nil
}

// List declares an iterable of any other accepted form.
func List(items ...Input) Input {
	return listInput{items: items}
}

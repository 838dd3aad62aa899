package pass

import "github.com/gogpu/rendergraph/registry"

// Recorder is the subset of the immediate recorder's output a pass
// merges into its requirements at Finalize time: the accumulated
// per-resource access the recorder's bytecode stream implies.
type Recorder interface {
	Requirements() []ResourceRequirement
}

// Declarer lets a concrete pass implementation push additional
// declarations into the builder once Finalize begins, so passes with
// input sets only known at declare-time (e.g. a variable-length list
// of shadow-map views) can still participate.
type Declarer interface {
	DeclareUsage(b *Builder) error
}

// Pass is the finalized result of a Builder: a name, kind, the
// identifiers it is allowed to touch, and the resource requirements
// and internal transitions computed from its declared buckets.
type Pass struct {
	Name  string
	Kind  Kind
	Queue QueueKind

	identifierSet []registry.Identifier

	StaticResourceRequirements []ResourceRequirement
	InternalTransitions        []InternalTransition
}

// IdentifierSet returns the identifiers (and identifier prefixes) this
// pass declared, used for access-control auditing.
func (p *Pass) IdentifierSet() []registry.Identifier {
	return p.identifierSet
}

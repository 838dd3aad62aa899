package registry

// View restricts a pass declaration to a set of identifier namespaces
// it was granted when the pass was built. It also pins the registry
// epoch at creation time so handles resolved through it are detected
// as stale across a Registry.Reset.
type View struct {
	registry *Registry
	allowed  []Identifier
	epoch    uint32
}

// NewView returns a View over reg restricted to the given allowed
// identifier prefixes. A pass may request any identifier that has one
// of these prefixes (HasPrefix), or an exact match.
func NewView(reg *Registry, allowed ...Identifier) *View {
	cp := make([]Identifier, len(allowed))
	copy(cp, allowed)
	return &View{registry: reg, allowed: cp, epoch: reg.Epoch()}
}

// Allows reports whether id falls under one of the view's granted
// namespaces.
func (v *View) Allows(id Identifier) bool {
	for _, a := range v.allowed {
		if id.HasPrefix(a) {
			return true
		}
	}
	return false
}

// RequestHandle resolves id to a Handle, failing with ErrAccessDenied
// if id is outside every namespace granted to this view (spec scenario
// E5: identifier access control).
func (v *View) RequestHandle(id Identifier) (Handle, error) {
	if !v.Allows(id) {
		return Invalid, ErrAccessDenied
	}
	return v.registry.MakeHandle(id), nil
}

// Resolve dereferences h to its live Resource, additionally failing if
// the underlying registry was Reset after this view was created.
func (v *View) Resolve(h Handle) *Resource {
	if h.Epoch != v.epoch {
		return nil
	}
	return v.registry.Resolve(h)
}

// RequestResolver resolves id to a Resolver, failing with
// ErrAccessDenied under the same rule as RequestHandle.
func (v *View) RequestResolver(id Identifier) (Resolver, error) {
	if !v.Allows(id) {
		return nil, ErrAccessDenied
	}
	return v.registry.ResolverFor(id), nil
}

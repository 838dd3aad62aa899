package registry

import "testing"

func TestRegisterOrUpdate_InvalidatesPriorHandle(t *testing.T) {
	reg := New()
	id := ParseIdentifier("scene::colorTarget")
	res1 := NewResource(1, 1, 1, true)

	h1 := reg.RegisterOrUpdate(id, res1)
	if reg.Resolve(h1) != res1 {
		t.Fatalf("h1 should resolve to res1")
	}

	res2 := NewResource(2, 1, 1, true)
	h2 := reg.RegisterOrUpdate(id, res2)

	if reg.Resolve(h1) != nil {
		t.Errorf("h1 should be invalidated by the second RegisterOrUpdate, got non-nil")
	}
	if reg.Resolve(h2) != res2 {
		t.Errorf("h2 should resolve to res2")
	}
}

func TestMakeHandle_UnknownIdentifierIsInvalid(t *testing.T) {
	reg := New()
	h := reg.MakeHandle(ParseIdentifier("nope"))
	if h.IsValid() {
		t.Error("handle for unregistered identifier should be invalid")
	}
	if reg.Resolve(h) != nil {
		t.Error("resolving an invalid handle should yield nil")
	}
}

func TestRegisterAnonymous_ResolvesWhileAlive(t *testing.T) {
	reg := New()
	res := NewResource(7, 1, 1, false)
	h := reg.RegisterAnonymous(res)
	if reg.Resolve(h) != res {
		t.Fatalf("anonymous handle should resolve while resource is alive")
	}
}

func TestEphemeralHandle_BypassesSlotTable(t *testing.T) {
	res := NewResource(9, 2, 1, true)
	h := NewEphemeral(res)

	if !h.IsEphemeral() {
		t.Fatal("expected ephemeral handle")
	}
	reg := New()
	if reg.Resolve(h) != res {
		t.Error("ephemeral handle should resolve independent of any registry")
	}
}

func TestReset_InvalidatesHandlesAcrossEpoch(t *testing.T) {
	reg := New()
	id := ParseIdentifier("frame::depth")
	res := NewResource(3, 1, 1, true)
	h := reg.RegisterOrUpdate(id, res)

	reg.Reset()

	if reg.Resolve(h) != nil {
		t.Error("handle issued before Reset should be invalidated by the epoch bump")
	}
}

func TestInternKey_Idempotent(t *testing.T) {
	reg := New()
	id := ParseIdentifier("a::b")
	first := reg.InternKey(id)
	second := reg.InternKey(id)
	if first != second {
		t.Errorf("InternKey(%v) = %d then %d, want stable slot", id, first, second)
	}
}

func TestView_RequestHandle_DeniesOutsideNamespace(t *testing.T) {
	reg := New()
	allowedID := ParseIdentifier("gbuffer::albedo")
	deniedID := ParseIdentifier("shadow::depth")
	res := NewResource(1, 1, 1, true)
	reg.RegisterOrUpdate(allowedID, res)
	reg.RegisterOrUpdate(deniedID, NewResource(2, 1, 1, true))

	view := NewView(reg, ParseIdentifier("gbuffer"))

	if _, err := view.RequestHandle(allowedID); err != nil {
		t.Errorf("expected allowed identifier to succeed, got %v", err)
	}
	if _, err := view.RequestHandle(deniedID); err != ErrAccessDenied {
		t.Errorf("expected ErrAccessDenied for out-of-namespace identifier, got %v", err)
	}
}

func TestView_Resolve_StaleAcrossReset(t *testing.T) {
	reg := New()
	id := ParseIdentifier("gbuffer::albedo")
	res := NewResource(1, 1, 1, true)
	reg.RegisterOrUpdate(id, res)

	view := NewView(reg, ParseIdentifier("gbuffer"))
	h, err := view.RequestHandle(id)
	if err != nil {
		t.Fatalf("RequestHandle: %v", err)
	}
	if view.Resolve(h) != res {
		t.Fatalf("expected view to resolve freshly granted handle")
	}

	reg.Reset()
	if view.Resolve(h) != nil {
		t.Error("view created before Reset should treat its handles as stale")
	}
}

func TestResolverRoundTrip(t *testing.T) {
	reg := New()
	id := ParseIdentifier("pool::frame")
	r := &fakeResolver{resources: []*Resource{NewResource(1, 1, 1, true)}}
	reg.RegisterResolver(id, r)

	got := reg.ResolverFor(id)
	if got == nil {
		t.Fatal("expected resolver to be found")
	}
	if len(got.Resolve()) != 1 {
		t.Errorf("resolver returned %d resources, want 1", len(got.Resolve()))
	}
}

type fakeResolver struct {
	resources []*Resource
}

func (f *fakeResolver) Resolve() []*Resource { return f.resources }
func (f *fakeResolver) Clone() Resolver {
	cp := make([]*Resource, len(f.resources))
	copy(cp, f.resources)
	return &fakeResolver{resources: cp}
}

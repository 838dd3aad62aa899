package registry

import "sync/atomic"

// GlobalID is a stable, host-assigned 64-bit identity for a Resource,
// distinct from the registry slot it may currently occupy.
type GlobalID uint64

// Backing is the opaque GPU allocation behind a materialized
// Resource. Its concrete shape is owned by the materialization
// manager and the rhi package; the registry only stores a reference
// to it.
type Backing interface {
	// Released reports whether the backing has already been torn down.
	Released() bool
}

// Resource is an abstract, host-owned entity tracked by the compiler:
// a stable global id, a mip/slice extent, optional buffer-like byte
// size, whether it has a meaningful layout (textures do, buffers
// don't), and a possibly-absent link to its GPU backing.
//
// A Resource holds no reference back to the registry that interns
// it — handles are the only cross-reference, which avoids a
// reference cycle between registry and resource.
type Resource struct {
	id         GlobalID
	numMips    uint32
	numSlices  uint32
	hasSize    bool
	sizeBytes  uint64
	hasLayout  bool
	generation atomic.Uint32
	backing    atomic.Pointer[Backing]
}

// NewResource creates a texture-like or buffer-like resource. Pass
// hasLayout=true for textures (which have a layout state) and false
// for buffers (which never transition layout, only access/sync).
func NewResource(id GlobalID, numMips, numSlices uint32, hasLayout bool) *Resource {
	if numMips == 0 {
		numMips = 1
	}
	if numSlices == 0 {
		numSlices = 1
	}
	return &Resource{
		id:        id,
		numMips:   numMips,
		numSlices: numSlices,
		hasLayout: hasLayout,
	}
}

// WithSize attaches a byte size to a buffer-like resource and returns
// the same Resource for chaining.
func (r *Resource) WithSize(bytes uint64) *Resource {
	r.hasSize = true
	r.sizeBytes = bytes
	return r
}

// ID returns the resource's stable global id.
func (r *Resource) ID() GlobalID { return r.id }

// NumMips returns the mip count (always >= 1).
func (r *Resource) NumMips() uint32 { return r.numMips }

// NumSlices returns the slice count (always >= 1).
func (r *Resource) NumSlices() uint32 { return r.numSlices }

// HasLayout reports whether this resource has a meaningful layout
// state (true for textures, false for buffers).
func (r *Resource) HasLayout() bool { return r.hasLayout }

// SizeBytes returns the resource's byte size and whether one was set.
func (r *Resource) SizeBytes() (uint64, bool) { return r.sizeBytes, r.hasSize }

// Generation returns the current materialization generation. It is
// incremented every time the resource is (re)materialized, and used
// to invalidate compiled plans that captured an older generation.
func (r *Resource) Generation() uint32 { return r.generation.Load() }

// Backing returns the current GPU backing, or nil if the resource is
// currently unmaterialized.
func (r *Resource) Backing() Backing {
	p := r.backing.Load()
	if p == nil {
		return nil
	}
	return *p
}

// SetBacking installs a new backing and bumps the generation counter.
// Called by the materialization manager after a successful
// materialize. Passing nil clears the backing (dematerialize) without
// bumping the generation — only a fresh materialization does that.
func (r *Resource) SetBacking(b Backing) {
	if b == nil {
		r.backing.Store(nil)
		return
	}
	r.backing.Store(&b)
	r.generation.Add(1)
}

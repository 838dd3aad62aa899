// Package registry provides stable, generation-checked handles onto
// Resources: an interning table keyed by ResourceIdentifier, ephemeral
// handles for resources outside the slot table, and access-control
// Views used by pass declarations to restrict which identifiers a
// pass may touch.
package registry

import (
	"hash/fnv"
	"strings"
)

// Identifier names a resource as an ordered sequence of segments,
// written "a::b::c". Equality and prefix tests are segment-wise.
type Identifier struct {
	segments []string
}

// ParseIdentifier splits the "a::b::c" form into an Identifier.
func ParseIdentifier(s string) Identifier {
	if s == "" {
		return Identifier{}
	}
	return Identifier{segments: strings.Split(s, "::")}
}

// NewIdentifier builds an Identifier from already-split segments.
func NewIdentifier(segments ...string) Identifier {
	cp := make([]string, len(segments))
	copy(cp, segments)
	return Identifier{segments: cp}
}

// String renders the identifier back to "a::b::c" form.
func (id Identifier) String() string {
	return strings.Join(id.segments, "::")
}

// Segments returns the identifier's segments. The returned slice must
// not be mutated by the caller.
func (id Identifier) Segments() []string {
	return id.segments
}

// Equal reports whether two identifiers have exactly the same segments.
func (id Identifier) Equal(other Identifier) bool {
	if len(id.segments) != len(other.segments) {
		return false
	}
	for i := range id.segments {
		if id.segments[i] != other.segments[i] {
			return false
		}
	}
	return true
}

// HasPrefix reports whether prefix's segments are a prefix of id's
// segments, i.e. a pass declaring prefix may touch id.
func (id Identifier) HasPrefix(prefix Identifier) bool {
	if len(prefix.segments) > len(id.segments) {
		return false
	}
	for i := range prefix.segments {
		if id.segments[i] != prefix.segments[i] {
			return false
		}
	}
	return true
}

// Hash returns a deterministic hash of the identifier, suitable for
// use as a map key source or interning key.
func (id Identifier) Hash() uint64 {
	h := fnv.New64a()
	for i, seg := range id.segments {
		if i > 0 {
			_, _ = h.Write([]byte{0})
		}
		_, _ = h.Write([]byte(seg))
	}
	return h.Sum64()
}

// IsZero reports whether the identifier has no segments (the
// "unnamed" identifier used by anonymous registrations).
func (id Identifier) IsZero() bool {
	return len(id.segments) == 0
}

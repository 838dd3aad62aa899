// Package track implements the per-resource symbolic state tracker:
// a piecewise-constant map from subresource to (access, layout, sync)
// that computes the minimal set of transitions needed to move part of
// a resource into a new state, splitting and coalescing segments as
// it goes.
package track

import "fmt"

// Access describes how a subresource is used. Unlike a graphics API's
// coarse usage flags, Access distinguishes the specific binding a
// pass declared so the compiler can derive the correct layout and
// detect same-queue write/write and cross-queue UAV hazards.
type Access uint32

// AccessCommon is the default/idle state a subresource starts in.
const AccessCommon Access = 0

const (
	// AccessShaderRead marks binding as a shader resource (SRV).
	AccessShaderRead Access = 1 << iota
	// AccessRenderTarget marks binding as a render target.
	AccessRenderTarget
	// AccessDepthRead marks binding as a read-only depth/stencil target.
	AccessDepthRead
	// AccessDepthWrite marks binding as a writable depth/stencil target.
	AccessDepthWrite
	// AccessConstantRead marks binding as a constant/uniform buffer (CBV).
	AccessConstantRead
	// AccessUnorderedAccess marks binding as a UAV (read and/or write).
	AccessUnorderedAccess
	// AccessCopySource marks binding as a copy source.
	AccessCopySource
	// AccessCopyDest marks binding as a copy destination.
	AccessCopyDest
	// AccessIndirectArgument marks binding as an indirect argument buffer.
	AccessIndirectArgument
	// AccessLegacyInterop marks binding for resources shared with a
	// legacy/external API outside the tracker's model; such resources
	// are never aliasing candidates (see alias package eligibility).
	AccessLegacyInterop
)

// IsReadOnly reports whether the access implies only reads. UAV access
// is conservatively treated as a write because the tracker cannot
// distinguish UAV reads from UAV writes by the access bit alone; the
// compiler (compiler/node.go) records a separate isUAV flag per touch
// but does not tell UAV reads from UAV writes either.
func (a Access) IsReadOnly() bool {
	const writeMask = AccessRenderTarget | AccessDepthWrite | AccessUnorderedAccess | AccessCopyDest
	return a&writeMask == 0
}

// Layout is the physical layout/state a resource must be in for a
// given access. Buffers have no meaningful layout and always report
// LayoutCommon.
type Layout uint8

const (
	LayoutCommon Layout = iota
	LayoutRenderTarget
	LayoutDepthRead
	LayoutDepthWrite
	LayoutShaderResource
	LayoutUnorderedAccess
	LayoutCopySource
	LayoutCopyDest
)

func (l Layout) String() string {
	switch l {
	case LayoutCommon:
		return "Common"
	case LayoutRenderTarget:
		return "RenderTarget"
	case LayoutDepthRead:
		return "DepthRead"
	case LayoutDepthWrite:
		return "DepthWrite"
	case LayoutShaderResource:
		return "ShaderResource"
	case LayoutUnorderedAccess:
		return "UnorderedAccess"
	case LayoutCopySource:
		return "CopySource"
	case LayoutCopyDest:
		return "CopyDest"
	default:
		return "Unknown"
	}
}

// Sync identifies which pipeline stage(s) must complete before or
// after a transition. Sync does not participate in state equality:
// it governs when a barrier is satisfied, not whether one is needed.
type Sync uint32

const SyncNone Sync = 0

const (
	SyncDraw Sync = 1 << iota
	SyncCompute
	SyncCopy
	SyncAll = SyncDraw | SyncCompute | SyncCopy
)

// State is the tracked (access, layout, sync) triple for a subresource.
type State struct {
	Access Access
	Layout Layout
	Sync   Sync
}

// Common is the initial state of every subresource.
var Common = State{Access: AccessCommon, Layout: LayoutCommon, Sync: SyncAll}

// Equal reports state equality ignoring Sync, per §3: "Equality
// ignores sync (sync determines when a barrier completes but not
// whether one is needed)."
func (s State) Equal(other State) bool {
	return s.Access == other.Access && s.Layout == other.Layout
}

func (s State) String() string {
	return fmt.Sprintf("(access=%#x layout=%s sync=%#x)", s.Access, s.Layout, s.Sync)
}

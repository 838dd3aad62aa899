package pass

import (
	"fmt"

	"github.com/gogpu/rendergraph/registry"
	"github.com/gogpu/rendergraph/track"
)

// Category buckets a declared (handle, range) pair by the way the
// pass intends to use it. Copy passes only ever populate CopySource,
// CopyDest, and LegacyInterop.
type Category uint8

const (
	ShaderRead Category = iota
	RenderTarget
	DepthRead
	DepthWrite
	ConstantRead
	UnorderedAccess
	CopySource
	CopyDest
	Indirect
	LegacyInterop
)

func (c Category) String() string {
	switch c {
	case ShaderRead:
		return "shader-read"
	case RenderTarget:
		return "render-target"
	case DepthRead:
		return "depth-read"
	case DepthWrite:
		return "depth-write"
	case ConstantRead:
		return "constant-read"
	case UnorderedAccess:
		return "unordered-access"
	case CopySource:
		return "copy-source"
	case CopyDest:
		return "copy-dest"
	case Indirect:
		return "indirect"
	case LegacyInterop:
		return "legacy-interop"
	default:
		return "unknown"
	}
}

// accessMapping resolves a category to (access, layout, sync) for the
// queue the owning pass is scheduled on. The layout half is only
// meaningful for resources that HasLayout(); callers collapse it to
// track.LayoutCommon for buffer-like resources.
func accessMapping(cat Category, queue QueueKind) (track.Access, track.Layout, track.Sync, error) {
	switch queue {
	case QueueGraphics:
		return graphicsMapping(cat)
	case QueueCompute:
		return computeMapping(cat)
	case QueueCopy:
		return copyMapping(cat)
	default:
		return 0, 0, 0, fmt.Errorf("pass: unknown queue kind %d", queue)
	}
}

func graphicsMapping(cat Category) (track.Access, track.Layout, track.Sync, error) {
	switch cat {
	case ShaderRead:
		return track.AccessShaderRead, track.LayoutShaderResource, track.SyncDraw, nil
	case RenderTarget:
		return track.AccessRenderTarget, track.LayoutRenderTarget, track.SyncDraw, nil
	case DepthRead:
		return track.AccessDepthRead, track.LayoutDepthRead, track.SyncDraw, nil
	case DepthWrite:
		return track.AccessDepthWrite, track.LayoutDepthWrite, track.SyncDraw, nil
	case ConstantRead:
		return track.AccessConstantRead, track.LayoutShaderResource, track.SyncDraw, nil
	case UnorderedAccess:
		return track.AccessUnorderedAccess, track.LayoutUnorderedAccess, track.SyncDraw, nil
	case CopySource:
		return track.AccessCopySource, track.LayoutCopySource, track.SyncCopy, nil
	case CopyDest:
		return track.AccessCopyDest, track.LayoutCopyDest, track.SyncCopy, nil
	case Indirect:
		return track.AccessIndirectArgument, track.LayoutCommon, track.SyncDraw, nil
	case LegacyInterop:
		return track.AccessLegacyInterop, track.LayoutCommon, track.SyncAll, nil
	default:
		return 0, 0, 0, fmt.Errorf("pass: unknown category %d", cat)
	}
}

func computeMapping(cat Category) (track.Access, track.Layout, track.Sync, error) {
	switch cat {
	case ShaderRead:
		return track.AccessShaderRead, track.LayoutShaderResource, track.SyncCompute, nil
	case ConstantRead:
		return track.AccessConstantRead, track.LayoutShaderResource, track.SyncCompute, nil
	case UnorderedAccess:
		return track.AccessUnorderedAccess, track.LayoutUnorderedAccess, track.SyncCompute, nil
	case Indirect:
		return track.AccessIndirectArgument, track.LayoutCommon, track.SyncCompute, nil
	case LegacyInterop:
		return track.AccessLegacyInterop, track.LayoutCommon, track.SyncAll, nil
	case RenderTarget, DepthRead, DepthWrite:
		return 0, 0, 0, fmt.Errorf("pass: category %s has no compute-queue mapping (render-target and depth categories are disallowed on compute)", cat)
	case CopySource:
		return track.AccessCopySource, track.LayoutCopySource, track.SyncCopy, nil
	case CopyDest:
		return track.AccessCopyDest, track.LayoutCopyDest, track.SyncCopy, nil
	default:
		return 0, 0, 0, fmt.Errorf("pass: unknown category %d", cat)
	}
}

func copyMapping(cat Category) (track.Access, track.Layout, track.Sync, error) {
	switch cat {
	case CopySource:
		return track.AccessCopySource, track.LayoutCopySource, track.SyncCopy, nil
	case CopyDest:
		return track.AccessCopyDest, track.LayoutCopyDest, track.SyncCopy, nil
	case LegacyInterop:
		return track.AccessLegacyInterop, track.LayoutCommon, track.SyncCopy, nil
	default:
		return 0, 0, 0, fmt.Errorf("pass: category %s is not valid on a copy pass (copy passes only use copy-source/copy-dest/legacy-interop buckets)", cat)
	}
}

// stateFor resolves cat on queue into the ResourceState a declared
// use of res should end up in, collapsing layout to Common for
// resources that have no meaningful layout (buffers).
func stateFor(cat Category, queue QueueKind, res *registry.Resource) (track.State, error) {
	access, layout, sync, err := accessMapping(cat, queue)
	if err != nil {
		return track.State{}, err
	}
	if !res.HasLayout() {
		layout = track.LayoutCommon
	}
	return track.State{Access: access, Layout: layout, Sync: sync}, nil
}

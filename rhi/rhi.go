// Package rhi names the narrow external graphics-API surface the
// compiler and executor depend on: resource creation is out of scope
// entirely (the host materializes backings, see materialize), but
// barrier issuance, copy/clear recording, and timeline fences are
// named here by interface so the executor can drive a real API
// without this module depending on any concrete backend.
package rhi

import (
	"context"
	"time"

	"github.com/gogpu/rendergraph/rangespec"
	"github.com/gogpu/rendergraph/track"
)

// Resource is the common handle every rhi-level object satisfies.
type Resource interface {
	Destroy()
}

// Buffer is an opaque GPU buffer backing.
type Buffer interface {
	Resource
}

// Texture is an opaque GPU texture backing.
type Texture interface {
	Resource
}

// BufferBarrier describes a buffer-wide access/sync transition; buffers
// have no layout, only access and sync (§3 data model).
type BufferBarrier struct {
	Buffer   Buffer
	Prev     track.State
	New      track.State
	Discard  bool
}

// TextureBarrier describes a subresource-range layout/access/sync
// transition.
type TextureBarrier struct {
	Texture Texture
	Range   rangespec.SubresourceRange
	Prev    track.State
	New     track.State
	Discard bool
}

// CommandEncoder is the minimal recording surface the executor and
// the immediate recorder's replay drive: barrier issuance and the
// eight opcode-stream operations. Draw/dispatch recording belongs to
// concrete pass implementations and is intentionally absent.
type CommandEncoder interface {
	TransitionBuffers(barriers []BufferBarrier)
	TransitionTextures(barriers []TextureBarrier)

	CopyBufferRegion(dst, src Buffer, dstOffset, srcOffset, size uint64)
	ClearRenderTarget(target Texture, mip, slice uint32, color [4]float32)
	ClearDepthStencil(target Texture, mip, slice uint32, depth float32, clearDepth bool, stencil uint8, clearStencil bool)
	ClearUnorderedAccessFloat(target Texture, value [4]float32)
	ClearUnorderedAccessUint(target Texture, value [4]uint32)
	CopyTextureRegion(dst, src Texture, dstMip, dstSlice, srcMip, srcSlice uint32, dstX, dstY, dstZ, srcX, srcY, srcZ, width, height, depth uint32)
	CopyTextureToBuffer(dst Buffer, src Texture, srcMip, srcSlice uint32, dstOffset uint64, rowPitch, width, height, depth uint32)
	CopyBufferToTexture(dst Texture, dstMip, dstSlice uint32, src Buffer, srcOffset uint64, rowPitch, width, height, depth uint32)
}

// Fence is a GPU timeline semaphore: a monotonically increasing
// 64-bit value signaled by queue work and waited on by the CPU or
// another queue.
type Fence interface {
	Resource
}

// Queue is one of the three logical queues (graphics/compute/copy)
// the executor submits batches of command encoders to.
type Queue interface {
	// Submit submits a recorded command encoder's work. If fence is
	// non-nil, the queue signals it with value once the work completes.
	Submit(ctx context.Context, enc CommandEncoder, fence Fence, value uint64) error

	// Wait blocks the queue's subsequent submissions until fence
	// reaches value (a cross-queue timeline wait).
	Wait(fence Fence, value uint64) error
}

// Device is the narrow device surface the executor and materialize
// manager need: command-list allocation, fences, and CPU-side waits.
type Device interface {
	// NewCommandEncoder returns a new encoder for the given queue. The
	// executor keeps its own pool of submitted encoders and calls this
	// only when none of them can be reused yet.
	NewCommandEncoder(queue Queue) (CommandEncoder, error)

	NewFence() (Fence, error)

	// Wait blocks the calling goroutine until fence reaches value or
	// timeout elapses. Returns false (not an error) on timeout.
	Wait(ctx context.Context, fence Fence, value uint64, timeout time.Duration) (bool, error)
}

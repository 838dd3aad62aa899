// Package record implements the immediate-mode sub-recorder: passes
// defer clears and copies into a compact opcode bytecode stream while
// the recorder simultaneously accumulates the subresource access the
// compiler needs for barrier planning.
package record

// Op is the opcode tag written as a single byte ahead of each
// payload in the stream.
type Op uint8

const (
	OpCopyBufferRegion Op = iota + 1
	OpClearRTV
	OpClearDSV
	OpClearUavFloat
	OpClearUavUint
	OpCopyTextureRegion
	OpCopyTextureToBuffer
	OpCopyBufferToTexture
)

func (op Op) String() string {
	switch op {
	case OpCopyBufferRegion:
		return "CopyBufferRegion"
	case OpClearRTV:
		return "ClearRTV"
	case OpClearDSV:
		return "ClearDSV"
	case OpClearUavFloat:
		return "ClearUavFloat"
	case OpClearUavUint:
		return "ClearUavUint"
	case OpCopyTextureRegion:
		return "CopyTextureRegion"
	case OpCopyTextureToBuffer:
		return "CopyTextureToBuffer"
	case OpCopyBufferToTexture:
		return "CopyBufferToTexture"
	default:
		return "Unknown"
	}
}

// PinIndex names an entry in the recorder's keep-alive bag.
type PinIndex uint32

// CopyBufferRegion copies Bytes from Src[SrcOffset:] to Dst[DstOffset:].
type CopyBufferRegion struct {
	Dst, Src           PinIndex
	DstOffset, SrcOffset uint64
	Bytes              uint64
}

// ClearRTV clears a render-target view to a float color.
type ClearRTV struct {
	Target PinIndex
	Mip    uint32
	Slice  uint32
	Color  [4]float32
}

// ClearDSV clears a depth-stencil view.
type ClearDSV struct {
	Target       PinIndex
	Mip, Slice   uint32
	Depth        float32
	Stencil      uint8
	ClearDepth   bool
	ClearStencil bool
}

// ClearUavFloat clears a UAV to a float value (typed/structured
// buffers and float-format textures).
type ClearUavFloat struct {
	Target PinIndex
	Value  [4]float32
}

// ClearUavUint clears a UAV to a uint value.
type ClearUavUint struct {
	Target PinIndex
	Value  [4]uint32
}

// CopyTextureRegion copies a box region between two textures.
type CopyTextureRegion struct {
	Dst, Src                     PinIndex
	DstMip, DstSlice             uint32
	SrcMip, SrcSlice             uint32
	DstX, DstY, DstZ             uint32
	SrcX, SrcY, SrcZ             uint32
	Width, Height, Depth         uint32
}

// CopyTextureToBuffer copies a texture subresource into a linear buffer.
type CopyTextureToBuffer struct {
	Dst                  PinIndex
	Src                  PinIndex
	SrcMip, SrcSlice     uint32
	DstOffset            uint64
	RowPitch             uint32
	Width, Height, Depth uint32
}

// CopyBufferToTexture copies a linear buffer region into a texture subresource.
type CopyBufferToTexture struct {
	Dst                  PinIndex
	DstMip, DstSlice     uint32
	Src                  PinIndex
	SrcOffset            uint64
	RowPitch             uint32
	Width, Height, Depth uint32
}

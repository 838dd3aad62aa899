package record

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// payloadAlign is the boundary pad rounds the stream up to before each
// payload: 8 bytes, large enough for every payload's widest field (uint64).
const payloadAlign = 8

// Writer accumulates an opcode bytecode stream plus a keep-alive
// "pin bag" of the resources referenced by pinned indices, and, via
// Accumulator, the per-resource access those ops imply.
type Writer struct {
	buf  bytes.Buffer
	pins []any

	Accumulator
}

// NewWriter returns an empty recorder.
func NewWriter() *Writer {
	return &Writer{}
}

// Pin adds owner to the keep-alive bag and returns its opaque index.
// owner is typically a *registry.Resource; it is retained only for
// the lifetime of the frame the recorder belongs to.
func (w *Writer) Pin(owner any) PinIndex {
	w.pins = append(w.pins, owner)
	return PinIndex(len(w.pins) - 1)
}

// Pinned returns the owner registered at idx.
func (w *Writer) Pinned(idx PinIndex) any {
	if int(idx) >= len(w.pins) {
		return nil
	}
	return w.pins[idx]
}

// Bytes returns the encoded opcode stream so far.
func (w *Writer) Bytes() []byte {
	return w.buf.Bytes()
}

func (w *Writer) writeOp(op Op, payload any) {
	w.buf.WriteByte(byte(op))
	w.pad()
	if err := binary.Write(&w.buf, binary.LittleEndian, payload); err != nil {
		// Every payload type here is a fixed-size struct of fixed-size
		// fields; binary.Write can only fail on an unsupported type,
		// which would be a programming error in this package.
		panic(fmt.Sprintf("record: encoding %s payload: %v", op, err))
	}
}

func (w *Writer) pad() {
	if rem := w.buf.Len() % payloadAlign; rem != 0 {
		w.buf.Write(make([]byte, payloadAlign-rem))
	}
}

// CopyBufferRegion records a buffer-to-buffer copy.
func (w *Writer) CopyBufferRegion(dst, src PinIndex, dstOffset, srcOffset, bytesLen uint64) {
	w.writeOp(OpCopyBufferRegion, CopyBufferRegion{Dst: dst, Src: src, DstOffset: dstOffset, SrcOffset: srcOffset, Bytes: bytesLen})
	w.accumulateBuffer(dst, writeAccess())
	w.accumulateBuffer(src, readAccess())
}

// ClearRTV records a render-target clear.
func (w *Writer) ClearRTV(target PinIndex, mip, slice uint32, color [4]float32) {
	w.writeOp(OpClearRTV, ClearRTV{Target: target, Mip: mip, Slice: slice, Color: color})
	w.accumulateTexture(target, mip, slice, rtAccess())
}

// ClearDSV records a depth/stencil clear.
func (w *Writer) ClearDSV(target PinIndex, mip, slice uint32, depth float32, clearDepth bool, stencil uint8, clearStencil bool) {
	w.writeOp(OpClearDSV, ClearDSV{Target: target, Mip: mip, Slice: slice, Depth: depth, Stencil: stencil, ClearDepth: clearDepth, ClearStencil: clearStencil})
	w.accumulateTexture(target, mip, slice, dsAccess())
}

// ClearUavFloat records a UAV clear with float components.
func (w *Writer) ClearUavFloat(target PinIndex, value [4]float32) {
	w.writeOp(OpClearUavFloat, ClearUavFloat{Target: target, Value: value})
	w.accumulateWhole(target, uavAccess())
}

// ClearUavUint records a UAV clear with uint components.
func (w *Writer) ClearUavUint(target PinIndex, value [4]uint32) {
	w.writeOp(OpClearUavUint, ClearUavUint{Target: target, Value: value})
	w.accumulateWhole(target, uavAccess())
}

// CopyTextureRegion records a texture-to-texture box copy.
func (w *Writer) CopyTextureRegion(dst, src PinIndex, dstMip, dstSlice, srcMip, srcSlice uint32, dstX, dstY, dstZ, srcX, srcY, srcZ, width, height, depth uint32) {
	w.writeOp(OpCopyTextureRegion, CopyTextureRegion{
		Dst: dst, Src: src, DstMip: dstMip, DstSlice: dstSlice, SrcMip: srcMip, SrcSlice: srcSlice,
		DstX: dstX, DstY: dstY, DstZ: dstZ, SrcX: srcX, SrcY: srcY, SrcZ: srcZ,
		Width: width, Height: height, Depth: depth,
	})
	w.accumulateTexture(dst, dstMip, dstSlice, writeAccess())
	w.accumulateTexture(src, srcMip, srcSlice, readAccess())
}

// CopyTextureToBuffer records a texture-subresource-to-buffer copy.
func (w *Writer) CopyTextureToBuffer(dst, src PinIndex, srcMip, srcSlice uint32, dstOffset uint64, rowPitch, width, height, depth uint32) {
	w.writeOp(OpCopyTextureToBuffer, CopyTextureToBuffer{
		Dst: dst, Src: src, SrcMip: srcMip, SrcSlice: srcSlice,
		DstOffset: dstOffset, RowPitch: rowPitch, Width: width, Height: height, Depth: depth,
	})
	w.accumulateBuffer(dst, writeAccess())
	w.accumulateTexture(src, srcMip, srcSlice, readAccess())
}

// CopyBufferToTexture records a buffer-to-texture-subresource copy.
func (w *Writer) CopyBufferToTexture(dst, src PinIndex, dstMip, dstSlice uint32, srcOffset uint64, rowPitch, width, height, depth uint32) {
	w.writeOp(OpCopyBufferToTexture, CopyBufferToTexture{
		Dst: dst, DstMip: dstMip, DstSlice: dstSlice, Src: src,
		SrcOffset: srcOffset, RowPitch: rowPitch, Width: width, Height: height, Depth: depth,
	})
	w.accumulateTexture(dst, dstMip, dstSlice, writeAccess())
	w.accumulateBuffer(src, readAccess())
}

package record

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// Dispatcher receives one callback per decoded opcode during Replay.
// Implementations issue the corresponding rhi command; Replay itself
// never allocates beyond the fixed-size payload it decodes into.
type Dispatcher interface {
	CopyBufferRegion(CopyBufferRegion)
	ClearRTV(ClearRTV)
	ClearDSV(ClearDSV)
	ClearUavFloat(ClearUavFloat)
	ClearUavUint(ClearUavUint)
	CopyTextureRegion(CopyTextureRegion)
	CopyTextureToBuffer(CopyTextureToBuffer)
	CopyBufferToTexture(CopyBufferToTexture)
}

// Replay walks data as a `while (!empty) dispatch(read_op())` loop,
// decoding each opcode's fixed payload and calling the matching
// Dispatcher method, until the buffer is exactly consumed.
func Replay(data []byte, d Dispatcher) error {
	r := bytes.NewReader(data)
	for r.Len() > 0 {
		opByte, err := r.ReadByte()
		if err != nil {
			return fmt.Errorf("record: reading opcode: %w", err)
		}
		if err := padReader(r); err != nil {
			return err
		}

		op := Op(opByte)
		switch op {
		case OpCopyBufferRegion:
			var p CopyBufferRegion
			if err := binary.Read(r, binary.LittleEndian, &p); err != nil {
				return err
			}
			d.CopyBufferRegion(p)
		case OpClearRTV:
			var p ClearRTV
			if err := binary.Read(r, binary.LittleEndian, &p); err != nil {
				return err
			}
			d.ClearRTV(p)
		case OpClearDSV:
			var p ClearDSV
			if err := binary.Read(r, binary.LittleEndian, &p); err != nil {
				return err
			}
			d.ClearDSV(p)
		case OpClearUavFloat:
			var p ClearUavFloat
			if err := binary.Read(r, binary.LittleEndian, &p); err != nil {
				return err
			}
			d.ClearUavFloat(p)
		case OpClearUavUint:
			var p ClearUavUint
			if err := binary.Read(r, binary.LittleEndian, &p); err != nil {
				return err
			}
			d.ClearUavUint(p)
		case OpCopyTextureRegion:
			var p CopyTextureRegion
			if err := binary.Read(r, binary.LittleEndian, &p); err != nil {
				return err
			}
			d.CopyTextureRegion(p)
		case OpCopyTextureToBuffer:
			var p CopyTextureToBuffer
			if err := binary.Read(r, binary.LittleEndian, &p); err != nil {
				return err
			}
			d.CopyTextureToBuffer(p)
		case OpCopyBufferToTexture:
			var p CopyBufferToTexture
			if err := binary.Read(r, binary.LittleEndian, &p); err != nil {
				return err
			}
			d.CopyBufferToTexture(p)
		default:
			return fmt.Errorf("record: unknown opcode %d", opByte)
		}
	}
	return nil
}

// padReader advances r past the same alignment padding writeOp
// inserted ahead of a payload, computed from the stream position
// already consumed.
func padReader(r *bytes.Reader) error {
	pos := r.Size() - int64(r.Len())
	if rem := pos % payloadAlign; rem != 0 {
		if _, err := r.Seek(payloadAlign-rem, io.SeekCurrent); err != nil {
			return fmt.Errorf("record: skipping alignment padding: %w", err)
		}
	}
	return nil
}

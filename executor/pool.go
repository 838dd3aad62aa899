package executor

import (
	"context"

	"github.com/gogpu/rendergraph/rhi"
)

// encoderPool is a single global command-encoder pool per queue:
// encoders are recycled once their last submission's signaled fence
// value has been reached (§4.I: "a single global command-list pool
// per queue recycles allocators once their signaled fence value has
// been reached").
type encoderPool struct {
	device rhi.Device
	queue  rhi.Queue
	fence  rhi.Fence

	free []rhi.CommandEncoder
	busy []pendingEncoder
}

type pendingEncoder struct {
	enc         rhi.CommandEncoder
	retireValue uint64
}

func newEncoderPool(device rhi.Device, queue rhi.Queue, fence rhi.Fence) *encoderPool {
	return &encoderPool{device: device, queue: queue, fence: fence}
}

// acquire reclaims any busy encoder whose retire value has already
// been signaled, then returns a free one or allocates a fresh one.
func (p *encoderPool) acquire(ctx context.Context) (rhi.CommandEncoder, error) {
	p.reclaim(ctx)
	if n := len(p.free); n > 0 {
		enc := p.free[n-1]
		p.free = p.free[:n-1]
		return enc, nil
	}
	return p.device.NewCommandEncoder(p.queue)
}

// release hands an encoder back to the pool once it has been
// submitted, to be reclaimed after retireValue is signaled. A
// retireValue of 0 means the batch raised no signal for this queue;
// the encoder is reclaimed on the next acquire regardless (it has
// already been submitted and queues execute in submission order).
func (p *encoderPool) release(enc rhi.CommandEncoder, retireValue uint64) {
	p.busy = append(p.busy, pendingEncoder{enc: enc, retireValue: retireValue})
}

func (p *encoderPool) reclaim(ctx context.Context) {
	if p.fence == nil {
		return
	}
	var stillBusy []pendingEncoder
	for _, b := range p.busy {
		if b.retireValue == 0 {
			p.free = append(p.free, b.enc)
			continue
		}
		reached, err := p.device.Wait(ctx, p.fence, b.retireValue, 0)
		if err == nil && reached {
			p.free = append(p.free, b.enc)
			continue
		}
		stillBusy = append(stillBusy, b)
	}
	p.busy = stillBusy
}

package gpu

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// uniformAlign is the minimum dynamic offset alignment WebGPU guarantees.
const uniformAlign = 256

const uniformRingSize = 4 << 20

func alignUp(n, a int) int {
	return (n + a - 1) / a * a
}

// uniformRing stages per-draw parameter blocks in CPU memory. Blocks are
// addressed by dynamic offsets into one GPU buffer that is uploaded before
// the command buffer referencing them is submitted.
type uniformRing struct {
	data []byte
	used int
	buf  *wgpu.Buffer
}

func newUniformRing(size int) *uniformRing {
	return &uniformRing{data: make([]byte, size)}
}

// alloc reserves size bytes and returns the offset and the slice to fill.
// ok is false when the ring is full and must be flushed first.
func (r *uniformRing) alloc(size int) (offset int, block []byte, ok bool) {
	offset = alignUp(r.used, uniformAlign)
	if offset+size > len(r.data) {
		return 0, nil, false
	}
	r.used = offset + size
	return offset, r.data[offset : offset+size], true
}

func (r *uniformRing) pending() []byte { return r.data[:r.used] }

func (r *uniformRing) reset() { r.used = 0 }

func (r *uniformRing) ensureBuffer(dev *wgpu.Device) error {
	if r.buf != nil {
		return nil
	}
	var err error
	r.buf, err = dev.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "ParamsRing",
		Size:  uint64(len(r.data)),
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	return err
}

// upload copies the staged blocks to the GPU buffer and empties the ring.
func (r *uniformRing) upload(queue *wgpu.Queue) {
	if r.used == 0 || r.buf == nil {
		return
	}
	queue.WriteBuffer(r.buf, 0, r.pending())
	r.reset()
}

func (r *uniformRing) release() {
	if r.buf != nil {
		r.buf.Release()
		r.buf = nil
	}
}

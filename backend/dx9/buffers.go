package dx9

import "fmt"

// defaultBufferCap is the initial vertex and index capacity, enough for
// a typical overlay frame without a single growth step.
const defaultBufferCap = 16384

// buffers owns the GPU vertex/index buffer pair. Capacities only grow
// while the device is alive; the pair is destroyed before a device reset
// and recreated on the next frame.
type buffers struct {
	dev Device

	vb VertexBuffer
	ib IndexBuffer

	vtxCap int
	idxCap int
}

// newBuffers creates the pair at the given initial capacities.
func newBuffers(dev Device, vtxCap, idxCap int) (*buffers, error) {
	b := &buffers{dev: dev}
	if err := b.ensureCapacity(vtxCap, idxCap); err != nil {
		return nil, err
	}
	return b, nil
}

// ensureCapacity grows the buffers so they hold at least the requested
// counts. Growth destroys and recreates the GPU objects at double the
// previous capacity (or the requested count, whichever is larger); the
// pair never shrinks.
func (b *buffers) ensureCapacity(vtxCount, idxCount int) error {
	if vtxCount > b.vtxCap {
		newCap := grow(b.vtxCap, vtxCount)
		vb, err := b.dev.CreateVertexBuffer(newCap * gpuVertexStride)
		if err != nil {
			return fmt.Errorf("create vertex buffer (%d vertices): %w", newCap, err)
		}
		if b.vb != nil {
			b.vb.Release()
		}
		b.vb = vb
		b.vtxCap = newCap
	}

	if idxCount > b.idxCap {
		newCap := grow(b.idxCap, idxCount)
		ib, err := b.dev.CreateIndexBuffer(newCap * 4)
		if err != nil {
			return fmt.Errorf("create index buffer (%d indices): %w", newCap, err)
		}
		if b.ib != nil {
			b.ib.Release()
		}
		b.ib = ib
		b.idxCap = newCap
	}

	return nil
}

// upload rewrites both buffers from offset zero with the frame's flat
// arrays. Nothing from previous frames is retained.
func (b *buffers) upload(verts []GPUVertex, idxs []uint32) error {
	if err := b.ensureCapacity(len(verts), len(idxs)); err != nil {
		return err
	}
	if err := b.vb.Upload(verts); err != nil {
		return fmt.Errorf("upload %d vertices: %w", len(verts), err)
	}
	if err := b.ib.Upload(idxs); err != nil {
		return fmt.Errorf("upload %d indices: %w", len(idxs), err)
	}
	return nil
}

// release destroys both buffers and resets capacities to zero. It is
// idempotent; call it before a device reset.
func (b *buffers) release() {
	if b.vb != nil {
		b.vb.Release()
		b.vb = nil
	}
	if b.ib != nil {
		b.ib.Release()
		b.ib = nil
	}
	b.vtxCap = 0
	b.idxCap = 0
}

func grow(current, needed int) int {
	newCap := current * 2
	if newCap < needed {
		newCap = needed
	}
	return newCap
}

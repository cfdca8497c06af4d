package dx9

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-theft-auto/overlay"
)

// ErrUnsupportedPrimitive is returned when the toolkit emits a paint
// callback primitive, which the fixed-function backend cannot execute.
var ErrUnsupportedPrimitive = errors.New("dx9: paint callback primitives are not supported")

// Handler supplies the per-frame pieces the host owns: the UI
// description and the resolution of user texture handles.
type Handler interface {
	// UI builds the frame's interface. It runs inside the toolkit pass
	// started by Present.
	UI()

	// ResolveUserTexture maps a user texture id to the host's texture.
	// Returning false fails the frame; the toolkit only emits user ids
	// the host registered.
	ResolveUserTexture(id uint64) (Texture, bool)
}

// Renderer drives one overlay frame per host Present call. It owns the
// GPU resources the overlay needs (vertex/index buffers, managed
// textures) and survives device resets through PreReset.
//
// Renderer is not safe for concurrent use; all methods must run on the
// host's render thread.
type Renderer struct {
	dev     Device
	toolkit overlay.Toolkit
	handler Handler
	queue   *overlay.InputQueue

	buffers *buffers
	cache   *textureCache

	// meshes is the draw data retained from the last painted frame, so
	// reactive frames can redraw without re-tessellating.
	meshes []MeshDescriptor

	clipboard overlay.Clipboard
	logger    *slog.Logger
	reactive  bool

	initVtxCap   int
	initIdxCap   int
	pendingReset bool
	closed       bool
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithReactive makes the renderer skip tessellation and buffer uploads
// on frames the toolkit did not request a repaint for, redrawing the
// retained draw data instead.
func WithReactive() Option {
	return func(r *Renderer) { r.reactive = true }
}

// WithClipboard routes the toolkit's copied text to the given clipboard.
func WithClipboard(c overlay.Clipboard) Option {
	return func(r *Renderer) { r.clipboard = c }
}

// WithLogger sets the backend logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Renderer) { r.logger = l }
}

// WithBufferCapacity sets the initial vertex and index buffer
// capacities. The buffers still grow on demand.
func WithBufferCapacity(vertices, indices int) Option {
	return func(r *Renderer) {
		r.initVtxCap = vertices
		r.initIdxCap = indices
	}
}

// New creates a renderer on the given device. The queue's snapshots
// feed the toolkit each frame.
func New(dev Device, toolkit overlay.Toolkit, handler Handler, queue *overlay.InputQueue, opts ...Option) (*Renderer, error) {
	r := &Renderer{
		dev:        dev,
		toolkit:    toolkit,
		handler:    handler,
		queue:      queue,
		cache:      newTextureCache(),
		logger:     defaultLogger,
		initVtxCap: defaultBufferCap,
		initIdxCap: defaultBufferCap,
	}
	for _, opt := range opts {
		opt(r)
	}

	var err error
	if r.buffers, err = newBuffers(dev, r.initVtxCap, r.initIdxCap); err != nil {
		return nil, fmt.Errorf("dx9: %w", err)
	}
	return r, nil
}

// PreReset releases every default-pool resource the renderer holds.
// The host must call it before IDirect3DDevice9::Reset; the next
// Present recreates everything and forces a full repaint.
func (r *Renderer) PreReset() {
	r.buffers.release()
	r.cache.onDeviceLost()
	r.meshes = nil
	r.pendingReset = true
	r.logger.Debug("released device resources before reset")
}

// Close releases all GPU resources. The renderer must not be used
// afterwards.
func (r *Renderer) Close() {
	if r.closed {
		return
	}
	r.closed = true
	r.buffers.release()
	r.cache.releaseAll()
	r.meshes = nil
}

// Present runs one overlay frame: snapshot input, run the toolkit,
// apply texture deltas, tessellate and upload geometry, then draw the
// overlay on top of the host's back buffer under a state guard. Call it
// right before the host's own Present.
//
// While the device is lost the frame is skipped and queued input is
// discarded; no error is returned. Any returned error leaves the
// device state restored but the frame undrawn.
func (r *Renderer) Present() error {
	if r.closed {
		return errors.New("dx9: renderer is closed")
	}

	if err := r.dev.TestCooperativeLevel(); err != nil {
		r.queue.Discard()
		r.logger.Debug("skipping frame, device not operational", "err", err)
		return nil
	}

	resetThisFrame := r.pendingReset
	if resetThisFrame {
		if err := r.recoverFromReset(); err != nil {
			return err
		}
	}

	input := r.queue.Snapshot()

	out, err := r.toolkit.Run(input, r.handler.UI)
	if err != nil {
		return fmt.Errorf("dx9: toolkit pass: %w", err)
	}

	if err := r.cache.applySets(r.dev, out.Textures.Set); err != nil {
		return fmt.Errorf("dx9: %w", err)
	}
	// Freeing is deferred so textures stay alive through this frame's
	// draws even when the frame fails midway.
	defer r.cache.applyFrees(out.Textures.Free)

	if out.CopiedText != "" && r.clipboard != nil {
		if err := r.clipboard.SetText(out.CopiedText); err != nil {
			r.logger.Warn("clipboard write failed", "err", err)
		}
	}

	// An empty UI draws nothing, retained meshes included; only the
	// deferred frees run.
	if len(out.Shapes) == 0 {
		return nil
	}

	if !r.reactive || out.Repaint || resetThisFrame {
		if err := r.rebuildGeometry(out); err != nil {
			return err
		}
	}

	if len(r.meshes) == 0 {
		return nil
	}

	vp := Viewport{
		Width:  uint32(input.ScreenRect.W),
		Height: uint32(input.ScreenRect.H),
		MaxZ:   1,
	}

	guard, err := enterOverlayState(r.dev, vp)
	if err != nil {
		return fmt.Errorf("dx9: enter overlay state: %w", err)
	}
	defer guard.restore()

	if err := r.dev.SetStreamSource(r.buffers.vb, gpuVertexStride); err != nil {
		return fmt.Errorf("dx9: bind vertex buffer: %w", err)
	}
	if err := r.dev.SetIndices(r.buffers.ib); err != nil {
		return fmt.Errorf("dx9: bind index buffer: %w", err)
	}

	return r.draw()
}

// recoverFromReset recreates the default-pool resources released by
// PreReset. The texture cache refills from its CPU pixel store.
func (r *Renderer) recoverFromReset() error {
	if err := r.buffers.ensureCapacity(r.initVtxCap, r.initIdxCap); err != nil {
		return fmt.Errorf("dx9: recreate buffers after reset: %w", err)
	}
	if err := r.cache.onDeviceReset(r.dev); err != nil {
		return fmt.Errorf("dx9: restore textures after reset: %w", err)
	}
	r.pendingReset = false
	r.logger.Debug("recreated device resources after reset", "textures", r.cache.len())
	return nil
}

// rebuildGeometry tessellates the frame's shapes and uploads the
// resulting vertex and index data, replacing the retained draw data.
func (r *Renderer) rebuildGeometry(out overlay.FrameOutput) error {
	prims := r.toolkit.Tessellate(out.Shapes, out.PixelsPerPoint)

	r.meshes = r.meshes[:0]
	var verts []GPUVertex
	var idxs []uint32
	for i := range prims {
		if prims[i].Callback {
			return ErrUnsupportedPrimitive
		}
		desc, v, ix, ok := convertMesh(prims[i].Mesh)
		if !ok {
			continue
		}
		r.meshes = append(r.meshes, desc)
		verts = append(verts, v...)
		idxs = append(idxs, ix...)
	}

	if len(r.meshes) == 0 {
		return nil
	}
	if err := r.buffers.upload(verts, idxs); err != nil {
		return fmt.Errorf("dx9: upload geometry: %w", err)
	}
	return nil
}

// draw issues one indexed draw per retained mesh, walking the shared
// buffers with running vertex and index offsets.
func (r *Renderer) draw() error {
	vtxOffset, idxOffset := 0, 0
	for i := range r.meshes {
		m := &r.meshes[i]

		if err := r.dev.SetScissorRect(m.Clip); err != nil {
			return fmt.Errorf("dx9: set scissor: %w", err)
		}

		tex, err := r.resolveTexture(m.Texture)
		if err != nil {
			return err
		}
		if err := r.dev.SetTexture(0, tex); err != nil {
			return fmt.Errorf("dx9: bind texture %v: %w", m.Texture, err)
		}

		err = r.dev.DrawIndexedTriangles(vtxOffset, 0, m.VertexCount, idxOffset, m.IndexCount/3)
		if err != nil {
			return fmt.Errorf("dx9: draw: %w", err)
		}

		vtxOffset += m.VertexCount
		idxOffset += m.IndexCount
	}
	return nil
}

// resolveTexture maps a mesh's texture id to the handle to bind.
func (r *Renderer) resolveTexture(id overlay.TextureID) (Texture, error) {
	switch id.Kind {
	case overlay.TextureManaged:
		tex, err := r.cache.lookup(id.ID)
		if err != nil {
			return nil, fmt.Errorf("dx9: %v: %w", id, err)
		}
		return tex, nil
	case overlay.TextureUser:
		tex, ok := r.handler.ResolveUserTexture(id.ID)
		if !ok {
			return nil, fmt.Errorf("dx9: %v: unresolved user texture", id)
		}
		return tex, nil
	default:
		return nil, fmt.Errorf("dx9: %v: unknown texture kind", id)
	}
}

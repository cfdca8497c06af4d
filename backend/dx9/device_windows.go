//go:build windows

package dx9

import (
	"fmt"
	"math"

	"github.com/gonutz/d3d9"
)

// NewDevice wraps a live IDirect3DDevice9 for the renderer. The caller
// keeps ownership of dev and must keep it alive for the renderer's
// lifetime.
func NewDevice(dev *d3d9.Device) Device {
	return &d3dDevice{dev: dev}
}

// WrapTexture wraps a host-owned d3d9 texture so it can be returned
// from Handler.ResolveUserTexture. Release is a no-op; the host owns
// the texture.
func WrapTexture(tex *d3d9.Texture) Texture {
	return &userTexture{tex: tex}
}

func wrap(op string, err d3d9.Error) error {
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

type d3dDevice struct {
	dev *d3d9.Device
}

func (d *d3dDevice) TestCooperativeLevel() error {
	return wrap("TestCooperativeLevel", d.dev.TestCooperativeLevel())
}

func (d *d3dDevice) CreateVertexBuffer(byteLen int) (VertexBuffer, error) {
	vb, err := d.dev.CreateVertexBuffer(
		uint(byteLen),
		d3d9.USAGE_DYNAMIC|d3d9.USAGE_WRITEONLY,
		overlayFVF,
		d3d9.POOL_DEFAULT,
		0,
	)
	if err != nil {
		return nil, wrap("CreateVertexBuffer", err)
	}
	return &vertexBuffer{vb: vb}, nil
}

func (d *d3dDevice) CreateIndexBuffer(byteLen int) (IndexBuffer, error) {
	ib, err := d.dev.CreateIndexBuffer(
		uint(byteLen),
		d3d9.USAGE_DYNAMIC|d3d9.USAGE_WRITEONLY,
		d3d9.FMT_INDEX32,
		d3d9.POOL_DEFAULT,
		0,
	)
	if err != nil {
		return nil, wrap("CreateIndexBuffer", err)
	}
	return &indexBuffer{ib: ib}, nil
}

func (d *d3dDevice) CreateTexture(width, height int) (Texture, error) {
	tex, err := d.dev.CreateTexture(
		uint(width), uint(height), 1,
		d3d9.USAGE_DYNAMIC,
		d3d9.FMT_A8R8G8B8,
		d3d9.POOL_DEFAULT,
		0,
	)
	if err != nil {
		return nil, wrap("CreateTexture", err)
	}
	return &texture{tex: tex, lockFlags: d3d9.LOCK_DISCARD}, nil
}

func (d *d3dDevice) CreateStagingTexture(width, height int) (Texture, error) {
	tex, err := d.dev.CreateTexture(
		uint(width), uint(height), 1,
		0,
		d3d9.FMT_A8R8G8B8,
		d3d9.POOL_SYSTEMMEM,
		0,
	)
	if err != nil {
		return nil, wrap("CreateTexture(staging)", err)
	}
	return &texture{tex: tex}, nil
}

func (d *d3dDevice) CopySurface(src Texture, srcRect RECT, dst Texture, destPoint POINT) error {
	srcSurf, err := src.(*texture).tex.GetSurfaceLevel(0)
	if err != nil {
		return wrap("GetSurfaceLevel(src)", err)
	}
	defer srcSurf.Release()
	dstSurf, err := dst.(*texture).tex.GetSurfaceLevel(0)
	if err != nil {
		return wrap("GetSurfaceLevel(dst)", err)
	}
	defer dstSurf.Release()

	r := d3d9.RECT{Left: srcRect.Left, Top: srcRect.Top, Right: srcRect.Right, Bottom: srcRect.Bottom}
	p := d3d9.POINT{X: destPoint.X, Y: destPoint.Y}
	return wrap("UpdateSurface", d.dev.UpdateSurface(srcSurf, &r, dstSurf, &p))
}

func (d *d3dDevice) GetBackBuffer() (Surface, error) {
	s, err := d.dev.GetBackBuffer(0, 0, d3d9.BACKBUFFER_TYPE_MONO)
	if err != nil {
		return nil, wrap("GetBackBuffer", err)
	}
	return &surface{s: s}, nil
}

func (d *d3dDevice) GetRenderTarget() (Surface, error) {
	s, err := d.dev.GetRenderTarget(0)
	if err != nil {
		return nil, wrap("GetRenderTarget", err)
	}
	return &surface{s: s}, nil
}

func (d *d3dDevice) SetRenderTarget(s Surface) error {
	return wrap("SetRenderTarget", d.dev.SetRenderTarget(0, s.(*surface).s))
}

func (d *d3dDevice) CreateRenderTarget(width, height uint32) (Surface, error) {
	s, err := d.dev.CreateRenderTarget(
		uint(width), uint(height),
		d3d9.FMT_A8R8G8B8,
		d3d9.MULTISAMPLE_NONE,
		0,
		false,
		0,
	)
	if err != nil {
		return nil, wrap("CreateRenderTarget", err)
	}
	return &surface{s: s}, nil
}

func (d *d3dDevice) StretchRect(src, dst Surface) error {
	return wrap("StretchRect", d.dev.StretchRect(
		src.(*surface).s, nil,
		dst.(*surface).s, nil,
		d3d9.TEXF_NONE,
	))
}

func (d *d3dDevice) CreateStateBlock() (StateBlock, error) {
	sb, err := d.dev.CreateStateBlock(d3d9.SBT_ALL)
	if err != nil {
		return nil, wrap("CreateStateBlock", err)
	}
	return &stateBlock{sb: sb}, nil
}

func (d *d3dDevice) SetRenderState(state, value uint32) error {
	return wrap("SetRenderState", d.dev.SetRenderState(d3d9.RENDERSTATETYPE(state), value))
}

func (d *d3dDevice) SetSamplerState(sampler, state, value uint32) error {
	return wrap("SetSamplerState", d.dev.SetSamplerState(sampler, d3d9.SAMPLERSTATETYPE(state), value))
}

func (d *d3dDevice) SetTextureStageState(stage, state, value uint32) error {
	return wrap("SetTextureStageState", d.dev.SetTextureStageState(stage, d3d9.TEXTURESTAGESTATETYPE(state), value))
}

func (d *d3dDevice) SetTransform(which uint32, m Matrix) error {
	return wrap("SetTransform", d.dev.SetTransform(d3d9.TRANSFORMSTATETYPE(which), d3d9.MATRIX(m)))
}

func (d *d3dDevice) GetTransform(which uint32) (Matrix, error) {
	m, err := d.dev.GetTransform(d3d9.TRANSFORMSTATETYPE(which))
	if err != nil {
		return Matrix{}, wrap("GetTransform", err)
	}
	return Matrix(m), nil
}

func (d *d3dDevice) SetViewport(vp Viewport) error {
	return wrap("SetViewport", d.dev.SetViewport(d3d9.VIEWPORT{
		X:      vp.X,
		Y:      vp.Y,
		Width:  vp.Width,
		Height: vp.Height,
		MinZ:   vp.MinZ,
		MaxZ:   vp.MaxZ,
	}))
}

func (d *d3dDevice) SetScissorRect(r RECT) error {
	return wrap("SetScissorRect", d.dev.SetScissorRect(d3d9.RECT{
		Left: r.Left, Top: r.Top, Right: r.Right, Bottom: r.Bottom,
	}))
}

func (d *d3dDevice) SetFVF(fvf uint32) error {
	return wrap("SetFVF", d.dev.SetFVF(fvf))
}

func (d *d3dDevice) ClearShaders() error {
	if err := d.dev.SetVertexShader(nil); err != nil {
		return wrap("SetVertexShader", err)
	}
	return wrap("SetPixelShader", d.dev.SetPixelShader(nil))
}

func (d *d3dDevice) SetStreamSource(vb VertexBuffer, stride uint32) error {
	return wrap("SetStreamSource", d.dev.SetStreamSource(0, vb.(*vertexBuffer).vb, 0, uint(stride)))
}

func (d *d3dDevice) SetIndices(ib IndexBuffer) error {
	return wrap("SetIndices", d.dev.SetIndices(ib.(*indexBuffer).ib))
}

func (d *d3dDevice) SetTexture(stage uint32, tex Texture) error {
	if tex == nil {
		return wrap("SetTexture", d.dev.SetTexture(stage, nil))
	}
	switch t := tex.(type) {
	case *texture:
		return wrap("SetTexture", d.dev.SetTexture(stage, t.tex))
	case *userTexture:
		return wrap("SetTexture", d.dev.SetTexture(stage, t.tex))
	default:
		return fmt.Errorf("SetTexture: unknown texture type %T", tex)
	}
}

func (d *d3dDevice) DrawIndexedTriangles(baseVertex, minVertex, numVertices, startIndex, triCount int) error {
	return wrap("DrawIndexedPrimitive", d.dev.DrawIndexedPrimitive(
		d3d9.PT_TRIANGLELIST,
		baseVertex,
		uint(minVertex),
		uint(numVertices),
		uint(startIndex),
		uint(triCount),
	))
}

type vertexBuffer struct {
	vb *d3d9.VertexBuffer
}

func (b *vertexBuffer) Upload(verts []GPUVertex) error {
	byteLen := uint(len(verts) * gpuVertexStride)
	mem, err := b.vb.Lock(0, byteLen, d3d9.LOCK_DISCARD)
	if err != nil {
		return wrap("VertexBuffer.Lock", err)
	}
	// The packed color travels through the float32 view bit-for-bit.
	data := make([]float32, 0, len(verts)*6)
	for i := range verts {
		v := &verts[i]
		data = append(data, v.X, v.Y, v.Z, math.Float32frombits(v.Color), v.U, v.V)
	}
	mem.SetFloat32s(0, data)
	return wrap("VertexBuffer.Unlock", b.vb.Unlock())
}

func (b *vertexBuffer) Release() { b.vb.Release() }

type indexBuffer struct {
	ib *d3d9.IndexBuffer
}

func (b *indexBuffer) Upload(indices []uint32) error {
	mem, err := b.ib.Lock(0, uint(len(indices)*4), d3d9.LOCK_DISCARD)
	if err != nil {
		return wrap("IndexBuffer.Lock", err)
	}
	mem.SetUint32s(0, indices)
	return wrap("IndexBuffer.Unlock", b.ib.Unlock())
}

func (b *indexBuffer) Release() { b.ib.Release() }

type texture struct {
	tex       *d3d9.Texture
	lockFlags uint32 // LOCK_DISCARD for dynamic textures, 0 for staging
}

func (t *texture) Upload(pixels []byte, width, height int) error {
	lr, err := t.tex.LockRect(0, nil, t.lockFlags)
	if err != nil {
		return wrap("Texture.LockRect", err)
	}
	lr.SetAllBytes(rgbaToBGRA(pixels), width*4)
	return wrap("Texture.UnlockRect", t.tex.UnlockRect(0))
}

func (t *texture) Release() { t.tex.Release() }

type userTexture struct {
	tex *d3d9.Texture
}

func (t *userTexture) Upload(pixels []byte, width, height int) error {
	return fmt.Errorf("user textures are host-owned and cannot be uploaded to")
}

func (t *userTexture) Release() {}

type surface struct {
	s *d3d9.Surface
}

func (s *surface) Desc() (uint32, uint32, error) {
	desc, err := s.s.GetDesc()
	if err != nil {
		return 0, 0, wrap("Surface.GetDesc", err)
	}
	return desc.Width, desc.Height, nil
}

func (s *surface) Release() { s.s.Release() }

type stateBlock struct {
	sb *d3d9.StateBlock
}

func (b *stateBlock) Capture() error { return wrap("StateBlock.Capture", b.sb.Capture()) }
func (b *stateBlock) Apply() error   { return wrap("StateBlock.Apply", b.sb.Apply()) }
func (b *stateBlock) Release()       { b.sb.Release() }

// rgbaToBGRA converts RGBA pixel bytes into the BGRA layout of
// FMT_A8R8G8B8 surfaces.
func rgbaToBGRA(pixels []byte) []byte {
	out := make([]byte, len(pixels))
	for i := 0; i+3 < len(pixels); i += 4 {
		out[i] = pixels[i+2]
		out[i+1] = pixels[i+1]
		out[i+2] = pixels[i]
		out[i+3] = pixels[i+3]
	}
	return out
}

package dx9

import (
	"errors"
	"fmt"
)

// fakeDevice is an in-memory Device that records every call so tests
// can assert on the exact command stream without a GPU.
type fakeDevice struct {
	coopErr error // returned by TestCooperativeLevel

	// failure injection: return this error from the named call.
	failOn map[string]error

	vertexBuffers []*fakeVertexBuffer
	indexBuffers  []*fakeIndexBuffer
	textures      []*fakeTexture
	staging       []*fakeTexture
	surfaces      []*fakeSurface
	stateBlocks   []*fakeStateBlock

	backBuffer *fakeSurface
	target     *fakeSurface // current render target

	copies       []surfaceCopy
	stretches    int
	scissors     []RECT
	draws        []drawCall
	boundTexture []Texture // one entry per SetTexture on stage 0
	renderStates map[uint32]uint32
	transforms   map[uint32]Matrix
	stream       VertexBuffer
	indices      IndexBuffer
	fvf          uint32
	shadersOff   bool
	viewport     Viewport
}

type surfaceCopy struct {
	src  Texture
	rect RECT
	dst  Texture
	at   POINT
}

type drawCall struct {
	baseVertex, minVertex, numVertices, startIndex, triCount int
}

func newFakeDevice() *fakeDevice {
	return &fakeDevice{
		failOn:       make(map[string]error),
		backBuffer:   &fakeSurface{w: 800, h: 600},
		renderStates: make(map[uint32]uint32),
		transforms:   make(map[uint32]Matrix),
	}
}

func (d *fakeDevice) fail(call string) error {
	if err, ok := d.failOn[call]; ok {
		return err
	}
	return nil
}

func (d *fakeDevice) TestCooperativeLevel() error { return d.coopErr }

func (d *fakeDevice) CreateVertexBuffer(byteLen int) (VertexBuffer, error) {
	if err := d.fail("CreateVertexBuffer"); err != nil {
		return nil, err
	}
	vb := &fakeVertexBuffer{byteLen: byteLen}
	d.vertexBuffers = append(d.vertexBuffers, vb)
	return vb, nil
}

func (d *fakeDevice) CreateIndexBuffer(byteLen int) (IndexBuffer, error) {
	if err := d.fail("CreateIndexBuffer"); err != nil {
		return nil, err
	}
	ib := &fakeIndexBuffer{byteLen: byteLen}
	d.indexBuffers = append(d.indexBuffers, ib)
	return ib, nil
}

func (d *fakeDevice) CreateTexture(width, height int) (Texture, error) {
	if err := d.fail("CreateTexture"); err != nil {
		return nil, err
	}
	t := &fakeTexture{w: width, h: height}
	d.textures = append(d.textures, t)
	return t, nil
}

func (d *fakeDevice) CreateStagingTexture(width, height int) (Texture, error) {
	if err := d.fail("CreateStagingTexture"); err != nil {
		return nil, err
	}
	t := &fakeTexture{w: width, h: height, staging: true}
	d.staging = append(d.staging, t)
	return t, nil
}

func (d *fakeDevice) CopySurface(src Texture, srcRect RECT, dst Texture, destPoint POINT) error {
	if err := d.fail("CopySurface"); err != nil {
		return err
	}
	d.copies = append(d.copies, surfaceCopy{src: src, rect: srcRect, dst: dst, at: destPoint})
	return nil
}

func (d *fakeDevice) GetBackBuffer() (Surface, error) {
	if err := d.fail("GetBackBuffer"); err != nil {
		return nil, err
	}
	return d.backBuffer, nil
}

func (d *fakeDevice) GetRenderTarget() (Surface, error) {
	if d.target == nil {
		return d.backBuffer, nil
	}
	return d.target, nil
}

func (d *fakeDevice) SetRenderTarget(s Surface) error {
	d.target = s.(*fakeSurface)
	return nil
}

func (d *fakeDevice) CreateRenderTarget(width, height uint32) (Surface, error) {
	if err := d.fail("CreateRenderTarget"); err != nil {
		return nil, err
	}
	s := &fakeSurface{w: width, h: height}
	d.surfaces = append(d.surfaces, s)
	return s, nil
}

func (d *fakeDevice) StretchRect(src, dst Surface) error {
	d.stretches++
	return nil
}

func (d *fakeDevice) CreateStateBlock() (StateBlock, error) {
	if err := d.fail("CreateStateBlock"); err != nil {
		return nil, err
	}
	sb := &fakeStateBlock{}
	d.stateBlocks = append(d.stateBlocks, sb)
	return sb, nil
}

func (d *fakeDevice) SetRenderState(state, value uint32) error {
	d.renderStates[state] = value
	return nil
}

func (d *fakeDevice) SetSamplerState(sampler, state, value uint32) error { return nil }
func (d *fakeDevice) SetTextureStageState(stage, state, value uint32) error { return nil }

func (d *fakeDevice) SetTransform(which uint32, m Matrix) error {
	d.transforms[which] = m
	return nil
}

func (d *fakeDevice) GetTransform(which uint32) (Matrix, error) {
	return d.transforms[which], nil
}

func (d *fakeDevice) SetViewport(vp Viewport) error {
	d.viewport = vp
	return nil
}

func (d *fakeDevice) SetScissorRect(r RECT) error {
	d.scissors = append(d.scissors, r)
	return nil
}

func (d *fakeDevice) SetFVF(fvf uint32) error {
	d.fvf = fvf
	return nil
}

func (d *fakeDevice) ClearShaders() error {
	d.shadersOff = true
	return nil
}

func (d *fakeDevice) SetStreamSource(vb VertexBuffer, stride uint32) error {
	d.stream = vb
	return nil
}

func (d *fakeDevice) SetIndices(ib IndexBuffer) error {
	d.indices = ib
	return nil
}

func (d *fakeDevice) SetTexture(stage uint32, tex Texture) error {
	if stage == 0 {
		d.boundTexture = append(d.boundTexture, tex)
	}
	return nil
}

func (d *fakeDevice) DrawIndexedTriangles(baseVertex, minVertex, numVertices, startIndex, triCount int) error {
	if err := d.fail("DrawIndexedTriangles"); err != nil {
		return err
	}
	d.draws = append(d.draws, drawCall{baseVertex, minVertex, numVertices, startIndex, triCount})
	return nil
}

// liveTextures counts managed fake textures not yet released.
func (d *fakeDevice) liveTextures() int {
	n := 0
	for _, t := range d.textures {
		if t.released == 0 {
			n++
		}
	}
	return n
}

type fakeVertexBuffer struct {
	byteLen  int
	released int
	uploads  int
	last     []GPUVertex
}

func (b *fakeVertexBuffer) Upload(verts []GPUVertex) error {
	if len(verts)*gpuVertexStride > b.byteLen {
		return fmt.Errorf("vertex upload of %d verts exceeds buffer size %d", len(verts), b.byteLen)
	}
	b.uploads++
	b.last = append(b.last[:0], verts...)
	return nil
}

func (b *fakeVertexBuffer) Release() { b.released++ }

type fakeIndexBuffer struct {
	byteLen  int
	released int
	uploads  int
	last     []uint32
}

func (b *fakeIndexBuffer) Upload(indices []uint32) error {
	if len(indices)*4 > b.byteLen {
		return fmt.Errorf("index upload of %d indices exceeds buffer size %d", len(indices), b.byteLen)
	}
	b.uploads++
	b.last = append(b.last[:0], indices...)
	return nil
}

func (b *fakeIndexBuffer) Release() { b.released++ }

type fakeTexture struct {
	w, h     int
	staging  bool
	released int
	uploads  int
	pixels   []byte
}

func (t *fakeTexture) Upload(pixels []byte, width, height int) error {
	if width != t.w || height != t.h {
		return errors.New("upload size does not match texture size")
	}
	t.uploads++
	t.pixels = append(t.pixels[:0], pixels...)
	return nil
}

func (t *fakeTexture) Release() { t.released++ }

type fakeSurface struct {
	w, h     uint32
	released int
}

func (s *fakeSurface) Desc() (uint32, uint32, error) { return s.w, s.h, nil }
func (s *fakeSurface) Release()                      { s.released++ }

type fakeStateBlock struct {
	captured int
	applied  int
	released int
}

func (b *fakeStateBlock) Capture() error { b.captured++; return nil }
func (b *fakeStateBlock) Apply() error   { b.applied++; return nil }
func (b *fakeStateBlock) Release()       { b.released++ }

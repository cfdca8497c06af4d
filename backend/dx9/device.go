// Package dx9 provides the Direct3D9 backend for the overlay package.
package dx9

// RECT is a pixel-space rectangle in Direct3D convention: left/top
// inclusive, right/bottom exclusive.
type RECT struct {
	Left, Top, Right, Bottom int32
}

// POINT is a pixel-space point.
type POINT struct {
	X, Y int32
}

// Viewport describes the render viewport.
type Viewport struct {
	X, Y          uint32
	Width, Height uint32
	MinZ, MaxZ    float32
}

// Matrix is a row-major 4x4 transform, laid out like D3DMATRIX.
type Matrix [16]float32

// identityMatrix returns the identity transform.
func identityMatrix() Matrix {
	var m Matrix
	m[0], m[5], m[10], m[15] = 1, 1, 1, 1
	return m
}

// VertexBuffer is a GPU vertex buffer in the default pool.
type VertexBuffer interface {
	// Upload rewrites the buffer from offset zero with discard
	// semantics. The data must fit the buffer's creation size.
	Upload(verts []GPUVertex) error
	Release()
}

// IndexBuffer is a GPU 32-bit index buffer in the default pool.
type IndexBuffer interface {
	Upload(indices []uint32) error
	Release()
}

// Texture is a GPU texture. Pixels cross this interface in RGBA byte
// order; implementations swizzle to the device's native layout.
type Texture interface {
	// Upload replaces the whole texture contents. The dimensions must
	// match the texture's creation size.
	Upload(pixels []byte, width, height int) error
	Release()
}

// Surface is a render-target or back-buffer surface.
type Surface interface {
	Desc() (width, height uint32, err error)
	Release()
}

// StateBlock captures and re-applies the device's full pipeline state.
type StateBlock interface {
	Capture() error
	Apply() error
	Release()
}

// Device is the subset of the Direct3D9 device the backend drives. It is
// satisfied by the gonutz/d3d9 adapter on Windows and by an in-memory
// fake in tests. Every call here maps 1:1 onto a device method; no
// call blocks beyond the driver's own synchronous execution.
type Device interface {
	// TestCooperativeLevel reports nil while the device is operational.
	// A device-lost or device-not-reset condition returns an error and
	// the frame is skipped.
	TestCooperativeLevel() error

	CreateVertexBuffer(byteLen int) (VertexBuffer, error)
	CreateIndexBuffer(byteLen int) (IndexBuffer, error)

	// CreateTexture allocates a default-pool dynamic ARGB texture.
	CreateTexture(width, height int) (Texture, error)

	// CreateStagingTexture allocates a system-memory texture used as the
	// source of device-side surface copies.
	CreateStagingTexture(width, height int) (Texture, error)

	// CopySurface copies srcRect of the staging texture src into dst at
	// destPoint, entirely on the device side.
	CopySurface(src Texture, srcRect RECT, dst Texture, destPoint POINT) error

	GetBackBuffer() (Surface, error)
	GetRenderTarget() (Surface, error)
	SetRenderTarget(s Surface) error
	CreateRenderTarget(width, height uint32) (Surface, error)

	// StretchRect blits the whole of src onto the whole of dst without
	// filtering.
	StretchRect(src, dst Surface) error

	CreateStateBlock() (StateBlock, error)

	SetRenderState(state, value uint32) error
	SetSamplerState(sampler, state, value uint32) error
	SetTextureStageState(stage, state, value uint32) error
	SetTransform(which uint32, m Matrix) error
	GetTransform(which uint32) (Matrix, error)
	SetViewport(vp Viewport) error
	SetScissorRect(r RECT) error
	SetFVF(fvf uint32) error

	// ClearShaders unbinds any programmable vertex/pixel shaders so the
	// fixed-function pipeline takes effect.
	ClearShaders() error

	SetStreamSource(vb VertexBuffer, stride uint32) error
	SetIndices(ib IndexBuffer) error

	// SetTexture binds tex to the given stage; nil unbinds.
	SetTexture(stage uint32, tex Texture) error

	// DrawIndexedTriangles issues one indexed triangle-list draw call.
	DrawIndexedTriangles(baseVertex, minVertex, numVertices, startIndex, triCount int) error
}

// Direct3D state ids and values used by the backend, as defined by
// d3d9types.h. Kept local so the state guard compiles and tests off
// Windows; the adapter forwards them verbatim.
const (
	rsZEnable            = 7
	rsFillMode           = 8
	rsShadeMode          = 9
	rsZWriteEnable       = 14
	rsAlphaTestEnable    = 15
	rsLastPixel          = 16
	rsSrcBlend           = 19
	rsDestBlend          = 20
	rsCullMode           = 22
	rsAlphaBlendEnable   = 27
	rsFogEnable          = 28
	rsSpecularEnable     = 29
	rsRangeFogEnable     = 48
	rsStencilEnable      = 52
	rsTextureFactor      = 60
	rsClipping           = 136
	rsLighting           = 137
	rsColorWriteEnable   = 168
	rsBlendOp            = 171
	rsScissorTestEnable  = 174
	rsSRGBWriteEnable    = 194
	rsSeparateAlphaBlend = 206
	rsSrcBlendAlpha      = 207
	rsDestBlendAlpha     = 208
	rsBlendOpAlpha       = 209

	fillSolid    = 3
	shadeGouraud = 2
	cullNone     = 1

	blendOne         = 2
	blendInvSrcAlpha = 6
	blendOpAdd       = 1

	tssColorOp   = 1
	tssColorArg1 = 2
	tssColorArg2 = 3
	tssAlphaOp   = 4
	tssAlphaArg1 = 5
	tssAlphaArg2 = 6
	tssColorArg0 = 26
	tssAlphaArg0 = 27

	topDisable  = 1
	topModulate = 4

	taDiffuse = 0
	taCurrent = 1
	taTexture = 2

	sampAddressU    = 1
	sampAddressV    = 2
	sampAddressW    = 3
	sampBorderColor = 4
	sampMagFilter   = 5
	sampMinFilter   = 6
	sampMipFilter   = 7

	taddressClamp = 3
	texfNone      = 0
	texfLinear    = 2

	tsView       = 2
	tsProjection = 3
	tsWorld      = 256

	fvfXYZ     = 0x002
	fvfDiffuse = 0x040
	fvfTex1    = 0x100

	// overlayFVF is the fixed-function vertex format of GPUVertex.
	overlayFVF = fvfXYZ | fvfDiffuse | fvfTex1
)

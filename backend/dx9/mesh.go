package dx9

import (
	"github.com/go-theft-auto/overlay"
)

// GPUVertex is the fixed-function vertex the backend draws with: XYZ
// position (Z always 0, pixel space), packed D3DCOLOR diffuse, one UV
// set. Layout matches overlayFVF; the half-texel offset lives in the
// projection matrix, not in the positions.
type GPUVertex struct {
	X, Y, Z float32
	Color   uint32
	U, V    float32
}

// gpuVertexStride is the byte size of GPUVertex as the device sees it.
const gpuVertexStride = 24

// MeshDescriptor describes one mesh's slice of the frame's flat
// vertex/index arrays: its clip rectangle, its counts, and its texture.
// Descriptors partition the arrays contiguously in draw order.
type MeshDescriptor struct {
	Clip        RECT
	VertexCount int
	IndexCount  int
	Texture     overlay.TextureID
}

// packColor converts straight RGBA bytes into a D3DCOLOR (ARGB packed,
// blue in the low byte), the order the fixed-function diffuse stage
// expects.
func packColor(c overlay.Color) uint32 {
	return uint32(c[3])<<24 | uint32(c[0])<<16 | uint32(c[1])<<8 | uint32(c[2])
}

// scissorRect converts a toolkit clip rectangle into a device scissor
// rectangle, truncating toward zero like the fixed-function rasterizer
// expects.
func scissorRect(r overlay.Rect) RECT {
	return RECT{
		Left:   int32(r.X),
		Top:    int32(r.Y),
		Right:  int32(r.X + r.W),
		Bottom: int32(r.Y + r.H),
	}
}

// convertMesh converts one toolkit mesh into a descriptor plus its
// vertex and index slices. The conversion is a 1:1 field mapping;
// indices stay local to the mesh and the caller offsets them into the
// frame's flat arrays. Meshes with no vertices or no indices carry
// nothing drawable and are dropped: ok is false and the caller skips
// them silently.
func convertMesh(m *overlay.Mesh) (desc MeshDescriptor, verts []GPUVertex, idxs []uint32, ok bool) {
	if len(m.Vertices) == 0 || len(m.Indices) == 0 {
		return MeshDescriptor{}, nil, nil, false
	}

	verts = make([]GPUVertex, len(m.Vertices))
	for i, v := range m.Vertices {
		verts[i] = GPUVertex{
			X:     v.Pos.X,
			Y:     v.Pos.Y,
			Color: packColor(v.Color),
			U:     v.UV.X,
			V:     v.UV.Y,
		}
	}

	desc = MeshDescriptor{
		Clip:        scissorRect(m.ClipRect),
		VertexCount: len(m.Vertices),
		IndexCount:  len(m.Indices),
		Texture:     m.Texture,
	}
	return desc, verts, m.Indices, true
}

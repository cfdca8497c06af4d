package dx9

import (
	"testing"

	"github.com/go-theft-auto/overlay"
)

func TestPackColor(t *testing.T) {
	tests := []struct {
		name string
		in   overlay.Color
		want uint32
	}{
		{"opaque white", overlay.RGBA(255, 255, 255, 255), 0xFFFFFFFF},
		{"opaque red", overlay.RGBA(255, 0, 0, 255), 0xFFFF0000},
		{"opaque blue", overlay.RGBA(0, 0, 255, 255), 0xFF0000FF},
		{"transparent black", overlay.RGBA(0, 0, 0, 0), 0x00000000},
		{"half green", overlay.RGBA(0, 128, 0, 128), 0x80008000},
	}
	for _, tt := range tests {
		if got := packColor(tt.in); got != tt.want {
			t.Errorf("%s: packColor = %08X, want %08X", tt.name, got, tt.want)
		}
	}
}

func TestScissorRectTruncates(t *testing.T) {
	r := scissorRect(overlay.Rect{X: 1.9, Y: 2.1, W: 10.7, H: 5.9})
	want := RECT{Left: 1, Top: 2, Right: 12, Bottom: 8}
	if r != want {
		t.Errorf("scissorRect = %+v, want %+v", r, want)
	}
}

func TestConvertMesh(t *testing.T) {
	m := &overlay.Mesh{
		ClipRect: overlay.Rect{X: 0, Y: 0, W: 100, H: 50},
		Texture:  overlay.ManagedTextureID(3),
		Vertices: []overlay.MeshVertex{
			{Pos: overlay.Vec2{X: 1, Y: 2}, UV: overlay.Vec2{X: 0.5, Y: 0.25}, Color: overlay.RGBA(255, 0, 0, 255)},
			{Pos: overlay.Vec2{X: 3, Y: 4}},
			{Pos: overlay.Vec2{X: 5, Y: 6}},
		},
		Indices: []uint32{0, 1, 2},
	}

	desc, verts, idxs, ok := convertMesh(m)
	if !ok {
		t.Fatal("convertMesh dropped a drawable mesh")
	}
	if desc.VertexCount != 3 || desc.IndexCount != 3 {
		t.Errorf("counts = %d/%d, want 3/3", desc.VertexCount, desc.IndexCount)
	}
	if desc.Texture != overlay.ManagedTextureID(3) {
		t.Errorf("texture = %v, want managed(3)", desc.Texture)
	}
	if desc.Clip != (RECT{Right: 100, Bottom: 50}) {
		t.Errorf("clip = %+v", desc.Clip)
	}

	v := verts[0]
	if v.X != 1 || v.Y != 2 || v.Z != 0 {
		t.Errorf("vertex position = (%v,%v,%v)", v.X, v.Y, v.Z)
	}
	if v.U != 0.5 || v.V != 0.25 {
		t.Errorf("vertex UV = (%v,%v)", v.U, v.V)
	}
	if v.Color != 0xFFFF0000 {
		t.Errorf("vertex color = %08X, want FFFF0000", v.Color)
	}
	if len(idxs) != 3 {
		t.Errorf("indices = %v", idxs)
	}
}

func TestConvertMeshDropsEmpty(t *testing.T) {
	noVerts := &overlay.Mesh{Indices: []uint32{0, 1, 2}}
	if _, _, _, ok := convertMesh(noVerts); ok {
		t.Error("mesh without vertices not dropped")
	}
	noIdxs := &overlay.Mesh{Vertices: make([]overlay.MeshVertex, 3)}
	if _, _, _, ok := convertMesh(noIdxs); ok {
		t.Error("mesh without indices not dropped")
	}
}

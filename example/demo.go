package main

import (
	"github.com/go-theft-auto/overlay"
)

// demoToolkit is a tiny stand-in for a real UI toolkit: it draws a
// translucent panel and a marker that follows the pointer. It exists so
// the example runs without an external toolkit dependency; a real host
// would plug in its toolkit of choice here.
type demoToolkit struct {
	firstFrame bool
	pointer    overlay.Vec2
	screen     overlay.Rect
}

func newDemoToolkit() *demoToolkit {
	return &demoToolkit{firstFrame: true}
}

const demoFontTexture = 0

func (d *demoToolkit) Run(input overlay.Snapshot, ui func()) (overlay.FrameOutput, error) {
	d.screen = input.ScreenRect
	for _, e := range input.Events {
		switch ev := e.(type) {
		case overlay.PointerMoveEvent:
			d.pointer = ev.Pos
		}
	}
	if ui != nil {
		ui()
	}

	out := overlay.FrameOutput{
		Shapes:         []overlay.Shape{"demo"},
		PixelsPerPoint: 1,
		Repaint:        true,
	}
	if d.firstFrame {
		d.firstFrame = false
		out.Textures.Set = []overlay.TextureSet{whiteTexture()}
	}
	return out, nil
}

func (d *demoToolkit) Tessellate(shapes []overlay.Shape, pixelsPerPoint float32) []overlay.Primitive {
	clip := d.screen
	panel := quad(overlay.Rect{X: 40, Y: 40, W: 260, H: 140}, overlay.RGBA(20, 20, 40, 200))
	panel.ClipRect = clip

	marker := quad(overlay.Rect{X: d.pointer.X - 4, Y: d.pointer.Y - 4, W: 8, H: 8},
		overlay.RGBA(255, 160, 0, 255))
	marker.ClipRect = clip

	return []overlay.Primitive{{Mesh: panel}, {Mesh: marker}}
}

// whiteTexture is the 1x1 white texture every untextured quad samples.
func whiteTexture() overlay.TextureSet {
	return overlay.TextureSet{
		ID:    overlay.ManagedTextureID(demoFontTexture),
		Image: overlay.Image{Width: 1, Height: 1, Pixels: []byte{255, 255, 255, 255}},
	}
}

// quad builds a two-triangle mesh covering r in a premultiplied color.
func quad(r overlay.Rect, c overlay.Color) *overlay.Mesh {
	premul := overlay.Color{
		uint8(uint16(c[0]) * uint16(c[3]) / 255),
		uint8(uint16(c[1]) * uint16(c[3]) / 255),
		uint8(uint16(c[2]) * uint16(c[3]) / 255),
		c[3],
	}
	v := func(x, y float32) overlay.MeshVertex {
		return overlay.MeshVertex{Pos: overlay.Vec2{X: x, Y: y}, Color: premul}
	}
	return &overlay.Mesh{
		Texture: overlay.ManagedTextureID(demoFontTexture),
		Vertices: []overlay.MeshVertex{
			v(r.X, r.Y),
			v(r.X+r.W, r.Y),
			v(r.X+r.W, r.Y+r.H),
			v(r.X, r.Y+r.H),
		},
		Indices: []uint32{0, 1, 2, 0, 2, 3},
	}
}

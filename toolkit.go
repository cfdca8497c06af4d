package overlay

// Shape is an opaque drawable produced by the toolkit. The overlay never
// inspects shapes; it only hands them back to Toolkit.Tessellate.
type Shape any

// MeshVertex is one vertex of a toolkit triangle mesh: position and UV in
// the toolkit's pixel/texel space, color as straight-alpha RGBA bytes.
type MeshVertex struct {
	Pos   Vec2
	UV    Vec2
	Color Color
}

// Mesh is a tessellated triangle mesh: the only primitive kind the
// backend can draw. Indices are local to the mesh's own vertex slice;
// the frame orchestrator offsets them into the frame's flat arrays.
type Mesh struct {
	ClipRect Rect
	Texture  TextureID
	Vertices []MeshVertex
	Indices  []uint32
}

// Primitive is the output of tessellation: either a triangle mesh or a
// custom paint callback. Callbacks are an extensibility path this module
// does not support; encountering one aborts the frame.
type Primitive struct {
	Mesh     *Mesh
	Callback bool
}

// FrameOutput is the immutable bundle the toolkit produces once per
// frame. It is consumed and discarded before the next frame begins.
type FrameOutput struct {
	Shapes         []Shape
	PixelsPerPoint float32
	Textures       TextureDeltas
	CopiedText     string

	// Repaint reports that the toolkit's visual state changed this frame.
	// In reactive mode the backend redraws previously uploaded geometry
	// when this is false.
	Repaint bool
}

// Toolkit is the boundary to the external immediate-mode UI library. The
// overlay drives it once per frame and treats everything behind it as a
// black box.
type Toolkit interface {
	// Run feeds one frame of input to the toolkit, invokes the
	// application's UI callback, and returns the frame's output.
	Run(input Snapshot, ui func()) (FrameOutput, error)

	// Tessellate converts the frame's shapes into drawable primitives.
	Tessellate(shapes []Shape, pixelsPerPoint float32) []Primitive
}

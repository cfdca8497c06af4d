package overlay

import "fmt"

// TextureKind distinguishes the two ownership paths for textures.
type TextureKind uint8

const (
	// TextureManaged textures are created from toolkit texture deltas and
	// owned by the backend's texture cache for their whole lifetime.
	TextureManaged TextureKind = iota

	// TextureUser textures belong to the host application. The backend
	// resolves them through the host every frame and never owns them.
	TextureUser
)

// TextureID identifies a texture referenced by a mesh. It is a tagged
// union: either a managed id (owned by the backend's texture cache) or a
// user id (resolved by the host). User ids must never enter the cache.
type TextureID struct {
	Kind TextureKind
	ID   uint64
}

// ManagedTextureID returns the id of a cache-owned texture.
func ManagedTextureID(id uint64) TextureID {
	return TextureID{Kind: TextureManaged, ID: id}
}

// UserTextureID returns the id of a host-owned texture.
func UserTextureID(id uint64) TextureID {
	return TextureID{Kind: TextureUser, ID: id}
}

// String implements fmt.Stringer for log and error messages.
func (t TextureID) String() string {
	switch t.Kind {
	case TextureManaged:
		return fmt.Sprintf("managed(%d)", t.ID)
	case TextureUser:
		return fmt.Sprintf("user(%d)", t.ID)
	default:
		return fmt.Sprintf("invalid(%d,%d)", t.Kind, t.ID)
	}
}

// Image is a straight-alpha RGBA8 pixel block, 4 bytes per texel in RGBA
// byte order, rows packed tightly top to bottom.
type Image struct {
	Width  int
	Height int
	Pixels []byte
}

// Valid reports whether the pixel slice matches the stated dimensions.
func (img Image) Valid() bool {
	return img.Width > 0 && img.Height > 0 &&
		len(img.Pixels) == img.Width*img.Height*4
}

// TextureSet instructs the backend to create or update one managed
// texture. Pos is nil for a whole-texture update; otherwise the image is
// a patch placed with its top-left corner at Pos within the existing
// texture.
type TextureSet struct {
	ID    TextureID
	Image Image
	Pos   *[2]int
}

// TextureDeltas is the per-frame set of texture instructions produced by
// the toolkit. The backend applies all Set entries before drawing and all
// Free entries after drawing, so a texture updated and freed in the same
// frame still renders that frame.
type TextureDeltas struct {
	Set  []TextureSet
	Free []TextureID
}

// Empty reports whether the deltas carry no instructions.
func (d TextureDeltas) Empty() bool {
	return len(d.Set) == 0 && len(d.Free) == 0
}

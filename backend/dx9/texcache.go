package dx9

import (
	"errors"
	"fmt"

	"github.com/go-theft-auto/overlay"
)

// ErrTextureMissing reports a mesh referencing a managed texture id that
// is not in the cache. Correct toolkit output never triggers it: frees
// are applied only after the frame's draw calls.
var ErrTextureMissing = errors.New("dx9: managed texture not in cache")

// managedTexture is one cache entry. The CPU pixel store is the
// authoritative copy: the GPU handle is nil exactly while the device is
// lost, and recreation after reset uploads from pixels.
type managedTexture struct {
	handle Texture // nil while the device is lost
	pixels []byte  // full RGBA8 copy
	w, h   int
}

// textureCache owns every managed GPU texture, keyed by toolkit texture
// id. User-tagged ids never enter the cache.
type textureCache struct {
	textures map[uint64]*managedTexture
}

func newTextureCache() *textureCache {
	return &textureCache{textures: make(map[uint64]*managedTexture)}
}

// applySets processes the frame's create/update deltas. Must run before
// the frame's draw calls.
func (c *textureCache) applySets(dev Device, sets []overlay.TextureSet) error {
	for _, set := range sets {
		if set.ID.Kind != overlay.TextureManaged {
			return fmt.Errorf("dx9: set delta for non-managed texture %v", set.ID)
		}
		if !set.Image.Valid() {
			return fmt.Errorf("dx9: set delta for %v: image %dx%d with %d pixel bytes",
				set.ID, set.Image.Width, set.Image.Height, len(set.Image.Pixels))
		}

		var err error
		entry := c.textures[set.ID.ID]
		switch {
		case entry == nil:
			err = c.create(dev, set.ID.ID, set.Image)
		case set.Pos == nil:
			err = c.updateWhole(dev, set.ID.ID, set.Image)
		default:
			err = c.updateArea(dev, entry, set.Image, set.Pos[0], set.Pos[1])
		}
		if err != nil {
			return fmt.Errorf("dx9: set delta for %v: %w", set.ID, err)
		}
	}
	return nil
}

// applyFrees removes and releases entries. Must run after the frame's
// draw calls. Freeing an unknown id is a no-op: a delta may name an id
// already removed by an earlier frame.
func (c *textureCache) applyFrees(ids []overlay.TextureID) {
	for _, id := range ids {
		if id.Kind != overlay.TextureManaged {
			continue
		}
		if entry, ok := c.textures[id.ID]; ok {
			if entry.handle != nil {
				entry.handle.Release()
			}
			delete(c.textures, id.ID)
		}
	}
}

// lookup returns the live GPU handle for a managed id.
func (c *textureCache) lookup(id uint64) (Texture, error) {
	entry, ok := c.textures[id]
	if !ok {
		return nil, fmt.Errorf("%w: managed(%d)", ErrTextureMissing, id)
	}
	if entry.handle == nil {
		return nil, fmt.Errorf("dx9: managed(%d) has no GPU handle (device lost?)", id)
	}
	return entry.handle, nil
}

// onDeviceLost drops every GPU handle but keeps the CPU pixel stores for
// recreation. Idempotent.
func (c *textureCache) onDeviceLost() {
	for _, entry := range c.textures {
		if entry.handle != nil {
			entry.handle.Release()
			entry.handle = nil
		}
	}
}

// onDeviceReset recreates a GPU handle for every entry from its CPU
// pixel store. Entries are independent, so order does not matter.
func (c *textureCache) onDeviceReset(dev Device) error {
	for id, entry := range c.textures {
		tex, err := createTextureFrom(dev, entry.pixels, entry.w, entry.h)
		if err != nil {
			return fmt.Errorf("dx9: recreate managed(%d): %w", id, err)
		}
		entry.handle = tex
	}
	return nil
}

// releaseAll drops every entry entirely, GPU handle and CPU cache both.
// Used on renderer teardown.
func (c *textureCache) releaseAll() {
	for id, entry := range c.textures {
		if entry.handle != nil {
			entry.handle.Release()
		}
		delete(c.textures, id)
	}
}

func (c *textureCache) len() int { return len(c.textures) }

// create allocates a brand-new texture sized to the image and uploads
// the full contents.
func (c *textureCache) create(dev Device, id uint64, img overlay.Image) error {
	tex, err := createTextureFrom(dev, img.Pixels, img.Width, img.Height)
	if err != nil {
		return err
	}
	c.textures[id] = &managedTexture{
		handle: tex,
		pixels: clonePixels(img.Pixels),
		w:      img.Width,
		h:      img.Height,
	}
	return nil
}

// updateWhole replaces the entire texture. Same size re-uploads in
// place; a size change destroys and recreates the entry.
func (c *textureCache) updateWhole(dev Device, id uint64, img overlay.Image) error {
	entry := c.textures[id]
	if img.Width == entry.w && img.Height == entry.h {
		if err := entry.handle.Upload(img.Pixels, img.Width, img.Height); err != nil {
			return err
		}
		entry.pixels = clonePixels(img.Pixels)
		return nil
	}

	entry.handle.Release()
	delete(c.textures, id)
	return c.create(dev, id, img)
}

// updateArea patches a sub-region: the patch goes through a staging
// texture and a device-side surface copy, never a CPU readback. The CPU
// pixel store is patched too so device-lost recreation stays lossless.
func (c *textureCache) updateArea(dev Device, entry *managedTexture, img overlay.Image, x, y int) error {
	if x < 0 || y < 0 || x+img.Width > entry.w || y+img.Height > entry.h {
		return fmt.Errorf("patch %dx%d at (%d,%d) outside %dx%d texture",
			img.Width, img.Height, x, y, entry.w, entry.h)
	}

	staging, err := dev.CreateStagingTexture(img.Width, img.Height)
	if err != nil {
		return fmt.Errorf("create staging texture: %w", err)
	}
	defer staging.Release()

	if err := staging.Upload(img.Pixels, img.Width, img.Height); err != nil {
		return fmt.Errorf("fill staging texture: %w", err)
	}

	src := RECT{Right: int32(img.Width), Bottom: int32(img.Height)}
	if err := dev.CopySurface(staging, src, entry.handle, POINT{X: int32(x), Y: int32(y)}); err != nil {
		return fmt.Errorf("copy staging surface: %w", err)
	}

	// Mirror the patch into the CPU store.
	for row := 0; row < img.Height; row++ {
		dst := ((y+row)*entry.w + x) * 4
		srcOff := row * img.Width * 4
		copy(entry.pixels[dst:dst+img.Width*4], img.Pixels[srcOff:srcOff+img.Width*4])
	}
	return nil
}

// createTextureFrom allocates a GPU texture and uploads pixels into it.
func createTextureFrom(dev Device, pixels []byte, w, h int) (Texture, error) {
	tex, err := dev.CreateTexture(w, h)
	if err != nil {
		return nil, fmt.Errorf("create %dx%d texture: %w", w, h, err)
	}
	if err := tex.Upload(pixels, w, h); err != nil {
		tex.Release()
		return nil, fmt.Errorf("upload %dx%d texture: %w", w, h, err)
	}
	return tex, nil
}

func clonePixels(p []byte) []byte {
	out := make([]byte, len(p))
	copy(out, p)
	return out
}

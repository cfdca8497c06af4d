package dx9

import (
	"bytes"
	"errors"
	"testing"

	"github.com/go-theft-auto/overlay"
)

// solidImage builds a w x h RGBA image filled with one pixel value.
func solidImage(w, h int, r, g, b, a byte) overlay.Image {
	px := make([]byte, w*h*4)
	for i := 0; i < len(px); i += 4 {
		px[i], px[i+1], px[i+2], px[i+3] = r, g, b, a
	}
	return overlay.Image{Width: w, Height: h, Pixels: px}
}

func managedSet(id uint64, img overlay.Image) overlay.TextureSet {
	return overlay.TextureSet{ID: overlay.ManagedTextureID(id), Image: img}
}

func TestTextureCacheCreateAndLookup(t *testing.T) {
	dev := newFakeDevice()
	cache := newTextureCache()

	img := solidImage(4, 4, 10, 20, 30, 255)
	if err := cache.applySets(dev, []overlay.TextureSet{managedSet(1, img)}); err != nil {
		t.Fatalf("applySets: %v", err)
	}

	tex, err := cache.lookup(1)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	ft := tex.(*fakeTexture)
	if ft.w != 4 || ft.h != 4 {
		t.Errorf("texture size = %dx%d, want 4x4", ft.w, ft.h)
	}
	if !bytes.Equal(ft.pixels, img.Pixels) {
		t.Error("uploaded pixels differ from image")
	}
}

func TestTextureCacheLookupMissing(t *testing.T) {
	cache := newTextureCache()
	if _, err := cache.lookup(42); !errors.Is(err, ErrTextureMissing) {
		t.Errorf("lookup of unknown id = %v, want ErrTextureMissing", err)
	}
}

func TestTextureCacheWholeUpdateSameSize(t *testing.T) {
	dev := newFakeDevice()
	cache := newTextureCache()

	if err := cache.applySets(dev, []overlay.TextureSet{managedSet(1, solidImage(4, 4, 1, 1, 1, 255))}); err != nil {
		t.Fatalf("create: %v", err)
	}
	next := solidImage(4, 4, 9, 9, 9, 255)
	if err := cache.applySets(dev, []overlay.TextureSet{managedSet(1, next)}); err != nil {
		t.Fatalf("update: %v", err)
	}

	// Same size must reuse the existing GPU texture.
	if len(dev.textures) != 1 {
		t.Fatalf("device has %d textures, want 1", len(dev.textures))
	}
	if dev.textures[0].uploads != 2 {
		t.Errorf("uploads = %d, want 2", dev.textures[0].uploads)
	}
	if !bytes.Equal(cache.textures[1].pixels, next.Pixels) {
		t.Error("CPU pixel store not refreshed by whole update")
	}
}

func TestTextureCacheWholeUpdateResizes(t *testing.T) {
	dev := newFakeDevice()
	cache := newTextureCache()

	if err := cache.applySets(dev, []overlay.TextureSet{managedSet(1, solidImage(4, 4, 1, 1, 1, 255))}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := cache.applySets(dev, []overlay.TextureSet{managedSet(1, solidImage(8, 2, 2, 2, 2, 255))}); err != nil {
		t.Fatalf("resize: %v", err)
	}

	if dev.textures[0].released != 1 {
		t.Error("old texture not released on resize")
	}
	tex, err := cache.lookup(1)
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	ft := tex.(*fakeTexture)
	if ft.w != 8 || ft.h != 2 {
		t.Errorf("texture size = %dx%d, want 8x2", ft.w, ft.h)
	}
}

func TestTextureCachePartialUpdate(t *testing.T) {
	dev := newFakeDevice()
	cache := newTextureCache()

	if err := cache.applySets(dev, []overlay.TextureSet{managedSet(1, solidImage(4, 4, 0, 0, 0, 255))}); err != nil {
		t.Fatalf("create: %v", err)
	}

	patch := managedSet(1, solidImage(2, 2, 255, 0, 0, 255))
	patch.Pos = &[2]int{1, 1}
	if err := cache.applySets(dev, []overlay.TextureSet{patch}); err != nil {
		t.Fatalf("patch: %v", err)
	}

	// The patch travels through a staging texture and one surface copy.
	if len(dev.staging) != 1 {
		t.Fatalf("staging textures = %d, want 1", len(dev.staging))
	}
	if dev.staging[0].released != 1 {
		t.Error("staging texture not released")
	}
	if len(dev.copies) != 1 {
		t.Fatalf("surface copies = %d, want 1", len(dev.copies))
	}
	c := dev.copies[0]
	if c.rect != (RECT{Right: 2, Bottom: 2}) {
		t.Errorf("copy rect = %+v, want 2x2 at origin", c.rect)
	}
	if c.at != (POINT{X: 1, Y: 1}) {
		t.Errorf("copy point = %+v, want (1,1)", c.at)
	}

	// CPU mirror holds the patch at the right offset.
	px := cache.textures[1].pixels
	center := (1*4 + 1) * 4
	if px[center] != 255 || px[center+3] != 255 {
		t.Error("CPU store missing patched pixel at (1,1)")
	}
	corner := 0
	if px[corner] != 0 {
		t.Error("CPU store corner pixel overwritten by patch")
	}
}

func TestTextureCachePartialUpdateOutOfBounds(t *testing.T) {
	dev := newFakeDevice()
	cache := newTextureCache()

	if err := cache.applySets(dev, []overlay.TextureSet{managedSet(1, solidImage(4, 4, 0, 0, 0, 255))}); err != nil {
		t.Fatalf("create: %v", err)
	}
	patch := managedSet(1, solidImage(3, 3, 1, 1, 1, 255))
	patch.Pos = &[2]int{2, 2}
	if err := cache.applySets(dev, []overlay.TextureSet{patch}); err == nil {
		t.Error("expected error for patch outside texture bounds")
	}
}

func TestTextureCacheFreeUnknownIsNoOp(t *testing.T) {
	cache := newTextureCache()
	cache.applyFrees([]overlay.TextureID{overlay.ManagedTextureID(7)})
	if cache.len() != 0 {
		t.Error("cache not empty after freeing unknown id")
	}
}

func TestTextureCacheFreeReleasesOnce(t *testing.T) {
	dev := newFakeDevice()
	cache := newTextureCache()

	if err := cache.applySets(dev, []overlay.TextureSet{managedSet(1, solidImage(2, 2, 0, 0, 0, 255))}); err != nil {
		t.Fatalf("create: %v", err)
	}
	id := overlay.ManagedTextureID(1)
	cache.applyFrees([]overlay.TextureID{id})
	cache.applyFrees([]overlay.TextureID{id})

	if dev.textures[0].released != 1 {
		t.Errorf("texture released %d times, want 1", dev.textures[0].released)
	}
	if _, err := cache.lookup(1); !errors.Is(err, ErrTextureMissing) {
		t.Error("freed texture still resolvable")
	}
}

func TestTextureCacheIgnoresUserFrees(t *testing.T) {
	dev := newFakeDevice()
	cache := newTextureCache()

	if err := cache.applySets(dev, []overlay.TextureSet{managedSet(1, solidImage(2, 2, 0, 0, 0, 255))}); err != nil {
		t.Fatalf("create: %v", err)
	}
	cache.applyFrees([]overlay.TextureID{overlay.UserTextureID(1)})
	if cache.len() != 1 {
		t.Error("user-tagged free removed a managed entry")
	}
}

func TestTextureCacheDeviceLostRoundTrip(t *testing.T) {
	dev := newFakeDevice()
	cache := newTextureCache()

	img := solidImage(4, 4, 12, 34, 56, 255)
	if err := cache.applySets(dev, []overlay.TextureSet{managedSet(1, img)}); err != nil {
		t.Fatalf("create: %v", err)
	}

	cache.onDeviceLost()
	if _, err := cache.lookup(1); err == nil {
		t.Fatal("lookup succeeded while device lost")
	}
	if dev.textures[0].released != 1 {
		t.Error("GPU handle not released on device lost")
	}

	if err := cache.onDeviceReset(dev); err != nil {
		t.Fatalf("onDeviceReset: %v", err)
	}
	tex, err := cache.lookup(1)
	if err != nil {
		t.Fatalf("lookup after reset: %v", err)
	}
	if !bytes.Equal(tex.(*fakeTexture).pixels, img.Pixels) {
		t.Error("recreated texture pixels differ from original image")
	}
}

func TestTextureCacheRejectsUserSets(t *testing.T) {
	dev := newFakeDevice()
	cache := newTextureCache()

	set := overlay.TextureSet{ID: overlay.UserTextureID(1), Image: solidImage(2, 2, 0, 0, 0, 255)}
	if err := cache.applySets(dev, []overlay.TextureSet{set}); err == nil {
		t.Error("expected error for set delta on user texture")
	}
}

func TestTextureCacheReleaseAll(t *testing.T) {
	dev := newFakeDevice()
	cache := newTextureCache()

	sets := []overlay.TextureSet{
		managedSet(1, solidImage(2, 2, 0, 0, 0, 255)),
		managedSet(2, solidImage(2, 2, 0, 0, 0, 255)),
	}
	if err := cache.applySets(dev, sets); err != nil {
		t.Fatalf("create: %v", err)
	}
	cache.releaseAll()

	if cache.len() != 0 {
		t.Error("cache not empty after releaseAll")
	}
	if dev.liveTextures() != 0 {
		t.Error("GPU textures still live after releaseAll")
	}
}

package dx9

import "fmt"

// stateGuard snapshots the host's pipeline state while the overlay
// draws. It is armed by enterOverlayState and must be restored exactly
// once, on every exit path, before the frame's error (if any)
// propagates. The guard is not reentrant: the frame orchestrator is its
// only construction site and never holds two at once.
type stateGuard struct {
	dev Device

	block      StateBlock
	world      Matrix
	view       Matrix
	projection Matrix
	backBuffer Surface
	target     Surface // the overlay's own render target while armed
}

// enterOverlayState captures the host's full state block, transforms,
// and back buffer, then installs the overlay pipeline: a fresh render
// target seeded with the back-buffer contents, pixel-space orthographic
// projection, premultiplied source-over blending, scissor on, depth off,
// fixed-function vertex processing, linear clamped sampling.
func enterOverlayState(dev Device, vp Viewport) (*stateGuard, error) {
	block, err := dev.CreateStateBlock()
	if err != nil {
		return nil, fmt.Errorf("create state block: %w", err)
	}
	if err := block.Capture(); err != nil {
		block.Release()
		return nil, fmt.Errorf("capture state block: %w", err)
	}

	g := &stateGuard{dev: dev, block: block}

	if g.world, err = dev.GetTransform(tsWorld); err != nil {
		block.Release()
		return nil, fmt.Errorf("save world transform: %w", err)
	}
	if g.view, err = dev.GetTransform(tsView); err != nil {
		block.Release()
		return nil, fmt.Errorf("save view transform: %w", err)
	}
	if g.projection, err = dev.GetTransform(tsProjection); err != nil {
		block.Release()
		return nil, fmt.Errorf("save projection transform: %w", err)
	}

	if g.backBuffer, err = dev.GetBackBuffer(); err != nil {
		block.Release()
		return nil, fmt.Errorf("save back buffer: %w", err)
	}

	if err := g.setup(vp); err != nil {
		// Leave the device as close to untouched as we can.
		g.restore()
		return nil, err
	}
	return g, nil
}

// setup installs the overlay's pipeline configuration.
func (g *stateGuard) setup(vp Viewport) error {
	dev := g.dev

	// Draw onto a dedicated render target seeded with the current back
	// buffer, so a failed frame never leaves partial overlay pixels in
	// the host's swap chain.
	w, h, err := g.backBuffer.Desc()
	if err != nil {
		return fmt.Errorf("back buffer desc: %w", err)
	}
	if g.target, err = dev.CreateRenderTarget(w, h); err != nil {
		return fmt.Errorf("create overlay render target: %w", err)
	}
	if err := dev.SetRenderTarget(g.target); err != nil {
		return fmt.Errorf("bind overlay render target: %w", err)
	}
	if err := dev.StretchRect(g.backBuffer, g.target); err != nil {
		return fmt.Errorf("seed overlay render target: %w", err)
	}

	if err := dev.SetViewport(vp); err != nil {
		return fmt.Errorf("set viewport: %w", err)
	}
	if err := dev.ClearShaders(); err != nil {
		return fmt.Errorf("clear shaders: %w", err)
	}
	if err := dev.SetFVF(overlayFVF); err != nil {
		return fmt.Errorf("set vertex format: %w", err)
	}

	ident := identityMatrix()
	if err := dev.SetTransform(tsWorld, ident); err != nil {
		return err
	}
	if err := dev.SetTransform(tsView, ident); err != nil {
		return err
	}
	if err := dev.SetTransform(tsProjection, orthoProjection(vp)); err != nil {
		return err
	}

	for _, rs := range overlayRenderStates {
		if err := dev.SetRenderState(rs[0], rs[1]); err != nil {
			return fmt.Errorf("set render state %d=%d: %w", rs[0], rs[1], err)
		}
	}
	for _, ts := range overlayStageStates {
		if err := dev.SetTextureStageState(ts[0], ts[1], ts[2]); err != nil {
			return fmt.Errorf("set stage %d state %d=%d: %w", ts[0], ts[1], ts[2], err)
		}
	}
	for _, ss := range overlaySamplerStates {
		if err := dev.SetSamplerState(0, ss[0], ss[1]); err != nil {
			return fmt.Errorf("set sampler state %d=%d: %w", ss[0], ss[1], err)
		}
	}
	return nil
}

// restore puts the host's state back: transforms first, then the render
// target (blitting the overlay's target into the back buffer), then the
// full state block. Runs on every exit path, success or not.
func (g *stateGuard) restore() {
	dev := g.dev

	dev.SetTransform(tsWorld, g.world)
	dev.SetTransform(tsView, g.view)
	dev.SetTransform(tsProjection, g.projection)

	if g.target != nil {
		// Resolve the drawn frame into the real back buffer and rebind it.
		if current, err := dev.GetRenderTarget(); err == nil {
			dev.StretchRect(current, g.backBuffer)
			current.Release()
		}
		dev.SetRenderTarget(g.backBuffer)
		g.target.Release()
		g.target = nil
	}

	g.block.Apply()
	g.block.Release()
	g.backBuffer.Release()
}

// orthoProjection builds the pixel-space orthographic projection with
// the Direct3D9 half-texel offset baked in, mapping the client area onto
// clip space with Y down.
func orthoProjection(vp Viewport) Matrix {
	l := float32(0.5)
	r := float32(vp.Width) + 0.5
	t := float32(0.5)
	b := float32(vp.Height) + 0.5

	var m Matrix
	m[0] = 2 / (r - l)
	m[5] = 2 / (t - b)
	m[10] = 0.5
	m[12] = (l + r) / (l - r)
	m[13] = (t + b) / (b - t)
	m[14] = 0.5
	m[15] = 1
	return m
}

// overlayRenderStates is the full fixed-function render state the
// overlay needs, as {state, value} pairs applied in order.
var overlayRenderStates = [][2]uint32{
	{rsFillMode, fillSolid},
	{rsShadeMode, shadeGouraud},
	{rsZEnable, 0},
	{rsZWriteEnable, 0},
	{rsAlphaTestEnable, 0},
	{rsCullMode, cullNone},
	{rsAlphaBlendEnable, 1},
	{rsBlendOp, blendOpAdd},
	{rsSrcBlend, blendOne},
	{rsDestBlend, blendInvSrcAlpha},
	{rsSeparateAlphaBlend, 1},
	{rsBlendOpAlpha, blendOpAdd},
	{rsSrcBlendAlpha, blendOne},
	{rsDestBlendAlpha, blendInvSrcAlpha},
	{rsScissorTestEnable, 1},
	{rsFogEnable, 0},
	{rsRangeFogEnable, 0},
	{rsSpecularEnable, 0},
	{rsStencilEnable, 0},
	{rsClipping, 1},
	{rsLighting, 0},
	{rsTextureFactor, 0xFFFFFFFF},
	{rsColorWriteEnable, 0xFFFFFFFF},
	{rsSRGBWriteEnable, 0},
	{rsLastPixel, 1},
}

// overlayStageStates modulates texture and diffuse on stage 0 and
// disables stages 1 and 2, as {stage, state, value} triples.
var overlayStageStates = [][3]uint32{
	{0, tssColorOp, topModulate},
	{0, tssColorArg0, taCurrent},
	{0, tssColorArg1, taTexture},
	{0, tssColorArg2, taDiffuse},
	{0, tssAlphaOp, topModulate},
	{0, tssAlphaArg0, taCurrent},
	{0, tssAlphaArg1, taTexture},
	{0, tssAlphaArg2, taDiffuse},
	{1, tssColorOp, topDisable},
	{1, tssAlphaOp, topDisable},
	{2, tssColorOp, topDisable},
	{2, tssAlphaOp, topDisable},
}

// overlaySamplerStates configures linear filtered, clamped sampling on
// stage 0, as {state, value} pairs.
var overlaySamplerStates = [][2]uint32{
	{sampMinFilter, texfLinear},
	{sampMipFilter, texfLinear},
	{sampMagFilter, texfLinear},
	{sampBorderColor, 0xFFFFFFFF},
	{sampAddressU, taddressClamp},
	{sampAddressV, taddressClamp},
	{sampAddressW, taddressClamp},
}

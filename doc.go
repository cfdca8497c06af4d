/*
Package overlay renders an external immediate-mode UI toolkit on top of a
host application that owns the render loop, such as a game rendering
through a Direct3D9 swapchain.

The module splits into two layers:

  - The root package is toolkit- and GPU-agnostic. It defines the data
    that crosses the toolkit boundary each frame (meshes, texture deltas,
    input events) plus the host-side glue: decoding native window messages
    into input events and accessing the system clipboard.
  - backend/dx9 is the Direct3D9 renderer. It turns a frame's mesh list
    into GPU draw calls, owns the vertex/index buffers and the texture
    cache, and saves and restores the host's full pipeline state around
    every frame so the overlay never corrupts the host's own rendering.

# Usage

The host wires the overlay into its window procedure and its present
path:

	queue := overlay.NewInputQueue(hwnd)

	// In the window procedure, for every message:
	queue.ProcessMessage(msg, wparam, lparam)

	// Once, after the device exists:
	r, err := dx9.New(dx9.NewDevice(device), toolkit, handler, queue)

	// Every frame, on the render thread, after the host's own drawing:
	if err := r.Present(); err != nil { ... }

	// Before resetting the device:
	r.PreReset()

The toolkit itself (widgets, layout, tessellation) is a black box behind
the Toolkit interface; this module only consumes its per-frame output and
feeds it raw input events.
*/
package overlay

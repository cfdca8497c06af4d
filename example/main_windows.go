//go:build windows

// Example opens a window, creates a Direct3D9 device, and renders the
// demo toolkit's overlay on top of a cleared scene. It is the full
// wiring a game hook would use, minus the hooking: window messages feed
// the input queue and the renderer runs right before Present.
package main

import (
	"fmt"
	"os"
	"runtime"
	"syscall"
	"unsafe"

	"github.com/gonutz/d3d9"
	"golang.org/x/sys/windows"

	"github.com/go-theft-auto/overlay"
	"github.com/go-theft-auto/overlay/backend/dx9"
)

const (
	windowWidth  = 800
	windowHeight = 600
	windowTitle  = "overlay example"
)

var (
	user32              = windows.NewLazySystemDLL("user32.dll")
	procRegisterClassEx = user32.NewProc("RegisterClassExW")
	procCreateWindowEx  = user32.NewProc("CreateWindowExW")
	procDefWindowProc   = user32.NewProc("DefWindowProcW")
	procDestroyWindow   = user32.NewProc("DestroyWindow")
	procPostQuitMessage = user32.NewProc("PostQuitMessage")
	procPeekMessage     = user32.NewProc("PeekMessageW")
	procTranslateMsg    = user32.NewProc("TranslateMessage")
	procDispatchMessage = user32.NewProc("DispatchMessageW")
	procShowWindow      = user32.NewProc("ShowWindow")
)

const (
	wsOverlappedWindow = 0x00CF0000
	cwUseDefault       = 0x80000000
	swShow             = 5
	wmDestroy          = 0x0002
	wmQuit             = 0x0012
	pmRemove           = 0x0001
)

type wndClassEx struct {
	Size       uint32
	Style      uint32
	WndProc    uintptr
	ClsExtra   int32
	WndExtra   int32
	Instance   windows.Handle
	Icon       windows.Handle
	Cursor     windows.Handle
	Background windows.Handle
	MenuName   *uint16
	ClassName  *uint16
	IconSm     windows.Handle
}

type msg struct {
	Hwnd    windows.Handle
	Message uint32
	WParam  uintptr
	LParam  uintptr
	Time    uint32
	Pt      [2]int32
}

// queue is reached from the window procedure, which cannot close over
// locals when passed to Windows as a callback.
var queue *overlay.InputQueue

func wndProc(hwnd windows.Handle, message uint32, wparam, lparam uintptr) uintptr {
	if message == wmDestroy {
		procPostQuitMessage.Call(0)
		return 0
	}
	if queue != nil {
		queue.ProcessMessage(message, wparam, lparam)
	}
	ret, _, _ := procDefWindowProc.Call(uintptr(hwnd), uintptr(message), wparam, lparam)
	return ret
}

func init() {
	// The window and the device must live on one thread.
	runtime.LockOSThread()
}

func main() {
	dx9.SetVerbose(len(os.Args) > 1 && os.Args[1] == "-v")
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	hwnd, err := createWindow()
	if err != nil {
		return err
	}
	defer procDestroyWindow.Call(uintptr(hwnd))

	d3d, err := d3d9.Create(d3d9.SDK_VERSION)
	if err != nil {
		return fmt.Errorf("d3d9 create: %w", err)
	}
	defer d3d.Release()

	device, _, err := d3d.CreateDevice(
		d3d9.ADAPTER_DEFAULT,
		d3d9.DEVTYPE_HAL,
		d3d9.HWND(hwnd),
		d3d9.CREATE_HARDWARE_VERTEXPROCESSING,
		d3d9.PRESENT_PARAMETERS{
			Windowed:         1,
			HDeviceWindow:    d3d9.HWND(hwnd),
			SwapEffect:       d3d9.SWAPEFFECT_DISCARD,
			BackBufferFormat: d3d9.FMT_A8R8G8B8,
			BackBufferWidth:  windowWidth,
			BackBufferHeight: windowHeight,
		},
	)
	if err != nil {
		return fmt.Errorf("create device: %w", err)
	}
	defer device.Release()

	queue = overlay.NewInputQueue(uintptr(hwnd))
	clipboard := overlay.NewSystemClipboard()
	queue.SetClipboard(clipboard)

	renderer, err := dx9.New(
		dx9.NewDevice(device),
		newDemoToolkit(),
		noopHandler{},
		queue,
		dx9.WithClipboard(clipboard),
	)
	if err != nil {
		return err
	}
	defer renderer.Close()

	for pumpMessages() {
		device.Clear(nil, d3d9.CLEAR_TARGET, d3d9.ColorValue(0.12, 0.12, 0.12, 1), 1, 0)
		device.BeginScene()
		// A real host draws its scene here.
		device.EndScene()

		if err := renderer.Present(); err != nil {
			return fmt.Errorf("overlay frame: %w", err)
		}
		device.Present(nil, nil, 0, nil)
	}
	return nil
}

// noopHandler has no immediate-mode UI callback and no user textures;
// the demo toolkit produces all its output itself.
type noopHandler struct{}

func (noopHandler) UI() {}

func (noopHandler) ResolveUserTexture(id uint64) (dx9.Texture, bool) { return nil, false }

func createWindow() (windows.Handle, error) {
	className, err := syscall.UTF16PtrFromString("overlayExampleWindow")
	if err != nil {
		return 0, err
	}
	title, err := syscall.UTF16PtrFromString(windowTitle)
	if err != nil {
		return 0, err
	}

	wc := wndClassEx{
		Size:      uint32(unsafe.Sizeof(wndClassEx{})),
		WndProc:   syscall.NewCallback(wndProc),
		ClassName: className,
	}
	if atom, _, err := procRegisterClassEx.Call(uintptr(unsafe.Pointer(&wc))); atom == 0 {
		return 0, fmt.Errorf("register window class: %w", err)
	}

	hwnd, _, err := procCreateWindowEx.Call(
		0,
		uintptr(unsafe.Pointer(className)),
		uintptr(unsafe.Pointer(title)),
		wsOverlappedWindow,
		cwUseDefault, cwUseDefault,
		windowWidth, windowHeight,
		0, 0, 0, 0,
	)
	if hwnd == 0 {
		return 0, fmt.Errorf("create window: %w", err)
	}
	procShowWindow.Call(hwnd, swShow)
	return windows.Handle(hwnd), nil
}

// pumpMessages drains the thread's message queue and reports false once
// WM_QUIT arrives.
func pumpMessages() bool {
	var m msg
	for {
		got, _, _ := procPeekMessage.Call(uintptr(unsafe.Pointer(&m)), 0, 0, 0, pmRemove)
		if got == 0 {
			return true
		}
		if m.Message == wmQuit {
			return false
		}
		procTranslateMsg.Call(uintptr(unsafe.Pointer(&m)))
		procDispatchMessage.Call(uintptr(unsafe.Pointer(&m)))
	}
}

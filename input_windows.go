//go:build windows

package overlay

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	user32               = windows.NewLazySystemDLL("user32.dll")
	procGetClientRect    = user32.NewProc("GetClientRect")
	procGetAsyncKeyState = user32.NewProc("GetAsyncKeyState")
)

const (
	vkControl = 0x11
	vkLShift  = 0xA0
)

// keyModifiers samples the live modifier state for keyboard messages.
// Key messages do not carry MK_* flags the way mouse messages do, so the
// state comes from GetAsyncKeyState, like the toolkit expects.
func keyModifiers(sysKey bool) Modifiers {
	ctrl := asyncKeyDown(vkControl)
	return Modifiers{
		Alt:     sysKey,
		Ctrl:    ctrl,
		Shift:   asyncKeyDown(vkLShift),
		Command: ctrl,
	}
}

func asyncKeyDown(vk int) bool {
	state, _, _ := procGetAsyncKeyState.Call(uintptr(vk))
	return uint16(state)&0x8000 != 0
}

// clientSize returns the window's client area in pixels.
func clientSize(hwnd uintptr) (int, int) {
	var r struct{ left, top, right, bottom int32 }
	ret, _, _ := procGetClientRect.Call(hwnd, uintptr(unsafe.Pointer(&r)))
	if ret == 0 {
		return 0, 0
	}
	return int(r.right - r.left), int(r.bottom - r.top)
}

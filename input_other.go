//go:build !windows

package overlay

// Non-Windows builds exist only so the decode logic and its tests run on
// any platform; there is no live key state or window to query.

func keyModifiers(sysKey bool) Modifiers {
	return Modifiers{Alt: sysKey}
}

func clientSize(hwnd uintptr) (int, int) {
	return 0, 0
}

package overlay

import (
	"sync"
	"time"
)

// PointerButton identifies a mouse button.
type PointerButton int

const (
	PointerPrimary PointerButton = iota
	PointerSecondary
	PointerMiddle
	PointerExtra1
	PointerExtra2
)

// Key identifies a keyboard key the toolkit understands.
type Key int

const (
	KeyNone Key = iota
	Key0
	Key1
	Key2
	Key3
	Key4
	Key5
	Key6
	Key7
	Key8
	Key9
	KeyA
	KeyB
	KeyC
	KeyD
	KeyE
	KeyF
	KeyG
	KeyH
	KeyI
	KeyJ
	KeyK
	KeyL
	KeyM
	KeyN
	KeyO
	KeyP
	KeyQ
	KeyR
	KeyS
	KeyT
	KeyU
	KeyV
	KeyW
	KeyX
	KeyY
	KeyZ
	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12
	KeyArrowDown
	KeyArrowLeft
	KeyArrowRight
	KeyArrowUp
	KeyEscape
	KeyTab
	KeyBackspace
	KeyEnter
	KeySpace
	KeyInsert
	KeyDelete
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown
	KeyCount
)

// Modifiers holds the keyboard modifier state attached to an event.
type Modifiers struct {
	Alt     bool
	Ctrl    bool
	Shift   bool
	Command bool
}

// Event is a single input event destined for the toolkit. Concrete types
// are the *Event structs below; the toolkit switches on them.
type Event interface {
	isEvent()
}

// PointerMoveEvent reports the pointer moving to a new position.
type PointerMoveEvent struct {
	Pos Vec2
}

// PointerButtonEvent reports a button press or release.
type PointerButtonEvent struct {
	Pos       Vec2
	Button    PointerButton
	Pressed   bool
	Modifiers Modifiers
}

// WheelEvent reports scroll wheel movement in points.
type WheelEvent struct {
	Delta     Vec2
	Modifiers Modifiers
}

// ZoomEvent reports a ctrl-wheel zoom gesture.
type ZoomEvent struct {
	Factor float32
}

// TextEvent reports typed (or pasted) text.
type TextEvent struct {
	Text string
}

// KeyEvent reports a key press or release.
type KeyEvent struct {
	Key       Key
	Pressed   bool
	Repeat    bool
	Modifiers Modifiers
}

// CopyEvent asks the toolkit to copy its selection.
type CopyEvent struct{}

// CutEvent asks the toolkit to cut its selection.
type CutEvent struct{}

func (PointerMoveEvent) isEvent()   {}
func (PointerButtonEvent) isEvent() {}
func (WheelEvent) isEvent()         {}
func (ZoomEvent) isEvent()          {}
func (TextEvent) isEvent()          {}
func (KeyEvent) isEvent()           {}
func (CopyEvent) isEvent()          {}
func (CutEvent) isEvent()           {}

// Snapshot is one frame's worth of input, handed to Toolkit.Run and then
// discarded.
type Snapshot struct {
	Events      []Event
	Modifiers   Modifiers
	ScreenRect  Rect
	Time        float64 // Seconds since the queue was created
	PredictedDT float32
}

// MessageClass is a coarse classification of a processed window message,
// returned to the host for its own bookkeeping (for example, deciding
// whether to swallow the message).
type MessageClass uint8

const (
	ClassUnknown MessageClass = iota
	ClassMouseMove
	ClassMouseButton
	ClassWheel
	ClassZoom
	ClassCharacter
	ClassKey
)

// Handled reports whether the message was recognized as input.
func (c MessageClass) Handled() bool { return c != ClassUnknown }

// Win32 message and flag constants used by the translation table. Defined
// locally so the decode logic compiles and tests on every platform.
const (
	wmKeyDown     = 0x0100
	wmKeyUp       = 0x0101
	wmChar        = 0x0102
	wmSysKeyDown  = 0x0104
	wmSysKeyUp    = 0x0105
	wmMouseMove   = 0x0200
	wmLButtonDown = 0x0201
	wmLButtonUp   = 0x0202
	wmLButtonDbl  = 0x0203
	wmRButtonDown = 0x0204
	wmRButtonUp   = 0x0205
	wmRButtonDbl  = 0x0206
	wmMButtonDown = 0x0207
	wmMButtonUp   = 0x0208
	wmMButtonDbl  = 0x0209
	wmMouseWheel  = 0x020A
	wmXButtonDown = 0x020B
	wmXButtonUp   = 0x020C
	wmXButtonDbl  = 0x020D
	wmMouseHWheel = 0x020E

	mkShift   = 0x0004
	mkControl = 0x0008

	wheelDelta = 120

	xButton1 = 0x0001
	xButton2 = 0x0002
)

// InputQueue collects input events between frames. The window thread
// appends through ProcessMessage; the render thread drains everything
// once per frame through Snapshot. The two sides share only the short
// critical section around the slice swap.
type InputQueue struct {
	hwnd  uintptr
	start time.Time

	mu        sync.Mutex
	events    []Event
	modifiers Modifiers

	clipboard Clipboard
}

// NewInputQueue creates a queue bound to the host window. The window
// handle is used to measure the client area for each input snapshot.
func NewInputQueue(hwnd uintptr) *InputQueue {
	return &InputQueue{
		hwnd:   hwnd,
		start:  time.Now(),
		events: make([]Event, 0, 64),
	}
}

// SetClipboard wires a clipboard service into the queue so Ctrl+V can
// inject pasted text. Without one, paste produces no text event.
func (q *InputQueue) SetClipboard(c Clipboard) {
	q.clipboard = c
}

// push appends a single event under the queue lock.
func (q *InputQueue) push(e Event) {
	q.mu.Lock()
	q.events = append(q.events, e)
	q.mu.Unlock()
}

func (q *InputQueue) setModifiers(m Modifiers) {
	q.mu.Lock()
	q.modifiers = m
	q.mu.Unlock()
}

// ProcessMessage decodes one window message into toolkit input events and
// returns its classification. Call it from the window procedure for
// every message. Unrecognized messages are ignored and classified
// ClassUnknown.
func (q *InputQueue) ProcessMessage(msg uint32, wparam, lparam uintptr) MessageClass {
	switch msg {
	case wmMouseMove:
		q.setModifiers(mouseModifiers(wparam))
		q.push(PointerMoveEvent{Pos: pointerPos(lparam)})
		return ClassMouseMove

	case wmLButtonDown, wmLButtonDbl:
		return q.pushButton(PointerPrimary, true, wparam, lparam)
	case wmLButtonUp:
		return q.pushButton(PointerPrimary, false, wparam, lparam)
	case wmRButtonDown, wmRButtonDbl:
		return q.pushButton(PointerSecondary, true, wparam, lparam)
	case wmRButtonUp:
		return q.pushButton(PointerSecondary, false, wparam, lparam)
	case wmMButtonDown, wmMButtonDbl:
		return q.pushButton(PointerMiddle, true, wparam, lparam)
	case wmMButtonUp:
		return q.pushButton(PointerMiddle, false, wparam, lparam)

	case wmXButtonDown, wmXButtonDbl, wmXButtonUp:
		button := PointerExtra1
		if wparam>>16&xButton2 != 0 {
			button = PointerExtra2
		}
		return q.pushButton(button, msg != wmXButtonUp, wparam, lparam)

	case wmChar:
		if r := rune(wparam); r >= ' ' && r != 0x7F {
			q.push(TextEvent{Text: string(r)})
		}
		return ClassCharacter

	case wmMouseWheel:
		return q.pushWheel(wparam, Vec2{Y: 1})
	case wmMouseHWheel:
		return q.pushWheel(wparam, Vec2{X: 1})

	case wmKeyDown, wmSysKeyDown:
		mods := keyModifiers(msg == wmSysKeyDown)
		q.setModifiers(mods)

		key := translateKey(wparam)
		if key == KeyNone {
			return ClassKey
		}
		if mods.Ctrl {
			switch key {
			case KeyV:
				if q.clipboard != nil {
					if text, err := q.clipboard.Text(); err == nil && text != "" {
						q.push(TextEvent{Text: text})
					}
				}
			case KeyC:
				q.push(CopyEvent{})
			case KeyX:
				q.push(CutEvent{})
			}
		}
		q.push(KeyEvent{
			Key:       key,
			Pressed:   true,
			Repeat:    lparam&(1<<30) != 0,
			Modifiers: mods,
		})
		return ClassKey

	case wmKeyUp, wmSysKeyUp:
		mods := keyModifiers(msg == wmSysKeyUp)
		q.setModifiers(mods)

		if key := translateKey(wparam); key != KeyNone {
			q.push(KeyEvent{Key: key, Modifiers: mods})
		}
		return ClassKey
	}

	return ClassUnknown
}

// pushButton emits a pointer button event and updates modifiers.
func (q *InputQueue) pushButton(b PointerButton, pressed bool, wparam, lparam uintptr) MessageClass {
	mods := mouseModifiers(wparam)
	q.setModifiers(mods)
	q.push(PointerButtonEvent{
		Pos:       pointerPos(lparam),
		Button:    b,
		Pressed:   pressed,
		Modifiers: mods,
	})
	return ClassMouseButton
}

// pushWheel emits a scroll event, or a zoom event when ctrl is held.
func (q *InputQueue) pushWheel(wparam uintptr, axis Vec2) MessageClass {
	mods := mouseModifiers(wparam)
	q.setModifiers(mods)

	delta := float32(int16(wparam>>16)) * 10 / wheelDelta
	if wparam&mkControl != 0 {
		factor := float32(0.5)
		if delta > 0 {
			factor = 1.5
		}
		q.push(ZoomEvent{Factor: factor})
		return ClassZoom
	}
	q.push(WheelEvent{Delta: axis.Mul(delta), Modifiers: mods})
	return ClassWheel
}

// Snapshot drains all pending events into one frame's input. The drain is
// a take-all swap: events recorded after it land in the next frame.
func (q *InputQueue) Snapshot() Snapshot {
	q.mu.Lock()
	events := q.events
	q.events = make([]Event, 0, 64)
	mods := q.modifiers
	q.mu.Unlock()

	w, h := clientSize(q.hwnd)
	return Snapshot{
		Events:      events,
		Modifiers:   mods,
		ScreenRect:  Rect{W: float32(w), H: float32(h)},
		Time:        time.Since(q.start).Seconds(),
		PredictedDT: 1.0 / 60.0,
	}
}

// Discard drains and drops all pending events. The frame orchestrator
// uses it while the device is non-operational so input does not
// accumulate stale events across skipped frames.
func (q *InputQueue) Discard() {
	q.mu.Lock()
	q.events = q.events[:0]
	q.mu.Unlock()
}

// pointerPos extracts the client-area cursor position from lparam.
func pointerPos(lparam uintptr) Vec2 {
	return Vec2{
		X: float32(int16(lparam)),
		Y: float32(int16(lparam >> 16)),
	}
}

// mouseModifiers decodes the MK_* state carried by mouse messages.
func mouseModifiers(wparam uintptr) Modifiers {
	ctrl := wparam&mkControl != 0
	return Modifiers{
		Ctrl:    ctrl,
		Shift:   wparam&mkShift != 0,
		Command: ctrl,
	}
}

// translateKey maps a virtual-key code to a toolkit key.
func translateKey(wparam uintptr) Key {
	vk := int(wparam)
	switch {
	case vk >= 0x30 && vk <= 0x39: // '0'..'9'
		return Key0 + Key(vk-0x30)
	case vk >= 0x41 && vk <= 0x5A: // 'A'..'Z'
		return KeyA + Key(vk-0x41)
	case vk >= 0x70 && vk <= 0x7B: // F1..F12
		return KeyF1 + Key(vk-0x70)
	}

	switch vk {
	case 0x28:
		return KeyArrowDown
	case 0x25:
		return KeyArrowLeft
	case 0x27:
		return KeyArrowRight
	case 0x26:
		return KeyArrowUp
	case 0x1B:
		return KeyEscape
	case 0x09:
		return KeyTab
	case 0x08:
		return KeyBackspace
	case 0x0D:
		return KeyEnter
	case 0x20:
		return KeySpace
	case 0x2D:
		return KeyInsert
	case 0x2E:
		return KeyDelete
	case 0x24:
		return KeyHome
	case 0x23:
		return KeyEnd
	case 0x21:
		return KeyPageUp
	case 0x22:
		return KeyPageDown
	}
	return KeyNone
}

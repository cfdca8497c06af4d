package overlay

// Clipboard abstracts system clipboard access. The process clipboard is
// shared mutable state, so implementations must be safe for concurrent
// use; callers treat every operation as best-effort and swallow errors.
//
// On Windows use NewSystemClipboard. Tests can substitute an in-memory
// implementation.
type Clipboard interface {
	// Text retrieves text from the system clipboard. An empty string with
	// a nil error means the clipboard holds no text.
	Text() (string, error)

	// SetText copies text to the system clipboard.
	SetText(text string) error
}

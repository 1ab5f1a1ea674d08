package permissions

import "errors"

// ErrDenied reports that microphone access is not granted.
var ErrDenied = errors.New("microphone access denied")

// Gate acquires microphone access before a capture handle may be opened.
// A denied result is never cached: every call re-checks with the OS, since
// the user may grant access from system settings between attempts.
type Gate interface {
	EnsureMicrophone() error
}

// NewGate returns the microphone permission gate for the current platform.
func NewGate() Gate {
	return platformGate{}
}

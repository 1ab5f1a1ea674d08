package audio

import "context"

// Capture is an exclusive handle over the microphone. At most one capture
// stream may be open process-wide: Start opens it, Pause/Resume suspend it
// without releasing the hardware, and Stop releases it.
type Capture interface {
	Start(ctx context.Context, deviceID string, sampleRate int, out chan<- []float32) error
	Pause() error
	Resume() error
	Stop() error
	ListDevices() ([]Device, error)
	Close() error
}

// Player is an exclusive handle over the audio output. Play opens the output
// stream for one file; done is invoked exactly once when playback reaches end
// of stream or fails mid-stream. done is NOT invoked when playback is torn
// down via Stop or context cancellation — the caller initiated that and
// already knows. Stop blocks until the output stream is closed, so a caller
// that stops one playback before starting another never has two open output
// handles.
type Player interface {
	Play(ctx context.Context, path string, done func(err error)) error
	Stop() error
	Close() error
}

// Device represents an audio input device.
type Device struct {
	ID      string
	Name    string
	Default bool
}

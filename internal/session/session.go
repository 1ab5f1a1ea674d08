// Package session owns the capture state machine: Idle → Recording ⇄ Paused
// → Stopping → Idle, with discard as the cancellation path. It reconciles the
// asynchronous microphone stream with the advisory UI timer and hands
// finalized captures to the recording store.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/speakpad/speakpad/internal/audio"
	"github.com/speakpad/speakpad/internal/permissions"
	"github.com/speakpad/speakpad/internal/store"
)

// State is the capture session lifecycle.
type State int

const (
	StateIdle State = iota
	StateRecording
	StatePaused
	StateStopping
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRecording:
		return "recording"
	case StatePaused:
		return "paused"
	case StateStopping:
		return "stopping"
	default:
		return "unknown"
	}
}

var (
	// ErrTooShort rejects captures under the minimum duration; nothing is
	// persisted and the session returns to idle.
	ErrTooShort = errors.New("recording too short")

	// ErrInvalidState rejects a command the current state does not accept,
	// including any command issued while a previous one is still settling.
	ErrInvalidState = errors.New("command not valid in current state")
)

// Saver persists a finalized capture.
type Saver interface {
	Save(asset []byte, meta store.Metadata) error
}

// Config wires a session's collaborators.
type Config struct {
	Capture     audio.Capture
	Gate        permissions.Gate
	Store       Saver
	Logger      zerolog.Logger
	DeviceID    string
	SampleRate  int
	MinDuration time.Duration
}

// Session drives one microphone capture at a time. All commands are
// serialized: a command that arrives while a previous one is still settling
// is rejected with ErrInvalidState rather than queued, so transitions never
// overlap.
type Session struct {
	capture audio.Capture
	gate    permissions.Gate
	store   Saver
	log     zerolog.Logger

	deviceID    string
	sampleRate  int
	minDuration time.Duration

	mu             sync.Mutex
	state          State
	effectiveStart time.Time
	pausedAccum    time.Duration
	samples        []float32
	cancelCapture  context.CancelFunc
	pumpDone       chan struct{}

	now func() time.Time
}

// New creates an idle session.
func New(cfg Config) *Session {
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = 44100
	}
	if cfg.MinDuration <= 0 {
		cfg.MinDuration = time.Second
	}
	return &Session{
		capture:     cfg.Capture,
		gate:        cfg.Gate,
		store:       cfg.Store,
		log:         cfg.Logger,
		deviceID:    cfg.DeviceID,
		sampleRate:  cfg.SampleRate,
		minDuration: cfg.MinDuration,
		now:         time.Now,
	}
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Elapsed samples the advisory elapsed time for display. The authoritative
// duration persisted with a recording is computed once inside Stop, never
// from the last tick of this value.
func (s *Session) Elapsed() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.elapsedLocked()
}

func (s *Session) elapsedLocked() time.Duration {
	switch s.state {
	case StateRecording:
		return s.pausedAccum + s.now().Sub(s.effectiveStart)
	case StatePaused:
		return s.pausedAccum
	default:
		return 0
	}
}

// Start opens the capture handle and begins recording. Only valid from idle.
// The permission gate is consulted first; on denial no hardware handle is
// opened and the session stays idle.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateIdle {
		return ErrInvalidState
	}
	if err := s.gate.EnsureMicrophone(); err != nil {
		s.log.Warn().Err(err).Msg("Microphone permission not granted")
		return err
	}

	// The capture outlives the caller's command context; teardown happens
	// through Stop or Discard, not through the UI event that started it.
	captureCtx, cancel := context.WithCancel(context.Background())
	ch := make(chan []float32, 8)
	if err := s.capture.Start(captureCtx, s.deviceID, s.sampleRate, ch); err != nil {
		cancel()
		return fmt.Errorf("open capture stream: %w", err)
	}

	s.cancelCapture = cancel
	s.samples = nil
	s.pausedAccum = 0
	s.effectiveStart = s.now()
	s.state = StateRecording
	s.pumpDone = make(chan struct{})
	go s.pump(captureCtx, ch)

	s.log.Info().Msg("Recording started")
	return nil
}

// pump drains the capture stream into the in-memory sample buffer. Samples
// arriving while paused are dropped; the hardware stream is suspended then
// anyway, so this only guards against late deliveries.
func (s *Session) pump(ctx context.Context, ch <-chan []float32) {
	defer close(s.pumpDone)
	for {
		select {
		case <-ctx.Done():
			return
		case chunk, ok := <-ch:
			if !ok {
				return
			}
			s.mu.Lock()
			if s.state == StateRecording {
				s.samples = append(s.samples, chunk...)
			}
			s.mu.Unlock()
		}
	}
}

// Pause freezes elapsed-time accumulation without releasing the capture
// handle. Only valid while recording.
func (s *Session) Pause() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateRecording {
		return ErrInvalidState
	}
	if err := s.capture.Pause(); err != nil {
		return fmt.Errorf("pause capture stream: %w", err)
	}
	s.pausedAccum += s.now().Sub(s.effectiveStart)
	s.state = StatePaused
	s.log.Info().Dur("elapsed", s.pausedAccum).Msg("Recording paused")
	return nil
}

// Resume continues a paused recording. The effective start reference is
// recomputed so elapsed time continues from the frozen value.
func (s *Session) Resume() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StatePaused {
		return ErrInvalidState
	}
	if err := s.capture.Resume(); err != nil {
		return fmt.Errorf("resume capture stream: %w", err)
	}
	s.effectiveStart = s.now()
	s.state = StateRecording
	s.log.Info().Msg("Recording resumed")
	return nil
}

// Discard releases the capture handle without persisting anything and resets
// the session to idle. Valid from recording or paused.
func (s *Session) Discard() error {
	s.mu.Lock()
	if s.state != StateRecording && s.state != StatePaused {
		s.mu.Unlock()
		return ErrInvalidState
	}
	s.state = StateStopping
	cancel, done := s.cancelCapture, s.pumpDone
	s.cancelCapture = nil
	s.mu.Unlock()

	cancel()
	<-done
	err := s.capture.Stop()

	s.mu.Lock()
	s.samples = nil
	s.pausedAccum = 0
	s.state = StateIdle
	s.mu.Unlock()

	if err != nil {
		s.log.Warn().Err(err).Msg("Capture stream did not stop cleanly on discard")
	}
	s.log.Info().Msg("Recording discarded")
	return nil
}

// Stop finalizes the capture: it computes the authoritative duration, releases
// the hardware handle, and persists the encoded audio with its metadata.
// Captures under the minimum duration return ErrTooShort and write nothing.
// On a store failure the session still returns to idle and the capture
// resource is released, but the audio is lost; no retry is attempted.
func (s *Session) Stop() (store.Metadata, error) {
	s.mu.Lock()
	if s.state != StateRecording && s.state != StatePaused {
		s.mu.Unlock()
		return store.Metadata{}, ErrInvalidState
	}
	elapsed := s.elapsedLocked()
	s.state = StateStopping
	cancel, done := s.cancelCapture, s.pumpDone
	s.cancelCapture = nil
	s.mu.Unlock()

	cancel()
	<-done
	releaseErr := s.capture.Stop()

	s.mu.Lock()
	samples := s.samples
	s.samples = nil
	s.pausedAccum = 0
	s.mu.Unlock()

	// Stay in stopping until finalization settles so concurrent commands
	// are rejected deterministically, then return to idle on every path.
	defer func() {
		s.mu.Lock()
		s.state = StateIdle
		s.mu.Unlock()
	}()

	if releaseErr != nil {
		s.log.Warn().Err(releaseErr).Msg("Capture stream did not stop cleanly")
	}

	if elapsed < s.minDuration {
		s.log.Info().Dur("elapsed", elapsed).Msg("Recording dropped: too short")
		return store.Metadata{}, ErrTooShort
	}

	now := s.now()
	meta := store.Metadata{
		ID:        store.NewID(now),
		Name:      store.AutoName(now),
		Duration:  elapsed.Milliseconds(),
		CreatedAt: now,
	}

	asset, err := audio.EncodeWAV(samples, s.sampleRate)
	if err != nil {
		return store.Metadata{}, fmt.Errorf("save recording: %w", err)
	}
	if err := s.store.Save(asset, meta); err != nil {
		// The captured audio is gone; the user has to re-record.
		return store.Metadata{}, fmt.Errorf("save recording: %w", err)
	}

	s.log.Info().Str("id", meta.ID).Dur("duration", elapsed).Msg("Recording finalized")
	return meta, nil
}

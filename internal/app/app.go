// Package app coordinates the capture session, the playback controller, and
// the recording store behind the command surface the UI talks to. It is the
// single arbitration point for the rule that at most one audio stream —
// recording or playback — is active at any time.
package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/speakpad/speakpad/internal/library"
	"github.com/speakpad/speakpad/internal/playback"
	"github.com/speakpad/speakpad/internal/session"
	"github.com/speakpad/speakpad/internal/store"
)

// Store is the slice of the recording store the coordinator needs.
type Store interface {
	List() ([]store.Metadata, error)
	Rename(id, newName string) error
	Delete(id string) error
}

type Config struct {
	Session  *session.Session
	Playback *playback.Controller
	Store    Store
	Logger   zerolog.Logger
}

type App struct {
	session  *session.Session
	playback *playback.Controller
	store    Store
	log      zerolog.Logger

	mu      sync.Mutex
	records []store.Metadata
	query   string
}

// Snapshot is the UI-facing view of the whole module, polled once per tick.
type Snapshot struct {
	CaptureState session.State
	Elapsed      time.Duration
	PlayingID    string
	Query        string
	Groups       []library.Group
}

func New(cfg Config) *App {
	return &App{
		session:  cfg.Session,
		playback: cfg.Playback,
		store:    cfg.Store,
		log:      cfg.Logger,
	}
}

// Refresh reloads the record list from the store.
func (a *App) Refresh() error {
	records, err := a.store.List()
	if err != nil {
		return err
	}
	a.mu.Lock()
	a.records = records
	a.mu.Unlock()
	return nil
}

// StartRecording begins a capture. An active playback is stopped first:
// recording preempts playback under the single-active-stream rule.
func (a *App) StartRecording(ctx context.Context) error {
	a.playback.Stop()
	return a.session.Start(ctx)
}

// PauseRecording freezes the in-flight capture.
func (a *App) PauseRecording() error {
	return a.session.Pause()
}

// ResumeRecording continues a paused capture.
func (a *App) ResumeRecording() error {
	return a.session.Resume()
}

// StopRecording finalizes the capture and refreshes the library.
func (a *App) StopRecording() (store.Metadata, error) {
	meta, err := a.session.Stop()
	if err == nil {
		if refreshErr := a.Refresh(); refreshErr != nil {
			a.log.Error().Err(refreshErr).Msg("Failed to refresh library after save")
		}
	}
	return meta, err
}

// DiscardRecording abandons the in-flight capture without persisting.
func (a *App) DiscardRecording() error {
	return a.session.Discard()
}

// Play starts playback of a stored recording. A capture in progress is
// stopped and saved first (the data-preserving side of the single-stream
// rule); a capture too short to keep simply drops, which is not a reason to
// refuse playback.
func (a *App) Play(ctx context.Context, id string) error {
	switch a.session.State() {
	case session.StateRecording, session.StatePaused:
		if _, err := a.StopRecording(); err != nil && !errors.Is(err, session.ErrTooShort) {
			return err
		}
	}
	return a.playback.Play(ctx, id)
}

// StopPlayback tears down the active playback, if any.
func (a *App) StopPlayback() error {
	return a.playback.Stop()
}

// Rename relabels a stored recording and refreshes the library.
func (a *App) Rename(id, newName string) error {
	if err := a.store.Rename(id, newName); err != nil {
		return err
	}
	return a.Refresh()
}

// Delete removes a recording. If that recording is currently playing, its
// playback is stopped first so the output handle never outlives the asset.
func (a *App) Delete(id string) error {
	if active, ok := a.playback.ActiveID(); ok && active == id {
		a.playback.Stop()
	}
	if err := a.store.Delete(id); err != nil {
		return err
	}
	return a.Refresh()
}

// SetSearch updates the library filter query.
func (a *App) SetSearch(query string) {
	a.mu.Lock()
	a.query = query
	a.mu.Unlock()
}

// Snapshot derives the current UI state. Groups are recomputed from the
// cached record list on every call; they are a projection, never stored.
func (a *App) Snapshot() Snapshot {
	a.mu.Lock()
	records, query := a.records, a.query
	a.mu.Unlock()

	playingID, _ := a.playback.ActiveID()
	return Snapshot{
		CaptureState: a.session.State(),
		Elapsed:      a.session.Elapsed(),
		PlayingID:    playingID,
		Query:        query,
		Groups:       library.Derive(records, query),
	}
}

// Close releases whatever stream is still active. A capture in progress is
// discarded: shutdown is not a user intent to keep the audio.
func (a *App) Close() error {
	switch a.session.State() {
	case session.StateRecording, session.StatePaused:
		if err := a.session.Discard(); err != nil {
			a.log.Error().Err(err).Msg("Failed to discard capture on shutdown")
		}
	}
	return a.playback.Stop()
}

// Package playback enforces the single-active-stream rule for audio output:
// exactly one playback handle may be open at any instant, and starting a new
// playback always tears the previous one down first.
package playback

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/speakpad/speakpad/internal/audio"
)

// Error reports a failure to play a specific recording, typically an
// unreadable or corrupt asset.
type Error struct {
	ID  string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("play %s: %v", e.ID, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// AssetResolver maps a recording id to its on-disk audio asset.
type AssetResolver interface {
	AssetPath(id string) string
}

// Controller owns the output handle. It tracks which recording is playing
// and notifies the UI when playback reaches end of stream.
type Controller struct {
	player audio.Player
	assets AssetResolver
	log    zerolog.Logger

	mu       sync.Mutex
	activeID string
	gen      int
	onDone   func(id string)
}

// New creates an idle controller.
func New(player audio.Player, assets AssetResolver, log zerolog.Logger) *Controller {
	return &Controller{player: player, assets: assets, log: log}
}

// SetFinishedFunc registers fn, invoked off the command goroutine whenever a
// playback reaches end of stream (or dies mid-stream), so the UI can clear
// its now-playing indicator. Forced teardowns via Play/Stop do not notify.
func (c *Controller) SetFinishedFunc(fn func(id string)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onDone = fn
}

// Play starts playback of id's asset. Any active playback is torn down
// completely before the new output handle opens, so two handles are never
// open at once.
func (c *Controller) Play(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.activeID != "" {
		c.player.Stop()
		c.activeID = ""
	}
	c.gen++
	gen := c.gen

	path := c.assets.AssetPath(id)
	err := c.player.Play(ctx, path, func(playErr error) {
		c.finished(gen, id, playErr)
	})
	if err != nil {
		return &Error{ID: id, Err: err}
	}

	c.activeID = id
	c.log.Info().Str("id", id).Msg("Playback started")
	return nil
}

// Stop tears down the active playback, if any. Stopping an idle controller
// is a no-op, not an error.
func (c *Controller) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.activeID == "" {
		return nil
	}
	c.gen++
	c.player.Stop()
	c.log.Info().Str("id", c.activeID).Msg("Playback stopped")
	c.activeID = ""
	return nil
}

// ActiveID reports which recording is playing, if any.
func (c *Controller) ActiveID() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.activeID, c.activeID != ""
}

// IsPlaying reports whether any playback is active.
func (c *Controller) IsPlaying() bool {
	_, ok := c.ActiveID()
	return ok
}

func (c *Controller) finished(gen int, id string, err error) {
	c.mu.Lock()
	if gen != c.gen || c.activeID != id {
		// A newer Play or Stop already superseded this playback.
		c.mu.Unlock()
		return
	}
	c.activeID = ""
	fn := c.onDone
	c.mu.Unlock()

	if err != nil {
		c.log.Error().Err(err).Str("id", id).Msg("Playback failed")
	} else {
		c.log.Debug().Str("id", id).Msg("Playback finished")
	}
	if fn != nil {
		fn(id)
	}
}

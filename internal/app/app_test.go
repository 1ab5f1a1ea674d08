package app

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/speakpad/speakpad/internal/audio"
	"github.com/speakpad/speakpad/internal/playback"
	"github.com/speakpad/speakpad/internal/session"
	"github.com/speakpad/speakpad/internal/store"
)

// Mock implementations for testing

type mockCapture struct{}

func (m *mockCapture) Start(ctx context.Context, deviceID string, sampleRate int, out chan<- []float32) error {
	return nil
}
func (m *mockCapture) Pause() error  { return nil }
func (m *mockCapture) Resume() error { return nil }
func (m *mockCapture) Stop() error   { return nil }
func (m *mockCapture) ListDevices() ([]audio.Device, error) {
	return []audio.Device{{ID: "default", Name: "Default", Default: true}}, nil
}
func (m *mockCapture) Close() error { return nil }

type grantedGate struct{}

func (grantedGate) EnsureMicrophone() error { return nil }

type mockPlayer struct {
	mu   sync.Mutex
	open bool
}

func (m *mockPlayer) Play(ctx context.Context, path string, done func(err error)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.open = true
	return nil
}

func (m *mockPlayer) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.open = false
	return nil
}

func (m *mockPlayer) Close() error { return nil }

func newTestApp(t *testing.T) (*App, *store.Store) {
	t.Helper()
	st := store.New(filepath.Join(t.TempDir(), "recordings"), zerolog.Nop())
	sess := session.New(session.Config{
		Capture:     &mockCapture{},
		Gate:        grantedGate{},
		Store:       st,
		Logger:      zerolog.Nop(),
		SampleRate:  16000,
		MinDuration: time.Millisecond,
	})
	ctl := playback.New(&mockPlayer{}, st, zerolog.Nop())
	a := New(Config{
		Session:  sess,
		Playback: ctl,
		Store:    st,
		Logger:   zerolog.Nop(),
	})
	if err := a.Refresh(); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	return a, st
}

func seedRecording(t *testing.T, st *store.Store, id string, created time.Time) {
	t.Helper()
	err := st.Save([]byte("audio"), store.Metadata{
		ID:        id,
		Name:      store.AutoName(created),
		Duration:  2000,
		CreatedAt: created,
	})
	if err != nil {
		t.Fatalf("seed recording %s: %v", id, err)
	}
}

func TestPlayWhileRecordingStopsAndSaves(t *testing.T) {
	a, st := newTestApp(t)
	seedRecording(t, st, "111", time.Now().Add(-time.Hour))

	if err := a.StartRecording(context.Background()); err != nil {
		t.Fatalf("StartRecording: %v", err)
	}
	time.Sleep(10 * time.Millisecond) // clear the minimum duration

	if err := a.Play(context.Background(), "111"); err != nil {
		t.Fatalf("Play: %v", err)
	}

	snap := a.Snapshot()
	if snap.CaptureState != session.StateIdle {
		t.Errorf("expected capture stopped before playback, state %v", snap.CaptureState)
	}
	if snap.PlayingID != "111" {
		t.Errorf("expected playback of 111, got %q", snap.PlayingID)
	}

	// The interrupted capture must have been saved, not dropped.
	records, err := st.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(records) != 2 {
		t.Errorf("expected interrupted capture persisted, got %d records", len(records))
	}
}

func TestStartRecordingStopsPlayback(t *testing.T) {
	a, st := newTestApp(t)
	seedRecording(t, st, "222", time.Now().Add(-time.Hour))

	if err := a.Play(context.Background(), "222"); err != nil {
		t.Fatalf("Play: %v", err)
	}
	if err := a.StartRecording(context.Background()); err != nil {
		t.Fatalf("StartRecording: %v", err)
	}

	snap := a.Snapshot()
	if snap.PlayingID != "" {
		t.Errorf("expected playback preempted, still playing %q", snap.PlayingID)
	}
	if snap.CaptureState != session.StateRecording {
		t.Errorf("expected recording state, got %v", snap.CaptureState)
	}
}

func TestDeleteActivePlaybackStopsFirst(t *testing.T) {
	a, st := newTestApp(t)
	seedRecording(t, st, "333", time.Now().Add(-time.Hour))

	if err := a.Play(context.Background(), "333"); err != nil {
		t.Fatalf("Play: %v", err)
	}
	if err := a.Delete("333"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	snap := a.Snapshot()
	if snap.PlayingID != "" {
		t.Errorf("expected playback stopped, still playing %q", snap.PlayingID)
	}
	if len(snap.Groups) != 0 {
		t.Errorf("expected empty library after delete, got %d groups", len(snap.Groups))
	}
}

func TestRenameRefreshesProjection(t *testing.T) {
	a, st := newTestApp(t)
	seedRecording(t, st, "444", time.Now().Add(-time.Hour))

	if err := a.Rename("444", "shadowing drill"); err != nil {
		t.Fatalf("Rename: %v", err)
	}

	snap := a.Snapshot()
	if len(snap.Groups) != 1 || snap.Groups[0].Recordings[0].Name != "shadowing drill" {
		t.Errorf("expected renamed record in projection, got %+v", snap.Groups)
	}
}

func TestSnapshotAppliesSearchQuery(t *testing.T) {
	a, st := newTestApp(t)
	now := time.Now()
	seedRecording(t, st, "1", now.Add(-2*time.Hour))
	seedRecording(t, st, "2", now.Add(-time.Hour))
	if err := a.Rename("1", "tones"); err != nil {
		t.Fatalf("Rename tones: %v", err)
	}
	if err := a.Rename("2", "grammar"); err != nil {
		t.Fatalf("Rename grammar: %v", err)
	}

	a.SetSearch("TON")
	snap := a.Snapshot()
	total := 0
	for _, g := range snap.Groups {
		total += len(g.Recordings)
	}
	if total != 1 {
		t.Fatalf("expected 1 filtered record, got %d", total)
	}
	if snap.Groups[0].Recordings[0].ID != "1" {
		t.Errorf("expected record 1, got %s", snap.Groups[0].Recordings[0].ID)
	}

	a.SetSearch("")
	snap = a.Snapshot()
	total = 0
	for _, g := range snap.Groups {
		total += len(g.Recordings)
	}
	if total != 2 {
		t.Errorf("expected all records with empty query, got %d", total)
	}
}

func TestCloseDiscardsInFlightCapture(t *testing.T) {
	a, st := newTestApp(t)

	if err := a.StartRecording(context.Background()); err != nil {
		t.Fatalf("StartRecording: %v", err)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if state := a.Snapshot().CaptureState; state != session.StateIdle {
		t.Errorf("expected idle after close, got %v", state)
	}
	records, err := st.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("shutdown must not persist the capture, got %d records", len(records))
	}
}

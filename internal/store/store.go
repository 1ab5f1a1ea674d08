package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const assetExt = ".wav"

// Store persists recordings as <id>.wav + <id>.json pairs in a single
// directory. The directory is created lazily on first write, so a fresh
// install lists an empty library without touching the disk.
type Store struct {
	dir string
	log zerolog.Logger
}

// New creates a store rooted at dir.
func New(dir string, log zerolog.Logger) *Store {
	return &Store{dir: dir, log: log}
}

// Dir returns the recordings directory.
func (s *Store) Dir() string { return s.dir }

// AssetPath returns the audio file location for id.
func (s *Store) AssetPath(id string) string {
	return filepath.Join(s.dir, id+assetExt)
}

func (s *Store) metadataPath(id string) string {
	return filepath.Join(s.dir, id+".json")
}

// List scans the recordings directory and returns valid records sorted
// newest-first. Corrupt metadata and metadata whose asset is missing are
// skipped rather than failing the listing: both are expected leftovers of
// earlier partial writes and the store self-heals by ignoring them.
func (s *Store) List() ([]Metadata, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read recordings dir: %w", err)
	}

	var records []Metadata
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.dir, entry.Name()))
		if err != nil {
			s.log.Warn().Err(err).Str("file", entry.Name()).Msg("Skipping unreadable metadata")
			continue
		}
		var meta Metadata
		if err := json.Unmarshal(data, &meta); err != nil {
			s.log.Warn().Err(err).Str("file", entry.Name()).Msg("Skipping corrupt metadata")
			continue
		}
		if meta.ID == "" {
			s.log.Warn().Str("file", entry.Name()).Msg("Skipping metadata without id")
			continue
		}
		if _, err := os.Stat(s.AssetPath(meta.ID)); err != nil {
			s.log.Warn().Str("id", meta.ID).Msg("Skipping metadata without asset")
			continue
		}
		records = append(records, meta)
	}

	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
	return records, nil
}

// Get reads the metadata record for one id.
func (s *Store) Get(id string) (Metadata, error) {
	data, err := os.ReadFile(s.metadataPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return Metadata{}, ErrNotFound
		}
		return Metadata{}, fmt.Errorf("read metadata %s: %w", id, err)
	}
	var meta Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return Metadata{}, fmt.Errorf("parse metadata %s: %w", id, err)
	}
	return meta, nil
}

// Save persists a finished capture. The asset is written first, through a
// uniquely suffixed temp file and rename, and the metadata record only after
// the asset write resolved. A crash in between leaves an orphan asset that
// List ignores, never a metadata record pointing at nothing.
func (s *Store) Save(asset []byte, meta Metadata) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return &WriteError{Op: "save", ID: meta.ID, Err: err}
	}

	assetPath := s.AssetPath(meta.ID)
	tmpPath := assetPath + ".tmp-" + uuid.NewString()
	if err := os.WriteFile(tmpPath, asset, 0o644); err != nil {
		os.Remove(tmpPath)
		return &WriteError{Op: "save", ID: meta.ID, Err: err}
	}
	if err := os.Rename(tmpPath, assetPath); err != nil {
		os.Remove(tmpPath)
		return &WriteError{Op: "save", ID: meta.ID, Err: err}
	}

	data, err := json.Marshal(meta)
	if err != nil {
		os.Remove(assetPath)
		return &WriteError{Op: "save", ID: meta.ID, Err: err}
	}
	if err := os.WriteFile(s.metadataPath(meta.ID), data, 0o644); err != nil {
		os.Remove(assetPath)
		return &WriteError{Op: "save", ID: meta.ID, Err: err}
	}

	s.log.Info().Str("id", meta.ID).Int64("duration_ms", meta.Duration).Msg("Recording saved")
	return nil
}

// Rename rewrites the stored name for id in place.
func (s *Store) Rename(id, newName string) error {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return ErrInvalidName
	}

	path := s.metadataPath(id)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return &WriteError{Op: "rename", ID: id, Err: err}
	}
	var meta Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return &WriteError{Op: "rename", ID: id, Err: err}
	}

	meta.Name = newName
	out, err := json.Marshal(meta)
	if err != nil {
		return &WriteError{Op: "rename", ID: id, Err: err}
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return &WriteError{Op: "rename", ID: id, Err: err}
	}
	return nil
}

// Delete removes the asset and the metadata record together. Deleting an
// unknown id reports ErrNotFound so callers can tell "already gone" from an
// unexpected failure.
func (s *Store) Delete(id string) error {
	metaPath := s.metadataPath(id)
	if _, err := os.Stat(metaPath); err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return &WriteError{Op: "delete", ID: id, Err: err}
	}

	// Asset first: a failure here keeps the metadata, so the record stays
	// visible instead of silently leaking the asset.
	if err := os.Remove(s.AssetPath(id)); err != nil && !os.IsNotExist(err) {
		return &WriteError{Op: "delete", ID: id, Err: err}
	}
	if err := os.Remove(metaPath); err != nil {
		return &WriteError{Op: "delete", ID: id, Err: err}
	}

	s.log.Info().Str("id", id).Msg("Recording deleted")
	return nil
}

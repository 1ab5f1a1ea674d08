package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return New(filepath.Join(t.TempDir(), "recordings"), zerolog.Nop())
}

func testMeta(id string, created time.Time) Metadata {
	return Metadata{
		ID:        id,
		Name:      AutoName(created),
		Duration:  1500,
		CreatedAt: created,
	}
}

func TestListEmptyWithoutDirectory(t *testing.T) {
	s := newTestStore(t)

	records, err := s.List()
	if err != nil {
		t.Fatalf("List on missing dir: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected empty listing, got %d records", len(records))
	}
}

func TestSaveThenList(t *testing.T) {
	s := newTestStore(t)
	created := time.Date(2025, 3, 10, 14, 30, 0, 0, time.Local)
	meta := testMeta(NewID(created), created)

	if err := s.Save([]byte("audio"), meta); err != nil {
		t.Fatalf("Save: %v", err)
	}

	records, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].ID != meta.ID {
		t.Errorf("expected id %s, got %s", meta.ID, records[0].ID)
	}
	if records[0].Duration != 1500 {
		t.Errorf("expected duration 1500, got %d", records[0].Duration)
	}
	if _, err := os.Stat(s.AssetPath(meta.ID)); err != nil {
		t.Errorf("asset missing after save: %v", err)
	}
}

func TestListSortsNewestFirst(t *testing.T) {
	s := newTestStore(t)
	base := time.Date(2025, 1, 1, 9, 0, 0, 0, time.Local)
	for i := 0; i < 3; i++ {
		created := base.Add(time.Duration(i) * time.Hour)
		if err := s.Save([]byte("audio"), testMeta(NewID(created), created)); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}

	records, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}
	for i := 1; i < len(records); i++ {
		if records[i].CreatedAt.After(records[i-1].CreatedAt) {
			t.Errorf("records out of order at %d: %v after %v", i, records[i].CreatedAt, records[i-1].CreatedAt)
		}
	}
}

func TestListSkipsCorruptMetadata(t *testing.T) {
	s := newTestStore(t)
	created := time.Now()
	if err := s.Save([]byte("audio"), testMeta(NewID(created), created)); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := os.WriteFile(filepath.Join(s.Dir(), "broken.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}

	records, err := s.List()
	if err != nil {
		t.Fatalf("List should not fail on corrupt records: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected corrupt record to be skipped, got %d records", len(records))
	}
}

func TestListSkipsMetadataWithoutAsset(t *testing.T) {
	s := newTestStore(t)
	created := time.Now()
	meta := testMeta(NewID(created), created)
	if err := s.Save([]byte("audio"), meta); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := os.Remove(s.AssetPath(meta.ID)); err != nil {
		t.Fatalf("remove asset: %v", err)
	}

	records, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected orphaned metadata to be dropped, got %d records", len(records))
	}
}

func TestRename(t *testing.T) {
	s := newTestStore(t)
	created := time.Now()
	meta := testMeta(NewID(created), created)
	if err := s.Save([]byte("audio"), meta); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if err := s.Rename(meta.ID, "  发音练习  "); err != nil {
		t.Fatalf("Rename: %v", err)
	}

	got, err := s.Get(meta.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name != "发音练习" {
		t.Errorf("expected trimmed name, got %q", got.Name)
	}
	if got.Duration != meta.Duration {
		t.Errorf("rename must not touch duration: got %d", got.Duration)
	}
}

func TestRenameRejectsBlankName(t *testing.T) {
	s := newTestStore(t)
	created := time.Now()
	meta := testMeta(NewID(created), created)
	if err := s.Save([]byte("audio"), meta); err != nil {
		t.Fatalf("Save: %v", err)
	}

	for _, name := range []string{"", "   ", "\t\n"} {
		if err := s.Rename(meta.ID, name); !errors.Is(err, ErrInvalidName) {
			t.Errorf("Rename(%q) = %v, want ErrInvalidName", name, err)
		}
	}

	got, err := s.Get(meta.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name != meta.Name {
		t.Errorf("failed rename must leave name unchanged, got %q", got.Name)
	}
}

func TestRenameUnknownID(t *testing.T) {
	s := newTestStore(t)
	if err := s.Rename("12345", "anything"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Rename unknown id = %v, want ErrNotFound", err)
	}
}

func TestDeleteRemovesBothFiles(t *testing.T) {
	s := newTestStore(t)
	created := time.Now()
	meta := testMeta(NewID(created), created)
	if err := s.Save([]byte("audio"), meta); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if err := s.Delete(meta.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if _, err := os.Stat(s.AssetPath(meta.ID)); !os.IsNotExist(err) {
		t.Errorf("asset still present after delete")
	}
	records, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("expected empty listing after delete, got %d records", len(records))
	}

	if err := s.Delete(meta.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete = %v, want ErrNotFound", err)
	}
}

func TestAutoName(t *testing.T) {
	cases := []struct {
		at   time.Time
		want string
	}{
		{time.Date(2025, 3, 12, 0, 5, 0, 0, time.Local), "周三 上午12点05分"},
		{time.Date(2025, 3, 12, 9, 30, 0, 0, time.Local), "周三 上午09点30分"},
		{time.Date(2025, 3, 15, 12, 0, 0, 0, time.Local), "周六 下午12点00分"},
		{time.Date(2025, 3, 16, 23, 59, 0, 0, time.Local), "周日 下午11点59分"},
	}
	for _, tc := range cases {
		if got := AutoName(tc.at); got != tc.want {
			t.Errorf("AutoName(%v) = %q, want %q", tc.at, got, tc.want)
		}
	}
}

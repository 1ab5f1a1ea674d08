// Package library derives display projections from the recording store.
// Nothing here is persisted; every view is recomputed from the authoritative
// record list.
package library

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/speakpad/speakpad/internal/store"
)

// Group is one month section of the library view.
type Group struct {
	Label      string
	Year       int
	Month      time.Month
	Recordings []store.Metadata
}

// MonthLabel formats the section heading for t, e.g. "2025年8月".
func MonthLabel(t time.Time) string {
	return fmt.Sprintf("%d年%d月", t.Year(), int(t.Month()))
}

// Derive computes the month-grouped, filtered, sorted projection of records.
// The query is a case-insensitive substring match on the recording name; an
// empty query keeps everything. Groups are ordered newest month first by the
// underlying (year, month) pair rather than the label string, which would
// sort "12月" ahead of "2月" within a year. Recordings inside a group are
// newest first.
func Derive(records []store.Metadata, query string) []Group {
	query = strings.ToLower(strings.TrimSpace(query))

	type monthKey struct {
		year  int
		month time.Month
	}
	groups := make(map[monthKey]*Group)
	for _, rec := range records {
		if query != "" && !strings.Contains(strings.ToLower(rec.Name), query) {
			continue
		}
		k := monthKey{rec.CreatedAt.Year(), rec.CreatedAt.Month()}
		g, ok := groups[k]
		if !ok {
			g = &Group{Label: MonthLabel(rec.CreatedAt), Year: k.year, Month: k.month}
			groups[k] = g
		}
		g.Recordings = append(g.Recordings, rec)
	}

	out := make([]Group, 0, len(groups))
	for _, g := range groups {
		sort.Slice(g.Recordings, func(i, j int) bool {
			return g.Recordings[i].CreatedAt.After(g.Recordings[j].CreatedAt)
		})
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year > out[j].Year
		}
		return out[i].Month > out[j].Month
	})
	return out
}

// FormatDuration renders a millisecond duration as M:SS for display.
func FormatDuration(ms int64) string {
	total := ms / 1000
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}

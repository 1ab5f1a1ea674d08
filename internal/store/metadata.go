package store

import (
	"fmt"
	"strconv"
	"time"
)

// Metadata describes one persisted recording. The JSON field names mirror the
// on-disk record exactly: one <id>.json per recording next to its <id>.wav asset.
type Metadata struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Duration  int64     `json:"duration"` // milliseconds, fixed at finalization
	CreatedAt time.Time `json:"date"`
}

var weekdayNames = [...]string{"日", "一", "二", "三", "四", "五", "六"}

// AutoName builds the default label for a recording finished at t,
// e.g. "周三 下午03点07分". Users can rename it later.
func AutoName(t time.Time) string {
	period := "上午"
	if t.Hour() >= 12 {
		period = "下午"
	}
	hour12 := t.Hour() % 12
	if hour12 == 0 {
		hour12 = 12
	}
	return fmt.Sprintf("周%s %s%02d点%02d分", weekdayNames[t.Weekday()], period, hour12, t.Minute())
}

// NewID derives the stable identity for a capture finished at t. Millisecond
// timestamps are unique enough for on-device captures and double as the
// filename stem.
func NewID(t time.Time) string {
	return strconv.FormatInt(t.UnixMilli(), 10)
}

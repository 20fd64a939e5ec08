package util

import "time"

// SortableLayout is a fixed-width UTC layout whose strings order the same
// way as the instants they encode.
const SortableLayout = "2006-01-02T15:04:05.000000000Z"

// NowUTC exposes time.Now for deterministic testing.
func NowUTC() time.Time {
	return time.Now().UTC()
}

// FormatSortable renders t in SortableLayout.
func FormatSortable(t time.Time) string {
	return t.UTC().Format(SortableLayout)
}

// ParseSortable reads a value written by FormatSortable.
func ParseSortable(s string) (time.Time, error) {
	return time.ParseInLocation(SortableLayout, s, time.UTC)
}

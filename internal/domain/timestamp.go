package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrMissingTimestamp    = errors.New("timestamp is missing")
	ErrUnparsableTimestamp = errors.New("timestamp format not recognised")
)

// Layouts carrying their own zone. Tried first, in order.
var zonedLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999-0700",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999-0700",
}

// Layouts without zone information. Values matching these are taken to be UTC.
var naiveLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseTimestamp parses a tracker timestamp into a UTC instant.
//
// A trailing "Z" or "UTC" marks UTC, an explicit numeric offset is honoured,
// and a value with no zone at all is assumed to be UTC. Anything else is an
// error rather than a guess.
func ParseTimestamp(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, ErrMissingTimestamp
	}
	if strings.HasSuffix(s, "UTC") {
		s = strings.TrimSpace(strings.TrimSuffix(s, "UTC")) + "Z"
	}

	for _, layout := range zonedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrUnparsableTimestamp, raw)
}

// FilterCompletedWithin keeps the items whose completion instant falls inside
// the window. Items with a missing or unreadable timestamp are reported via
// logf and dropped.
func FilterCompletedWithin(items []Item, window Window, logf func(string, ...any)) []Item {
	var kept []Item
	for _, item := range items {
		completedAt, err := ParseTimestamp(item.CompletedAt)
		if err != nil {
			if !errors.Is(err, ErrMissingTimestamp) && logf != nil {
				logf("Error parsing completion date for story %q: %v", item.Title, err)
			}
			continue
		}
		if window.Contains(completedAt) {
			kept = append(kept, item)
		}
	}
	return kept
}

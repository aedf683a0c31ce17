package domain

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestParseTimestampFormats(t *testing.T) {
	want := time.Date(2024, 6, 4, 10, 0, 0, 0, time.UTC)
	inputs := []string{
		"2024-06-04T10:00:00Z",
		"2024-06-04T10:00:00UTC",
		"2024-06-04T10:00:00 UTC",
		"2024-06-04T10:00:00+00:00",
		"2024-06-04T12:00:00+02:00",
		"2024-06-04T05:00:00-05:00",
		"2024-06-04T10:00:00+0000",
		"2024-06-04 10:00:00Z",
		"2024-06-04T10:00:00",
		"2024-06-04 10:00:00",
		"  2024-06-04T10:00:00Z  ",
	}
	for _, in := range inputs {
		got, err := ParseTimestamp(in)
		if err != nil {
			t.Errorf("ParseTimestamp(%q) error: %v", in, err)
			continue
		}
		if !got.Equal(want) {
			t.Errorf("ParseTimestamp(%q) = %s, want %s", in, got, want)
		}
		if got.Location() != time.UTC {
			t.Errorf("ParseTimestamp(%q) location = %s, want UTC", in, got.Location())
		}
	}
}

func TestParseTimestampFractionalSeconds(t *testing.T) {
	got, err := ParseTimestamp("2024-06-04T10:00:00.123Z")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Nanosecond() != 123000000 {
		t.Fatalf("fractional seconds lost: %s", got)
	}
}

func TestParseTimestampErrors(t *testing.T) {
	if _, err := ParseTimestamp("   "); !errors.Is(err, ErrMissingTimestamp) {
		t.Fatalf("expected ErrMissingTimestamp, got %v", err)
	}
	for _, in := range []string{"yesterday", "06/04/2024", "2024-13-45T10:00:00Z"} {
		if _, err := ParseTimestamp(in); !errors.Is(err, ErrUnparsableTimestamp) {
			t.Errorf("ParseTimestamp(%q) expected ErrUnparsableTimestamp, got %v", in, err)
		}
	}
}

func TestFilterCompletedWithin(t *testing.T) {
	start := time.Date(2024, 6, 4, 0, 0, 0, 0, time.UTC)
	w := Window{Start: start, End: start.AddDate(0, 0, 7)}
	items := []Item{
		{ID: 1, Title: "at start", CompletedAt: "2024-06-04T00:00:00Z"},
		{ID: 2, Title: "just before", CompletedAt: "2024-06-03T23:59:59Z"},
		{ID: 3, Title: "no timestamp"},
		{ID: 4, Title: "garbage", CompletedAt: "not a date"},
		{ID: 5, Title: "inside", CompletedAt: "2024-06-06T08:00:00UTC"},
	}

	var logged []string
	logf := func(format string, args ...any) {
		logged = append(logged, format)
	}
	kept := FilterCompletedWithin(items, w, logf)

	if len(kept) != 2 || kept[0].ID != 1 || kept[1].ID != 5 {
		t.Fatalf("unexpected kept items: %+v", kept)
	}
	if len(logged) != 1 || !strings.Contains(logged[0], "Error parsing completion date") {
		t.Fatalf("expected one parse diagnostic, got %v", logged)
	}
}

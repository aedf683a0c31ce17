package llm

import (
	"context"
	"errors"
	"testing"
	"time"
)

type stubSummarizer struct {
	calls int
	text  string
	err   error
}

func (s *stubSummarizer) Summarize(context.Context, string) (string, error) {
	s.calls++
	return s.text, s.err
}

func TestDisabledReturnsNotConfigured(t *testing.T) {
	for _, d := range []Disabled{{}, {Reason: "no key"}} {
		if _, err := d.Summarize(context.Background(), "x"); !errors.Is(err, ErrNotConfigured) {
			t.Fatalf("expected ErrNotConfigured, got %v", err)
		}
	}
}

func TestPacedWaitsBeforeEachCall(t *testing.T) {
	next := &stubSummarizer{text: "ok"}
	var waits []time.Duration
	p := NewPaced(next, 3*time.Second)
	p.sleep = func(_ context.Context, d time.Duration) error {
		waits = append(waits, d)
		return nil
	}

	for i := 0; i < 2; i++ {
		got, err := p.Summarize(context.Background(), "prompt")
		if err != nil || got != "ok" {
			t.Fatalf("unexpected result %q err=%v", got, err)
		}
	}
	if len(waits) != 2 || waits[0] != 3*time.Second {
		t.Fatalf("unexpected waits: %v", waits)
	}
	if next.calls != 2 {
		t.Fatalf("expected 2 downstream calls, got %d", next.calls)
	}
}

func TestPacedStopsOnCancel(t *testing.T) {
	next := &stubSummarizer{text: "ok"}
	p := NewPaced(next, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := p.Summarize(ctx, "prompt"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if next.calls != 0 {
		t.Fatal("downstream summarizer must not be called after cancel")
	}
}

package llm

import (
	"context"
	"errors"
	"fmt"
	"time"
)

const DefaultRequestDelay = 3 * time.Second

// ErrNotConfigured is returned by a Summarizer that has no credentials.
var ErrNotConfigured = errors.New("llm: summarizer not configured")

// Summarizer turns a prompt into narrative text.
type Summarizer interface {
	Summarize(ctx context.Context, prompt string) (string, error)
}

// Disabled always fails with ErrNotConfigured.
type Disabled struct {
	Reason string
}

func (d Disabled) Summarize(context.Context, string) (string, error) {
	if d.Reason == "" {
		return "", ErrNotConfigured
	}
	return "", fmt.Errorf("%w: %s", ErrNotConfigured, d.Reason)
}

// Paced waits a fixed delay before every call to keep under provider rate
// limits. The wait is cut short when ctx is cancelled.
type Paced struct {
	next  Summarizer
	delay time.Duration
	sleep func(context.Context, time.Duration) error
}

func NewPaced(next Summarizer, delay time.Duration) *Paced {
	return &Paced{next: next, delay: delay, sleep: sleepContext}
}

func (p *Paced) Summarize(ctx context.Context, prompt string) (string, error) {
	if p.delay > 0 {
		if err := p.sleep(ctx, p.delay); err != nil {
			return "", err
		}
	}
	return p.next.Summarize(ctx, prompt)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

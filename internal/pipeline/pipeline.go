package pipeline

import (
	"context"
	"errors"
	"io"
	"log"
	"os"
	"time"

	"shortcutreport/internal/domain"
	"shortcutreport/internal/integrations/llm"
	"shortcutreport/internal/report"
)

var (
	// ErrNoItems means the run found nothing to report for its period.
	ErrNoItems     = errors.New("no items fetched for the period")
	ErrInvalidDate = errors.New("invalid date format, use YYYY-MM-DD")
)

// Tracker is the subset of the Shortcut client the pipelines need.
type Tracker interface {
	SearchStories(ctx context.Context, query string) ([]domain.Item, error)
	SearchEpics(ctx context.Context, query string) ([]domain.Epic, error)
	ResolveOwners(ctx context.Context, ownerIDs []string) domain.OwnerDirectory
}

type Deps struct {
	Tracker    Tracker
	Summarizer llm.Summarizer
	OutputDir  string
	Write      func(outputDir, name, content string) (string, error)
	Now        func() time.Time
	Logf       func(string, ...any)
	Stdout     io.Writer
}

func (d Deps) withDefaults() Deps {
	if d.Summarizer == nil {
		d.Summarizer = llm.Disabled{}
	}
	if d.OutputDir == "" {
		d.OutputDir = "reports"
	}
	if d.Write == nil {
		d.Write = report.WriteReportFile
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Logf == nil {
		d.Logf = log.Printf
	}
	if d.Stdout == nil {
		d.Stdout = os.Stdout
	}
	return d
}

const (
	KindDaily      = "daily"
	KindWeeklyGo   = "weekly-go"
	KindWeeklyDone = "weekly-done"
)

// Result describes one finished run.
type Result struct {
	Kind      string
	Window    domain.Window
	Grouped   *domain.GroupedReport
	Owners    domain.OwnerDirectory
	Files     []string
	Narrative bool
}

func (r Result) ItemCount() int {
	if r.Grouped == nil {
		return 0
	}
	return r.Grouped.Len()
}

// summarize returns "" when the summarizer fails; the run carries on without
// the narrative section.
func summarize(ctx context.Context, d Deps, what, prompt string) string {
	text, err := d.Summarizer.Summarize(ctx, prompt)
	if err != nil {
		if errors.Is(err, llm.ErrNotConfigured) {
			d.Logf("summary skipped kind=%s: %v", what, err)
		} else {
			d.Logf("summary failed kind=%s err=%v", what, err)
		}
		return ""
	}
	return text
}

// write logs failures instead of returning them so one bad file does not
// abort the rest of the run.
func write(d Deps, res *Result, name, content string) {
	path, err := d.Write(d.OutputDir, name, content)
	if err != nil {
		d.Logf("report write failed file=%s err=%v", name, err)
		return
	}
	d.Logf("report saved path=%s", path)
	res.Files = append(res.Files, path)
}

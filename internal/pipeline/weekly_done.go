package pipeline

import (
	"context"
	"fmt"
	"time"

	"shortcutreport/internal/domain"
	"shortcutreport/internal/integrations/llm"
	"shortcutreport/internal/integrations/shortcut"
	"shortcutreport/internal/report"
)

// WeeklyDone reports stories moved into the target states since last Friday,
// leaving out stories that shipped through the Go column on the most recent
// Tuesday, and produces a dogfooding list for testers.
type WeeklyDone struct {
	Deps           Deps
	Mappings       domain.Mappings
	GoStateID      string
	TargetStateIDs []string
	FormURL        string
}

func (p WeeklyDone) Run(ctx context.Context) (Result, error) {
	d := p.Deps.withDefaults()
	now := d.Now().UTC()
	excluded := p.goExclusions(ctx, d, now)

	res := Result{
		Kind:   KindWeeklyDone,
		Window: domain.Window{Start: domain.LastWeekday(now, time.Friday), End: now},
	}
	grouper := report.NewGrouper(p.Mappings, report.WithExclusions(excluded))
	for _, stateID := range p.TargetStateIDs {
		label, _ := p.Mappings.StateLabel(stateID)
		d.Logf("weekly-done fetching state=%q since=%s", label, res.Window.Start.Format("2006-01-02"))
		items, err := d.Tracker.SearchStories(ctx, shortcut.MovedAfterQuery(stateID, res.Window.Start))
		if err != nil {
			d.Logf("weekly-done fetch failed state=%q err=%v", label, err)
			continue
		}
		grouper.AddAll(items)
	}
	res.Grouped = grouper.Report()
	d.Logf("weekly-done found stories=%d excluded_go=%d", res.Grouped.Len(), len(excluded))

	if res.Grouped.IsEmpty() {
		return res, ErrNoItems
	}
	res.Owners = d.Tracker.ResolveOwners(ctx, res.Grouped.OwnerIDs())

	mainMD := report.RenderRelease(weeklyReportTitle, res.Grouped, res.Window)
	dogfoodMD := report.RenderDogfooding(res.Grouped)
	fmt.Fprintln(d.Stdout, mainMD)
	fmt.Fprintln(d.Stdout, dogfoodMD)

	summary := summarize(ctx, d, "dogfooding", llm.DogfoodingPrompt(mainMD))
	res.Narrative = summary != ""

	start := res.Window.Start.Format("2006-01-02")
	write(d, &res, fmt.Sprintf("weekly_release_%s.md", start), mainMD)
	write(d, &res, fmt.Sprintf("dogfooding_report_%s.md", start), p.dogfoodingDocument(summary, dogfoodMD))
	return res, nil
}

// goExclusions returns ids of Go stories completed on the most recent
// Tuesday. A failed lookup excludes nothing.
func (p WeeklyDone) goExclusions(ctx context.Context, d Deps, now time.Time) map[int64]struct{} {
	tuesday := domain.MostRecentWeekday(now, time.Tuesday)
	excluded := make(map[int64]struct{})
	items, err := d.Tracker.SearchStories(ctx, shortcut.CompletedAfterQuery(p.GoStateID, tuesday))
	if err != nil {
		d.Logf("weekly-done fetch go stories failed err=%v", err)
		return excluded
	}
	for _, item := range items {
		if item.CompletedAt == "" {
			continue
		}
		completed, err := domain.ParseTimestamp(item.CompletedAt)
		if err != nil {
			d.Logf("Error parsing completion date for story %q: %v", item.Title, err)
			continue
		}
		if completed.Format("2006-01-02") == tuesday.Format("2006-01-02") {
			excluded[item.ID] = struct{}{}
		}
	}
	return excluded
}

func (p WeeklyDone) dogfoodingDocument(summary, dogfoodMD string) string {
	if summary == "" {
		return dogfoodMD
	}
	doc := summary + "\n"
	if p.FormURL != "" {
		doc += fmt.Sprintf("[Report your findings here.](%s)\n", p.FormURL)
	}
	return doc + dogfoodMD
}

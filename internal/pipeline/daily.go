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

// Daily reports stories and epics updated on one calendar day.
type Daily struct {
	Deps     Deps
	Date     string
	Mappings domain.Mappings
}

func ParseReportDate(value string) (time.Time, error) {
	day, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, value)
	}
	return day, nil
}

func (p Daily) Run(ctx context.Context) (Result, error) {
	d := p.Deps.withDefaults()
	day, err := ParseReportDate(p.Date)
	if err != nil {
		return Result{Kind: KindDaily}, err
	}
	res := Result{Kind: KindDaily, Window: domain.DayWindow(day, d.Now())}

	stories, err := d.Tracker.SearchStories(ctx, shortcut.UpdatedOnQuery(day))
	if err != nil {
		d.Logf("daily fetch stories failed date=%s err=%v", p.Date, err)
	}
	grouper := report.NewGrouper(p.Mappings)
	grouper.AddAll(stories)
	res.Grouped = grouper.Report()

	epics, err := d.Tracker.SearchEpics(ctx, shortcut.UpdatedOnQuery(day))
	if err != nil {
		d.Logf("daily fetch epics failed date=%s err=%v", p.Date, err)
	}
	d.Logf("daily fetched date=%s stories=%d kept=%d epics=%d", p.Date, len(stories), res.Grouped.Len(), len(epics))

	if res.Grouped.IsEmpty() {
		return res, ErrNoItems
	}

	ownerIDs := res.Grouped.OwnerIDs()
	for _, epic := range epics {
		ownerIDs = append(ownerIDs, epic.OwnerIDs...)
	}
	res.Owners = d.Tracker.ResolveOwners(ctx, ownerIDs)

	storiesMD := report.RenderDetailed(res.Grouped, res.Owners)
	epicsMD := report.RenderEpics(epics, res.Owners)
	fmt.Fprintln(d.Stdout, storiesMD)
	if epicsMD != "" {
		fmt.Fprintln(d.Stdout, epicsMD)
	}

	summary := summarize(ctx, d, "daily", llm.DailySummaryPrompt(storiesMD))
	res.Narrative = summary != ""
	write(d, &res, p.Date+".md", firstNonEmpty(summary, storiesMD))

	if len(epics) > 0 {
		epicSummary := summarize(ctx, d, "daily-epics", llm.EpicSummaryPrompt(epicsMD))
		write(d, &res, p.Date+"-epic.md", firstNonEmpty(epicSummary, epicsMD))
	}
	return res, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

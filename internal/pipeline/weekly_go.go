package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"shortcutreport/internal/domain"
	"shortcutreport/internal/integrations/llm"
	"shortcutreport/internal/integrations/shortcut"
	"shortcutreport/internal/report"
)

const weeklyReportTitle = "Weekly Release Report"

// WeeklyGo reports stories that reached the Go state during the last seven
// days, with a summary and per-platform release notes.
type WeeklyGo struct {
	Deps      Deps
	Mappings  domain.Mappings
	GoStateID string
}

func (p WeeklyGo) Run(ctx context.Context) (Result, error) {
	d := p.Deps.withDefaults()
	now := d.Now().UTC()
	res := Result{
		Kind:   KindWeeklyGo,
		Window: domain.Window{Start: domain.SevenDaysBefore(now), End: now},
	}

	items, err := d.Tracker.SearchStories(ctx, shortcut.StateQuery(p.GoStateID))
	switch {
	case errors.Is(err, shortcut.ErrMaxResultsExceeded):
		d.Logf("weekly-go too many results, fetching per team state=%s", p.GoStateID)
		items = p.fetchPerTeam(ctx, d)
	case err != nil:
		d.Logf("weekly-go fetch failed state=%s err=%v", p.GoStateID, err)
	}

	completed := domain.FilterCompletedWithin(items, res.Window, d.Logf)
	grouper := report.NewGrouper(p.Mappings, report.SkipUnknownTeams())
	grouper.AddAll(completed)
	res.Grouped = grouper.Report()
	d.Logf("weekly-go found completed stories=%d fetched=%d", res.Grouped.Len(), len(items))

	if res.Grouped.IsEmpty() {
		return res, ErrNoItems
	}
	res.Owners = d.Tracker.ResolveOwners(ctx, res.Grouped.OwnerIDs())

	storiesMD := report.RenderRelease(weeklyReportTitle, res.Grouped, res.Window)
	fmt.Fprintln(d.Stdout, storiesMD)

	summary := summarize(ctx, d, "weekly-go", llm.WeeklySummaryPrompt(storiesMD))
	res.Narrative = summary != ""
	notes := releaseNotes(ctx, d, report.CategorizeByPlatform(res.Grouped))

	var final strings.Builder
	if summary != "" {
		final.WriteString(summary + "\n\n")
	}
	final.WriteString(storiesMD + "\n\n")
	final.WriteString(notes)

	write(d, &res, fmt.Sprintf("weekly_go_%s.md", res.Window.Start.Format("2006-01-02")), final.String())
	return res, nil
}

// fetchPerTeam repeats the Go query once per mapped team to stay below the
// search result ceiling. Teams are visited in name order and failing teams
// are skipped.
func (p WeeklyGo) fetchPerTeam(ctx context.Context, d Deps) []domain.Item {
	teamIDs := make([]string, 0, len(p.Mappings.Teams))
	for id := range p.Mappings.Teams {
		teamIDs = append(teamIDs, id)
	}
	sort.Slice(teamIDs, func(i, j int) bool {
		ni, nj := p.Mappings.Teams[teamIDs[i]], p.Mappings.Teams[teamIDs[j]]
		if ni != nj {
			return ni < nj
		}
		return teamIDs[i] < teamIDs[j]
	})

	var all []domain.Item
	for _, teamID := range teamIDs {
		items, err := d.Tracker.SearchStories(ctx, shortcut.StateGroupQuery(p.GoStateID, teamID))
		if err != nil {
			d.Logf("weekly-go fetch failed team=%q err=%v", p.Mappings.Teams[teamID], err)
			continue
		}
		for i := range items {
			items[i].TeamID = teamID
		}
		all = append(all, items...)
	}
	return all
}

// releaseNotes asks for notes per platform, skipping "other". A platform
// whose request fails gets a placeholder section. Without a configured
// summarizer the section is left out entirely.
func releaseNotes(ctx context.Context, d Deps, stories report.PlatformStories) string {
	var b strings.Builder
	b.WriteString("# Release Notes\n\n")
	for _, platform := range report.Platforms {
		entries := stories[platform]
		if len(entries) == 0 {
			continue
		}
		text, err := d.Summarizer.Summarize(ctx, llm.ReleaseNotesPrompt(string(platform), entries))
		if errors.Is(err, llm.ErrNotConfigured) {
			d.Logf("release notes skipped: %v", err)
			return ""
		}
		if err != nil {
			d.Logf("release notes failed platform=%s err=%v", platform, err)
			fmt.Fprintf(&b, "\n## %s Release Notes\n\nError generating release notes for this platform.\n\n", platform.Upper())
			continue
		}
		fmt.Fprintf(&b, "\n%s\n\n", text)
	}
	return b.String()
}

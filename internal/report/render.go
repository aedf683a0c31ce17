package report

import (
	"fmt"
	"strings"

	"shortcutreport/internal/domain"
)

const dateLayout = "2006-01-02"

// RenderRelease renders the team/state release layout used by both weekly
// reports. Teams without items are left out.
func RenderRelease(title string, grouped *domain.GroupedReport, window domain.Window) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n", title)
	fmt.Fprintf(&b, "**Period:** %s to %s\n\n", window.Start.UTC().Format(dateLayout), window.End.UTC().Format(dateLayout))
	for _, team := range grouped.Teams() {
		if team.Len() == 0 {
			continue
		}
		fmt.Fprintf(&b, "## %s\n\n", team.Name)
		writeStateSections(&b, team)
		b.WriteString("\n")
	}
	return b.String()
}

// RenderDogfooding lists the same stories without the period line, for testers.
func RenderDogfooding(grouped *domain.GroupedReport) string {
	var b strings.Builder
	b.WriteString("# Dogfooding Stories\n\n")
	for _, team := range grouped.Teams() {
		if team.Len() == 0 {
			continue
		}
		fmt.Fprintf(&b, "## %s\n\n", team.Name)
		writeStateSections(&b, team)
	}
	return b.String()
}

func writeStateSections(b *strings.Builder, team *domain.TeamGroup) {
	for _, state := range team.States {
		fmt.Fprintf(b, "### %s\n\n", state.Label)
		for _, item := range state.Items {
			fmt.Fprintf(b, "- [%s](%s)\n", item.Title, item.URL)
		}
		b.WriteString("\n")
	}
}

// RenderDetailed is the daily layout: one section per team, each story with
// its state, owners and raw description between markers the summary prompt
// relies on.
func RenderDetailed(grouped *domain.GroupedReport, owners domain.OwnerDirectory) string {
	var b strings.Builder
	for _, team := range grouped.Teams() {
		if team.Len() == 0 {
			continue
		}
		fmt.Fprintf(&b, "## %s\n\n", team.Name)
		for _, state := range team.States {
			for _, item := range state.Items {
				fmt.Fprintf(&b, "- [%s](%s) → **%s** by *%s*\n", item.Title, item.URL, state.Label, owners.Names(item.OwnerIDs))
				fmt.Fprintf(&b, "DESCRIPTION_START\n%sDESCRIPTION_END\n", item.Description)
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

func RenderEpics(epics []domain.Epic, owners domain.OwnerDirectory) string {
	var b strings.Builder
	for _, epic := range epics {
		fmt.Fprintf(&b, "- [%s](%s) - Progress: %.2f%% complete by *%s*\n", epic.Title, epic.URL, epic.Progress(), owners.Names(epic.OwnerIDs))
		fmt.Fprintf(&b, "DESCRIPTION_START\n%sDESCRIPTION_END\n", epic.Description)
	}
	return b.String()
}

package report

import "shortcutreport/internal/domain"

// Grouper files items into a GroupedReport using injected team and state maps.
type Grouper struct {
	mappings         domain.Mappings
	skipUnknownTeams bool
	excluded         map[int64]struct{}
	report           *domain.GroupedReport
}

type GrouperOption func(*Grouper)

// SkipUnknownTeams drops items whose team is not mapped instead of filing
// them under domain.UnknownTeam.
func SkipUnknownTeams() GrouperOption {
	return func(g *Grouper) { g.skipUnknownTeams = true }
}

func WithExclusions(ids map[int64]struct{}) GrouperOption {
	return func(g *Grouper) { g.excluded = ids }
}

func NewGrouper(mappings domain.Mappings, opts ...GrouperOption) *Grouper {
	g := &Grouper{mappings: mappings, report: domain.NewGroupedReport()}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Add files item and reports whether it was kept.
func (g *Grouper) Add(item domain.Item) bool {
	if _, skip := g.excluded[item.ID]; skip {
		return false
	}
	state, ok := g.mappings.StateLabel(item.WorkflowStateID)
	if !ok {
		return false
	}
	team, ok := g.mappings.TeamName(item.TeamID)
	if !ok {
		if g.skipUnknownTeams {
			return false
		}
		team = domain.UnknownTeam
	}
	g.report.Append(team, state, item)
	return true
}

func (g *Grouper) AddAll(items []domain.Item) int {
	kept := 0
	for _, item := range items {
		if g.Add(item) {
			kept++
		}
	}
	return kept
}

func (g *Grouper) Report() *domain.GroupedReport {
	return g.report
}

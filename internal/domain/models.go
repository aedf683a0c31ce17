package domain

import "strings"

const (
	UnknownTeam = "Unknown Squad"
	UnknownUser = "Unknown User"
)

// Item is a story fetched from the tracker. It is never mutated after fetch.
type Item struct {
	ID              int64
	Title           string
	URL             string
	WorkflowStateID string   // numeric tracker id, kept as text to match config keys
	TeamID          string   // tracker group id
	OwnerIDs        []string // member UUIDs
	Description     string
	CompletedAt     string // raw timestamp, empty when the story is not completed
}

type Epic struct {
	ID           int64
	Title        string
	URL          string
	Description  string
	OwnerIDs     []string
	StoriesDone  int
	StoriesTotal int
}

// Progress returns the completed share in percent; zero when the epic has no stories.
func (e Epic) Progress() float64 {
	if e.StoriesTotal <= 0 {
		return 0
	}
	return float64(e.StoriesDone) / float64(e.StoriesTotal) * 100
}

// Mappings resolves opaque tracker ids to display names. It is configuration
// data handed to the grouper, one instance per report kind.
type Mappings struct {
	Teams  map[string]string
	States map[string]string
}

func (m Mappings) TeamName(teamID string) (string, bool) {
	name, ok := m.Teams[teamID]
	return name, ok
}

func (m Mappings) StateLabel(stateID string) (string, bool) {
	label, ok := m.States[stateID]
	return label, ok
}

// OwnerDirectory maps member ids to display names.
type OwnerDirectory map[string]string

func (d OwnerDirectory) Name(ownerID string) string {
	if name, ok := d[ownerID]; ok {
		return name
	}
	return UnknownUser
}

func (d OwnerDirectory) Names(ownerIDs []string) string {
	names := make([]string, 0, len(ownerIDs))
	for _, id := range ownerIDs {
		names = append(names, d.Name(id))
	}
	return strings.Join(names, ", ")
}

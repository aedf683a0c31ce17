package domain

// GroupedReport holds items bucketed by team and then by workflow state.
// Teams, states and items all keep the order in which they were first added.
type GroupedReport struct {
	teams     []*TeamGroup
	teamIndex map[string]*TeamGroup
}

type TeamGroup struct {
	Name       string
	States     []*StateGroup
	stateIndex map[string]*StateGroup
}

type StateGroup struct {
	Label string
	Items []Item
}

func NewGroupedReport() *GroupedReport {
	return &GroupedReport{teamIndex: make(map[string]*TeamGroup)}
}

// Append adds item to the (team, state) bucket, creating it if needed.
func (r *GroupedReport) Append(team, state string, item Item) {
	tg, ok := r.teamIndex[team]
	if !ok {
		tg = &TeamGroup{Name: team, stateIndex: make(map[string]*StateGroup)}
		r.teamIndex[team] = tg
		r.teams = append(r.teams, tg)
	}
	sg, ok := tg.stateIndex[state]
	if !ok {
		sg = &StateGroup{Label: state}
		tg.stateIndex[state] = sg
		tg.States = append(tg.States, sg)
	}
	sg.Items = append(sg.Items, item)
}

func (r *GroupedReport) Teams() []*TeamGroup {
	return r.teams
}

// Bucket returns the items filed under team and state, or nil.
func (r *GroupedReport) Bucket(team, state string) []Item {
	tg, ok := r.teamIndex[team]
	if !ok {
		return nil
	}
	sg, ok := tg.stateIndex[state]
	if !ok {
		return nil
	}
	return sg.Items
}

func (r *GroupedReport) Len() int {
	n := 0
	for _, tg := range r.teams {
		n += tg.Len()
	}
	return n
}

func (r *GroupedReport) IsEmpty() bool {
	return r.Len() == 0
}

// OwnerIDs returns every distinct owner id referenced by the report, in
// first-seen order.
func (r *GroupedReport) OwnerIDs() []string {
	seen := make(map[string]bool)
	var ids []string
	for _, tg := range r.teams {
		for _, sg := range tg.States {
			for _, item := range sg.Items {
				for _, id := range item.OwnerIDs {
					if id == "" || seen[id] {
						continue
					}
					seen[id] = true
					ids = append(ids, id)
				}
			}
		}
	}
	return ids
}

func (t *TeamGroup) Len() int {
	n := 0
	for _, sg := range t.States {
		n += len(sg.Items)
	}
	return n
}

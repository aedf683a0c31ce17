package shortcut

import (
	"strconv"

	"shortcutreport/internal/domain"
)

type searchResponse[T any] struct {
	Data  []T    `json:"data"`
	Next  string `json:"next"`
	Total int    `json:"total"`
}

type storyResponse struct {
	ID              int64    `json:"id"`
	Name            string   `json:"name"`
	AppURL          string   `json:"app_url"`
	WorkflowStateID int64    `json:"workflow_state_id"`
	GroupID         string   `json:"group_id"`
	OwnerIDs        []string `json:"owner_ids"`
	Description     string   `json:"description"`
	CompletedAt     string   `json:"completed_at"`
}

func (s storyResponse) toItem() domain.Item {
	return domain.Item{
		ID:              s.ID,
		Title:           s.Name,
		URL:             s.AppURL,
		WorkflowStateID: strconv.FormatInt(s.WorkflowStateID, 10),
		TeamID:          s.GroupID,
		OwnerIDs:        s.OwnerIDs,
		Description:     s.Description,
		CompletedAt:     s.CompletedAt,
	}
}

type epicResponse struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	AppURL      string   `json:"app_url"`
	Description string   `json:"description"`
	OwnerIDs    []string `json:"owner_ids"`
	Stats       *struct {
		NumStoriesDone  *int `json:"num_stories_done"`
		NumStoriesTotal *int `json:"num_stories_total"`
	} `json:"stats"`
}

func (e epicResponse) toEpic() domain.Epic {
	epic := domain.Epic{
		ID:           e.ID,
		Title:        e.Name,
		URL:          e.AppURL,
		Description:  e.Description,
		OwnerIDs:     e.OwnerIDs,
		StoriesTotal: 1,
	}
	if epic.Title == "" {
		epic.Title = "Untitled Epic"
	}
	if e.Stats != nil {
		if e.Stats.NumStoriesDone != nil {
			epic.StoriesDone = *e.Stats.NumStoriesDone
		}
		if e.Stats.NumStoriesTotal != nil {
			epic.StoriesTotal = *e.Stats.NumStoriesTotal
		}
	}
	return epic
}

type memberResponse struct {
	Profile struct {
		Name *string `json:"name"`
	} `json:"profile"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

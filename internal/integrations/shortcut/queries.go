package shortcut

import (
	"fmt"
	"time"
)

// isoLayout matches the offset form the search API accepts for date predicates.
const isoLayout = "2006-01-02T15:04:05-07:00"

func StateQuery(stateID string) string {
	return "state:" + stateID
}

func StateGroupQuery(stateID, teamID string) string {
	return fmt.Sprintf("state:%s group:%s", stateID, teamID)
}

func CompletedAfterQuery(stateID string, after time.Time) string {
	return fmt.Sprintf("state:%s completed_after:%s", stateID, after.UTC().Format(isoLayout))
}

func MovedAfterQuery(stateID string, after time.Time) string {
	return fmt.Sprintf("state:%s moved_after:%s", stateID, after.UTC().Format(isoLayout))
}

func UpdatedOnQuery(date time.Time) string {
	return "updated:" + date.Format("2006-01-02")
}

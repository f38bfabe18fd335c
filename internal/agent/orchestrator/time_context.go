package orchestrator

import (
	"fmt"
	"time"

	"personal-assistant/pkg/response"
)

// buildTimeContext creates a temporal context string for the LLM so it
// resolves relative dates to absolute YYYY-MM-DD itself.
func buildTimeContext(timezone string) string {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		loc = time.UTC
	}

	now := time.Now().In(loc)

	// Week boundaries, Monday through Sunday.
	weekday := int(now.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	weekStart := now.AddDate(0, 0, -(weekday - 1))
	weekEnd := weekStart.AddDate(0, 0, 6)
	tomorrow := now.AddDate(0, 0, 1)

	return fmt.Sprintf(
		timeContextTemplate,
		now.Format(response.DateFormat),
		now.Weekday().String(),
		weekStart.Format(response.DateFormat),
		weekEnd.Format(response.DateFormat),
		tomorrow.Format(response.DateFormat),
	)
}

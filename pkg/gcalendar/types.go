package gcalendar

import "time"

// CreateEventRequest is the input for creating a Google Calendar event.
// Timed events use StartTime/EndTime; all-day events set AllDay with
// StartDate/EndDate as YYYY-MM-DD strings (EndDate exclusive, per the
// Calendar API).
type CreateEventRequest struct {
	CalendarID  string
	Summary     string
	Description string
	Location    string
	Timezone    string // e.g. "Asia/Ho_Chi_Minh"

	StartTime time.Time
	EndTime   time.Time

	AllDay    bool
	StartDate string
	EndDate   string
}

// Event is a simplified representation of a Google Calendar event.
type Event struct {
	ID          string
	Summary     string
	Description string
	HtmlLink    string
	StartTime   time.Time
	EndTime     time.Time
	Location    string
	AllDay      bool
}

// ListEventsRequest is the input for listing Google Calendar events.
type ListEventsRequest struct {
	CalendarID string
	TimeMin    time.Time
	TimeMax    time.Time
	MaxResults int64
}

package gcal

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/api/googleapi"

	"personal-assistant/internal/agent"
	"personal-assistant/internal/credentials"
	"personal-assistant/internal/gateway"
	"personal-assistant/pkg/gcalendar"
	"personal-assistant/pkg/response"
)

const defaultEventDuration = time.Hour

// localDateTime is a timestamp without offset, as LLMs usually emit it.
const localDateTime = "2006-01-02T15:04:05"

// CredentialSource reports whether the interactive OAuth flow is pending.
// *credentials.Manager satisfies it.
type CredentialSource interface {
	RequiresAuthorization() bool
}

// Config holds the calendar target and default timezone.
type Config struct {
	CalendarID      string
	DefaultTimezone string
}

// Adapter serves the calendar event creation tool.
type Adapter struct {
	client *gcalendar.Client
	creds  CredentialSource
	cfg    Config
}

// New creates the calendar adapter.
func New(client *gcalendar.Client, creds CredentialSource, cfg Config) *Adapter {
	if cfg.DefaultTimezone == "" {
		cfg.DefaultTimezone = "UTC"
	}
	return &Adapter{client: client, creds: creds, cfg: cfg}
}

func (a *Adapter) Name() string { return "gcal" }

func (a *Adapter) Reentrant() bool { return true }

// Healthy reports whether the adapter is wired to a calendar client.
// A pending authorization is not unhealthy: the tool stays in the
// catalog so Invoke can fail with the authorization instruction instead
// of the tool silently disappearing.
func (a *Adapter) Healthy(ctx context.Context) bool {
	return a.client != nil
}

// Descriptors returns the tools this adapter publishes to the catalog.
func (a *Adapter) Descriptors() []agent.ToolDescriptor {
	return []agent.ToolDescriptor{
		{
			Name: "create_calendar_event",
			Description: "Create a Google Calendar event. Use YYYY-MM-DDTHH:MM:SS for timed events " +
				"(end defaults to one hour after start) or YYYY-MM-DD for all-day events.",
			InputSchema: agent.ObjectSchema(map[string]agent.Property{
				"title":       {Type: "string", Description: "Event title"},
				"start":       {Type: "string", Description: "Start time or date"},
				"end":         {Type: "string", Description: "End time or date, optional"},
				"description": {Type: "string", Description: "Event description"},
				"location":    {Type: "string", Description: "Event location"},
				"timezone":    {Type: "string", Description: "IANA timezone, defaults to the configured one"},
			}, "title", "start"),
			Endpoint: a.Name(),
		},
		{
			Name: "list_calendar_events",
			Description: "List Google Calendar events in a time window. Use YYYY-MM-DD for whole days " +
				"or YYYY-MM-DDTHH:MM:SS for exact bounds; the window defaults to one day from the start.",
			InputSchema: agent.ObjectSchema(map[string]agent.Property{
				"from":     {Type: "string", Description: "Window start, date or date-time"},
				"to":       {Type: "string", Description: "Window end, optional"},
				"timezone": {Type: "string", Description: "IANA timezone, defaults to the configured one"},
			}, "from"),
			Endpoint: a.Name(),
		},
	}
}

func (a *Adapter) Invoke(ctx context.Context, tool string, args map[string]interface{}) (string, error) {
	if tool != "create_calendar_event" && tool != "list_calendar_events" {
		return "", gateway.NewToolError(gateway.KindValidation, fmt.Sprintf("calendar adapter does not serve tool %q", tool), nil)
	}
	if a.creds != nil && a.creds.RequiresAuthorization() {
		return "", gateway.NewToolError(gateway.KindAuthorizationRequired,
			"Google Calendar is not authorized yet; run the authorization flow first", nil)
	}
	if tool == "list_calendar_events" {
		return a.listEvents(ctx, args)
	}
	return a.createEvent(ctx, args)
}

func (a *Adapter) createEvent(ctx context.Context, args map[string]interface{}) (string, error) {
	title, _ := args["title"].(string)
	start, _ := args["start"].(string)
	end, _ := args["end"].(string)

	tz, _ := args["timezone"].(string)
	if tz == "" {
		tz = a.cfg.DefaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return "", gateway.NewToolError(gateway.KindValidation, fmt.Sprintf("unknown timezone %q", tz), err)
	}

	req := gcalendar.CreateEventRequest{
		CalendarID: a.cfg.CalendarID,
		Summary:    title,
		Timezone:   tz,
	}
	if description, ok := args["description"].(string); ok {
		req.Description = description
	}
	if location, ok := args["location"].(string); ok {
		req.Location = location
	}

	if startDate, dateErr := time.ParseInLocation(response.DateFormat, start, loc); dateErr == nil {
		// Date-only start makes an all-day event; the API end date is exclusive.
		endDate := startDate.AddDate(0, 0, 1)
		if end != "" {
			parsedEnd, endErr := time.ParseInLocation(response.DateFormat, end, loc)
			if endErr != nil {
				return "", gateway.NewToolError(gateway.KindValidation, fmt.Sprintf("invalid end date %q for an all-day event", end), endErr)
			}
			endDate = parsedEnd.AddDate(0, 0, 1)
		}
		req.AllDay = true
		req.StartDate = startDate.Format(response.DateFormat)
		req.EndDate = endDate.Format(response.DateFormat)
	} else {
		startTime, startErr := parseDateTime(start, loc)
		if startErr != nil {
			return "", gateway.NewToolError(gateway.KindValidation, fmt.Sprintf("invalid start time %q", start), startErr)
		}
		endTime := startTime.Add(defaultEventDuration)
		if end != "" {
			parsedEnd, endErr := parseDateTime(end, loc)
			if endErr != nil {
				return "", gateway.NewToolError(gateway.KindValidation, fmt.Sprintf("invalid end time %q", end), endErr)
			}
			endTime = parsedEnd
		}
		req.StartTime = startTime
		req.EndTime = endTime
	}

	event, err := a.client.CreateEvent(ctx, req)
	if err != nil {
		return "", a.classify(err)
	}

	if event.AllDay {
		return fmt.Sprintf("Created all-day event %q on %s. %s", title, req.StartDate, event.HtmlLink), nil
	}
	return fmt.Sprintf("Created event %q from %s to %s. %s",
		title,
		req.StartTime.Format(response.DateTimeFormat),
		req.EndTime.Format(response.DateTimeFormat),
		event.HtmlLink), nil
}

func (a *Adapter) listEvents(ctx context.Context, args map[string]interface{}) (string, error) {
	from, _ := args["from"].(string)
	to, _ := args["to"].(string)

	tz, _ := args["timezone"].(string)
	if tz == "" {
		tz = a.cfg.DefaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return "", gateway.NewToolError(gateway.KindValidation, fmt.Sprintf("unknown timezone %q", tz), err)
	}

	timeMin, err := parseWindowBound(from, loc)
	if err != nil {
		return "", gateway.NewToolError(gateway.KindValidation, fmt.Sprintf("invalid window start %q", from), err)
	}
	timeMax := timeMin.AddDate(0, 0, 1)
	if to != "" {
		timeMax, err = parseWindowBound(to, loc)
		if err != nil {
			return "", gateway.NewToolError(gateway.KindValidation, fmt.Sprintf("invalid window end %q", to), err)
		}
		// A date-only end means the whole of that day.
		if _, dateErr := time.ParseInLocation(response.DateFormat, to, loc); dateErr == nil {
			timeMax = timeMax.AddDate(0, 0, 1)
		}
	}
	if !timeMax.After(timeMin) {
		return "", gateway.NewToolError(gateway.KindValidation, "window end must be after its start", nil)
	}

	events, err := a.client.ListEvents(ctx, gcalendar.ListEventsRequest{
		CalendarID: a.cfg.CalendarID,
		TimeMin:    timeMin,
		TimeMax:    timeMax,
	})
	if err != nil {
		return "", a.classify(err)
	}

	if len(events) == 0 {
		return fmt.Sprintf("No events between %s and %s.",
			timeMin.Format(response.DateTimeFormat), timeMax.Format(response.DateTimeFormat)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d event(s):\n", len(events))
	for _, ev := range events {
		if ev.AllDay {
			fmt.Fprintf(&b, "- %s (all day on %s)\n", ev.Summary, ev.StartTime.Format(response.DateFormat))
			continue
		}
		fmt.Fprintf(&b, "- %s (%s to %s)\n", ev.Summary,
			ev.StartTime.In(loc).Format(response.DateTimeFormat),
			ev.EndTime.In(loc).Format(response.DateTimeFormat))
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

// parseWindowBound accepts a date (start of day in loc) or a date-time.
func parseWindowBound(value string, loc *time.Location) (time.Time, error) {
	if t, err := time.ParseInLocation(response.DateFormat, value, loc); err == nil {
		return t, nil
	}
	return parseDateTime(value, loc)
}

func parseDateTime(value string, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.ParseInLocation(localDateTime, value, loc)
}

// classify maps a Calendar API error onto the tool error taxonomy.
// A retried write may still create a duplicate event; the adapter does
// not deduplicate.
func (a *Adapter) classify(err error) error {
	if errors.Is(err, credentials.ErrAuthorizationRequired) {
		return gateway.NewToolError(gateway.KindAuthorizationRequired,
			"Google Calendar authorization expired; run the authorization flow again", err)
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == 401 || apiErr.Code == 403:
			return gateway.NewToolError(gateway.KindAuthorizationRequired,
				"Google Calendar rejected the credential; re-authorization is required", err)
		case apiErr.Code == 400:
			return gateway.NewToolError(gateway.KindValidation, fmt.Sprintf("Calendar rejected the request: %s", apiErr.Message), err)
		case apiErr.Code == 429:
			return gateway.NewToolError(gateway.KindProvider, "Calendar rate limit reached, try again shortly", err)
		default:
			return gateway.NewToolError(gateway.KindProvider, fmt.Sprintf("Calendar API error: %s", apiErr.Message), err)
		}
	}
	return gateway.NewToolError(gateway.KindProvider, err.Error(), err)
}

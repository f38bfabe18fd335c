package gcalendar_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"golang.org/x/oauth2"

	"personal-assistant/pkg/gcalendar"
)

type rewriteTransport struct {
	Transport http.RoundTripper
	Host      string
}

func (t *rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.URL.Scheme = "http"
	req.URL.Host = t.Host
	return t.Transport.RoundTrip(req)
}

func newTestClient(t *testing.T, handler http.Handler) *gcalendar.Client {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	tsClient := ts.Client()
	tsClient.Transport = &rewriteTransport{
		Transport: tsClient.Transport,
		Host:      strings.TrimPrefix(ts.URL, "http://"),
	}

	client, err := gcalendar.NewClientFromHTTP(context.Background(), tsClient)
	if err != nil {
		t.Fatalf("unexpected error creating client: %v", err)
	}
	return client
}

func TestCalendarClient(t *testing.T) {
	t.Run("Initialize from token source", func(t *testing.T) {
		src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "dummy"})
		if _, err := gcalendar.NewClient(context.Background(), src); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("Create timed event", func(t *testing.T) {
		var captured map[string]interface{}
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/calendar/v3/calendars/primary/events" && r.Method == http.MethodPost {
				json.NewDecoder(r.Body).Decode(&captured)
				w.WriteHeader(http.StatusOK)
				w.Write([]byte(`{
					"id": "event-123",
					"summary": "Title",
					"htmlLink": "https://calendar.google.com/event-uri",
					"status": "confirmed"
				}`))
				return
			}
			w.WriteHeader(http.StatusNotFound)
		}))

		start := time.Date(2026, 9, 4, 15, 0, 0, 0, time.UTC)
		event, err := client.CreateEvent(context.Background(), gcalendar.CreateEventRequest{
			Summary:     "Title",
			Description: "Desc",
			Location:    "Room 3",
			Timezone:    "UTC",
			StartTime:   start,
			EndTime:     start.Add(time.Hour),
		})
		if err != nil {
			t.Fatalf("failed to create event: %v", err)
		}
		if event.HtmlLink != "https://calendar.google.com/event-uri" {
			t.Errorf("unexpected link: %s", event.HtmlLink)
		}

		startField, _ := captured["start"].(map[string]interface{})
		if startField["dateTime"] != "2026-09-04T15:00:00Z" || startField["timeZone"] != "UTC" {
			t.Errorf("unexpected start field: %v", startField)
		}
		if captured["location"] != "Room 3" {
			t.Errorf("unexpected location: %v", captured["location"])
		}
	})

	t.Run("Create all-day event uses date fields", func(t *testing.T) {
		var captured map[string]interface{}
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewDecoder(r.Body).Decode(&captured)
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"id": "event-456"}`))
		}))

		_, err := client.CreateEvent(context.Background(), gcalendar.CreateEventRequest{
			Summary:   "Trip",
			AllDay:    true,
			StartDate: "2026-09-04",
			EndDate:   "2026-09-05",
		})
		if err != nil {
			t.Fatalf("failed to create event: %v", err)
		}

		startField, _ := captured["start"].(map[string]interface{})
		endField, _ := captured["end"].(map[string]interface{})
		if startField["date"] != "2026-09-04" || endField["date"] != "2026-09-05" {
			t.Errorf("unexpected date fields: start=%v end=%v", startField, endField)
		}
		if _, hasDateTime := startField["dateTime"]; hasDateTime {
			t.Error("all-day event must not carry dateTime")
		}
	})

	t.Run("Create event API error", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))

		_, err := client.CreateEvent(context.Background(), gcalendar.CreateEventRequest{
			Summary: "Title",
		})
		if err == nil {
			t.Fatal("expected create event error")
		}
	})

	t.Run("List events", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/calendar/v3/calendars/test-fail/events" && r.Method == http.MethodGet {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			if r.URL.Path == "/calendar/v3/calendars/primary/events" && r.Method == http.MethodGet {
				w.WriteHeader(http.StatusOK)
				w.Write([]byte(`{
					"items": [
						{
							"id": "event-123",
							"summary": "Existing Event",
							"start": { "date": "2026-09-01" },
							"end": { "date": "2026-09-02" }
						}
					]
				}`))
				return
			}
			w.WriteHeader(http.StatusNotFound)
		}))

		events, err := client.ListEvents(context.Background(), gcalendar.ListEventsRequest{
			TimeMin: time.Now(),
			TimeMax: time.Now().Add(24 * time.Hour),
		})
		if err != nil {
			t.Fatalf("failed to list events: %v", err)
		}
		if len(events) != 1 {
			t.Fatalf("expected 1 event, got %d", len(events))
		}
		if events[0].Summary != "Existing Event" || !events[0].AllDay {
			t.Errorf("unexpected event: %+v", events[0])
		}

		_, err = client.ListEvents(context.Background(), gcalendar.ListEventsRequest{
			CalendarID: "test-fail",
			TimeMin:    time.Now(),
			TimeMax:    time.Now().Add(24 * time.Hour),
		})
		if err == nil {
			t.Fatal("expected api error on test-fail")
		}
	})
}

package gcal

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"personal-assistant/internal/gateway"
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

type stubCreds struct {
	needsAuth bool
}

func (s *stubCreds) RequiresAuthorization() bool { return s.needsAuth }

func newTestAdapter(t *testing.T, creds CredentialSource, handler http.HandlerFunc) (*Adapter, *map[string]interface{}) {
	t.Helper()

	captured := &map[string]interface{}{}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			json.NewDecoder(r.Body).Decode(captured)
		}
		if handler != nil {
			handler(w, r)
			return
		}
		w.Write([]byte(`{"id": "event-123", "htmlLink": "https://calendar.google.com/event-uri"}`))
	}))
	t.Cleanup(ts.Close)

	tsClient := ts.Client()
	tsClient.Transport = &rewriteTransport{
		Transport: tsClient.Transport,
		Host:      strings.TrimPrefix(ts.URL, "http://"),
	}
	client, err := gcalendar.NewClientFromHTTP(context.Background(), tsClient)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	return New(client, creds, Config{CalendarID: "primary", DefaultTimezone: "UTC"}), captured
}

func TestCreateCalendarEvent(t *testing.T) {
	ctx := context.Background()

	t.Run("timed event with default duration", func(t *testing.T) {
		a, captured := newTestAdapter(t, &stubCreds{}, nil)

		result, err := a.Invoke(ctx, "create_calendar_event", map[string]interface{}{
			"title": "Team meeting",
			"start": "2026-09-04T15:00:00",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(result, "Team meeting") {
			t.Errorf("unexpected result: %s", result)
		}

		start, _ := (*captured)["start"].(map[string]interface{})
		end, _ := (*captured)["end"].(map[string]interface{})
		if start["dateTime"] != "2026-09-04T15:00:00Z" {
			t.Errorf("unexpected start: %v", start)
		}
		if end["dateTime"] != "2026-09-04T16:00:00Z" {
			t.Errorf("expected one hour default duration, got %v", end)
		}
	})

	t.Run("explicit end time", func(t *testing.T) {
		a, captured := newTestAdapter(t, &stubCreds{}, nil)

		_, err := a.Invoke(ctx, "create_calendar_event", map[string]interface{}{
			"title": "Workshop",
			"start": "2026-09-04T15:00:00",
			"end":   "2026-09-04T17:30:00",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		end, _ := (*captured)["end"].(map[string]interface{})
		if end["dateTime"] != "2026-09-04T17:30:00Z" {
			t.Errorf("unexpected end: %v", end)
		}
	})

	t.Run("date-only start makes an all-day event with exclusive end", func(t *testing.T) {
		a, captured := newTestAdapter(t, &stubCreds{}, nil)

		result, err := a.Invoke(ctx, "create_calendar_event", map[string]interface{}{
			"title": "Conference",
			"start": "2026-09-04",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(result, "all-day") {
			t.Errorf("unexpected result: %s", result)
		}

		start, _ := (*captured)["start"].(map[string]interface{})
		end, _ := (*captured)["end"].(map[string]interface{})
		if start["date"] != "2026-09-04" || end["date"] != "2026-09-05" {
			t.Errorf("unexpected date fields: start=%v end=%v", start, end)
		}
	})

	t.Run("multi-day all-day event", func(t *testing.T) {
		a, captured := newTestAdapter(t, &stubCreds{}, nil)

		_, err := a.Invoke(ctx, "create_calendar_event", map[string]interface{}{
			"title": "Trip",
			"start": "2026-09-04",
			"end":   "2026-09-06",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		end, _ := (*captured)["end"].(map[string]interface{})
		if end["date"] != "2026-09-07" {
			t.Errorf("expected exclusive end 2026-09-07, got %v", end)
		}
	})

	t.Run("invalid start is a validation error", func(t *testing.T) {
		a, _ := newTestAdapter(t, &stubCreds{}, nil)

		_, err := a.Invoke(ctx, "create_calendar_event", map[string]interface{}{
			"title": "x",
			"start": "next friday",
		})
		var terr *gateway.ToolError
		if !errors.As(err, &terr) || terr.Kind != gateway.KindValidation {
			t.Fatalf("expected validation ToolError, got %v", err)
		}
	})

	t.Run("unknown timezone is a validation error", func(t *testing.T) {
		a, _ := newTestAdapter(t, &stubCreds{}, nil)

		_, err := a.Invoke(ctx, "create_calendar_event", map[string]interface{}{
			"title":    "x",
			"start":    "2026-09-04T15:00:00",
			"timezone": "Mars/Olympus",
		})
		var terr *gateway.ToolError
		if !errors.As(err, &terr) || terr.Kind != gateway.KindValidation {
			t.Fatalf("expected validation ToolError, got %v", err)
		}
	})
}

func TestListCalendarEvents(t *testing.T) {
	ctx := context.Background()

	listHandler := func(query *map[string][]string, body string) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodGet {
				*query = r.URL.Query()
				w.Write([]byte(body))
			}
		}
	}

	t.Run("date-only window covers the whole day", func(t *testing.T) {
		var query map[string][]string
		a, _ := newTestAdapter(t, &stubCreds{}, listHandler(&query, `{"items": [
			{"id": "e1", "summary": "Standup",
			 "start": {"dateTime": "2026-09-04T09:00:00Z"},
			 "end": {"dateTime": "2026-09-04T09:15:00Z"}},
			{"id": "e2", "summary": "Holiday",
			 "start": {"date": "2026-09-04"},
			 "end": {"date": "2026-09-05"}}
		]}`))

		result, err := a.Invoke(ctx, "list_calendar_events", map[string]interface{}{
			"from": "2026-09-04",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := query["timeMin"]; len(got) != 1 || !strings.HasPrefix(got[0], "2026-09-04T00:00:00") {
			t.Errorf("unexpected timeMin: %v", got)
		}
		if got := query["timeMax"]; len(got) != 1 || !strings.HasPrefix(got[0], "2026-09-05T00:00:00") {
			t.Errorf("unexpected timeMax: %v", got)
		}
		if !strings.Contains(result, "Standup") || !strings.Contains(result, "Holiday") {
			t.Errorf("unexpected result: %s", result)
		}
		if !strings.Contains(result, "all day") {
			t.Errorf("expected all-day marker in result: %s", result)
		}
	})

	t.Run("date-only end is inclusive", func(t *testing.T) {
		var query map[string][]string
		a, _ := newTestAdapter(t, &stubCreds{}, listHandler(&query, `{"items": []}`))

		result, err := a.Invoke(ctx, "list_calendar_events", map[string]interface{}{
			"from": "2026-09-04",
			"to":   "2026-09-06",
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := query["timeMax"]; len(got) != 1 || !strings.HasPrefix(got[0], "2026-09-07T00:00:00") {
			t.Errorf("unexpected timeMax: %v", got)
		}
		if !strings.Contains(result, "No events") {
			t.Errorf("unexpected result: %s", result)
		}
	})

	t.Run("inverted window is a validation error", func(t *testing.T) {
		a, _ := newTestAdapter(t, &stubCreds{}, nil)

		_, err := a.Invoke(ctx, "list_calendar_events", map[string]interface{}{
			"from": "2026-09-06T10:00:00",
			"to":   "2026-09-06T09:00:00",
		})
		var terr *gateway.ToolError
		if !errors.As(err, &terr) || terr.Kind != gateway.KindValidation {
			t.Fatalf("expected validation ToolError, got %v", err)
		}
	})

	t.Run("pending authorization fails before the provider call", func(t *testing.T) {
		called := false
		a, _ := newTestAdapter(t, &stubCreds{needsAuth: true}, func(w http.ResponseWriter, r *http.Request) {
			called = true
		})

		_, err := a.Invoke(ctx, "list_calendar_events", map[string]interface{}{
			"from": "2026-09-04",
		})
		var terr *gateway.ToolError
		if !errors.As(err, &terr) || terr.Kind != gateway.KindAuthorizationRequired {
			t.Fatalf("expected authorization-required ToolError, got %v", err)
		}
		if called {
			t.Error("provider must not be called without a credential")
		}
	})
}

func TestAuthorizationRequired(t *testing.T) {
	ctx := context.Background()

	t.Run("missing credential fails before the provider call", func(t *testing.T) {
		called := false
		a, _ := newTestAdapter(t, &stubCreds{needsAuth: true}, func(w http.ResponseWriter, r *http.Request) {
			called = true
			w.WriteHeader(http.StatusInternalServerError)
		})

		_, err := a.Invoke(ctx, "create_calendar_event", map[string]interface{}{
			"title": "Meeting",
			"start": "2026-09-04T15:00:00",
		})
		var terr *gateway.ToolError
		if !errors.As(err, &terr) || terr.Kind != gateway.KindAuthorizationRequired {
			t.Fatalf("expected authorization-required ToolError, got %v", err)
		}
		if called {
			t.Error("provider must not be called without a credential")
		}
	})

	t.Run("still healthy while authorization is pending", func(t *testing.T) {
		// The tool must stay in the catalog so the user can be told to
		// authorize; only Invoke fails.
		a, _ := newTestAdapter(t, &stubCreds{needsAuth: true}, nil)
		if !a.Healthy(ctx) {
			t.Error("expected healthy adapter while authorization is pending")
		}
	})

	t.Run("provider 401 classified as authorization required", func(t *testing.T) {
		a, _ := newTestAdapter(t, &stubCreds{}, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error": {"code": 401, "message": "Invalid Credentials"}}`))
		})

		_, err := a.Invoke(ctx, "create_calendar_event", map[string]interface{}{
			"title": "Meeting",
			"start": "2026-09-04T15:00:00",
		})
		var terr *gateway.ToolError
		if !errors.As(err, &terr) || terr.Kind != gateway.KindAuthorizationRequired {
			t.Fatalf("expected authorization-required ToolError, got %v", err)
		}
	})
}

package orchestrator

import (
	"strings"
	"testing"
	"time"
)

func TestBuildTimeContext(t *testing.T) {
	context := buildTimeContext("Asia/Ho_Chi_Minh")

	if !strings.Contains(context, "TIME CONTEXT") {
		t.Error("context should contain 'TIME CONTEXT'")
	}
	if !strings.Contains(context, "Today:") {
		t.Error("context should contain 'Today:'")
	}
	if !strings.Contains(context, "Tomorrow:") {
		t.Error("context should contain 'Tomorrow:'")
	}
	if !strings.Contains(context, "YYYY-MM-DD") {
		t.Error("context should contain 'YYYY-MM-DD'")
	}

	loc, _ := time.LoadLocation("Asia/Ho_Chi_Minh")
	todayStr := time.Now().In(loc).Format("2006-01-02")
	if !strings.Contains(context, todayStr) {
		t.Errorf("context should contain today's date %s", todayStr)
	}
}

func TestBuildTimeContext_WeekBoundaries(t *testing.T) {
	context := buildTimeContext("UTC")

	var weekLine string
	for _, line := range strings.Split(context, "\n") {
		if strings.Contains(line, "This week:") {
			weekLine = line
			break
		}
	}
	if weekLine == "" {
		t.Fatal("context should contain a week line")
	}

	// The line carries two dates; the first must be a Monday.
	fields := strings.Fields(weekLine)
	var dates []time.Time
	for _, f := range fields {
		if d, err := time.Parse("2006-01-02", f); err == nil {
			dates = append(dates, d)
		}
	}
	if len(dates) != 2 {
		t.Fatalf("expected 2 dates in week line, got %d (%s)", len(dates), weekLine)
	}
	if dates[0].Weekday() != time.Monday {
		t.Errorf("week should start on Monday, got %s", dates[0].Weekday())
	}
	if dates[1].Sub(dates[0]) != 6*24*time.Hour {
		t.Errorf("week should span 7 days, got %s to %s", dates[0], dates[1])
	}
}

func TestBuildTimeContext_InvalidTimezoneFallsBack(t *testing.T) {
	context := buildTimeContext("Mars/Olympus")
	todayUTC := time.Now().UTC().Format("2006-01-02")
	if !strings.Contains(context, todayUTC) {
		t.Errorf("expected UTC fallback with today's date %s", todayUTC)
	}
}

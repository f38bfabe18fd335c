package notion

import (
	"context"
	"errors"
	"fmt"
	"time"

	"personal-assistant/internal/gateway"
	notionapi "personal-assistant/pkg/notion"
	"personal-assistant/pkg/response"
)

// Config holds the target database IDs for the task, checklist and
// expense databases.
type Config struct {
	TaskDBID      string
	ChecklistDBID string
	ExpenseDBID   string
}

// Adapter serves the Notion-backed tools: task management, the daily
// checklist and expense tracking.
type Adapter struct {
	client *notionapi.Client
	cfg    Config
	loc    *time.Location
	now    func() time.Time
}

// New creates the Notion adapter. loc is the timezone used when a tool
// defaults a date to "today".
func New(client *notionapi.Client, cfg Config, loc *time.Location) *Adapter {
	if loc == nil {
		loc = time.UTC
	}
	return &Adapter{client: client, cfg: cfg, loc: loc, now: time.Now}
}

func (a *Adapter) Name() string { return "notion" }

// Reentrant reports that concurrent invocations are safe; the underlying
// client already rate-limits outbound calls.
func (a *Adapter) Reentrant() bool { return true }

// Healthy probes the integration token against the Notion API.
func (a *Adapter) Healthy(ctx context.Context) bool {
	return a.client.Ping(ctx) == nil
}

func (a *Adapter) Invoke(ctx context.Context, tool string, args map[string]interface{}) (string, error) {
	switch tool {
	case "create_task":
		return a.createTask(ctx, args)
	case "update_task_status":
		return a.updateTaskStatus(ctx, args)
	case "update_task_notes":
		return a.updateTaskNotes(ctx, args)
	case "delete_task":
		return a.deleteTask(ctx, args)
	case "create_travel_plan":
		return a.createTravelPlan(ctx, args)
	case "add_checklist_item":
		return a.addChecklistItem(ctx, args)
	case "add_expense":
		return a.addExpense(ctx, args)
	default:
		return "", gateway.NewToolError(gateway.KindValidation, fmt.Sprintf("notion adapter does not serve tool %q", tool), nil)
	}
}

func (a *Adapter) createTask(ctx context.Context, args map[string]interface{}) (string, error) {
	title, _ := args["title"].(string)
	props := map[string]interface{}{
		"Name": notionapi.TitleProperty(title),
	}
	if due, ok := args["due_date"].(string); ok && due != "" {
		props["Due Date"] = notionapi.DateProperty(due)
	}
	if priority, ok := args["priority"].(string); ok && priority != "" {
		props["Priority"] = notionapi.SelectProperty(priority)
	}
	if project, ok := args["project"].(string); ok && project != "" {
		props["Project"] = notionapi.SelectProperty(project)
	}
	if status, ok := args["status"].(string); ok && status != "" {
		props["Status"] = notionapi.StatusProperty(status)
	}

	req := notionapi.CreatePageRequest{DatabaseID: a.cfg.TaskDBID, Properties: props}
	if notes, ok := args["notes"].(string); ok && notes != "" {
		req.Children = []notionapi.Block{notionapi.ParagraphBlock(notes)}
	}

	page, err := a.client.CreatePage(ctx, req)
	if err != nil {
		return "", a.classify(err)
	}
	return fmt.Sprintf("Created task %q (page id %s). %s", title, page.ID, page.URL), nil
}

func (a *Adapter) updateTaskStatus(ctx context.Context, args map[string]interface{}) (string, error) {
	pageID, _ := args["page_id"].(string)
	status, _ := args["status"].(string)

	_, err := a.client.UpdatePage(ctx, pageID, notionapi.UpdatePageRequest{
		Properties: map[string]interface{}{"Status": notionapi.StatusProperty(status)},
	})
	if err != nil {
		return "", a.classify(err)
	}
	return fmt.Sprintf("Updated task %s status to %q.", pageID, status), nil
}

func (a *Adapter) updateTaskNotes(ctx context.Context, args map[string]interface{}) (string, error) {
	pageID, _ := args["page_id"].(string)
	notes, _ := args["notes"].(string)

	_, err := a.client.UpdatePage(ctx, pageID, notionapi.UpdatePageRequest{
		Properties: map[string]interface{}{"Notes": notionapi.RichTextProperty(notes)},
	})
	if err != nil {
		return "", a.classify(err)
	}
	return fmt.Sprintf("Updated notes on task %s.", pageID), nil
}

func (a *Adapter) deleteTask(ctx context.Context, args map[string]interface{}) (string, error) {
	pageID, _ := args["page_id"].(string)

	_, err := a.client.ArchivePage(ctx, pageID)
	if err != nil {
		return "", a.classify(err)
	}
	return fmt.Sprintf("Deleted task %s (archived in Notion).", pageID), nil
}

func (a *Adapter) createTravelPlan(ctx context.Context, args map[string]interface{}) (string, error) {
	destination, _ := args["destination"].(string)
	props := map[string]interface{}{
		"Name":    notionapi.TitleProperty("Trip to " + destination),
		"Project": notionapi.SelectProperty("Travel"),
	}
	start, _ := args["start_date"].(string)
	end, _ := args["end_date"].(string)
	switch {
	case start != "" && end != "":
		props["Due Date"] = notionapi.DateRangeProperty(start, end)
	case start != "":
		props["Due Date"] = notionapi.DateProperty(start)
	case end != "":
		props["Due Date"] = notionapi.DateProperty(end)
	}

	req := notionapi.CreatePageRequest{DatabaseID: a.cfg.TaskDBID, Properties: props}
	if notes, ok := args["notes"].(string); ok && notes != "" {
		req.Children = []notionapi.Block{notionapi.ParagraphBlock(notes)}
	}

	page, err := a.client.CreatePage(ctx, req)
	if err != nil {
		return "", a.classify(err)
	}
	return fmt.Sprintf("Created travel plan for %s (page id %s). %s", destination, page.ID, page.URL), nil
}

func (a *Adapter) addChecklistItem(ctx context.Context, args map[string]interface{}) (string, error) {
	name, _ := args["name"].(string)
	checked, _ := args["checked"].(bool)

	date, _ := args["date"].(string)
	if date == "" {
		date = a.now().In(a.loc).Format(response.DateFormat)
	}

	page, err := a.client.CreatePage(ctx, notionapi.CreatePageRequest{
		DatabaseID: a.cfg.ChecklistDBID,
		Properties: map[string]interface{}{
			"Name": notionapi.TitleProperty(name),
			"Date": notionapi.DateProperty(date),
			"Done": notionapi.CheckboxProperty(checked),
		},
	})
	if err != nil {
		return "", a.classify(err)
	}
	return fmt.Sprintf("Added checklist item %q for %s (page id %s).", name, date, page.ID), nil
}

func (a *Adapter) addExpense(ctx context.Context, args map[string]interface{}) (string, error) {
	item, _ := args["item"].(string)
	amount, _ := toFloat(args["amount"])

	date, _ := args["date"].(string)
	if date == "" {
		date = a.now().In(a.loc).Format(response.DateFormat)
	}

	props := map[string]interface{}{
		"Name":   notionapi.TitleProperty(item),
		"Amount": notionapi.NumberProperty(amount),
		"Date":   notionapi.DateProperty(date),
	}
	if category, ok := args["category"].(string); ok && category != "" {
		props["Category"] = notionapi.SelectProperty(category)
	}

	page, err := a.client.CreatePage(ctx, notionapi.CreatePageRequest{
		DatabaseID: a.cfg.ExpenseDBID,
		Properties: props,
	})
	if err != nil {
		return "", a.classify(err)
	}
	return fmt.Sprintf("Recorded expense %q of %.2f on %s (page id %s).", item, amount, date, page.ID), nil
}

// classify maps a Notion API error onto the tool error taxonomy.
// A retried write may still create a duplicate page; the adapter does
// not deduplicate.
func (a *Adapter) classify(err error) error {
	var apiErr *notionapi.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.IsAuthError():
			return gateway.NewToolError(gateway.KindAuthorizationRequired, "Notion rejected the integration token", err)
		case apiErr.IsValidation():
			return gateway.NewToolError(gateway.KindValidation, fmt.Sprintf("Notion rejected the request: %s", apiErr.Message), err)
		case apiErr.IsRateLimited():
			return gateway.NewToolError(gateway.KindProvider, "Notion rate limit reached, try again shortly", err)
		default:
			return gateway.NewToolError(gateway.KindProvider, fmt.Sprintf("Notion API error: %s", apiErr.Message), err)
		}
	}
	return gateway.NewToolError(gateway.KindProvider, err.Error(), err)
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

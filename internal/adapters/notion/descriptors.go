package notion

import "personal-assistant/internal/agent"

// Descriptors returns the tools this adapter publishes to the catalog.
func (a *Adapter) Descriptors() []agent.ToolDescriptor {
	return []agent.ToolDescriptor{
		{
			Name:        "create_task",
			Description: "Create a task in the task database. Dates must be absolute YYYY-MM-DD.",
			InputSchema: agent.ObjectSchema(map[string]agent.Property{
				"title":    {Type: "string", Description: "Task title"},
				"due_date": {Type: "string", Description: "Due date in YYYY-MM-DD"},
				"priority": {Type: "string", Description: "Task priority", Enum: []string{"Low", "Medium", "High"}},
				"project":  {Type: "string", Description: "Project the task belongs to"},
				"status":   {Type: "string", Description: "Initial status, e.g. Todo or In Progress"},
				"notes":    {Type: "string", Description: "Free-form notes attached to the task"},
			}, "title"),
			Endpoint: a.Name(),
		},
		{
			Name:        "update_task_status",
			Description: "Update the status of an existing task.",
			InputSchema: agent.ObjectSchema(map[string]agent.Property{
				"page_id": {Type: "string", Description: "Notion page id of the task"},
				"status":  {Type: "string", Description: "New status, e.g. Done"},
			}, "page_id", "status"),
			Endpoint: a.Name(),
		},
		{
			Name:        "update_task_notes",
			Description: "Replace the notes of an existing task.",
			InputSchema: agent.ObjectSchema(map[string]agent.Property{
				"page_id": {Type: "string", Description: "Notion page id of the task"},
				"notes":   {Type: "string", Description: "New notes content"},
			}, "page_id", "notes"),
			Endpoint: a.Name(),
		},
		{
			Name:        "delete_task",
			Description: "Delete (archive) an existing task.",
			InputSchema: agent.ObjectSchema(map[string]agent.Property{
				"page_id": {Type: "string", Description: "Notion page id of the task"},
			}, "page_id"),
			Endpoint: a.Name(),
		},
		{
			Name:        "create_travel_plan",
			Description: "Create a travel plan entry with a destination and optional dates.",
			InputSchema: agent.ObjectSchema(map[string]agent.Property{
				"destination": {Type: "string", Description: "Where the trip goes"},
				"start_date":  {Type: "string", Description: "Trip start in YYYY-MM-DD"},
				"end_date":    {Type: "string", Description: "Trip end in YYYY-MM-DD"},
				"notes":       {Type: "string", Description: "Itinerary notes"},
			}, "destination"),
			Endpoint: a.Name(),
		},
		{
			Name:        "add_checklist_item",
			Description: "Add an item to the daily checklist. Date defaults to today.",
			InputSchema: agent.ObjectSchema(map[string]agent.Property{
				"name":    {Type: "string", Description: "Checklist item name"},
				"date":    {Type: "string", Description: "Date in YYYY-MM-DD, defaults to today"},
				"checked": {Type: "boolean", Description: "Whether the item starts checked"},
			}, "name"),
			Endpoint: a.Name(),
		},
		{
			Name:        "add_expense",
			Description: "Record an expense. Date defaults to today.",
			InputSchema: agent.ObjectSchema(map[string]agent.Property{
				"item":     {Type: "string", Description: "What the money was spent on"},
				"amount":   {Type: "number", Description: "Amount spent"},
				"category": {Type: "string", Description: "Expense category, e.g. Food or Transport"},
				"date":     {Type: "string", Description: "Date in YYYY-MM-DD, defaults to today"},
			}, "item", "amount"),
			Endpoint: a.Name(),
		},
	}
}

package notion

import "fmt"

// CreatePageRequest creates a page in a database.
type CreatePageRequest struct {
	DatabaseID string                 `json:"-"`
	Properties map[string]interface{} `json:"properties"`
	Children   []Block                `json:"children,omitempty"`
}

// UpdatePageRequest patches properties of an existing page.
type UpdatePageRequest struct {
	Properties map[string]interface{} `json:"properties,omitempty"`
	Archived   *bool                  `json:"archived,omitempty"`
}

// Page is a simplified representation of a Notion page.
type Page struct {
	ID       string `json:"id"`
	URL      string `json:"url"`
	Archived bool   `json:"archived"`
}

// Block is a content block appended below a page (used for notes).
type Block struct {
	Object    string     `json:"object"`
	Type      string     `json:"type"`
	Paragraph *Paragraph `json:"paragraph,omitempty"`
}

// Paragraph holds rich text for a paragraph block.
type Paragraph struct {
	RichText []RichText `json:"rich_text"`
}

// RichText is a single rich text segment.
type RichText struct {
	Type string   `json:"type"`
	Text TextSpan `json:"text"`
}

// TextSpan is the plain content of a rich text segment.
type TextSpan struct {
	Content string `json:"content"`
}

// APIError is a non-2xx response from the Notion API.
type APIError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("notion: API error %d (%s): %s", e.StatusCode, e.Code, e.Message)
}

// IsRateLimited reports whether the provider rejected the call for rate limiting.
func (e *APIError) IsRateLimited() bool {
	return e.StatusCode == 429
}

// IsAuthError reports whether the integration token was rejected.
func (e *APIError) IsAuthError() bool {
	return e.StatusCode == 401 || e.StatusCode == 403
}

// IsValidation reports whether the request body or property mapping was invalid.
func (e *APIError) IsValidation() bool {
	return e.StatusCode == 400
}

// --- Property builders ---
// Property names must match the target database schema ("Name", "Due Date", ...).

// TitleProperty builds a title property value.
func TitleProperty(content string) map[string]interface{} {
	return map[string]interface{}{
		"title": []map[string]interface{}{
			{"text": map[string]interface{}{"content": content}},
		},
	}
}

// DateProperty builds a date property value from an ISO date string.
func DateProperty(isoDate string) map[string]interface{} {
	return map[string]interface{}{
		"date": map[string]interface{}{"start": isoDate},
	}
}

// DateRangeProperty builds a date property value spanning two ISO dates.
func DateRangeProperty(isoStart, isoEnd string) map[string]interface{} {
	return map[string]interface{}{
		"date": map[string]interface{}{"start": isoStart, "end": isoEnd},
	}
}

// SelectProperty builds a select property value.
func SelectProperty(name string) map[string]interface{} {
	return map[string]interface{}{
		"select": map[string]interface{}{"name": name},
	}
}

// StatusProperty builds a status property value.
func StatusProperty(name string) map[string]interface{} {
	return map[string]interface{}{
		"status": map[string]interface{}{"name": name},
	}
}

// NumberProperty builds a number property value.
func NumberProperty(value float64) map[string]interface{} {
	return map[string]interface{}{"number": value}
}

// CheckboxProperty builds a checkbox property value.
func CheckboxProperty(checked bool) map[string]interface{} {
	return map[string]interface{}{"checkbox": checked}
}

// RichTextProperty builds a rich text property value.
func RichTextProperty(content string) map[string]interface{} {
	return map[string]interface{}{
		"rich_text": []map[string]interface{}{
			{"type": "text", "text": map[string]interface{}{"content": content}},
		},
	}
}

// ParagraphBlock builds a paragraph content block.
func ParagraphBlock(content string) Block {
	return Block{
		Object: "block",
		Type:   "paragraph",
		Paragraph: &Paragraph{
			RichText: []RichText{
				{Type: "text", Text: TextSpan{Content: content}},
			},
		},
	}
}

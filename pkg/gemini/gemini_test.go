package gemini_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"personal-assistant/pkg/gemini"
)

func TestGenerateContent(t *testing.T) {
	t.Run("text response", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !strings.Contains(r.URL.Path, "generateContent") {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			var body map[string]interface{}
			json.NewDecoder(r.Body).Decode(&body)
			if _, ok := body["contents"]; !ok {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			json.NewEncoder(w).Encode(map[string]interface{}{
				"candidates": []map[string]interface{}{
					{"content": map[string]interface{}{
						"role":  "model",
						"parts": []map[string]interface{}{{"text": "Hello!"}},
					}},
				},
				"usageMetadata": map[string]int{
					"promptTokenCount":     12,
					"candidatesTokenCount": 3,
					"totalTokenCount":      15,
				},
			})
		}))
		defer ts.Close()

		client, err := gemini.New(gemini.Config{APIKey: "test-key", APIURL: ts.URL})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		resp, err := client.GenerateContent(context.Background(), &gemini.Request{
			Messages: []gemini.Content{
				{Role: "user", Parts: []gemini.Part{{Text: "hi"}}},
			},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(resp.Content.Parts) != 1 || resp.Content.Parts[0].Text != "Hello!" {
			t.Errorf("unexpected content: %+v", resp.Content)
		}
		if resp.Usage.TotalTokens != 15 {
			t.Errorf("expected 15 total tokens, got %d", resp.Usage.TotalTokens)
		}
	})

	t.Run("function call response", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]interface{}{
				"candidates": []map[string]interface{}{
					{"content": map[string]interface{}{
						"role": "model",
						"parts": []map[string]interface{}{
							{"functionCall": map[string]interface{}{
								"name": "create_task",
								"args": map[string]interface{}{"title": "Pay rent"},
							}},
						},
					}},
				},
			})
		}))
		defer ts.Close()

		client, _ := gemini.New(gemini.Config{APIKey: "test-key", APIURL: ts.URL})

		resp, err := client.GenerateContent(context.Background(), &gemini.Request{
			Messages: []gemini.Content{{Role: "user", Parts: []gemini.Part{{Text: "add a task"}}}},
			Tools:    []gemini.Tool{{Name: "create_task", Description: "Create a task"}},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		fc := resp.Content.Parts[0].FunctionCall
		if fc == nil || fc.Name != "create_task" {
			t.Fatalf("expected function call, got %+v", resp.Content.Parts[0])
		}
		if fc.Args["title"] != "Pay rent" {
			t.Errorf("unexpected args: %v", fc.Args)
		}
	})

	t.Run("API error", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"error": {"message": "quota exceeded"}}`))
		}))
		defer ts.Close()

		client, _ := gemini.New(gemini.Config{APIKey: "test-key", APIURL: ts.URL})

		_, err := client.GenerateContent(context.Background(), &gemini.Request{})
		if err == nil {
			t.Fatal("expected error for 429 status")
		}
		if !strings.Contains(err.Error(), "429") {
			t.Errorf("expected status code in error, got: %v", err)
		}
	})

	t.Run("missing API key", func(t *testing.T) {
		if _, err := gemini.New(gemini.Config{}); err == nil {
			t.Error("expected error for missing API key")
		}
	})
}

package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestGenerate_RequestShape(t *testing.T) {
	var gotPath, gotKey, gotContentType string
	var gotBody generateRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("key")
		gotContentType = r.Header.Get("Content-Type")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("Failed to decode upstream body: %v", err)
		}
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"ok"}]}}]}`))
	}))
	defer server.Close()

	client := NewClient("test-key", server.URL, 5*time.Second)
	contents := []Content{
		{Role: "user", Parts: []Part{{Text: "hello"}}},
		{Role: "model", Parts: []Part{{Text: "hi"}}},
	}

	text, err := client.Generate(context.Background(), contents)
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if text != "ok" {
		t.Errorf("Expected text 'ok', got %q", text)
	}

	wantPath := "/v1beta/models/gemini-2.0-flash:generateContent"
	if gotPath != wantPath {
		t.Errorf("Expected path %q, got %q", wantPath, gotPath)
	}
	if gotKey != "test-key" {
		t.Errorf("Expected key 'test-key' as query parameter, got %q", gotKey)
	}
	if gotContentType != "application/json" {
		t.Errorf("Expected Content-Type 'application/json', got %q", gotContentType)
	}
	if len(gotBody.Contents) != 2 {
		t.Fatalf("Expected 2 contents, got %d", len(gotBody.Contents))
	}
	if gotBody.Contents[0].Role != "user" || gotBody.Contents[1].Role != "model" {
		t.Errorf("Roles not preserved: got %q, %q", gotBody.Contents[0].Role, gotBody.Contents[1].Role)
	}
}

func TestGenerate_JoinsFirstCandidateParts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[
			{"content":{"parts":[{"text":"Hello"},{"text":" world"}]}},
			{"content":{"parts":[{"text":"ignored second candidate"}]}}
		]}`))
	}))
	defer server.Close()

	client := NewClient("k", server.URL, 5*time.Second)
	text, err := client.Generate(context.Background(), []Content{{Role: "user", Parts: []Part{{Text: "hi"}}}})
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if text != "Hello world" {
		t.Errorf("Expected 'Hello world', got %q", text)
	}
}

func TestGenerate_NoCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := NewClient("k", server.URL, 5*time.Second)
	text, err := client.Generate(context.Background(), []Content{{Role: "user", Parts: []Part{{Text: "hi"}}}})
	if err != nil {
		t.Fatalf("Expected no error for empty candidates, got %v", err)
	}
	if text != "" {
		t.Errorf("Expected empty text, got %q", text)
	}
}

func TestGenerate_UpstreamError(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantMsg    string
		wantStatus int
	}{
		{"error envelope", http.StatusServiceUnavailable, `{"error":{"status":"UNAVAILABLE","message":"overloaded"}}`, "overloaded", 503},
		{"no envelope falls back to status text", http.StatusBadGateway, `gateway exploded`, "Bad Gateway", 502},
		{"quota error", http.StatusTooManyRequests, `{"error":{"message":"quota exceeded"}}`, "quota exceeded", 429},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				w.Write([]byte(tc.body))
			}))
			defer server.Close()

			client := NewClient("k", server.URL, 5*time.Second)
			_, err := client.Generate(context.Background(), []Content{{Role: "user", Parts: []Part{{Text: "hi"}}}})

			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("Expected *APIError, got %v", err)
			}
			if apiErr.StatusCode != tc.wantStatus {
				t.Errorf("Expected status %d, got %d", tc.wantStatus, apiErr.StatusCode)
			}
			if apiErr.Message != tc.wantMsg {
				t.Errorf("Expected message %q, got %q", tc.wantMsg, apiErr.Message)
			}
		})
	}
}

func TestGenerate_TransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused from here on

	client := NewClient("k", server.URL, time.Second)
	_, err := client.Generate(context.Background(), []Content{{Role: "user", Parts: []Part{{Text: "hi"}}}})
	if err == nil {
		t.Fatal("Expected transport error, got nil")
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		t.Errorf("Transport failure should not be an *APIError, got %v", err)
	}
}

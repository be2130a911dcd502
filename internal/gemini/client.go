package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

const (
	// Model and APIVersion identify which upstream serves every answer.
	// Both are echoed back in chat responses so clients can tell.
	Model      = "gemini-2.0-flash"
	APIVersion = "v1beta"

	DefaultBaseURL = "https://generativelanguage.googleapis.com"
)

// Part is one text fragment of a turn.
type Part struct {
	Text string `json:"text"`
}

// Content is one role-tagged turn in the upstream vocabulary.
// Role is "user" or "model"; there is no system role at this API version.
type Content struct {
	Role  string `json:"role"`
	Parts []Part `json:"parts"`
}

type generateRequest struct {
	Contents []Content `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []Part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	} `json:"error"`
}

// APIError is a non-2xx reply from the generateContent endpoint. The
// upstream status code and message are kept intact so callers can
// forward them verbatim.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("gemini: upstream status %d: %s", e.StatusCode, e.Message)
}

// Client calls the Gemini generateContent REST endpoint.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(apiKey, baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Generate performs exactly one synchronous generateContent call and
// returns the concatenated text of the first candidate. No retry. An
// empty answer is not an error; callers decide what to show instead.
func (c *Client) Generate(ctx context.Context, contents []Content) (string, error) {
	body, err := json.Marshal(generateRequest{Contents: contents})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	url := fmt.Sprintf("%s/%s/models/%s:generateContent?key=%s", c.baseURL, APIVersion, Model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("call upstream: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var failed generateResponse
		json.Unmarshal(raw, &failed) // best effort; the status code alone is enough
		msg := ""
		if failed.Error != nil {
			msg = failed.Error.Message
		}
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		if msg == "" {
			msg = "upstream request failed"
		}
		log.Printf("gemini: generateContent failed: status=%d message=%q", resp.StatusCode, msg)
		return "", &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	var gr generateResponse
	if err := json.Unmarshal(raw, &gr); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	return extractText(&gr), nil
}

// extractText joins the text parts of the first candidate in order.
func extractText(gr *generateResponse) string {
	if len(gr.Candidates) == 0 {
		return ""
	}
	var text strings.Builder
	for _, part := range gr.Candidates[0].Content.Parts {
		text.WriteString(part.Text)
	}
	return text.String()
}

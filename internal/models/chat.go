package models

// Message represents a single message in a conversation.
type Message struct {
	Role    string `json:"role"` // "user" or "assistant"; "system" extends the prompt
	Content string `json:"content"`
}

// ChatRequest is the payload sent to the chat endpoint.
type ChatRequest struct {
	Messages []Message `json:"messages"`
}

// ChatResponse is the reply from a successful upstream call.
type ChatResponse struct {
	Text    string `json:"text"`
	Model   string `json:"model"`
	Version string `json:"version"`
}

// ErrorResponse is the normalized failure body for every error class.
type ErrorResponse struct {
	Error   string `json:"error"`
	Status  int    `json:"status,omitempty"`
	Model   string `json:"model,omitempty"`
	Version string `json:"version,omitempty"`
}

package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"minichat-backend/internal/gemini"
	"minichat-backend/internal/models"
)

// defaultSystemPrompt establishes the assistant persona for every
// request. Client-supplied system messages extend it, never replace it.
const defaultSystemPrompt = "You are a helpful, friendly assistant for a small web chat. " +
	"Answer clearly and concisely in plain language. " +
	"If you do not know something, say so instead of guessing."

// noResponsePlaceholder is shown when the upstream answer has no text.
const noResponsePlaceholder = "(no response)"

type ChatHandler struct {
	client *gemini.Client
	apiKey string
}

func NewChatHandler(client *gemini.Client, apiKey string) *ChatHandler {
	return &ChatHandler{
		client: client,
		apiKey: apiKey,
	}
}

// Chat proxies one conversation to the generateContent endpoint and
// returns the whole answer. Stateless: each request carries its full
// history and nothing is remembered between calls.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if len(req.Messages) == 0 {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "messages must be a non-empty array"})
		return
	}

	if h.apiKey == "" {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "GEMINI_API_KEY is not configured"})
		return
	}

	text, err := h.client.Generate(r.Context(), buildContents(req.Messages))
	if err != nil {
		var apiErr *gemini.APIError
		if errors.As(err, &apiErr) {
			writeJSON(w, apiErr.StatusCode, models.ErrorResponse{
				Error:   apiErr.Message,
				Status:  apiErr.StatusCode,
				Model:   gemini.Model,
				Version: gemini.APIVersion,
			})
			return
		}
		log.Printf("chat: generate failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{
			Error:   err.Error(),
			Model:   gemini.Model,
			Version: gemini.APIVersion,
		})
		return
	}

	if text == "" {
		text = noResponsePlaceholder
	}

	writeJSON(w, http.StatusOK, models.ChatResponse{
		Text:    text,
		Model:   gemini.Model,
		Version: gemini.APIVersion,
	})
}

// buildContents translates UI-vocabulary messages into the upstream
// turn sequence. This API version has no separate instruction channel,
// so the merged system text travels as a synthetic first user turn.
func buildContents(messages []models.Message) []gemini.Content {
	var clientSystem []string
	for _, m := range messages {
		if m.Role == "system" {
			if text := strings.TrimSpace(m.Content); text != "" {
				clientSystem = append(clientSystem, text)
			}
		}
	}

	systemText := defaultSystemPrompt
	if extra := strings.Join(clientSystem, "\n\n"); extra != "" {
		systemText += "\n\n" + extra
	}

	contents := make([]gemini.Content, 0, len(messages)+1)
	contents = append(contents, gemini.Content{Role: "user", Parts: []gemini.Part{{Text: systemText}}})

	for _, m := range messages {
		if m.Role == "system" {
			continue
		}
		role := "user"
		if m.Role == "assistant" || m.Role == "model" {
			role = "model"
		}
		contents = append(contents, gemini.Content{Role: role, Parts: []gemini.Part{{Text: m.Content}}})
	}

	return contents
}

// MethodNotAllowed covers the POST-only API routes.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Allow", http.MethodPost)
	writeJSON(w, http.StatusMethodNotAllowed, models.ErrorResponse{Error: "method not allowed"})
}

// Shared helpers

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

package dto

type ChatMessage struct {
	Role      string `json:"role" validate:"required,oneof=user assistant"`
	Content   string `json:"content" validate:"required"`
	Timestamp string `json:"timestamp,omitempty"`
}

type ChatRequest struct {
	Message   string        `json:"message" validate:"required"`
	History   []ChatMessage `json:"history"`
	SessionId string        `json:"session_id,omitempty"`
}

type ChatResponse struct {
	Message        string   `json:"message"`
	ContextUpdated bool     `json:"context_updated"`
	Suggestions    []string `json:"suggestions"`
	SessionId      string   `json:"session_id"`
}

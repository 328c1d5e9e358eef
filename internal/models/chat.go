package models

import "strings"

// ChatRequest is the body of a chat request.
type ChatRequest struct {
	Message string `json:"message" validate:"required"`
}

// Normalize trims surrounding whitespace from the message.
func (r *ChatRequest) Normalize() {
	r.Message = strings.TrimSpace(r.Message)
}

// SourcePreview describes one passage that grounded an answer.
type SourcePreview struct {
	ID      string  `json:"id,omitempty"`
	Source  string  `json:"source"`
	Score   float64 `json:"score"`
	Preview string  `json:"preview"`
}

// ChatResponse is the answer returned to the caller.
// Fallback is set when the answer is the canned response rather than a model completion.
type ChatResponse struct {
	Answer    string          `json:"answer"`
	Sources   []SourcePreview `json:"sources"`
	Fallback  bool            `json:"fallback,omitempty"`
	RequestID string          `json:"request_id,omitempty"`
}

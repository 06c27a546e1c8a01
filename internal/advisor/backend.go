package advisor

import (
	"context"
)

// Conversation roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of an advisory conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is a fully assembled generation request: the system prompt
// plus the conversation, re-built from scratch for every backend attempt.
type ChatRequest struct {
	System      string
	Messages    []Message
	MaxTokens   int
	Temperature float64
}

// StreamFunc receives text chunks in the exact order the backend produces
// them. Returning an error aborts the stream; backends must propagate that
// error to their caller unchanged or wrapped with %w.
type StreamFunc func(chunk string) error

// Backend is one model variant in the fallback chain. Stream blocks until
// the generation finishes, the context is done, or fn aborts; a non-nil
// return means the attempt failed and the next backend should be tried.
type Backend interface {
	Name() string
	Stream(ctx context.Context, req ChatRequest, fn StreamFunc) error
}

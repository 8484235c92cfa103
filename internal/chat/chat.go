// Package chat defines the chat model collaborator and its streaming
// contract.
package chat

import (
	"context"

	"github.com/lumenio-ai/lumen/internal/domain"
)

// Source identifies where a retrieved context passage came from.
type Source struct {
	Domain       string  `json:"domain"`
	DocumentID   string  `json:"document_id"`
	DocumentName string  `json:"document_name"`
	ChunkID      string  `json:"chunk_id"`
	Score        float64 `json:"score"`
}

// StreamEvent is one element of a streamed generation: either a text
// fragment, or the terminal marker. Exactly one terminal event is sent and
// it closes the stream; Err is set on it when generation failed upstream.
type StreamEvent struct {
	Fragment string
	Done     bool
	Sources  []Source
	Err      error
}

// Request carries one generation call.
type Request struct {
	// Model optionally overrides the client's configured model.
	Model        string
	SystemPrompt string
	Query        string
	// Conversation is optional prior history included in the prompt.
	Conversation *domain.Conversation
}

// Model generates answers, buffered or streamed. Stream events arrive in
// production order; consumers read until a Done event.
type Model interface {
	Chat(ctx context.Context, req Request) (string, error)
	ChatStream(ctx context.Context, req Request) (<-chan StreamEvent, error)
}

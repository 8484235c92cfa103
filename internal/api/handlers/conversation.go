package handlers

import (
	"context"
	"net/http"

	"github.com/lumenio-ai/lumen/internal/api"
	"github.com/lumenio-ai/lumen/internal/domain"
)

// ConversationService exposes the shared conversation state.
type ConversationService interface {
	History(ctx context.Context) []domain.Message
	ClearConversation(ctx context.Context)
}

type ConversationHandler struct {
	svc ConversationService
}

func NewConversationHandler(svc ConversationService) *ConversationHandler {
	return &ConversationHandler{svc: svc}
}

type MessageResponse struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func (h *ConversationHandler) Get(w http.ResponseWriter, r *http.Request) {
	history := h.svc.History(r.Context())

	messages := make([]MessageResponse, len(history))
	for i, m := range history {
		messages[i] = MessageResponse{Role: m.Role, Content: m.Content}
	}

	api.Success(w, http.StatusOK, messages)
}

func (h *ConversationHandler) Clear(w http.ResponseWriter, r *http.Request) {
	h.svc.ClearConversation(r.Context())
	api.Success(w, http.StatusOK, map[string]string{"status": "cleared"})
}

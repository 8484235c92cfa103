package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/lumenio-ai/lumen/internal/api"
	"github.com/lumenio-ai/lumen/internal/chat"
)

// AskService answers questions, buffered or streamed. The service owns
// conversation bookkeeping; the handler only shapes the transport.
type AskService interface {
	Ask(ctx context.Context, question string, domains []string) (string, []chat.Source, error)
	AskStream(ctx context.Context, question string, domains []string) (<-chan chat.StreamEvent, error)
}

type AskHandler struct {
	svc AskService
}

func NewAskHandler(svc AskService) *AskHandler {
	return &AskHandler{svc: svc}
}

type AskRequest struct {
	Question string   `json:"question"`
	Domains  []string `json:"domains,omitempty"`
	Stream   bool     `json:"stream,omitempty"`
}

type AskResponse struct {
	Answer  string        `json:"answer"`
	Sources []chat.Source `json:"sources"`
}

type streamFragment struct {
	Fragment string        `json:"fragment,omitempty"`
	Done     bool          `json:"done,omitempty"`
	Sources  []chat.Source `json:"sources,omitempty"`
	Error    string        `json:"error,omitempty"`
}

func (h *AskHandler) Ask(w http.ResponseWriter, r *http.Request) {
	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Question == "" {
		api.Error(w, http.StatusBadRequest, "question is required")
		return
	}

	if req.Stream {
		h.askStream(w, r, req)
		return
	}

	answer, sources, err := h.svc.Ask(r.Context(), req.Question, req.Domains)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	if sources == nil {
		sources = []chat.Source{}
	}
	api.Success(w, http.StatusOK, AskResponse{Answer: answer, Sources: sources})
}

// askStream delivers the answer as server-sent events: one data frame per
// fragment, then a terminal frame carrying the sources. Fragments are
// flushed in production order.
func (h *AskHandler) askStream(w http.ResponseWriter, r *http.Request, req AskRequest) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		api.Error(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	events, err := h.svc.AskStream(r.Context(), req.Question, req.Domains)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	for ev := range events {
		frame := streamFragment{
			Fragment: ev.Fragment,
			Done:     ev.Done,
			Sources:  ev.Sources,
		}
		if ev.Err != nil {
			frame.Error = ev.Err.Error()
		}

		payload, err := json.Marshal(frame)
		if err != nil {
			return
		}
		fmt.Fprintf(w, "data: %s\n\n", payload)
		flusher.Flush()

		if ev.Done {
			return
		}
	}
}

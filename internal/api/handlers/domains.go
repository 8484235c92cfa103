package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lumenio-ai/lumen/internal/api"
	"github.com/lumenio-ai/lumen/internal/domain"
)

// DomainService exposes the catalog passthrough operations.
type DomainService interface {
	ListDomains(ctx context.Context) []*domain.Domain
	GetDomain(ctx context.Context, name string) (*domain.Domain, error)
	AddDomain(ctx context.Context, name, description string) error
	DeleteDomain(ctx context.Context, name string) error
}

type DomainHandler struct {
	svc DomainService
}

func NewDomainHandler(svc DomainService) *DomainHandler {
	return &DomainHandler{svc: svc}
}

type CreateDomainRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type DomainResponse struct {
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	DocumentCount int      `json:"document_count"`
	Documents     []string `json:"documents,omitempty"`
}

func domainToResponse(d *domain.Domain, withDocuments bool) *DomainResponse {
	resp := &DomainResponse{
		Name:          d.Name,
		Description:   d.Description,
		DocumentCount: len(d.Documents),
	}
	if withDocuments {
		resp.Documents = make([]string, len(d.Documents))
		for i, doc := range d.Documents {
			resp.Documents[i] = doc.Name
		}
	}
	return resp
}

func (h *DomainHandler) List(w http.ResponseWriter, r *http.Request) {
	domains := h.svc.ListDomains(r.Context())

	responses := make([]*DomainResponse, len(domains))
	for i, d := range domains {
		responses[i] = domainToResponse(d, false)
	}

	api.Success(w, http.StatusOK, responses)
}

func (h *DomainHandler) Get(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if name == "" {
		api.Error(w, http.StatusBadRequest, "name is required")
		return
	}

	d, err := h.svc.GetDomain(r.Context(), name)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, domainToResponse(d, true))
}

func (h *DomainHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateDomainRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Name == "" {
		api.Error(w, http.StatusBadRequest, "name is required")
		return
	}

	if err := h.svc.AddDomain(r.Context(), req.Name, req.Description); err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusCreated, map[string]string{"name": req.Name})
}

func (h *DomainHandler) Delete(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if name == "" {
		api.Error(w, http.StatusBadRequest, "name is required")
		return
	}

	if err := h.svc.DeleteDomain(r.Context(), name); err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, map[string]string{"name": name})
}

package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/lumenio-ai/lumen/internal/api"
	"github.com/lumenio-ai/lumen/internal/config"
)

// AdminService covers re-indexing and full reconfiguration.
type AdminService interface {
	Reindex(ctx context.Context) error
	Settings(ctx context.Context) config.Config
	Setup(ctx context.Context, cfg *config.Config) error
}

type AdminHandler struct {
	svc AdminService
}

func NewAdminHandler(svc AdminService) *AdminHandler {
	return &AdminHandler{svc: svc}
}

// Reindex re-runs the full catalog build and indexing pass synchronously.
func (h *AdminHandler) Reindex(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Reindex(r.Context()); err != nil {
		api.HandleError(w, err)
		return
	}
	api.Success(w, http.StatusOK, map[string]string{"status": "reindexed"})
}

// Setup rebuilds the whole manager/engine pair from the posted settings
// and atomically swaps it in. The settings object uses the same shape as
// the environment configuration; omitted fields fall back to the currently
// active values.
func (h *AdminHandler) Setup(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.decodeSettings(r)
	if err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.svc.Setup(r.Context(), cfg); err != nil {
		api.HandleError(w, err)
		return
	}
	api.Success(w, http.StatusOK, map[string]string{"status": "reconfigured"})
}

// decodeSettings overlays the posted fields on a copy of the active
// configuration, so a partial settings object keeps the rest intact.
func (h *AdminHandler) decodeSettings(r *http.Request) (*config.Config, error) {
	cfg := h.svc.Settings(r.Context())
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

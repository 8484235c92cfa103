package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lumenio-ai/lumen/internal/api"
	"github.com/lumenio-ai/lumen/internal/api/handlers"
	"github.com/lumenio-ai/lumen/internal/api/middleware"
)

type RouterConfig struct {
	AskHandler          *handlers.AskHandler
	DomainHandler       *handlers.DomainHandler
	AdminHandler        *handlers.AdminHandler
	ConversationHandler *handlers.ConversationHandler
}

// NewRouterFromService wires the default handler set over one service.
func NewRouterFromService(svc *Service) http.Handler {
	return NewRouter(RouterConfig{
		AskHandler:          handlers.NewAskHandler(svc),
		DomainHandler:       handlers.NewDomainHandler(svc),
		AdminHandler:        handlers.NewAdminHandler(svc),
		ConversationHandler: handlers.NewConversationHandler(svc),
	})
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	const maxBodyBytes int64 = 5 * 1024 * 1024

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog)
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.Success(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/ask", cfg.AskHandler.Ask)

	r.Route("/domains", func(r chi.Router) {
		r.Get("/", cfg.DomainHandler.List)
		r.Post("/", cfg.DomainHandler.Create)
		r.Get("/{name}", cfg.DomainHandler.Get)
		r.Delete("/{name}", cfg.DomainHandler.Delete)
	})

	r.Post("/reindex", cfg.AdminHandler.Reindex)
	r.Post("/setup", cfg.AdminHandler.Setup)

	r.Get("/conversation", cfg.ConversationHandler.Get)
	r.Post("/conversation/clear", cfg.ConversationHandler.Clear)

	return r
}

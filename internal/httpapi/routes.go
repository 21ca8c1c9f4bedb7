package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/kirinami/bancho-backend/internal/registry"
	"github.com/kirinami/bancho-backend/internal/ws"
)

func SetupRoutes(reg *registry.Registry, outboxSize int, log *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Post("/matches", CreateMatch(reg))
	r.Get("/matches", ListMatches(reg))
	r.Get("/healthz", Healthz)
	r.Get("/ws", ws.Handler(reg, outboxSize, log))
	return r
}

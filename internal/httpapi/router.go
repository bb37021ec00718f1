package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func NewRouter(handler *Handler, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(recoverMiddleware(logger))
	r.Use(loggingMiddleware(logger))

	r.Get("/healthz", handler.healthz)
	r.Get("/readyz", handler.readyz)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/platforms", handler.listPlatforms)
		r.Get("/fees/{platform}", handler.getFees)
		r.Post("/calculate", handler.calculate)
		r.Post("/compare", handler.compare)
		r.Post("/breakdown", handler.breakdown)
		r.Post("/advice", handler.advice)
		r.Post("/report", handler.report)
	})
	return r
}

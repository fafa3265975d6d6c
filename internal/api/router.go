package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/cristyanmorais/desafio-gac/internal/api/handlers"
	"github.com/cristyanmorais/desafio-gac/internal/config"
	"github.com/cristyanmorais/desafio-gac/internal/directory"
	"github.com/cristyanmorais/desafio-gac/internal/ledger"
	"github.com/cristyanmorais/desafio-gac/internal/metrics"
	"github.com/cristyanmorais/desafio-gac/internal/middleware"
	"github.com/cristyanmorais/desafio-gac/internal/reversal"
)

func NewRouter(cfg config.Config, dir directory.Directory, engine *ledger.Engine, workflow *reversal.Workflow) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Recover, middleware.HTTPMetrics, middleware.RateLimit(cfg.RateRPS))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("ok")) })
	r.Handle("/metrics", metrics.Handler())

	accounts := handlers.Accounts{Dir: dir}
	transfers := handlers.Transfers{Engine: engine}
	reversals := handlers.Reversals{Workflow: workflow}

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/accounts", accounts.Create)
		r.Get("/accounts", accounts.List)
		r.Get("/accounts/{id}", accounts.Get)

		r.Post("/transfers", transfers.Create)
		r.Get("/transfers", transfers.List)
		r.Get("/transfers/{id}", transfers.Get)

		r.Post("/reversals", reversals.Request)
		r.Get("/reversals/{id}", reversals.Get)
		r.Patch("/reversals/{id}/approve", reversals.Approve)
		r.Patch("/reversals/{id}/reject", reversals.Reject)
	})

	return r
}

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/baharkarakas/sagepaypi/internal/api/handlers"
	"github.com/baharkarakas/sagepaypi/internal/auth"
	"github.com/baharkarakas/sagepaypi/internal/config"
	"github.com/baharkarakas/sagepaypi/internal/metrics"
	"github.com/baharkarakas/sagepaypi/internal/middleware"
	"github.com/baharkarakas/sagepaypi/internal/services"
)

type RouterDeps struct {
	Cfg      config.Config
	TM       *auth.TokenManager
	Operator *services.OperatorService
	Cards    *services.CardService
	Txns     *services.TransactionService
}

func NewRouter(d RouterDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Recover, middleware.HTTPMetrics, middleware.RateLimit(d.Cfg.RateRPS))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type", "X-Request-Id"},
	}))

	// health & metrics
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte("ok")) })
	r.Handle("/metrics", metrics.Handler())

	cb := handlers.NewCallbackHandler(d.Txns, d.Cfg.Gateway.PostSecureRedirectURL)
	r.Post("/transactions/{tidb64}/{token}/3d-secure/complete/", cb.Complete3DSecure)

	authH := handlers.NewAuthHandler(d.Operator)
	cardH := handlers.NewCardHandler(d.Cards)
	txH := handlers.NewTransactionHandler(d.Txns)
	am := middleware.NewAuthMiddleware(d.TM)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/transactions/status/{tidb64}/{token}", cb.Status)

		// ---------- auth ----------
		r.Post("/auth/login", authH.Login)
		r.Post("/auth/refresh", authH.Refresh)

		// ---------- operator ----------
		r.Group(func(r chi.Router) {
			r.Use(am.Auth, middleware.RequireRole("operator"))

			r.Post("/cards", cardH.Create)
			r.Get("/cards/{id}", cardH.Get)

			r.Post("/transactions", txH.Create)
			r.Get("/transactions", txH.List)
			r.Get("/transactions/{id}", txH.Get)
			r.Get("/transactions/{id}/responses", txH.Responses)
			r.Post("/transactions/{id}/submit", txH.Submit)
			r.Post("/transactions/{id}/outcome", txH.Outcome)
			r.Post("/transactions/{id}/release", txH.Release)
			r.Post("/transactions/{id}/abort", txH.Abort)
			r.Post("/transactions/{id}/void", txH.Void)
			r.Post("/transactions/{id}/repeat", txH.Repeat)
			r.Post("/transactions/{id}/refund", txH.Refund)
		})
	})

	return r
}

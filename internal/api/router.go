package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"arthastra/internal/agent"
	"arthastra/internal/api/handler"
	mw "arthastra/internal/api/middleware"
	"arthastra/internal/config"
	"arthastra/internal/domain/alert"
	"arthastra/internal/domain/profile"
)

// Dependencies carries everything the router wires up. Activity is optional;
// without it last-seen tracking is skipped.
type Dependencies struct {
	Profiles profile.Service
	Agents   agent.Service
	Alerts   alert.Service
	Activity mw.ActivityRecorder
}

func SetupRouter(deps Dependencies, cfg *config.Config, logger *slog.Logger) *chi.Mux {
	router := chi.NewRouter()

	setupMiddleware(router, cfg, logger)
	setupMetricsEndpoint(router, cfg, logger)
	setupAuthRoutes(router, cfg, logger)
	setupProfileRoutes(router, deps, cfg, logger)
	setupChatRoutes(router, deps, cfg, logger)
	setupAlertRoutes(router, deps, cfg, logger)

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	return router
}

func setupMiddleware(router *chi.Mux, cfg *config.Config, logger *slog.Logger) {
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(mw.StructuredLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(middleware.Timeout(60 * time.Second))
	router.Use(mw.NewRateLimiterMiddleware(cfg.Server.RateLimit, logger).Middleware)
	router.Use(mw.MetricsMiddleware())
}

func setupMetricsEndpoint(router *chi.Mux, cfg *config.Config, logger *slog.Logger) {
	metricsPath := cfg.Metrics.Path
	if metricsPath == "" {
		metricsPath = "/metrics"
	}
	logger.Info("Setting up Prometheus metrics endpoint", "path", metricsPath)
	router.Handle(metricsPath, promhttp.Handler())
}

func setupAuthRoutes(router *chi.Mux, cfg *config.Config, logger *slog.Logger) {
	authHandler := handler.NewAuthHandler(cfg.Server.Auth, logger)
	router.Route("/auth", func(r chi.Router) {
		r.Post("/token", authHandler.GenerateBearerToken)
	})
}

func setupProfileRoutes(router *chi.Mux, deps Dependencies, cfg *config.Config, logger *slog.Logger) {
	profileHandler := handler.NewProfileHandler(deps.Profiles, logger)
	insightHandler := handler.NewInsightHandler(deps.Profiles, logger)

	router.Route("/profiles", func(r chi.Router) {
		r.Use(mw.AuthMiddleware(cfg.Server.Auth, logger))
		r.Post("/", profileHandler.CreateProfile)
		r.Route("/{userID}", func(r chi.Router) {
			r.Use(mw.TrackActivity(deps.Activity, logger))
			r.Get("/", profileHandler.GetProfile)
			r.Put("/", profileHandler.UpdateProfile)
			r.Delete("/", profileHandler.DeleteProfile)
			r.Post("/scores", profileHandler.RecordScore)
			r.Get("/scores", profileHandler.GetScoreHistory)
			r.Get("/eligibility", insightHandler.GetEligibility)
			r.Get("/offers", insightHandler.GetOffers)
			r.Post("/simulate", insightHandler.Simulate)
		})
	})

	router.Route("/calculators", func(r chi.Router) {
		r.Post("/emi", insightHandler.CalculateEMI)
	})
}

func setupChatRoutes(router *chi.Mux, deps Dependencies, cfg *config.Config, logger *slog.Logger) {
	chatHandler := handler.NewChatHandler(deps.Agents, deps.Profiles, logger)

	router.Route("/chat", func(r chi.Router) {
		r.Use(mw.AuthMiddleware(cfg.Server.Auth, logger))
		r.Post("/", chatHandler.Chat)
	})
}

func setupAlertRoutes(router *chi.Mux, deps Dependencies, cfg *config.Config, logger *slog.Logger) {
	alertHandler := handler.NewAlertHandler(deps.Alerts, logger)

	router.Route("/alerts", func(r chi.Router) {
		r.Use(mw.AuthMiddleware(cfg.Server.Auth, logger))
		r.Post("/", alertHandler.CreateAlert)
		r.Put("/{alertID}/read", alertHandler.MarkRead)
	})

	router.Route("/users/{userID}/alerts", func(r chi.Router) {
		r.Use(mw.AuthMiddleware(cfg.Server.Auth, logger))
		r.Use(mw.TrackActivity(deps.Activity, logger))
		r.Get("/", alertHandler.ListAlerts)
	})
}

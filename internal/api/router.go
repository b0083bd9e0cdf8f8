package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/nohumanman/descenders-modding/internal/api/apierr"
	"github.com/nohumanman/descenders-modding/internal/api/handler"
	apimw "github.com/nohumanman/descenders-modding/internal/api/middleware"
	"github.com/nohumanman/descenders-modding/internal/api/response"
	"github.com/nohumanman/descenders-modding/internal/dependencies/clock"
	"github.com/nohumanman/descenders-modding/internal/dependencies/random"
	"github.com/nohumanman/descenders-modding/internal/middleware"
	"github.com/nohumanman/descenders-modding/internal/registry"
	"github.com/nohumanman/descenders-modding/internal/services/auth"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger    *slog.Logger
	Registry  *registry.Registry
	Commands  handler.CommandSender
	Records   handler.TimeModerator
	Resolver  *auth.Resolver
	Operators handler.OperatorStore
	Clock     clock.Clock
	Random    random.Random

	// Login is the OAuth login flow; nil disables /auth/login and /auth/callback
	Login handler.LoginProvider

	// Gateway accepts game client websocket connections
	Gateway http.Handler

	// SecureCookies marks session cookies as HTTPS-only
	SecureCookies bool
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	playerHandler := handler.NewPlayerHandler(cfg.Registry, cfg.Commands)
	spectateHandler := handler.NewSpectateHandler(cfg.Registry)
	timeHandler := handler.NewTimeHandler(cfg.Records)
	authHandler := handler.NewAuthHandler(
		cfg.Resolver, cfg.Login, cfg.Operators, cfg.Random, cfg.Clock, cfg.Logger, cfg.SecureCookies,
	)

	// Create middleware
	requireAuthorized := apimw.RequireAuthorized(cfg.Resolver)
	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger, func(w http.ResponseWriter, _ *http.Request, _ any) {
		apierr.WriteError(w, apierr.NewInternalError())
	})

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	// Read-only dashboard routes
	api.HandleFunc("/players", playerHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/players/{id}", playerHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/monitored", spectateHandler.Monitored).Methods(http.MethodGet)
	api.HandleFunc("/spectated", spectateHandler.Spectated).Methods(http.MethodGet)
	api.HandleFunc("/permission", authHandler.Permission).Methods(http.MethodGet)
	api.HandleFunc("/times", timeHandler.Recent).Methods(http.MethodGet)
	api.HandleFunc("/times/{id}", timeHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/leaderboard/{trail}", timeHandler.Leaderboard).Methods(http.MethodGet)
	api.HandleFunc("/trails", timeHandler.Trails).Methods(http.MethodGet)
	api.HandleFunc("/worlds", timeHandler.Worlds).Methods(http.MethodGet)

	// Privileged routes require an AUTHORIZED verdict
	api.Handle("/spectate", requireAuthorized(http.HandlerFunc(spectateHandler.Spectate))).Methods(http.MethodPost)
	api.Handle("/players/{id}/command", requireAuthorized(http.HandlerFunc(playerHandler.Command))).Methods(http.MethodPost)
	api.Handle("/times/{id}/verify", requireAuthorized(http.HandlerFunc(timeHandler.Verify))).Methods(http.MethodPost)
	api.Handle("/times/{id}/ignore", requireAuthorized(http.HandlerFunc(timeHandler.Ignore))).Methods(http.MethodPost)

	// Login routes
	api.HandleFunc("/auth/login", authHandler.Login).Methods(http.MethodGet)
	api.HandleFunc("/auth/callback", authHandler.Callback).Methods(http.MethodGet)
	api.HandleFunc("/auth/me", authHandler.Me).Methods(http.MethodGet)
	api.HandleFunc("/auth/logout", authHandler.Logout).Methods(http.MethodPost)

	// Health check endpoint (no auth)
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	// Game clients connect outside the JSON API
	if cfg.Gateway != nil {
		ws := r.PathPrefix("/ws").Subrouter()
		ws.Use(recoveryMiddleware)
		ws.Use(loggingMiddleware)
		ws.Handle("/game", cfg.Gateway).Methods(http.MethodGet)
	}

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	response.OK(w, response.StatusResponse{Status: "ok"})
}

package http

import (
	"net/http"

	"github.com/gorilla/mux"
)

// RouterConfig wires handlers and middleware into the API router.
type RouterConfig struct {
	Auth    *AuthHandler
	Clients *ClientHandler
	Events  *EventHandler
	Stats   *StatsHandler
	// SessionMiddleware guards every route except login.
	SessionMiddleware func(http.Handler) http.Handler
	// Middleware wraps the whole router, outermost first.
	Middleware []func(http.Handler) http.Handler
}

// NewRouter builds the HTTP API. Login is the only route reachable
// without a session.
func NewRouter(cfg RouterConfig) http.Handler {
	root := mux.NewRouter()

	if cfg.Auth != nil {
		root.HandleFunc("/sessions", cfg.Auth.CreateSession).Methods(http.MethodPost)
	}

	protected := root.PathPrefix("/").Subrouter()
	if cfg.SessionMiddleware != nil {
		protected.Use(mux.MiddlewareFunc(cfg.SessionMiddleware))
	}

	if cfg.Auth != nil {
		protected.HandleFunc("/sessions/current", cfg.Auth.DeleteCurrentSession).Methods(http.MethodDelete)
	}

	if cfg.Clients != nil {
		protected.HandleFunc("/clients", cfg.Clients.List).Methods(http.MethodGet)
		protected.HandleFunc("/clients", cfg.Clients.Create).Methods(http.MethodPost)
		protected.HandleFunc("/clients/{id}", cfg.Clients.Update).Methods(http.MethodPut)
		protected.HandleFunc("/clients/{id}/status", cfg.Clients.Transition).Methods(http.MethodPost)
	}

	if cfg.Events != nil {
		protected.HandleFunc("/events", cfg.Events.List).Methods(http.MethodGet)
		protected.HandleFunc("/events", cfg.Events.Create).Methods(http.MethodPost)
		protected.HandleFunc("/events/{id}", cfg.Events.Update).Methods(http.MethodPut)
		protected.HandleFunc("/events/{id}", cfg.Events.Delete).Methods(http.MethodDelete)
	}

	if cfg.Stats != nil {
		protected.HandleFunc("/statistics", cfg.Stats.Overview).Methods(http.MethodGet)
		protected.HandleFunc("/export/clients", cfg.Stats.ExportClients).Methods(http.MethodGet)
		protected.HandleFunc("/export/statistics", cfg.Stats.ExportStatistics).Methods(http.MethodGet)
		protected.HandleFunc("/now", cfg.Stats.Now).Methods(http.MethodGet)
	}

	var handler http.Handler = root
	for i := len(cfg.Middleware) - 1; i >= 0; i-- {
		if cfg.Middleware[i] != nil {
			handler = cfg.Middleware[i](handler)
		}
	}

	return handler
}

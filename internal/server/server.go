// Package server implements the corkd HTTP API: authentication, board CRUD,
// column and card operations, single-item moves, batch reordering, and the
// SSE bridge that relays board events from Redis to connected clients.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/corkboard/corkd/internal/auth"
	"github.com/corkboard/corkd/internal/config"
	"github.com/corkboard/corkd/internal/store"
	"github.com/corkboard/corkd/pkg/board"
)

// Server wires the store, the event feed and the auth service behind the
// HTTP API.
type Server struct {
	store *store.Store
	feed  *board.Feed
	auth  *auth.Service
	cfg   *config.Config

	httpServer *http.Server
}

// New creates a Server. The store, feed and auth service must already be
// initialized.
func New(cfg *config.Config, st *store.Store, feed *board.Feed, authSvc *auth.Service) *Server {
	s := &Server{
		store: st,
		feed:  feed,
		auth:  authSvc,
		cfg:   cfg,
	}
	s.httpServer = &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      s.Router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 0, // SSE connections stay open
	}
	return s
}

// Router builds the chi router with all API routes mounted.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{s.cfg.CORSOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
	}))

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", s.handleRegister)
		r.Post("/auth/login", s.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)

			r.Get("/auth/me", s.handleMe)
			r.Get("/users/search", s.handleSearchUsers)

			r.Route("/boards", func(r chi.Router) {
				r.Get("/", s.handleListBoards)
				r.Post("/", s.handleCreateBoard)
				r.Get("/{boardID}", s.handleGetBoard)
				r.Delete("/{boardID}", s.handleDeleteBoard)

				r.Post("/{boardID}/members", s.handleAddMember)
				r.Delete("/{boardID}/members/{userID}", s.handleRemoveMember)

				r.Post("/{boardID}/columns", s.handleCreateColumn)
				r.Put("/{boardID}/columns/order", s.handleReorderColumns)
				r.Put("/{boardID}/cards/order", s.handleReorderCards)

				r.Get("/{boardID}/events", s.handleEvents)
			})

			r.Route("/columns", func(r chi.Router) {
				r.Put("/{columnID}", s.handleRenameColumn)
				r.Delete("/{columnID}", s.handleDeleteColumn)
				r.Put("/{columnID}/move", s.handleMoveColumn)
				r.Post("/{columnID}/cards", s.handleCreateCard)
			})

			r.Route("/cards", func(r chi.Router) {
				r.Put("/{cardID}", s.handleUpdateCard)
				r.Delete("/{cardID}", s.handleDeleteCard)
				r.Put("/{cardID}/move", s.handleMoveCard)
			})
		})
	})

	return r
}

// Start begins serving in the background.
func (s *Server) Start() error {
	go func() {
		log.Printf("[Server] Listening on %s", s.cfg.ListenAddr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("[Server] HTTP server error: %v", err)
		}
	}()
	return nil
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// publish broadcasts an event on the board's channel after the mutation has
// committed. Publish failures never fail the HTTP request: connected clients
// fall back to a full refetch, so a dropped event costs a round trip, not
// correctness.
func (s *Server) publish(ctx context.Context, kind board.EventKind, boardID, actorID string, payload any) {
	ev, err := board.NewEvent(kind, boardID, actorID, payload)
	if err != nil {
		log.Printf("[Server] Failed to build %s event for board %s: %v", kind, boardID, err)
		return
	}
	if err := s.feed.Publish(ctx, ev); err != nil {
		log.Printf("[Server] Failed to publish %s event for board %s: %v", kind, boardID, err)
	}
}

// handleHealth reports liveness of the server's dependencies. Returns 200
// when both the database and Redis respond, 503 otherwise.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	type healthResponse struct {
		Status   string `json:"status"`
		Database string `json:"database,omitempty"`
		Redis    string `json:"redis,omitempty"`
		Error    string `json:"error,omitempty"`
	}

	resp := healthResponse{Status: "healthy", Database: "connected", Redis: "connected"}
	status := http.StatusOK

	if err := s.store.Ping(ctx); err != nil {
		resp.Status = "unhealthy"
		resp.Database = "disconnected"
		resp.Error = err.Error()
		status = http.StatusServiceUnavailable
	} else if err := s.feed.Ping(ctx); err != nil {
		resp.Status = "unhealthy"
		resp.Redis = "disconnected"
		resp.Error = err.Error()
		status = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(resp)
}

// decodeBody decodes a JSON request body into v.
func decodeBody(r *http.Request, v any) error {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

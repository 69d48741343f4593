package web

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ototana/ototana/internal/event"
)

// Server is the HTTP server for the JSON API.
type Server struct {
	router   chi.Router
	server   *http.Server
	logger   *log.Logger
	handlers *Handlers
	bus      *event.Bus
}

// NewServer creates a new API server.
func NewServer(addr string, logger *log.Logger, handlers *Handlers, bus *event.Bus) *Server {
	router := chi.NewRouter()

	s := &Server{
		router:   router,
		logger:   logger,
		handlers: handlers,
		bus:      bus,
	}

	s.setupMiddleware()
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupMiddleware configures middleware for the router.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.requestLogger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
}

// setupRoutes configures routes for the application.
func (s *Server) setupRoutes() {
	h := s.handlers

	// Auth flow
	s.router.Get("/auth/login", h.Login)
	s.router.Get("/auth/callback", h.Callback)
	s.router.Post("/auth/logout", h.Logout)

	s.router.Route("/api", func(r chi.Router) {
		// Own profile
		r.Get("/me", h.Me)
		r.Patch("/me", h.UpdateMe)

		// Spotify proxy
		r.Get("/spotify/search", h.SpotifySearch)
		r.Get("/spotify/metadata", h.SpotifyMetadata)

		// Shelves
		r.Get("/shelves", h.ListShelves)
		r.Post("/shelves", h.CreateShelf)
		r.Post("/shelves/reorder", h.ReorderShelves)
		r.Patch("/shelves/{id}", h.UpdateShelf)
		r.Delete("/shelves/{id}", h.DeleteShelf)
		r.Get("/shelves/{id}/items", h.ListItems)
		r.Post("/shelves/{id}/items", h.AddItem)
		r.Post("/shelves/{id}/items/reorder", h.ReorderItems)

		// Items
		r.Post("/items/{id}/move", h.MoveItem)
		r.Post("/items/{id}/duplicate", h.DuplicateItem)
		r.Patch("/items/{id}/memo", h.UpdateMemo)
		r.Delete("/items/{id}", h.DeleteItem)

		// Comments and likes
		r.Get("/items/{id}/comments", h.ListComments)
		r.Post("/items/{id}/comments", h.AddComment)
		r.Delete("/comments/{id}", h.DeleteComment)
		r.Post("/items/{id}/like", h.ToggleItemLike)
		r.Post("/comments/{id}/like", h.ToggleCommentLike)
		r.Get("/items/{id}/counts", h.ItemCounts)

		// Friends
		r.Get("/friends", h.ListFriends)
		r.Get("/friends/requests", h.ListFriendRequests)
		r.Post("/friends/request", h.SendFriendRequest)
		r.Post("/friends/accept", h.AcceptFriendRequest)
		r.Post("/friends/reject", h.RejectFriendRequest)
		r.Post("/friends/remove", h.RemoveFriend)
		r.Get("/users/search", h.SearchUsers)

		// Playback signal
		r.Post("/player/playing", h.TrackPlaying)
	})
}

// requestLogger logs one line per request.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
		)
	})
}

// watchEvents logs bus activity until ctx is cancelled. It gives the bus a
// consumer even when no other subscriber is attached.
func (s *Server) watchEvents(ctx context.Context) error {
	added, err := s.bus.SubscribeItemAdded(ctx)
	if err != nil {
		return fmt.Errorf("subscribing to item_added: %w", err)
	}
	removed, err := s.bus.SubscribeItemRemoved(ctx)
	if err != nil {
		return fmt.Errorf("subscribing to item_removed: %w", err)
	}
	playing, err := s.bus.SubscribeTrackPlaying(ctx)
	if err != nil {
		return fmt.Errorf("subscribing to track_playing: %w", err)
	}

	go func() {
		for {
			select {
			case ev, ok := <-added:
				if !ok {
					return
				}
				s.logger.Info("item added", "shelf", ev.ShelfID, "item", ev.ItemID, "title", ev.Title)
			case ev, ok := <-removed:
				if !ok {
					return
				}
				s.logger.Info("item removed", "shelf", ev.ShelfID, "item", ev.ItemID)
			case ev, ok := <-playing:
				if !ok {
					return
				}
				s.logger.Info("track playing", "user", ev.UserID, "title", ev.Title)
			case <-ctx.Done():
				return
			}
		}
	}()
	return nil
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.logger.Info("starting server", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Run starts the server and handles graceful shutdown on interrupt signals.
func (s *Server) Run() error {
	busCtx, cancelBus := context.WithCancel(context.Background())
	defer cancelBus()
	if err := s.watchEvents(busCtx); err != nil {
		return err
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		if err := s.Start(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-stop:
		s.logger.Info("shutting down server")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	s.logger.Info("server stopped")
	return nil
}

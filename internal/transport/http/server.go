package http

import (
	"bufio"
	"context"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/chris-cant-code/spellingbee/internal/app"
	"github.com/chris-cant-code/spellingbee/internal/config"
	"github.com/chris-cant-code/spellingbee/internal/store"
	"github.com/chris-cant-code/spellingbee/internal/transport/ws"
)

// Server represents the HTTP server: the REST surface plus the WebSocket
// mount point.
type Server struct {
	server  *http.Server
	router  chi.Router
	hub     *app.RoomHub
	puzzles store.PuzzleStore
	rooms   store.RoomStore
	config  *config.Config
	logger  *slog.Logger
}

// NewServer creates a new HTTP server.
func NewServer(cfg *config.Config, hub *app.RoomHub, puzzles store.PuzzleStore, rooms store.RoomStore, logger *slog.Logger) *Server {
	s := &Server{
		hub:     hub,
		puzzles: puzzles,
		rooms:   rooms,
		config:  cfg,
		logger:  logger,
	}

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(s.withCORS)
	r.Use(s.withLogging)

	// Bounded handler time on the REST surface only; the WebSocket route
	// hijacks the connection and must outlive any request deadline.
	r.Route("/api", func(r chi.Router) {
		r.Use(chimw.Timeout(10 * time.Second))
		r.Get("/puzzles", s.handleListPuzzles)
		r.Get("/puzzles/{date}", s.handleGetPuzzle)
		r.Get("/rooms/{date}", s.handleGetRoom)
		r.Post("/rooms/{date}/reset", s.handleResetRoom)
		r.Get("/health", s.handleHealth)
		r.Get("/stats", s.handleStats)
	})

	r.Method(http.MethodGet, "/ws", ws.NewHandler(hub, logger))

	s.router = r
	s.server = &http.Server{
		Addr:         cfg.GetAddr(),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Router exposes the internal router (useful for tests).
func (s *Server) Router() http.Handler {
	return s.router
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.logger.Info("server starting", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("server shutting down")
	return s.server.Shutdown(ctx)
}

// withCORS adds permissive CORS headers and answers preflight requests.
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withLogging logs each request with its status and duration.
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapped.statusCode,
			"duration", time.Since(start),
		)
	})
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Hijack implements http.Hijacker for WebSocket support.
func (rw *responseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if hijacker, ok := rw.ResponseWriter.(http.Hijacker); ok {
		return hijacker.Hijack()
	}
	return nil, nil, http.ErrNotSupported
}

// Flush implements http.Flusher.
func (rw *responseWriter) Flush() {
	if flusher, ok := rw.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

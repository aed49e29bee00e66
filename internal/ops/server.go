// Package ops serves health and readiness endpoints for the bot process.
package ops

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/m3rciful/citybot/core/logger"
)

// Catalog reports the state of the loaded city data.
type Catalog interface {
	Degraded() bool
	Len() int
}

// Sessions reports the number of live conversations.
type Sessions interface {
	Len() int
}

// Status is the /readyz response body.
type Status struct {
	Status   string `json:"status"`
	Degraded bool   `json:"degraded"`
	Cities   int    `json:"cities"`
	Sessions int    `json:"sessions"`
}

// NewRouter builds the ops HTTP handler.
func NewRouter(catalog Catalog, sessions Sessions) http.Handler {
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		st := Status{Status: "ready"}
		code := http.StatusOK
		if catalog != nil {
			st.Degraded = catalog.Degraded()
			st.Cities = catalog.Len()
		}
		if sessions != nil {
			st.Sessions = sessions.Len()
		}
		if st.Degraded {
			st.Status = "degraded"
			code = http.StatusServiceUnavailable
		}
		writeJSON(w, code, st)
	})
	return r
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.HTTP.Warn("response encode failed",
			slog.String("event", "http.write"),
			slog.String("err", err.Error()),
		)
	}
}

// Server runs the ops router until its context ends.
type Server struct {
	srv *http.Server
}

// NewServer binds handler to addr.
func NewServer(addr string, handler http.Handler) *Server {
	return &Server{srv: &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}}
}

// Start listens in the background and shuts down when ctx is done.
func (s *Server) Start(ctx context.Context) {
	go func() {
		logger.HTTP.Info("ops server listening",
			slog.String("event", "http.listen"),
			slog.String("listen", s.srv.Addr),
		)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.HTTP.Error("ops server failed",
				slog.String("event", "http.listen"),
				slog.String("status", "fail"),
				slog.String("err", err.Error()),
			)
		}
	}()
	go func() {
		<-ctx.Done()
		_ = s.Shutdown(context.Background())
	}()
}

// Shutdown stops the server, waiting up to five seconds for open requests.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := s.srv.Shutdown(ctx); err != nil {
		return err
	}
	logger.HTTP.Info("ops server stopped", slog.String("event", "http.shutdown"))
	return nil
}

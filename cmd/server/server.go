package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Simplici0/discovery/internal/metrics"
	"github.com/Simplici0/discovery/internal/pricing"
	"github.com/Simplici0/discovery/internal/profile"
	"github.com/Simplici0/discovery/internal/session"
)

const maxBodyBytes = 1 << 20

// narrator writes the proposal summary. It never fails; failures come back
// as fallback text.
type narrator interface {
	Compose(ctx context.Context, p profile.ClientProfile, b pricing.BudgetResult) string
}

type server struct {
	engine   *pricing.Engine
	store    *session.Store
	narrator narrator
	logger   *zap.Logger
	ping     func(context.Context) error
}

func newServer(engine *pricing.Engine, store *session.Store, n narrator, logger *zap.Logger) *server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &server{engine: engine, store: store, narrator: n, logger: logger}
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/tariff", s.handleTariff)
		r.Get("/profile/sample", s.handleSampleProfile)
		r.Post("/budget", s.handleBudget)

		r.Head("/draft", s.handleDraftHead)
		r.Get("/draft", s.handleDraftGet)
		r.Put("/draft", s.handleDraftPut)
		r.Delete("/draft", s.handleDraftDelete)

		r.Post("/proposals", s.handleProposalCreate)

		r.Get("/sessions", s.handleSessionsList)
		r.Route("/sessions/{id}", func(r chi.Router) {
			r.Get("/", s.handleSessionGet)
			r.Delete("/", s.handleSessionDelete)
			r.Get("/text", s.handleSessionText)
			r.Get("/pdf", s.handleSessionPDF)
			r.Get("/xlsx", s.handleSessionXLSX)
		})
	})

	return r
}

// requestLogger logs each request and records it in the HTTP metrics under
// its route pattern.
func (s *server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			elapsed := time.Since(start)
			route := r.URL.Path
			if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
				route = rc.RoutePattern()
			}
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			metrics.RecordHTTP(r.Method, route, strconv.Itoa(status), elapsed)
			s.logger.Info("request",
				zap.String("method", r.Method),
				zap.String("route", route),
				zap.Int("status", status),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("elapsed", elapsed),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.ping != nil {
		if err := s.ping(r.Context()); err != nil {
			s.logger.Error("health check failed", zap.Error(err))
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "ok")
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// decodeJSON reads a single JSON value from the request body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	if dec.More() {
		return errors.New("invalid JSON body: trailing data")
	}
	return nil
}

// sessionError maps store errors to responses.
func (s *server) sessionError(w http.ResponseWriter, err error, id string) {
	if errors.Is(err, session.ErrNotFound) {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	s.logger.Error("session store", zap.String("id", id), zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal error")
}

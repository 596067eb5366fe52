package app

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Handler returns the dashboard HTTP handler.
func (r *Runner) Handler() http.Handler {
	logger := r.clients.Logger

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(requestLogger(logger))
	router.Use(middleware.Recoverer)

	// Health check endpoint
	router.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	// JSON view of the normalized dashboard data
	router.Get("/api/view", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, r.state.Snapshot())
	})

	// JSON service stats
	router.Get("/stats", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, r.GetStats())
	})

	// HTML dashboard
	router.Get("/", r.renderPage("/", "", false))
	router.Get("/history", r.renderPage("/history", "L'historique des trades n'est pas encore disponible.", false))
	router.Get("/config", r.renderPage("/config", "La configuration du bot n'est pas modifiable depuis ce tableau de bord.", true))

	return router
}

func (r *Runner) renderPage(path, notice string, showConfig bool) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		view := buildPageView(
			r.state.Snapshot(),
			path,
			r.clients.Dashboard.Endpoint(),
			shortCommit(BuildCommit),
			r.poller.Interval(),
		)
		view.Notice = notice
		if showConfig {
			data, err := r.liveConfig.Get().ToJSON()
			if err != nil {
				r.clients.Logger.Error("failed to encode config", zap.Error(err))
			}
			view.Config = string(data)
		}

		var buf bytes.Buffer
		if err := pageTemplate.Execute(&buf, view); err != nil {
			r.clients.Logger.Error("failed to render dashboard", zap.Error(err))
			http.Error(w, "internal server error", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		w.WriteHeader(http.StatusOK)
		w.Write(buf.Bytes())
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(v)
}

// requestLogger logs each request through zap.
func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, req.ProtoMajor)
			start := time.Now()
			defer func() {
				logger.Debug("http request",
					zap.String("method", req.Method),
					zap.String("path", req.URL.Path),
					zap.Int("status", ww.Status()),
					zap.Int("bytes", ww.BytesWritten()),
					zap.Duration("duration", time.Since(start)),
					zap.String("requestId", middleware.GetReqID(req.Context())),
				)
			}()
			next.ServeHTTP(ww, req)
		})
	}
}

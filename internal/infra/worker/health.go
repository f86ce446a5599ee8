package worker

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"djnml-feed/internal/usecase/ingest"
)

// HealthServer serves the worker's probes:
//   - /health: liveness, always 200 OK
//   - /health/ready: readiness, 200 once SetReady(true) was called, 503 before
//
// Both responses carry a summary of the most recent inbox sweep once one has
// finished.
type HealthServer struct {
	addr    string
	logger  *slog.Logger
	isReady *atomic.Bool
	lastRun atomic.Pointer[runSummary]
	server  *http.Server
}

// runSummary describes the last finished sweep.
type runSummary struct {
	RunID      string    `json:"run_id,omitempty"`
	FinishedAt time.Time `json:"finished_at"`
	Files      int       `json:"files"`
	Failed     int64     `json:"failed"`
	Error      string    `json:"error,omitempty"`
}

type healthResponse struct {
	Status  string      `json:"status"`
	LastRun *runSummary `json:"last_run,omitempty"`
}

// NewHealthServer creates a health server listening on addr. It starts not
// ready.
func NewHealthServer(addr string, logger *slog.Logger) *HealthServer {
	isReady := &atomic.Bool{}
	isReady.Store(false)

	return &HealthServer{
		addr:    addr,
		logger:  logger,
		isReady: isReady,
	}
}

// Handler returns the probe routes.
func (h *HealthServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", h.handleLiveness)
	mux.HandleFunc("/health/ready", h.handleReadiness)
	return mux
}

// Start serves until ctx is cancelled, then shuts down within five seconds.
// A graceful stop returns http.ErrServerClosed.
func (h *HealthServer) Start(ctx context.Context) error {
	h.server = &http.Server{
		Addr:         h.addr,
		Handler:      h.Handler(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		h.logger.Info("health server starting", slog.String("addr", h.addr))
		if err := h.server.ListenAndServe(); err != nil {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		h.logger.Info("health server shutting down")
		if err := h.server.Shutdown(shutdownCtx); err != nil {
			h.logger.Error("health server shutdown failed", slog.Any("error", err))
			return err
		}
		h.logger.Info("health server stopped")
		return http.ErrServerClosed

	case err := <-errChan:
		if err == http.ErrServerClosed {
			return err
		}
		h.logger.Error("health server failed", slog.Any("error", err))
		return err
	}
}

// SetReady sets the readiness state reported by /health/ready.
func (h *HealthServer) SetReady(ready bool) {
	h.isReady.Store(ready)
	h.logger.Info("health server readiness changed", slog.Bool("ready", ready))
}

// RecordRun stores the outcome of a sweep for the probe responses.
func (h *HealthServer) RecordRun(stats *ingest.IngestStats, err error) {
	s := &runSummary{FinishedAt: time.Now().UTC()}
	if stats != nil {
		s.RunID = stats.RunID
		s.Files = stats.Files
		s.Failed = stats.Failed
	}
	if err != nil {
		s.Error = err.Error()
	}
	h.lastRun.Store(s)
}

func (h *HealthServer) handleLiveness(w http.ResponseWriter, r *http.Request) {
	h.write(w, http.StatusOK, "ok")
}

func (h *HealthServer) handleReadiness(w http.ResponseWriter, r *http.Request) {
	if h.isReady.Load() {
		h.write(w, http.StatusOK, "ok")
		return
	}
	h.write(w, http.StatusServiceUnavailable, "not ready")
}

func (h *HealthServer) write(w http.ResponseWriter, code int, status string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	resp := healthResponse{Status: status, LastRun: h.lastRun.Load()}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error("failed to encode health response", slog.Any("error", err))
	}
}

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"djnml-feed/internal/observability/tracing"
)

// HealthResponse represents a simple health check response.
type HealthResponse struct {
	Status string `json:"status"`
}

// DependencyHealthResponse reports the circuit breakers guarding the story
// store and the event broker.
type DependencyHealthResponse struct {
	Healthy      bool               `json:"healthy"`
	Dependencies []DependencyStatus `json:"dependencies"`
}

// DependencyStatus is the state of one guarded dependency.
type DependencyStatus struct {
	Name               string `json:"name"`
	CircuitBreakerOpen bool   `json:"circuit_breaker_open"`
}

type breakerProbe interface {
	IsOpen() bool
}

type eventProbe interface {
	BreakerOpen() bool
}

// dependencyProbes groups the breakers reported by /health/dependencies.
type dependencyProbes struct {
	store  breakerProbe
	events eventProbe
}

func (p dependencyProbes) statuses() []DependencyStatus {
	var out []DependencyStatus
	if p.store != nil {
		out = append(out, DependencyStatus{Name: "story-store", CircuitBreakerOpen: p.store.IsOpen()})
	}
	if p.events != nil {
		out = append(out, DependencyStatus{Name: "event-publish", CircuitBreakerOpen: p.events.BreakerOpen()})
	}
	return out
}

// startMetricsServer serves Prometheus metrics on METRICS_PORT (default 9090)
// until ctx is cancelled.
//
// Endpoints:
//   - GET /metrics
//   - GET /health
//   - GET /health/dependencies: 503 while any breaker is open
func startMetricsServer(ctx context.Context, logger *slog.Logger, probes dependencyProbes) *http.Server {
	port := getMetricsPort()

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      metricsMux(probes),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("metrics server starting", slog.Int("port", port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server error", slog.Any("error", err))
		}
	}()

	go func() {
		<-ctx.Done()
		logger.Info("metrics server shutdown initiated")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("metrics server shutdown error", slog.Any("error", err))
		} else {
			logger.Info("metrics server stopped")
		}
	}()

	return server
}

func metricsMux(probes dependencyProbes) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", healthHandler)
	mux.Handle("/health/dependencies", tracing.Middleware(dependencyHealthHandler(probes)))
	return mux
}

// getMetricsPort reads METRICS_PORT. Defaults to 9090 if unset or invalid.
func getMetricsPort() int {
	portStr := os.Getenv("METRICS_PORT")
	if portStr == "" {
		return 9090
	}

	port, err := strconv.Atoi(portStr)
	if err != nil || port <= 0 || port > 65535 {
		return 9090
	}

	return port
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(HealthResponse{Status: "healthy"})
}

func dependencyHealthHandler(probes dependencyProbes) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		deps := probes.statuses()
		healthy := true
		for _, d := range deps {
			if d.CircuitBreakerOpen {
				healthy = false
			}
		}

		statusCode := http.StatusOK
		if !healthy {
			statusCode = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		_ = json.NewEncoder(w).Encode(DependencyHealthResponse{
			Healthy:      healthy,
			Dependencies: deps,
		})
	}
}

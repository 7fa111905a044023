package monitoring

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"threepole/lib/monitoring/bungie_metrics"
	"threepole/lib/monitoring/tracker_metrics"
	"threepole/lib/utils/logging"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	logger       = logging.NewLogger("MONITORING")
	registerOnce sync.Once
)

// Register registers every threepole metric with the default registry. Safe to call more than once.
func Register() {
	registerOnce.Do(func() {
		bungie_metrics.Register()
		tracker_metrics.Register()
	})
}

func loadMetricsPort(port string) (int, bool) {
	if port == "" {
		return 0, false
	}
	metricsPort, err := strconv.Atoi(port)
	if err != nil {
		logger.Warn("INVALID_METRICS_PORT", err, map[string]any{
			logging.PORT: port,
		})
		return 0, false
	}
	return metricsPort, true
}

// ServeMetrics registers metrics and serves /metrics on the given port until
// ctx is cancelled. It returns immediately when port is empty or invalid.
func ServeMetrics(ctx context.Context, port string) {
	Register()

	metricsPort, ok := loadMetricsPort(port)
	if !ok {
		logger.Debug("METRICS_SERVER_DISABLED", nil)
		return
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{
		Addr:              fmt.Sprintf("127.0.0.1:%d", metricsPort),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	go func() {
		logger.Info("METRICS_SERVER_STARTED", map[string]any{
			logging.ADDRESS: server.Addr,
		})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("METRICS_SERVER_ERROR", err, map[string]any{
				logging.PORT: metricsPort,
			})
		}
	}()
}

package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/kotche/femhealth/infrastructure/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Время обработки команды бота
	ResponseTimeHistogram = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "femhealth_command_duration_seconds",
			Help:    "Bot command handling time in seconds",
			Buckets: prometheus.LinearBuckets(0.1, 0.1, 10),
		},
		[]string{"command"},
	)
)

func Init(reg prometheus.Registerer) {
	reg.MustRegister(ResponseTimeHistogram)
}

// ObserveCommand records how long a bot command took since start.
func ObserveCommand(command string, start time.Time) {
	ResponseTimeHistogram.WithLabelValues(command).Observe(time.Since(start).Seconds())
}

// StartMetricsServer serves /metrics on addr until ctx is done.
func StartMetricsServer(ctx context.Context, addr string, lggr logger.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		lggr.Infof("metrics server running on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lggr.Errorf("metrics server stopped: %v", err)
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
}

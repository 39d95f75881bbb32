package handlers

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/imamik/subnetctl/internal/config"
	"github.com/imamik/subnetctl/internal/logging"
	"github.com/imamik/subnetctl/internal/scheduler"
	"github.com/imamik/subnetctl/internal/subnet"
)

const metricsShutdownTimeout = 5 * time.Second

// Runner is the part of the scheduler Watch uses.
type Runner interface {
	Start(ctx context.Context) error
	Stop()
}

// newScheduler creates the tick loop. Replaced in tests.
var newScheduler = func(svc Service, interval time.Duration, opts ...scheduler.Option) Runner {
	return scheduler.New(svc, svc, interval, opts...)
}

// Watch handles the watch command.
//
// It advances the current subnet on the poll interval and serves Prometheus
// metrics until SIGINT or SIGTERM.
func Watch(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer s.Close()
	logger := logging.FromContext(s.ctx)

	var srv *http.Server
	if s.cfg.MetricsAddr != "" {
		srv = newMetricsServer(s.cfg.MetricsAddr)
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error(err, "metrics server failed", "addr", s.cfg.MetricsAddr)
			}
		}()
		logger.Info("serving metrics", "addr", s.cfg.MetricsAddr)
	}

	runner := newScheduler(s.svc, s.cfg.PollInterval, scheduler.WithErrorHandler(func(err error) {
		if subnet.IsInvariantViolation(err) || config.IsConfigurationError(err) {
			logger.Error(err, "subnet needs operator attention")
		}
	}))
	if err := runner.Start(s.ctx); err != nil {
		shutdownMetrics(srv)
		return err
	}

	<-s.ctx.Done()
	logger.Info("shutting down")
	runner.Stop()
	shutdownMetrics(srv)
	return nil
}

func newMetricsServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func shutdownMetrics(srv *http.Server) {
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
	defer cancel()
	_ = srv.Shutdown(ctx)
}

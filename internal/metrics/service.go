package metrics

import (
	"context"
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Service serves metrics.
type Service struct {
	*http.Server
	enabled bool
	log     *zap.Logger
}

// NewService creates a new service exposing prometheus metrics on addr.
func NewService(addr string, enabled bool, log *zap.Logger) *Service {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return &Service{
		Server:  &http.Server{Addr: addr, Handler: mux},
		enabled: enabled,
		log:     log,
	}
}

// Start runs http service with the exposed endpoint on the configured port.
func (ms *Service) Start() {
	if !ms.enabled {
		ms.log.Info("metrics service hasn't started since it's disabled")
		return
	}
	ms.log.Info("metrics service is running", zap.String("endpoint", ms.Addr))
	err := ms.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		ms.log.Warn("metrics service couldn't start on configured port", zap.Error(err))
	}
}

// ShutDown stops the service.
func (ms *Service) ShutDown(ctx context.Context) {
	if !ms.enabled {
		return
	}
	ms.log.Info("shutting down metrics service", zap.String("endpoint", ms.Addr))
	if err := ms.Shutdown(ctx); err != nil {
		ms.log.Error("can't shut metrics service down", zap.Error(err))
	}
}

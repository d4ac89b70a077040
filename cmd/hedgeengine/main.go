// Command hedgeengine wires together the config loader, the hedge engine
// and its Prometheus metrics, and blocks until it receives a termination
// signal. It does not read market data itself — a feed reader (socket
// tick codec, CSV replay, etc.) is an external collaborator that calls
// engine.OnTick.
package main

import (
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/quantcore/hedge-engine/internal/config"
	"github.com/quantcore/hedge-engine/internal/engine"
	"github.com/quantcore/hedge-engine/internal/metrics"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the engine's YAML configuration file")
	metricsAddr := flag.String("metrics-addr", ":9090", "address to serve /metrics on")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	mgr, err := config.New(*configPath)
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}
	defer mgr.Close()

	eng, err := engine.New(mgr.Config(), logger)
	if err != nil {
		logger.Fatal("failed to construct engine", zap.Error(err))
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(metrics.NewPrometheusCollector(eng.Metrics()))

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	server := &http.Server{Addr: *metricsAddr, Handler: mux}

	go func() {
		logger.Info("serving metrics", zap.String("addr", *metricsAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server stopped", zap.Error(err))
		}
	}()

	logger.Info("hedge engine started",
		zap.Float64("initial_position", mgr.Config().InitialPosition),
		zap.Float64("default_hedge_ratio", mgr.Config().DefaultHedgeRatio),
		zap.Bool("mvhr_enabled", mgr.Config().EnableMVHR),
		zap.Bool("mean_reversion_enabled", mgr.Config().EnableMeanReversion))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutting down", zap.String("health", eng.HealthStatus()))
	server.Close()
}

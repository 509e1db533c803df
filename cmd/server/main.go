package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"starpos-backend/internal/clock"
	"starpos-backend/internal/config"
	"starpos-backend/internal/idgen"
	"starpos-backend/internal/logger"
	"starpos-backend/internal/metrics"
	"starpos-backend/internal/server"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	zl, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatal(err)
	}
	defer zl.Sync()

	warnings, err := cfg.Validate()
	if err != nil {
		zl.Fatal("invalid configuration", zap.Error(err))
	}
	for _, w := range warnings {
		zl.Warn(w)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	kv, err := server.OpenStorage(ctx, cfg, zl)
	if err != nil {
		zl.Fatal("storage unavailable", zap.String("driver", cfg.StorageDriver), zap.Error(err))
	}
	defer kv.Close()

	ids, err := idgen.NewSnowflake(cfg.NodeID)
	if err != nil {
		zl.Fatal("id generator", zap.Error(err))
	}

	var (
		m   *metrics.Collectors
		reg *prometheus.Registry
	)
	if cfg.MetricsEnabled {
		reg = prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		m = metrics.New(reg)
	}

	svcs, err := server.NewServices(ctx, cfg, kv, clock.Real{}, ids, m, zl)
	if err != nil {
		zl.Fatal("startup failed", zap.Error(err))
	}

	opts := server.Options{CORSOrigins: cfg.CORSOrigins, JWTSecret: cfg.JWTSecret}
	if reg != nil {
		opts.Gatherer = reg
	}
	app := server.NewApp(svcs, opts, zl)

	go func() {
		<-ctx.Done()
		zl.Info("shutting down")
		if err := app.Shutdown(); err != nil {
			zl.Error("shutdown", zap.Error(err))
		}
	}()

	zl.Info("server listening", zap.String("port", cfg.HTTPPort), zap.String("storage", cfg.StorageDriver))
	if err := app.Listen(":" + cfg.HTTPPort); err != nil {
		zl.Fatal("listen", zap.Error(err))
	}
}

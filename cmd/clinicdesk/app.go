package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"

	"github.com/dmehra2102/prod-golang-projects/clinicdesk/internal/config"
	"github.com/dmehra2102/prod-golang-projects/clinicdesk/internal/store/xmlstore"
	"github.com/dmehra2102/prod-golang-projects/clinicdesk/pkg/logger"
	"github.com/dmehra2102/prod-golang-projects/clinicdesk/pkg/metrics"
	"github.com/dmehra2102/prod-golang-projects/clinicdesk/pkg/tracer"
)

// app holds the process-wide plumbing shared by every subcommand.
type app struct {
	cfg       *config.Config
	sessionID string
	log       *zap.Logger
	tp        *sdktrace.TracerProvider
	registry  *prometheus.Registry
	metrics   *metrics.Collector
	store     *xmlstore.Store
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("data-dir") {
		dir, err := cmd.Flags().GetString("data-dir")
		if err != nil {
			return nil, err
		}
		cfg.Store.DataDir = dir
	}
	return cfg, nil
}

func newApp(ctx context.Context, cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	sessionID := uuid.NewString()
	log, err := logger.New(cfg.Log, logger.WithService(cfg.App), logger.WithSession(sessionID))
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}

	tp, err := tracer.Init(ctx, cfg.Tracing)
	if err != nil {
		return nil, fmt.Errorf("initializing tracer: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.NewCollector(cfg.App.Name, reg)

	return &app{
		cfg:       cfg,
		sessionID: sessionID,
		log:       log,
		tp:        tp,
		registry:  reg,
		metrics:   m,
		store:     xmlstore.New(cfg.Store, m, log),
	}, nil
}

func (a *app) close(ctx context.Context) {
	if err := a.tp.Shutdown(ctx); err != nil {
		a.log.Warn("tracer shutdown failed", zap.Error(err))
	}
	_ = a.log.Sync()
}

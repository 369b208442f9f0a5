package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/FACorreiaa/lince-perdas/internal/domain/losses/aggregate"
	"github.com/FACorreiaa/lince-perdas/internal/domain/losses/export"
	"github.com/FACorreiaa/lince-perdas/internal/domain/losses/extract"
	"github.com/FACorreiaa/lince-perdas/internal/domain/losses/metrics"
	"github.com/FACorreiaa/lince-perdas/internal/domain/losses/parser"
	"github.com/FACorreiaa/lince-perdas/internal/domain/losses/service"
	"github.com/FACorreiaa/lince-perdas/pkg/config"
	"github.com/FACorreiaa/lince-perdas/pkg/storage"
)

// Dependencies holds all application dependencies
type Dependencies struct {
	Config *config.Config
	Logger *slog.Logger

	Registry *prometheus.Registry
	Metrics  *metrics.Metrics

	// Services
	Parser       *parser.Parser
	Extractor    *extract.Extractor
	BatchService *service.BatchService
	Writer       export.Writer
	Storage      storage.Storage
}

// InitDependencies initializes all application dependencies
func InitDependencies(cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	deps.initMetrics()

	if err := deps.initServices(); err != nil {
		return nil, fmt.Errorf("failed to init services: %w", err)
	}

	if err := deps.initStorage(); err != nil {
		return nil, fmt.Errorf("failed to init storage: %w", err)
	}

	logger.Debug("all dependencies initialized successfully")

	return deps, nil
}

func (d *Dependencies) initMetrics() {
	if !d.Config.Observability.MetricsEnabled {
		return
	}
	d.Registry = prometheus.NewRegistry()
	d.Metrics = metrics.NewMetrics(d.Registry)
}

func (d *Dependencies) initServices() error {
	d.Parser = parser.NewParser(parser.DefaultConfig(), d.Logger)
	d.Extractor = extract.New(extract.NewPDFExtractor(d.Logger), extract.NewTextExtractor())

	d.BatchService = service.NewBatchService(d.Parser, d.Metrics, d.Logger, service.Options{
		Workers:            d.Config.Processing.Workers,
		KeyPolicy:          aggregate.PolicyByName(d.Config.Processing.KeyPolicy),
		SimilarityDistance: d.Config.Processing.SimilarityDistance,
		InferMetadata:      d.Config.Batch.InferMetadata,
	})

	writer, err := export.NewWriter(d.Config.Output.Format, d.Config.Output.Sheet)
	if err != nil {
		return err
	}
	d.Writer = writer

	return nil
}

func (d *Dependencies) initStorage() error {
	s, err := storage.NewLocalStorage(d.Config.Output.Dir)
	if err != nil {
		return err
	}
	d.Storage = s
	return nil
}

// WriteMetrics dumps the registry next to the output when metrics are on.
func (d *Dependencies) WriteMetrics() error {
	if d.Registry == nil || d.Config.Observability.MetricsFile == "" {
		return nil
	}
	path := d.Config.Observability.MetricsFile
	if !filepath.IsAbs(path) {
		path = filepath.Join(d.Config.Output.Dir, path)
	}
	if err := prometheus.WriteToTextfile(path, d.Registry); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	return nil
}

// newLogger builds the process logger from config.
func newLogger(cfg config.LogConfig, w io.Writer) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if strings.EqualFold(cfg.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Package service runs a batch of loss reports through the parser and the
// aggregator and returns the rows of the output sheet.
package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/FACorreiaa/lince-perdas/internal/domain/losses/aggregate"
	"github.com/FACorreiaa/lince-perdas/internal/domain/losses/metrics"
	"github.com/FACorreiaa/lince-perdas/internal/domain/losses/model"
	"github.com/FACorreiaa/lince-perdas/internal/domain/losses/parser"
)

const tracerName = "github.com/FACorreiaa/lince-perdas/internal/domain/losses/service"

// Options tunes a BatchService.
type Options struct {
	Workers            int                 // Parallel documents (default: GOMAXPROCS)
	KeyPolicy          aggregate.KeyPolicy // Product grouping (default: exact)
	SimilarityDistance int                 // Edit distance for duplicate-name warnings (0: fold only)
	InferMetadata      bool                // Fill empty sector/month from the reports
}

// BatchResult is the outcome of one batch.
type BatchResult struct {
	BatchID   uuid.UUID
	Metadata  model.BatchMetadata
	Records   []model.AggregateRecord
	Rows      []model.Row
	Documents []model.DocumentResult
	Warnings  []string
	// Empty is set when no document produced any item. It is not an error.
	Empty bool
}

// BatchService orchestrates parsing and aggregation of a batch.
type BatchService struct {
	parser  *parser.Parser
	metrics *metrics.Metrics
	tracer  trace.Tracer
	logger  *slog.Logger
	opts    Options
}

// NewBatchService creates a batch service. metrics may be nil.
func NewBatchService(p *parser.Parser, m *metrics.Metrics, logger *slog.Logger, opts Options) *BatchService {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if p == nil {
		p = parser.NewParser(parser.DefaultConfig(), logger)
	}
	if opts.Workers < 1 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	if opts.KeyPolicy == nil {
		opts.KeyPolicy = aggregate.ExactKey
	}
	return &BatchService{
		parser:  p,
		metrics: m,
		tracer:  otel.Tracer(tracerName),
		logger:  logger,
		opts:    opts,
	}
}

// Process parses docs and aggregates their items by product. docs must be in
// canonical order; that order decides ties in the output.
//
// Metadata is validated before any work unless InferMetadata is on, in which
// case it is validated after the inferred fields are filled in. Either way an
// invalid batch produces no result.
func (s *BatchService) Process(ctx context.Context, meta model.BatchMetadata, docs []model.Document) (*BatchResult, error) {
	ctx, span := s.tracer.Start(ctx, "losses.Process",
		trace.WithAttributes(attribute.Int("documents", len(docs))))
	defer span.End()

	meta = NormalizeMetadata(meta)
	// An inferred sector is read per section, so every record keeps the
	// department it was printed under.
	perSection := s.opts.InferMetadata && meta.Sector == ""
	accOpts := []aggregate.Option{aggregate.WithKeyPolicy(s.opts.KeyPolicy)}
	if perSection {
		accOpts = append(accOpts, aggregate.BySection())
	}

	if !s.opts.InferMetadata {
		if err := ValidateMetadata(meta); err != nil {
			span.SetStatus(codes.Error, "invalid metadata")
			return nil, fmt.Errorf("invalid batch metadata: %w", err)
		}
	}

	results, accs, err := s.parseAll(ctx, docs, accOpts)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "parse failed")
		return nil, err
	}

	if s.opts.InferMetadata {
		meta = InferMetadata(meta, results)
		if err := ValidateMetadata(meta); err != nil {
			span.SetStatus(codes.Error, "invalid metadata")
			return nil, fmt.Errorf("invalid batch metadata: %w", err)
		}
	}

	batch := aggregate.NewAccumulator(accOpts...)
	for _, acc := range accs {
		batch.Merge(acc)
	}
	records := batch.Records()

	result := &BatchResult{
		BatchID:   uuid.New(),
		Metadata:  meta,
		Records:   records,
		Rows:      Rows(records, meta),
		Documents: results,
		Empty:     len(records) == 0,
	}

	if sections := distinctSections(results); perSection && len(sections) > 1 {
		msg := fmt.Sprintf("sector taken from each report section: %s", strings.Join(sections, ", "))
		result.Warnings = append(result.Warnings, msg)
		s.logger.Warn("multiple sections in batch", "batch_id", result.BatchID, "sections", sections)
	}

	for _, r := range results {
		s.metrics.ObserveDocument(r)
		if r.NoData() {
			msg := fmt.Sprintf("%s: no data extracted", r.Name)
			result.Warnings = append(result.Warnings, msg)
			s.logger.Warn("document produced no items",
				"batch_id", result.BatchID,
				"document", r.Name,
				"logical_lines", r.LogicalLines,
				"empty_pages", r.EmptyPages,
			)
		}
	}

	for _, pair := range aggregate.SimilarNames(records, s.opts.SimilarityDistance) {
		msg := fmt.Sprintf("products %q and %q look alike and were kept apart", pair.A, pair.B)
		result.Warnings = append(result.Warnings, msg)
		s.logger.Warn("similar product names", "batch_id", result.BatchID, "a", pair.A, "b", pair.B, "distance", pair.Distance)
	}

	outcome := "ok"
	if result.Empty {
		outcome = "empty"
		s.logger.Warn("batch produced no records", "batch_id", result.BatchID, "documents", len(docs))
	}
	s.metrics.ObserveBatch(outcome, len(records))

	span.SetAttributes(
		attribute.String("batch_id", result.BatchID.String()),
		attribute.Int("records", len(records)),
	)
	s.logger.Info("batch processed",
		"batch_id", result.BatchID,
		"documents", len(docs),
		"records", len(records),
		"sector", meta.Sector,
		"month", meta.Month,
		"week", meta.Week,
	)

	return result, nil
}

// parseAll parses every document on the worker pool. Each document owns its
// result slot and accumulator, so the merge order only depends on the input
// order.
func (s *BatchService) parseAll(ctx context.Context, docs []model.Document, accOpts []aggregate.Option) ([]model.DocumentResult, []*aggregate.Accumulator, error) {
	results := make([]model.DocumentResult, len(docs))
	accs := make([]*aggregate.Accumulator, len(docs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Workers)

	for i, doc := range docs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			_, span := s.tracer.Start(gctx, "losses.ParseDocument",
				trace.WithAttributes(
					attribute.String("document", doc.Name),
					attribute.Int("pages", len(doc.Pages)),
				))
			defer span.End()

			r := s.parser.ParseDocument(i, doc)
			acc := aggregate.NewAccumulator(accOpts...)
			acc.AddAll(r.Items)

			results[i] = r
			accs[i] = acc

			span.SetAttributes(
				attribute.Int("items", len(r.Items)),
				attribute.Int("skipped", r.Skipped()),
			)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, fmt.Errorf("parse documents: %w", err)
	}
	return results, accs, nil
}

// distinctSections lists every section banner of the batch in first-seen
// order.
func distinctSections(results []model.DocumentResult) []string {
	var sections []string
	seen := make(map[string]bool)
	for _, r := range results {
		for _, name := range r.Sections {
			if !seen[name] {
				seen[name] = true
				sections = append(sections, name)
			}
		}
	}
	return sections
}

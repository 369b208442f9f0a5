package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/FACorreiaa/lince-perdas/internal/domain/losses/aggregate"
	"github.com/FACorreiaa/lince-perdas/internal/domain/losses/export"
	"github.com/FACorreiaa/lince-perdas/internal/domain/losses/extract"
	"github.com/FACorreiaa/lince-perdas/internal/domain/losses/model"
	"github.com/FACorreiaa/lince-perdas/internal/domain/losses/service"
	"github.com/FACorreiaa/lince-perdas/pkg/config"
	"github.com/FACorreiaa/lince-perdas/pkg/storage"
)

type convertFlags struct {
	sector    string
	month     string
	week      string
	format    string
	outDir    string
	file      string
	sheet     string
	keyPolicy string
	workers   int
	infer     bool
}

func newConvertCmd(a *app) *cobra.Command {
	f := &convertFlags{}

	cmd := &cobra.Command{
		Use:   "convert FILE...",
		Short: "Sum losses by product and write the sheet",
		Example: `  lince convert --sector PADARIA --month 03/2024 --week 12 relatorio1.pdf relatorio2.pdf
  lince convert --infer --week 12 --format csv --out ./saida semana12.txt`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f.apply(cmd, a.cfg)
			if err := a.cfg.Validate(); err != nil {
				return err
			}

			logger := newLogger(a.cfg.Log, cmd.ErrOrStderr())
			deps, err := InitDependencies(a.cfg, logger)
			if err != nil {
				return err
			}

			meta := model.BatchMetadata{
				Sector: a.cfg.Batch.Sector,
				Month:  a.cfg.Batch.Month,
				Week:   a.cfg.Batch.Week,
			}

			_, err = runConvert(cmd.Context(), deps, meta, args, cmd.OutOrStdout())
			// Empty and failed batches are counted too.
			if mErr := deps.WriteMetrics(); mErr != nil {
				return errors.Join(err, mErr)
			}
			return err
		},
	}

	f.bind(cmd)
	return cmd
}

// bind registers the batch and output flags shared by convert and watch.
func (f *convertFlags) bind(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&f.sector, "sector", "", "sector stamped on every row (env LINCE_SECTOR)")
	flags.StringVar(&f.month, "month", "", "month as MM/YYYY (env LINCE_MONTH)")
	flags.StringVar(&f.week, "week", "", "week number 1-53 (env LINCE_WEEK)")
	flags.StringVar(&f.format, "format", "", "output format: xlsx or csv (env OUTPUT_FORMAT)")
	flags.StringVar(&f.outDir, "out", "", "output directory (env OUTPUT_DIR)")
	flags.StringVar(&f.file, "file", "", "output file name (env OUTPUT_FILE)")
	flags.StringVar(&f.sheet, "sheet", "", "sheet name for xlsx output (env OUTPUT_SHEET)")
	flags.StringVar(&f.keyPolicy, "key-policy", "", "product grouping: exact or fold (env KEY_POLICY)")
	flags.IntVar(&f.workers, "workers", 0, "documents parsed in parallel (env WORKERS)")
	flags.BoolVar(&f.infer, "infer", false, "fill missing sector and month from the reports (env INFER_METADATA)")
}

// apply lets explicitly set flags win over the environment.
func (f *convertFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	set := cmd.Flags().Changed
	if set("sector") {
		cfg.Batch.Sector = f.sector
	}
	if set("month") {
		cfg.Batch.Month = f.month
	}
	if set("week") {
		cfg.Batch.Week = f.week
	}
	if set("infer") {
		cfg.Batch.InferMetadata = f.infer
	}
	if set("format") {
		cfg.Output.Format = f.format
	}
	if set("out") {
		cfg.Output.Dir = f.outDir
	}
	if set("file") {
		cfg.Output.File = f.file
	}
	if set("sheet") {
		cfg.Output.Sheet = f.sheet
	}
	if set("key-policy") {
		cfg.Processing.KeyPolicy = f.keyPolicy
	}
	if set("workers") {
		cfg.Processing.Workers = f.workers
	}
}

// runConvert reads paths in the given order, processes them as one batch and
// stores the sheet. An empty batch writes nothing and returns ErrNoData.
func runConvert(ctx context.Context, deps *Dependencies, meta model.BatchMetadata, paths []string, out io.Writer) (*storage.FileInfo, error) {
	for _, p := range paths {
		if !extract.Supported(p) {
			return nil, fmt.Errorf("unsupported file type: %s (expected .pdf or .txt)", p)
		}
	}

	docs, err := deps.Extractor.OpenAll(paths)
	if err != nil {
		return nil, err
	}

	result, err := deps.BatchService.Process(ctx, meta, docs)
	if err != nil {
		return nil, err
	}

	for _, w := range result.Warnings {
		fmt.Fprintf(out, "warning: %s\n", w)
	}

	if result.Empty {
		return nil, fmt.Errorf("%w from %d file(s); no sheet written", service.ErrNoData, len(paths))
	}

	var buf bytes.Buffer
	if err := deps.Writer.Write(&buf, result.Rows); err != nil {
		return nil, err
	}

	name := export.FileName(deps.Config.Output.File, deps.Writer)
	info, err := deps.Storage.Save(ctx, result.BatchID, name, deps.Writer.ContentType(), &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to save %s: %w", name, err)
	}

	qty, value := aggregate.Totals(result.Records)
	fmt.Fprintf(out, "%d product(s) from %d file(s)\n", len(result.Records), len(paths))
	fmt.Fprintf(out, "sector %s, month %s, week %s\n", result.Metadata.Sector, result.Metadata.Month, result.Metadata.Week)
	fmt.Fprintf(out, "total quantity %s, total value %s\n", qty.StringFixed(model.QuantityPlaces), value.Display())
	fmt.Fprintf(out, "batch %s\n", info.ID)
	fmt.Fprintf(out, "written to %s\n", filepath.Join(deps.Config.Output.Dir, info.Path))

	return info, nil
}

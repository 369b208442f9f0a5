package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/FACorreiaa/lince-perdas/internal/domain/losses/extract"
	"github.com/FACorreiaa/lince-perdas/internal/domain/losses/model"
	"github.com/FACorreiaa/lince-perdas/internal/domain/losses/service"
	"github.com/FACorreiaa/lince-perdas/pkg/cron"
)

const (
	watchJob     = "convert-inbox"
	processedDir = "processados"
	jobTimeout   = 30 * time.Minute
)

func newWatchCmd(a *app) *cobra.Command {
	f := &convertFlags{}
	var (
		schedule string
		inbox    string
		once     bool
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Convert every report dropped in an inbox on a schedule",
		Long: `Runs convert over all .pdf and .txt files in --inbox on a cron schedule.
Month and week default to the run date when not configured. Converted files
are moved to a "processados" subdirectory.`,
		Example: `  lince watch --inbox ./entrada --sector PADARIA --schedule "0 6 * * 1"
  lince watch --inbox ./entrada --infer --once`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f.apply(cmd, a.cfg)
			if err := a.cfg.Validate(); err != nil {
				return err
			}
			if err := cron.ValidateSchedule(schedule); err != nil {
				return err
			}

			logger := newLogger(a.cfg.Log, cmd.ErrOrStderr())
			deps, err := InitDependencies(a.cfg, logger)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			sched := cron.NewScheduler(cmd.Context(), logger, jobTimeout)
			job := func(ctx context.Context) error {
				err := convertInbox(ctx, deps, inbox, time.Now(), out)
				if mErr := deps.WriteMetrics(); mErr != nil {
					return errors.Join(err, mErr)
				}
				return err
			}
			if err := sched.Add(watchJob, schedule, job); err != nil {
				return err
			}

			if once {
				return sched.RunNow(watchJob)
			}

			sched.Start()
			fmt.Fprintf(out, "watching %s, next run %s\n", inbox, sched.Next().Format(time.RFC3339))
			<-cmd.Context().Done()
			<-sched.Stop().Done()
			return nil
		},
	}

	f.bind(cmd)
	cmd.Flags().StringVar(&schedule, "schedule", "0 6 * * 1", "cron schedule (5 fields or @daily, @every 1h, ...)")
	cmd.Flags().StringVar(&inbox, "inbox", "", "directory scanned for reports")
	cmd.Flags().BoolVar(&once, "once", false, "run a single conversion now and exit")
	_ = cmd.MarkFlagRequired("inbox")

	return cmd
}

// convertInbox converts every report in inbox as one batch, in file name
// order, then moves the inputs under processedDir. A batch with no data is
// logged and its files are still moved so they are not retried forever.
func convertInbox(ctx context.Context, deps *Dependencies, inbox string, now time.Time, out io.Writer) error {
	paths, err := inboxReports(inbox)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		deps.Logger.Info("inbox empty", "inbox", inbox)
		return nil
	}

	meta := model.BatchMetadata{
		Sector: deps.Config.Batch.Sector,
		Month:  deps.Config.Batch.Month,
		Week:   deps.Config.Batch.Week,
	}
	month, week := service.PeriodOf(now)
	if meta.Month == "" && !deps.Config.Batch.InferMetadata {
		meta.Month = month
	}
	if meta.Week == "" {
		meta.Week = week
	}

	_, err = runConvert(ctx, deps, meta, paths, out)
	switch {
	case errors.Is(err, service.ErrNoData):
		deps.Logger.Warn("inbox batch produced no data", "inbox", inbox, "files", len(paths))
	case err != nil:
		return err
	}

	return moveProcessed(inbox, paths, now)
}

func inboxReports(inbox string) ([]string, error) {
	entries, err := os.ReadDir(inbox)
	if err != nil {
		return nil, fmt.Errorf("failed to read inbox: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() || !extract.Supported(e.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(inbox, e.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

func moveProcessed(inbox string, paths []string, now time.Time) error {
	dest := filepath.Join(inbox, processedDir, now.Format("20060102-150405"))
	if err := os.MkdirAll(dest, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dest, err)
	}
	for _, p := range paths {
		if err := os.Rename(p, filepath.Join(dest, filepath.Base(p))); err != nil {
			return fmt.Errorf("failed to move %s: %w", p, err)
		}
	}
	return nil
}

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func newHistoryCmd(a *app) *cobra.Command {
	var outDir string

	// storageDeps wires only the output storage; history never parses.
	storageDeps := func() (*Dependencies, error) {
		if outDir != "" {
			a.cfg.Output.Dir = outDir
		}
		d := &Dependencies{Config: a.cfg}
		if err := d.initStorage(); err != nil {
			return nil, fmt.Errorf("failed to init storage: %w", err)
		}
		return d, nil
	}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List the sheets written to the output directory, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, err := storageDeps()
			if err != nil {
				return err
			}

			files, err := deps.Storage.List(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(files) == 0 {
				fmt.Fprintln(out, "no stored sheets")
				return nil
			}
			for _, f := range files {
				fmt.Fprintf(out, "%s  %s  %s  %d bytes\n",
					f.ID, f.CreatedAt.Local().Format("2006-01-02 15:04"), f.Path, f.Size)
			}
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&outDir, "out", "", "output directory (env OUTPUT_DIR)")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "export BATCH_ID DEST",
			Short: "Copy a stored sheet to DEST (- for stdout)",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := uuid.Parse(args[0])
				if err != nil {
					return fmt.Errorf("invalid batch id %q: %w", args[0], err)
				}
				deps, err := storageDeps()
				if err != nil {
					return err
				}

				rc, _, err := deps.Storage.Open(cmd.Context(), id)
				if err != nil {
					return err
				}
				defer rc.Close()

				if args[1] == "-" {
					_, err = io.Copy(cmd.OutOrStdout(), rc)
					return err
				}

				dst, err := os.Create(args[1])
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", args[1], err)
				}
				if _, err := io.Copy(dst, rc); err != nil {
					dst.Close()
					return fmt.Errorf("failed to write %s: %w", args[1], err)
				}
				return dst.Close()
			},
		},
		&cobra.Command{
			Use:   "rm BATCH_ID",
			Short: "Delete a stored sheet and its batch record",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := uuid.Parse(args[0])
				if err != nil {
					return fmt.Errorf("invalid batch id %q: %w", args[0], err)
				}
				deps, err := storageDeps()
				if err != nil {
					return err
				}

				info, err := deps.Storage.GetInfo(cmd.Context(), id)
				if err != nil {
					return err
				}
				if err := deps.Storage.Delete(cmd.Context(), id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", info.Path)
				return nil
			},
		},
	)

	return cmd
}

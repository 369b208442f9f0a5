// Command lince converts Lince "Perdas por Departamento" reports into a
// product-level loss sheet.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/FACorreiaa/lince-perdas/pkg/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// app carries state shared by subcommands once the root command has run.
type app struct {
	cfg *config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:          "lince",
		Short:        "Convert Lince loss reports into a product sheet",
		Long:         `Reads one or more Lince "Perdas por Departamento" reports (PDF or extracted text), sums losses by product and writes a spreadsheet stamped with sector, month and week.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			a.cfg = cfg
			return nil
		},
	}

	root.AddCommand(newConvertCmd(a), newInspectCmd(a), newWatchCmd(a), newHistoryCmd(a))
	return root
}

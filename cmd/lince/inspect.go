package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/FACorreiaa/lince-perdas/internal/domain/losses/model"
	"github.com/FACorreiaa/lince-perdas/internal/domain/losses/parser"
)

func newInspectCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect FILE",
		Short: "Show how each report line is read",
		Long:  `Prints every logical line of a report with its token classes and whether it became an item. Useful when a product is missing from the sheet.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger(a.cfg.Log, cmd.ErrOrStderr())
			deps, err := InitDependencies(a.cfg, logger)
			if err != nil {
				return err
			}

			doc, err := deps.Extractor.Open(args[0])
			if err != nil {
				return err
			}

			printTrace(cmd.OutOrStdout(), deps.Parser.Trace(doc))
			return nil
		},
	}
}

func printTrace(w io.Writer, traces []parser.LineTrace) {
	accepted := 0
	for _, tr := range traces {
		fmt.Fprintf(w, "p%d  %s\n", tr.Line.Page+1, tr.Line.Text)
		fmt.Fprintf(w, "     %s\n", describeTokens(tr.Tokens))

		if ex := tr.Extraction; ex.OK {
			accepted++
			fmt.Fprintf(w, "     -> %s | qty %s | value %s\n",
				ex.Item.Product,
				ex.Item.Quantity.StringFixed(model.QuantityPlaces),
				ex.Item.Value.String(),
			)
		} else {
			fmt.Fprintf(w, "     -> skipped (%s)\n", ex.Reason)
		}
	}
	fmt.Fprintf(w, "%d of %d line(s) accepted\n", accepted, len(traces))
}

func describeTokens(tokens []model.Token) string {
	parts := make([]string, len(tokens))
	for i, t := range tokens {
		parts[i] = t.Raw + ":" + t.Kind.String()
	}
	return strings.Join(parts, " ")
}

package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/alexanderramin/roadmapper/internal/cli/formatter"
)

func newTracesCmd(app *App) *cobra.Command {
	var limit int
	var pruneOlder time.Duration

	cmd := &cobra.Command{
		Use:   "traces",
		Short: "Show recent completion attempts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Traces == nil {
				return errors.New("tracing is disabled; set ROADMAPPER_TRACE_DB to a sqlite path")
			}
			ctx := cmd.Context()
			w := cmd.OutOrStdout()

			if pruneOlder > 0 {
				n, err := app.Traces.Prune(ctx, app.now().Add(-pruneOlder))
				if err != nil {
					return err
				}
				fmt.Fprintln(w, formatter.Dim(fmt.Sprintf("Pruned %d request(s) older than %s.", n, pruneOlder)))
			}

			sum, err := app.Traces.Summary(ctx)
			if err != nil {
				return err
			}
			calls, err := app.Traces.Recent(ctx, limit)
			if err != nil {
				return err
			}
			fmt.Fprint(w, formatter.FormatTraces(sum, calls, app.now()))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of attempts to list")
	cmd.Flags().DurationVar(&pruneOlder, "prune", 0, "Delete requests not seen for this long first (e.g. 720h)")
	return cmd
}

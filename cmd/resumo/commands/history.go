package commands

import (
	"errors"
	"fmt"
	"log/slog"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/roasbeef/resumo/internal/history"
)

// historyLimit is how many records to show.
var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recently served summaries",
	Long: `List the most recent summaries recorded in the history database,
newest first. Only metadata is stored, never the text itself.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(
		&historyLimit, "limit", "n", history.DefaultListLimit,
		"Number of records to show",
	)
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(nil)
	if err != nil {
		return err
	}
	if !cfg.History.Enabled {
		return errors.New("history is disabled (history.enabled)")
	}

	store, err := history.Open(
		cfg.History.DBPath, slog.New(slog.DiscardHandler),
	)
	if err != nil {
		return err
	}
	defer store.Close()

	records, err := store.ListRecent(cmd.Context(), historyLimit)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if outputFormat == "json" {
		return outputJSON(w, records)
	}

	if len(records) == 0 {
		fmt.Fprintln(w, "No summaries recorded.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tREQUESTED\tMETHOD\tCHARS\tSCORE\tDEGRADED")
	for _, r := range records {
		degraded := "-"
		if r.Degraded {
			degraded = r.DegradedReason
		}

		fmt.Fprintf(tw, "%s\t%s\t%s\t%d→%d\t%.2f\t%s\n",
			r.CreatedAt.Local().Format(time.DateTime), r.Requested,
			r.Method, r.InputChars, r.SummaryChars, r.OverallScore,
			degraded)
	}

	return tw.Flush()
}

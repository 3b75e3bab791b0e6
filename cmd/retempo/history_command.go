package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"retempo/internal/history"
)

func newHistoryCommand(cctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "Show recent batch runs, or the files of one run",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cctx.ensureConfig()
			if err != nil {
				return err
			}
			if cfg.Paths.HistoryDB == "" {
				return fmt.Errorf("history is disabled: no history_db configured")
			}

			store, err := history.Open(cmd.Context(), cfg.Paths.HistoryDB)
			if err != nil {
				return err
			}
			defer store.Close()

			if len(args) == 1 {
				runID, err := strconv.ParseInt(args[0], 10, 64)
				if err != nil {
					return fmt.Errorf("invalid run id %q", args[0])
				}
				return printRunFiles(cmd, store, runID)
			}
			return printRecentRuns(cmd, store, limit)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to list")

	return cmd
}

func printRecentRuns(cmd *cobra.Command, store *history.Store, limit int) error {
	runs, err := store.RecentRuns(cmd.Context(), limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded yet.")
		return nil
	}

	headers := []string{"Run", "Started", "Folder", "Target BPM", "OK", "Failed", "Skipped"}
	aligns := []columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight}
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []string{
			strconv.FormatInt(run.ID, 10),
			run.StartedAt.Local().Format("2006-01-02 15:04"),
			run.Folder,
			fmt.Sprintf("%g", run.TargetBPM),
			strconv.Itoa(run.Succeeded),
			strconv.Itoa(run.Failed),
			strconv.Itoa(run.Skipped),
		})
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable(headers, rows, aligns))
	return nil
}

func printRunFiles(cmd *cobra.Command, store *history.Store, runID int64) error {
	records, err := store.FilesForRun(cmd.Context(), runID)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No files recorded for run %d.\n", runID)
		return nil
	}

	headers := []string{"File", "Status", "BPM", "Factor", "Completed", "Detail"}
	aligns := []columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignLeft, alignLeft}
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		bpm := ""
		factor := ""
		if rec.DetectedBPM > 0 {
			bpm = fmt.Sprintf("%.1f", rec.DetectedBPM)
		}
		if rec.Factor > 0 {
			factor = fmt.Sprintf("%.3f", rec.Factor)
		}
		completed := ""
		if !rec.CompletedAt.IsZero() {
			completed = rec.CompletedAt.Local().Format(time.TimeOnly)
		}
		rows = append(rows, []string{
			baseOrEmpty(rec.Source),
			string(rec.Status),
			bpm,
			factor,
			completed,
			rec.Error,
		})
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable(headers, rows, aligns))
	return nil
}

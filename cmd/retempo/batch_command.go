package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"retempo/internal/batch"
	"retempo/internal/deps"
	"retempo/internal/history"
	"retempo/internal/services/rubberband"
	"retempo/internal/tempo"
)

func newBatchCommand(cctx *commandContext) *cobra.Command {
	var folder string
	var targetBPM int

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Retime every audio file in a folder to a target BPM",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := cfg.EnsureDirectories(); err != nil {
				return err
			}
			logger, err := cctx.logger()
			if err != nil {
				return err
			}

			for _, status := range deps.CheckBinaries(deps.Requirements(cfg)) {
				if !status.Available && !status.Optional {
					return fmt.Errorf("missing dependency %s: %s", status.Name, status.Detail)
				}
			}

			stretcher, err := rubberband.New(cfg.Stretch.Binary, cfg.Stretch.Crispness, cfg.Stretch.TimeoutSeconds)
			if err != nil {
				return err
			}
			changer, err := tempo.New(cfg.Paths.TempDir, logger, stretcher)
			if err != nil {
				return err
			}

			var opts []batch.Option
			if cfg.Paths.HistoryDB != "" {
				store, err := history.Open(cmd.Context(), cfg.Paths.HistoryDB)
				if err != nil {
					logger.Warn("history unavailable", "error", err)
				} else {
					defer store.Close()
					opts = append(opts, batch.WithRecorder(store))
				}
			}

			driver, err := batch.New(cfg, logger, changer, opts...)
			if err != nil {
				return err
			}

			summary, err := driver.Run(cmd.Context(), folder, float64(targetBPM))
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderSummary(summary))
			succeeded, failed, skipped := summary.Counts()
			fmt.Fprintf(cmd.OutOrStdout(), "%d succeeded, %d failed, %d skipped in %s\n",
				succeeded, failed, skipped, summary.Elapsed.Round(summaryElapsedPrecision))
			if failed > 0 {
				return fmt.Errorf("%d of %d files failed", failed, len(summary.Outcomes))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&folder, "folder", "f", "", "Folder containing the audio files to retime")
	cmd.Flags().IntVarP(&targetBPM, "bpm", "b", 0, "Target BPM applied to every file")
	_ = cmd.MarkFlagRequired("folder")
	_ = cmd.MarkFlagRequired("bpm")

	return cmd
}

func shortOutcomeError(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	// Keep summary cells on one line.
	if idx := strings.IndexByte(msg, '\n'); idx >= 0 {
		msg = msg[:idx]
	}
	return msg
}

func baseOrEmpty(path string) string {
	if path == "" {
		return ""
	}
	return filepath.Base(path)
}

package main

import (
	"fmt"
	"time"

	"retempo/internal/batch"
	"retempo/internal/history"
)

const summaryElapsedPrecision = 100 * time.Millisecond

func renderSummary(summary *batch.Summary) string {
	headers := []string{"File", "Status", "BPM", "Factor", "Output", "Detail"}
	aligns := []columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignLeft, alignLeft}

	rows := make([][]string, 0, len(summary.Outcomes))
	for _, outcome := range summary.Outcomes {
		bpm := ""
		factor := ""
		if outcome.DetectedBPM > 0 {
			bpm = fmt.Sprintf("%.1f", outcome.DetectedBPM)
		}
		if outcome.Factor > 0 {
			factor = fmt.Sprintf("%.3f", outcome.Factor)
		}
		detail := outcome.Reason
		if outcome.Err != nil {
			detail = shortOutcomeError(outcome.Err)
		}
		output := ""
		if outcome.Status == history.StatusCompleted {
			output = baseOrEmpty(outcome.Output)
		}
		rows = append(rows, []string{
			baseOrEmpty(outcome.Source),
			string(outcome.Status),
			bpm,
			factor,
			output,
			detail,
		})
	}
	return renderTable(headers, rows, aligns)
}

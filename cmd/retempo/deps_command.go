package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"retempo/internal/deps"
)

func newDepsCommand(cctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "deps",
		Short: "Check availability of required external binaries",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cctx.ensureConfig()
			if err != nil {
				return err
			}

			statuses := deps.CheckBinaries(deps.Requirements(cfg))
			headers := []string{"Dependency", "Command", "Status", "Detail"}
			rows := make([][]string, 0, len(statuses))
			missing := 0
			for _, status := range statuses {
				state := "available"
				detail := status.Description
				if !status.Available {
					state = "missing"
					detail = status.Detail
					if !status.Optional {
						missing++
					}
				}
				rows = append(rows, []string{status.Name, status.Command, state, detail})
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderTable(headers, rows, nil))
			if missing > 0 {
				return fmt.Errorf("%d required dependencies missing", missing)
			}
			return nil
		},
	}
}

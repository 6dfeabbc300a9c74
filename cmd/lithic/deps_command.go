package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"lithic/internal/deps"
)

func newDepsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "deps",
		Short: "Check external binaries and working directories",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			for _, line := range renderSectionHeader("Binaries", colorize) {
				fmt.Fprintln(out, line)
			}
			missing := 0
			for _, status := range deps.CheckSystem(cfg) {
				kind := statusOK
				message := status.Command
				if !status.Available {
					message = status.Detail
					if status.Optional {
						kind = statusWarn
					} else {
						kind = statusError
						missing++
					}
				}
				fmt.Fprintln(out, renderStatusLine(status.Name, kind, message, colorize))
			}

			fmt.Fprintln(out)
			for _, line := range renderSectionHeader("Directories", colorize) {
				fmt.Fprintln(out, line)
			}
			for _, result := range deps.CheckDirectories(cfg) {
				kind := statusOK
				if !result.Passed {
					kind = statusError
					missing++
				}
				fmt.Fprintln(out, renderStatusLine(result.Name, kind, fmt.Sprintf("%s (%s)", result.Path, result.Detail), colorize))
			}

			if missing > 0 {
				return fmt.Errorf("%d dependency check(s) failed", missing)
			}
			return nil
		},
	}
}

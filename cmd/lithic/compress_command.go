package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"lithic/internal/config"
	"lithic/internal/fileutil"
)

func newCompressCommand(ctx *commandContext) *cobra.Command {
	var outputPath string
	var asJSON bool
	var withDataURL bool

	cmd := &cobra.Command{
		Use:   "compress <image>",
		Short: "Compress a still image under the configured byte budget",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := config.ExpandPath(args[0])
			if err != nil {
				return fmt.Errorf("resolve source path: %w", err)
			}
			info, err := os.Stat(source)
			if err != nil {
				return fmt.Errorf("inspect source: %w", err)
			}

			p, cleanup, err := ctx.newPipeline(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			result, err := p.CompressStill(cmd.Context(), source)
			if err != nil {
				return err
			}

			if outputPath != "" {
				target, err := config.ExpandPath(outputPath)
				if err != nil {
					return fmt.Errorf("resolve output path: %w", err)
				}
				if err := fileutil.WriteFileAtomic(target, result.Asset.Data, 0o644); err != nil {
					return err
				}
			}

			if asJSON {
				payload := map[string]any{
					"source":        source,
					"media_type":    result.Asset.MediaType,
					"input_bytes":   info.Size(),
					"output_bytes":  result.Asset.Size(),
					"passthrough":   result.Passthrough,
					"met_budget":    result.MetBudget,
					"quality":       result.Quality,
					"attempts":      result.Attempts,
					"shrink_rounds": result.ShrinkRounds,
					"width":         result.Width,
					"height":        result.Height,
					"record_id":     result.RecordID,
				}
				if withDataURL {
					payload["data_url"] = result.DataURL
				}
				return writeJSON(cmd, payload)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Input:    %s (%s)\n", source, humanBytes(info.Size()))
			fmt.Fprintf(out, "Output:   %s (%s)\n", result.Asset.MediaType, humanBytes(result.Asset.Size()))
			if result.Passthrough {
				fmt.Fprintln(out, "Passthrough: original bytes returned unchanged")
			} else {
				fmt.Fprintf(out, "Quality:  %.2f after %d attempts (%d shrink rounds)\n",
					result.Quality, result.Attempts, result.ShrinkRounds)
				fmt.Fprintf(out, "Size:     %dx%d, met budget: %s\n",
					result.Width, result.Height, yesNo(result.MetBudget))
			}
			if outputPath != "" {
				fmt.Fprintf(out, "Wrote:    %s\n", outputPath)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write the compressed image to this path")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit a JSON report")
	cmd.Flags().BoolVar(&withDataURL, "data-url", false, "Include the base64 data URL in JSON output")
	return cmd
}

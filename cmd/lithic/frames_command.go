package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"lithic/internal/config"
	"lithic/internal/fileutil"
)

func newFramesCommand(ctx *commandContext) *cobra.Command {
	var outputDir string
	var asJSON bool
	var withDataURLs bool

	cmd := &cobra.Command{
		Use:   "frames <video>",
		Short: "Sample labeled keyframes from a video clip",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := config.ExpandPath(args[0])
			if err != nil {
				return fmt.Errorf("resolve source path: %w", err)
			}

			p, cleanup, err := ctx.newPipeline(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			result, err := p.SampleFrames(cmd.Context(), source)
			if err != nil {
				return err
			}

			if outputDir != "" {
				dir, err := config.ExpandPath(outputDir)
				if err != nil {
					return fmt.Errorf("resolve output dir: %w", err)
				}
				for _, frame := range result.Frames {
					base := strings.ReplaceAll(frame.Label, " ", "_")
					data, err := decodeDataURL(frame.DataURL)
					if err != nil {
						return fmt.Errorf("frame %s: %w", frame.Label, err)
					}
					thumb, err := decodeDataURL(frame.ThumbnailDataURL)
					if err != nil {
						return fmt.Errorf("frame %s thumbnail: %w", frame.Label, err)
					}
					if err := fileutil.WriteFileAtomic(filepath.Join(dir, base+".jpg"), data, 0o644); err != nil {
						return err
					}
					if err := fileutil.WriteFileAtomic(filepath.Join(dir, base+"_thumb.jpg"), thumb, 0o644); err != nil {
						return err
					}
				}
			}

			if asJSON {
				type frameReport struct {
					Label            string  `json:"label"`
					Timestamp        float64 `json:"timestamp"`
					Width            int     `json:"width"`
					Height           int     `json:"height"`
					DataURL          string  `json:"data_url,omitempty"`
					ThumbnailDataURL string  `json:"thumbnail_data_url,omitempty"`
				}
				reports := make([]frameReport, 0, len(result.Frames))
				for _, frame := range result.Frames {
					report := frameReport{
						Label:     frame.Label,
						Timestamp: frame.Timestamp,
						Width:     frame.Width,
						Height:    frame.Height,
					}
					if withDataURLs {
						report.DataURL = frame.DataURL
						report.ThumbnailDataURL = frame.ThumbnailDataURL
					}
					reports = append(reports, report)
				}
				return writeJSON(cmd, map[string]any{
					"source":           source,
					"duration_seconds": result.Duration,
					"frames":           reports,
					"record_id":        result.RecordID,
				})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Sampled %d frames from %s (%.1fs)\n", len(result.Frames), source, result.Duration)
			rows := make([][]string, 0, len(result.Frames))
			for _, frame := range result.Frames {
				rows = append(rows, []string{
					frame.Label,
					fmt.Sprintf("%.2fs", frame.Timestamp),
					fmt.Sprintf("%dx%d", frame.Width, frame.Height),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Label", "Timestamp", "Size"},
				rows,
				[]columnAlignment{alignLeft, alignRight, alignRight},
			))
			if outputDir != "" {
				fmt.Fprintf(out, "Wrote frames to %s\n", outputDir)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputDir, "dir", "d", "", "Write frame and thumbnail JPEGs into this directory")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit a JSON report")
	cmd.Flags().BoolVar(&withDataURLs, "data-url", false, "Include base64 data URLs in JSON output")
	return cmd
}

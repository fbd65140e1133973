package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"snatch/internal/api"
)

func newAddCommand(ctx *commandContext) *cobra.Command {
	var concurrency int
	var quality string

	cmd := &cobra.Command{
		Use:   "add <url> [url...]",
		Short: "Submit a batch of YouTube URLs for download",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := ctx.client().SubmitBulk(cmd.Context(), api.BulkDownloadRequest{
				URLs:        args,
				Concurrency: concurrency,
				Quality:     quality,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Queued %d download(s)\n", len(resp.Items))
			rows := make([][]string, 0, len(resp.Items))
			for _, item := range resp.Items {
				rows = append(rows, []string{item.ID, item.URL, item.Status})
			}
			fmt.Fprintln(out, renderTable([]string{"ID", "URL", "Status"}, rows))
			return nil
		},
	}

	cmd.Flags().IntVarP(&concurrency, "concurrency", "n", 0, "Parallel downloads for this batch (0 uses the daemon default)")
	cmd.Flags().StringVarP(&quality, "quality", "q", "", "Quality tier: 720p, 480p, 360p, worst, or best")
	return cmd
}

package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"snatch/internal/api"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon health, stats, and downloads",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := ctx.client()
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			health, err := client.Health(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Daemon: %s (v%s)\n\n", health.Status, health.Version)

			stats, err := client.Stats(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Total", "Queued", "Downloading", "Completed", "Failed"},
				[][]string{{
					strconv.Itoa(stats.Total),
					strconv.Itoa(stats.Queued),
					strconv.Itoa(stats.Processing),
					strconv.Itoa(stats.Completed),
					strconv.Itoa(stats.Failed),
				}},
				1, 2, 3, 4, 5,
			))

			items, err := client.ListDownloads(cmd.Context())
			if err != nil {
				return err
			}
			if len(items) == 0 {
				fmt.Fprintln(out, "\nNo downloads.")
				return nil
			}

			rows := make([][]string, 0, len(items))
			for _, item := range items {
				rows = append(rows, []string{
					item.ID,
					downloadLabel(item),
					colorizeStatus(item.Status, colorize),
					strconv.Itoa(item.Progress) + "%",
					item.Size,
				})
			}
			fmt.Fprintln(out)
			fmt.Fprintln(out, renderTable(
				[]string{"ID", "Title", "Status", "Progress", "Size"},
				rows,
				4, 5,
			))
			return nil
		},
	}
}

// downloadLabel prefers the resolved title and falls back to the URL.
func downloadLabel(item api.DownloadItem) string {
	if item.Title != "" {
		return item.Title
	}
	return item.URL
}

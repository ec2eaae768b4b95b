package main

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"reel/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent conversion jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openHistory(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			records, err := store.RecentJobs(cmd.Context(), limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(records) == 0 {
				fmt.Fprintln(out, "No conversion jobs recorded yet.")
				return nil
			}

			rows := make([][]string, 0, len(records))
			for _, record := range records {
				rows = append(rows, []string{
					filepath.Base(record.SourcePath),
					record.TargetFormat,
					record.Tier,
					record.Status,
					record.Encoder,
					yesNo(record.Hardware),
					record.FinishedAt.Local().Format("2006-01-02 15:04"),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"File", "Format", "Tier", "Status", "Encoder", "HW", "Finished"},
				rows,
			))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of rows")
	cmd.AddCommand(newHistoryOrganizeCommand(ctx, &limit))

	return cmd
}

func newHistoryOrganizeCommand(ctx *commandContext, limit *int) *cobra.Command {
	return &cobra.Command{
		Use:   "organize",
		Short: "Show recent organize passes",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openHistory(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			records, err := store.RecentOrganizes(cmd.Context(), *limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(records) == 0 {
				fmt.Fprintln(out, "No organize passes recorded yet.")
				return nil
			}

			rows := make([][]string, 0, len(records))
			for _, record := range records {
				rows = append(rows, []string{
					record.Root,
					record.Mode,
					fmt.Sprintf("%d", record.Scanned),
					fmt.Sprintf("%d", record.Moved),
					fmt.Sprintf("%d", record.Skipped),
					fmt.Sprintf("%d", record.Errors),
					yesNo(record.Cancelled),
					record.RanAt.Local().Format("2006-01-02 15:04"),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Root", "Mode", "Scanned", "Moved", "Skipped", "Errors", "Cancelled", "Ran"},
				rows,
				2, 3, 4, 5,
			))
			return nil
		},
	}
}

func openHistory(ctx *commandContext) (*history.Store, error) {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return nil, err
	}
	if !cfg.History.Enabled {
		return nil, errors.New("history is disabled in the configuration")
	}
	return history.Open(cfg)
}

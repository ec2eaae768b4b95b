package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"reel/internal/config"
	"reel/internal/services/acoustid"
)

func newIdentifyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "identify <file>",
		Short: "Identify an audio file through AcoustID fingerprinting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			client := acoustid.NewClient(cfg, logger)
			if !client.Enabled() {
				return errors.New("AcoustID is not configured; set acoustid.api_key or export ACOUSTID_API_KEY")
			}

			path, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}

			match, err := client.Identify(cmd.Context(), path)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if match == nil {
				fmt.Fprintln(out, "No AcoustID match found.")
				return nil
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Field", "Value"},
				[][]string{
					{"Recording", match.RecordingID},
					{"Title", match.Title},
					{"Artist", match.Artist},
					{"Score", fmt.Sprintf("%.2f", match.Score)},
				},
			))
			return nil
		},
	}
}

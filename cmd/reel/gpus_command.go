package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"reel/internal/gpu"
)

func newGPUsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "gpus",
		Short: "Show detected hardware encoders",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			report, err := gpu.Detect(cmd.Context(), cfg.FFmpegBinary(), logger)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			title := cases.Title(language.Und)

			if len(report.Cards) > 0 {
				rows := make([][]string, 0, len(report.Cards))
				for _, card := range report.Cards {
					rows = append(rows, []string{
						title.String(string(card.Vendor)),
						card.Description,
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Vendor", "Card"},
					rows,
				))
			}

			if !report.Available() {
				fmt.Fprintln(out, "No hardware encoders available; conversions will use software encoding.")
				return nil
			}

			rows := make([][]string, 0, len(report.Vendors))
			for _, vendor := range report.Vendors {
				candidates := gpu.Select("h264", []gpu.Vendor{vendor}, vendor)
				encoder := ""
				if len(candidates) > 0 && candidates[0].Hardware {
					encoder = candidates[0].Encoder
				}
				rows = append(rows, []string{title.String(string(vendor)), encoder})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Vendor", "H.264 Encoder"},
				rows,
			))
			return nil
		},
	}
}

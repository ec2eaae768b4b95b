package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"reel/internal/preflight"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check host readiness and external tools",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			fmt.Fprintln(out, renderSectionHeader("Host", colorize))
			host := preflight.Host(cmd.Context())
			fmt.Fprintln(out, renderStatusLine("Hostname", statusInfo, host.Hostname, colorize))
			fmt.Fprintln(out, renderStatusLine("Platform", statusInfo, host.Platform, colorize))
			fmt.Fprintln(out, renderStatusLine("Kernel", statusInfo, host.Kernel, colorize))
			fmt.Fprintln(out, renderStatusLine("Uptime", statusInfo, fmt.Sprintf("%.1f hours", host.UptimeHours), colorize))
			if host.MemoryTotal != "" {
				fmt.Fprintln(out, renderStatusLine("Memory", statusInfo,
					fmt.Sprintf("%s used of %s", host.MemoryUsed, host.MemoryTotal), colorize))
			}
			fmt.Fprintln(out)

			fmt.Fprintln(out, renderSectionHeader("Environment", colorize))
			results := preflight.Evaluate(cfg)
			for _, result := range results {
				kind := statusOK
				if !result.Passed {
					kind = statusError
				}
				fmt.Fprintln(out, renderStatusLine(result.Name, kind, result.Detail, colorize))
			}
			fmt.Fprintln(out)

			if preflight.Ready(results) {
				fmt.Fprintln(out, "Ready to convert.")
				return nil
			}
			return fmt.Errorf("environment is not ready; fix the failing checks above")
		},
	}
}

package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"reel/internal/config"
	"reel/internal/organizer"
)

func newOrganizeCommand(ctx *commandContext) *cobra.Command {
	var (
		move    bool
		dryRun  bool
		timeout int
	)

	cmd := &cobra.Command{
		Use:   "organize <directory>",
		Short: "Organize media files into year/month folders",
		Long: `Organize sorts media files under a directory into
<directory>/<year>/<month> folders based on each file's capture date.

The capture date comes from image EXIF data or video container
metadata, falling back to the file's modification time. Without --move
the command reports what would happen and changes nothing.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := config.ExpandPath(args[0])
			if err != nil {
				return err
			}
			info, err := os.Stat(root)
			if err != nil {
				return fmt.Errorf("inspect directory %q: %w", args[0], err)
			}
			if !info.IsDir() {
				return fmt.Errorf("%s is not a directory", root)
			}

			if move && dryRun {
				return errors.New("--move and --dry-run are mutually exclusive")
			}
			mode := organizer.ModeDryRun
			if move {
				mode = organizer.ModeMove
			}

			sess, cleanup, err := ctx.newSession()
			if err != nil {
				return err
			}
			defer cleanup()

			summary, err := sess.OrganizeBatch(cmd.Context(), root, mode, time.Duration(timeout)*time.Second)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			printOrganizeSummary(out, summary)
			if summary.Cancelled {
				return errors.New("organize pass was cancelled before finishing")
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&move, "move", false, "Move files instead of reporting")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report without moving (the default)")
	cmd.Flags().IntVar(&timeout, "timeout", 0, "Batch timeout in seconds (0 uses the configured default)")

	return cmd
}

func printOrganizeSummary(out io.Writer, summary *organizer.Summary) {
	rows := make([][]string, 0, len(summary.Entries))
	for _, entry := range summary.Entries {
		rows = append(rows, []string{
			entry.SourcePath,
			string(entry.DateSource),
			entry.CaptureDate.Format("2006-01-02"),
			entry.Destination,
			string(entry.Action),
			entry.Detail,
		})
	}
	if len(rows) > 0 {
		fmt.Fprintln(out, renderTable(
			[]string{"File", "Date Source", "Date", "Destination", "Action", "Detail"},
			rows,
		))
	}

	verb := "Would move"
	count := summary.Planned
	if summary.Mode == organizer.ModeMove {
		verb = "Moved"
		count = summary.Moved
	}
	fmt.Fprintf(out, "%s %d of %d media files (%d scanned, %d skipped, %d errors, %s)\n",
		verb, count, summary.Matched, summary.Scanned, summary.Skipped,
		summary.Errors, humanize.Bytes(summary.BytesMoved))
}

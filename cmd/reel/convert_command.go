package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"reel/internal/config"
	"reel/internal/encode"
	"reel/internal/gpu"
	"reel/internal/logging"
	"reel/internal/media/ffprobe"
	"reel/internal/media/formats"
	"reel/internal/services/acoustid"
	"reel/internal/session"
)

func newConvertCommand(ctx *commandContext) *cobra.Command {
	var (
		targetFormat   string
		sourceFormat   string
		quality        string
		outputDir      string
		family         string
		audioCodec     string
		framerate      string
		vendorFlag     string
		noGPU          bool
		keepMetadata   bool
		noMetadata     bool
		fingerprinting bool
	)

	cmd := &cobra.Command{
		Use:   "convert [paths...]",
		Short: "Convert media files to a target format",
		Long: `Convert audio, video, and image files to a target container.

Each argument may be a file or a directory; directories contribute
their immediate media files. Video conversions try hardware encoders
first when available and fall back to software encoding.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			target := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(targetFormat)), ".")
			if target == "" {
				return errors.New("a target format is required (--format)")
			}

			sources, err := collectSources(args, sourceFormat)
			if err != nil {
				return err
			}
			if len(sources) == 0 {
				return errors.New("no media files found in the given paths")
			}

			requests, err := buildRequests(cfg, sources, target, convertOptions{
				quality:      quality,
				outputDir:    outputDir,
				family:       family,
				audioCodec:   audioCodec,
				framerate:    framerate,
				vendor:       vendorFlag,
				noGPU:        noGPU,
				keepMetadata: keepMetadata,
				noMetadata:   noMetadata,
			})
			if err != nil {
				return err
			}

			sess, cleanup, err := ctx.newSession()
			if err != nil {
				return err
			}
			defer cleanup()

			result, err := sess.ConvertBatch(cmd.Context(), requests)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			media := probeOutputs(cmd.Context(), cfg.FFprobeBinary(), result)
			printConvertResult(out, result, media)
			if fingerprinting {
				logger, logErr := ctx.ensureLogger()
				if logErr != nil {
					return logErr
				}
				identifyOutputs(cmd, cfg, logger, result)
			}
			if result.Failed > 0 {
				return fmt.Errorf("%d of %d conversions failed", result.Failed, result.Succeeded+result.Failed)
			}
			if result.Cancelled {
				return errors.New("conversion batch was cancelled")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetFormat, "format", "f", "", "Target container extension, e.g. mp3 or mp4")
	cmd.Flags().StringVar(&sourceFormat, "from", "", "Only convert directory entries with this extension")
	cmd.Flags().StringVarP(&quality, "quality", "q", "", "Quality tier: source, 8k, 4k, high, standard, low")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Output directory (defaults next to each source)")
	cmd.Flags().StringVar(&family, "codec", "", "Video codec family: h264, h265, av1, vp9")
	cmd.Flags().StringVar(&audioCodec, "audio-codec", "", "Override the audio codec, e.g. libopus")
	cmd.Flags().StringVar(&framerate, "framerate", "", "Target framerate for video, e.g. 30")
	cmd.Flags().StringVar(&vendorFlag, "vendor", "", "Prefer a GPU vendor: nvidia, amd, intel, apple")
	cmd.Flags().BoolVar(&noGPU, "no-gpu", false, "Force software encoding")
	cmd.Flags().BoolVar(&keepMetadata, "preserve-metadata", false, "Copy source metadata to outputs")
	cmd.Flags().BoolVar(&noMetadata, "no-metadata", false, "Do not copy source metadata to outputs")
	cmd.Flags().BoolVar(&fingerprinting, "fingerprinting", false, "Identify converted audio through AcoustID")
	_ = cmd.MarkFlagRequired("format")

	return cmd
}

type convertOptions struct {
	quality      string
	outputDir    string
	family       string
	audioCodec   string
	framerate    string
	vendor       string
	noGPU        bool
	keepMetadata bool
	noMetadata   bool
}

// collectSources expands file and directory arguments into a sorted,
// de-duplicated list of media file paths. A non-empty sourceFormat
// restricts directory entries to that extension; explicit file
// arguments are always taken.
func collectSources(args []string, sourceFormat string) ([]string, error) {
	seen := make(map[string]struct{})
	var sources []string

	add := func(path string) {
		if _, ok := seen[path]; ok {
			return
		}
		seen[path] = struct{}{}
		sources = append(sources, path)
	}

	for _, arg := range args {
		path, err := config.ExpandPath(arg)
		if err != nil {
			return nil, err
		}
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("inspect path %q: %w", arg, err)
		}
		if !info.IsDir() {
			add(path)
			continue
		}
		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, fmt.Errorf("read directory %q: %w", arg, err)
		}
		want := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(sourceFormat)), ".")
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			ext := filepath.Ext(entry.Name())
			if want != "" {
				if strings.TrimPrefix(strings.ToLower(ext), ".") == want {
					add(filepath.Join(path, entry.Name()))
				}
				continue
			}
			if formats.IsMedia(ext) {
				add(filepath.Join(path, entry.Name()))
			}
		}
	}

	sort.Strings(sources)
	return sources, nil
}

func buildRequests(cfg *config.Config, sources []string, target string, opts convertOptions) ([]encode.Request, error) {
	vendorValue := opts.vendor
	if vendorValue == "" {
		vendorValue = cfg.Conversion.PreferredVendor
	}
	vendor, ok := gpu.ParseVendor(vendorValue)
	if vendorValue != "" && !ok && !strings.EqualFold(vendorValue, "auto") {
		return nil, fmt.Errorf("unknown GPU vendor %q", opts.vendor)
	}

	outputDir := opts.outputDir
	if outputDir == "" {
		outputDir = cfg.Paths.OutputDir
	}
	if outputDir != "" {
		expanded, err := config.ExpandPath(outputDir)
		if err != nil {
			return nil, err
		}
		outputDir = expanded
	}

	useGPU := cfg.Conversion.UseGPU && !opts.noGPU
	preserve := (cfg.Conversion.PreserveMetadata || opts.keepMetadata) && !opts.noMetadata

	requests := make([]encode.Request, 0, len(sources))
	for _, source := range sources {
		requests = append(requests, encode.Request{
			SourcePath:       source,
			OutputDir:        outputDir,
			TargetFormat:     target,
			Tier:             tierFor(cfg, target, opts.quality),
			VideoFamily:      opts.family,
			AudioCodec:       opts.audioCodec,
			Framerate:        opts.framerate,
			PreserveMetadata: preserve,
			UseGPU:           useGPU,
			PreferredVendor:  vendor,
		})
	}
	return requests, nil
}

// identifyOutputs runs AcoustID fingerprinting over successfully
// converted audio files. Failures only warn; identification never
// affects the batch outcome.
func identifyOutputs(cmd *cobra.Command, cfg *config.Config, logger *slog.Logger, result *session.ConvertResult) {
	out := cmd.OutOrStdout()
	client := acoustid.NewClient(cfg, logger)
	if !client.Enabled() {
		fmt.Fprintln(out, "AcoustID is not configured; skipping identification.")
		return
	}
	for _, job := range result.Jobs {
		if !job.Succeeded() || job.Kind != formats.KindAudio {
			continue
		}
		match, err := client.Identify(cmd.Context(), job.OutputPath())
		if err != nil {
			logger.Warn("fingerprint identification failed",
				logging.String("file", filepath.Base(job.OutputPath())),
				logging.Error(err))
			continue
		}
		if match == nil {
			fmt.Fprintf(out, "%s: no AcoustID match\n", filepath.Base(job.OutputPath()))
			continue
		}
		fmt.Fprintf(out, "%s: %s - %s (score %.2f)\n",
			filepath.Base(job.OutputPath()), match.Artist, match.Title, match.Score)
	}
}

// tierFor resolves the quality tier from the flag or the per-kind
// configured default.
func tierFor(cfg *config.Config, target, quality string) formats.Tier {
	if quality != "" {
		return formats.ParseTier(quality)
	}
	switch formats.KindForExtension(target) {
	case formats.KindAudio:
		return formats.ParseTier(cfg.Conversion.AudioQuality)
	case formats.KindImage:
		return formats.ParseTier(cfg.Conversion.ImageQuality)
	default:
		return formats.ParseTier(cfg.Conversion.VideoQuality)
	}
}

// probeOutputs inspects each successfully converted file and returns a
// short media description keyed by output path. Probe failures leave
// the entry out; the conversion itself already succeeded.
func probeOutputs(ctx context.Context, binary string, result *session.ConvertResult) map[string]string {
	descriptions := make(map[string]string)
	for _, job := range result.Jobs {
		if !job.Succeeded() {
			continue
		}
		probed, err := ffprobe.Inspect(ctx, binary, job.OutputPath())
		if err != nil {
			continue
		}
		descriptions[job.OutputPath()] = describeMedia(probed)
	}
	return descriptions
}

// describeMedia summarizes a probe as stream counts, duration, and
// size, e.g. "1v/2a, 3m5s, 1.0 MB".
func describeMedia(result ffprobe.Result) string {
	parts := []string{fmt.Sprintf("%dv/%da", result.VideoStreamCount(), result.AudioStreamCount())}
	if seconds := result.DurationSeconds(); seconds > 0 && !math.IsNaN(seconds) {
		rounded := time.Duration(seconds * float64(time.Second)).Round(time.Second)
		parts = append(parts, rounded.String())
	}
	if size := result.SizeBytes(); size > 0 {
		parts = append(parts, humanize.Bytes(uint64(size)))
	}
	return strings.Join(parts, ", ")
}

func printConvertResult(out io.Writer, result *session.ConvertResult, media map[string]string) {
	rows := make([][]string, 0, len(result.Jobs)+len(result.Images))
	for _, job := range result.Jobs {
		encoder := ""
		hardware := "no"
		if job.SelectedEncoder != nil {
			encoder = job.SelectedEncoder.Encoder
			hardware = yesNo(job.SelectedEncoder.Hardware)
		}
		detail := ""
		if len(job.Attempts) > 0 {
			last := job.Attempts[len(job.Attempts)-1]
			if last.Err != "" {
				detail = last.Err
			}
		}
		rows = append(rows, []string{
			filepath.Base(job.SourcePath),
			string(job.Status),
			encoder,
			hardware,
			media[job.OutputPath()],
			detail,
		})
	}
	for _, img := range result.Images {
		status := "succeeded"
		if img.Err != "" {
			status = "failed"
		}
		rows = append(rows, []string{
			filepath.Base(img.SourcePath),
			status,
			"image",
			"no",
			"",
			img.Err,
		})
	}

	fmt.Fprintln(out, renderTable(
		[]string{"File", "Status", "Encoder", "HW", "Media", "Detail"},
		rows,
	))
	fmt.Fprintf(out, "Converted %d, failed %d", result.Succeeded, result.Failed)
	if result.Cancelled {
		fmt.Fprint(out, " (cancelled)")
	}
	fmt.Fprintln(out)
}

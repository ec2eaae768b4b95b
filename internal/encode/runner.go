package encode

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"reel/internal/gpu"
	"reel/internal/logging"
	"reel/internal/media/formats"
	"reel/internal/services"
)

var commandContext = exec.CommandContext

// Option configures the runner.
type Option func(*Runner)

// WithBinary overrides the default ffmpeg binary name.
func WithBinary(binary string) Option {
	return func(r *Runner) {
		if binary != "" {
			r.binary = binary
		}
	}
}

// WithLineHandler registers a callback invoked for every ffmpeg output
// line, in order. Used to surface tool output in the activity log.
func WithLineHandler(fn func(string)) Option {
	return func(r *Runner) {
		r.onLine = fn
	}
}

// Runner executes conversion jobs against ffmpeg.
type Runner struct {
	binary string
	logger *slog.Logger
	onLine func(string)
}

// NewRunner constructs a runner. A nil logger disables logging.
func NewRunner(logger *slog.Logger, opts ...Option) *Runner {
	if logger == nil {
		logger = logging.NewNop()
	}
	r := &Runner{binary: "ffmpeg", logger: logger}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Convert runs a job to completion. Video jobs walk the encoder
// candidate list built from the detection report; audio jobs run a
// single software encode. The job's status, attempts, and selected
// encoder are updated in place. The source file is never modified.
func (r *Runner) Convert(ctx context.Context, job *Job, report gpu.Report) error {
	job.Status = StatusRunning
	job.StartedAt = time.Now()
	defer func() { job.FinishedAt = time.Now() }()

	if err := os.MkdirAll(job.OutputDir, 0o755); err != nil {
		job.Status = StatusFailed
		return services.Wrap(services.ErrFilesystem, "encode", "convert", "create output directory", err)
	}

	var err error
	switch job.Kind {
	case formats.KindAudio:
		err = r.runAudio(ctx, job)
	case formats.KindVideo:
		err = r.runVideo(ctx, job, report)
	default:
		err = services.Wrap(services.ErrValidation, "encode", "convert", "unsupported job kind "+job.Kind.String(), nil)
	}
	if err != nil {
		job.Status = StatusFailed
		return err
	}
	job.Status = StatusSucceeded
	return nil
}

// runVideo attempts each encoder candidate in order. An attempt fails
// when ffmpeg exits non-zero or its output matches a hardware failure
// signature; the next candidate is then tried. The candidate list always
// ends with a software encoder, so exhaustion means even CPU encoding
// failed.
func (r *Runner) runVideo(ctx context.Context, job *Job, report gpu.Report) error {
	if job.Override != nil {
		r.logger.Info(job.Override.Reason, logging.String("file", filepath.Base(job.SourcePath)))
		r.emit(job.Override.Reason)
	}

	detected := report.Vendors
	if !job.UseGPU {
		detected = nil
	}
	candidates := gpu.Select(job.VideoFamily, detected, job.PreferredVendor)

	var lastErr error
	for _, candidate := range candidates {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return services.Wrap(services.ErrAborted, "encode", "convert", "cancelled before trying "+candidate.Encoder, ctxErr)
		}

		r.logger.Info("starting encoder attempt",
			logging.String(logging.FieldEncoder, candidate.Encoder),
			logging.Bool("hardware", candidate.Hardware),
			logging.String("file", filepath.Base(job.SourcePath)))

		attempt := Attempt{Encoder: candidate.Encoder, Vendor: candidate.Vendor, Hardware: candidate.Hardware}
		lines, err := r.invoke(ctx, videoArgs(job, candidate))
		attempt.Lines = lines
		if err == nil && candidate.Hardware && hardwareFailure(lines) {
			err = fmt.Errorf("encoder %s reported a hardware failure", candidate.Encoder)
		}
		if err != nil {
			attempt.Err = err.Error()
		}
		job.Attempts = append(job.Attempts, attempt)

		if err == nil {
			selected := candidate
			job.SelectedEncoder = &selected
			return nil
		}
		lastErr = err
		if candidate.Hardware {
			r.logger.Warn("hardware encoding failed, advancing to next candidate",
				logging.String(logging.FieldEncoder, candidate.Encoder),
				logging.Error(err))
		}
	}
	return services.Wrap(services.ErrEncoderUnavailable, "encode", "convert",
		"all encoder candidates failed for "+filepath.Base(job.SourcePath), lastErr)
}

func (r *Runner) runAudio(ctx context.Context, job *Job) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return services.Wrap(services.ErrAborted, "encode", "convert", "cancelled before conversion", ctxErr)
	}

	attempt := Attempt{Encoder: job.AudioCodec}
	lines, err := r.invoke(ctx, audioArgs(job))
	attempt.Lines = lines
	if err != nil {
		attempt.Err = err.Error()
		job.Attempts = append(job.Attempts, attempt)
		return services.Wrap(services.ErrEncoderUnavailable, "encode", "convert",
			"audio conversion failed for "+filepath.Base(job.SourcePath), err)
	}
	job.Attempts = append(job.Attempts, attempt)
	job.SelectedEncoder = &gpu.Candidate{Encoder: job.AudioCodec}
	return nil
}

// invoke runs ffmpeg and captures combined output line by line. Lines
// are returned even on failure so callers can inspect them for failure
// signatures.
func (r *Runner) invoke(ctx context.Context, args []string) ([]string, error) {
	cmd := commandContext(ctx, r.binary, args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("stdout pipe: %w", err)
	}
	cmd.Stderr = cmd.Stdout
	if err := cmd.Start(); err != nil {
		return nil, services.Wrap(services.ErrToolMissing, "encode", "invoke", "start "+r.binary, err)
	}

	var lines []string
	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		lines = append(lines, line)
		r.emit(line)
		r.logger.Debug("ffmpeg output", logging.String("line", line))
	}
	if scanErr := scanner.Err(); scanErr != nil {
		_ = cmd.Wait()
		return lines, fmt.Errorf("read ffmpeg output: %w", scanErr)
	}
	if err := cmd.Wait(); err != nil {
		return lines, fmt.Errorf("ffmpeg exited: %w", err)
	}
	return lines, nil
}

func (r *Runner) emit(line string) {
	if r.onLine != nil {
		r.onLine(line)
	}
}

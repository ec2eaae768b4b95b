package session

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"reel/internal/config"
	"reel/internal/encode"
	"reel/internal/gpu"
	"reel/internal/history"
	"reel/internal/logging"
	"reel/internal/media/formats"
	"reel/internal/media/images"
	"reel/internal/organizer"
	"reel/internal/services"
)

// ErrBusy is returned when a worker slot already holds a running batch.
var ErrBusy = errors.New("a batch of this kind is already running")

// Session carries the shared state for one run: cached GPU detection,
// the activity log, and the two batch worker slots. It replaces any
// notion of process-global state; callers create one and pass it where
// needed.
type Session struct {
	cfg    *config.Config
	logger *slog.Logger
	runner *encode.Runner
	logs   *LogQueue
	hist   *history.Store

	detectOnce sync.Once
	report     gpu.Report
	detectErr  error

	convertSlot  chan struct{}
	organizeSlot chan struct{}
}

// Option configures a session.
type Option func(*Session)

// WithHistory attaches a journal store. Nil disables journaling.
func WithHistory(store *history.Store) Option {
	return func(s *Session) {
		s.hist = store
	}
}

// New constructs a session from configuration.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) *Session {
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Session{
		cfg:          cfg,
		logger:       logging.WithComponent(logger, "session"),
		logs:         NewLogQueue(),
		convertSlot:  make(chan struct{}, 1),
		organizeSlot: make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.runner = encode.NewRunner(logger,
		encode.WithBinary(cfg.FFmpegBinary()),
		encode.WithLineHandler(func(line string) {
			s.logs.Push("tool", line)
		}))
	return s
}

// Logs returns the session activity log.
func (s *Session) Logs() *LogQueue {
	return s.logs
}

// GPUReport returns hardware encoder detection for this session,
// probing at most once regardless of how many batches run.
func (s *Session) GPUReport(ctx context.Context) (gpu.Report, error) {
	s.detectOnce.Do(func() {
		s.report, s.detectErr = gpu.Detect(ctx, s.cfg.FFmpegBinary(), s.logger)
	})
	return s.report, s.detectErr
}

// ConvertResult aggregates one conversion batch.
type ConvertResult struct {
	Jobs      []*encode.Job
	Images    []ImageResult
	Succeeded int
	Failed    int
	// Cancelled is set when the batch stopped early; unprocessed
	// requests never produce a job.
	Cancelled bool
}

// ImageResult records one image conversion in a batch.
type ImageResult struct {
	SourcePath string
	OutputPath string
	Err        string
}

// ConvertBatch processes conversion requests strictly in order on the
// conversion slot. A second concurrent conversion batch is rejected
// with ErrBusy rather than queued.
func (s *Session) ConvertBatch(ctx context.Context, requests []encode.Request) (*ConvertResult, error) {
	select {
	case s.convertSlot <- struct{}{}:
		defer func() { <-s.convertSlot }()
	default:
		return nil, ErrBusy
	}

	report, err := s.GPUReport(ctx)
	if err != nil {
		return nil, err
	}

	result := &ConvertResult{}
	for _, req := range requests {
		if ctx.Err() != nil {
			result.Cancelled = true
			s.logs.Push("warn", "conversion batch cancelled")
			s.logger.Warn("conversion batch cancelled",
				logging.Int("processed", len(result.Jobs)+len(result.Images)))
			break
		}
		if formats.KindForExtension(req.TargetFormat) == formats.KindImage {
			s.convertImage(req, result)
			continue
		}
		s.convertFile(ctx, req, report, result)
	}
	s.logger.Info("conversion batch finished",
		logging.Int("succeeded", result.Succeeded),
		logging.Int("failed", result.Failed),
		logging.Bool("cancelled", result.Cancelled))
	return result, nil
}

func (s *Session) convertFile(ctx context.Context, req encode.Request, report gpu.Report, result *ConvertResult) {
	job, err := encode.NewJob(req)
	if err != nil {
		result.Failed++
		s.logs.Push("error", err.Error())
		return
	}
	result.Jobs = append(result.Jobs, job)

	if err := s.runner.Convert(ctx, job, report); err != nil {
		result.Failed++
		s.logs.Push("error", "failed to convert "+filepath.Base(job.SourcePath)+": "+err.Error())
		if !services.Recoverable(err) {
			result.Cancelled = result.Cancelled || errors.Is(err, services.ErrAborted)
		}
	} else {
		result.Succeeded++
		encoder := ""
		if job.SelectedEncoder != nil {
			encoder = job.SelectedEncoder.Encoder
		}
		s.logs.Push("info", "converted "+filepath.Base(job.SourcePath)+" with "+encoder)
	}
	s.recordJob(job)
}

func (s *Session) convertImage(req encode.Request, result *ConvertResult) {
	outputDir := req.OutputDir
	if outputDir == "" {
		outputDir = filepath.Dir(req.SourcePath)
	}
	record := ImageResult{SourcePath: req.SourcePath}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		record.Err = err.Error()
		result.Failed++
		result.Images = append(result.Images, record)
		s.logs.Push("error", "failed to convert "+filepath.Base(req.SourcePath)+": "+err.Error())
		return
	}
	output, err := images.Convert(req.SourcePath, outputDir, req.TargetFormat, req.Tier)
	if err != nil {
		record.Err = err.Error()
		result.Failed++
		s.logs.Push("error", "failed to convert "+filepath.Base(req.SourcePath)+": "+err.Error())
	} else {
		record.OutputPath = output
		result.Succeeded++
		s.logs.Push("info", "converted "+filepath.Base(req.SourcePath))
	}
	result.Images = append(result.Images, record)
}

// OrganizeBatch runs one organize pass on the organize slot. A timeout
// of zero means no deadline beyond the caller's context.
func (s *Session) OrganizeBatch(ctx context.Context, root string, mode organizer.Mode, timeout time.Duration) (*organizer.Summary, error) {
	select {
	case s.organizeSlot <- struct{}{}:
		defer func() { <-s.organizeSlot }()
	default:
		return nil, ErrBusy
	}

	if timeout == 0 && s.cfg.Organize.TimeoutSeconds > 0 {
		timeout = time.Duration(s.cfg.Organize.TimeoutSeconds) * time.Second
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	org := organizer.New(s.logger,
		organizer.WithFFprobeBinary(s.cfg.FFprobeBinary()),
		organizer.WithProgressEvery(s.cfg.Organize.ProgressEvery),
		organizer.WithEntryHandler(func(entry organizer.Entry) {
			s.logs.Push(string(entry.Action), entry.SourcePath)
		}))

	summary, err := org.Run(ctx, root, mode)
	if err != nil {
		return nil, err
	}
	if s.hist != nil {
		if recErr := s.hist.RecordOrganize(context.Background(), summary); recErr != nil {
			s.logger.Warn("failed to journal organize pass", logging.Error(recErr))
		}
	}
	return summary, nil
}

func (s *Session) recordJob(job *encode.Job) {
	if s.hist == nil {
		return
	}
	if err := s.hist.RecordJob(context.Background(), job); err != nil {
		s.logger.Warn("failed to journal conversion job", logging.Error(err))
	}
}

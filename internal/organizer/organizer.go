package organizer

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gofrs/flock"

	"reel/internal/fileutil"
	"reel/internal/logging"
	"reel/internal/media/formats"
	"reel/internal/services"
)

// Mode selects between reporting and moving.
type Mode string

const (
	ModeDryRun Mode = "dry-run"
	ModeMove   Mode = "move"
)

// Action is the recorded outcome for a single file.
type Action string

const (
	ActionDryRun  Action = "dry-run"
	ActionMoved   Action = "moved"
	ActionSkipped Action = "skipped"
	ActionError   Action = "error"
)

// Entry is the immutable per-file record of an organize pass.
type Entry struct {
	SourcePath  string
	CaptureDate time.Time
	DateSource  DateSource
	Destination string
	Action      Action
	Detail      string
}

// Summary aggregates one organize pass.
type Summary struct {
	Root          string
	Mode          Mode
	Scanned       int
	Matched       int
	Moved         int
	Skipped       int
	Errors        int
	Planned       int
	BytesMoved    uint64
	ExifDates     int
	MetadataDates int
	MtimeDates    int
	// Cancelled is set when the pass stopped early; entries for
	// unprocessed files are never created.
	Cancelled bool
	Entries   []Entry
}

const lockFilename = ".reel-organize.lock"

// Option configures the organizer.
type Option func(*Organizer)

// WithFFprobeBinary sets the ffprobe binary used for video metadata.
func WithFFprobeBinary(binary string) Option {
	return func(o *Organizer) {
		if binary != "" {
			o.ffprobeBinary = binary
		}
	}
}

// WithProgressEvery sets how many scanned files pass between progress
// log lines.
func WithProgressEvery(n int) Option {
	return func(o *Organizer) {
		if n > 0 {
			o.progressEvery = n
		}
	}
}

// WithEntryHandler registers a callback invoked as each entry is
// recorded, in processing order.
func WithEntryHandler(fn func(Entry)) Option {
	return func(o *Organizer) {
		o.onEntry = fn
	}
}

// Organizer runs year/month organize passes.
type Organizer struct {
	logger        *slog.Logger
	ffprobeBinary string
	progressEvery int
	onEntry       func(Entry)
}

// New constructs an organizer. A nil logger disables logging.
func New(logger *slog.Logger, opts ...Option) *Organizer {
	if logger == nil {
		logger = logging.NewNop()
	}
	o := &Organizer{
		logger:        logging.WithComponent(logger, "organizer"),
		ffprobeBinary: "ffprobe",
		progressEvery: 100,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run scans root recursively and organizes every media file found.
// Files are processed strictly in order; cancelling the context stops
// the pass between files and leaves the remainder untouched, with no
// entries recorded for them.
func (o *Organizer) Run(ctx context.Context, root string, mode Mode) (*Summary, error) {
	root = strings.TrimSpace(root)
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return nil, services.Wrap(services.ErrValidation, "organizer", "run", "directory not found: "+root, err)
	}

	if mode == ModeMove {
		lock := flock.New(filepath.Join(root, lockFilename))
		locked, lockErr := lock.TryLock()
		if lockErr != nil {
			return nil, services.Wrap(services.ErrFilesystem, "organizer", "run", "acquire organize lock", lockErr)
		}
		if !locked {
			return nil, services.Wrap(services.ErrFilesystem, "organizer", "run", "another organize pass holds the lock for "+root, nil)
		}
		defer func() {
			_ = lock.Unlock()
			_ = os.Remove(lock.Path())
		}()
	}

	summary := &Summary{Root: root, Mode: mode}
	files, err := o.scan(root, summary)
	if err != nil {
		return nil, services.Wrap(services.ErrFilesystem, "organizer", "run", "scan "+root, err)
	}
	o.logger.Info("scan complete",
		logging.Int("scanned", summary.Scanned),
		logging.Int("media", summary.Matched))

	for _, path := range files {
		if ctx.Err() != nil {
			summary.Cancelled = true
			o.logger.Warn("organize pass cancelled", logging.Int("processed", len(summary.Entries)))
			break
		}
		entry := o.process(ctx, root, path, mode)
		if entry == nil {
			continue // already in place
		}
		o.record(summary, *entry)
	}

	o.logger.Info("organize pass finished",
		logging.String("mode", string(mode)),
		logging.Int("moved", summary.Moved),
		logging.Int("skipped", summary.Skipped),
		logging.Int("errors", summary.Errors),
		logging.String("data_moved", humanize.Bytes(summary.BytesMoved)),
		logging.Bool("cancelled", summary.Cancelled))
	return summary, nil
}

// scan walks the tree and returns media file paths in walk order.
func (o *Organizer) scan(root string, summary *Summary) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		summary.Scanned++
		if o.progressEvery > 0 && summary.Scanned%o.progressEvery == 0 {
			o.logger.Info("scanning",
				logging.Int("scanned", summary.Scanned),
				logging.Int("media", summary.Matched))
		}
		if d.Name() == lockFilename {
			return nil
		}
		if !formats.IsMedia(filepath.Ext(path)) {
			return nil
		}
		summary.Matched++
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// process handles one file and returns its entry, or nil when the file
// already sits at its organized location.
func (o *Organizer) process(ctx context.Context, root, path string, mode Mode) *Entry {
	kind := formats.KindForExtension(filepath.Ext(path))
	date, source, err := o.captureDate(ctx, path, kind)
	if err != nil {
		return &Entry{SourcePath: path, Action: ActionError, Detail: err.Error()}
	}
	dest := destination(root, path, date)
	entry := &Entry{SourcePath: path, CaptureDate: date, DateSource: source, Destination: dest}

	if path == dest {
		return nil
	}
	if mode == ModeDryRun {
		entry.Action = ActionDryRun
		return entry
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		entry.Action = ActionError
		entry.Detail = err.Error()
		return entry
	}
	if _, statErr := os.Stat(dest); statErr == nil {
		entry.Action = ActionSkipped
		entry.Detail = "destination exists"
		if kind == formats.KindImage && identicalDuplicate(path, dest) {
			entry.Detail = "destination exists with identical capture data"
		}
		return entry
	}
	if err := fileutil.MoveFile(path, dest); err != nil {
		entry.Action = ActionError
		entry.Detail = err.Error()
		return entry
	}
	entry.Action = ActionMoved
	o.logger.Debug("moved file",
		logging.String("from", path),
		logging.String("to", dest),
		logging.String("date_source", string(source)))
	return entry
}

func (o *Organizer) record(summary *Summary, entry Entry) {
	summary.Entries = append(summary.Entries, entry)
	switch entry.DateSource {
	case SourceEXIF:
		summary.ExifDates++
	case SourceMetadata:
		summary.MetadataDates++
	case SourceMtime:
		summary.MtimeDates++
	}
	switch entry.Action {
	case ActionDryRun:
		summary.Planned++
	case ActionMoved:
		summary.Moved++
		if info, err := os.Stat(entry.Destination); err == nil {
			summary.BytesMoved += uint64(info.Size())
		}
	case ActionSkipped:
		summary.Skipped++
	case ActionError:
		summary.Errors++
	}
	if o.onEntry != nil {
		o.onEntry(entry)
	}
}

// identicalDuplicate reports whether source and an existing destination
// look like the same photograph: equal sizes and equal EXIF capture
// dates.
func identicalDuplicate(source, dest string) bool {
	srcInfo, err := os.Stat(source)
	if err != nil {
		return false
	}
	dstInfo, err := os.Stat(dest)
	if err != nil || srcInfo.Size() != dstInfo.Size() {
		return false
	}
	srcDate, srcOK := exifDate(source)
	dstDate, dstOK := exifDate(dest)
	return srcOK && dstOK && srcDate.Equal(dstDate)
}


package encode

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"reel/internal/gpu"
	"reel/internal/media/formats"
	"reel/internal/services"
)

// Status tracks a job through its lifecycle.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Request describes a single file conversion as submitted by the caller.
type Request struct {
	SourcePath string
	// OutputDir defaults to the source file's directory.
	OutputDir string
	// TargetFormat is the output container extension, with or without a
	// leading dot.
	TargetFormat string
	Tier         formats.Tier
	// VideoFamily is the requested codec family for video jobs. Empty
	// means h264. Ignored for audio.
	VideoFamily string
	// AudioCodec overrides the codec implied by the target container.
	// Container compatibility overrides still win.
	AudioCodec       string
	Framerate        string
	PreserveMetadata bool
	UseGPU           bool
	PreferredVendor  gpu.Vendor
}

// Attempt records one encoder invocation, successful or not.
type Attempt struct {
	Encoder  string
	Vendor   gpu.Vendor
	Hardware bool
	Lines    []string
	Err      string
}

// Job is a validated conversion unit. All derived fields (kind, codec
// family, audio codec, container override) are resolved at construction
// so the runner never re-interprets user input.
type Job struct {
	ID               string
	SourcePath       string
	OutputDir        string
	TargetFormat     string
	Kind             formats.Kind
	Tier             formats.Tier
	VideoFamily      formats.Family
	AudioCodec       string
	Framerate        string
	PreserveMetadata bool
	UseGPU           bool
	PreferredVendor  gpu.Vendor
	// Override is set when the target container forced a codec rewrite.
	Override *formats.Override
	// outputName is resolved at construction so a same-format job can
	// never point its output at its own source.
	outputName string

	Status          Status
	SelectedEncoder *gpu.Candidate
	Attempts        []Attempt
	StartedAt       time.Time
	FinishedAt      time.Time
}

// NewJob validates a request and resolves it into a runnable job.
// Container compatibility overrides are applied here, before encoder
// selection, so they appear in the job exactly once.
func NewJob(req Request) (*Job, error) {
	source := strings.TrimSpace(req.SourcePath)
	if source == "" {
		return nil, services.Wrap(services.ErrValidation, "encode", "new job", "source path required", nil)
	}
	target := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(req.TargetFormat), "."))
	if target == "" {
		return nil, services.Wrap(services.ErrValidation, "encode", "new job", "target format required", nil)
	}
	kind := formats.KindForExtension(target)
	if kind == formats.KindUnknown {
		return nil, services.Wrap(services.ErrValidation, "encode", "new job", "unsupported target format "+target, nil)
	}
	if kind == formats.KindImage {
		return nil, services.Wrap(services.ErrValidation, "encode", "new job", "image conversion is not an encoder job", nil)
	}

	outputDir := strings.TrimSpace(req.OutputDir)
	if outputDir == "" {
		outputDir = filepath.Dir(source)
	}

	job := &Job{
		ID:               uuid.NewString(),
		SourcePath:       source,
		OutputDir:        outputDir,
		TargetFormat:     target,
		Kind:             kind,
		Tier:             req.Tier,
		Framerate:        strings.TrimSpace(req.Framerate),
		PreserveMetadata: req.PreserveMetadata,
		UseGPU:           req.UseGPU,
		PreferredVendor:  req.PreferredVendor,
		Status:           StatusPending,
	}
	if job.Tier == "" {
		job.Tier = formats.TierStandard
	}

	switch kind {
	case formats.KindVideo:
		family := req.VideoFamily
		if strings.TrimSpace(family) == "" {
			family = string(formats.FamilyH264)
		}
		job.VideoFamily = formats.ParseFamily(family)
		job.AudioCodec = "aac"
	case formats.KindAudio:
		job.AudioCodec = formats.AudioCodecFor(target)
	}
	if codec := strings.TrimSpace(req.AudioCodec); codec != "" {
		job.AudioCodec = codec
	}

	if override, ok := formats.ContainerOverride(target); ok {
		job.Override = &override
		job.VideoFamily = override.VideoFamily
		job.AudioCodec = override.AudioCodec
		if override.ForceCPU {
			job.UseGPU = false
		}
	}

	base := filepath.Base(source)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" {
		stem = base
	}
	job.outputName = stem + "." + target
	if filepath.Join(job.OutputDir, job.outputName) == filepath.Clean(source) {
		// A same-format re-encode into the source directory would
		// write over its own input.
		job.outputName = stem + "_converted." + target
	}
	return job, nil
}

// OutputPath is the destination file the conversion writes.
func (j *Job) OutputPath() string {
	return filepath.Join(j.OutputDir, j.outputName)
}

// Succeeded reports whether the job finished with output written.
func (j *Job) Succeeded() bool {
	return j.Status == StatusSucceeded
}

package encode

import (
	"errors"
	"path/filepath"
	"testing"

	"reel/internal/media/formats"
	"reel/internal/services"
)

func TestNewJobAudio(t *testing.T) {
	job, err := NewJob(Request{SourcePath: "/music/track.wav", TargetFormat: "mp3", Tier: formats.TierHigh})
	if err != nil {
		t.Fatalf("NewJob: %v", err)
	}
	if job.Kind != formats.KindAudio {
		t.Fatalf("kind = %s", job.Kind)
	}
	if job.AudioCodec != "libmp3lame" {
		t.Fatalf("audio codec = %s", job.AudioCodec)
	}
	if job.OutputDir != "/music" {
		t.Fatalf("output dir = %s", job.OutputDir)
	}
	if got := job.OutputPath(); got != filepath.Join("/music", "track.mp3") {
		t.Fatalf("output path = %s", got)
	}
	if job.Status != StatusPending {
		t.Fatalf("status = %s", job.Status)
	}
	if job.ID == "" {
		t.Fatal("expected job id")
	}
}

func TestNewJobVideoDefaultsToH264(t *testing.T) {
	job, err := NewJob(Request{SourcePath: "/clips/a.avi", TargetFormat: ".mp4", UseGPU: true})
	if err != nil {
		t.Fatalf("NewJob: %v", err)
	}
	if job.Kind != formats.KindVideo {
		t.Fatalf("kind = %s", job.Kind)
	}
	if job.VideoFamily != formats.FamilyH264 {
		t.Fatalf("family = %s", job.VideoFamily)
	}
	if job.AudioCodec != "aac" {
		t.Fatalf("audio codec = %s", job.AudioCodec)
	}
	if job.Tier != formats.TierStandard {
		t.Fatalf("tier = %s", job.Tier)
	}
}

func TestNewJobWebMOverride(t *testing.T) {
	job, err := NewJob(Request{
		SourcePath:   "/clips/a.mp4",
		TargetFormat: "webm",
		VideoFamily:  "h264",
		UseGPU:       true,
	})
	if err != nil {
		t.Fatalf("NewJob: %v", err)
	}
	if job.Override == nil {
		t.Fatal("expected container override")
	}
	if job.VideoFamily != formats.FamilyVP9 {
		t.Fatalf("family = %s", job.VideoFamily)
	}
	if job.AudioCodec != "libopus" {
		t.Fatalf("audio codec = %s", job.AudioCodec)
	}
	if job.UseGPU {
		t.Fatal("override should disable hardware encoding")
	}
}

func TestNewJobNeverOutputsOverItsSource(t *testing.T) {
	job, err := NewJob(Request{SourcePath: "/music/track.mp3", TargetFormat: "mp3", Tier: formats.TierLow})
	if err != nil {
		t.Fatalf("NewJob: %v", err)
	}
	if got := job.OutputPath(); got == filepath.Clean("/music/track.mp3") {
		t.Fatalf("output path equals source: %s", got)
	}
	if got := job.OutputPath(); got != filepath.Join("/music", "track_converted.mp3") {
		t.Fatalf("output path = %s", got)
	}

	// A different output directory keeps the plain name.
	job, err = NewJob(Request{SourcePath: "/music/track.mp3", OutputDir: "/out", TargetFormat: "mp3"})
	if err != nil {
		t.Fatalf("NewJob: %v", err)
	}
	if got := job.OutputPath(); got != filepath.Join("/out", "track.mp3") {
		t.Fatalf("output path = %s", got)
	}
}

func TestNewJobRejectsBadInput(t *testing.T) {
	cases := []Request{
		{TargetFormat: "mp3"},
		{SourcePath: "/a.wav"},
		{SourcePath: "/a.wav", TargetFormat: "docx"},
		{SourcePath: "/a.png", TargetFormat: "jpg"},
	}
	for i, req := range cases {
		if _, err := NewJob(req); !errors.Is(err, services.ErrValidation) {
			t.Fatalf("case %d: expected validation error, got %v", i, err)
		}
	}
}

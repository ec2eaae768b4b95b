package encode

import (
	"context"
	"errors"
	"os/exec"
	"testing"

	"reel/internal/gpu"
	"reel/internal/logging"
	"reel/internal/media/formats"
	"reel/internal/services"
)

func videoEncoderArg(args []string) string {
	for i, arg := range args {
		if arg == "-c:v" && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}

// stubFFmpeg replaces the subprocess launcher with one that picks a
// canned behavior per invocation based on the selected video encoder.
func stubFFmpeg(t *testing.T, behavior func(encoder string, args []string) *exec.Cmd) {
	t.Helper()
	origin := commandContext
	commandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		return behavior(videoEncoderArg(args), args)
	}
	t.Cleanup(func() { commandContext = origin })
}

func TestConvertAudioUsesSoftwareEncoder(t *testing.T) {
	stubFFmpeg(t, func(_ string, _ []string) *exec.Cmd {
		return exec.Command("true")
	})

	job, err := NewJob(Request{SourcePath: "/music/sample.wav", OutputDir: t.TempDir(), TargetFormat: "mp3"})
	if err != nil {
		t.Fatalf("NewJob: %v", err)
	}
	runner := NewRunner(logging.NewNop())
	if err := runner.Convert(context.Background(), job, gpu.Report{}); err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if job.Status != StatusSucceeded {
		t.Fatalf("status = %s", job.Status)
	}
	if job.SelectedEncoder == nil {
		t.Fatal("succeeded job must record its encoder")
	}
	if job.SelectedEncoder.Hardware || job.SelectedEncoder.Vendor != "" {
		t.Fatalf("audio encoder should be software, got %+v", job.SelectedEncoder)
	}
	if job.SelectedEncoder.Encoder != "libmp3lame" {
		t.Fatalf("encoder = %s", job.SelectedEncoder.Encoder)
	}
}

func TestConvertAudioBitrateOmittedForLossless(t *testing.T) {
	var captured []string
	stubFFmpeg(t, func(_ string, args []string) *exec.Cmd {
		captured = args
		return exec.Command("true")
	})

	job, err := NewJob(Request{SourcePath: "/music/sample.wav", OutputDir: t.TempDir(), TargetFormat: "flac", Tier: formats.TierHigh})
	if err != nil {
		t.Fatalf("NewJob: %v", err)
	}
	runner := NewRunner(logging.NewNop())
	if err := runner.Convert(context.Background(), job, gpu.Report{}); err != nil {
		t.Fatalf("Convert: %v", err)
	}
	for _, arg := range captured {
		if arg == "-b:a" {
			t.Fatalf("lossless target got a bitrate cap: %v", captured)
		}
	}
}

func TestConvertVideoFallsBackToSoftware(t *testing.T) {
	stubFFmpeg(t, func(encoder string, _ []string) *exec.Cmd {
		if encoder == "h264_nvenc" {
			return exec.Command("false")
		}
		return exec.Command("true")
	})

	job, err := NewJob(Request{SourcePath: "/clips/a.avi", OutputDir: t.TempDir(), TargetFormat: "mp4", UseGPU: true})
	if err != nil {
		t.Fatalf("NewJob: %v", err)
	}
	runner := NewRunner(logging.NewNop())
	report := gpu.Report{Vendors: []gpu.Vendor{gpu.VendorNvidia}}
	if err := runner.Convert(context.Background(), job, report); err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if len(job.Attempts) != 2 {
		t.Fatalf("attempts = %d", len(job.Attempts))
	}
	if job.Attempts[0].Encoder != "h264_nvenc" || job.Attempts[0].Err == "" {
		t.Fatalf("first attempt = %+v", job.Attempts[0])
	}
	if job.SelectedEncoder == nil || job.SelectedEncoder.Encoder != "libx264" {
		t.Fatalf("selected = %+v", job.SelectedEncoder)
	}
	if job.SelectedEncoder.Hardware {
		t.Fatal("fallback encoder must be software")
	}
}

func TestConvertVideoFailureSignatureWithCleanExit(t *testing.T) {
	stubFFmpeg(t, func(encoder string, _ []string) *exec.Cmd {
		if encoder == "h264_nvenc" {
			return exec.Command("sh", "-c", "echo 'Cannot load nvcuda.dll'")
		}
		return exec.Command("true")
	})

	job, err := NewJob(Request{SourcePath: "/clips/a.avi", OutputDir: t.TempDir(), TargetFormat: "mp4", UseGPU: true})
	if err != nil {
		t.Fatalf("NewJob: %v", err)
	}
	runner := NewRunner(logging.NewNop())
	report := gpu.Report{Vendors: []gpu.Vendor{gpu.VendorNvidia}}
	if err := runner.Convert(context.Background(), job, report); err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if job.SelectedEncoder == nil || job.SelectedEncoder.Encoder != "libx264" {
		t.Fatalf("expected software fallback after signature match, got %+v", job.SelectedEncoder)
	}
}

func TestConvertVideoAllCandidatesFail(t *testing.T) {
	stubFFmpeg(t, func(_ string, _ []string) *exec.Cmd {
		return exec.Command("false")
	})

	job, err := NewJob(Request{SourcePath: "/clips/a.avi", OutputDir: t.TempDir(), TargetFormat: "mp4", UseGPU: true})
	if err != nil {
		t.Fatalf("NewJob: %v", err)
	}
	runner := NewRunner(logging.NewNop())
	report := gpu.Report{Vendors: []gpu.Vendor{gpu.VendorNvidia}}
	err = runner.Convert(context.Background(), job, report)
	if !errors.Is(err, services.ErrEncoderUnavailable) {
		t.Fatalf("expected encoder unavailable, got %v", err)
	}
	if job.Status != StatusFailed {
		t.Fatalf("status = %s", job.Status)
	}
	if job.SelectedEncoder != nil {
		t.Fatal("failed job must not record a selected encoder")
	}
	if len(job.Attempts) != 2 {
		t.Fatalf("attempts = %d", len(job.Attempts))
	}
}

func TestConvertWebMOverrideReachesInvocation(t *testing.T) {
	var captured []string
	stubFFmpeg(t, func(_ string, args []string) *exec.Cmd {
		captured = args
		return exec.Command("true")
	})

	job, err := NewJob(Request{SourcePath: "/clips/a.mp4", OutputDir: t.TempDir(), TargetFormat: "webm", VideoFamily: "h264", UseGPU: true})
	if err != nil {
		t.Fatalf("NewJob: %v", err)
	}
	runner := NewRunner(logging.NewNop())
	report := gpu.Report{Vendors: []gpu.Vendor{gpu.VendorNvidia}}
	if err := runner.Convert(context.Background(), job, report); err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if got := videoEncoderArg(captured); got != "libvpx-vp9" {
		t.Fatalf("video encoder = %s", got)
	}
	var audio string
	for i, arg := range captured {
		if arg == "-c:a" && i+1 < len(captured) {
			audio = captured[i+1]
		}
	}
	if audio != "libopus" {
		t.Fatalf("audio encoder = %s", audio)
	}
	if len(job.Attempts) != 1 {
		t.Fatalf("expected a single software attempt, got %d", len(job.Attempts))
	}
}

func TestConvertCancelledBeforeStart(t *testing.T) {
	stubFFmpeg(t, func(_ string, _ []string) *exec.Cmd {
		return exec.Command("true")
	})

	job, err := NewJob(Request{SourcePath: "/clips/a.avi", OutputDir: t.TempDir(), TargetFormat: "mp4"})
	if err != nil {
		t.Fatalf("NewJob: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runner := NewRunner(logging.NewNop())
	err = runner.Convert(ctx, job, gpu.Report{})
	if !errors.Is(err, services.ErrAborted) {
		t.Fatalf("expected aborted, got %v", err)
	}
	if len(job.Attempts) != 0 {
		t.Fatal("cancelled job must not attempt any encoder")
	}
}

func TestLineHandlerSeesToolOutput(t *testing.T) {
	stubFFmpeg(t, func(_ string, _ []string) *exec.Cmd {
		return exec.Command("sh", "-c", "echo 'frame=  100'; echo 'frame=  200'")
	})

	var lines []string
	runner := NewRunner(logging.NewNop(), WithLineHandler(func(line string) {
		lines = append(lines, line)
	}))
	job, err := NewJob(Request{SourcePath: "/music/sample.wav", OutputDir: t.TempDir(), TargetFormat: "mp3"})
	if err != nil {
		t.Fatalf("NewJob: %v", err)
	}
	if err := runner.Convert(context.Background(), job, gpu.Report{}); err != nil {
		t.Fatalf("Convert: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("handler lines = %v", lines)
	}
}

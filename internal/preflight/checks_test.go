package preflight

import (
	"testing"

	"reel/internal/testsupport"
)

func TestCheckDirectoryAccess(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("Output directory", dir)
	if !result.Passed {
		t.Fatalf("expected pass: %s", result.Detail)
	}

	missing := CheckDirectoryAccess("Output directory", dir+"/absent")
	if missing.Passed {
		t.Fatal("expected failure for missing directory")
	}
}

func TestCheckFreeSpace(t *testing.T) {
	result := CheckFreeSpace("Free space", t.TempDir())
	if result.Detail == "" {
		t.Fatal("expected detail with free space")
	}
}

func TestEvaluateWithStubbedTools(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())

	results := Evaluate(cfg)
	if len(results) == 0 {
		t.Fatal("expected results")
	}
	if !Ready(results) {
		for _, result := range results {
			if !result.Passed {
				t.Errorf("check %s failed: %s", result.Name, result.Detail)
			}
		}
		t.Fatal("expected all checks to pass")
	}
}

func TestEvaluateMissingTools(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Tools.FFmpeg = "missing-ffmpeg-binary"
	cfg.Tools.FFprobe = "missing-ffprobe-binary"

	results := Evaluate(cfg)
	if Ready(results) {
		t.Fatal("expected failure with missing tools")
	}
}

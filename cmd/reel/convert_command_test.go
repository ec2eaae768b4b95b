package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"reel/internal/encode"
	"reel/internal/media/ffprobe"
	"reel/internal/session"
)

func TestDescribeMediaSummarizesProbe(t *testing.T) {
	res := ffprobe.Result{
		Streams: []ffprobe.Stream{
			{CodecType: "video"},
			{CodecType: "audio"},
			{CodecType: "audio"},
		},
		Format: ffprobe.Format{Duration: "185.3", Size: "1048576"},
	}
	if got := describeMedia(res); got != "1v/2a, 3m5s, 1.0 MB" {
		t.Fatalf("describeMedia = %q", got)
	}

	// Missing format fields degrade to stream counts alone.
	if got := describeMedia(ffprobe.Result{}); got != "0v/0a" {
		t.Fatalf("describeMedia = %q", got)
	}
}

func TestProbeOutputsDescribesConvertedFiles(t *testing.T) {
	dir := t.TempDir()
	stub := filepath.Join(dir, "ffprobe")
	script := "#!/bin/sh\n" +
		`echo '{"streams":[{"codec_type":"audio"}],"format":{"duration":"10","size":"2048"}}'` + "\n"
	if err := os.WriteFile(stub, []byte(script), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}

	converted, err := encode.NewJob(encode.Request{SourcePath: filepath.Join(dir, "in.wav"), TargetFormat: "mp3"})
	if err != nil {
		t.Fatalf("NewJob: %v", err)
	}
	converted.Status = encode.StatusSucceeded
	failed, err := encode.NewJob(encode.Request{SourcePath: filepath.Join(dir, "bad.wav"), TargetFormat: "mp3"})
	if err != nil {
		t.Fatalf("NewJob: %v", err)
	}
	failed.Status = encode.StatusFailed
	result := &session.ConvertResult{Jobs: []*encode.Job{converted, failed}}

	media := probeOutputs(context.Background(), stub, result)
	got := media[converted.OutputPath()]
	if !strings.Contains(got, "0v/1a") || !strings.Contains(got, "10s") || !strings.Contains(got, "2.0 kB") {
		t.Fatalf("media = %q", got)
	}
	if _, ok := media[failed.OutputPath()]; ok {
		t.Fatal("failed jobs must not be probed")
	}
}

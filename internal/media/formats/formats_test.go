package formats

import (
	"testing"
)

func TestKindForExtension(t *testing.T) {
	cases := []struct {
		ext  string
		want Kind
	}{
		{".mp3", KindAudio},
		{"flac", KindAudio},
		{".MKV", KindVideo},
		{".webm", KindVideo},
		{".jpeg", KindImage},
		{"HEIC", KindImage},
		{".txt", KindUnknown},
		{"", KindUnknown},
	}
	for _, tc := range cases {
		if got := KindForExtension(tc.ext); got != tc.want {
			t.Fatalf("KindForExtension(%q) = %v, want %v", tc.ext, got, tc.want)
		}
	}
}

func TestAudioCodecFor(t *testing.T) {
	if got := AudioCodecFor("mp3"); got != "libmp3lame" {
		t.Fatalf("mp3 codec = %q", got)
	}
	if got := AudioCodecFor("OGG"); got != "libvorbis" {
		t.Fatalf("ogg codec = %q", got)
	}
	if got := AudioCodecFor("mystery"); got != "aac" {
		t.Fatalf("fallback codec = %q", got)
	}
}

func TestAudioBitrateTiers(t *testing.T) {
	if got := AudioBitrate(TierSource); got != "" {
		t.Fatalf("source tier should keep bitrate, got %q", got)
	}
	if got := AudioBitrate(TierHigh); got != "320k" {
		t.Fatalf("high tier = %q", got)
	}
	if got := AudioBitrate(TierLow); got != "128k" {
		t.Fatalf("low tier = %q", got)
	}
	if got := AudioBitrate(TierStandard); got != "192k" {
		t.Fatalf("standard tier = %q", got)
	}
}

func TestVideoQualityArgs(t *testing.T) {
	cpu := VideoQualityArgs(TierHigh, false)
	want := []string{"-vf", "scale=1920:1080", "-crf", "18"}
	if len(cpu) != len(want) {
		t.Fatalf("cpu args = %v", cpu)
	}
	for i := range want {
		if cpu[i] != want[i] {
			t.Fatalf("cpu args = %v, want %v", cpu, want)
		}
	}

	gpu := VideoQualityArgs(TierLow, true)
	found := false
	for i := 0; i+1 < len(gpu); i++ {
		if gpu[i] == "-cq" && gpu[i+1] == "28" {
			found = true
		}
	}
	if !found {
		t.Fatalf("gpu args missing -cq 28: %v", gpu)
	}

	if args := VideoQualityArgs(TierSource, false); args != nil {
		t.Fatalf("source tier should add nothing, got %v", args)
	}
}

func TestParseFamilyAliases(t *testing.T) {
	if ParseFamily("h265") != FamilyHEVC {
		t.Fatal("h265 should normalize to hevc")
	}
	if ParseFamily("AVC") != FamilyH264 {
		t.Fatal("avc should normalize to h264")
	}
	if ParseFamily("libvpx-vp9") != FamilyVP9 {
		t.Fatal("libvpx-vp9 should normalize to vp9")
	}
}

func TestContainerOverrideWebM(t *testing.T) {
	override, ok := ContainerOverride("WebM")
	if !ok {
		t.Fatal("expected webm override")
	}
	if override.VideoFamily != FamilyVP9 {
		t.Fatalf("video family = %v", override.VideoFamily)
	}
	if override.AudioCodec != "libopus" {
		t.Fatalf("audio codec = %q", override.AudioCodec)
	}
	if !override.ForceCPU {
		t.Fatal("expected GPU disabled for webm")
	}

	if _, ok := ContainerOverride("mp4"); ok {
		t.Fatal("mp4 should have no override")
	}
}

func TestLossless(t *testing.T) {
	for _, format := range []string{"flac", "wav", "WAV"} {
		if !Lossless(format) {
			t.Fatalf("%s should be lossless", format)
		}
	}
	if Lossless("mp3") {
		t.Fatal("mp3 is not lossless")
	}
}

func TestImageQuality(t *testing.T) {
	if q, ok := ImageQuality(TierHigh); !ok || q != 95 {
		t.Fatalf("high = %d,%v", q, ok)
	}
	if _, ok := ImageQuality(TierSource); ok {
		t.Fatal("source tier should report no explicit quality")
	}
}

func TestCPUEncoder(t *testing.T) {
	if CPUEncoder(FamilyHEVC) != "libx265" {
		t.Fatal("hevc CPU encoder mismatch")
	}
	if CPUEncoder(Family("made-up")) != "libx264" {
		t.Fatal("unknown family should fall back to libx264")
	}
}

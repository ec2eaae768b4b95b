package main

import (
	"strings"
	"testing"
)

func TestRenderTableRightAlignsNumericColumns(t *testing.T) {
	out := renderTable(
		[]string{"Name", "Count"},
		[][]string{{"alpha", "7"}, {"beta", "1234"}},
		1,
	)
	var alphaLine string
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "alpha") {
			alphaLine = line
		}
	}
	if alphaLine == "" {
		t.Fatalf("no row for alpha in:\n%s", out)
	}
	if !strings.Contains(alphaLine, "7 ") || strings.Contains(alphaLine, " 7  ") {
		t.Fatalf("count column not right aligned: %q", alphaLine)
	}
}

func TestRenderTablePadsShortRows(t *testing.T) {
	out := renderTable(
		[]string{"A", "B", "C"},
		[][]string{{"only"}},
	)
	if !strings.Contains(out, "only") {
		t.Fatalf("missing cell in:\n%s", out)
	}
}

func TestRenderStatusLineColorsOnlyTheTag(t *testing.T) {
	plain := renderStatusLine("FFmpeg", statusOK, "/usr/bin/ffmpeg", false)
	if strings.Contains(plain, "\x1b[") {
		t.Fatalf("uncolored line carries escape codes: %q", plain)
	}
	if !strings.Contains(plain, "ok") || !strings.Contains(plain, "/usr/bin/ffmpeg") {
		t.Fatalf("line = %q", plain)
	}

	colored := renderStatusLine("FFmpeg", statusError, "binary missing", true)
	if !strings.Contains(colored, "\x1b[31mfail\x1b[0m") {
		t.Fatalf("tag not colored: %q", colored)
	}
	if !strings.HasSuffix(colored, "binary missing") {
		t.Fatalf("message must follow the reset: %q", colored)
	}
}

func TestRenderSectionHeaderUnderlinesTitle(t *testing.T) {
	got := renderSectionHeader(" Environment ", false)
	want := "Environment\n==========="
	if got != want {
		t.Fatalf("header = %q", got)
	}
}

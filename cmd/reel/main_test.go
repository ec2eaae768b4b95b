package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type cliTestEnv struct {
	baseDir    string
	configPath string
	ffmpegPath string
}

// setupCLITestEnv writes a config pointing every path at a temp
// directory and every tool at a no-op stub.
func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	binDir := filepath.Join(base, "bin")
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		t.Fatalf("mkdir bin: %v", err)
	}
	stubs := map[string]string{
		"ffmpeg":  "#!/bin/sh\nexit 0\n",
		"ffprobe": "#!/bin/sh\nexit 0\n",
	}
	for name, body := range stubs {
		if err := os.WriteFile(filepath.Join(binDir, name), []byte(body), 0o755); err != nil {
			t.Fatalf("write stub %s: %v", name, err)
		}
	}

	configPath := filepath.Join(base, "config.toml")
	contents := fmt.Sprintf(`[paths]
log_dir = %q
history_db = %q

[tools]
ffmpeg = %q
ffprobe = %q

[logging]
level = "error"
`,
		filepath.Join(base, "logs"),
		filepath.Join(base, "history.db"),
		filepath.Join(binDir, "ffmpeg"),
		filepath.Join(binDir, "ffprobe"),
	)
	if err := os.WriteFile(configPath, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	return &cliTestEnv{
		baseDir:    base,
		configPath: configPath,
		ffmpegPath: filepath.Join(binDir, "ffmpeg"),
	}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = []string{"--config", configPath}
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected output to contain %q, got:\n%s", needle, haystack)
	}
}

func TestCLIConvertAudioFile(t *testing.T) {
	env := setupCLITestEnv(t)

	srcDir := t.TempDir()
	source := filepath.Join(srcDir, "take.wav")
	if err := os.WriteFile(source, []byte("riff"), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}

	out, _, err := runCLI(t, []string{"convert", "--format", "mp3", source}, env.configPath)
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	requireContains(t, out, "take.wav")
	requireContains(t, out, "libmp3lame")
	requireContains(t, out, "Converted 1, failed 0")
}

func TestCLIConvertRecordsHistory(t *testing.T) {
	env := setupCLITestEnv(t)

	srcDir := t.TempDir()
	source := filepath.Join(srcDir, "take.wav")
	if err := os.WriteFile(source, []byte("riff"), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}
	if _, _, err := runCLI(t, []string{"convert", "-f", "flac", source}, env.configPath); err != nil {
		t.Fatalf("convert: %v", err)
	}

	out, _, err := runCLI(t, []string{"history"}, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "take.wav")
	requireContains(t, out, "flac")
	requireContains(t, out, "succeeded")
}

func TestCLIConvertRejectsMissingFormat(t *testing.T) {
	env := setupCLITestEnv(t)
	_, _, err := runCLI(t, []string{"convert", env.baseDir}, env.configPath)
	if err == nil {
		t.Fatal("expected an error without --format")
	}
}

func TestCLIOrganizeDryRunByDefault(t *testing.T) {
	env := setupCLITestEnv(t)

	root := t.TempDir()
	source := filepath.Join(root, "song.mp3")
	if err := os.WriteFile(source, []byte("id3"), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}

	out, _, err := runCLI(t, []string{"organize", root}, env.configPath)
	if err != nil {
		t.Fatalf("organize: %v", err)
	}
	requireContains(t, out, "Would move 1")

	// Dry run must leave the file in place.
	if _, err := os.Stat(source); err != nil {
		t.Fatalf("dry run moved the source file: %v", err)
	}
}

func TestCLIOrganizeMove(t *testing.T) {
	env := setupCLITestEnv(t)

	root := t.TempDir()
	source := filepath.Join(root, "song.mp3")
	if err := os.WriteFile(source, []byte("id3"), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}

	out, _, err := runCLI(t, []string{"organize", "--move", root}, env.configPath)
	if err != nil {
		t.Fatalf("organize --move: %v", err)
	}
	requireContains(t, out, "Moved 1")
	if _, err := os.Stat(source); !os.IsNotExist(err) {
		t.Fatalf("expected source to be moved, stat err=%v", err)
	}
}

func TestCLIGPUsWithoutHardware(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"gpus"}, env.configPath)
	if err != nil {
		t.Fatalf("gpus: %v", err)
	}
	requireContains(t, out, "No hardware encoders available")
}

func TestCLIIdentifyRequiresAPIKey(t *testing.T) {
	env := setupCLITestEnv(t)
	t.Setenv("ACOUSTID_API_KEY", "")

	_, _, err := runCLI(t, []string{"identify", filepath.Join(env.baseDir, "missing.mp3")}, env.configPath)
	if err == nil || !strings.Contains(err.Error(), "AcoustID is not configured") {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

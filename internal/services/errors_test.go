package services

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestWrapTagsMarker(t *testing.T) {
	base := fmt.Errorf("exit status 1")
	err := Wrap(ErrEncoderUnavailable, "convert", "run candidate", "h264_nvenc failed", base)
	if !errors.Is(err, ErrEncoderUnavailable) {
		t.Fatalf("expected encoder marker, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped cause, got %v", err)
	}
	for _, fragment := range []string{"convert", "run candidate", "h264_nvenc failed"} {
		if !strings.Contains(err.Error(), fragment) {
			t.Fatalf("expected %q in %q", fragment, err.Error())
		}
	}
}

func TestWrapDefaultsMarker(t *testing.T) {
	err := Wrap(nil, "organize", "move", "", nil)
	if !errors.Is(err, ErrFilesystem) {
		t.Fatalf("expected filesystem default, got %v", err)
	}
}

func TestRecoverable(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{nil, true},
		{Wrap(ErrFileConflict, "organize", "move", "exists", nil), true},
		{Wrap(ErrFilesystem, "organize", "move", "perm", nil), true},
		{Wrap(ErrEncoderUnavailable, "convert", "run", "", nil), true},
		{Wrap(ErrToolMissing, "convert", "preflight", "ffmpeg", nil), false},
		{Wrap(ErrAborted, "convert", "cancel", "", nil), false},
		{Wrap(ErrValidation, "convert", "build job", "", nil), false},
	}
	for _, tc := range cases {
		if got := Recoverable(tc.err); got != tc.want {
			t.Fatalf("Recoverable(%v) = %v, want %v", tc.err, got, tc.want)
		}
	}
}

package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrToolMissing indicates an external binary is absent. Fatal for the
	// operation that needs it; never retried.
	ErrToolMissing = errors.New("external tool missing")
	// ErrEncoderUnavailable indicates one encoder candidate failed. Recovered
	// locally by advancing to the next candidate.
	ErrEncoderUnavailable = errors.New("encoder unavailable")
	// ErrFileConflict indicates the destination already exists. The file is
	// skipped and the batch continues.
	ErrFileConflict = errors.New("destination exists")
	// ErrFilesystem indicates a per-file permission or I/O failure. Recorded
	// on the entry; the batch continues.
	ErrFilesystem = errors.New("filesystem error")
	// ErrAborted indicates cooperative cancellation by the user.
	ErrAborted = errors.New("batch aborted")
	// ErrValidation indicates a malformed job or request.
	ErrValidation = errors.New("validation error")
)

// Wrap builds an error that includes operation context while tagging it with
// the provided marker for later classification. The marker should be one of
// the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrFilesystem
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Recoverable reports whether the batch should continue after err.
// Tool absence, cancellation, and validation failures stop the batch;
// everything else is confined to the file that produced it.
func Recoverable(err error) bool {
	switch {
	case err == nil:
		return true
	case errors.Is(err, ErrToolMissing), errors.Is(err, ErrAborted), errors.Is(err, ErrValidation):
		return false
	default:
		return true
	}
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}

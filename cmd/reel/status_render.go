package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// statusKind selects the tag and color for one status line.
type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

const (
	ansiReset = "\x1b[0m"
	ansiBold  = "\x1b[1m"
)

var statusTags = map[statusKind]struct {
	label string
	color string
}{
	statusInfo:  {"info", "\x1b[36m"},
	statusOK:    {"ok", "\x1b[32m"},
	statusWarn:  {"warn", "\x1b[33m"},
	statusError: {"fail", "\x1b[31m"},
}

// renderStatusLine formats one aligned "label  tag  message" line. Only
// the tag is colored, so piped output stays grep friendly.
func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	tag := statusTags[kind]
	token := fmt.Sprintf("%-4s", tag.label)
	if colorize && tag.color != "" {
		token = tag.color + token + ansiReset
	}
	return fmt.Sprintf("  %-18s %s  %s", label, token, message)
}

// renderSectionHeader returns the section title underlined to its width.
func renderSectionHeader(title string, colorize bool) string {
	title = strings.TrimSpace(title)
	line := title
	if colorize {
		line = ansiBold + line + ansiReset
	}
	return line + "\n" + strings.Repeat("=", len(title))
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}

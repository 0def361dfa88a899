package main

import (
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"

	"ttrsync/internal/preflight"
)

// checkStatus is how config validate grades one directory check.
type checkStatus struct {
	label string
	color text.Color
}

var (
	checkOK    = checkStatus{label: "OK", color: text.FgGreen}
	checkWarn  = checkStatus{label: "WARN", color: text.FgYellow}
	checkError = checkStatus{label: "ERROR", color: text.FgRed}
)

// gradeCheck maps a preflight result to its status. A missing directory is
// only a warning because the first sync creates it.
func gradeCheck(r preflight.Result) checkStatus {
	switch {
	case r.Passed:
		return checkOK
	case r.NotExist:
		return checkWarn
	default:
		return checkError
	}
}

func formatCheck(r preflight.Result, status checkStatus, colorize bool) string {
	line := fmt.Sprintf("  %-20s [%s]", r.Name+":", status.label)
	if r.Detail != "" {
		line += " " + r.Detail
	}
	if colorize {
		return status.color.Sprint(line)
	}
	return line
}

// shouldColorize reports whether writer is an interactive terminal. Summary
// tables and colors are only written there so piped output stays quiet.
func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"ttrsync/internal/syncer"
)

type syncFlags struct {
	directory string
	remove    bool
	removeSet bool
	verbose   int
	dryRun    bool
	logFormat string
}

func runSync(cmd *cobra.Command, ctx *commandContext, flags syncFlags, streams []string) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := ctx.newLogger(cmd.ErrOrStderr(), flags.verbose, flags.logFormat)
	if err != nil {
		return err
	}

	remove := cfg.Sync.Remove
	if flags.removeSet {
		remove = flags.remove
	}

	s, err := syncer.New(cfg, syncer.WithLogger(logger))
	if err != nil {
		return err
	}

	runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := s.Run(runCtx, syncer.Options{
		Streams:   streams,
		Directory: flags.directory,
		Remove:    remove,
		DryRun:    flags.dryRun,
	})
	if err != nil {
		if runCtx.Err() != nil {
			return context.Canceled
		}
		return err
	}

	out := cmd.OutOrStdout()
	if result.DryRun {
		printPlan(out, result)
		return nil
	}
	if shouldColorize(out) {
		fmt.Fprintln(out, renderSummary(result))
	}
	return nil
}

func printPlan(out io.Writer, result syncer.Result) {
	if len(result.ToDownload) == 0 && len(result.Stale) == 0 {
		fmt.Fprintf(out, "%s is up to date (%d replays)\n", result.Directory, result.Unique)
		return
	}
	rows := make([][]string, 0, len(result.ToDownload)+len(result.Stale))
	for _, path := range result.ToDownload {
		rows = append(rows, []string{"download", filepath.Base(path)})
	}
	for _, path := range result.Stale {
		rows = append(rows, []string{"remove", filepath.Base(path)})
	}
	fmt.Fprintln(out, renderTable([]string{"Action", "File"}, rows, []columnAlignment{alignLeft, alignLeft}))
	fmt.Fprintf(out, "%d to download, %d to remove in %s\n", len(result.ToDownload), len(result.Stale), result.Directory)
}

func renderSummary(result syncer.Result) string {
	rows := [][]string{
		{"Streams", strconv.Itoa(result.Streams)},
		{"Records", strconv.Itoa(result.Records)},
		{"Unique replays", strconv.Itoa(result.Unique)},
		{"Already present", strconv.Itoa(result.Unique - len(result.ToDownload))},
		{"Downloaded", fmt.Sprintf("%d (%s)", len(result.Downloaded), formatBytes(result.Bytes))},
		{"Removed", strconv.Itoa(len(result.Removed))},
		{"Rate limited", strconv.Itoa(result.RateLimited)},
		{"Elapsed", result.Duration.Round(time.Millisecond).String()},
	}
	return renderTable([]string{"Sync", result.Directory}, rows, []columnAlignment{alignLeft, alignRight})
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

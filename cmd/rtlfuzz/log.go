package main

import (
	"log/slog"
	"os"
)

// newLogger builds the process-wide slog.Logger, verbose toggling between
// debug and info level the way the teacher's --verbose flag gates its own
// stdout chatter.
func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	log := slog.New(handler)
	slog.SetDefault(log)
	return log
}

package main

import (
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

var logLevel = new(slog.LevelVar)

// setupLogging installs a tint handler on f as the default logger. Colors
// are only used when f is a terminal.
func setupLogging(f *os.File) {
	noColor := !isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd())

	handler := tint.NewHandler(colorable.NewColorable(f), &tint.Options{
		Level:      logLevel,
		TimeFormat: time.TimeOnly,
		NoColor:    noColor,
	})
	slog.SetDefault(slog.New(handler))
}

package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"

	ico "github.com/thatoddmailbox/go-icoutils"
)

// stdio names standard input for FILE arguments and standard output for -o.
const stdio = "-"

var errNoMatch = errors.New("no images matched")

func displayName(name string) string {
	if name == stdio {
		return "(standard in)"
	}
	return name
}

func readInput(cmd *cobra.Command, name string) ([]byte, error) {
	if name == stdio {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(name)
}

// forEachContainer decodes every file and hands it to fn. A file that fails
// is reported and the remaining files are still processed.
func forEachContainer(cmd *cobra.Command, files []string, fn func(name string, c *ico.Container) error) error {
	var errs *multierror.Error

	for _, file := range files {
		data, err := readInput(cmd, file)
		if err != nil {
			slog.Debug("read failed", "file", file, "err", err)
			errs = multierror.Append(errs, fmt.Errorf("%s: cannot open file", file))
			continue
		}

		name := displayName(file)
		if slog.Default().Enabled(cmd.Context(), slog.LevelDebug) {
			if cfg, err := ico.DecodeConfig(bytes.NewReader(data)); err == nil {
				slog.Debug("reading container",
					"file", name,
					"kind", cfg.Kind,
					"images", cfg.Count,
					"largest", fmt.Sprintf("%dx%d", cfg.Width, cfg.Height),
				)
			}
		}

		c, err := ico.Decode(bytes.NewReader(data))
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("%s: %w", name, err))
			continue
		}

		if err := fn(file, c); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}

	return errs.ErrorOrNil()
}

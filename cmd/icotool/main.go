// Command icotool lists, extracts and creates Windows icon and cursor files.
package main

import (
	"errors"
	"log/slog"
	"os"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"
)

var version = "0.1.0"

func newRootCmd() *cobra.Command {
	var verbose bool

	rootCmd := &cobra.Command{
		Use:           "icotool",
		Short:         "Convert and create Win32 icon (.ico) and cursor (.cur) files",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				logLevel.Set(slog.LevelDebug)
			}
		},
	}
	rootCmd.SetVersionTemplate("{{.Name}} {{.Version}}\n")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log what is being read and written")

	rootCmd.AddCommand(newListCmd(), newExtractCmd(), newCreateCmd())
	return rootCmd
}

func main() {
	setupLogging(os.Stderr)

	if err := newRootCmd().Execute(); err != nil {
		var merr *multierror.Error
		if errors.As(err, &merr) {
			for _, e := range merr.Errors {
				slog.Error(e.Error())
			}
		} else {
			slog.Error(err.Error())
		}
		os.Exit(1)
	}
}

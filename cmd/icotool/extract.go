package main

import (
	"fmt"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	ico "github.com/thatoddmailbox/go-icoutils"
)

func newExtractCmd() *cobra.Command {
	var (
		filter filterOptions
		output string
	)

	cmd := &cobra.Command{
		Use:   "extract [flags] FILE...",
		Short: "Extract images from files as PNG",
		Long: "Extract every matching image. PNG entries are written as stored,\n" +
			"bitmap entries are converted to PNG.\n\n" +
			"Without -o files are named <name>_<index>_<width>x<height>x<bits>.png\n" +
			"in the current directory. -o DIR places them in DIR, -o FILE writes to\n" +
			"FILE and -o - writes to standard output.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			criteria, err := filter.criteria(cmd.Flags())
			if err != nil {
				return err
			}

			return forEachContainer(cmd, args, func(name string, c *ico.Container) error {
				metas, err := c.Metadata()
				if err != nil {
					return err
				}

				matched := criteria.Filter(metas)
				if len(matched) == 0 {
					slog.Warn(fmt.Sprintf("%s: %v", displayName(name), errNoMatch))
					return nil
				}
				for _, m := range matched {
					if err := extractEntry(cmd, displayName(name), output, m, c.Entries[m.Index-1]); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
	filter.register(cmd.Flags())
	cmd.Flags().StringVarP(&output, "output", "o", "", "where to place extracted files")

	return cmd
}

func extractEntry(cmd *cobra.Command, inName, output string, m ico.Metadata, e ico.Entry) error {
	w, outName, err := openExtractOutput(cmd.OutOrStdout(), inName, output, m)
	if err != nil {
		return err
	}

	if e.IsPNG() {
		_, err = w.Write(e.Data)
	} else {
		img, decodeErr := ico.DecodeBitmap(e.Data)
		if decodeErr != nil {
			w.Close()
			return fmt.Errorf("failed to decode bitmap entry: %w", decodeErr)
		}
		err = png.Encode(w, img)
	}
	if err != nil {
		w.Close()
		return fmt.Errorf("%s: cannot write to file: %w", outName, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("%s: cannot write to file: %w", outName, err)
	}

	slog.Debug("extracted image", "index", m.Index, "to", outName)
	return nil
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

func openExtractOutput(stdout io.Writer, inName, output string, m ico.Metadata) (io.WriteCloser, string, error) {
	path := output
	switch {
	case output == "":
		path = extractName(inName, "", m)
	case isDir(output):
		path = extractName(inName, output, m)
	case output == stdio:
		return nopWriteCloser{stdout}, "(standard out)", nil
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, "", fmt.Errorf("%s: cannot create file: %w", path, err)
	}
	return f, path, nil
}

// extractName builds <stem>_<index>_<width>x<height>x<bits>.png, where stem
// is the base name of inName without an .ico or .cur extension.
func extractName(inName, dir string, m ico.Metadata) string {
	base := inName
	if i := strings.LastIndexAny(inName, `/\`); i >= 0 {
		base = inName[i+1:]
	}

	stem := base
	if lower := strings.ToLower(base); strings.HasSuffix(lower, ".ico") || strings.HasSuffix(lower, ".cur") {
		stem = base[:len(base)-4]
	}

	name := fmt.Sprintf("%s_%d_%dx%dx%d.png", stem, m.Index, m.Width, m.Height, m.BitDepth)
	if dir != "" {
		return filepath.Join(dir, name)
	}
	return name
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

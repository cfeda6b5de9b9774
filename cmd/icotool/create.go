package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	ico "github.com/thatoddmailbox/go-icoutils"
)

type createOptions struct {
	output   string
	raw      []string
	icon     bool
	cursor   bool
	hotspotX int
	hotspotY int
	noCompat bool
}

// createInput is one image to add, in container order.
type createInput struct {
	path    string
	raw     bool
	hotspot ico.Hotspot
}

func newCreateCmd() *cobra.Command {
	var opts createOptions

	cmd := &cobra.Command{
		Use:   "create [flags] [FILE...] [-r RAWFILE...]",
		Short: "Create an icon or cursor file from PNG files",
		Long: "Create an icon (or with --cursor a cursor) file. FILE arguments are\n" +
			"re-encoded, RAWFILE arguments are stored as PNG byte for byte. FILE\n" +
			"arguments come first in the container, followed by RAWFILE arguments.\n\n" +
			"The result is written to standard output unless -o is given.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCreate(cmd, args, &opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.output, "output", "o", "", "output file")
	flags.StringArrayVarP(&opts.raw, "raw", "r", nil, "store input file as raw PNG (\"Vista icons\")")
	flags.BoolVar(&opts.icon, "icon", false, "create an icon file (default)")
	flags.BoolVar(&opts.cursor, "cursor", false, "create a cursor file")
	flags.IntVarP(&opts.hotspotX, "hotspot-x", "X", 0, "cursor hotspot x-coordinate")
	flags.IntVarP(&opts.hotspotY, "hotspot-y", "Y", 0, "cursor hotspot y-coordinate")
	flags.BoolVar(&opts.noCompat, "no-compat-png-bitcount", false, "write PNG entry bit count from IHDR")

	return cmd
}

func (o *createOptions) inputs(files []string) ([]createInput, error) {
	if o.icon && o.cursor {
		return nil, errors.New("only one of --icon and --cursor may be specified")
	}
	if o.hotspotX < 0 {
		return nil, fmt.Errorf("invalid hotspot-x value: %d", o.hotspotX)
	}
	if o.hotspotY < 0 {
		return nil, fmt.Errorf("invalid hotspot-y value: %d", o.hotspotY)
	}

	hotspot := ico.Hotspot{X: o.hotspotX, Y: o.hotspotY}
	inputs := make([]createInput, 0, len(files)+len(o.raw))
	for _, f := range files {
		inputs = append(inputs, createInput{path: f, hotspot: hotspot})
	}
	for _, f := range o.raw {
		inputs = append(inputs, createInput{path: f, raw: true, hotspot: hotspot})
	}
	if len(inputs) == 0 {
		return nil, errors.New("missing file argument")
	}
	return inputs, nil
}

func (o *createOptions) kind() ico.ResourceKind {
	if o.cursor && !o.icon {
		return ico.KindCursor
	}
	return ico.KindIcon
}

func runCreate(cmd *cobra.Command, files []string, opts *createOptions) error {
	inputs, err := opts.inputs(files)
	if err != nil {
		return err
	}

	toStdout := opts.output == "" || opts.output == stdio
	stdout := cmd.OutOrStdout()
	if toStdout && isTerminal(stdout) {
		return errors.New("refusing to write binary data to terminal (use -o FILE)")
	}

	kind := opts.kind()
	images, err := encodeInputs(cmd, kind, inputs)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	enc := &ico.Encoder{Kind: kind, PNGBitCountFromHeader: opts.noCompat}
	if err := enc.Encode(&buf, images); err != nil {
		return err
	}

	if toStdout {
		if _, err := stdout.Write(buf.Bytes()); err != nil {
			return fmt.Errorf("cannot write output: %w", err)
		}
		return nil
	}

	if isDir(opts.output) {
		return fmt.Errorf("%s: is a directory", opts.output)
	}
	if err := os.WriteFile(opts.output, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("%s: cannot write file: %w", opts.output, err)
	}
	slog.Debug("created container", "file", opts.output, "kind", kind, "images", len(images))
	return nil
}

// encodeInputs stops at the first input that cannot be read or encoded.
func encodeInputs(cmd *cobra.Command, kind ico.ResourceKind, inputs []createInput) ([]ico.Image, error) {
	enc := &ico.ImageEncoder{}
	images := make([]ico.Image, 0, len(inputs))

	for _, in := range inputs {
		data, err := readInput(cmd, in.path)
		if err != nil {
			return nil, fmt.Errorf("%s: cannot open file", in.path)
		}

		var img ico.Image
		if in.raw {
			img, err = enc.Raw(data, in.hotspot)
		} else {
			img, err = enc.Encode(kind, data, in.hotspot)
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", displayName(in.path), err)
		}

		slog.Debug("added image",
			"file", displayName(in.path),
			"raw", in.raw,
			"size", fmt.Sprintf("%dx%d", img.Width, img.Height),
			"bits", img.BitDepth,
		)
		images = append(images, img)
	}

	return images, nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

package main

import (
	"fmt"

	"github.com/aarondl/opt/omit"
	"github.com/spf13/pflag"

	ico "github.com/thatoddmailbox/go-icoutils"
)

// filterOptions holds the match flags shared by list and extract.
type filterOptions struct {
	index       int
	width       int
	height      int
	paletteSize int
	bitDepth    int
	hotspotX    int
	hotspotY    int
	iconOnly    bool
	cursorOnly  bool
}

// register adds the filter flags. -h selects the height, so help is
// declared first without a shorthand and cobra does not add its own.
func (o *filterOptions) register(flags *pflag.FlagSet) {
	flags.Bool("help", false, "help for this command")
	flags.IntVarP(&o.index, "index", "i", 0, "match index of image (first is 1)")
	flags.IntVarP(&o.width, "width", "w", 0, "match width of image")
	flags.IntVarP(&o.height, "height", "h", 0, "match height of image")
	flags.IntVarP(&o.paletteSize, "palette-size", "p", 0, "match number of colors in palette (or 0)")
	flags.IntVarP(&o.bitDepth, "bit-depth", "b", 0, "match number of bits per pixel")
	flags.IntVarP(&o.hotspotX, "hotspot-x", "X", 0, "match cursor hotspot x-coordinate")
	flags.IntVarP(&o.hotspotY, "hotspot-y", "Y", 0, "match cursor hotspot y-coordinate")
	flags.BoolVar(&o.iconOnly, "icon", false, "match icons only")
	flags.BoolVar(&o.cursorOnly, "cursor", false, "match cursors only")
}

// criteria converts the flags that were given on the command line.
func (o *filterOptions) criteria(flags *pflag.FlagSet) (ico.Criteria, error) {
	c := ico.Criteria{
		IconOnly:   o.iconOnly,
		CursorOnly: o.cursorOnly,
	}

	fields := []struct {
		name  string
		value int
		dst   *omit.Val[int]
	}{
		{"index", o.index, &c.Index},
		{"width", o.width, &c.Width},
		{"height", o.height, &c.Height},
		{"palette-size", o.paletteSize, &c.PaletteSize},
		{"bit-depth", o.bitDepth, &c.BitDepth},
		{"hotspot-x", o.hotspotX, &c.HotspotX},
		{"hotspot-y", o.hotspotY, &c.HotspotY},
	}
	for _, f := range fields {
		if !flags.Changed(f.name) {
			continue
		}
		if f.value < 0 {
			return ico.Criteria{}, fmt.Errorf("invalid %s value: %d", f.name, f.value)
		}
		*f.dst = omit.From(f.value)
	}

	if err := c.Validate(); err != nil {
		return ico.Criteria{}, fmt.Errorf("only one of --icon and --cursor may be specified")
	}
	return c, nil
}

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	ico "github.com/thatoddmailbox/go-icoutils"
)

func newListCmd() *cobra.Command {
	var filter filterOptions

	cmd := &cobra.Command{
		Use:   "list [flags] FILE...",
		Short: "Print a list of images in files",
		Long: "Print one line per matching image. Each line is written as the flags\n" +
			"that select exactly that image.",
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
					return errNoMatch
				}
				for _, m := range matched {
					fmt.Fprintln(cmd.OutOrStdout(), formatListLine(m))
				}
				return nil
			})
		},
	}
	filter.register(cmd.Flags())

	return cmd
}

func formatListLine(m ico.Metadata) string {
	var b strings.Builder
	fmt.Fprintf(&b, "--%s --index=%d --width=%d --height=%d --bit-depth=%d --palette-size=%d",
		m.Kind, m.Index, m.Width, m.Height, m.BitDepth, m.PaletteSize)
	if m.Kind == ico.KindCursor {
		fmt.Fprintf(&b, " --hotspot-x=%d --hotspot-y=%d", m.Hotspot.X, m.Hotspot.Y)
	}
	return b.String()
}

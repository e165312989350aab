// SPDX-License-Identifier: MIT
package cmd

import (
	"fmt"
	"strings"

	"spectro/internal/palette"
	"spectro/internal/spectrogram"

	"github.com/spf13/cobra"
)

func newPaletteCommand(opts *options) *cobra.Command {
	var (
		strip string
		size  string
	)

	cmd := &cobra.Command{
		Use:   "palette [preset or gradient]",
		Short: "Print a gradient in serialized form, optionally as a strip image",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			spec := opts.cfg.Spectrogram.Gradient
			if len(args) == 1 {
				spec = args[0]
			}
			g, err := palette.Resolve(spec)
			if err != nil {
				return err
			}

			fmt.Fprintln(opts.out, palette.Format(g))
			fmt.Fprintf(opts.out, "presets: %s\n", strings.Join(palette.PresetNames(), ", "))

			if strip == "" {
				return nil
			}
			w, h, err := parseSize(size)
			if err != nil {
				return err
			}
			format, err := spectrogram.FormatFromPath(strip)
			if err != nil {
				return err
			}
			if err := spectrogram.WriteFile(strip, palette.Strip(g, w, h), format); err != nil {
				return err
			}
			fmt.Fprintf(opts.out, "Wrote %s\n", strip)
			return nil
		},
	}

	cmd.Flags().StringVar(&strip, "strip", "", "Write the gradient as a PNG or BMP strip")
	cmd.Flags().StringVar(&size, "size", "256x16", "Strip size, WIDTHxHEIGHT")
	return cmd
}

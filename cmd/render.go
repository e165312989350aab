// SPDX-License-Identifier: MIT
package cmd

import (
	"context"
	"fmt"
	"image"
	"path/filepath"
	"strings"

	"spectro/internal/audio"
	"spectro/internal/spectrogram"

	"github.com/spf13/cobra"
	"golang.org/x/image/font"
)

type renderFlags struct {
	output   string
	format   string
	width    int
	height   int
	gradient string
	axis     string
	window   string
	scaler   string
	hop      int
	scaleTo  string
	labels   bool
	font     string
	fontSize float64
}

func newRenderCommand(opts *options) *cobra.Command {
	var f renderFlags

	cmd := &cobra.Command{
		Use:   "render <audio file>",
		Short: "Render a WAV, MP3 or FLAC file into a spectrogram image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd.Context(), opts, f, args[0])
		},
	}

	cmd.Flags().StringVarP(&f.output, "output", "o", "",
		"Output image. Default is the input name with the format's extension")
	cmd.Flags().StringVar(&f.format, "format", "",
		"Image format, png or bmp. Default follows the output extension")
	cmd.Flags().IntVar(&f.width, "width", 0, "Resample the image to this many columns")
	cmd.Flags().IntVar(&f.height, "height", 0, "Frequency rows (overrides spectrogram.height)")
	cmd.Flags().StringVarP(&f.gradient, "gradient", "g", "", "Preset name or serialized gradient")
	cmd.Flags().StringVar(&f.axis, "axis", "", "Row layout: linear, log or octave")
	cmd.Flags().StringVar(&f.window, "window", "", "FFT window function")
	cmd.Flags().StringVar(&f.scaler, "scaler", "", "Magnitude scaler: linear, decibel or exaggerated")
	cmd.Flags().IntVar(&f.hop, "hop", 0, "Samples between frames. Default is half the FFT size")
	cmd.Flags().StringVar(&f.scaleTo, "scale-to", "", "Resample the image to WIDTHxHEIGHT")
	cmd.Flags().BoolVar(&f.labels, "labels", false, "Add a frequency scale on the left")
	cmd.Flags().StringVar(&f.font, "font", "", "TrueType font for --labels. Default is a built-in bitmap font")
	cmd.Flags().Float64Var(&f.fontSize, "font-size", 12, "Label size in points when --font is set")
	return cmd
}

func runRender(ctx context.Context, opts *options, f renderFlags, input string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := opts.cfg
	if f.height > 0 {
		cfg.Spectrogram.Height = f.height
	}
	if f.gradient != "" {
		cfg.Spectrogram.Gradient = f.gradient
	}
	if f.axis != "" {
		cfg.Spectrogram.Axis = f.axis
	}
	if f.window != "" {
		cfg.Analysis.FFTWindow = f.window
	}
	if f.scaler != "" {
		cfg.Analysis.Scaler = f.scaler
	}
	if f.hop > 0 {
		cfg.Spectrogram.Hop = f.hop
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	format, output, err := resolveOutput(input, f.output, f.format)
	if err != nil {
		return err
	}

	fileOpts, err := cfg.FileOptions()
	if err != nil {
		return err
	}
	lut, err := cfg.LUT()
	if err != nil {
		return err
	}
	scaler, err := cfg.Scaler()
	if err != nil {
		return err
	}

	dec, err := audio.OpenDecoder(input)
	if err != nil {
		return err
	}
	defer dec.Close()

	img, err := spectrogram.RenderFile(ctx, dec, fileOpts, lut, scaler)
	if err != nil {
		return fmt.Errorf("render %s: %w", input, err)
	}

	switch {
	case f.scaleTo != "":
		w, h, err := parseSize(f.scaleTo)
		if err != nil {
			return err
		}
		img = spectrogram.Scale(img, w, h)
	case f.width > 0 && f.width != img.Bounds().Dx():
		img = spectrogram.Scale(img, f.width, img.Bounds().Dy())
	}

	if f.labels {
		ro := fileOpts.Options
		ro.SampleRate = float64(dec.SampleRate())
		if img, err = annotate(img, ro, f); err != nil {
			return err
		}
	}

	if err := spectrogram.WriteFile(output, img, format); err != nil {
		return err
	}
	b := img.Bounds()
	fmt.Fprintf(opts.out, "Wrote %s (%dx%d)\n", output, b.Dx(), b.Dy())
	return nil
}

func annotate(img *image.NRGBA, ro spectrogram.Options, f renderFlags) (*image.NRGBA, error) {
	ticks, err := spectrogram.FrequencyTicks(ro, img.Bounds().Dy())
	if err != nil {
		return nil, err
	}
	var face font.Face
	if f.font != "" {
		if face, err = spectrogram.LoadFace(f.font, f.fontSize); err != nil {
			return nil, err
		}
		defer face.Close()
	}
	return spectrogram.Annotate(img, ticks, face), nil
}

// resolveOutput settles the output path and format from whichever of the
// two the user gave.
func resolveOutput(input, output, format string) (spectrogram.Format, string, error) {
	switch {
	case format != "":
		f, err := spectrogram.ParseFormat(format)
		if err != nil {
			return "", "", err
		}
		if output == "" {
			output = strings.TrimSuffix(input, filepath.Ext(input)) + "." + string(f)
		}
		return f, output, nil
	case output != "":
		f, err := spectrogram.FormatFromPath(output)
		return f, output, err
	default:
		return spectrogram.FormatPNG, strings.TrimSuffix(input, filepath.Ext(input)) + ".png", nil
	}
}

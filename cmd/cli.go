// SPDX-License-Identifier: MIT
//
// Package cmd wires the spectro command line: the root command owns the
// configuration file and log level, subcommands do the work.
package cmd

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"spectro/internal/config"
	"spectro/internal/log"
	"spectro/pkg/build"

	"github.com/spf13/cobra"
)

// options holds the flags shared by every subcommand.
type options struct {
	configPath string
	verbose    bool

	cfg *config.Config
	out io.Writer
}

// Execute runs the command line with args.
func Execute(info build.Info, args []string) error {
	root := NewRootCommand(info)
	root.SetArgs(args)
	return root.Execute()
}

// NewRootCommand builds the command tree.
func NewRootCommand(info build.Info) *cobra.Command {
	opts := &options{out: os.Stdout}

	rootCmd := &cobra.Command{
		Use:           info.Name,
		Short:         "Render audio into colored spectrograms, offline or live",
		Version:       info.String(),
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd:   true,
			DisableDescriptions: true,
			DisableNoDescFlag:   true,
			HiddenDefaultCmd:    true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			opts.out = cmd.OutOrStdout()
			cfg, err := config.LoadConfig(opts.configPath)
			if err != nil {
				return err
			}
			if opts.verbose {
				cfg.Debug = true
			}
			log.SetLevel(cfg.Level())
			opts.cfg = cfg
			return nil
		},
	}

	// Display help message
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})

	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "f", "",
		fmt.Sprintf("Configuration file. Default is ./%s when present", config.DefaultFile))
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false,
		"Show verbose output")

	rootCmd.AddCommand(
		newRenderCommand(opts),
		newLiveCommand(opts),
		newDevicesCommand(opts),
		newPaletteCommand(opts),
	)
	return rootCmd
}

// parseSize parses "WIDTHxHEIGHT".
func parseSize(s string) (width, height int, err error) {
	ws, hs, ok := strings.Cut(strings.ToLower(s), "x")
	if !ok {
		return 0, 0, fmt.Errorf("size '%s' is not WIDTHxHEIGHT", s)
	}
	if width, err = strconv.Atoi(ws); err != nil {
		return 0, 0, fmt.Errorf("size '%s': %w", s, err)
	}
	if height, err = strconv.Atoi(hs); err != nil {
		return 0, 0, fmt.Errorf("size '%s': %w", s, err)
	}
	if width < 1 || height < 1 || width > config.MaxImageSize || height > config.MaxImageSize {
		return 0, 0, fmt.Errorf("size '%s' is out of range", s)
	}
	return width, height, nil
}

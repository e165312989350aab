// SPDX-License-Identifier: MIT
package cmd

import (
	"fmt"
	"os"

	"spectro/internal/audio"
	"spectro/internal/tui"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// interactive reports whether the picker can take over the terminal.
func interactive() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

func newDevicesCommand(opts *options) *cobra.Command {
	var plain bool

	cmd := &cobra.Command{
		Use:     "devices",
		Aliases: []string{"list"},
		Short:   "List audio devices or pick an input interactively",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := audio.Initialize(); err != nil {
				return err
			}
			defer audio.Terminate()

			if plain || !interactive() {
				return audio.ListDevices(opts.out)
			}

			gradient, err := opts.cfg.Gradient()
			if err != nil {
				return err
			}
			sel, ok, err := tui.PickDevice(gradient)
			if err != nil {
				return err
			}
			if !ok {
				return nil
			}
			fmt.Fprintf(opts.out, "Selected %q\n\naudio:\n  input_device: %d\n  sample_rate: %g\n",
				sel.Name, sel.DeviceID, sel.SampleRate)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&plain, "plain", "p", false, "Print the device table instead of opening the picker (implied without a terminal)")
	return cmd
}

// SPDX-License-Identifier: MIT
package cmd

import (
	"earshot/internal/audio"
	"earshot/internal/tui"

	"github.com/spf13/cobra"
)

func newDevicesCmd(_ *options) *cobra.Command {
	var plain bool

	cmd := &cobra.Command{
		Use:     "devices",
		Aliases: []string{"list"},
		Short:   "List available audio devices",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !plain {
				return tui.StartDeviceListUI(loadDevices)
			}
			devices, err := loadDevices()
			if err != nil {
				return err
			}
			audio.ListDevices(cmd.OutOrStdout(), devices)
			return nil
		},
	}

	cmd.Flags().BoolVar(&plain, "plain", false, "Print the list instead of opening the picker")
	return cmd
}

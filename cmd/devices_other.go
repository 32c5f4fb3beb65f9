//go:build !linux

package cmd

import (
	"github.com/bnema/inputhook/hook"
	"github.com/spf13/cobra"
)

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List the input devices the Linux backend would hook",
	RunE: func(cmd *cobra.Command, args []string) error {
		return hook.NotSupported("device selection is only available with the evdev backend")
	},
}

func init() {
	rootCmd.AddCommand(devicesCmd)
}

//go:build linux

package cmd

import (
	"fmt"

	"github.com/bnema/inputhook/internal/config"
	"github.com/bnema/inputhook/internal/logger"
	"github.com/bnema/inputhook/internal/ui"
	"github.com/bnema/inputhook/platform/evdev"
	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var devicesSelect bool

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List the input devices the Linux backend would hook",
	Long: `List keyboard and pointer devices under /dev/input. With --select, choose
the devices to hook interactively and store them in the config file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Get()
		devices, err := evdev.ListDevices(cfg.Evdev.Exclude)
		if err != nil {
			return err
		}
		if len(devices) == 0 {
			return fmt.Errorf("no input devices found (are you in the input group?)")
		}

		if !devicesSelect {
			rows := make([][]string, 0, len(devices))
			configured := make(map[string]bool, len(cfg.Evdev.Devices))
			for _, p := range cfg.Evdev.Devices {
				configured[p] = true
			}
			for _, d := range devices {
				mark := ""
				if configured[d.Path] {
					mark = ui.IconSuccess
				}
				rows = append(rows, []string{d.Path, d.Name, d.Kind(), mark})
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Table([]string{"PATH", "NAME", "KIND", "CONFIGURED"}, rows))
			return nil
		}

		selected, err := selectDevices(devices, cfg.Evdev.Devices)
		if err != nil {
			return err
		}
		if err := config.SetDevices(selected); err != nil {
			return err
		}
		logger.Infof("Saved %d device(s) to %s", len(selected), config.GetConfigPath())
		return nil
	},
}

func selectDevices(devices []evdev.DeviceInfo, current []string) ([]string, error) {
	options := make([]huh.Option[string], len(devices))
	for i, dev := range devices {
		options[i] = huh.NewOption(fmt.Sprintf("%s (%s) %s", dev.Name, dev.Kind(), dev.Path), dev.Path)
	}

	selected := append([]string(nil), current...)
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title("Select Input Devices").
				Description("Devices to hook. Select none to autodetect.").
				Options(options...).
				Value(&selected),
		),
	)

	if err := form.Run(); err != nil {
		return nil, fmt.Errorf("device selection cancelled: %w", err)
	}
	return selected, nil
}

func init() {
	devicesCmd.Flags().BoolVar(&devicesSelect, "select", false, "choose devices interactively and save them")
	rootCmd.AddCommand(devicesCmd)
}

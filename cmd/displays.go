package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/bnema/inputhook/display"
	"github.com/bnema/inputhook/internal/ui"
	"github.com/spf13/cobra"
)

var displaysJSON bool

// displaysOutput is the --json document.
type displaysOutput struct {
	Displays []display.Info         `json:"displays"`
	Settings *display.SystemSettings `json:"settings,omitempty"`
	Error    string                 `json:"error,omitempty"`
}

var displaysCmd = &cobra.Command{
	Use:     "displays",
	Aliases: []string{"monitors"},
	Short:   "List displays and input system settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := newBackend()
		if err != nil {
			return err
		}
		displays, err := b.Displays()
		settings, settingsErr := b.SystemSettings()

		out := cmd.OutOrStdout()
		if displaysJSON {
			doc := displaysOutput{Displays: displays}
			if err != nil {
				doc.Error = err.Error()
			}
			if settingsErr == nil {
				doc.Settings = &settings
			}
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(doc)
		}

		if err != nil {
			return fmt.Errorf("failed to query displays: %w", err)
		}
		writeDisplays(out, displays)
		if settingsErr == nil {
			fmt.Fprintln(out)
			writeSettings(out, settings)
		}
		return nil
	},
}

func init() {
	displaysCmd.Flags().BoolVar(&displaysJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(displaysCmd)
}

func writeDisplays(w io.Writer, displays []display.Info) {
	if len(displays) == 0 {
		fmt.Fprintln(w, ui.SubtleStyle.Render("No displays detected"))
		return
	}
	rows := make([][]string, 0, len(displays))
	for _, d := range displays {
		primary := ""
		if d.IsPrimary {
			primary = ui.IconPrimary
		}
		refresh := "-"
		if d.RefreshRate > 0 {
			refresh = fmt.Sprintf("%.0f Hz", d.RefreshRate)
		}
		rows = append(rows, []string{
			strconv.FormatUint(uint64(d.ID), 10),
			d.Name,
			d.Bounds.String(),
			strconv.FormatFloat(d.ScaleFactor, 'g', -1, 64),
			refresh,
			primary,
		})
	}
	fmt.Fprintln(w, ui.Table([]string{"ID", "NAME", "BOUNDS", "SCALE", "REFRESH", "PRIMARY"}, rows))
}

func writeSettings(w io.Writer, s display.SystemSettings) {
	rows := [][]string{
		{"Keyboard repeat rate", optional(s.KeyboardRepeatRate, "%d")},
		{"Keyboard repeat delay", optional(s.KeyboardRepeatDelay, "%d ms")},
		{"Mouse sensitivity", optional(s.MouseSensitivity, "%.2f")},
		{"Mouse acceleration", optional(s.MouseAcceleration, "%t")},
		{"Acceleration threshold", optional(s.MouseAccelerationThreshold, "%.2f")},
		{"Double-click time", optional(s.DoubleClickTime, "%d ms")},
		{"Keyboard layout", optional(s.KeyboardLayout, "%s")},
	}
	fmt.Fprintln(w, ui.Table([]string{"SETTING", "VALUE"}, rows))
}

func optional[T any](v *T, format string) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf(format, *v)
}

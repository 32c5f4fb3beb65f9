package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/bnema/inputhook/channel"
	"github.com/bnema/inputhook/event"
	"github.com/spf13/cobra"
)

var (
	grabBlock    []string
	grabButtons  []string
	grabJSON     bool
	grabDuration time.Duration
)

var grabCmd = &cobra.Command{
	Use:   "grab",
	Short: "Block selected keys or buttons and print events",
	Long: `Hook input in grab mode. Events for the keys given with --block and the
buttons given with --block-button are consumed; everything else passes
through to the system.`,
	Example: `  inputhook grab --block KeyQ,CapsLock
  inputhook grab --block-button Middle --duration 30s`,
	RunE: func(cmd *cobra.Command, args []string) error {
		keys, err := parseKeys(grabBlock)
		if err != nil {
			return err
		}
		buttons, err := parseButtons(grabButtons)
		if err != nil {
			return err
		}
		if len(keys) == 0 && len(buttons) == 0 {
			return fmt.Errorf("nothing to block: use --block or --block-button")
		}

		b, err := newBackend()
		if err != nil {
			return err
		}

		ctx, cancel := signalContext(grabDuration)
		defer cancel()

		rx, h, err := channel.GrabContext(ctx, b, channelCapacity(), blockFilter(keys, buttons), hookOptions()...)
		if err != nil {
			return fmt.Errorf("failed to start grab: %w", err)
		}
		defer h.Close()

		out := newEventPrinter(cmd.OutOrStdout(), grabJSON, false)
		for ev := range rx.C() {
			if err := out.print(ev); err != nil {
				return err
			}
		}
		return h.Err()
	},
}

func init() {
	grabCmd.Flags().StringSliceVar(&grabBlock, "block", nil, "keys to consume, e.g. KeyQ,F1")
	grabCmd.Flags().StringSliceVar(&grabButtons, "block-button", nil, "mouse buttons to consume, e.g. Middle")
	grabCmd.Flags().BoolVar(&grabJSON, "json", false, "print events as JSON lines")
	grabCmd.Flags().DurationVar(&grabDuration, "duration", 0, "stop after this long (0 = until interrupted)")
	rootCmd.AddCommand(grabCmd)
}

func parseKeys(names []string) (map[event.Key]bool, error) {
	keys := make(map[event.Key]bool, len(names))
	for _, name := range names {
		k, err := event.ParseKey(strings.TrimSpace(name))
		if err != nil {
			return nil, err
		}
		keys[k] = true
	}
	return keys, nil
}

func parseButtons(names []string) (map[event.Button]bool, error) {
	buttons := make(map[event.Button]bool, len(names))
	for _, name := range names {
		var btn event.Button
		if err := btn.UnmarshalText([]byte(strings.TrimSpace(name))); err != nil {
			return nil, err
		}
		buttons[btn] = true
	}
	return buttons, nil
}

// blockFilter passes every event except those for the given keys and
// buttons.
func blockFilter(keys map[event.Key]bool, buttons map[event.Button]bool) channel.Filter {
	return func(ev event.Event) bool {
		if k, ok := ev.Key(); ok && keys[k] {
			return false
		}
		if btn, ok := ev.Button(); ok && buttons[btn] {
			return false
		}
		return true
	}
}

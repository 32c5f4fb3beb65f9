package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/bnema/inputhook/channel"
	"github.com/bnema/inputhook/internal/logger"
	"github.com/bnema/inputhook/internal/ui"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Show held modifiers, buttons and recent events in a live view",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			return fmt.Errorf("keys needs a terminal, use 'inputhook listen' when piping output")
		}

		b, err := newBackend()
		if err != nil {
			return err
		}
		rx, h, err := channel.Listen(b, channelCapacity(), hookOptions()...)
		if err != nil {
			return fmt.Errorf("failed to start hook: %w", err)
		}
		defer h.Close()

		// Log lines would tear the full-screen view.
		logger.SetOutput(io.Discard)
		defer logger.SetOutput(os.Stderr)

		return ui.RunKeys(rx.C())
	},
}

func init() {
	rootCmd.AddCommand(keysCmd)
}

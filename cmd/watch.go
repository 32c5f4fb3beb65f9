package cmd

import (
	"context"
	"errors"
	"strings"

	"github.com/bnema/inputhook/event"
	"github.com/bnema/inputhook/internal/stream"
	"github.com/spf13/cobra"
)

var (
	watchKey        string
	watchKnownHosts string
	watchInsecure   bool
	watchUser       string
	watchJSON       bool
	watchMotion     bool
)

var watchCmd = &cobra.Command{
	Use:   "watch <host:port | ws://host:port/events>",
	Short: "Print events streamed by a remote 'inputhook serve'",
	Example: `  inputhook watch desk.local:52526
  inputhook watch ws://desk.local:8080/events --json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := signalContext(0)
		defer cancel()

		out := newEventPrinter(cmd.OutOrStdout(), watchJSON, watchMotion)
		target := args[0]

		var err error
		if strings.HasPrefix(target, "ws://") || strings.HasPrefix(target, "wss://") {
			err = stream.WatchWebSocket(ctx, target, func(ev event.Event) error { return out.print(ev) })
		} else {
			err = stream.Watch(ctx, stream.ClientConfig{
				Addr:       target,
				User:       watchUser,
				KeyPath:    watchKey,
				KnownHosts: watchKnownHosts,
				Insecure:   watchInsecure,
			}, func(ev event.Event) error { return out.print(ev) })
		}
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	},
}

func init() {
	watchCmd.Flags().StringVarP(&watchKey, "identity", "i", "", "SSH private key (default ~/.ssh/id_ed25519 or id_rsa)")
	watchCmd.Flags().StringVar(&watchKnownHosts, "known-hosts", "", "known_hosts file (default ~/.ssh/known_hosts)")
	watchCmd.Flags().BoolVar(&watchInsecure, "insecure", false, "skip host key verification")
	watchCmd.Flags().StringVarP(&watchUser, "user", "u", "", "SSH user name")
	watchCmd.Flags().BoolVar(&watchJSON, "json", false, "print events as JSON lines")
	watchCmd.Flags().BoolVar(&watchMotion, "motion", false, "include mouse motion events")
	rootCmd.AddCommand(watchCmd)
}

package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/bnema/inputhook/channel"
	"github.com/bnema/inputhook/event"
	"github.com/bnema/inputhook/internal/logger"
	"github.com/bnema/inputhook/internal/ui"
	"github.com/spf13/cobra"
)

var (
	listenJSON     bool
	listenDuration time.Duration
	listenMotion   bool
)

var listenCmd = &cobra.Command{
	Use:   "listen",
	Short: "Print input events until interrupted",
	Long: `Hook keyboard and mouse input without blocking it and print every event.
Motion events are hidden unless --motion is set.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := newBackend()
		if err != nil {
			return err
		}

		ctx, cancel := signalContext(listenDuration)
		defer cancel()

		rx, h, err := channel.ListenContext(ctx, b, channelCapacity(), hookOptions()...)
		if err != nil {
			return fmt.Errorf("failed to start hook: %w", err)
		}
		defer h.Close()

		out := newEventPrinter(cmd.OutOrStdout(), listenJSON, listenMotion)
		for ev := range rx.C() {
			if err := out.print(ev); err != nil {
				return err
			}
		}

		if n := rx.Dropped(); n > 0 {
			logger.Warnf("Dropped %d events while the output was busy", n)
		}
		return h.Err()
	},
}

func init() {
	listenCmd.Flags().BoolVar(&listenJSON, "json", false, "print events as JSON lines")
	listenCmd.Flags().DurationVar(&listenDuration, "duration", 0, "stop after this long (0 = until interrupted)")
	listenCmd.Flags().BoolVar(&listenMotion, "motion", false, "include mouse motion events")
	rootCmd.AddCommand(listenCmd)
}

type eventPrinter struct {
	w      io.Writer
	enc    *json.Encoder
	motion bool
}

func newEventPrinter(w io.Writer, asJSON, motion bool) *eventPrinter {
	p := &eventPrinter{w: w, motion: motion}
	if asJSON {
		p.enc = json.NewEncoder(w)
	}
	return p
}

func (p *eventPrinter) print(ev event.Event) error {
	if !p.motion && (ev.Type == event.MouseMoved || ev.Type == event.MouseDragged) {
		return nil
	}
	if p.enc != nil {
		return p.enc.Encode(ev)
	}
	_, err := fmt.Fprintln(p.w, ui.FormatEvent(ev))
	return err
}

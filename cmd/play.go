package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/bnema/inputhook/hook"
	"github.com/bnema/inputhook/internal/config"
	"github.com/bnema/inputhook/internal/logger"
	"github.com/bnema/inputhook/recorder"
	"github.com/spf13/cobra"
)

var (
	playSpeed float64
	playFast  bool
	playDelay time.Duration
)

var playCmd = &cobra.Command{
	Use:   "play <file>",
	Short: "Replay a recording through the input simulator",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		recording, err := recorder.Load(recordingPath(args[0]))
		if err != nil {
			return err
		}

		b, err := newBackend()
		if err != nil {
			return err
		}

		ctx, cancel := signalContext(0)
		defer cancel()

		if playDelay > 0 {
			logger.Infof("Starting playback in %s...", playDelay)
			select {
			case <-time.After(playDelay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		speed := playSpeed
		if !cmd.Flags().Changed("speed") {
			speed = config.Get().Recorder.PlaybackSpeed
		}
		logger.Infof("Playing %d events (%s)", recording.EventCount(), recording.Duration().Round(time.Millisecond))
		return playback(ctx, cmd, recording, b, speed)
	},
}

func playback(ctx context.Context, cmd *cobra.Command, recording *recorder.Recording, sim hook.Simulator, speed float64) error {
	var err error
	if playFast {
		err = recording.PlaybackFast(ctx, sim)
	} else {
		err = recording.PlaybackWithSpeed(ctx, sim, speed)
	}
	if err != nil {
		return fmt.Errorf("playback failed: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "playback complete")
	return nil
}

func init() {
	playCmd.Flags().Float64Var(&playSpeed, "speed", 1.0, "playback speed multiplier (default recorder.playback_speed)")
	playCmd.Flags().BoolVar(&playFast, "fast", false, "replay without delays")
	playCmd.Flags().DurationVar(&playDelay, "delay", 0, "wait before starting playback")
	playCmd.MarkFlagsMutuallyExclusive("speed", "fast")
	rootCmd.AddCommand(playCmd)
}

package cmd

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/bnema/inputhook/internal/config"
	"github.com/bnema/inputhook/internal/logger"
	"github.com/bnema/inputhook/recorder"
	"github.com/spf13/cobra"
)

var (
	recordOut         string
	recordDuration    time.Duration
	recordDescription string
)

var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Record input events to a JSON file",
	Long: `Record every input event with its offset from the start of the recording.
Recording stops after --duration or on Ctrl+C. Relative output paths are
placed in recorder.directory when it is configured.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if recordOut == "" {
			recordOut = fmt.Sprintf("recording-%s.json", time.Now().Format("20060102-150405"))
		}
		path := recordingPath(recordOut)

		b, err := newBackend()
		if err != nil {
			return err
		}

		ctx, cancel := signalContext(0)
		defer cancel()

		rec := recorder.NewEventRecorder(b, hookOptions()...)
		if recordDuration > 0 {
			logger.Infof("Recording for %s...", recordDuration)
		} else {
			logger.Info("Recording, press Ctrl+C to stop...")
		}

		var recording *recorder.Recording
		if recordDuration > 0 {
			recording, err = rec.RecordFor(ctx, recordDuration)
		} else {
			if err := rec.Start(); err != nil {
				return err
			}
			<-ctx.Done()
			recording, err = rec.Stop()
		}
		if err != nil {
			return err
		}

		if recordDescription != "" {
			recording.WithDescription(recordDescription)
		}
		if err := recording.Save(path); err != nil {
			return err
		}
		logger.Infof("Saved %d events (%s) to %s", recording.EventCount(), recording.Duration().Round(time.Millisecond), path)
		return nil
	},
}

func init() {
	recordCmd.Flags().StringVarP(&recordOut, "out", "o", "", "output file (default recording-<timestamp>.json)")
	recordCmd.Flags().DurationVarP(&recordDuration, "duration", "d", 0, "record for this long (0 = until interrupted)")
	recordCmd.Flags().StringVar(&recordDescription, "description", "", "description stored in the recording")
	rootCmd.AddCommand(recordCmd)
}

func recordingPath(name string) string {
	dir := config.Get().Recorder.Directory
	if dir == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(config.ExpandPath(dir), name)
}

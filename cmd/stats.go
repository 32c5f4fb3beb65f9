package cmd

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/bnema/inputhook/internal/logger"
	"github.com/bnema/inputhook/internal/ui"
	"github.com/bnema/inputhook/statistics"
	"github.com/spf13/cobra"
)

var (
	statsDuration time.Duration
	statsJSON     bool
	statsTop      int
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Collect input statistics",
	Long:  `Count key presses, clicks, mouse distance and scrolling, then print a summary.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := newBackend()
		if err != nil {
			return err
		}

		ctx, cancel := signalContext(0)
		defer cancel()

		if statsDuration > 0 {
			logger.Infof("Collecting statistics for %s...", statsDuration)
		} else {
			logger.Info("Collecting statistics, press Ctrl+C to stop...")
			statsDuration = time.Duration(1<<63 - 1)
		}

		stats, err := statistics.NewCollector(b, hookOptions()...).CollectFor(ctx, statsDuration)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if statsJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(stats)
		}

		fmt.Fprintln(out, stats.Summary())
		if rows := topKeyRows(stats, statsTop); len(rows) > 0 {
			fmt.Fprintln(out, ui.Table([]string{"#", "KEY", "PRESSES"}, rows))
		}
		return nil
	},
}

func topKeyRows(stats *statistics.EventStatistics, n int) [][]string {
	var rows [][]string
	for i, k := range stats.TopKeys(n) {
		rows = append(rows, []string{strconv.Itoa(i + 1), k.String(), strconv.FormatUint(stats.KeyFrequency[k], 10)})
	}
	return rows
}

func init() {
	statsCmd.Flags().DurationVarP(&statsDuration, "duration", "d", 0, "collect for this long (0 = until interrupted)")
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "print the raw statistics as JSON")
	statsCmd.Flags().IntVar(&statsTop, "top", 10, "number of most pressed keys to list")
	rootCmd.AddCommand(statsCmd)
}

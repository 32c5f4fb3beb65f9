package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bnema/inputhook/hook"
	"github.com/bnema/inputhook/internal/config"
	"github.com/bnema/inputhook/internal/logger"
	"github.com/bnema/inputhook/platform"
	"github.com/spf13/cobra"
)

var (
	configPath string
	logLevel   string
	backend    string

	rootCmd = &cobra.Command{
		Use:   "inputhook",
		Short: "inputhook - global keyboard and mouse hooks",
		Long: `inputhook observes and intercepts keyboard and mouse input system wide.
It can print, block, record and replay events, collect usage statistics
and stream live events to remote watchers over SSH or WebSocket.`,
		SilenceUsage:      true,
		PersistentPreRunE: initConfig,
	}
)

// Execute runs the root command
func Execute() error {
	rootCmd.Version = Version
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(`{{with .Name}}{{printf "%s " .}}{{end}}{{printf "version %s\n" .Version}}`)

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default $XDG_CONFIG_HOME/inputhook/inputhook.toml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&backend, "backend", "", "input backend (auto, evdev, windows, darwin, virtual)")
}

func initConfig(cmd *cobra.Command, args []string) error {
	if configPath != "" {
		config.SetConfigPath(configPath)
	}
	if err := config.Init(); err != nil {
		return err
	}

	level := logLevel
	if level == "" {
		level = config.Get().Logging.LogLevel
	}
	if level != "" && !logger.SetLevel(level) {
		return fmt.Errorf("invalid log level %q", level)
	}
	return nil
}

// platformConfig maps the loaded configuration onto a backend config.
func platformConfig(cfg *config.Config) platform.Config {
	name := cfg.Hook.Backend
	if backend != "" {
		name = backend
	}
	return platform.Config{
		Backend:          name,
		NoClickSynthesis: !cfg.Hook.ClickSynthesis,
		DoubleClick:      time.Duration(cfg.Hook.DoubleClickMs) * time.Millisecond,
		Devices:          cfg.Evdev.Devices,
		Exclude:          cfg.Evdev.Exclude,
		GrabPassthrough:  cfg.Evdev.GrabPassthrough,
	}
}

// newBackend builds the configured backend and makes it the package
// default so platform helpers use it too.
func newBackend() (platform.Backend, error) {
	b, err := platform.New(platformConfig(config.Get()))
	if err != nil {
		return nil, err
	}
	platform.SetDefault(b)
	logger.Debugf("Using %T backend", b)
	return b, nil
}

func hookOptions() []hook.Option {
	var opts []hook.Option
	if ms := config.Get().Hook.StopTimeoutMs; ms > 0 {
		opts = append(opts, hook.WithStopTimeout(time.Duration(ms)*time.Millisecond))
	}
	return opts
}

func channelCapacity() int {
	if c := config.Get().Channel.Capacity; c > 0 {
		return c
	}
	return config.DefaultConfig.Channel.Capacity
}

// signalContext is cancelled on SIGINT or SIGTERM, and after d when d > 0.
func signalContext(d time.Duration) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	if d <= 0 {
		return ctx, stop
	}
	ctx, cancel := context.WithTimeout(ctx, d)
	return ctx, func() {
		cancel()
		stop()
	}
}

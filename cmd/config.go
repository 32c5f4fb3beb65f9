package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/bnema/inputhook/internal/config"
	"github.com/bnema/inputhook/internal/logger"
	"github.com/bnema/inputhook/internal/ui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/crypto/ssh"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage inputhook configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Get()
		out := cmd.OutOrStdout()

		fmt.Fprintf(out, "Config file: %s\n\n", config.GetConfigPath())
		rows := [][]string{
			{"hook.backend", cfg.Hook.Backend},
			{"hook.stop_timeout_ms", fmt.Sprint(cfg.Hook.StopTimeoutMs)},
			{"hook.click_synthesis", fmt.Sprint(cfg.Hook.ClickSynthesis)},
			{"hook.double_click_ms", fmt.Sprint(cfg.Hook.DoubleClickMs)},
			{"channel.capacity", fmt.Sprint(cfg.Channel.Capacity)},
			{"evdev.devices", listOrAuto(cfg.Evdev.Devices)},
			{"evdev.exclude", strings.Join(cfg.Evdev.Exclude, ", ")},
			{"evdev.grab_passthrough", fmt.Sprint(cfg.Evdev.GrabPassthrough)},
			{"recorder.directory", cfg.Recorder.Directory},
			{"recorder.playback_speed", fmt.Sprint(cfg.Recorder.PlaybackSpeed)},
			{"stream.bind_address", cfg.Stream.BindAddress},
			{"stream.port", fmt.Sprint(cfg.Stream.Port)},
			{"stream.host_key_path", cfg.Stream.HostKeyPath},
			{"stream.allowed_keys", strings.Join(cfg.Stream.AllowedKeys, "\n")},
			{"stream.allow_any", fmt.Sprint(cfg.Stream.AllowAny)},
			{"stream.max_clients", fmt.Sprint(cfg.Stream.MaxClients)},
			{"stream.websocket_port", fmt.Sprint(cfg.Stream.WebSocketPort)},
			{"logging.log_level", cfg.Logging.LogLevel},
		}
		fmt.Fprintln(out, ui.Table([]string{"KEY", "VALUE"}, rows))
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with the current settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.GetConfigPath()
		if _, err := os.Stat(path); err == nil && !configForce {
			return fmt.Errorf("config file already exists at %s (use --force to overwrite)", path)
		}
		if err := config.Save(); err != nil {
			return err
		}
		logger.Infof("Configuration written to %s", path)
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file path",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), config.GetConfigPath())
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value and save it",
	Example: `  inputhook config set hook.backend virtual
  inputhook config set stream.websocket_port 8080`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key := strings.ToLower(args[0])
		if !viper.IsSet(key) {
			return fmt.Errorf("unknown config key %q", key)
		}
		viper.Set(key, args[1])
		if err := config.Save(); err != nil {
			return err
		}
		return config.Init()
	},
}

var configAllowKeyCmd = &cobra.Command{
	Use:   "allow-key <fingerprint | public key file>",
	Short: "Allow an SSH key to watch the event stream",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fp, err := fingerprintOf(args[0])
		if err != nil {
			return err
		}
		if err := config.AllowKey(fp); err != nil {
			return err
		}
		logger.Infof("Allowed %s", fp)
		return nil
	},
}

var configForce bool

func init() {
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "overwrite an existing file")
	configCmd.AddCommand(configShowCmd, configInitCmd, configPathCmd, configSetCmd, configAllowKeyCmd)
	rootCmd.AddCommand(configCmd)
}

func listOrAuto(v []string) string {
	if len(v) == 0 {
		return "(autodetect)"
	}
	return strings.Join(v, "\n")
}

// fingerprintOf accepts a SHA256 fingerprint or an authorized_keys style
// public key file.
func fingerprintOf(arg string) (string, error) {
	if strings.HasPrefix(arg, "SHA256:") {
		return arg, nil
	}
	data, err := os.ReadFile(config.ExpandPath(arg))
	if err != nil {
		return "", fmt.Errorf("not a fingerprint and failed to read key file: %w", err)
	}
	key, _, _, _, err := ssh.ParseAuthorizedKey(data)
	if err != nil {
		return "", fmt.Errorf("failed to parse public key: %w", err)
	}
	return ssh.FingerprintSHA256(key), nil
}

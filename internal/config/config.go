// Package config handles configuration management using Viper
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	Hook     HookConfig     `mapstructure:"hook"`
	Channel  ChannelConfig  `mapstructure:"channel"`
	Evdev    EvdevConfig    `mapstructure:"evdev"`
	Recorder RecorderConfig `mapstructure:"recorder"`
	Stream   StreamConfig   `mapstructure:"stream"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// HookConfig selects and tunes the input backend
type HookConfig struct {
	Backend        string `mapstructure:"backend"` // auto, evdev, windows, darwin, virtual
	StopTimeoutMs  int    `mapstructure:"stop_timeout_ms"`
	ClickSynthesis bool   `mapstructure:"click_synthesis"`
	DoubleClickMs  int    `mapstructure:"double_click_ms"`
}

type ChannelConfig struct {
	Capacity int `mapstructure:"capacity"`
}

// EvdevConfig contains Linux device settings
type EvdevConfig struct {
	Devices         []string `mapstructure:"devices"` // Explicit /dev/input paths, empty = autodetect
	Exclude         []string `mapstructure:"exclude"` // Case-insensitive device name fragments
	GrabPassthrough bool     `mapstructure:"grab_passthrough"`
}

type RecorderConfig struct {
	Directory     string  `mapstructure:"directory"`
	PlaybackSpeed float64 `mapstructure:"playback_speed"`
}

// StreamConfig contains the remote feed settings
type StreamConfig struct {
	BindAddress   string   `mapstructure:"bind_address"`
	Port          int      `mapstructure:"port"`
	HostKeyPath   string   `mapstructure:"host_key_path"`
	AllowedKeys   []string `mapstructure:"allowed_keys"` // SSH key fingerprints
	AllowAny      bool     `mapstructure:"allow_any"`
	MaxClients    int      `mapstructure:"max_clients"`
	WebSocketPort int      `mapstructure:"websocket_port"` // 0 disables the websocket feed
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	LogLevel string `mapstructure:"log_level"` // Override LOG_LEVEL env var
}

const configName = "inputhook"

var (
	// DefaultConfig provides sensible defaults
	DefaultConfig = Config{
		Hook: HookConfig{
			Backend:        "auto",
			StopTimeoutMs:  2000,
			ClickSynthesis: true,
			DoubleClickMs:  500,
		},
		Channel: ChannelConfig{
			Capacity: 256,
		},
		Evdev: EvdevConfig{
			Devices:         []string{},
			Exclude:         []string{"power button", "sleep button", "lid switch", "video bus", "pc speaker"},
			GrabPassthrough: true,
		},
		Recorder: RecorderConfig{
			Directory:     "",
			PlaybackSpeed: 1.0,
		},
		Stream: StreamConfig{
			BindAddress:   "0.0.0.0",
			Port:          52526,
			HostKeyPath:   "~/.config/inputhook/host_key",
			AllowedKeys:   []string{},
			AllowAny:      false,
			MaxClients:    0,
			WebSocketPort: 0,
		},
		Logging: LoggingConfig{
			LogLevel: "", // Empty means use LOG_LEVEL env var
		},
	}

	// Global config instance
	cfg *Config

	// Override config path if set
	configPathOverride string
)

// SetConfigPath allows overriding the config path
func SetConfigPath(path string) {
	configPathOverride = path
}

// Init initializes the configuration system
func Init() error {
	viper.SetConfigName(configName)
	viper.SetConfigType("toml")

	if configPathOverride != "" {
		viper.SetConfigFile(configPathOverride)
	} else {
		// In order of precedence
		viper.AddConfigPath(userConfigDir())
		viper.AddConfigPath("/etc/inputhook")
		viper.AddConfigPath(".")
	}

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found, use defaults
	}

	c := &Config{}
	if err := viper.Unmarshal(c); err != nil {
		return fmt.Errorf("unable to unmarshal config: %w", err)
	}
	cfg = c
	return nil
}

func setDefaults() {
	d := DefaultConfig
	viper.SetDefault("hook.backend", d.Hook.Backend)
	viper.SetDefault("hook.stop_timeout_ms", d.Hook.StopTimeoutMs)
	viper.SetDefault("hook.click_synthesis", d.Hook.ClickSynthesis)
	viper.SetDefault("hook.double_click_ms", d.Hook.DoubleClickMs)

	viper.SetDefault("channel.capacity", d.Channel.Capacity)

	viper.SetDefault("evdev.devices", d.Evdev.Devices)
	viper.SetDefault("evdev.exclude", d.Evdev.Exclude)
	viper.SetDefault("evdev.grab_passthrough", d.Evdev.GrabPassthrough)

	viper.SetDefault("recorder.directory", d.Recorder.Directory)
	viper.SetDefault("recorder.playback_speed", d.Recorder.PlaybackSpeed)

	viper.SetDefault("stream.bind_address", d.Stream.BindAddress)
	viper.SetDefault("stream.port", d.Stream.Port)
	viper.SetDefault("stream.host_key_path", d.Stream.HostKeyPath)
	viper.SetDefault("stream.allowed_keys", d.Stream.AllowedKeys)
	viper.SetDefault("stream.allow_any", d.Stream.AllowAny)
	viper.SetDefault("stream.max_clients", d.Stream.MaxClients)
	viper.SetDefault("stream.websocket_port", d.Stream.WebSocketPort)

	viper.SetDefault("logging.log_level", d.Logging.LogLevel)
}

// Get returns the current configuration
func Get() *Config {
	if cfg == nil {
		// Return defaults if not initialized
		d := DefaultConfig
		return &d
	}
	return cfg
}

// Set sets the current configuration (for testing)
func Set(c *Config) {
	cfg = c
}

// Save saves the current configuration to file
func Save() error {
	configPath := GetConfigPath()

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		if os.IsPermission(err) && strings.HasPrefix(configPath, "/etc/") {
			return fmt.Errorf("failed to create config directory %s: permission denied. Try running with sudo", dir)
		}
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := viper.WriteConfigAs(configPath); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// GetConfigPath returns the path to the config file
func GetConfigPath() string {
	if configPathOverride != "" {
		return configPathOverride
	}
	if viper.ConfigFileUsed() != "" {
		return viper.ConfigFileUsed()
	}
	return filepath.Join(userConfigDir(), configName+".toml")
}

func userConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "inputhook")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "/etc/inputhook"
	}
	return filepath.Join(home, ".config", "inputhook")
}

// SetDevices stores the evdev device list and saves the file
func SetDevices(paths []string) error {
	c := Get()
	c.Evdev.Devices = append([]string(nil), paths...)
	viper.Set("evdev.devices", c.Evdev.Devices)
	cfg = c
	return Save()
}

// AllowKey adds an SSH key fingerprint to the stream allow list
func AllowKey(fingerprint string) error {
	c := Get()
	for _, fp := range c.Stream.AllowedKeys {
		if fp == fingerprint {
			return fmt.Errorf("key already allowed")
		}
	}
	c.Stream.AllowedKeys = append(c.Stream.AllowedKeys, fingerprint)
	viper.Set("stream.allowed_keys", c.Stream.AllowedKeys)
	cfg = c
	return Save()
}

// ExpandPath replaces a leading "~/" with the home directory
func ExpandPath(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return path
}

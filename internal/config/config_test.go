package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reset(t *testing.T) {
	t.Helper()
	viper.Reset()
	cfg = nil
	configPathOverride = ""
	t.Cleanup(func() {
		viper.Reset()
		cfg = nil
		configPathOverride = ""
	})
}

func TestInit(t *testing.T) {
	t.Run("initializes with defaults when no config exists", func(t *testing.T) {
		reset(t)
		t.Setenv("XDG_CONFIG_HOME", t.TempDir())
		t.Chdir(t.TempDir())
		require.NoError(t, Init())

		c := Get()
		assert.Equal(t, "auto", c.Hook.Backend)
		assert.Equal(t, 2000, c.Hook.StopTimeoutMs)
		assert.True(t, c.Hook.ClickSynthesis)
		assert.Equal(t, 256, c.Channel.Capacity)
		assert.Equal(t, 52526, c.Stream.Port)
		assert.Contains(t, c.Evdev.Exclude, "lid switch")
	})

	t.Run("reads an explicit file over defaults", func(t *testing.T) {
		reset(t)
		path := filepath.Join(t.TempDir(), "custom.toml")
		require.NoError(t, os.WriteFile(path, []byte(`[hook]
backend = "virtual"
click_synthesis = false

[stream]
allowed_keys = ["SHA256:abc"]
websocket_port = 8080
`), 0644))
		SetConfigPath(path)
		require.NoError(t, Init())

		c := Get()
		assert.Equal(t, "virtual", c.Hook.Backend)
		assert.False(t, c.Hook.ClickSynthesis)
		assert.Equal(t, 500, c.Hook.DoubleClickMs)
		assert.Equal(t, []string{"SHA256:abc"}, c.Stream.AllowedKeys)
		assert.Equal(t, 8080, c.Stream.WebSocketPort)
		assert.Equal(t, path, GetConfigPath())
	})

	t.Run("rejects invalid TOML", func(t *testing.T) {
		reset(t)
		path := filepath.Join(t.TempDir(), "bad.toml")
		require.NoError(t, os.WriteFile(path, []byte("[hook\nbackend = 1"), 0644))
		SetConfigPath(path)
		assert.Error(t, Init())
	})
}

func TestGetWithoutInit(t *testing.T) {
	reset(t)
	c := Get()
	c.Hook.Backend = "changed"
	assert.Equal(t, "auto", DefaultConfig.Hook.Backend)
}

func TestConfigPathResolution(t *testing.T) {
	reset(t)
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	assert.Equal(t, filepath.Join(xdg, "inputhook", "inputhook.toml"), GetConfigPath())

	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("HOME", "/home/testuser")
	assert.Equal(t, "/home/testuser/.config/inputhook/inputhook.toml", GetConfigPath())
}

func TestConfigPrecedence(t *testing.T) {
	reset(t)
	xdg := t.TempDir()
	cwd := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	t.Chdir(cwd)

	require.NoError(t, os.MkdirAll(filepath.Join(xdg, "inputhook"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(xdg, "inputhook", "inputhook.toml"),
		[]byte("[channel]\ncapacity = 10\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(cwd, "inputhook.toml"),
		[]byte("[channel]\ncapacity = 20\n"), 0644))

	require.NoError(t, Init())
	assert.Equal(t, 10, Get().Channel.Capacity)
}

func TestSaveAndUpdate(t *testing.T) {
	reset(t)
	path := filepath.Join(t.TempDir(), "sub", "inputhook.toml")
	SetConfigPath(path)
	setDefaults()

	require.NoError(t, SetDevices([]string{"/dev/input/event3"}))
	require.NoError(t, AllowKey("SHA256:xyz"))
	assert.Error(t, AllowKey("SHA256:xyz"))

	viper.Reset()
	cfg = nil
	require.NoError(t, Init())
	assert.Equal(t, []string{"/dev/input/event3"}, Get().Evdev.Devices)
	assert.Equal(t, []string{"SHA256:xyz"}, Get().Stream.AllowedKeys)
}

func TestExpandPath(t *testing.T) {
	t.Setenv("HOME", "/home/u")
	assert.Equal(t, "/home/u/.config/x", ExpandPath("~/.config/x"))
	assert.Equal(t, "/home/u", ExpandPath("~"))
	assert.Equal(t, "/etc/x", ExpandPath("/etc/x"))
}

package cmd

import (
	"bytes"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bnema/inputhook/event"
	"github.com/bnema/inputhook/internal/config"
	"github.com/bnema/inputhook/recorder"
	"github.com/bnema/inputhook/state"
	"github.com/bnema/inputhook/statistics"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/ssh"
)

// resetFlags puts every flag in the tree back to its default. Flag values
// live in package variables and survive between Execute calls.
func resetFlags(t *testing.T, c *cobra.Command) {
	t.Helper()
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			require.NoError(t, sv.Replace(nil))
		} else {
			require.NoError(t, f.Value.Set(f.DefValue))
		}
		f.Changed = false
	}
	c.PersistentFlags().VisitAll(reset)
	c.Flags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(t, sub)
	}
}

// run executes the root command with a throwaway config file.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	viper.Reset()
	config.Set(nil)
	resetFlags(t, rootCmd)
	configPath = ""
	t.Cleanup(func() {
		viper.Reset()
		config.Set(nil)
		config.SetConfigPath("")
		resetFlags(t, rootCmd)
	})

	cfgPath := filepath.Join(t.TempDir(), "inputhook.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("[hook]\nbackend = \"virtual\"\n"), 0644))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--config", cfgPath}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "inputhook "+Version)
}

func TestConfigPathCommand(t *testing.T) {
	out, err := run(t, "config", "path")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(strings.TrimSpace(out), "inputhook.toml"))
}

func TestConfigShowCommand(t *testing.T) {
	out, err := run(t, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "hook.backend")
	assert.Contains(t, out, "virtual")
}

func TestInvalidLogLevel(t *testing.T) {
	_, err := run(t, "--log-level", "loud", "version")
	assert.Error(t, err)
}

func TestFlagsDoNotLeakBetweenRuns(t *testing.T) {
	_, err := run(t, "--log-level", "loud", "version")
	require.Error(t, err)

	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "inputhook "+Version)
	assert.Empty(t, logLevel)
}

func TestDisplaysJSONWithVirtualBackend(t *testing.T) {
	out, err := run(t, "displays", "--json")
	require.NoError(t, err)

	var doc displaysOutput
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Empty(t, doc.Displays)
	assert.NotEmpty(t, doc.Error)
	assert.NotNil(t, doc.Settings)
}

func TestPlayCommand(t *testing.T) {
	rec := recorder.New()
	rec.Append(0, event.NewKeyPressed(event.KeyA, 30, 0))
	rec.Append(time.Millisecond, event.NewKeyReleased(event.KeyA, 30, 0))
	path := filepath.Join(t.TempDir(), "rec.json")
	require.NoError(t, rec.Save(path))

	out, err := run(t, "play", path, "--fast")
	require.NoError(t, err)
	assert.Contains(t, out, "playback complete")
}

func TestPlayMissingFile(t *testing.T) {
	_, err := run(t, "play", filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestBlockFilter(t *testing.T) {
	keys, err := parseKeys([]string{"KeyQ", " F1 "})
	require.NoError(t, err)
	buttons, err := parseButtons([]string{"Middle"})
	require.NoError(t, err)

	filter := blockFilter(keys, buttons)
	assert.False(t, filter(event.NewKeyPressed(event.KeyQ, 16, 0)))
	assert.False(t, filter(event.NewKeyReleased(event.F1, 59, 0)))
	assert.True(t, filter(event.NewKeyPressed(event.KeyW, 17, 0)))
	assert.False(t, filter(event.NewMousePressed(event.Middle, 0, 0, state.Button3)))
	assert.True(t, filter(event.NewMousePressed(event.Left, 0, 0, state.Button1)))
	assert.True(t, filter(event.NewMouseMoved(1, 1, 0)))

	_, err = parseKeys([]string{"NotAKey"})
	assert.Error(t, err)
	_, err = parseButtons([]string{"Thumb"})
	assert.Error(t, err)
}

func TestGrabNeedsSomethingToBlock(t *testing.T) {
	_, err := run(t, "grab")
	assert.ErrorContains(t, err, "nothing to block")
}

func TestEventPrinter(t *testing.T) {
	var buf bytes.Buffer
	p := newEventPrinter(&buf, true, false)
	require.NoError(t, p.print(event.NewMouseMoved(1, 2, 0)))
	assert.Empty(t, buf.String())

	require.NoError(t, p.print(event.NewKeyPressed(event.KeyA, 30, 0)))
	var ev event.Event
	require.NoError(t, json.Unmarshal(buf.Bytes(), &ev))
	assert.Equal(t, event.KeyPressed, ev.Type)

	buf.Reset()
	p = newEventPrinter(&buf, false, true)
	require.NoError(t, p.print(event.NewMouseMoved(1, 2, 0)))
	assert.Contains(t, buf.String(), "MouseMoved")
}

func TestTopKeyRows(t *testing.T) {
	s := statistics.New()
	for i := 0; i < 3; i++ {
		s.Record(event.NewKeyPressed(event.KeyE, 18, 0))
	}
	s.Record(event.NewKeyPressed(event.KeyA, 30, 0))

	rows := topKeyRows(s, 5)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"1", "KeyE", "3"}, rows[0])
}

func TestFingerprintOf(t *testing.T) {
	fp, err := fingerprintOf("SHA256:abc")
	require.NoError(t, err)
	assert.Equal(t, "SHA256:abc", fp)

	pub, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	sshPub, err := ssh.NewPublicKey(pub)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "id.pub")
	require.NoError(t, os.WriteFile(path, ssh.MarshalAuthorizedKey(sshPub), 0644))

	fp, err = fingerprintOf(path)
	require.NoError(t, err)
	assert.Equal(t, ssh.FingerprintSHA256(sshPub), fp)

	_, err = fingerprintOf(filepath.Join(t.TempDir(), "missing.pub"))
	assert.Error(t, err)
}

func TestRecordingPath(t *testing.T) {
	config.Set(&config.Config{Recorder: config.RecorderConfig{Directory: "/data/rec"}})
	t.Cleanup(func() { config.Set(nil) })

	assert.Equal(t, "/data/rec/a.json", recordingPath("a.json"))
	assert.Equal(t, "/tmp/b.json", recordingPath("/tmp/b.json"))
}

func TestOptional(t *testing.T) {
	assert.Equal(t, "-", optional[uint32](nil, "%d"))
	v := uint32(500)
	assert.Equal(t, "500 ms", optional(&v, "%d ms"))
}

// Package desktop queries the Linux desktop for monitor layout and input
// settings by running the compositor's own tools.
package desktop

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/bnema/inputhook/display"
	"github.com/bnema/inputhook/hook"
	"github.com/bnema/inputhook/internal/logger"
)

const queryTimeout = 3 * time.Second

// Runner executes a command and returns its stdout.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

type backend struct {
	name  string
	args  []string
	parse func([]byte) ([]display.Info, error)
}

// Backends are tried in order; the first that runs and reports at least
// one monitor wins.
var backends = []backend{
	{name: "wlr-randr", args: []string{"--json"}, parse: parseWlrRandr},
	{name: "hyprctl", args: []string{"monitors", "-j"}, parse: parseHyprctl},
	{name: "swaymsg", args: []string{"-t", "get_outputs", "-r"}, parse: parseSway},
	{name: "xrandr", args: []string{"--query"}, parse: parseXrandr},
}

// Detector finds displays and settings for the current session.
type Detector struct {
	run Runner
}

func New() *Detector {
	return &Detector{run: execRunner}
}

// NewWithRunner returns a detector that runs commands through r.
func NewWithRunner(r Runner) *Detector {
	return &Detector{run: r}
}

// Displays returns the active monitors. The primary one is the one marked
// by the tool, else the one at the origin, else the first.
func (d *Detector) Displays() ([]display.Info, error) {
	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	var errs []string
	for _, b := range backends {
		out, err := d.run(ctx, b.name, b.args...)
		if err != nil {
			logger.Debugf("desktop: %s failed: %v", b.name, err)
			errs = append(errs, fmt.Sprintf("%s: %v", b.name, err))
			continue
		}
		displays, err := b.parse(out)
		if err != nil {
			logger.Debugf("desktop: cannot parse %s output: %v", b.name, err)
			errs = append(errs, fmt.Sprintf("%s: %v", b.name, err))
			continue
		}
		if len(displays) == 0 {
			continue
		}
		display.MarkPrimary(displays)
		logger.Debugf("desktop: %d displays from %s", len(displays), b.name)
		return displays, nil
	}
	return nil, hook.NotSupported("no display backend available (" + strings.Join(errs, "; ") + ")")
}

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	if _, err := exec.LookPath(name); err != nil {
		return nil, err
	}
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Env = sessionEnv()
	return cmd.Output()
}

// sessionEnv points child processes at the invoking user's session when
// running under sudo, so compositor tools can find their sockets.
func sessionEnv() []string {
	env := os.Environ()
	sudoUID := os.Getenv("SUDO_UID")
	if sudoUID == "" || os.Geteuid() != 0 {
		return env
	}

	runtimeDir := "/run/user/" + sudoUID
	env = append(env, "XDG_RUNTIME_DIR="+runtimeDir)
	if os.Getenv("WAYLAND_DISPLAY") != "" {
		return env
	}
	entries, err := os.ReadDir(runtimeDir)
	if err != nil {
		logger.Debugf("desktop: cannot read %s: %v", runtimeDir, err)
		return env
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "wayland-") && !strings.HasSuffix(e.Name(), ".lock") {
			return append(env, "WAYLAND_DISPLAY="+e.Name())
		}
	}
	return env
}

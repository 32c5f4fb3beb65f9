//go:build linux

package evdev

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/bnema/inputhook/hook"
	"github.com/bnema/inputhook/internal/logger"
	evdev "github.com/gvalkov/golang-evdev"
)

// DevicePattern is the glob for input device nodes.
const DevicePattern = "/dev/input/event*"

// DefaultExclude lists name fragments of devices that never carry user
// input worth hooking.
var DefaultExclude = []string{
	"power button",
	"sleep button",
	"lid switch",
	"video bus",
	"pc speaker",
	"virtual console",
	"system console",
	"speakup",
	"hdmi",
}

// DeviceInfo describes a candidate input device.
type DeviceInfo struct {
	Path     string
	Name     string
	Keyboard bool
	Pointer  bool
}

func (d DeviceInfo) Kind() string {
	switch {
	case d.Keyboard && d.Pointer:
		return "keyboard+pointer"
	case d.Keyboard:
		return "keyboard"
	case d.Pointer:
		return "pointer"
	}
	return "other"
}

// ListDevices returns the input devices that would be hooked with the given
// exclusions. Devices that cannot be opened are skipped.
func ListDevices(exclude []string) ([]DeviceInfo, error) {
	devices, err := evdev.ListInputDevices(DevicePattern)
	if err != nil {
		return nil, fmt.Errorf("list input devices: %w", err)
	}

	var out []DeviceInfo
	for _, dev := range devices {
		info := describe(dev)
		if excluded(dev.Name, exclude) || (!info.Keyboard && !info.Pointer) {
			dev.File.Close()
			continue
		}
		out = append(out, info)
		dev.File.Close()
	}
	return out, nil
}

func describe(dev *evdev.InputDevice) DeviceInfo {
	info := DeviceInfo{Path: dev.Fn, Name: dev.Name}
	for _, code := range dev.CapabilitiesFlat[evdev.EV_KEY] {
		switch {
		case code >= evdev.BTN_LEFT && code <= evdev.BTN_TASK:
			info.Pointer = true
		case code >= evdev.KEY_ESC && code <= evdev.KEY_KPDOT:
			info.Keyboard = true
		}
	}
	for _, code := range dev.CapabilitiesFlat[evdev.EV_REL] {
		if code == evdev.REL_X || code == evdev.REL_Y || code == evdev.REL_WHEEL {
			info.Pointer = true
		}
	}
	return info
}

func excluded(name string, patterns []string) bool {
	lower := strings.ToLower(name)
	for _, p := range patterns {
		if p != "" && strings.Contains(lower, strings.ToLower(p)) {
			return true
		}
	}
	return false
}

// openDevices opens the configured paths, or every suitable device when
// paths is empty. Opening nothing is a permission problem in practice.
func openDevices(paths, exclude []string) ([]*evdev.InputDevice, error) {
	if len(paths) == 0 {
		all, err := evdev.ListInputDevices(DevicePattern)
		if err != nil {
			return nil, hook.PermissionDenied("cannot enumerate /dev/input", err)
		}
		var out []*evdev.InputDevice
		for _, dev := range all {
			info := describe(dev)
			if excluded(dev.Name, exclude) || (!info.Keyboard && !info.Pointer) {
				logger.Debugf("evdev: skipping %s (%s)", dev.Fn, dev.Name)
				dev.File.Close()
				continue
			}
			out = append(out, dev)
		}
		if len(out) == 0 {
			return nil, hook.PermissionDenied("no input devices accessible; add your user to the 'input' group", nil)
		}
		return out, nil
	}

	var out []*evdev.InputDevice
	var denied error
	for _, p := range paths {
		dev, err := evdev.Open(p)
		if err != nil {
			if errors.Is(err, fs.ErrPermission) {
				denied = err
			}
			logger.Warnf("evdev: cannot open %s: %v", p, err)
			continue
		}
		out = append(out, dev)
	}
	if len(out) == 0 {
		return nil, hook.PermissionDenied("none of the configured input devices could be opened", denied)
	}
	return out, nil
}

func closeDevices(devices []*evdev.InputDevice) {
	for _, dev := range devices {
		if err := dev.File.Close(); err != nil && !errors.Is(err, fs.ErrClosed) {
			logger.Debugf("evdev: close %s: %v", dev.Fn, err)
		}
	}
}

//go:build linux

package platform

import "github.com/bnema/inputhook/platform/evdev"

func newNative(cfg Config) (Backend, error) {
	return evdev.New(evdev.Config{
		Devices:         cfg.Devices,
		Exclude:         cfg.Exclude,
		GrabPassthrough: cfg.GrabPassthrough,
		Mask:            cfg.mask(),
		Translate:       cfg.translateOptions(),
	}), nil
}

//go:build windows

package platform

import (
	"time"

	"github.com/bnema/inputhook/internal/translate"
	"github.com/bnema/inputhook/platform/windows"
)

func newNative(cfg Config) (Backend, error) {
	opts := cfg.translateOptions()
	if cfg.DoubleClick == 0 {
		if ms := windows.DoubleClickTime(); ms > 0 {
			opts = append(opts, translate.WithDoubleClick(time.Duration(ms)*time.Millisecond))
		}
	}
	return windows.New(cfg.mask(), opts...), nil
}

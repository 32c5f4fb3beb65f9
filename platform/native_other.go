//go:build !linux && !windows && !darwin

package platform

import (
	"runtime"

	"github.com/bnema/inputhook/hook"
)

func newNative(Config) (Backend, error) {
	return nil, hook.NotSupported("no input backend for " + runtime.GOOS)
}

//go:build !darwin && !linux

package capture

import (
	"errors"
	"runtime"

	"github.com/hhushhas/fingerpain/internal/keys"
)

type unsupportedHook struct{}

// NewPlatformHook returns a hook that fails to install on this platform.
func NewPlatformHook() Hook {
	return unsupportedHook{}
}

func (unsupportedHook) Run(func(), func(keys.Key)) error {
	return errors.New("keyboard capture is not supported on " + runtime.GOOS)
}

func (unsupportedHook) Stop() {}

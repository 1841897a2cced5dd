//go:build !linux && !darwin

package netconfig

import (
	"fmt"
	"runtime"

	"github.com/mosiko1234/heimdal/netinfo/internal/config"
	"github.com/mosiko1234/heimdal/netinfo/internal/platform"
)

// NewHostPlatform returns the platform implementation for the running OS
func NewHostPlatform(cfg config.PlatformConfig) (platform.Platform, error) {
	return nil, fmt.Errorf("%w: %s", platform.ErrUnsupported, runtime.GOOS)
}

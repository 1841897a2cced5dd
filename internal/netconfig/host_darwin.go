//go:build darwin

package netconfig

import (
	"github.com/mosiko1234/heimdal/netinfo/internal/config"
	"github.com/mosiko1234/heimdal/netinfo/internal/platform"
	"github.com/mosiko1234/heimdal/netinfo/internal/platform/darwin"
)

// NewHostPlatform returns the platform implementation for the running OS.
// ProcRoot is ignored; macOS counters come from sysctl.
func NewHostPlatform(cfg config.PlatformConfig) (platform.Platform, error) {
	return darwin.New(darwin.WithResolvConfPath(cfg.ResolvConf))
}

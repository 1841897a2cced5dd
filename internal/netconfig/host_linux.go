//go:build linux

package netconfig

import (
	"github.com/mosiko1234/heimdal/netinfo/internal/config"
	"github.com/mosiko1234/heimdal/netinfo/internal/platform"
	"github.com/mosiko1234/heimdal/netinfo/internal/platform/linux"
)

// NewHostPlatform returns the platform implementation for the running OS
func NewHostPlatform(cfg config.PlatformConfig) (platform.Platform, error) {
	return linux.New(cfg.ProcRoot, linux.WithResolvConfPath(cfg.ResolvConf))
}

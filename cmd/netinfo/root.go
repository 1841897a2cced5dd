package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mosiko1234/heimdal/netinfo/internal/config"
	"github.com/mosiko1234/heimdal/netinfo/internal/logger"
	"github.com/mosiko1234/heimdal/netinfo/internal/netconfig"
	"github.com/mosiko1234/heimdal/netinfo/internal/platform"
	"github.com/mosiko1234/heimdal/netinfo/internal/resolvconf"
)

var exitFunc = os.Exit

// newPlatform builds the host platform, can be mocked for testing
var newPlatform = netconfig.NewHostPlatform

// envFile is overlaid on the configuration when present
var envFile = ".env"

// Global flags
var (
	configPath     string
	logLevel       string
	resolvConfPath string
	storePath      string
	outputFormat   string
)

// Loaded by the root command before any subcommand runs
var (
	cfg  *config.Config
	host platform.Platform
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "netinfo",
	Short: "Inspect host network configuration and protocol statistics",
	Long: "netinfo reports per-interface IP configuration (unicast and multicast addresses, " +
		"netmasks, gateways, resolver settings) and global UDP, TCP and ICMPv4 counters.",
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", config.DefaultPath, "Path to configuration file")
	flags.StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flags.StringVar(&resolvConfPath, "resolv-conf", "", "Resolver configuration file (default "+resolvconf.DefaultPath+")")
	flags.StringVar(&storePath, "store", "", "Snapshot store directory")
	flags.StringVarP(&outputFormat, "output", "o", formatText, "Output format (text, json, yaml)")
}

// setup loads the configuration, applies flag overrides and builds the host
// platform shared by every subcommand.
func setup(cmd *cobra.Command, args []string) error {
	if !validFormat(outputFormat) {
		return fmt.Errorf("invalid output format: %s (must be text, json, or yaml)", outputFormat)
	}

	c, err := config.LoadOrDefault(configPath)
	if err != nil {
		return err
	}
	if err := c.ApplyEnv(envFile); err != nil {
		return err
	}

	if logLevel != "" {
		c.Logging.Level = logLevel
	}
	if resolvConfPath != "" {
		c.Platform.ResolvConf = resolvConfPath
	}
	if storePath != "" {
		c.Store.Path = storePath
	}
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if err := logger.Initialize(c.Logging.File, c.Logging.Level); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	resolvconf.SetLogger(logger.NewComponentLogger("ResolvConf"))

	p, err := newPlatform(c.Platform)
	if err != nil {
		return fmt.Errorf("failed to initialize platform: %w", err)
	}
	logger.Debug("Using %s platform, resolver configuration %s", p.Name(), p.ResolvConfPath())

	cfg, host = c, p
	return nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	defer logger.Sync()
	if err := rootCmd.Execute(); err != nil {
		exitFunc(1)
	}
}

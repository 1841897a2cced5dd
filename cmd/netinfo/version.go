package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

const version = "0.3.0"

// Goos returns the operating system, can be mocked for testing
var Goos = runtime.GOOS

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:          "version",
	Short:        "Display the current version",
	Long:         "Display the current version of the application",
	SilenceUsage: true,
	// version needs neither configuration nor a platform
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	Run: func(cmd *cobra.Command, args []string) {
		platform := fmt.Sprintf("%s/%s", Goos, runtime.GOARCH)
		fmt.Fprintf(cmd.OutOrStdout(), "netinfo v%s\nPlatform: %s\n", version, platform)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

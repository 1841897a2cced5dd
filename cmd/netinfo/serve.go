package main

import (
	"github.com/spf13/cobra"

	"github.com/mosiko1234/heimdal/netinfo/internal/orchestrator"
)

var (
	serveHost string
	servePort int
)

// serveCmd runs the recorder and the HTTP API until interrupted
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the recording service and HTTP API",
	Long: "Record protocol snapshots on the configured interval and serve interface reports, " +
		"statistics, history and Prometheus metrics over HTTP until SIGINT or SIGTERM.",
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("host") {
			cfg.API.Host = serveHost
		}
		if cmd.Flags().Changed("port") {
			cfg.API.Port = servePort
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		o, err := orchestrator.NewOrchestrator(cfg, host)
		if err != nil {
			return err
		}
		return o.Run(cmd.Context())
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "", "API listen host (overrides configuration)")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "API listen port (overrides configuration)")
	rootCmd.AddCommand(serveCmd)
}

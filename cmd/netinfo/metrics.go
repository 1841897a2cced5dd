package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/mosiko1234/heimdal/netinfo/internal/metrics"
)

// metricsCmd prints protocol counters in the Prometheus text format
var metricsCmd = &cobra.Command{
	Use:          "metrics [udp|tcp|icmp]...",
	Short:        "Print protocol counters in Prometheus text format",
	Long:         "Take a fresh snapshot of the selected protocols (all by default) and print it in the Prometheus exposition format",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		protos, err := parseProtocols(args)
		if err != nil {
			return err
		}

		reg := prometheus.NewRegistry()
		if err := reg.Register(metrics.NewCollector(host, cfg.Metrics.Namespace, protos...)); err != nil {
			return err
		}
		return metrics.WriteText(cmd.OutOrStdout(), reg)
	},
}

func init() {
	rootCmd.AddCommand(metricsCmd)
}

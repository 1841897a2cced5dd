package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mosiko1234/heimdal/netinfo/internal/protostats"
)

// parseProtocols maps protocol arguments, defaulting to every protocol
func parseProtocols(args []string) ([]protostats.Protocol, error) {
	if len(args) == 0 {
		return protostats.Protocols, nil
	}
	protos := make([]protostats.Protocol, 0, len(args))
	for _, arg := range args {
		proto, ok := protostats.ParseProtocol(arg)
		if !ok {
			return nil, fmt.Errorf("unknown protocol: %s (must be udp, tcp, or icmp)", arg)
		}
		protos = append(protos, proto)
	}
	return protos, nil
}

// captureAll takes one snapshot per protocol
func captureAll(protos []protostats.Protocol) ([]protostats.Snapshot, error) {
	snaps := make([]protostats.Snapshot, 0, len(protos))
	for _, proto := range protos {
		snap, err := protostats.Capture(host, proto)
		if err != nil {
			return nil, err
		}
		snaps = append(snaps, snap)
	}
	return snaps, nil
}

// statsCmd prints global protocol counters
var statsCmd = &cobra.Command{
	Use:          "stats [udp|tcp|icmp]...",
	Short:        "Show global protocol statistics",
	Long:         "Take a snapshot of the host-wide UDP, TCP and ICMPv4 counters. Without arguments every protocol is shown.",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		protos, err := parseProtocols(args)
		if err != nil {
			return err
		}
		snaps, err := captureAll(protos)
		if err != nil {
			return err
		}

		return render(cmd.OutOrStdout(), snaps, func(w io.Writer) error {
			tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "PROTOCOL\tCOUNTER\tVALUE")
			for _, snap := range snaps {
				for _, name := range snap.Names() {
					fmt.Fprintf(tw, "%s\t%s\t%d\n", snap.Protocol, name, snap.Counters[name])
				}
			}
			return tw.Flush()
		})
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

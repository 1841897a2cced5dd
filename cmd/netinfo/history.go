package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/mosiko1234/heimdal/netinfo/internal/protostats"
)

var historyLimit int

// historyCmd lists recorded snapshots of one protocol
var historyCmd = &cobra.Command{
	Use:          "history <udp|tcp|icmp>",
	Short:        "Show recorded statistics",
	Long:         "List snapshots recorded for a protocol, newest first",
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		proto, ok := protostats.ParseProtocol(args[0])
		if !ok {
			return fmt.Errorf("unknown protocol: %s (must be udp, tcp, or icmp)", args[0])
		}

		store, err := openStore(cfg.Store.Path)
		if err != nil {
			return err
		}
		defer store.Close()

		snaps, err := store.List(proto, historyLimit)
		if err != nil {
			return err
		}

		return render(cmd.OutOrStdout(), snaps, func(w io.Writer) error {
			if len(snaps) == 0 {
				_, err := fmt.Fprintf(w, "No %s snapshots recorded\n", proto)
				return err
			}

			names := snaps[0].Names()
			tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
			fmt.Fprintf(tw, "CAPTURED_AT\t%s\n", strings.ToUpper(strings.Join(names, "\t")))
			for _, snap := range snaps {
				fmt.Fprint(tw, snap.CapturedAt.Local().Format(time.RFC3339))
				for _, name := range names {
					fmt.Fprintf(tw, "\t%d", snap.Counters[name])
				}
				fmt.Fprintln(tw)
			}
			return tw.Flush()
		})
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Maximum number of snapshots (0 for all)")
	rootCmd.AddCommand(historyCmd)
}

package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mosiko1234/heimdal/netinfo/internal/netconfig"
)

var primaryOnly bool

// interfacesCmd prints the IP configuration of host interfaces
var interfacesCmd = &cobra.Command{
	Use:   "interfaces [name]",
	Short: "Show interface IP configuration",
	Long: "Show unicast and multicast addresses, netmasks, gateways and resolver settings " +
		"for every interface, a single named interface, or the primary interface.",
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		in := netconfig.NewInspector(host)

		var reports []*netconfig.InterfaceReport
		switch {
		case primaryOnly:
			if len(args) > 0 {
				return fmt.Errorf("--primary cannot be combined with an interface name")
			}
			report, err := in.PrimaryInterface()
			if err != nil {
				return err
			}
			reports = append(reports, report)
		case len(args) == 1:
			report, err := in.Interface(args[0])
			if err != nil {
				return err
			}
			reports = append(reports, report)
		default:
			all, err := in.Interfaces()
			if err != nil {
				return err
			}
			reports = all
		}

		return render(cmd.OutOrStdout(), reports, func(w io.Writer) error {
			return writeInterfaces(w, reports)
		})
	},
}

func writeInterfaces(w io.Writer, reports []*netconfig.InterfaceReport) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for i, r := range reports {
		if i > 0 {
			fmt.Fprintln(tw)
		}
		fmt.Fprintf(tw, "%s\n", r.Name)
		for _, u := range r.Unicast {
			mask := u.NetMask
			if mask == "" {
				mask = "-"
			}
			fmt.Fprintf(tw, "  unicast\t%s\t%s\t%s\n", u.Address, u.Family, mask)
		}
		for _, m := range r.Multicast {
			fmt.Fprintf(tw, "  multicast\t%s\t\t\n", m)
		}
		if len(r.Gateways) > 0 {
			fmt.Fprintf(tw, "  gateways\t%s\t\t\n", strings.Join(r.Gateways, ", "))
		}
		fmt.Fprintf(tw, "  dns\t%s\t\t\n", dnsSummary(r.DNS))
	}
	return tw.Flush()
}

func dnsSummary(d netconfig.DNSReport) string {
	if !d.Enabled {
		return "disabled"
	}
	s := strings.Join(d.Nameservers, ", ")
	if d.Suffix != "" {
		s += " (suffix " + d.Suffix + ")"
	}
	return s
}

func init() {
	interfacesCmd.Flags().BoolVar(&primaryOnly, "primary", false, "Show only the primary interface")
	rootCmd.AddCommand(interfacesCmd)
}

package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mosiko1234/heimdal/netinfo/internal/resolvconf"
)

// dnsSettings is the serialisable form of the resolver configuration
type dnsSettings struct {
	Source      string   `json:"source" yaml:"source"`
	Enabled     bool     `json:"enabled" yaml:"enabled"`
	Suffix      string   `json:"suffix" yaml:"suffix"`
	Search      []string `json:"search" yaml:"search"`
	Nameservers []string `json:"nameservers" yaml:"nameservers"`
	Ndots       int      `json:"ndots" yaml:"ndots"`
	Timeout     int      `json:"timeout" yaml:"timeout"`
	Attempts    int      `json:"attempts" yaml:"attempts"`
}

func newDNSSettings(path string, c resolvconf.Config) dnsSettings {
	s := dnsSettings{
		Source:      path,
		Enabled:     c.Enabled(),
		Suffix:      c.Suffix,
		Search:      c.Search,
		Nameservers: make([]string, 0, len(c.Nameservers)),
		Ndots:       c.Options.Ndots,
		Timeout:     c.Options.Timeout,
		Attempts:    c.Options.Attempts,
	}
	for _, ns := range c.Nameservers {
		s.Nameservers = append(s.Nameservers, ns.String())
	}
	return s
}

// dnsCmd prints the host resolver configuration
var dnsCmd = &cobra.Command{
	Use:          "dns",
	Short:        "Show resolver configuration",
	Long:         "Show the nameservers, DNS suffix and search list read from the resolver configuration file",
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := host.ResolvConfPath()
		s := newDNSSettings(path, resolvconf.ParseFile(path))

		return render(cmd.OutOrStdout(), s, func(w io.Writer) error {
			tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
			fmt.Fprintf(tw, "source\t%s\n", s.Source)
			fmt.Fprintf(tw, "enabled\t%t\n", s.Enabled)
			fmt.Fprintf(tw, "suffix\t%s\n", s.Suffix)
			fmt.Fprintf(tw, "search\t%s\n", strings.Join(s.Search, " "))
			fmt.Fprintf(tw, "nameservers\t%s\n", strings.Join(s.Nameservers, " "))
			fmt.Fprintf(tw, "options\tndots:%d timeout:%d attempts:%d\n", s.Ndots, s.Timeout, s.Attempts)
			return tw.Flush()
		})
	},
}

func init() {
	rootCmd.AddCommand(dnsCmd)
}

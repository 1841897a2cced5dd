// Package metrics exports protocol counters to Prometheus.
//
// The Collector takes a fresh snapshot of every protocol on each scrape.
// Cumulative kernel counters are exposed as counters with a _total suffix;
// live session and listener counts are gauges. A protocol whose native query
// fails is reported through an invalid metric carrying the query error, and
// the other protocols are still exported.
package metrics

import (
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"github.com/mosiko1234/heimdal/netinfo/internal/logger"
	"github.com/mosiko1234/heimdal/netinfo/internal/platform"
	"github.com/mosiko1234/heimdal/netinfo/internal/protostats"
)

// gauges lists counter names that describe current state rather than totals
var gauges = map[string]bool{
	"listeners":           true,
	"current_connections": true,
}

var help = map[protostats.Protocol]string{
	protostats.ProtocolUDP:    "UDP",
	protostats.ProtocolTCP:    "TCP",
	protostats.ProtocolICMPv4: "ICMPv4",
}

// counterNames returns the stable counter names of proto
func counterNames(proto protostats.Protocol) []string {
	switch proto {
	case protostats.ProtocolUDP:
		return (&protostats.UDPStatistics{}).Snapshot().Names()
	case protostats.ProtocolTCP:
		return (&protostats.TCPStatistics{}).Snapshot().Names()
	case protostats.ProtocolICMPv4:
		return (&protostats.ICMPv4Statistics{}).Snapshot().Names()
	default:
		return nil
	}
}

type metricDesc struct {
	desc      *prometheus.Desc
	valueType prometheus.ValueType
}

// Collector implements prometheus.Collector over a statistics source
type Collector struct {
	source    platform.StatisticsSource
	protocols []protostats.Protocol
	descs     map[protostats.Protocol]map[string]metricDesc
	logger    *logger.Logger
}

var _ prometheus.Collector = (*Collector)(nil)

// NewCollector creates a collector exporting protocols (all when empty)
// under namespace.
func NewCollector(source platform.StatisticsSource, namespace string, protocols ...protostats.Protocol) *Collector {
	if len(protocols) == 0 {
		protocols = protostats.Protocols
	}

	c := &Collector{
		source:    source,
		protocols: protocols,
		descs:     make(map[protostats.Protocol]map[string]metricDesc),
		logger:    logger.NewComponentLogger("Metrics"),
	}

	for _, proto := range protocols {
		byName := make(map[string]metricDesc)
		for _, name := range counterNames(proto) {
			md := metricDesc{valueType: prometheus.CounterValue}
			fqName := prometheus.BuildFQName(namespace, string(proto), name+"_total")
			kind := "total"
			if gauges[name] {
				md.valueType = prometheus.GaugeValue
				fqName = prometheus.BuildFQName(namespace, string(proto), name)
				kind = "current"
			}
			md.desc = prometheus.NewDesc(fqName,
				fmt.Sprintf("%s %s (%s).", help[proto], name, kind), nil, nil)
			byName[name] = md
		}
		c.descs[proto] = byName
	}
	return c
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	for _, proto := range c.protocols {
		for _, md := range c.descs[proto] {
			ch <- md.desc
		}
	}
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	for _, proto := range c.protocols {
		descs := c.descs[proto]

		snap, err := protostats.Capture(c.source, proto)
		if err != nil {
			c.logger.Warn("Failed to capture %s statistics: %v", proto, err)
			for _, md := range descs {
				ch <- prometheus.NewInvalidMetric(md.desc, err)
				break
			}
			continue
		}

		for name, value := range snap.Counters {
			md, ok := descs[name]
			if !ok {
				continue
			}
			ch <- prometheus.MustNewConstMetric(md.desc, md.valueType, float64(value))
		}
	}
}

// WriteText gathers g and writes every family in the text exposition
// format. Families gathered before an error are still written.
func WriteText(w io.Writer, g prometheus.Gatherer) error {
	families, gatherErr := g.Gather()
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return gatherErr
}

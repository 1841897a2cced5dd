// Package resolvconf reads the host resolver configuration.
//
// Parsing never fails. Lines that cannot be understood are skipped, and a
// source that cannot be read yields an empty Config, so callers always get a
// usable (possibly empty) result. The returned Config is a snapshot: later
// edits to the file are not observed.
package resolvconf

import (
	"bytes"
	"io"
	"net"
	"net/netip"
	"os"
	"strings"
	"sync/atomic"

	"github.com/miekg/dns"

	"github.com/mosiko1234/heimdal/netinfo/internal/logger"
)

// DefaultPath is the conventional location of the resolver configuration.
const DefaultPath = "/etc/resolv.conf"

// Options holds the "options" directive values that affect lookups.
type Options struct {
	Ndots    int
	Timeout  int
	Attempts int
}

// Config is the parsed resolver configuration.
type Config struct {
	// Suffix is the first domain of the last search/domain directive.
	Suffix string
	// Search is the full list of the last search/domain directive.
	Search []string
	// Nameservers are in file order, duplicates kept.
	Nameservers []net.IP
	Options     Options
}

// Enabled reports whether at least one nameserver is configured.
func (c Config) Enabled() bool {
	return len(c.Nameservers) > 0
}

var pkgLogger atomic.Pointer[logger.Logger]

func init() {
	pkgLogger.Store(logger.NewNopLogger("ResolvConf"))
}

// SetLogger replaces the package logger. Degradations to an empty Config are
// logged at Debug.
func SetLogger(l *logger.Logger) {
	pkgLogger.Store(l)
}

func log() *logger.Logger {
	return pkgLogger.Load()
}

// Parse reads resolver configuration text from r.
func Parse(r io.Reader) Config {
	if r == nil {
		return Config{}
	}

	// Full-line "#" and ";" comments are dropped before the directive scan.
	data, err := io.ReadAll(r)
	if err != nil {
		log().Debug("Resolver configuration unreadable, using empty config: %v", err)
		return Config{}
	}

	cc, err := dns.ClientConfigFromReader(bytes.NewReader(stripComments(data)))
	if err != nil {
		log().Debug("Resolver configuration rejected, using empty config: %v", err)
		return Config{}
	}

	cfg := Config{
		Options: Options{
			Ndots:    cc.Ndots,
			Timeout:  cc.Timeout,
			Attempts: cc.Attempts,
		},
	}

	if len(cc.Search) > 0 {
		cfg.Search = append([]string(nil), cc.Search...)
		cfg.Suffix = cc.Search[0]
	}

	for _, server := range cc.Servers {
		ip, ok := parseNameserver(server)
		if !ok {
			log().Debug("Skipping malformed nameserver %q", server)
			continue
		}
		cfg.Nameservers = append(cfg.Nameservers, ip)
	}

	return cfg
}

// ParseFile parses the resolver configuration at path. A missing or
// unreadable file produces an empty Config.
func ParseFile(path string) Config {
	file, err := os.Open(path)
	if err != nil {
		log().Debug("Cannot open %s, using empty resolver config: %v", path, err)
		return Config{}
	}
	defer file.Close()

	return Parse(file)
}

func stripComments(data []byte) []byte {
	lines := strings.Split(string(data), "\n")
	kept := lines[:0]
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, ";") {
			continue
		}
		kept = append(kept, line)
	}
	return []byte(strings.Join(kept, "\n"))
}

// parseNameserver accepts plain and zoned addresses ("fe80::1%eth0"); the
// zone is dropped from the returned IP.
func parseNameserver(s string) (net.IP, bool) {
	addr, err := netip.ParseAddr(s)
	if err != nil {
		return nil, false
	}
	return net.IP(addr.WithZone("").Unmap().AsSlice()), true
}

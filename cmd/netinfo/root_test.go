package main

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/mosiko1234/heimdal/netinfo/internal/config"
	"github.com/mosiko1234/heimdal/netinfo/internal/logger"
	"github.com/mosiko1234/heimdal/netinfo/internal/netconfig"
	"github.com/mosiko1234/heimdal/netinfo/internal/platform"
	"github.com/mosiko1234/heimdal/netinfo/internal/protostats"
	"github.com/mosiko1234/heimdal/netinfo/test/mocks"
)

// =============================================================================
// Test Setup
// =============================================================================

type testEnv struct {
	dir      string
	platform *mocks.MockPlatform
	stdout   *bytes.Buffer
	gotCfg   config.PlatformConfig
}

// setupTest points the root command at a mock platform and resets every
// package-level flag variable.
func setupTest(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{dir: t.TempDir(), stdout: new(bytes.Buffer)}

	resolvConf := filepath.Join(env.dir, "resolv.conf")
	if err := os.WriteFile(resolvConf, []byte("search corp.example.com example.com\nnameserver 10.0.0.53\n"), 0644); err != nil {
		t.Fatalf("Failed to write resolv.conf: %v", err)
	}

	eth0 := mocks.NewMockInterface("eth0", "192.168.1.10/24", "224.0.0.1")
	eth0.SetGateways("192.168.1.1")
	env.platform = mocks.NewMockPlatform(mocks.NewMockInterface("lo", "127.0.0.1/8"), eth0)
	env.platform.SetResolvConfPath(resolvConf)
	env.platform.SetUDP(platform.UDPGlobalStatistics{DatagramsReceived: 10, DatagramsSent: 5, Listeners: 3})

	origPlatform, origEnvFile := newPlatform, envFile
	newPlatform = func(c config.PlatformConfig) (platform.Platform, error) {
		env.gotCfg = c
		return env.platform, nil
	}
	envFile = ""

	configPath = filepath.Join(env.dir, "missing.yaml")
	logLevel = ""
	resolvConfPath = ""
	storePath = filepath.Join(env.dir, "db")
	outputFormat = formatText
	primaryOnly = false
	historyLimit = 20

	rootCmd.SetOut(env.stdout)
	rootCmd.SetErr(new(bytes.Buffer))

	t.Cleanup(func() {
		newPlatform, envFile = origPlatform, origEnvFile
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})
	return env
}

func (env *testEnv) run(t *testing.T, args ...string) error {
	t.Helper()
	env.stdout.Reset()
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

// =============================================================================
// Test Cases
// =============================================================================

func TestVersionCmd(t *testing.T) {
	env := setupTest(t)

	originalGoos := Goos
	defer func() { Goos = originalGoos }()
	Goos = "testos"

	if err := env.run(t, "version"); err != nil {
		t.Fatalf("Expected success, got error: %v", err)
	}
	if !strings.Contains(env.stdout.String(), "netinfo v"+version) {
		t.Errorf("Expected version in output, got %q", env.stdout.String())
	}
	if !strings.Contains(env.stdout.String(), "testos/") {
		t.Errorf("Expected custom platform in output, got %q", env.stdout.String())
	}
}

func TestInterfacesCmd(t *testing.T) {
	t.Run("AllInterfacesText", func(t *testing.T) {
		env := setupTest(t)

		if err := env.run(t, "interfaces"); err != nil {
			t.Fatalf("Expected success, got error: %v", err)
		}
		output := env.stdout.String()
		for _, want := range []string{"lo", "eth0", "192.168.1.10", "255.255.255.0", "224.0.0.1", "192.168.1.1", "corp.example.com"} {
			if !strings.Contains(output, want) {
				t.Errorf("Expected %q in output:\n%s", want, output)
			}
		}
	})

	t.Run("NamedInterfaceJSON", func(t *testing.T) {
		env := setupTest(t)

		if err := env.run(t, "interfaces", "eth0", "-o", "json"); err != nil {
			t.Fatalf("Expected success, got error: %v", err)
		}

		var reports []*netconfig.InterfaceReport
		if err := json.Unmarshal(env.stdout.Bytes(), &reports); err != nil {
			t.Fatalf("Failed to decode output: %v", err)
		}
		if len(reports) != 1 || reports[0].Name != "eth0" {
			t.Fatalf("Expected a single eth0 report, got %+v", reports)
		}
		if reports[0].Unicast[0].CIDR != "192.168.1.0/24" {
			t.Errorf("Expected CIDR 192.168.1.0/24, got %s", reports[0].Unicast[0].CIDR)
		}
	})

	t.Run("Primary", func(t *testing.T) {
		env := setupTest(t)

		if err := env.run(t, "interfaces", "--primary"); err != nil {
			t.Fatalf("Expected success, got error: %v", err)
		}
		output := env.stdout.String()
		if !strings.HasPrefix(output, "eth0") {
			t.Errorf("Expected eth0 as primary interface, got:\n%s", output)
		}
		if strings.Contains(output, "127.0.0.1") {
			t.Errorf("Expected loopback to be excluded, got:\n%s", output)
		}
	})

	t.Run("PrimaryWithName", func(t *testing.T) {
		env := setupTest(t)

		if err := env.run(t, "interfaces", "--primary", "eth0"); err == nil {
			t.Error("Expected error combining --primary with a name")
		}
	})

	t.Run("UnknownInterface", func(t *testing.T) {
		env := setupTest(t)

		err := env.run(t, "interfaces", "wlan0")
		if !stderrors.Is(err, platform.ErrInterfaceNotFound) {
			t.Errorf("Expected ErrInterfaceNotFound, got %v", err)
		}
	})
}

func TestDNSCmd(t *testing.T) {
	env := setupTest(t)

	if err := env.run(t, "dns", "-o", "yaml"); err != nil {
		t.Fatalf("Expected success, got error: %v", err)
	}

	var s dnsSettings
	if err := yaml.Unmarshal(env.stdout.Bytes(), &s); err != nil {
		t.Fatalf("Failed to decode output: %v", err)
	}
	if !s.Enabled {
		t.Error("Expected DNS to be enabled")
	}
	if s.Suffix != "corp.example.com" {
		t.Errorf("Expected suffix corp.example.com, got %s", s.Suffix)
	}
	if len(s.Nameservers) != 1 || s.Nameservers[0] != "10.0.0.53" {
		t.Errorf("Expected nameserver 10.0.0.53, got %v", s.Nameservers)
	}
	if len(s.Search) != 2 {
		t.Errorf("Expected 2 search domains, got %v", s.Search)
	}
}

func TestStatsCmd(t *testing.T) {
	t.Run("UDPJSON", func(t *testing.T) {
		env := setupTest(t)

		if err := env.run(t, "stats", "udp", "-o", "json"); err != nil {
			t.Fatalf("Expected success, got error: %v", err)
		}

		var snaps []protostats.Snapshot
		if err := json.Unmarshal(env.stdout.Bytes(), &snaps); err != nil {
			t.Fatalf("Failed to decode output: %v", err)
		}
		if len(snaps) != 1 {
			t.Fatalf("Expected 1 snapshot, got %d", len(snaps))
		}
		want := map[string]int64{
			"datagrams_received": 10,
			"datagrams_sent":     5,
			"incoming_discarded": 0,
			"incoming_errors":    0,
			"listeners":          3,
		}
		for name, value := range want {
			if snaps[0].Counters[name] != value {
				t.Errorf("Expected %s=%d, got %d", name, value, snaps[0].Counters[name])
			}
		}
	})

	t.Run("AllProtocolsText", func(t *testing.T) {
		env := setupTest(t)

		if err := env.run(t, "stats"); err != nil {
			t.Fatalf("Expected success, got error: %v", err)
		}
		for _, want := range []string{"PROTOCOL", "udp", "tcp", "icmp", "active_opens", "echo_requests_received"} {
			if !strings.Contains(env.stdout.String(), want) {
				t.Errorf("Expected %q in output", want)
			}
		}
	})

	t.Run("UnknownProtocol", func(t *testing.T) {
		env := setupTest(t)

		if err := env.run(t, "stats", "sctp"); err == nil {
			t.Error("Expected error for unknown protocol")
		}
	})

	t.Run("QueryFailure", func(t *testing.T) {
		env := setupTest(t)
		env.platform.SetTCPError(&mocks.MockError{Message: "snmp unavailable"})

		if err := env.run(t, "stats", "tcp"); err == nil {
			t.Error("Expected error when the native query fails")
		}
	})
}

func TestRecordAndHistoryCmd(t *testing.T) {
	env := setupTest(t)

	if err := env.run(t, "history", "udp"); err != nil {
		t.Fatalf("Expected success, got error: %v", err)
	}
	if !strings.Contains(env.stdout.String(), "No udp snapshots recorded") {
		t.Errorf("Expected empty history message, got %q", env.stdout.String())
	}

	for i := 0; i < 2; i++ {
		if err := env.run(t, "record"); err != nil {
			t.Fatalf("Expected record success, got error: %v", err)
		}
	}
	if !strings.Contains(env.stdout.String(), "Recorded 3 snapshots") {
		t.Errorf("Expected record summary, got %q", env.stdout.String())
	}

	if err := env.run(t, "history", "udp", "--limit", "1", "-o", "json"); err != nil {
		t.Fatalf("Expected success, got error: %v", err)
	}
	var snaps []protostats.Snapshot
	if err := json.Unmarshal(env.stdout.Bytes(), &snaps); err != nil {
		t.Fatalf("Failed to decode output: %v", err)
	}
	if len(snaps) != 1 {
		t.Fatalf("Expected 1 snapshot with --limit 1, got %d", len(snaps))
	}
	if snaps[0].Counters["datagrams_received"] != 10 {
		t.Errorf("Expected datagrams_received=10, got %d", snaps[0].Counters["datagrams_received"])
	}

	if err := env.run(t, "history", "udp", "--limit", "0", "-o", "text"); err != nil {
		t.Fatalf("Expected success, got error: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(env.stdout.String()), "\n")
	if len(lines) != 3 {
		t.Errorf("Expected header and 2 rows, got:\n%s", env.stdout.String())
	}
}

func TestMetricsCmd(t *testing.T) {
	env := setupTest(t)

	if err := env.run(t, "metrics", "udp"); err != nil {
		t.Fatalf("Expected success, got error: %v", err)
	}
	output := env.stdout.String()
	if !strings.Contains(output, "netinfo_udp_datagrams_received_total 10") {
		t.Errorf("Expected UDP counter in output:\n%s", output)
	}
	if strings.Contains(output, "netinfo_tcp_") {
		t.Errorf("Expected only UDP metrics, got:\n%s", output)
	}
}

func TestRootFlags(t *testing.T) {
	t.Run("ResolvConfOverride", func(t *testing.T) {
		env := setupTest(t)

		if err := env.run(t, "--resolv-conf", "/run/resolv.conf", "stats", "udp"); err != nil {
			t.Fatalf("Expected success, got error: %v", err)
		}
		if env.gotCfg.ResolvConf != "/run/resolv.conf" {
			t.Errorf("Expected platform to get /run/resolv.conf, got %s", env.gotCfg.ResolvConf)
		}
	})

	t.Run("ConfigFile", func(t *testing.T) {
		env := setupTest(t)

		path := filepath.Join(env.dir, "config.yaml")
		data := "metrics:\n  namespace: lab\nplatform:\n  proc_root: /host/proc\n"
		if err := os.WriteFile(path, []byte(data), 0644); err != nil {
			t.Fatalf("Failed to write config: %v", err)
		}

		if err := env.run(t, "--config", path, "metrics", "udp"); err != nil {
			t.Fatalf("Expected success, got error: %v", err)
		}
		if !strings.Contains(env.stdout.String(), "lab_udp_datagrams_received_total 10") {
			t.Errorf("Expected namespace from config file, got:\n%s", env.stdout.String())
		}
		if env.gotCfg.ProcRoot != "/host/proc" {
			t.Errorf("Expected proc root /host/proc, got %s", env.gotCfg.ProcRoot)
		}
	})

	t.Run("ResolverDegradationLogged", func(t *testing.T) {
		env := setupTest(t)
		env.platform.SetResolvConfPath(filepath.Join(env.dir, "absent.conf"))
		defer logger.SetLevel("info")

		logFile := filepath.Join(env.dir, "netinfo.log")
		path := filepath.Join(env.dir, "config.yaml")
		data := "logging:\n  level: debug\n  file: " + logFile + "\n"
		if err := os.WriteFile(path, []byte(data), 0644); err != nil {
			t.Fatalf("Failed to write config: %v", err)
		}

		if err := env.run(t, "--config", path, "dns"); err != nil {
			t.Fatalf("Expected success, got error: %v", err)
		}
		logger.Sync()

		content, err := os.ReadFile(logFile)
		if err != nil {
			t.Fatalf("Failed to read log file: %v", err)
		}
		if !strings.Contains(string(content), "using empty resolver config") {
			t.Errorf("Expected resolver degradation in log, got:\n%s", content)
		}
	})

	t.Run("InvalidOutput", func(t *testing.T) {
		env := setupTest(t)

		if err := env.run(t, "-o", "xml", "dns"); err == nil {
			t.Error("Expected error for invalid output format")
		}
	})

	t.Run("InvalidLogLevel", func(t *testing.T) {
		env := setupTest(t)

		if err := env.run(t, "--log-level", "verbose", "dns"); err == nil {
			t.Error("Expected error for invalid log level")
		}
	})

	t.Run("PlatformError", func(t *testing.T) {
		env := setupTest(t)
		newPlatform = func(config.PlatformConfig) (platform.Platform, error) {
			return nil, platform.ErrUnsupported
		}

		if err := env.run(t, "dns"); !stderrors.Is(err, platform.ErrUnsupported) {
			t.Errorf("Expected ErrUnsupported, got %v", err)
		}
	})
}

func TestExecuteExitsOnError(t *testing.T) {
	setupTest(t)

	var exitCode int
	origExit := exitFunc
	exitFunc = func(code int) { exitCode = code }
	defer func() { exitFunc = origExit }()

	rootCmd.SetArgs([]string{"stats", "sctp"})
	Execute()

	if exitCode != 1 {
		t.Errorf("Expected exit code 1, got %d", exitCode)
	}
}

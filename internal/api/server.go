// Package api provides the REST API and Prometheus endpoint for netinfo.
//
// The APIServer component serves the same reports as the CLI over HTTP. It
// uses the gorilla/mux router for HTTP routing and implements per-IP rate
// limiting.
//
// API Endpoints:
//
//	GET  /api/v1/interfaces           → Reports for every interface
//	GET  /api/v1/interfaces/{name}    → Report for one interface
//	GET  /api/v1/primary              → Report for the primary interface
//	GET  /api/v1/dns                  → Resolver configuration
//	GET  /api/v1/stats                → Fresh snapshot of every protocol
//	GET  /api/v1/stats/{protocol}     → Fresh snapshot of one protocol
//	GET  /api/v1/history/{protocol}   → Recorded snapshots, newest first (?limit=N)
//	GET  /api/v1/health               → Health check endpoint
//	GET  /api/v1/stream               → WebSocket of fresh snapshots (?protocol=udp&interval=5s)
//	GET  /metrics                     → Prometheus exposition
//
// The server listens on a configurable host and port (default: 0.0.0.0:9464) and
// implements graceful shutdown via context cancellation.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/mosiko1234/heimdal/netinfo/internal/config"
	"github.com/mosiko1234/heimdal/netinfo/internal/database"
	"github.com/mosiko1234/heimdal/netinfo/internal/errors"
	"github.com/mosiko1234/heimdal/netinfo/internal/logger"
	"github.com/mosiko1234/heimdal/netinfo/internal/metrics"
	"github.com/mosiko1234/heimdal/netinfo/internal/netconfig"
	"github.com/mosiko1234/heimdal/netinfo/internal/platform"
	"github.com/mosiko1234/heimdal/netinfo/internal/protostats"
)

// APIServer provides the HTTP API for netinfo
type APIServer struct {
	inspector   *netconfig.Inspector
	store       *database.SnapshotStore
	registry    *prometheus.Registry
	router      *mux.Router
	server      *http.Server
	listener    net.Listener
	addr        string
	rateLimiter *rateLimiterMiddleware
	startTime   time.Time
	logger      *logger.Logger
	mu          sync.RWMutex

	// stopCh is closed by Stop; stream connections are hijacked, so Shutdown
	// does not end them on its own.
	stopCh   chan struct{}
	stopOnce sync.Once
}

// rateLimiterMiddleware implements per-IP rate limiting
type rateLimiterMiddleware struct {
	limiters map[string]*rate.Limiter
	mu       sync.RWMutex
	rate     int // requests per minute
}

// NewAPIServer creates a new API server instance. store may be nil, in
// which case the history endpoint reports 503.
func NewAPIServer(in *netconfig.Inspector, store *database.SnapshotStore, cfg config.APIConfig, namespace string) (*APIServer, error) {
	registry := prometheus.NewRegistry()
	if err := registry.Register(metrics.NewCollector(in.Platform(), namespace)); err != nil {
		return nil, errors.Wrap(err, "failed to register protocol collector")
	}

	server := &APIServer{
		inspector: in,
		store:     store,
		registry:  registry,
		router:    mux.NewRouter(),
		addr:      net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		rateLimiter: &rateLimiterMiddleware{
			limiters: make(map[string]*rate.Limiter),
			rate:     cfg.RateLimitPerMinute,
		},
		startTime: time.Now(),
		logger:    logger.NewComponentLogger("API"),
		stopCh:    make(chan struct{}),
	}

	server.setupRoutes()

	server.server = &http.Server{
		Handler:      server.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return server, nil
}

// setupRoutes configures all API routes and middleware
func (s *APIServer) setupRoutes() {
	s.router.Use(s.rateLimiter.middleware)
	s.router.Use(s.loggingMiddleware)

	api := s.router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/interfaces", s.handleGetInterfaces).Methods("GET")
	api.HandleFunc("/interfaces/{name}", s.handleGetInterface).Methods("GET")
	api.HandleFunc("/primary", s.handleGetPrimary).Methods("GET")
	api.HandleFunc("/dns", s.handleGetDNS).Methods("GET")
	api.HandleFunc("/stats", s.handleGetAllStats).Methods("GET")
	api.HandleFunc("/stats/{protocol}", s.handleGetStats).Methods("GET")
	api.HandleFunc("/history/{protocol}", s.handleGetHistory).Methods("GET")
	api.HandleFunc("/health", s.handleGetHealth).Methods("GET")
	api.HandleFunc("/stream", s.handleStream).Methods("GET")

	s.router.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{
		ErrorHandling: promhttp.ContinueOnError,
	})).Methods("GET")
}

// Handler returns the root HTTP handler
func (s *APIServer) Handler() http.Handler {
	return s.router
}

// loggingMiddleware logs all HTTP requests
func (s *APIServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("%s %s - %v", r.Method, r.URL.Path, time.Since(start))
	})
}

// middleware implements rate limiting per IP address
func (rl *rateLimiterMiddleware) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}

		rl.mu.Lock()
		limiter, exists := rl.limiters[ip]
		if !exists {
			// Create new limiter: rate per minute converted to per second
			limiter = rate.NewLimiter(rate.Limit(float64(rl.rate)/60.0), rl.rate)
			rl.limiters[ip] = limiter
		}
		rl.mu.Unlock()

		if !limiter.Allow() {
			respondError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Start begins serving HTTP requests and blocks until ctx is cancelled
func (s *APIServer) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return errors.Wrap(err, "failed to listen on %s", s.addr)
	}

	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()

	s.logger.Info("Starting server on %s", ln.Addr())

	go func() {
		if err := s.server.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.logger.Error("Server error: %v", err)
		}
	}()

	<-ctx.Done()
	return s.Stop()
}

// Addr returns the bound listen address, or the configured one before Start
func (s *APIServer) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

// Stop gracefully shuts down the API server and closes open streams
func (s *APIServer) Stop() error {
	s.logger.Info("Shutting down server...")
	s.stopOnce.Do(func() { close(s.stopCh) })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown API server: %w", err)
	}

	s.logger.Info("Server stopped")
	return nil
}

// Name returns the component name
func (s *APIServer) Name() string {
	return "APIServer"
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Warn("API: Failed to encode JSON response: %v", err)
	}
}

// respondError sends an error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}

// InterfacesResponse represents the response for the interface list endpoint
type InterfacesResponse struct {
	Interfaces []*netconfig.InterfaceReport `json:"interfaces"`
	Count      int                          `json:"count"`
}

// DNSResponse represents the resolver configuration
type DNSResponse struct {
	Source      string   `json:"source"`
	Enabled     bool     `json:"enabled"`
	Suffix      string   `json:"suffix"`
	Search      []string `json:"search"`
	Nameservers []string `json:"nameservers"`
}

// HistoryResponse represents recorded snapshots of one protocol
type HistoryResponse struct {
	Protocol  protostats.Protocol   `json:"protocol"`
	Snapshots []protostats.Snapshot `json:"snapshots"`
	Count     int                   `json:"count"`
}

// HealthResponse represents health check status
type HealthResponse struct {
	Status    string    `json:"status"`
	Platform  string    `json:"platform"`
	Uptime    string    `json:"uptime"`
	Database  string    `json:"database"`
	Timestamp time.Time `json:"timestamp"`
}

func (s *APIServer) handleGetInterfaces(w http.ResponseWriter, r *http.Request) {
	reports, err := s.inspector.Interfaces()
	if err != nil {
		s.logger.Error("Failed to enumerate interfaces: %v", err)
		respondError(w, http.StatusInternalServerError, "failed to enumerate interfaces")
		return
	}

	respondJSON(w, http.StatusOK, InterfacesResponse{
		Interfaces: reports,
		Count:      len(reports),
	})
}

func (s *APIServer) handleGetInterface(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	report, err := s.inspector.Interface(name)
	if errors.Is(err, platform.ErrInterfaceNotFound) {
		respondError(w, http.StatusNotFound, "interface not found")
		return
	}
	if err != nil {
		s.logger.Error("Failed to read interface %s: %v", name, err)
		respondError(w, http.StatusInternalServerError, "failed to read interface")
		return
	}

	respondJSON(w, http.StatusOK, report)
}

func (s *APIServer) handleGetPrimary(w http.ResponseWriter, r *http.Request) {
	report, err := s.inspector.PrimaryInterface()
	if err != nil {
		s.logger.Warn("No primary interface: %v", err)
		respondError(w, http.StatusNotFound, "no primary interface")
		return
	}

	respondJSON(w, http.StatusOK, report)
}

func (s *APIServer) handleGetDNS(w http.ResponseWriter, r *http.Request) {
	dns := s.inspector.DNS()

	response := DNSResponse{
		Source:      s.inspector.Platform().ResolvConfPath(),
		Enabled:     dns.Enabled(),
		Suffix:      dns.Suffix,
		Search:      dns.Search,
		Nameservers: make([]string, 0, len(dns.Nameservers)),
	}
	for _, ns := range dns.Nameservers {
		response.Nameservers = append(response.Nameservers, ns.String())
	}

	respondJSON(w, http.StatusOK, response)
}

func (s *APIServer) handleGetAllStats(w http.ResponseWriter, r *http.Request) {
	snaps := make([]protostats.Snapshot, 0, len(protostats.Protocols))
	for _, proto := range protostats.Protocols {
		snap, err := protostats.Capture(s.inspector.Platform(), proto)
		if err != nil {
			s.logger.Error("Failed to capture %s statistics: %v", proto, err)
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		snaps = append(snaps, snap)
	}

	respondJSON(w, http.StatusOK, snaps)
}

func (s *APIServer) handleGetStats(w http.ResponseWriter, r *http.Request) {
	proto, ok := protostats.ParseProtocol(mux.Vars(r)["protocol"])
	if !ok {
		respondError(w, http.StatusBadRequest, "unknown protocol")
		return
	}

	snap, err := protostats.Capture(s.inspector.Platform(), proto)
	if err != nil {
		s.logger.Error("Failed to capture %s statistics: %v", proto, err)
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, snap)
}

func (s *APIServer) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	proto, ok := protostats.ParseProtocol(mux.Vars(r)["protocol"])
	if !ok {
		respondError(w, http.StatusBadRequest, "unknown protocol")
		return
	}
	if s.store == nil {
		respondError(w, http.StatusServiceUnavailable, "snapshot store not configured")
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			respondError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	snaps, err := s.store.List(proto, limit)
	if err != nil {
		s.logger.Error("Failed to list %s snapshots: %v", proto, err)
		respondError(w, http.StatusInternalServerError, "failed to retrieve history")
		return
	}

	respondJSON(w, http.StatusOK, HistoryResponse{
		Protocol:  proto,
		Snapshots: snaps,
		Count:     len(snaps),
	})
}

// handleGetHealth returns health check status
func (s *APIServer) handleGetHealth(w http.ResponseWriter, r *http.Request) {
	dbStatus := "disabled"
	if s.store != nil {
		dbStatus = "healthy"
		if _, err := s.store.List(protostats.ProtocolUDP, 1); err != nil {
			dbStatus = "unhealthy"
		}
	}

	uptime := time.Since(s.startTime)
	uptimeStr := fmt.Sprintf("%dd %dh %dm %ds",
		int(uptime.Hours())/24,
		int(uptime.Hours())%24,
		int(uptime.Minutes())%60,
		int(uptime.Seconds())%60,
	)

	respondJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Platform:  s.inspector.Platform().Name(),
		Uptime:    uptimeStr,
		Database:  dbStatus,
		Timestamp: time.Now(),
	})
}

// Package orchestrator runs netinfo as a long-lived service. It handles
// component initialization, startup sequencing, health tracking and graceful
// shutdown.
//
// Startup sequence:
//  1. Snapshot store (retried with backoff)
//  2. Interface inspector over the host platform
//  3. Recorder (periodic protocol snapshots)
//  4. API server (REST + /metrics)
//
// Components implement the Component interface for uniform lifecycle
// management and are stopped in reverse order.
package orchestrator

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"sync"
	"syscall"
	"time"

	"github.com/mosiko1234/heimdal/netinfo/internal/api"
	"github.com/mosiko1234/heimdal/netinfo/internal/config"
	"github.com/mosiko1234/heimdal/netinfo/internal/database"
	"github.com/mosiko1234/heimdal/netinfo/internal/errors"
	"github.com/mosiko1234/heimdal/netinfo/internal/logger"
	"github.com/mosiko1234/heimdal/netinfo/internal/netconfig"
	"github.com/mosiko1234/heimdal/netinfo/internal/platform"
)

// Component interface defines the lifecycle methods for all components
type Component interface {
	Start() error
	Stop() error
	Name() string
}

// Orchestrator manages the lifecycle of all netinfo service components
type Orchestrator struct {
	config     *config.Config
	platform   platform.Platform
	store      *database.SnapshotStore
	components []Component
	logger     *logger.Logger

	inspector *netconfig.Inspector
	recorder  *Recorder
	apiServer *api.APIServer
	apiErrCh  chan error

	shutdownCh chan struct{}
	wg         sync.WaitGroup
	mu         sync.Mutex

	componentHealth map[string]*componentHealthInfo
	healthMu        sync.RWMutex
}

// componentHealthInfo tracks the running state of a component
type componentHealthInfo struct {
	name      string
	startedAt time.Time
	isRunning bool
}

// ComponentStatus describes one managed component. StartedAt is the zero
// time for a component that has not run yet, and keeps the last start time
// after it stops.
type ComponentStatus struct {
	Name      string
	Running   bool
	StartedAt time.Time
}

// NewOrchestrator creates a new orchestrator instance
func NewOrchestrator(cfg *config.Config, p platform.Platform) (*Orchestrator, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration is required")
	}
	if p == nil {
		return nil, fmt.Errorf("platform is required")
	}

	return &Orchestrator{
		config:          cfg,
		platform:        p,
		logger:          logger.NewComponentLogger("Orchestrator"),
		components:      make([]Component, 0),
		apiErrCh:        make(chan error, 1),
		shutdownCh:      make(chan struct{}),
		componentHealth: make(map[string]*componentHealthInfo),
	}, nil
}

// Run starts all components and blocks until a shutdown signal is received
// or ctx is cancelled.
func (o *Orchestrator) Run(ctx context.Context) error {
	o.logger.Info("=== netinfo service starting on %s ===", o.platform.Name())

	if err := o.initializeComponents(); err != nil {
		o.closeStore()
		return errors.WrapWithLog(err, "failed to initialize components")
	}

	if err := o.startComponents(ctx); err != nil {
		o.shutdown()
		return errors.WrapWithLog(err, "failed to start components")
	}

	o.logger.Info("=== netinfo service running ===")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	defer signal.Stop(sigChan)

	var runErr error
	select {
	case sig := <-sigChan:
		o.logger.Info("Received signal: %v", sig)
	case <-ctx.Done():
		o.logger.Info("Context cancelled")
	case err := <-o.apiErrCh:
		o.logger.Error("API server failed: %v", err)
		runErr = err
	}

	o.shutdown()
	return runErr
}

// initializeComponents creates all component instances with proper dependencies
func (o *Orchestrator) initializeComponents() error {
	o.logger.Info("Initializing components...")

	// 1. Snapshot store
	o.logger.Info("Opening snapshot store at %s", o.config.Store.Path)
	err := errors.RetryWithBackoff("snapshot store initialization", errors.DefaultRetryConfig(), func() error {
		var err error
		o.store, err = database.Open(o.config.Store.Path)
		return err
	})
	if err != nil {
		return errors.Wrap(err, "failed to open snapshot store")
	}

	// 2. Inspector
	o.inspector = netconfig.NewInspector(o.platform)
	if report, err := o.inspector.PrimaryInterface(); err != nil {
		o.logger.Warn("No primary interface detected: %v", err)
	} else {
		o.logger.Info("Primary interface: %s", report.Name)
	}

	// 3. Recorder
	o.recorder = NewRecorder(o.platform, o.store, o.config.Store.Interval, o.config.Store.Retention)
	o.components = append(o.components, o.recorder)
	o.initComponentHealth(o.recorder.Name())

	// 4. API server
	o.apiServer, err = api.NewAPIServer(o.inspector, o.store, o.config.API, o.config.Metrics.Namespace)
	if err != nil {
		return errors.Wrap(err, "failed to create API server")
	}
	o.initComponentHealth(o.apiServer.Name())

	o.logger.Info("All components initialized")
	return nil
}

// startComponents launches all components in order
func (o *Orchestrator) startComponents(ctx context.Context) error {
	o.logger.Info("Starting components...")

	for _, component := range o.components {
		o.logger.Info("Starting component: %s", component.Name())
		if err := component.Start(); err != nil {
			return errors.NewComponentError(component.Name(), "start", err)
		}
		o.markComponentRunning(component.Name(), true)
	}

	// The API server blocks in Start until its context ends
	o.markComponentRunning(o.apiServer.Name(), true)
	apiCtx, cancel := context.WithCancel(ctx)
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		if err := o.apiServer.Start(apiCtx); err != nil {
			o.markComponentRunning(o.apiServer.Name(), false)
			select {
			case o.apiErrCh <- errors.NewComponentError(o.apiServer.Name(), "serve", err):
			default:
			}
		}
	}()
	go func() {
		<-o.shutdownCh
		cancel()
	}()

	// Interface reports are rebuilt every interval so address changes show up
	o.wg.Add(1)
	go o.refreshLoop()

	o.logger.Info("All %d components started successfully", len(o.components)+1) // +1 for API server
	for _, st := range o.GetComponentDetails() {
		o.logger.Debug("Component %s running=%t since %s", st.Name, st.Running, st.StartedAt.Format(time.RFC3339))
	}
	return nil
}

// refreshLoop drops cached interface providers on every recording interval
func (o *Orchestrator) refreshLoop() {
	defer o.wg.Done()

	ticker := time.NewTicker(o.config.Store.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-o.shutdownCh:
			return
		case <-ticker.C:
			o.inspector.Refresh()
		}
	}
}

// initComponentHealth initializes health tracking for a component
func (o *Orchestrator) initComponentHealth(name string) {
	o.healthMu.Lock()
	defer o.healthMu.Unlock()

	o.componentHealth[name] = &componentHealthInfo{name: name}
}

// markComponentRunning updates the running status of a component
func (o *Orchestrator) markComponentRunning(name string, running bool) {
	o.healthMu.Lock()
	defer o.healthMu.Unlock()

	if health, exists := o.componentHealth[name]; exists {
		health.isRunning = running
		if running {
			health.startedAt = time.Now()
		}
	}
}

// shutdown performs graceful shutdown of all components
func (o *Orchestrator) shutdown() {
	o.logger.Info("=== netinfo service shutting down ===")

	o.mu.Lock()
	defer o.mu.Unlock()

	select {
	case <-o.shutdownCh:
		return
	default:
	}
	close(o.shutdownCh)

	// Stop in reverse order of startup
	for i := len(o.components) - 1; i >= 0; i-- {
		component := o.components[i]
		o.logger.Info("Stopping component: %s", component.Name())
		if err := component.Stop(); err != nil {
			o.logger.Warn("Error stopping %s: %v", component.Name(), err)
		}
		o.markComponentRunning(component.Name(), false)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	o.logger.Info("Waiting for goroutines to finish...")
	done := make(chan struct{})
	go func() {
		o.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		o.logger.Info("All goroutines finished")
	case <-shutdownCtx.Done():
		o.logger.Warn("Shutdown timeout reached, forcing exit")
	}
	if o.apiServer != nil {
		o.markComponentRunning(o.apiServer.Name(), false)
	}

	o.closeStore()
	o.logger.Info("=== netinfo service stopped ===")
}

func (o *Orchestrator) closeStore() {
	if o.store != nil {
		o.logger.Info("Closing snapshot store...")
		errors.SafeClose(o.store, "snapshot store")
	}
}

// GetComponentStatus returns the current status of all components
func (o *Orchestrator) GetComponentStatus() map[string]bool {
	o.healthMu.RLock()
	defer o.healthMu.RUnlock()

	status := make(map[string]bool)
	for name, health := range o.componentHealth {
		status[name] = health.isRunning
	}

	return status
}

// GetComponentDetails returns the status of every component ordered by name
func (o *Orchestrator) GetComponentDetails() []ComponentStatus {
	o.healthMu.RLock()
	defer o.healthMu.RUnlock()

	details := make([]ComponentStatus, 0, len(o.componentHealth))
	for _, health := range o.componentHealth {
		details = append(details, ComponentStatus{
			Name:      health.name,
			Running:   health.isRunning,
			StartedAt: health.startedAt,
		})
	}
	sort.Slice(details, func(i, j int) bool { return details[i].Name < details[j].Name })
	return details
}

package orchestrator

import (
	"fmt"
	"sync"
	"time"

	"github.com/mosiko1234/heimdal/netinfo/internal/database"
	"github.com/mosiko1234/heimdal/netinfo/internal/errors"
	"github.com/mosiko1234/heimdal/netinfo/internal/logger"
	"github.com/mosiko1234/heimdal/netinfo/internal/platform"
	"github.com/mosiko1234/heimdal/netinfo/internal/protostats"
)

// Recorder periodically snapshots every protocol into the store and prunes
// snapshots older than the retention window.
type Recorder struct {
	source    platform.StatisticsSource
	store     *database.SnapshotStore
	interval  time.Duration
	retention time.Duration
	logger    *logger.Logger

	stopCh   chan struct{}
	wg       sync.WaitGroup
	mu       sync.Mutex
	running  bool
	recorded int
	lastErr  error
}

// NewRecorder creates a recorder; Start launches its loop
func NewRecorder(source platform.StatisticsSource, store *database.SnapshotStore, interval, retention time.Duration) *Recorder {
	return &Recorder{
		source:    source,
		store:     store,
		interval:  interval,
		retention: retention,
		logger:    logger.NewComponentLogger("Recorder"),
	}
}

// RecordOnce captures every protocol, saves the snapshots that succeeded and
// prunes expired ones. A protocol whose query fails is skipped; the error is
// returned after the others are saved. Errors are *errors.ComponentError
// values naming the failed operation.
func (r *Recorder) RecordOnce() (int, error) {
	snaps := make([]protostats.Snapshot, 0, len(protostats.Protocols))
	var captureErr error
	for _, proto := range protostats.Protocols {
		snap, err := protostats.Capture(r.source, proto)
		if err != nil {
			r.logger.Warn("Skipping %s: %v", proto, err)
			captureErr = errors.NewComponentError(r.Name(), "capture "+string(proto), err)
			continue
		}
		snaps = append(snaps, snap)
	}

	if err := r.store.SaveBatch(snaps); err != nil {
		return 0, errors.NewComponentError(r.Name(), "save snapshots", err)
	}

	if pruned, err := r.store.Prune(time.Now().Add(-r.retention)); err != nil {
		r.logger.Warn("Failed to prune snapshots: %v", err)
	} else if pruned > 0 {
		r.logger.Debug("Pruned %d expired snapshots", pruned)
	}

	r.mu.Lock()
	r.recorded += len(snaps)
	r.lastErr = captureErr
	r.mu.Unlock()

	return len(snaps), captureErr
}

// Start records immediately and then on every interval
func (r *Recorder) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		return fmt.Errorf("recorder already running")
	}
	if r.interval <= 0 {
		return fmt.Errorf("recorder interval must be positive")
	}

	r.stopCh = make(chan struct{})
	r.running = true

	r.wg.Add(1)
	go r.loop()

	r.logger.Info("Recording every %s, keeping %s", r.interval, r.retention)
	return nil
}

func (r *Recorder) loop() {
	defer r.wg.Done()

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		if n, err := r.RecordOnce(); err != nil {
			r.logger.Warn("Recorded %d snapshots with errors: %v", n, err)
		}

		select {
		case <-r.stopCh:
			return
		case <-ticker.C:
		}
	}
}

// Stop ends the loop and waits for an in-flight recording
func (r *Recorder) Stop() error {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return nil
	}
	close(r.stopCh)
	r.running = false
	r.mu.Unlock()

	r.wg.Wait()
	return nil
}

// Name returns the component name
func (r *Recorder) Name() string {
	return "Recorder"
}

// Recorded returns the number of snapshots saved since creation
func (r *Recorder) Recorded() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.recorded
}

// LastError returns the capture error of the most recent recording
func (r *Recorder) LastError() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastErr
}

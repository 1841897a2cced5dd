// Package database provides persistent snapshot history for netinfo using BadgerDB.
//
// BadgerDB is an embedded, pure-Go key-value database. The store keeps every
// recorded protocol snapshot so counters can be compared over time.
//
// Data is stored with prefixed keys:
//   - snapshot:<protocol>:<unix nanos, zero padded> → JSON-serialized protostats.Snapshot
//   - meta:<name>                                   → free-form metadata
//
// The zero-padded timestamp keeps keys of one protocol in capture order, so
// the newest snapshot is found with a single reverse seek.
//
// Writes are retried with exponential backoff. When the database stays
// unavailable the snapshot is kept in an in-memory buffer until FlushBuffer
// succeeds.
package database

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/mosiko1234/heimdal/netinfo/internal/errors"
	"github.com/mosiko1234/heimdal/netinfo/internal/logger"
	"github.com/mosiko1234/heimdal/netinfo/internal/protostats"
)

// Key prefix constants
const (
	SnapshotPrefix = "snapshot:"
	MetaPrefix     = "meta:"
)

// ErrNotFound is returned when no snapshot matches a lookup
var ErrNotFound = errors.New("snapshot not found")

// MemoryBuffer provides in-memory storage when database is unavailable
type MemoryBuffer struct {
	snapshots map[string]protostats.Snapshot
	maxSize   int
	mu        sync.RWMutex
}

// SnapshotStore manages BadgerDB operations
type SnapshotStore struct {
	db     *badger.DB
	path   string
	buffer *MemoryBuffer
	retry  errors.RetryConfig
	logger *logger.Logger
	mu     sync.RWMutex
}

// Open initializes a SnapshotStore at path. An empty path opens an in-memory
// database.
func Open(path string) (*SnapshotStore, error) {
	log := logger.NewComponentLogger("Database")

	opts := badger.DefaultOptions(path)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	opts.Logger = nil // Disable BadgerDB's default logger

	log.Info("Opening snapshot store at %s", path)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open BadgerDB at %s", path)
	}

	store := &SnapshotStore{
		db:   db,
		path: path,
		buffer: &MemoryBuffer{
			snapshots: make(map[string]protostats.Snapshot),
			maxSize:   1000,
		},
		retry:  errors.DefaultRetryConfig(),
		logger: log,
	}

	log.Info("Snapshot store initialized successfully")
	return store, nil
}

// Path returns the on-disk location of the store
func (s *SnapshotStore) Path() string {
	return s.path
}

// Close gracefully shuts down the database
func (s *SnapshotStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.logger.Info("Closing snapshot store...")

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.logger.Error("Failed to close database: %v", err)
			return errors.Wrap(err, "failed to close database")
		}
		s.db = nil
	}

	s.logger.Info("Snapshot store closed successfully")
	return nil
}

// snapshotKey orders keys of one protocol by capture time
func snapshotKey(proto protostats.Protocol, at time.Time) []byte {
	return []byte(fmt.Sprintf("%s%s:%020d", SnapshotPrefix, proto, at.UnixNano()))
}

func protocolPrefix(proto protostats.Protocol) []byte {
	return []byte(SnapshotPrefix + string(proto) + ":")
}

// keyTime extracts the capture time from a snapshot key
func keyTime(key []byte) (time.Time, bool) {
	k := string(key)
	idx := strings.LastIndexByte(k, ':')
	if idx < 0 {
		return time.Time{}, false
	}
	nanos, err := strconv.ParseInt(k[idx+1:], 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.Unix(0, nanos), true
}

func validate(snap protostats.Snapshot) error {
	if _, ok := protostats.ParseProtocol(string(snap.Protocol)); !ok {
		return fmt.Errorf("unknown snapshot protocol %q", snap.Protocol)
	}
	if snap.CapturedAt.IsZero() {
		return fmt.Errorf("snapshot capture time cannot be zero")
	}
	return nil
}

// Save persists a snapshot with JSON serialization
func (s *SnapshotStore) Save(snap protostats.Snapshot) error {
	if err := validate(snap); err != nil {
		return err
	}

	data, err := json.Marshal(snap)
	if err != nil {
		return errors.Wrap(err, "failed to serialize %s snapshot", snap.Protocol)
	}
	key := snapshotKey(snap.Protocol, snap.CapturedAt)

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return fmt.Errorf("snapshot store is closed")
	}

	err = errors.RetryWithBackoff("save snapshot", s.retry, func() error {
		return s.db.Update(func(txn *badger.Txn) error {
			return txn.Set(key, data)
		})
	})

	if err != nil {
		// If database write fails, buffer in memory
		s.buffer.mu.Lock()
		if len(s.buffer.snapshots) < s.buffer.maxSize {
			s.buffer.snapshots[string(key)] = snap
			s.logger.Warn("Snapshot %s buffered in memory due to database error", key)
		} else {
			s.logger.Error("Memory buffer full, dropping snapshot %s", key)
		}
		s.buffer.mu.Unlock()
		return errors.Wrap(err, "failed to save snapshot to database (buffered in memory)")
	}

	s.logger.Debug("Snapshot %s saved successfully", key)
	return nil
}

// SaveBatch persists several snapshots in one transaction
func (s *SnapshotStore) SaveBatch(snaps []protostats.Snapshot) error {
	if len(snaps) == 0 {
		return nil
	}
	for _, snap := range snaps {
		if err := validate(snap); err != nil {
			return err
		}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return fmt.Errorf("snapshot store is closed")
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		for _, snap := range snaps {
			data, err := json.Marshal(snap)
			if err != nil {
				return fmt.Errorf("failed to serialize %s snapshot: %w", snap.Protocol, err)
			}
			if err := txn.Set(snapshotKey(snap.Protocol, snap.CapturedAt), data); err != nil {
				return err
			}
		}
		return nil
	})

	if err != nil {
		// If batch write fails, buffer snapshots in memory
		s.buffer.mu.Lock()
		for _, snap := range snaps {
			if len(s.buffer.snapshots) < s.buffer.maxSize {
				s.buffer.snapshots[string(snapshotKey(snap.Protocol, snap.CapturedAt))] = snap
			}
		}
		s.buffer.mu.Unlock()
		return fmt.Errorf("failed to save snapshot batch (buffered in memory): %w", err)
	}

	return nil
}

// List returns up to limit snapshots of proto, newest first. A limit of zero
// or less returns every snapshot.
func (s *SnapshotStore) List(proto protostats.Protocol, limit int) ([]protostats.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return nil, fmt.Errorf("snapshot store is closed")
	}

	prefix := protocolPrefix(proto)
	snaps := make([]protostats.Snapshot, 0)

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.Reverse = true

		it := txn.NewIterator(opts)
		defer it.Close()

		// Reverse iteration starts at the largest key not above the seek key
		seek := append(append([]byte{}, prefix...), 0xff)
		for it.Seek(seek); it.Valid(); it.Next() {
			if limit > 0 && len(snaps) >= limit {
				break
			}

			err := it.Item().Value(func(val []byte) error {
				var snap protostats.Snapshot
				if err := json.Unmarshal(val, &snap); err != nil {
					return err
				}
				snaps = append(snaps, snap)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to retrieve %s snapshots: %w", proto, err)
	}

	return snaps, nil
}

// Latest returns the newest snapshot of proto or ErrNotFound
func (s *SnapshotStore) Latest(proto protostats.Protocol) (protostats.Snapshot, error) {
	snaps, err := s.List(proto, 1)
	if err != nil {
		return protostats.Snapshot{}, err
	}
	if len(snaps) == 0 {
		return protostats.Snapshot{}, fmt.Errorf("%w: %s", ErrNotFound, proto)
	}
	return snaps[0], nil
}

// Prune deletes every snapshot captured before cutoff and returns how many
// were removed.
func (s *SnapshotStore) Prune(cutoff time.Time) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return 0, fmt.Errorf("snapshot store is closed")
	}

	var stale [][]byte
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(SnapshotPrefix)
		opts.PrefetchValues = false

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			key := it.Item().KeyCopy(nil)
			if at, ok := keyTime(key); ok && at.Before(cutoff) {
				stale = append(stale, key)
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to scan snapshots: %w", err)
	}

	if len(stale) == 0 {
		return 0, nil
	}

	wb := s.db.NewWriteBatch()
	defer wb.Cancel()
	for _, key := range stale {
		if err := wb.Delete(key); err != nil {
			return 0, fmt.Errorf("failed to delete snapshot %s: %w", key, err)
		}
	}
	if err := wb.Flush(); err != nil {
		return 0, fmt.Errorf("failed to prune snapshots: %w", err)
	}

	s.logger.Info("Pruned %d snapshots older than %s", len(stale), cutoff.Format(time.RFC3339))
	return len(stale), nil
}

// SetMeta stores a metadata value
func (s *SnapshotStore) SetMeta(name, value string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return fmt.Errorf("snapshot store is closed")
	}

	return errors.RetryWithBackoff("save meta", s.retry, func() error {
		return s.db.Update(func(txn *badger.Txn) error {
			return txn.Set([]byte(MetaPrefix+name), []byte(value))
		})
	})
}

// GetMeta reads a metadata value; missing keys return "" and false
func (s *SnapshotStore) GetMeta(name string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return "", false, fmt.Errorf("snapshot store is closed")
	}

	var value string
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(MetaPrefix + name))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			value = string(val)
			return nil
		})
	})

	if err == badger.ErrKeyNotFound {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to retrieve meta %s: %w", name, err)
	}
	return value, true, nil
}

// FlushBuffer attempts to write buffered snapshots to the database
func (s *SnapshotStore) FlushBuffer() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	s.buffer.mu.Lock()
	defer s.buffer.mu.Unlock()

	if len(s.buffer.snapshots) == 0 {
		return nil
	}
	if s.db == nil {
		return fmt.Errorf("snapshot store is closed")
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		for key, snap := range s.buffer.snapshots {
			data, err := json.Marshal(snap)
			if err != nil {
				return fmt.Errorf("failed to serialize snapshot %s: %w", key, err)
			}
			if err := txn.Set([]byte(key), data); err != nil {
				return err
			}
		}
		return nil
	})

	if err != nil {
		return fmt.Errorf("failed to flush snapshot buffer: %w", err)
	}

	// Clear buffer after successful flush
	s.buffer.snapshots = make(map[string]protostats.Snapshot)
	return nil
}

// GetBufferSize returns the current number of snapshots in the memory buffer
func (s *SnapshotStore) GetBufferSize() int {
	s.buffer.mu.RLock()
	defer s.buffer.mu.RUnlock()
	return len(s.buffer.snapshots)
}

// IsBufferFull returns true if the memory buffer has reached capacity
func (s *SnapshotStore) IsBufferFull() bool {
	s.buffer.mu.RLock()
	defer s.buffer.mu.RUnlock()
	return len(s.buffer.snapshots) >= s.buffer.maxSize
}

// ABOUTME: JSON-file implementation of the Store interface
// ABOUTME: Single-writer full-file rewrite guarded by one RWMutex

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/2389/coven-mailstore/internal/message"
	"github.com/2389/coven-mailstore/internal/metrics"
)

const (
	datasetFileName    = "messages.json"
	quarantineFileName = "quarantine.json"
	datasetVersion     = 1

	// Backup tags distinguish main-dataset backups from quarantine backups.
	datasetBackupTag    = "old"
	quarantineBackupTag = "bak"
)

// FileStore persists messages in a single JSON document plus a quarantine
// side-file. The in-memory index is the derived, rebuildable cache; the
// backing file is the source of truth. Every mutation rewrites the whole
// file before returning, so writers are serialized through the write lock
// while readers may run concurrently with each other.
type FileStore struct {
	mu     sync.RWMutex
	logger *slog.Logger

	dataDir        string
	datasetPath    string
	quarantinePath string

	idx         map[string]*message.Message
	quarantined []QuarantineRecord

	// Participant directory. reserved holds every name ever registered so
	// names cannot be reused; pids maps currently registered names to an
	// owning process id (0 when unknown).
	pids     map[string]int
	reserved map[string]struct{}
}

var _ Store = (*FileStore)(nil)

// NewFileStore builds a FileStore rooted at dataDir without touching disk.
// Call Admit (or use Open) before serving.
func NewFileStore(dataDir string, logger *slog.Logger) *FileStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileStore{
		logger:         logger.With("component", "store"),
		dataDir:        dataDir,
		datasetPath:    filepath.Join(dataDir, datasetFileName),
		quarantinePath: filepath.Join(dataDir, quarantineFileName),
		idx:            make(map[string]*message.Message),
		pids:           make(map[string]int),
		reserved:       make(map[string]struct{}),
	}
}

// Open builds a FileStore and runs admission.
func Open(ctx context.Context, dataDir string, logger *slog.Logger) (*FileStore, error) {
	s := NewFileStore(dataDir, logger)
	if err := s.Admit(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// GetByID returns a copy of the message with the given id, or ErrNotFound.
func (s *FileStore) GetByID(ctx context.Context, id string) (*message.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.idx[id]
	if !ok {
		return nil, ErrNotFound
	}
	return m.Clone(), nil
}

// Create admits a new message into the index and rewrites the backing file.
// The write must land on disk before Create reports success.
func (s *FileStore) Create(ctx context.Context, m *message.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.idx[m.ID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateID, m.ID)
	}
	s.idx[m.ID] = m.Clone()
	if err := s.persistDataset(); err != nil {
		delete(s.idx, m.ID)
		return err
	}
	metrics.Created.Inc()
	s.logger.Debug("message created", "id", m.ID, "from", m.From)
	return nil
}

// MarkFlag records a per-viewer visibility flag. A flag that is already set
// succeeds without touching disk.
func (s *FileStore) MarkFlag(ctx context.Context, id, viewer string, flag Flag) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.idx[id]
	if !ok {
		return ErrNotFound
	}

	var changed bool
	switch flag {
	case FlagRead:
		changed = m.MarkRead(viewer)
	case FlagDeleted:
		changed = m.MarkDeleted(viewer)
	default:
		return fmt.Errorf("unknown visibility flag %q", flag)
	}
	if !changed {
		return nil
	}
	if err := s.persistDataset(); err != nil {
		// Roll the in-memory mark back so index and file stay in step.
		switch flag {
		case FlagRead:
			m.ReadBy = m.ReadBy[:len(m.ReadBy)-1]
		case FlagDeleted:
			m.DeletedBy = m.DeletedBy[:len(m.DeletedBy)-1]
		}
		return err
	}
	metrics.FlagUpdates.WithLabelValues(string(flag)).Inc()
	return nil
}

// Snapshot returns a deep copy of the admitted messages ordered by id. The
// thread resolver and the view engine operate on this immutable snapshot so a
// concurrent write cannot produce an inconsistent result mid-scan.
func (s *FileStore) Snapshot(ctx context.Context) []*message.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*message.Message, 0, len(s.idx))
	for _, m := range s.idx {
		out = append(out, m.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Quarantined returns a copy of the quarantine set.
func (s *FileStore) Quarantined(ctx context.Context) []QuarantineRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]QuarantineRecord, len(s.quarantined))
	copy(out, s.quarantined)
	return out
}

// RegisterParticipant reserves a name permanently and records its owning pid.
// Pass pid 0 when the process id is not known yet.
func (s *FileStore) RegisterParticipant(ctx context.Context, name string, pid int) error {
	n, err := message.NormalizeName(name)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.reserved[n]; taken {
		return fmt.Errorf("%w: %s", ErrNameTaken, n)
	}
	s.reserved[n] = struct{}{}
	s.pids[n] = pid
	return nil
}

// UpdateParticipantPID records a new owning pid for a registered participant.
func (s *FileStore) UpdateParticipantPID(ctx context.Context, name string, pid int) error {
	n, err := message.NormalizeName(name)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.pids[n]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownParticipant, n)
	}
	s.pids[n] = pid
	return nil
}

// NameAvailable reports whether a participant name has never been registered.
func (s *FileStore) NameAvailable(ctx context.Context, name string) bool {
	n, err := message.NormalizeName(name)
	if err != nil {
		return false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	_, taken := s.reserved[n]
	return !taken
}

// Participants returns the registered participant names, sorted.
func (s *FileStore) Participants(ctx context.Context) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, 0, len(s.pids))
	for n := range s.pids {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

type datasetDoc struct {
	Version  int                `json:"version"`
	Messages []*message.Message `json:"messages"`
}

type quarantineDoc struct {
	Version     int                `json:"version"`
	Quarantined []QuarantineRecord `json:"quarantined"`
}

// persistDataset rewrites the main dataset. Caller holds the write lock.
// Messages are written oldest first so the file reads chronologically.
func (s *FileStore) persistDataset() error {
	msgs := make([]*message.Message, 0, len(s.idx))
	for _, m := range s.idx {
		msgs = append(msgs, m)
	}
	sort.Slice(msgs, func(i, j int) bool {
		if msgs[i].Timestamp != msgs[j].Timestamp {
			return msgs[i].Timestamp < msgs[j].Timestamp
		}
		return msgs[i].ID < msgs[j].ID
	})
	return writeJSONFile(s.datasetPath, datasetDoc{Version: datasetVersion, Messages: msgs})
}

// persistQuarantine rewrites the quarantine file. Caller holds the write lock.
func (s *FileStore) persistQuarantine() error {
	q := s.quarantined
	if q == nil {
		q = []QuarantineRecord{}
	}
	return writeJSONFile(s.quarantinePath, quarantineDoc{Version: datasetVersion, Quarantined: q})
}

// writeJSONFile writes v as indented JSON via a temp file and rename, so a
// crash mid-write can never leave a half-written document behind.
func writeJSONFile(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", filepath.Base(path), err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replacing %s: %w", filepath.Base(path), err)
	}
	return nil
}

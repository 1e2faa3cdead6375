// ABOUTME: Startup admission pipeline: validate, repair, quarantine, persist
// ABOUTME: Turns an untrusted on-disk dataset into a trusted in-memory index

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/2389/coven-mailstore/internal/message"
	"github.com/2389/coven-mailstore/internal/metrics"
)

// Admit transforms the on-disk dataset into a clean in-memory index plus a
// quarantine file. It runs once at startup and may be re-run safely: against
// its own output it admits the same set and quarantines nothing new.
//
// Defects split three ways. Structural damage to the main dataset (bad JSON,
// missing version marker, malformed messages container) is fatal and wraps
// ErrCorrupt. An unsupported schema version renames the file to a timestamped
// backup and starts fresh, because a foreign schema has no per-record
// interpretation. Everything else is per-record: repaired when the fix is
// purely representational, quarantined when it would require guessing intent.
func (s *FileStore) Admit(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dataDir, 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	records, err := s.loadDataset()
	if err != nil {
		return err
	}
	if err := s.loadQuarantine(); err != nil {
		return err
	}

	// Duplicate-id grouping runs before field validation: a colliding id
	// poisons the index regardless of content, and there is no principled
	// way to pick a winner, so every copy goes to quarantine.
	seen := make(map[string]int)
	for _, rec := range records {
		if obj, ok := rec.(map[string]any); ok {
			if id, ok := obj["id"].(string); ok && id != "" {
				seen[id]++
			}
		}
	}

	idx := make(map[string]*message.Message)
	for _, rec := range records {
		obj, ok := rec.(map[string]any)
		if !ok {
			s.quarantine(rec, "record is not an object")
			continue
		}
		if id, ok := obj["id"].(string); ok && seen[id] > 1 {
			s.quarantine(obj, "duplicate id: "+id)
			continue
		}
		m, reasons := repairRecord(obj)
		if len(reasons) > 0 {
			s.quarantine(obj, strings.Join(reasons, "; "))
			continue
		}
		idx[m.ID] = m
	}
	s.idx = idx

	if err := s.persistDataset(); err != nil {
		return err
	}
	if err := s.persistQuarantine(); err != nil {
		return err
	}

	metrics.Admitted.Add(float64(len(idx)))
	s.logger.Info("storage admitted", "messages", len(idx), "quarantined", len(s.quarantined))
	return nil
}

// loadDataset reads and structurally validates the main dataset, returning
// its raw records. A missing file synthesizes an empty dataset; an
// unsupported version backs the file up and starts fresh; structural damage
// is fatal.
func (s *FileStore) loadDataset() ([]any, error) {
	raw, err := os.ReadFile(s.datasetPath)
	if errors.Is(err, fs.ErrNotExist) {
		s.logger.Info("dataset missing, creating empty file", "path", s.datasetPath)
		if werr := writeJSONFile(s.datasetPath, datasetDoc{Version: datasetVersion, Messages: []*message.Message{}}); werr != nil {
			return nil, werr
		}
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", datasetFileName, err)
	}

	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: %s is not a JSON object: %v", ErrCorrupt, datasetFileName, err)
	}
	if doc == nil {
		return nil, fmt.Errorf("%w: %s is null", ErrCorrupt, datasetFileName)
	}

	supported, err := s.checkVersion(doc, datasetFileName)
	if err != nil {
		return nil, err
	}
	if !supported {
		if err := s.backupFile(s.datasetPath, datasetBackupTag); err != nil {
			return nil, err
		}
		if err := writeJSONFile(s.datasetPath, datasetDoc{Version: datasetVersion, Messages: []*message.Message{}}); err != nil {
			return nil, err
		}
		return nil, nil
	}

	rawList, present := doc["messages"]
	if !present {
		// Recoverable: an object with a valid version but no messages key
		// is treated as an empty dataset.
		s.logger.Debug("dataset has no messages key, defaulting to empty")
		return nil, nil
	}
	list, ok := rawList.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: %s messages field is not an array", ErrCorrupt, datasetFileName)
	}
	return list, nil
}

// checkVersion validates the version marker. It returns false when the
// version is a recognized-but-unsupported value (caller backs up and starts
// fresh) and an error when the marker is missing entirely. A textual "1" is
// coerced in place.
func (s *FileStore) checkVersion(doc map[string]any, name string) (bool, error) {
	ver, ok := doc["version"]
	if !ok {
		return false, fmt.Errorf("%w: %s missing version marker", ErrCorrupt, name)
	}
	switch v := ver.(type) {
	case float64:
		if v == float64(datasetVersion) {
			return true, nil
		}
	case string:
		if v == "1" {
			s.logger.Debug("coerced string version marker", "file", name)
			doc["version"] = float64(datasetVersion)
			return true, nil
		}
	}
	s.logger.Warn("unsupported dataset version", "file", name, "version", ver)
	return false, nil
}

// loadQuarantine reads the quarantine file. Quarantine is diagnostic, not
// authoritative: any defect backs the file up and starts a fresh empty set
// rather than blocking startup.
func (s *FileStore) loadQuarantine() error {
	entries, defective, err := s.readQuarantineEntries()
	if err != nil {
		return err
	}
	if defective {
		if err := s.backupFile(s.quarantinePath, quarantineBackupTag); err != nil {
			return err
		}
		entries = nil
	}
	s.quarantined = entries
	return nil
}

// readQuarantineEntries parses the quarantine file, reporting defective=true
// for anything that should trigger a backup-and-reset. Only I/O failures are
// returned as errors.
func (s *FileStore) readQuarantineEntries() (entries []QuarantineRecord, defective bool, err error) {
	raw, err := os.ReadFile(s.quarantinePath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading %s: %w", quarantineFileName, err)
	}

	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil || doc == nil {
		s.logger.Warn("quarantine file is not a JSON object, resetting")
		return nil, true, nil
	}
	supported, err := s.checkVersion(doc, quarantineFileName)
	if err != nil || !supported {
		return nil, true, nil
	}
	list, ok := doc["quarantined"].([]any)
	if !ok {
		s.logger.Warn("quarantine file missing quarantined array, resetting")
		return nil, true, nil
	}

	for _, item := range list {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, true, nil
		}
		reason, _ := obj["reason"].(string)
		at, _ := obj["quarantinedAt"].(string)
		if at == "" {
			// Earlier releases wrote snake_case.
			at, _ = obj["quarantined_at"].(string)
		}
		entries = append(entries, QuarantineRecord{
			Original:      obj["original"],
			Reason:        reason,
			QuarantinedAt: at,
		})
	}
	return entries, false, nil
}

// quarantine appends one rejected record. Caller holds the write lock; the
// quarantine file is persisted once at the end of admission.
func (s *FileStore) quarantine(original any, reason string) {
	s.quarantined = append(s.quarantined, QuarantineRecord{
		Original:      original,
		Reason:        reason,
		QuarantinedAt: message.NewTimestamp(),
	})
	metrics.Quarantined.Inc()
	s.logger.Warn("record quarantined", "reason", reason)
}

// backupFile renames path out of the way with a tag and a UTC timestamp,
// colons replaced by hyphens.
func (s *FileStore) backupFile(path, tag string) error {
	ts := strings.ReplaceAll(time.Now().UTC().Format(message.TimeLayout), ":", "-")
	backup := fmt.Sprintf("%s.%s.%s", path, tag, ts)
	if err := os.Rename(path, backup); err != nil {
		return fmt.Errorf("backing up %s: %w", filepath.Base(path), err)
	}
	s.logger.Warn("renamed incompatible file", "from", path, "to", backup)
	return nil
}

// repairRecord applies the bounded auto-fix rules to one raw record and
// validates the result. Fixes are limited to representation: trimming,
// case-folding, dropping non-string entries from name sets, deduplication,
// defaulting absent read/deleted sets, and stripping unrecognized fields.
// Anything that would require inventing meaning is reported as a reason.
func repairRecord(rec map[string]any) (*message.Message, []string) {
	var reasons []string
	for _, field := range []string{"id", "to", "from", "subject", "content", "timestamp"} {
		if _, ok := rec[field]; !ok {
			reasons = append(reasons, "missing required field: "+field)
		}
	}
	if len(reasons) > 0 {
		return nil, reasons
	}

	m := &message.Message{ReadBy: []string{}, DeletedBy: []string{}}

	if id, ok := rec["id"].(string); !ok {
		reasons = append(reasons, "field 'id' must be a string")
	} else if !message.ValidID(id) {
		reasons = append(reasons, fmt.Sprintf("invalid id format: %v", id))
	} else {
		m.ID = id
	}

	if list, ok := rec["to"].([]any); !ok {
		reasons = append(reasons, "field 'to' must be an array")
	} else {
		m.To = message.NormalizeNames(stringsOf(list))
		if len(m.To) == 0 {
			reasons = append(reasons, "field 'to' must have at least one valid recipient")
		}
	}

	if from, ok := rec["from"].(string); !ok {
		reasons = append(reasons, "field 'from' must be a string")
	} else if n, err := message.NormalizeName(from); err != nil {
		reasons = append(reasons, "field 'from' cannot be empty")
	} else {
		m.From = n
	}

	if subject, ok := rec["subject"].(string); !ok {
		reasons = append(reasons, "field 'subject' must be a string")
	} else {
		m.Subject = strings.TrimSpace(subject)
	}

	if content, ok := rec["content"].(string); !ok {
		reasons = append(reasons, "field 'content' must be a string")
	} else {
		m.Content = strings.TrimSpace(content)
	}

	if ts, ok := rec["timestamp"].(string); !ok || !message.ValidTimestamp(ts) {
		reasons = append(reasons, fmt.Sprintf("invalid timestamp format: %v", rec["timestamp"]))
	} else {
		m.Timestamp = ts
	}

	// A dangling reference is valid; only the form is checked here. The
	// thread resolver treats an unresolvable parent as "no parent".
	if raw, ok := rec["isResponseTo"]; ok && raw != nil {
		if id, ok := raw.(string); !ok {
			reasons = append(reasons, "field 'isResponseTo' must be a string or null")
		} else if !message.ValidID(id) {
			reasons = append(reasons, fmt.Sprintf("invalid id format for 'isResponseTo': %v", id))
		} else {
			m.ReplyTo = id
		}
	}

	if raw, ok := rec["readBy"]; ok {
		if list, ok := raw.([]any); !ok {
			reasons = append(reasons, "field 'readBy' must be an array")
		} else {
			m.ReadBy = message.NormalizeNames(stringsOf(list))
		}
	}
	if raw, ok := rec["deletedBy"]; ok {
		if list, ok := raw.([]any); !ok {
			reasons = append(reasons, "field 'deletedBy' must be an array")
		} else {
			m.DeletedBy = message.NormalizeNames(stringsOf(list))
		}
	}

	// Unrecognized fields are stripped implicitly: only schema fields are
	// carried onto the typed record.

	if len(reasons) > 0 {
		return nil, reasons
	}
	return m, nil
}

// stringsOf keeps only the string elements of a raw list; the lenient repair
// path drops the rest.
func stringsOf(list []any) []string {
	out := make([]string, 0, len(list))
	for _, item := range list {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

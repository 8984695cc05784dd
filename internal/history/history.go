// Package history persists the ledger of images the bot has already
// sent, so the random picker never repeats an image until the user
// resets the history.
//
// The ledger is a single JSON file. The current format is an object:
//
//	{"images": ["<key>", ...], "last_updated": "...", "total_count": N}
//
// Older deployments wrote a bare JSON array of keys; Load accepts both
// so an existing file survives an upgrade. The whole file is rewritten
// after every mutation — the set is small (one entry per image) and a
// full rewrite keeps the format self-contained.
package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// fileFormat is the on-disk object form of the ledger.
type fileFormat struct {
	Images      []string `json:"images"`
	LastUpdated string   `json:"last_updated"`
	TotalCount  int      `json:"total_count"`
}

// Manager owns the sent-image ledger. It is safe for concurrent use:
// Telegram handlers and the scheduler both record sends.
type Manager struct {
	mu   sync.Mutex
	path string
	sent map[string]struct{}
}

// Load opens the ledger at path, creating an empty in-memory ledger
// when the file does not exist yet. A file that cannot be parsed is
// reported so the caller can decide whether to continue with an empty
// ledger (the bot does, after logging) or abort.
func Load(path string) (*Manager, error) {
	m := &Manager{
		path: path,
		sent: make(map[string]struct{}),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return m, nil
		}
		return nil, fmt.Errorf("failed to read history file %s: %w", path, err)
	}

	keys, err := parse(data)
	if err != nil {
		return m, fmt.Errorf("failed to parse history file %s: %w", path, err)
	}
	for _, k := range keys {
		m.sent[k] = struct{}{}
	}
	return m, nil
}

// parse decodes either ledger format: the current object form or the
// legacy bare array.
func parse(data []byte) ([]string, error) {
	var f fileFormat
	if err := json.Unmarshal(data, &f); err == nil && f.Images != nil {
		return f.Images, nil
	}

	var legacy []string
	if err := json.Unmarshal(data, &legacy); err != nil {
		return nil, err
	}
	return legacy, nil
}

// save writes the ledger to disk. Callers must hold mu.
func (m *Manager) save() error {
	f := fileFormat{
		Images:      m.keysLocked(),
		LastUpdated: time.Now().Format(time.RFC3339),
		TotalCount:  len(m.sent),
	}

	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return err
	}

	if dir := filepath.Dir(m.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create history directory: %w", err)
		}
	}
	if err := os.WriteFile(m.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write history file %s: %w", m.path, err)
	}
	return nil
}

// keysLocked returns the sent keys in sorted order so the file content
// is deterministic. Callers must hold mu.
func (m *Manager) keysLocked() []string {
	keys := make([]string, 0, len(m.sent))
	for k := range m.sent {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Add records an image key as sent and persists the ledger.
func (m *Manager) Add(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sent[key] = struct{}{}
	return m.save()
}

// IsSent reports whether the key is already in the ledger.
func (m *Manager) IsSent(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.sent[key]
	return ok
}

// Unsent filters the given keys down to those not yet sent, preserving
// their order.
func (m *Manager) Unsent(available []string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	var unsent []string
	for _, k := range available {
		if _, ok := m.sent[k]; !ok {
			unsent = append(unsent, k)
		}
	}
	return unsent
}

// Len returns the number of ledger entries.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.sent)
}

// Reset clears the ledger, persists the empty state, and returns how
// many entries were removed.
func (m *Manager) Reset() (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := len(m.sent)
	m.sent = make(map[string]struct{})
	if err := m.save(); err != nil {
		return 0, err
	}
	return removed, nil
}

// Remove deletes a single key from the ledger. It reports whether the
// key was present; a missing key is not an error and does not touch
// the file.
func (m *Manager) Remove(key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sent[key]; !ok {
		return false, nil
	}
	delete(m.sent, key)
	if err := m.save(); err != nil {
		return false, err
	}
	return true, nil
}

// Path returns the ledger file location (for reports and logs).
func (m *Manager) Path() string {
	return m.path
}

package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
)

// Store persists connect, erase and flash history under a project's .jflash
// directory.
type Store struct {
	root string
	mu   sync.Mutex
}

// New creates a Store rooted at the given directory (typically .jflash/).
func New(root string) *Store {
	return &Store{root: root}
}

func (s *Store) historyDir() string {
	return filepath.Join(s.root, "history")
}

func (s *Store) logsDir() string {
	return filepath.Join(s.root, "logs")
}

// NewID returns a fresh record identifier.
func NewID() string {
	return uuid.NewString()
}

// AddConnection appends a connectivity record, assigning an ID if empty.
func (s *Store) AddConnection(r ConnectionRecord) error {
	if r.ID == "" {
		r.ID = NewID()
	}
	return s.appendRecord("connections.json", r)
}

// AddErase appends an erase record, assigning an ID if empty.
func (s *Store) AddErase(r EraseRecord) error {
	if r.ID == "" {
		r.ID = NewID()
	}
	return s.appendRecord("erases.json", r)
}

// AddFlash appends a flash record, assigning an ID if empty.
func (s *Store) AddFlash(r FlashRecord) error {
	if r.ID == "" {
		r.ID = NewID()
	}
	return s.appendRecord("flashes.json", r)
}

// AddMonitorSession appends a serial monitor session, assigning an ID if empty.
func (s *Store) AddMonitorSession(r MonitorSession) error {
	if r.ID == "" {
		r.ID = NewID()
	}
	return s.appendRecord("monitor_sessions.json", r)
}

// Connections returns all connectivity records.
func (s *Store) Connections() ([]ConnectionRecord, error) {
	var records []ConnectionRecord
	err := s.loadRecords("connections.json", &records)
	return records, err
}

// Erases returns all erase records.
func (s *Store) Erases() ([]EraseRecord, error) {
	var records []EraseRecord
	err := s.loadRecords("erases.json", &records)
	return records, err
}

// Flashes returns all flash records.
func (s *Store) Flashes() ([]FlashRecord, error) {
	var records []FlashRecord
	err := s.loadRecords("flashes.json", &records)
	return records, err
}

// MonitorSessions returns all serial monitor sessions.
func (s *Store) MonitorSessions() ([]MonitorSession, error) {
	var records []MonitorSession
	err := s.loadRecords("monitor_sessions.json", &records)
	return records, err
}

// LogsDir returns the path to the logs directory, creating it if needed.
func (s *Store) LogsDir() (string, error) {
	dir := s.logsDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

func (s *Store) appendRecord(filename string, record any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	dir := s.historyDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	path := filepath.Join(dir, filename)

	var records []json.RawMessage
	if data, err := os.ReadFile(path); err == nil {
		json.Unmarshal(data, &records)
	}

	raw, err := json.Marshal(record)
	if err != nil {
		return err
	}
	records = append(records, raw)

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func (s *Store) loadRecords(filename string, dest any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.historyDir(), filename)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return json.Unmarshal(data, dest)
}

package portfolio

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// HistoryFileName is the ledger file kept in the data directory.
const HistoryFileName = "investment_history.json"

type historyFile struct {
	Investments []Position `json:"investments"`
}

// JSONStore keeps the ledger in a single JSON document.
type JSONStore struct {
	path string
	log  zerolog.Logger
}

// NewJSONStore creates a store writing to path.
func NewJSONStore(path string, log zerolog.Logger) *JSONStore {
	return &JSONStore{
		path: path,
		log:  log.With().Str("component", "json_store").Logger(),
	}
}

// Path returns the ledger file path.
func (s *JSONStore) Path() string {
	return s.path
}

// Load reads the ledger. A missing file is an empty ledger. An unreadable
// document is logged and treated as empty so the next save replaces it.
func (s *JSONStore) Load() ([]Position, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.path, err)
	}

	var doc historyFile
	if err := json.Unmarshal(data, &doc); err != nil {
		s.log.Warn().Err(err).Str("path", s.path).Msg("Ledger file is corrupt, starting empty")
		return nil, nil
	}
	return doc.Investments, nil
}

// Save replaces the ledger file through a temp file and rename.
func (s *JSONStore) Save(positions []Position) error {
	if positions == nil {
		positions = []Position{}
	}
	data, err := json.MarshalIndent(historyFile{Investments: positions}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode ledger: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create ledger directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".investment_history-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write ledger: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to sync ledger: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close ledger: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace ledger: %w", err)
	}
	return nil
}

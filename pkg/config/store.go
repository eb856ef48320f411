package config

import (
	"fmt"
	"log/slog"

	"github.com/utkarsh5026/gitgo/pkg/common/fileops"
	"github.com/utkarsh5026/gitgo/pkg/common/logger"
)

// Store reads and writes one YAML configuration file.
type Store struct {
	path    string
	level   ConfigLevel
	entries map[string][]*ConfigEntry
	parser  *Parser
	log     *slog.Logger
}

// NewStore creates a new configuration store for a specific file and level
func NewStore(path string, level ConfigLevel, log *slog.Logger) *Store {
	return &Store{
		path:    path,
		level:   level,
		entries: make(map[string][]*ConfigEntry),
		parser:  &Parser{},
		log:     logger.OrDefault(log),
	}
}

// Load reads and parses the configuration file. A missing file is an
// empty configuration. A structurally invalid file is ignored with a
// warning.
func (s *Store) Load() error {
	content, err := fileops.ReadBytes(s.path)
	if err != nil {
		return NewConfigError("load", CodeNotFoundErr, "", s.path, s.level.String(), err)
	}
	if content == nil {
		s.entries = make(map[string][]*ConfigEntry)
		return nil
	}

	validation := s.parser.Validate(string(content))
	if !validation.Valid {
		s.log.Warn("ignoring invalid configuration", "path", s.path, "errors", validation.Errors)
		s.entries = make(map[string][]*ConfigEntry)
		return nil
	}

	entries, err := s.parser.Parse(string(content), NewFileSource(s.path), s.level)
	if err != nil {
		return NewInvalidFormatError("load", s.path, err)
	}

	s.entries = entries
	return nil
}

// Save writes the configuration to disk atomically
func (s *Store) Save() error {
	content, err := s.parser.Serialize(s.entries)
	if err != nil {
		return NewInvalidFormatError("save", s.path, err)
	}

	if err := fileops.AtomicWrite(s.path, []byte(content), 0644); err != nil {
		return NewInvalidFormatError("save", s.path, fmt.Errorf("write: %w", err))
	}

	return nil
}

// GetEntries returns copies of all entries for a specific key
func (s *Store) GetEntries(key string) []*ConfigEntry {
	entries := s.entries[key]
	result := make([]*ConfigEntry, len(entries))
	for i, entry := range entries {
		result[i] = entry.Clone()
	}
	return result
}

// Keys returns every key present in the store.
func (s *Store) Keys() []string {
	keys := make([]string, 0, len(s.entries))
	for key := range s.entries {
		keys = append(keys, key)
	}
	return keys
}

// Set replaces all values for a key with a single value
func (s *Store) Set(key, value string) {
	s.entries[key] = []*ConfigEntry{NewEntry(key, value, s.level, NewFileSource(s.path))}
}

// Add appends a value to a multi-value key
func (s *Store) Add(key, value string) {
	s.entries[key] = append(s.entries[key], NewEntry(key, value, s.level, NewFileSource(s.path)))
}

// Export serializes the store to YAML without writing it.
func (s *Store) Export() (string, error) {
	return s.parser.Serialize(s.entries)
}

// Unset removes all values for a key
func (s *Store) Unset(key string) {
	delete(s.entries, key)
}

// Path returns the file path for this store
func (s *Store) Path() string {
	return s.path
}

// Level returns the configuration level for this store
func (s *Store) Level() ConfigLevel {
	return s.level
}

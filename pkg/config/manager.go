package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/utkarsh5026/gitgo/pkg/common/logger"
)

// Default configuration paths
const (
	WindowsProgramDataPath = `C:\ProgramData\gitgo`
	UnixSystemPath         = "/etc/gitgo"
	ConfigFileName         = "config.yaml"
	RepositoryFileName     = ".gitgo.yaml"
)

// Well-known keys.
const (
	KeyGitBinary         = "git.binary"
	KeyIngestConcurrency = "ingest.concurrency"
	KeyIngestUnordered   = "ingest.unordered"
	KeyIngestBlobMode    = "ingest.blob_mode"
	KeyIngestTimeout     = "ingest.timeout"
	KeyWatchDebounce     = "watch.debounce"
	KeyArtifactsEnabled  = "artifacts.enabled"
	KeyArtifactsDir      = "artifacts.dir"
	KeyLogLevel          = "log.level"
	KeyLogFormat         = "log.format"
)

// Paths locates the configuration files. Empty paths are skipped.
type Paths struct {
	System     string
	User       string
	Repository string
}

// DefaultPaths returns the standard file locations. repoDir may be empty
// when no repository is known yet.
func DefaultPaths(repoDir string) Paths {
	p := Paths{System: systemConfigPath(), User: userConfigPath()}
	if repoDir != "" {
		p.Repository = filepath.Join(repoDir, RepositoryFileName)
	}
	return p
}

func systemConfigPath() string {
	if runtime.GOOS == "windows" {
		return filepath.Join(WindowsProgramDataPath, ConfigFileName)
	}
	return filepath.Join(UnixSystemPath, ConfigFileName)
}

func userConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "gitgo", ConfigFileName)
}

// Manager is the central configuration manager that handles the hierarchy of config files
// It is thread-safe and can be used concurrently
type Manager struct {
	mu              sync.RWMutex
	stores          map[ConfigLevel]*Store
	commandLine     map[string]string
	builtinDefaults map[string]string
	parser          *Parser
	validator       *Validator
}

// NewManager creates a new configuration manager over the given files.
func NewManager(paths Paths, log *slog.Logger) *Manager {
	m := &Manager{
		stores:          make(map[ConfigLevel]*Store),
		commandLine:     make(map[string]string),
		builtinDefaults: make(map[string]string),
		parser:          &Parser{},
		validator:       &Validator{},
	}

	log = logger.OrDefault(log)
	for level, path := range map[ConfigLevel]string{
		SystemLevel:     paths.System,
		UserLevel:       paths.User,
		RepositoryLevel: paths.Repository,
	} {
		if path != "" {
			m.stores[level] = NewStore(path, level, log)
		}
	}
	m.loadBuiltinDefaults()

	return m
}

// Load loads all configuration files from disk
// This is typically called once during initialization
func (m *Manager) Load(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	g, _ := errgroup.WithContext(ctx)
	for _, store := range m.stores {
		g.Go(store.Load)
	}
	return g.Wait()
}

// Get retrieves a configuration value, respecting the hierarchy
// Returns the highest precedence value, or nil if not found
func (m *Manager) Get(key string) *ConfigEntry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.getUnsafe(key)
}

// GetAll retrieves all values for a configuration key across all levels,
// highest precedence first.
func (m *Manager) GetAll(key string) []*ConfigEntry {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var allEntries []*ConfigEntry

	if value, exists := m.commandLine[key]; exists {
		allEntries = append(allEntries, NewCommandLineEntry(key, value))
	}
	for _, level := range []ConfigLevel{RepositoryLevel, UserLevel, SystemLevel} {
		if store, ok := m.stores[level]; ok {
			allEntries = append(allEntries, store.GetEntries(key)...)
		}
	}
	if value, exists := m.builtinDefaults[key]; exists {
		allEntries = append(allEntries, NewBuiltinEntry(key, value))
	}

	return allEntries
}

// Set validates and writes a configuration value at a specific level.
func (m *Manager) Set(key, value string, level ConfigLevel) error {
	if err := m.validator.ValidateKeyValue(key, value); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	store, err := m.validateStore("set", key, level)
	if err != nil {
		return err
	}

	store.Set(key, value)
	return store.Save()
}

// Unset removes a configuration key at a specific level
func (m *Manager) Unset(key string, level ConfigLevel) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	store, err := m.validateStore("unset", key, level)
	if err != nil {
		return err
	}

	store.Unset(key)
	return store.Save()
}

func (m *Manager) validateStore(operation string, key string, level ConfigLevel) (*Store, error) {
	if !level.CanWrite() {
		return nil, NewConfigError(operation, CodeReadOnlyErr, key, "", level.String(), ErrReadOnly)
	}

	store, exists := m.stores[level]
	if !exists {
		return nil, NewConfigError(operation, CodeNotFoundErr, key, "", level.String(), fmt.Errorf("store does not exist for level"))
	}

	return store, nil
}

// SetCommandLine validates and records a command-line override.
func (m *Manager) SetCommandLine(key, value string) error {
	if err := m.validator.ValidateKeyValue(key, value); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.commandLine[key] = value
	return nil
}

// List returns all effective configuration entries (respecting hierarchy)
func (m *Manager) List() []*ConfigEntry {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.listUnsafe()
}

// Export serializes configuration as YAML. With a level only that file's
// entries are exported, otherwise the effective configuration.
func (m *Manager) Export(level *ConfigLevel) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if level != nil {
		store, exists := m.stores[*level]
		if !exists {
			return "", nil
		}
		return store.Export()
	}

	entriesMap := make(map[string][]*ConfigEntry)
	for _, entry := range m.listUnsafe() {
		entriesMap[entry.Key] = append(entriesMap[entry.Key], entry)
	}
	return m.parser.Serialize(entriesMap)
}

// GetStore returns the store for a specific level
// Returns nil if the store doesn't exist
func (m *Manager) GetStore(level ConfigLevel) *Store {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.stores[level]
}

// loadBuiltinDefaults initializes hardcoded default values
func (m *Manager) loadBuiltinDefaults() {
	m.builtinDefaults[KeyGitBinary] = "git"
	m.builtinDefaults[KeyIngestConcurrency] = strconv.Itoa(4 * runtime.NumCPU())
	m.builtinDefaults[KeyIngestUnordered] = "true"
	m.builtinDefaults[KeyIngestBlobMode] = "full"
	m.builtinDefaults[KeyIngestTimeout] = "0s"
	m.builtinDefaults[KeyWatchDebounce] = "150ms"
	m.builtinDefaults[KeyArtifactsEnabled] = "false"
	m.builtinDefaults[KeyArtifactsDir] = "."
	m.builtinDefaults[KeyLogLevel] = "info"
	m.builtinDefaults[KeyLogFormat] = "text"
}

// getUnsafe is the internal implementation of Get without locking
// Caller must hold at least read lock
func (m *Manager) getUnsafe(key string) *ConfigEntry {
	if value, exists := m.commandLine[key]; exists {
		return NewCommandLineEntry(key, value)
	}

	entries := m.findInStores(key)
	if len(entries) > 0 {
		return entries[len(entries)-1]
	}

	if value, exists := m.builtinDefaults[key]; exists {
		return NewBuiltinEntry(key, value)
	}

	return nil
}

func (m *Manager) collectAllKeys() map[string]bool {
	allKeys := make(map[string]bool)

	for key := range m.commandLine {
		allKeys[key] = true
	}
	for _, store := range m.stores {
		for _, key := range store.Keys() {
			allKeys[key] = true
		}
	}
	for key := range m.builtinDefaults {
		allKeys[key] = true
	}

	return allKeys
}

// listUnsafe is the internal implementation of List without locking
// Caller must hold at least read lock
func (m *Manager) listUnsafe() []*ConfigEntry {
	var entries []*ConfigEntry
	for key := range m.collectAllKeys() {
		if entry := m.getUnsafe(key); entry != nil {
			entries = append(entries, entry)
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Key < entries[j].Key
	})

	return entries
}

func (m *Manager) findInStores(key string) []*ConfigEntry {
	for _, level := range []ConfigLevel{RepositoryLevel, UserLevel, SystemLevel} {
		store, exists := m.stores[level]
		if !exists {
			continue
		}

		if entries := store.GetEntries(key); len(entries) > 0 {
			return entries
		}
	}
	return nil
}

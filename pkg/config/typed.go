package config

import (
	"runtime"
	"time"
)

// TypedConfig provides type-safe access to common configuration values
// It wraps a Manager and provides convenient getter methods
type TypedConfig struct {
	manager *Manager
}

// NewTypedConfig creates a new TypedConfig wrapper around a Manager
func NewTypedConfig(manager *Manager) *TypedConfig {
	return &TypedConfig{
		manager: manager,
	}
}

// Settings is the resolved configuration consumed by the pipeline.
type Settings struct {
	GitBinary        string        `json:"git_binary"`
	Concurrency      int           `json:"concurrency"`
	Unordered        bool          `json:"unordered"`
	BlobMode         string        `json:"blob_mode"`
	Timeout          time.Duration `json:"timeout"`
	Debounce         time.Duration `json:"debounce"`
	ArtifactsEnabled bool          `json:"artifacts_enabled"`
	ArtifactsDir     string        `json:"artifacts_dir"`
	LogLevel         string        `json:"log_level"`
	LogFormat        string        `json:"log_format"`
}

// DefaultSettings returns the builtin values without reading any file.
func DefaultSettings() Settings {
	return Settings{
		GitBinary:    "git",
		Concurrency:  4 * runtime.NumCPU(),
		Unordered:    true,
		BlobMode:     "full",
		Debounce:     150 * time.Millisecond,
		ArtifactsDir: ".",
		LogLevel:     "info",
		LogFormat:    "text",
	}
}

// Settings resolves every well-known key.
func (tc *TypedConfig) Settings() Settings {
	d := DefaultSettings()
	return Settings{
		GitBinary:        tc.stringOr(KeyGitBinary, d.GitBinary),
		Concurrency:      tc.Concurrency(),
		Unordered:        tc.boolOr(KeyIngestUnordered, d.Unordered),
		BlobMode:         tc.stringOr(KeyIngestBlobMode, d.BlobMode),
		Timeout:          tc.durationOr(KeyIngestTimeout, d.Timeout),
		Debounce:         tc.durationOr(KeyWatchDebounce, d.Debounce),
		ArtifactsEnabled: tc.boolOr(KeyArtifactsEnabled, d.ArtifactsEnabled),
		ArtifactsDir:     tc.stringOr(KeyArtifactsDir, d.ArtifactsDir),
		LogLevel:         tc.stringOr(KeyLogLevel, d.LogLevel),
		LogFormat:        tc.stringOr(KeyLogFormat, d.LogFormat),
	}
}

// GitBinary returns the git executable to run.
func (tc *TypedConfig) GitBinary() string {
	return tc.stringOr(KeyGitBinary, "git")
}

// Concurrency returns the detail fan-out limit. Non-positive values fall
// back to the default.
func (tc *TypedConfig) Concurrency() int {
	entry := tc.manager.Get(KeyIngestConcurrency)
	if entry == nil {
		return DefaultSettings().Concurrency
	}
	val, err := entry.AsInt()
	if err != nil || val < 1 {
		return DefaultSettings().Concurrency
	}
	return val
}

// Debounce returns the filesystem watcher quiet period.
func (tc *TypedConfig) Debounce() time.Duration {
	return tc.durationOr(KeyWatchDebounce, 150*time.Millisecond)
}

// ArtifactsEnabled reports whether debug artifacts are written.
func (tc *TypedConfig) ArtifactsEnabled() bool {
	return tc.boolOr(KeyArtifactsEnabled, false)
}

// GetString returns a configuration value as a string
func (tc *TypedConfig) GetString(key string) string {
	return tc.stringOr(key, "")
}

// GetInt returns a configuration value as an integer
func (tc *TypedConfig) GetInt(key string) (int, error) {
	entry := tc.manager.Get(key)
	if entry == nil {
		return 0, NewConfigError("get", CodeNotFoundErr, key, "", "", nil)
	}
	return entry.AsInt()
}

// GetBool returns a configuration value as a boolean
func (tc *TypedConfig) GetBool(key string) (bool, error) {
	entry := tc.manager.Get(key)
	if entry == nil {
		return false, NewConfigError("get", CodeNotFoundErr, key, "", "", nil)
	}
	return entry.AsBoolean()
}

// GetAll returns all values for a key across all levels
func (tc *TypedConfig) GetAll(key string) []string {
	entries := tc.manager.GetAll(key)
	result := make([]string, len(entries))
	for i, entry := range entries {
		result[i] = entry.Value
	}
	return result
}

func (tc *TypedConfig) stringOr(key, def string) string {
	if entry := tc.manager.Get(key); entry != nil && entry.Value != "" {
		return entry.Value
	}
	return def
}

func (tc *TypedConfig) boolOr(key string, def bool) bool {
	entry := tc.manager.Get(key)
	if entry == nil {
		return def
	}
	val, err := entry.AsBoolean()
	if err != nil {
		return def
	}
	return val
}

func (tc *TypedConfig) durationOr(key string, def time.Duration) time.Duration {
	entry := tc.manager.Get(key)
	if entry == nil {
		return def
	}
	val, err := entry.AsDuration()
	if err != nil || val < 0 {
		return def
	}
	return val
}

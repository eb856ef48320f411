package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utkarsh5026/gitgo/pkg/common/logger"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func newTestManager(t *testing.T) (*Manager, Paths) {
	t.Helper()
	dir := t.TempDir()
	paths := Paths{
		User:       filepath.Join(dir, "user", ConfigFileName),
		Repository: filepath.Join(dir, "repo", RepositoryFileName),
	}
	return NewManager(paths, logger.Discard()), paths
}

func TestParser_FlattensNestedSections(t *testing.T) {
	p := &Parser{}
	entries, err := p.Parse(`
ingest:
  concurrency: 8
  unordered: false
watch:
  debounce: 200ms
extra:
  tags: [a, b]
`, NewFileSource("cfg.yaml"), UserLevel)
	require.NoError(t, err)

	require.Len(t, entries["ingest.concurrency"], 1)
	assert.Equal(t, "8", entries["ingest.concurrency"][0].Value)
	assert.Equal(t, "false", entries["ingest.unordered"][0].Value)
	assert.Equal(t, "200ms", entries["watch.debounce"][0].Value)
	assert.Equal(t, UserLevel, entries["watch.debounce"][0].Level)
	require.Len(t, entries["extra.tags"], 2)
	assert.Equal(t, "b", entries["extra.tags"][1].Value)
}

func TestParser_EmptyAndInvalid(t *testing.T) {
	p := &Parser{}

	entries, err := p.Parse("   \n", NewFileSource("x"), UserLevel)
	require.NoError(t, err)
	assert.Empty(t, entries)

	_, err = p.Parse("ingest: [unclosed", NewFileSource("x"), UserLevel)
	assert.True(t, IsInvalidFormat(err))

	assert.True(t, p.Validate("a: 1").Valid)
	assert.False(t, p.Validate("- just\n- a list\n").Valid)
	assert.False(t, p.Validate("a:\n  - {b: 1}\n").Valid)
}

func TestParser_SerializeRoundTrip(t *testing.T) {
	p := &Parser{}
	in := map[string][]*ConfigEntry{
		"ingest.blob_mode": {NewBuiltinEntry("ingest.blob_mode", "none")},
		"log.level":        {NewBuiltinEntry("log.level", "debug")},
	}
	out, err := p.Serialize(in)
	require.NoError(t, err)

	back, err := p.Parse(out, NewFileSource("x"), RepositoryLevel)
	require.NoError(t, err)
	assert.Equal(t, "none", back["ingest.blob_mode"][0].Value)
	assert.Equal(t, "debug", back["log.level"][0].Value)
}

func TestManager_Defaults(t *testing.T) {
	m, _ := newTestManager(t)
	require.NoError(t, m.Load(context.Background()))

	s := NewTypedConfig(m).Settings()
	assert.Equal(t, DefaultSettings(), s)

	entry := m.Get(KeyIngestBlobMode)
	require.NotNil(t, entry)
	assert.Equal(t, BuiltinLevel, entry.Level)
	assert.Nil(t, m.Get("nothing.here"))
}

func TestManager_Precedence(t *testing.T) {
	m, paths := newTestManager(t)
	writeFile(t, paths.User, "ingest:\n  concurrency: 3\n  blob_mode: none\n")
	writeFile(t, paths.Repository, "ingest:\n  concurrency: 5\n")
	require.NoError(t, m.Load(context.Background()))

	tc := NewTypedConfig(m)
	assert.Equal(t, 5, tc.Concurrency())
	assert.Equal(t, "none", tc.Settings().BlobMode)
	assert.Equal(t, RepositoryLevel, m.Get(KeyIngestConcurrency).Level)

	require.NoError(t, m.SetCommandLine(KeyIngestConcurrency, "9"))
	assert.Equal(t, 9, tc.Concurrency())
	assert.Equal(t, []string{"9", "5", "3"}, tc.GetAll(KeyIngestConcurrency)[:3])
}

func TestManager_InvalidFileIsIgnored(t *testing.T) {
	m, paths := newTestManager(t)
	writeFile(t, paths.Repository, "- not\n- a mapping\n")
	require.NoError(t, m.Load(context.Background()))
	assert.Equal(t, BuiltinLevel, m.Get(KeyGitBinary).Level)
}

func TestManager_SetPersists(t *testing.T) {
	m, paths := newTestManager(t)
	require.NoError(t, m.Load(context.Background()))

	require.NoError(t, m.Set(KeyWatchDebounce, "1s", RepositoryLevel))
	assert.FileExists(t, paths.Repository)

	fresh := NewManager(paths, logger.Discard())
	require.NoError(t, fresh.Load(context.Background()))
	assert.Equal(t, time.Second, NewTypedConfig(fresh).Debounce())

	require.NoError(t, fresh.Unset(KeyWatchDebounce, RepositoryLevel))
	assert.Equal(t, BuiltinLevel, fresh.Get(KeyWatchDebounce).Level)
}

func TestManager_SetRejects(t *testing.T) {
	m, _ := newTestManager(t)

	err := m.Set(KeyIngestBlobMode, "everything", RepositoryLevel)
	assert.True(t, IsInvalidValue(err))

	err = m.Set(KeyLogLevel, "debug", BuiltinLevel)
	assert.True(t, IsReadOnly(err))

	err = m.Set(KeyLogLevel, "debug", SystemLevel)
	require.Error(t, err)
	assert.False(t, IsReadOnly(err))

	assert.Error(t, m.SetCommandLine("nodots", "x"))
}

func TestManager_ExportAndList(t *testing.T) {
	m, _ := newTestManager(t)
	require.NoError(t, m.SetCommandLine(KeyLogFormat, "json"))

	list := m.List()
	require.NotEmpty(t, list)
	for i := 1; i < len(list); i++ {
		assert.Less(t, list[i-1].Key, list[i].Key)
	}

	out, err := m.Export(nil)
	require.NoError(t, err)
	assert.Contains(t, out, "format: json")
}

func TestValidator(t *testing.T) {
	v := &Validator{}
	tests := []struct {
		key, value string
		ok         bool
	}{
		{KeyIngestConcurrency, "4", true},
		{KeyIngestConcurrency, "0", false},
		{KeyIngestConcurrency, "many", false},
		{KeyIngestUnordered, "off", true},
		{KeyIngestUnordered, "maybe", false},
		{KeyIngestBlobMode, "last-line", true},
		{KeyIngestTimeout, "30s", true},
		{KeyIngestTimeout, "-1s", false},
		{KeyWatchDebounce, "soon", false},
		{KeyLogLevel, "warn", true},
		{KeyLogLevel, "loud", false},
		{KeyLogFormat, "yaml", false},
		{KeyGitBinary, " ", false},
		{KeyArtifactsDir, "", false},
		{"custom.anything", "whatever", true},
		{"broken.", "x", false},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			err := v.ValidateKeyValue(tt.key, tt.value)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	l, err := ParseLevel("repository")
	require.NoError(t, err)
	assert.Equal(t, RepositoryLevel, l)

	_, err = ParseLevel("galaxy")
	assert.Error(t, err)
	assert.False(t, BuiltinLevel.CanWrite())
}

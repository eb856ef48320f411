package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utkarsh5026/gitgo/pkg/objects"
)

func TestParseEntryLine(t *testing.T) {
	tests := []struct {
		name string
		line string
		want Entry
		ok   bool
	}{
		{
			name: "blob with tab",
			line: "100644 blob abc123\tfile.txt",
			want: Entry{Mode: "100644", Kind: objects.BlobType, Hash: "abc123", Name: "file.txt"},
			ok:   true,
		},
		{
			name: "subtree",
			line: "040000 tree def456\tsrc",
			want: Entry{Mode: "040000", Kind: objects.TreeType, Hash: "def456", Name: "src"},
			ok:   true,
		},
		{
			name: "name with spaces",
			line: "100755 blob abc123\tmy build script.sh",
			want: Entry{Mode: "100755", Kind: objects.BlobType, Hash: "abc123", Name: "my build script.sh"},
			ok:   true,
		},
		{
			name: "space separated without tab",
			line: "100644 blob abc123 notes.md",
			want: Entry{Mode: "100644", Kind: objects.BlobType, Hash: "abc123", Name: "notes.md"},
			ok:   true,
		},
		{
			name: "quoted non-ascii name",
			line: "100644 blob abc123\t\"caf\\303\\251.bin\"",
			want: Entry{Mode: "100644", Kind: objects.BlobType, Hash: "abc123", Name: "café.bin"},
			ok:   true,
		},
		{
			name: "quoted name with tab and quote",
			line: "100644 blob abc123\t\"a\\tb\\\"c\"",
			want: Entry{Mode: "100644", Kind: objects.BlobType, Hash: "abc123", Name: "a\tb\"c"},
			ok:   true,
		},
		{
			name: "unbalanced quote kept as is",
			line: "100644 blob abc123\t\"draft",
			want: Entry{Mode: "100644", Kind: objects.BlobType, Hash: "abc123", Name: "\"draft"},
			ok:   true,
		},
		{name: "too few fields", line: "100644 blob abc123", ok: false},
		{name: "gitlink", line: "160000 commit abc123\tvendor/lib", ok: false},
		{name: "empty", line: "", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseEntryLine(tt.line)
			require.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestParse_DispatchesByKind(t *testing.T) {
	h := objects.ObjectHandle{Hash: "2222222222222222222222222222222222222222", Type: objects.TreeType, Size: 90}
	rec := Parse(h, []string{
		"100644 blob abc123\tfile.txt",
		"040000 tree def456\tsrc",
		"garbage",
		"100755 blob 789abc\trun.sh",
	})

	require.Len(t, rec.Entries, 3)
	assert.Equal(t, "file.txt", rec.Entries[0].Name)
	assert.Equal(t, "src", rec.Entries[1].Name)
	assert.Equal(t, "run.sh", rec.Entries[2].Name)

	blobs := rec.Blobs()
	require.Len(t, blobs, 2)
	assert.Equal(t, Entry{Mode: "100644", Kind: objects.BlobType, Hash: "abc123", Name: "file.txt"}, blobs[0])

	trees := rec.Trees()
	require.Len(t, trees, 1)
	assert.True(t, trees[0].IsTree())

	e, ok := rec.Find("run.sh")
	require.True(t, ok)
	mode, err := e.FileMode()
	require.NoError(t, err)
	assert.True(t, mode.IsExecutable())

	_, ok = rec.Find("missing")
	assert.False(t, ok)
}

func TestLineParser_CountsSkipped(t *testing.T) {
	p := NewLineParser(objects.ObjectHandle{Type: objects.TreeType})
	p.Line("not an entry")
	p.Line("100644 blob abc123\tok")
	assert.Equal(t, 1, p.Skipped())
	assert.Len(t, p.Record().Entries, 1)
}

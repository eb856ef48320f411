package tree

import (
	"strconv"
	"strings"

	"github.com/utkarsh5026/gitgo/pkg/objects"
)

// Entry is one line of `git cat-file -p <tree>` output.
//
// Line format:
// ┌─────────────────────────────────────────────────────────────────┐
// │ <mode> SPACE <kind> SPACE <hash> TAB <name>                     │
// └─────────────────────────────────────────────────────────────────┘
//
// Example: "100644 blob e69de29bb2d1d6434b8b29ae775ad8c2e48c5391\tREADME.md"
type Entry struct {
	Mode string             `json:"mode"`
	Kind objects.ObjectType `json:"kind"`
	Hash objects.ObjectHash `json:"hash"`
	Name string             `json:"name"`
}

// FileMode parses the entry's mode code.
func (e Entry) FileMode() (objects.FileMode, error) {
	return objects.FromOctalString(e.Mode)
}

// IsTree reports whether the entry is a subdirectory.
func (e Entry) IsTree() bool {
	return e.Kind == objects.TreeType
}

// ParseEntryLine parses a single tree line. Lines with fewer than four
// fields, and entries that are neither trees nor blobs (gitlinks), are
// rejected.
//
// The name is everything after the tab, so names containing spaces are kept
// intact. Lines without a tab are split on whitespace and the fourth field
// is the name. Names git printed C-quoted are unquoted.
func ParseEntryLine(line string) (Entry, bool) {
	meta, name, hasTab := strings.Cut(line, "\t")

	var fields []string
	if hasTab {
		fields = strings.Fields(meta)
		if len(fields) < 3 || name == "" {
			return Entry{}, false
		}
	} else {
		fields = strings.Fields(line)
		if len(fields) < 4 {
			return Entry{}, false
		}
		name = fields[3]
	}

	name = unquoteName(name)

	kind := objects.ObjectType(fields[1])
	if kind != objects.TreeType && kind != objects.BlobType {
		return Entry{}, false
	}

	return Entry{
		Mode: fields[0],
		Kind: kind,
		Hash: objects.ObjectHash(fields[2]),
		Name: name,
	}, true
}

// unquoteName decodes a name git wrapped in double quotes because it holds
// control characters, quotes, backslashes or non-ASCII bytes. git's escapes
// (\t, \", \\, \ooo octal) are a subset of Go's.
func unquoteName(name string) string {
	if len(name) < 2 || name[0] != '"' || name[len(name)-1] != '"' {
		return name
	}
	if u, e := strconv.Unquote(name); e == nil {
		return u
	}
	return name
}

// Record is a parsed tree object. Entries keep the order git printed them
// in, which is the on-disk tree order.
type Record struct {
	objects.ObjectHandle
	Entries []Entry `json:"entries"`
}

// Trees returns the subdirectory entries in order.
func (r *Record) Trees() []Entry {
	return r.filter(objects.TreeType)
}

// Blobs returns the file entries in order.
func (r *Record) Blobs() []Entry {
	return r.filter(objects.BlobType)
}

// Find returns the entry with the given name.
func (r *Record) Find(name string) (Entry, bool) {
	for _, e := range r.Entries {
		if e.Name == name {
			return e, true
		}
	}
	return Entry{}, false
}

func (r *Record) filter(kind objects.ObjectType) []Entry {
	var out []Entry
	for _, e := range r.Entries {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

// LineParser builds a Record one output line at a time.
type LineParser struct {
	rec     *Record
	skipped int
}

// NewLineParser starts parsing the tree identified by h.
func NewLineParser(h objects.ObjectHandle) *LineParser {
	return &LineParser{rec: &Record{ObjectHandle: h}}
}

// Line consumes one line of `cat-file -p` output.
func (p *LineParser) Line(line string) {
	entry, ok := ParseEntryLine(line)
	if !ok {
		p.skipped++
		return
	}
	p.rec.Entries = append(p.rec.Entries, entry)
}

// Skipped returns how many lines did not yield an entry.
func (p *LineParser) Skipped() int {
	return p.skipped
}

// Record returns the parsed tree.
func (p *LineParser) Record() *Record {
	return p.rec
}

// Parse builds a Record from complete `cat-file -p` output lines.
func Parse(h objects.ObjectHandle, lines []string) *Record {
	p := NewLineParser(h)
	for _, line := range lines {
		p.Line(line)
	}
	return p.Record()
}

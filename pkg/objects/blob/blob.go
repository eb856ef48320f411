package blob

import (
	"bytes"
	"unicode/utf8"

	"github.com/utkarsh5026/gitgo/pkg/objects"
)

// binarySniffLen is how many leading bytes are checked for NUL, as git does.
const binarySniffLen = 8000

// Record is a parsed blob.
//
// When Lossy is set the contents were captured line by line and only the
// last line was kept, so multi-line and binary blobs are not reproduced.
type Record struct {
	objects.ObjectHandle
	Contents []byte `json:"contents,omitempty"`
	Lossy    bool   `json:"lossy,omitempty"`
}

// New returns a Record holding the exact blob bytes.
func New(h objects.ObjectHandle, data []byte) *Record {
	return &Record{ObjectHandle: h, Contents: data}
}

// MetadataOnly returns a Record without contents.
func MetadataOnly(h objects.ObjectHandle) *Record {
	return &Record{ObjectHandle: h}
}

// IsBinary reports whether the contents look binary.
func (r *Record) IsBinary() bool {
	sniff := r.Contents
	if len(sniff) > binarySniffLen {
		sniff = sniff[:binarySniffLen]
	}
	return bytes.IndexByte(sniff, 0) >= 0 || !utf8.Valid(sniff)
}

// Text returns the contents as a string.
func (r *Record) Text() string {
	return string(r.Contents)
}

// LineParser keeps the last line it is fed.
type LineParser struct {
	rec  *Record
	last string
	seen bool
}

// NewLineParser starts a line-oriented capture of the blob identified by h.
func NewLineParser(h objects.ObjectHandle) *LineParser {
	return &LineParser{rec: &Record{ObjectHandle: h, Lossy: true}}
}

// Line consumes one line of `cat-file -p` output.
func (p *LineParser) Line(line string) {
	p.last = line
	p.seen = true
}

// Record returns the captured blob.
func (p *LineParser) Record() *Record {
	if p.seen {
		p.rec.Contents = []byte(p.last)
	}
	return p.rec
}

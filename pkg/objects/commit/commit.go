package commit

import (
	"strings"

	"github.com/utkarsh5026/gitgo/pkg/objects"
)

// Record is a commit as printed by `git cat-file -p <hash>`.
//
// Output layout:
// ┌─────────────────────────────────────────────────────────────────┐
// │ tree <tree-sha>                                                 │
// │ parent <parent-sha>            (zero or more)                   │
// │ author Name <email> timestamp tz                                │
// │ committer Name <email> timestamp tz                             │
// │ <other headers, continuation lines start with a space>          │
// │                                                                 │
// │ message lines...                                                │
// └─────────────────────────────────────────────────────────────────┘
//
// A commit without parents is a root commit. Repositories with grafted or
// unrelated histories have several.
type Record struct {
	objects.ObjectHandle
	TreeHash  objects.ObjectHash   `json:"tree"`
	Parents   []objects.ObjectHash `json:"parents,omitempty"`
	Author    Person               `json:"author"`
	Committer Person               `json:"committer"`
	Message   string               `json:"message"`
}

// ParentHash returns the first parent, if any.
func (r *Record) ParentHash() (objects.ObjectHash, bool) {
	if len(r.Parents) == 0 {
		return "", false
	}
	return r.Parents[0], true
}

// IsRoot reports whether the commit has no parents.
func (r *Record) IsRoot() bool {
	return len(r.Parents) == 0
}

// IsMerge reports whether the commit has more than one parent.
func (r *Record) IsMerge() bool {
	return len(r.Parents) > 1
}

// Subject returns the first line of the message.
func (r *Record) Subject() string {
	subject, _, _ := strings.Cut(r.Message, "\n")
	return subject
}

// LineParser builds a Record one output line at a time.
type LineParser struct {
	rec    *Record
	inBody bool
	body   []string
}

// NewLineParser starts parsing the commit identified by h.
func NewLineParser(h objects.ObjectHandle) *LineParser {
	return &LineParser{rec: &Record{ObjectHandle: h}}
}

// Line consumes one line of `cat-file -p` output.
func (p *LineParser) Line(line string) {
	if p.inBody {
		p.body = append(p.body, line)
		return
	}

	if line == "" {
		p.inBody = true
		return
	}

	// gpgsig and mergetag values continue on lines starting with a space
	if strings.HasPrefix(line, " ") {
		return
	}

	key, value, _ := strings.Cut(line, " ")
	switch key {
	case "tree":
		if value != "" {
			p.rec.TreeHash = objects.ObjectHash(strings.TrimSpace(value))
		}
	case "parent":
		if value != "" {
			p.rec.Parents = append(p.rec.Parents, objects.ObjectHash(strings.TrimSpace(value)))
		}
	case "author":
		if person, ok := ParsePerson(value, 4); ok {
			p.rec.Author = person
		}
	case "committer":
		if person, ok := ParsePerson(value, 2); ok {
			p.rec.Committer = person
		}
	case "encoding", "gpgsig", "gpgsig-sha256", "mergetag":
	default:
		// Not a header: the message started without a separating blank line.
		p.inBody = true
		p.body = append(p.body, line)
	}
}

// Record returns the parsed commit. The message is every body line joined
// in order, with trailing blank lines removed.
func (p *LineParser) Record() *Record {
	body := p.body
	for len(body) > 0 && strings.TrimSpace(body[len(body)-1]) == "" {
		body = body[:len(body)-1]
	}
	p.rec.Message = strings.Join(body, "\n")
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

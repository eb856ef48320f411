package actions

import (
	"strings"
	"time"
)

const (
	fieldSep  = "\x1f"
	recordSep = "\x1e"
)

// logFormat prints one record per commit, fields separated by the unit
// separator and records terminated by the record separator.
var logFormat = "--format=" + strings.Join([]string{
	"%H", "%h", "%T", "%t", "%P",
	"%an", "%ae", "%aI",
	"%cn", "%ce", "%cI",
	"%s", "%b",
}, "%x1f") + "%x1e"

// Hash holds the full and abbreviated forms of an object name.
type Hash struct {
	Long  string `json:"long"`
	Short string `json:"short"`
}

// Signature is an author or committer line of git log.
type Signature struct {
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Date  time.Time `json:"date"`
}

// LogEntry is one commit of git log output.
type LogEntry struct {
	Commit    Hash      `json:"commit"`
	Tree      Hash      `json:"tree"`
	Parents   []string  `json:"parents,omitempty"`
	Author    Signature `json:"author"`
	Committer Signature `json:"committer"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
}

// ParseLog parses output produced with logFormat. Malformed records are
// skipped.
func ParseLog(out string) []LogEntry {
	var entries []LogEntry
	for _, rec := range strings.Split(out, recordSep) {
		rec = strings.TrimLeft(rec, "\r\n")
		if rec == "" {
			continue
		}
		if entry, ok := parseLogRecord(rec); ok {
			entries = append(entries, entry)
		}
	}
	return entries
}

func parseLogRecord(rec string) (LogEntry, bool) {
	f := strings.Split(rec, fieldSep)
	if len(f) != 13 {
		return LogEntry{}, false
	}
	return LogEntry{
		Commit:    Hash{Long: f[0], Short: f[1]},
		Tree:      Hash{Long: f[2], Short: f[3]},
		Parents:   strings.Fields(f[4]),
		Author:    Signature{Name: f[5], Email: f[6], Date: parseDate(f[7])},
		Committer: Signature{Name: f[8], Email: f[9], Date: parseDate(f[10])},
		Subject:   f[11],
		Body:      strings.TrimRight(f[12], "\n"),
	}, true
}

func parseDate(s string) time.Time {
	t, e := time.Parse(time.RFC3339, s)
	if e != nil {
		return time.Time{}
	}
	return t
}

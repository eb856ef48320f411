package branch

import (
	"fmt"
	"strings"

	"github.com/utkarsh5026/gitgo/pkg/gitexec"
)

// ParseBranchOutput parses the lines of `git branch --list -v`. With remote
// set, names are split at the first "/" into remote and branch.
//
// Line format:
// ┌─────────────────────────────────────────────────────────────────┐
// │ [*|+] <name> <commit> <subject...>                              │
// └─────────────────────────────────────────────────────────────────┘
//
// "*" marks the current branch and "+" a branch checked out in another
// linked worktree. Symbolic HEAD entries and detached HEAD lines are dropped.
func ParseBranchOutput(lines []string, remote bool) []Info {
	out := make([]Info, 0, len(lines))
	for _, line := range lines {
		info, ok := parseBranchLine(line, remote)
		if ok {
			out = append(out, info)
		}
	}
	return out
}

func parseBranchLine(line string, remote bool) (Info, bool) {
	rest := strings.TrimSpace(gitexec.NormalizeTabs(line))
	if rest == "" {
		return Info{}, false
	}

	var info Info
	switch rest[0] {
	case '*':
		info.Current = true
		rest = strings.TrimSpace(rest[1:])
	case '+':
		info.Worktree = true
		rest = strings.TrimSpace(rest[1:])
	}

	// "(HEAD detached at 1a2b3c4) 1a2b3c4 message"
	if strings.HasPrefix(rest, "(") {
		return Info{}, false
	}

	name, rest := nextField(rest)
	if name == "" {
		return Info{}, false
	}

	if remote {
		if i := strings.Index(name, "/"); i >= 0 {
			info.Remote = name[:i]
			name = name[i+1:]
		}
	}
	info.Name = name
	if info.Name == "HEAD" {
		return Info{}, false
	}

	info.Commit, rest = nextField(rest)
	info.Subject = strings.TrimSpace(rest)
	return info, true
}

// nextField splits off the first whitespace-separated field.
func nextField(s string) (string, string) {
	s = strings.TrimLeft(s, " ")
	i := strings.IndexByte(s, ' ')
	if i < 0 {
		return s, ""
	}
	return s[:i], s[i+1:]
}

// ValidateName checks a branch name against git's ref naming rules.
func ValidateName(name string) error {
	if name == "" {
		return NewInvalidNameError(name, "branch name cannot be empty")
	}

	var reasons []string

	invalidChars := []string{" ", "~", "^", ":", "?", "*", "[", "\\", "..", "@{"}
	for _, char := range invalidChars {
		if strings.Contains(name, char) {
			reasons = append(reasons, fmt.Sprintf("contains invalid character '%s'", char))
		}
	}

	if strings.HasPrefix(name, "/") || strings.HasSuffix(name, "/") {
		reasons = append(reasons, "cannot start or end with '/'")
	}

	if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "-") {
		reasons = append(reasons, "cannot start with '.' or '-'")
	}

	if strings.HasSuffix(name, ".lock") {
		reasons = append(reasons, "cannot end with '.lock'")
	}

	if strings.Contains(name, "//") {
		reasons = append(reasons, "cannot contain consecutive slashes")
	}

	if len(reasons) > 0 {
		return NewInvalidNameError(name, reasons...)
	}
	return nil
}

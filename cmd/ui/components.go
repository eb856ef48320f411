package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/utkarsh5026/gitgo/pkg/objects"
	"github.com/utkarsh5026/gitgo/pkg/objects/commit"
	"github.com/utkarsh5026/gitgo/pkg/objects/tree"
	"github.com/utkarsh5026/gitgo/pkg/refs/branch"
)

// KindLabel renders an object type with its icon and color.
func KindLabel(t objects.ObjectType) string {
	switch t {
	case objects.CommitType:
		return CommitStyle.Render(IconCommit + " " + t.String())
	case objects.TreeType:
		return TreeStyle.Render(IconTree + " " + t.String())
	case objects.BlobType:
		return BlobStyle.Render(IconBlob + " " + t.String())
	default:
		return t.String()
	}
}

// FormatDelta lists the handles a topic reported, added first.
func FormatDelta(topic string, d objects.Delta) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", Section(topic), Dim(time.Now().Format(time.TimeOnly)))
	for _, h := range d.Added {
		fmt.Fprintf(&b, "  %s  %s %s\n", AddedStyle.Render(IconAdded), KindLabel(h.Type), h.Hash)
	}
	for _, h := range d.Removed {
		fmt.Fprintf(&b, "  %s  %s %s\n", RemovedStyle.Render(IconRemoved), KindLabel(h.Type), h.Hash)
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// FormatBranches renders a branch listing, marking the current branch and
// branches checked out in other worktrees.
func FormatBranches(title string, branches []branch.Info) string {
	var b strings.Builder
	b.WriteString(Section(title))
	if len(branches) == 0 {
		b.WriteString("\n  " + Dim("none"))
		return b.String()
	}
	for _, br := range branches {
		marker := " "
		name := Blue(br.FullName())
		if br.Current {
			marker = Green("*")
			name = Green(br.FullName())
		} else if br.Worktree {
			marker = Yellow("+")
		}
		fmt.Fprintf(&b, "\n  %s %s %s %s", marker, Cyan(IconBranch), name, Dim(br.Commit))
	}
	return b.String()
}

// FormatCommitDetailed formats a commit with full details in a box.
func FormatCommitDetailed(c *commit.Record) string {
	var content strings.Builder

	icon := IconCommit
	if c.IsRoot() {
		icon = IconRoot
	}
	fmt.Fprintf(&content, "%s %s\n", Yellow(icon), Yellow(c.Hash.String()))
	fmt.Fprintf(&content, "%s %s\n", Cyan(IconAuthor), Cyan(c.Author.String()))
	if when, e := c.Author.When(); e == nil {
		fmt.Fprintf(&content, "%s %s\n", Magenta(IconDate), Magenta(when.Format(time.RFC1123)))
	}
	fmt.Fprintf(&content, "%s %s", Dim("tree"), Dim(c.TreeHash.String()))
	for _, p := range c.Parents {
		fmt.Fprintf(&content, "\n%s %s", Dim("parent"), Dim(p.String()))
	}

	if c.Message != "" {
		content.WriteString(ColorCyanStyle.MarginTop(1).Render("\n" + c.Message))
	}

	return CommitBox(content.String())
}

// FormatTreeEntries renders tree entries one per line in git's order.
func FormatTreeEntries(entries []tree.Entry) string {
	lines := make([]string, 0, len(entries))
	for _, entry := range entries {
		lines = append(lines, fmt.Sprintf("%s %s %s  %s",
			Dim(entry.Mode), KindLabel(entry.Kind), entry.Hash.Short(), entry.Name))
	}
	return strings.Join(lines, "\n")
}

// FormatCommitSeparator creates a separator between commits.
func FormatCommitSeparator() string {
	return ColorDimStyle.Render("  " + IconSeparator)
}

// SuccessMessage creates a success message with a checkmark icon.
func SuccessMessage(message string, details ...string) string {
	parts := []string{Green(IconCheck), Green(message)}
	for _, detail := range details {
		parts = append(parts, Blue(detail))
	}
	return strings.Join(parts, " ")
}

// ErrorMessage formats an error message in red.
func ErrorMessage(message string) string {
	return Red(message)
}

// WarningMessage formats a warning message in yellow.
func WarningMessage(message string) string {
	return Yellow(message)
}

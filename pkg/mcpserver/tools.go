package mcpserver

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/utkarsh5026/gitgo/pkg/actions"
	"github.com/utkarsh5026/gitgo/pkg/objects"
	"github.com/utkarsh5026/gitgo/pkg/objects/blob"
	"github.com/utkarsh5026/gitgo/pkg/objects/commit"
	"github.com/utkarsh5026/gitgo/pkg/objects/tree"
	"github.com/utkarsh5026/gitgo/pkg/store"
)

// maxBlobText caps the blob text returned by show_object.
const maxBlobText = 64 * 1024

// --- Shared types ---

// CommitView is a commit as returned by the tools.
type CommitView struct {
	Hash           string   `json:"hash"                      jsonschema:"commit hash"`
	Tree           string   `json:"tree"                      jsonschema:"root tree hash"`
	Parents        []string `json:"parents,omitempty"         jsonschema:"parent hashes, first parent first"`
	AuthorName     string   `json:"author_name"               jsonschema:"author name"`
	AuthorEmail    string   `json:"author_email"              jsonschema:"author email"`
	AuthorTime     int64    `json:"author_time,omitempty"     jsonschema:"author unix timestamp"`
	CommitterName  string   `json:"committer_name"            jsonschema:"committer name"`
	CommitterEmail string   `json:"committer_email"           jsonschema:"committer email"`
	CommitTime     int64    `json:"commit_time,omitempty"     jsonschema:"committer unix timestamp"`
	Message        string   `json:"message"                   jsonschema:"full commit message"`
}

func toCommitView(c *commit.Record) CommitView {
	parents := make([]string, len(c.Parents))
	for i, p := range c.Parents {
		parents[i] = p.String()
	}
	return CommitView{
		Hash:           c.Hash.String(),
		Tree:           c.TreeHash.String(),
		Parents:        parents,
		AuthorName:     c.Author.Name,
		AuthorEmail:    c.Author.Email,
		AuthorTime:     c.Author.Timestamp,
		CommitterName:  c.Committer.Name,
		CommitterEmail: c.Committer.Email,
		CommitTime:     c.Committer.Timestamp,
		Message:        c.Message,
	}
}

// EntryView is one tree entry.
type EntryView struct {
	Mode string `json:"mode" jsonschema:"octal mode code"`
	Kind string `json:"kind" jsonschema:"tree or blob"`
	Hash string `json:"hash" jsonschema:"object hash"`
	Name string `json:"name" jsonschema:"entry name"`
}

func toEntryViews(entries []tree.Entry) []EntryView {
	out := make([]EntryView, len(entries))
	for i, e := range entries {
		out[i] = EntryView{Mode: e.Mode, Kind: e.Kind.String(), Hash: e.Hash.String(), Name: e.Name}
	}
	return out
}

// BlobView describes blob contents.
type BlobView struct {
	Size      int64  `json:"size"                jsonschema:"size in bytes"`
	Binary    bool   `json:"binary"              jsonschema:"whether the contents look binary"`
	Lossy     bool   `json:"lossy"               jsonschema:"whether only part of the contents was captured"`
	Text      string `json:"text,omitempty"      jsonschema:"contents when not binary"`
	Truncated bool   `json:"truncated,omitempty" jsonschema:"whether text was cut short"`
}

func toBlobView(b *blob.Record) BlobView {
	v := BlobView{Size: b.Size, Binary: b.IsBinary(), Lossy: b.Lossy}
	if v.Binary {
		return v
	}
	text := b.Text()
	if len(text) > maxBlobText {
		text = text[:maxBlobText]
		v.Truncated = true
	}
	v.Text = text
	return v
}

// --- Objects tool ---

// ObjectsInput is the input for the objects tool (no parameters needed).
type ObjectsInput struct{}

// ObjectsOutput is the output for the objects tool.
type ObjectsOutput struct {
	Commits int      `json:"commits"          jsonschema:"number of commits"`
	Trees   int      `json:"trees"            jsonschema:"number of trees"`
	Blobs   int      `json:"blobs"            jsonschema:"number of blobs"`
	Roots   []string `json:"roots"            jsonschema:"root commit hashes"`
	Failed  []string `json:"failed,omitempty" jsonschema:"objects that could not be read"`
}

func handleObjects(graph *store.Store) mcp.ToolHandlerFor[ObjectsInput, ObjectsOutput] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ ObjectsInput) (*mcp.CallToolResult, ObjectsOutput, error) {
		stats, err := graph.Stats(ctx)
		if err != nil {
			return nil, ObjectsOutput{}, fmt.Errorf("reading graph: %w", err)
		}
		roots, err := graph.RootCommits(ctx)
		if err != nil {
			return nil, ObjectsOutput{}, err
		}
		failed, err := graph.Failed(ctx)
		if err != nil {
			return nil, ObjectsOutput{}, err
		}

		out := ObjectsOutput{
			Commits: stats.Commits,
			Trees:   stats.Trees,
			Blobs:   stats.Blobs,
			Roots:   make([]string, len(roots)),
		}
		for i, r := range roots {
			out.Roots[i] = r.String()
		}
		for h := range failed {
			out.Failed = append(out.Failed, h.String())
		}
		return nil, out, nil
	}
}

// --- Show tool ---

// ShowObjectInput is the input for the show_object tool.
type ShowObjectInput struct {
	Hash string `json:"hash" jsonschema:"full object hash"`
}

// ShowObjectOutput is the output for the show_object tool. Exactly one of
// Commit, Entries and Blob is set.
type ShowObjectOutput struct {
	Type    string      `json:"type"              jsonschema:"commit, tree or blob"`
	Commit  *CommitView `json:"commit,omitempty"  jsonschema:"commit details"`
	Entries []EntryView `json:"entries,omitempty" jsonschema:"tree entries"`
	Blob    *BlobView   `json:"blob,omitempty"    jsonschema:"blob details"`
}

func handleShowObject(graph *store.Store) mcp.ToolHandlerFor[ShowObjectInput, ShowObjectOutput] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input ShowObjectInput) (*mcp.CallToolResult, ShowObjectOutput, error) {
		if input.Hash == "" {
			return nil, ShowObjectOutput{}, errors.New("hash is required")
		}

		rec, err := graph.Lookup(ctx, objects.ObjectHash(input.Hash))
		if err != nil {
			return nil, ShowObjectOutput{}, err
		}

		out := ShowObjectOutput{Type: rec.Handle().Type.String()}
		switch r := rec.(type) {
		case *commit.Record:
			v := toCommitView(r)
			out.Commit = &v
		case *tree.Record:
			out.Entries = toEntryViews(r.Entries)
		case *blob.Record:
			v := toBlobView(r)
			out.Blob = &v
		}
		return nil, out, nil
	}
}

// --- History tool ---

// HistoryInput is the input for the history tool.
type HistoryInput struct {
	From  string `json:"from"            jsonschema:"commit hash to start from"`
	Limit int    `json:"limit,omitempty" jsonschema:"maximum commits to return (default 20)"`
}

// HistoryOutput is the output for the history tool.
type HistoryOutput struct {
	Count   int          `json:"count"   jsonschema:"number of commits returned"`
	Commits []CommitView `json:"commits" jsonschema:"commits, newest first"`
}

func handleHistory(graph *store.Store) mcp.ToolHandlerFor[HistoryInput, HistoryOutput] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input HistoryInput) (*mcp.CallToolResult, HistoryOutput, error) {
		if input.From == "" {
			return nil, HistoryOutput{}, errors.New("from is required")
		}
		limit := input.Limit
		if limit <= 0 {
			limit = 20
		}

		chain, err := graph.History(ctx, objects.ObjectHash(input.From), limit)
		if err != nil {
			return nil, HistoryOutput{}, err
		}

		out := HistoryOutput{Count: len(chain), Commits: make([]CommitView, len(chain))}
		for i, c := range chain {
			out.Commits[i] = toCommitView(c)
		}
		return nil, out, nil
	}
}

// --- Dispatch tool ---

// DispatchInput is the input for the dispatch tool.
type DispatchInput struct {
	Message actions.Message `json:"message" jsonschema:"panel message; type names the operation"`
}

// DispatchOutput is the output for the dispatch tool.
type DispatchOutput struct {
	Type     string `json:"type,omitempty"     jsonschema:"response type, empty when the operation has no answer"`
	Response string `json:"response,omitempty" jsonschema:"response as JSON"`
}

func handleDispatch(dispatcher *actions.Dispatcher) mcp.ToolHandlerFor[DispatchInput, DispatchOutput] {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input DispatchInput) (*mcp.CallToolResult, DispatchOutput, error) {
		resp, err := dispatcher.Dispatch(ctx, input.Message)
		if err != nil {
			return nil, DispatchOutput{}, err
		}
		if resp.Empty() {
			return nil, DispatchOutput{}, nil
		}

		data, err := resp.Encode()
		if err != nil {
			return nil, DispatchOutput{}, fmt.Errorf("encoding response: %w", err)
		}
		return nil, DispatchOutput{Type: resp.Type, Response: string(data)}, nil
	}
}

// Package mcpserver exposes the object graph and the host actions as Model
// Context Protocol tools.
package mcpserver

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/utkarsh5026/gitgo/pkg/actions"
	"github.com/utkarsh5026/gitgo/pkg/store"
)

// NewServer creates an MCP server with all gitgo tools registered.
func NewServer(version string, graph *store.Store, dispatcher *actions.Dispatcher) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "gitgo",
		Version: version,
	}, nil)
	registerTools(server, graph, dispatcher)
	return server
}

func boolPtr(b bool) *bool {
	return &b
}

// readOnlyAnnotations returns annotations for read-only tools.
func readOnlyAnnotations() *mcp.ToolAnnotations {
	return &mcp.ToolAnnotations{
		ReadOnlyHint:   true,
		IdempotentHint: true,
		OpenWorldHint:  boolPtr(false),
	}
}

func registerTools(server *mcp.Server, graph *store.Store, dispatcher *actions.Dispatcher) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "objects",
		Description: "Summarise the object graph: commit, tree and blob counts, root commits and objects that could not be read.",
		Annotations: readOnlyAnnotations(),
	}, handleObjects(graph))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "show_object",
		Description: "Show one commit, tree or blob of the object graph by hash.",
		Annotations: readOnlyAnnotations(),
	}, handleShowObject(graph))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "history",
		Description: "Walk first parents from a commit, newest first.",
		Annotations: readOnlyAnnotations(),
	}, handleHistory(graph))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "dispatch",
		Description: "Run one panel operation (stage, commit, checkout, getCommits, ...) in the repository and return its response.",
		Annotations: &mcp.ToolAnnotations{OpenWorldHint: boolPtr(true)},
	}, handleDispatch(dispatcher))
}

package main

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/utkarsh5026/gitgo/pkg/actions"
	"github.com/utkarsh5026/gitgo/pkg/common/logger"
	"github.com/utkarsh5026/gitgo/pkg/mcpserver"
	"github.com/utkarsh5026/gitgo/pkg/notify"
	"github.com/utkarsh5026/gitgo/pkg/objects"
)

func newServeCmd(flags *globalFlags) *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the object graph as MCP tools over stdio",
		Long: `Load the object graph and expose it, together with the host actions,
as Model Context Protocol tools on stdin and stdout. With --watch the graph
is refreshed whenever the object database changes.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			p, settings, err := loadGraph(ctx, flags, false)
			if err != nil {
				return err
			}
			defer p.Close()

			if watch {
				hub := p.Hub(notify.FSWatchFactory(settings.Debounce, logger.Default))
				defer hub.Close()
				// Any subscriber activates the watcher; the probe refreshes the store.
				if _, err := hub.Commits.Subscribe(func(objects.Delta) error { return nil }); err != nil {
					return err
				}
			}

			d := actions.NewDispatcher(p.Runner(), p.Repository().WorkDir,
				actions.WithArtifacts(artifactWriter(settings, logger.Default)),
				actions.WithLogger(logger.Default),
			)

			server := mcpserver.NewServer(Version, p.Store(), d)
			return server.Run(ctx, &mcp.StdioTransport{})
		},
	}

	cmd.Flags().BoolVar(&watch, "watch", false, "Refresh the graph when the repository changes")
	return cmd
}

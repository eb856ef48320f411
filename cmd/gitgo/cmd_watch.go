package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/utkarsh5026/gitgo/cmd/ui"
	"github.com/utkarsh5026/gitgo/pkg/common/logger"
	"github.com/utkarsh5026/gitgo/pkg/notify"
	"github.com/utkarsh5026/gitgo/pkg/objects"
)

func newWatchCmd(flags *globalFlags) *cobra.Command {
	var topics []string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print object and branch changes as they happen",
		Long: `Load the object graph, then watch the repository's object and ref
directories. Every change re-enumerates the objects and prints what was
added or removed. Stop with Ctrl-C.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			p, settings, err := loadGraph(ctx, flags, true)
			if err != nil {
				return err
			}
			defer p.Close()

			hub := p.Hub(notify.FSWatchFactory(settings.Debounce, logger.Default))
			defer hub.Close()

			want := make(map[string]bool, len(topics))
			for _, t := range topics {
				want[t] = true
			}
			all := len(want) == 0

			printDelta := func(topic string) notify.Handler[objects.Delta] {
				return func(d objects.Delta) error {
					fmt.Println(ui.FormatDelta(topic, d))
					return nil
				}
			}

			for name, topic := range map[string]*notify.Topic[objects.Delta]{
				notify.TopicCommits: hub.Commits,
				notify.TopicTrees:   hub.Trees,
				notify.TopicBlobs:   hub.Blobs,
			} {
				if !all && !want[name] {
					continue
				}
				if _, err := topic.Subscribe(printDelta(name)); err != nil {
					return fmt.Errorf("failed to watch %s: %w", name, err)
				}
			}

			if all || want[notify.TopicBranches] {
				_, err := hub.Branches.Subscribe(func(c notify.BranchChange) error {
					fmt.Println(ui.FormatBranches("Local branches", c.Local))
					fmt.Println(ui.FormatBranches("Remote branches", c.Remote))
					return nil
				})
				if err != nil {
					return fmt.Errorf("failed to watch branches: %w", err)
				}
			}

			fmt.Println(ui.SuccessMessage("Watching", p.Repository().WorkDir))
			<-ctx.Done()
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&topics, "topic", nil, "Topics to print (commits, trees, blobs, branches); default all")
	return cmd
}

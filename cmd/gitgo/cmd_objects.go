package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/goccy/go-json"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/utkarsh5026/gitgo/cmd/ui"
	"github.com/utkarsh5026/gitgo/pkg/objects"
)

func newObjectsCmd(flags *globalFlags) *cobra.Command {
	var (
		asJSON   bool
		noBar    bool
		showFail bool
	)

	cmd := &cobra.Command{
		Use:   "objects",
		Short: "Load the object graph and summarise it",
		Long: `Enumerate every object in the repository, read each commit, tree and
blob concurrently and print what was recorded.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			p, _, err := loadGraph(ctx, flags, !noBar && !asJSON)
			if err != nil {
				return err
			}
			defer p.Close()

			graph := p.Store()
			stats, err := graph.Stats(ctx)
			if err != nil {
				return err
			}
			roots, err := graph.RootCommits(ctx)
			if err != nil {
				return err
			}
			failed, err := graph.Failed(ctx)
			if err != nil {
				return err
			}

			if asJSON {
				out, err := json.MarshalIndent(map[string]any{
					"repository": p.Repository().WorkDir,
					"stats":      stats,
					"roots":      roots,
				}, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(out))
				return nil
			}

			fmt.Println(ui.Header(" Object Graph "))
			table := tablewriter.NewWriter(os.Stdout)
			table.Header("Kind", "Count")
			table.Append(ui.KindLabel(objects.CommitType), fmt.Sprint(stats.Commits))
			table.Append(ui.KindLabel(objects.TreeType), fmt.Sprint(stats.Trees))
			table.Append(ui.KindLabel(objects.BlobType), fmt.Sprint(stats.Blobs))
			table.Append(ui.Red("unreadable"), fmt.Sprint(stats.Failed))
			table.Render()

			fmt.Println()
			fmt.Println(ui.Section("Root commits"))
			if len(roots) == 0 {
				fmt.Println("  " + ui.Dim("none"))
			}
			for _, r := range roots {
				fmt.Printf("  %s %s\n", ui.Yellow(ui.IconRoot), r)
			}

			if showFail && len(failed) > 0 {
				fmt.Println()
				fmt.Println(ui.Section("Unreadable objects"))
				hashes := make([]objects.ObjectHash, 0, len(failed))
				for h := range failed {
					hashes = append(hashes, h)
				}
				sort.Slice(hashes, func(i, j int) bool { return hashes[i] < hashes[j] })
				for _, h := range hashes {
					fmt.Printf("  %s %s\n", h.Short(), ui.ErrorMessage(failed[h].Error()))
				}
			}

			fmt.Println()
			fmt.Println(ui.SuccessMessage("Loaded", fmt.Sprintf("%d objects in %s", stats.Handles, stats.Duration)))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the summary as JSON")
	cmd.Flags().BoolVar(&noBar, "no-progress", false, "Do not draw a progress bar")
	cmd.Flags().BoolVar(&showFail, "failed", false, "List objects that could not be read")

	return cmd
}

// resolveHash expands a hash prefix against the recorded handles.
func resolveHash(set objects.HandleSet, prefix string) (objects.ObjectHash, error) {
	if h, err := objects.ParseObjectHash(prefix); err == nil {
		return h, nil
	}
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	if len(prefix) < 4 {
		return "", fmt.Errorf("hash prefix %q is too short", prefix)
	}

	var match objects.ObjectHash
	for _, h := range set.All() {
		if strings.HasPrefix(h.Hash.String(), prefix) {
			if match != "" && match != h.Hash {
				return "", fmt.Errorf("hash prefix %q is ambiguous", prefix)
			}
			match = h.Hash
		}
	}
	if match == "" {
		return "", fmt.Errorf("no object matches %q", prefix)
	}
	return match, nil
}

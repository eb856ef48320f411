package main

import (
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/utkarsh5026/gitgo/cmd/ui"
	"github.com/utkarsh5026/gitgo/pkg/objects"
	"github.com/utkarsh5026/gitgo/pkg/objects/commit"
)

func newHistoryCmd(flags *globalFlags) *cobra.Command {
	var (
		limit    int
		useTable bool
	)

	cmd := &cobra.Command{
		Use:   "history [commit]",
		Short: "Walk first parents through the recorded commits",
		Long: `Show the commit history starting at the given commit, newest first.
Without an argument the walk starts at HEAD.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, _, err := loadGraph(ctx, flags, false)
			if err != nil {
				return err
			}
			defer p.Close()

			start := "HEAD"
			if len(args) == 1 {
				start = args[0]
			}

			var from objects.ObjectHash
			if start == "HEAD" {
				out, err := p.Runner().Output(ctx, p.Repository().WorkDir, "rev-parse", "HEAD")
				if err != nil {
					return fmt.Errorf("failed to resolve HEAD: %w", err)
				}
				from, err = objects.ParseObjectHash(string(out))
				if err != nil {
					return err
				}
			} else if from, err = resolveHash(p.Store().Handles(), start); err != nil {
				return err
			}

			history, err := p.Store().History(ctx, from, limit)
			if err != nil {
				return err
			}

			if len(history) == 0 {
				fmt.Println(ui.WarningMessage("No commits yet"))
				return nil
			}

			if useTable {
				displayCommitsAsTable(history)
			} else {
				displayCommitsDetailed(history)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Limit the number of commits to show")
	cmd.Flags().BoolVarP(&useTable, "table", "t", false, "Display commits in table format")

	return cmd
}

func displayCommitsDetailed(history []*commit.Record) {
	fmt.Println(ui.Header(" Commit History "))

	for i, c := range history {
		fmt.Println(ui.FormatCommitDetailed(c))
		if i < len(history)-1 {
			fmt.Println(ui.FormatCommitSeparator())
		}
	}
}

func displayCommitsAsTable(history []*commit.Record) {
	fmt.Println(ui.Header(" Commit History "))

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Commit", "Author", "Date", "Message")

	for _, c := range history {
		date := ""
		if when, err := c.Author.When(); err == nil {
			date = when.Format("2006-01-02 15:04")
		}

		message := c.Subject()
		if len(message) > 50 {
			message = message[:47] + "..."
		}

		table.Append(
			ui.Yellow(c.Hash.Short().String()),
			ui.Cyan(c.Author.Name),
			ui.Magenta(date),
			message,
		)
	}

	table.Render()
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/utkarsh5026/gitgo/cmd/ui"
	"github.com/utkarsh5026/gitgo/pkg/objects/blob"
	"github.com/utkarsh5026/gitgo/pkg/objects/commit"
	"github.com/utkarsh5026/gitgo/pkg/objects/tree"
)

func newShowCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "show <hash>",
		Short: "Show one recorded commit, tree or blob",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, _, err := loadGraph(ctx, flags, false)
			if err != nil {
				return err
			}
			defer p.Close()

			hash, err := resolveHash(p.Store().Handles(), args[0])
			if err != nil {
				return err
			}
			rec, err := p.Store().Lookup(ctx, hash)
			if err != nil {
				return err
			}

			switch r := rec.(type) {
			case *commit.Record:
				fmt.Println(ui.FormatCommitDetailed(r))
			case *tree.Record:
				fmt.Println(ui.KindLabel(r.Type), r.Hash)
				fmt.Println(ui.FormatTreeEntries(r.Entries))
			case *blob.Record:
				fmt.Println(ui.KindLabel(r.Type), r.Hash, ui.Dim(fmt.Sprintf("(%d bytes)", r.Size)))
				switch {
				case r.Contents == nil:
					fmt.Println(ui.Dim("contents not captured"))
				case r.IsBinary():
					fmt.Println(ui.Dim("binary contents"))
				default:
					if r.Lossy {
						fmt.Println(ui.WarningMessage("only the last line was captured"))
					}
					fmt.Print(r.Text())
				}
			}
			return nil
		},
	}
}

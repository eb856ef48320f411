package main

import (
	"bytes"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/utkarsh5026/gitgo/cmd/ui"
	"github.com/utkarsh5026/gitgo/pkg/artifacts"
	"github.com/utkarsh5026/gitgo/pkg/common/fileops"
)

func newExportCmd(flags *globalFlags) *cobra.Command {
	var (
		output   string
		compress bool
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a JSON snapshot of the object graph",
		Long: `Load the object graph and write it as one JSON document. Blob
contents are left out. With --zstd the document is zstd compressed.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			p, _, err := loadGraph(ctx, flags, output != "")
			if err != nil {
				return err
			}
			defer p.Close()

			snap, err := artifacts.TakeSnapshot(ctx, p.Store(), p.Repository().WorkDir)
			if err != nil {
				return err
			}

			if output == "" || output == "-" {
				return artifacts.Encode(cmd.OutOrStdout(), snap, compress)
			}

			if err := writeSnapshot(output, snap, compress); err != nil {
				return err
			}
			fmt.Println(ui.SuccessMessage("Exported", output))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to a file instead of stdout")
	cmd.Flags().BoolVar(&compress, "zstd", false, "Compress the snapshot with zstd")
	return cmd
}

func writeSnapshot(path string, snap *artifacts.Snapshot, compress bool) error {
	var buf bytes.Buffer
	if err := artifacts.Encode(&buf, snap, compress); err != nil {
		return err
	}
	return fileops.AtomicWrite(path, buf.Bytes(), 0o644)
}

package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/utkarsh5026/gitgo/cmd/ui"
	"github.com/utkarsh5026/gitgo/pkg/refs/branch"
)

func newBranchesCmd(flags *globalFlags) *cobra.Command {
	var (
		remote  bool
		current bool
	)

	cmd := &cobra.Command{
		Use:   "branches",
		Short: "List, create, rename and delete branches",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			p, _, err := openPipeline(ctx, flags, nil)
			if err != nil {
				return err
			}
			defer p.Close()

			if current {
				name, err := p.BranchManager().Current(ctx)
				var detached *branch.DetachedHeadError
				if errors.As(err, &detached) {
					fmt.Fprintln(cmd.OutOrStdout(), "(detached "+detached.CommitSHA+")")
					return nil
				}
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), name)
				return nil
			}

			change, err := p.Branches(ctx)
			if err != nil {
				return err
			}

			fmt.Println(ui.FormatBranches("Local branches", change.Local))
			if remote {
				fmt.Println()
				fmt.Println(ui.FormatBranches("Remote branches", change.Remote))
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&remote, "remote", "r", false, "Also list remote-tracking branches")
	cmd.Flags().BoolVar(&current, "current", false, "Print only the checked out branch")

	cmd.AddCommand(
		newBranchCreateCmd(flags),
		newBranchDeleteCmd(flags),
		newBranchRenameCmd(flags),
	)
	return cmd
}

func newBranchCreateCmd(flags *globalFlags) *cobra.Command {
	var checkout, force bool

	cmd := &cobra.Command{
		Use:   "create <name> [start-point]",
		Short: "Create a branch",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, _, err := openPipeline(ctx, flags, nil)
			if err != nil {
				return err
			}
			defer p.Close()

			var opts []branch.CreateOption
			if len(args) == 2 {
				opts = append(opts, branch.WithStartPoint(args[1]))
			}
			if checkout {
				opts = append(opts, branch.WithCheckout())
			}
			if force {
				opts = append(opts, branch.WithForceCreate())
			}

			if err := p.BranchManager().Create(ctx, args[0], opts...); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.SuccessMessage("Created", args[0]))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&checkout, "checkout", "c", false, "Check out the new branch")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Reset the branch if it already exists")
	return cmd
}

func newBranchDeleteCmd(flags *globalFlags) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a local branch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, _, err := openPipeline(ctx, flags, nil)
			if err != nil {
				return err
			}
			defer p.Close()

			var opts []branch.DeleteOption
			if force {
				opts = append(opts, branch.WithForceDelete())
			}
			if err := p.BranchManager().Delete(ctx, args[0], opts...); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.SuccessMessage("Deleted", args[0]))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Delete even if not fully merged")
	return cmd
}

func newBranchRenameCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <old> <new>",
		Short: "Rename a local branch",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, _, err := openPipeline(ctx, flags, nil)
			if err != nil {
				return err
			}
			defer p.Close()

			if err := p.BranchManager().Rename(ctx, args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.SuccessMessage("Renamed", args[0]+" -> "+args[1]))
			return nil
		},
	}
}

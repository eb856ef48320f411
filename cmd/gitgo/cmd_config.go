package main

import (
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/utkarsh5026/gitgo/cmd/ui"
	"github.com/utkarsh5026/gitgo/pkg/config"
)

func newConfigCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Read and write gitgo configuration",
		Long: `Configuration is read from, in order of precedence: --config flags,
<repo>/.gitgo.yaml, the user config file, the system config file and the
builtin defaults.`,
	}

	cmd.AddCommand(
		newConfigGetCmd(flags),
		newConfigSetCmd(flags),
		newConfigUnsetCmd(flags),
		newConfigListCmd(flags),
		newConfigExportCmd(flags),
	)
	return cmd
}

func newConfigGetCmd(flags *globalFlags) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "get <key>",
		Short: "Print the effective value of a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := loadConfig(cmd.Context(), flags)
			if err != nil {
				return err
			}

			if all {
				for _, entry := range mgr.GetAll(args[0]) {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", entry.Value, entry.Level)
				}
				return nil
			}

			entry := mgr.Get(args[0])
			if entry == nil {
				return fmt.Errorf("key %q is not set", args[0])
			}
			fmt.Fprintln(cmd.OutOrStdout(), entry.Value)
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Print every value with its level, highest precedence first")
	return cmd
}

func newConfigSetCmd(flags *globalFlags) *cobra.Command {
	var level string

	cmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Write a value to a configuration file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := loadConfig(cmd.Context(), flags)
			if err != nil {
				return err
			}
			lvl, err := config.ParseLevel(level)
			if err != nil {
				return err
			}
			if err := mgr.Set(args[0], args[1], lvl); err != nil {
				return err
			}
			fmt.Println(ui.SuccessMessage("Set", fmt.Sprintf("%s = %s (%s)", args[0], args[1], lvl)))
			return nil
		},
	}

	cmd.Flags().StringVar(&level, "level", config.RepositoryLevel.String(), "File to write (repository, user, system)")
	return cmd
}

func newConfigUnsetCmd(flags *globalFlags) *cobra.Command {
	var level string

	cmd := &cobra.Command{
		Use:   "unset <key>",
		Short: "Remove a key from a configuration file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := loadConfig(cmd.Context(), flags)
			if err != nil {
				return err
			}
			lvl, err := config.ParseLevel(level)
			if err != nil {
				return err
			}
			if err := mgr.Unset(args[0], lvl); err != nil {
				return err
			}
			fmt.Println(ui.SuccessMessage("Unset", args[0]))
			return nil
		},
	}

	cmd.Flags().StringVar(&level, "level", config.RepositoryLevel.String(), "File to write (repository, user, system)")
	return cmd
}

func newConfigListCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every effective key with its origin",
		RunE: func(cmd *cobra.Command, _ []string) error {
			mgr, err := loadConfig(cmd.Context(), flags)
			if err != nil {
				return err
			}

			table := tablewriter.NewWriter(os.Stdout)
			table.Header("Key", "Value", "Level", "Source")
			for _, entry := range mgr.List() {
				table.Append(ui.Cyan(entry.Key), entry.Value, entry.Level.String(), ui.Dim(entry.Source.String()))
			}
			table.Render()
			return nil
		},
	}
}

func newConfigExportCmd(flags *globalFlags) *cobra.Command {
	var level string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Print configuration as YAML",
		RunE: func(cmd *cobra.Command, _ []string) error {
			mgr, err := loadConfig(cmd.Context(), flags)
			if err != nil {
				return err
			}

			var lvl *config.ConfigLevel
			if level != "" {
				parsed, err := config.ParseLevel(level)
				if err != nil {
					return err
				}
				lvl = &parsed
			}

			out, err := mgr.Export(lvl)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	}

	cmd.Flags().StringVar(&level, "level", "", "Export one file instead of the effective configuration")
	return cmd
}

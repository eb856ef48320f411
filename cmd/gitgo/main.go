package main

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

var (
	Version   = "0.1.0-dev"
	BuildTime = "unknown"
	CommitSHA = "unknown"
)

// globalFlags are the persistent flags shared by every command.
type globalFlags struct {
	repo      string
	logLevel  string
	logFormat string
	verbose   bool
	overrides []string
}

func main() {
	rootCmd := newRootCmd()
	if err := fang.Execute(context.Background(), rootCmd, fang.WithVersion(buildVersion())); err != nil {
		os.Exit(1)
	}
}

func buildVersion() string {
	if BuildTime == "unknown" && CommitSHA == "unknown" {
		return Version
	}
	return fmt.Sprintf("%s (built: %s, commit: %s)", Version, BuildTime, CommitSHA)
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "gitgo",
		Short: "Inspect and watch a git object database",
		Long: `gitgo enumerates every commit, tree and blob of a git repository,
parses them concurrently into an in-memory graph and keeps that graph
current as the repository changes.

Get started with: gitgo objects
Watch changes:    gitgo watch
Serve over MCP:   gitgo serve`,
		Version:       buildVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flags.repo, "repo", "C", ".", "Path to the repository")
	pf.StringVar(&flags.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	pf.StringVar(&flags.logFormat, "log-format", "", "Log format (text, json)")
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "Enable verbose output (sets log level to debug)")
	pf.StringArrayVarP(&flags.overrides, "config", "c", nil, "Override a configuration value (key=value)")

	rootCmd.AddCommand(
		newObjectsCmd(flags),
		newShowCmd(flags),
		newHistoryCmd(flags),
		newBranchesCmd(flags),
		newWatchCmd(flags),
		newOpCmd(flags),
		newExportCmd(flags),
		newServeCmd(flags),
		newConfigCmd(flags),
	)

	return rootCmd
}

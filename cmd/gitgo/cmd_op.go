package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/utkarsh5026/gitgo/pkg/actions"
	"github.com/utkarsh5026/gitgo/pkg/common/logger"
	"github.com/utkarsh5026/gitgo/pkg/gitexec"
	"github.com/utkarsh5026/gitgo/pkg/repository"
)

func newOpCmd(flags *globalFlags) *cobra.Command {
	var list bool

	cmd := &cobra.Command{
		Use:   "op [message]",
		Short: "Run one host action and print its JSON response",
		Long: `Run one host action message such as {"type":"getLocalBranches"} and
print the response. Without an argument the message is read from stdin.
Failures are reported as a response of type "error".`,
		Example: `  gitgo op '{"type":"stageFiles","all":true}'
  echo '{"type":"getCommits","maxCount":10}' | gitgo op`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			settings, err := resolveSettings(ctx, flags)
			if err != nil {
				return err
			}

			runner := gitexec.New(
				gitexec.WithBinary(settings.GitBinary),
				gitexec.WithTimeout(settings.Timeout),
				gitexec.WithLogger(logger.Default),
			)

			// cloneRepo and initRepo target directories that are not yet
			// repositories.
			dir := flags.repo
			if repo, err := repository.Open(flags.repo); err == nil {
				dir = repo.WorkDir
			}

			d := actions.NewDispatcher(runner, dir,
				actions.WithArtifacts(artifactWriter(settings, logger.Default)),
				actions.WithLogger(logger.Default),
			)

			if list {
				fmt.Fprintln(cmd.OutOrStdout(), strings.Join(d.Operations(), "\n"))
				return nil
			}

			var data []byte
			if len(args) == 1 {
				data = []byte(args[0])
			} else if data, err = io.ReadAll(cmd.InOrStdin()); err != nil {
				return err
			}

			resp := d.Handle(ctx, data)
			out, err := json.Marshal(resp)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			if resp.Type == actions.TypeError {
				return fmt.Errorf("%s", resp.Message)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&list, "list", false, "List the supported action types")
	return cmd
}

package cli

import (
	"bytes"

	"github.com/spf13/cobra"

	"github.com/parallax-ledger/parallax/internal/render"
)

// NewGraphCommand creates the graph command.
func NewGraphCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "graph <scenario.yaml>",
		Short:         "Print a scenario's ledger as a Graphviz digraph",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGraph(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runGraph(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	built, err := loadAndBuild(path)
	if err != nil {
		formatter.Error(ErrCodeScenario, err.Error(), nil)
		return WrapExitError(ExitCommandError, "invalid scenario", err)
	}

	var buf bytes.Buffer
	if err := render.Graph(&buf, built.Chain); err != nil {
		return WrapExitError(ExitFailure, "graph failed", err)
	}

	if opts.Format == "json" {
		return formatter.Success(map[string]any{"dot": buf.String()})
	}
	_, err = cmd.OutOrStdout().Write(buf.Bytes())
	return err
}

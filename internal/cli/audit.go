package cli

import (
	"bytes"

	"github.com/spf13/cobra"

	"github.com/parallax-ledger/parallax/internal/render"
)

// NewAuditCommand creates the audit command.
func NewAuditCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "audit <scenario.yaml>",
		Short:         "Print a per-namespace listing of a scenario's ledger",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAudit(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runAudit(opts *RootOptions, path string, cmd *cobra.Command) error {
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
	if err := render.Audit(&buf, built.Chain); err != nil {
		return WrapExitError(ExitFailure, "audit failed", err)
	}

	if opts.Format == "json" {
		return formatter.Success(map[string]any{"audit": buf.String()})
	}
	_, err = cmd.OutOrStdout().Write(buf.Bytes())
	return err
}

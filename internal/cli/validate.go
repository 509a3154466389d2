package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/parallax-ledger/parallax/internal/schema"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <scenario.yaml>",
		Short: "Validate a scenario document without running it",
		Long: `Validate a scenario document without running it.

Checks the document against the scenario schema and resolves overlay
selectors against the declared cells. Faster than simulate for
authoring feedback.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	doc, err := schema.LoadFile(path)
	if err != nil {
		formatter.Error(ErrCodeScenario, err.Error(), nil)
		return WrapExitError(ExitFailure, "validation failed", err)
	}

	// Selector resolution catches overrides naming cells that do not
	// exist, which the schema alone cannot see.
	built, err := schema.Build(doc)
	if err != nil {
		formatter.Error(ErrCodeScenario, err.Error(), nil)
		return WrapExitError(ExitFailure, "validation failed", err)
	}

	if opts.Format == "json" {
		return formatter.Success(map[string]any{
			"valid":  true,
			"ledger": doc.Ledger,
			"cells":  built.Chain.Len(),
		})
	}
	return formatter.Success(fmt.Sprintf("%s: valid (%d cells)", path, built.Chain.Len()))
}

package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/parallax-ledger/parallax/internal/ledger"
	"github.com/parallax-ledger/parallax/internal/store"
)

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:           "show <cell-id>",
		Short:         "Look up a persisted cell by content address",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(rootOpts, args[0], dbPath, cmd)
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", "parallax.db", "database path")
	return cmd
}

func runShow(opts *RootOptions, id, dbPath string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	s, err := store.Open(dbPath)
	if err != nil {
		formatter.Error(ErrCodeStore, err.Error(), nil)
		return WrapExitError(ExitCommandError, "open store", err)
	}
	defer s.Close()

	cell, err := s.LookupCell(cmd.Context(), id)
	if err != nil {
		formatter.Error(ErrCodeStore, err.Error(), nil)
		return WrapExitError(ExitFailure, "lookup", err)
	}
	if cell == nil {
		formatter.Error(ErrCodeStore, fmt.Sprintf("cell %s not found", id), nil)
		return NewExitError(ExitCommandError, "cell not found")
	}

	payload, err := ledger.MarshalCanonical(cell.Payload().FullValue())
	if err != nil {
		return WrapExitError(ExitFailure, "marshal payload", err)
	}

	h := cell.Header()
	if opts.Format == "json" {
		data := map[string]any{
			"id":             cell.ID(),
			"cell_type":      h.Type,
			"schema_version": h.SchemaVersion,
			"ts":             h.Timestamp,
			"prev":           h.Prev,
			"payload":        string(payload),
		}
		if p := cell.Proof(); p != nil {
			data["proof"] = p
		}
		return formatter.Success(data)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "cell %s\n", cell.ID())
	fmt.Fprintf(&b, "  type    %s (schema v%d)\n", h.Type, h.SchemaVersion)
	fmt.Fprintf(&b, "  ts      %d\n", h.Timestamp)
	fmt.Fprintf(&b, "  prev    %s\n", h.Prev)
	fmt.Fprintf(&b, "  payload %s", payload)
	if p := cell.Proof(); p != nil {
		fmt.Fprintf(&b, "\n  signer  %s", p.Signer)
	}
	return formatter.Success(b.String())
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/parallax-ledger/parallax/internal/store"
)

// NewSaveCommand creates the save command.
func NewSaveCommand(rootOpts *RootOptions) *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "save <scenario.yaml>",
		Short: "Persist a scenario's ledger to a SQLite database",
		Long: `Persist a scenario's ledger to a SQLite database.

Cells are written in chain order as canonical JSON. Saving is
idempotent: cells already present are skipped by content address.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSave(rootOpts, args[0], dbPath, cmd)
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", "parallax.db", "database path")
	return cmd
}

func runSave(opts *RootOptions, path, dbPath string, cmd *cobra.Command) error {
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

	s, err := store.Open(dbPath)
	if err != nil {
		formatter.Error(ErrCodeStore, err.Error(), nil)
		return WrapExitError(ExitCommandError, "open store", err)
	}
	defer s.Close()

	if err := s.SaveChain(cmd.Context(), built.Chain); err != nil {
		formatter.Error(ErrCodeStore, err.Error(), nil)
		return WrapExitError(ExitFailure, "save chain", err)
	}

	if opts.Format == "json" {
		return formatter.Success(map[string]any{
			"db":    dbPath,
			"cells": built.Chain.Len(),
			"head":  built.Chain.HeadID(),
		})
	}
	return formatter.Success(fmt.Sprintf("saved %d cells to %s (head %s)",
		built.Chain.Len(), dbPath, shortID(built.Chain.HeadID())))
}

// NewVerifyCommand creates the verify command.
func NewVerifyCommand(rootOpts *RootOptions) *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Replay a persisted ledger and verify its integrity",
		Long: `Replay a persisted ledger and verify its integrity.

Every cell is rebuilt from stored bytes; content addresses and
predecessor links are recomputed and compared. Any divergence fails
the command.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(rootOpts, dbPath, cmd)
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", "parallax.db", "database path")
	return cmd
}

func runVerify(opts *RootOptions, dbPath string, cmd *cobra.Command) error {
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

	chain, err := s.LoadChain(cmd.Context())
	if err != nil {
		formatter.Error(ErrCodeStore, err.Error(), nil)
		return WrapExitError(ExitFailure, "replay failed", err)
	}

	if opts.Format == "json" {
		return formatter.Success(map[string]any{
			"db":    dbPath,
			"cells": chain.Len(),
			"head":  chain.HeadID(),
		})
	}
	return formatter.Success(fmt.Sprintf("%s: %d cells verified (head %s)",
		dbPath, chain.Len(), shortID(chain.HeadID())))
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/parallax-ledger/parallax/internal/ledger"
	"github.com/parallax-ledger/parallax/internal/store"
)

// NewAppendCommand creates the append command.
func NewAppendCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		dbPath     string
		ledgerName string
		namespace  string
		subject    string
		predicate  string
		object     string
		confidence int64
		validFrom  int64
		validTo    int64
	)

	cmd := &cobra.Command{
		Use:   "append",
		Short: "Append a fact cell to a persisted ledger",
		Long: `Append a fact cell to a persisted ledger.

Replays the stored chain, links the new cell to its head, and writes
the cell back. An empty database is initialized with a genesis cell
first. Correcting a fact means appending a new cell for the same
subject and predicate; nothing is ever rewritten.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := &OutputFormatter{
				Format:    rootOpts.Format,
				Writer:    cmd.OutOrStdout(),
				ErrWriter: cmd.ErrOrStderr(),
				Verbose:   rootOpts.Verbose,
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

			clock := ledger.NewClockAt(headTimestamp(chain))
			if chain.Len() == 0 {
				genesis, err := ledger.NewCell(ledger.Header{
					SchemaVersion: ledger.CurrentSchemaVersion,
					Type:          ledger.CellGenesis,
					Timestamp:     clock.Next(),
				}, ledger.GenesisPayload{Ledger: ledgerName}, nil)
				if err != nil {
					return WrapExitError(ExitFailure, "genesis", err)
				}
				if err := chain.Append(genesis); err != nil {
					return WrapExitError(ExitFailure, "genesis", err)
				}
			}

			fact := ledger.FactPayload{
				Namespace:  namespace,
				Subject:    subject,
				Predicate:  predicate,
				Object:     object,
				Confidence: confidence,
				ValidFrom:  validFrom,
				ValidTo:    validTo,
			}
			cell, err := ledger.NewCell(ledger.Header{
				SchemaVersion: ledger.CurrentSchemaVersion,
				Type:          ledger.CellFact,
				Timestamp:     clock.Next(),
				Prev:          chain.HeadID(),
			}, fact, nil)
			if err != nil {
				formatter.Error(ErrCodeScenario, err.Error(), nil)
				return WrapExitError(ExitFailure, "invalid fact", err)
			}
			if err := chain.Append(cell); err != nil {
				formatter.Error(ErrCodeStore, err.Error(), nil)
				return WrapExitError(ExitFailure, "append", err)
			}

			if err := s.SaveChain(cmd.Context(), chain); err != nil {
				formatter.Error(ErrCodeStore, err.Error(), nil)
				return WrapExitError(ExitFailure, "save", err)
			}

			if rootOpts.Format == "json" {
				return formatter.Success(map[string]any{
					"cell_id": cell.ID(),
					"ts":      cell.Header().Timestamp,
					"cells":   chain.Len(),
				})
			}
			return formatter.Success(fmt.Sprintf("appended %s (ts=%d, %d cells)",
				shortID(cell.ID()), cell.Header().Timestamp, chain.Len()))
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "parallax.db", "database path")
	cmd.Flags().StringVar(&ledgerName, "ledger", "core", "ledger name for a new database")
	cmd.Flags().StringVar(&namespace, "namespace", "", "fact namespace")
	cmd.Flags().StringVar(&subject, "subject", "", "fact subject")
	cmd.Flags().StringVar(&predicate, "predicate", "", "fact predicate")
	cmd.Flags().StringVar(&object, "object", "", "fact object")
	cmd.Flags().Int64Var(&confidence, "confidence", ledger.MaxConfidence, "confidence in basis points")
	cmd.Flags().Int64Var(&validFrom, "valid-from", 0, "valid-time interval start")
	cmd.Flags().Int64Var(&validTo, "valid-to", 0, "valid-time interval end (0 = open)")
	cmd.MarkFlagRequired("namespace")
	cmd.MarkFlagRequired("subject")
	cmd.MarkFlagRequired("predicate")
	cmd.MarkFlagRequired("object")

	return cmd
}

// headTimestamp returns the record timestamp of the chain head, or 0 for
// an empty chain.
func headTimestamp(chain *ledger.Chain) int64 {
	head := chain.Head()
	if head == nil {
		return 0
	}
	return head.Header().Timestamp
}

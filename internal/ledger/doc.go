// Package ledger provides the Cell and Chain primitives for the Parallax
// decision ledger.
//
// This package is the foundational layer: every other internal package
// imports ledger; ledger imports nothing internal.
//
// Key design constraints:
//   - NO float types anywhere - confidence is int64 basis points
//   - Identifiers are derived from canonical content, never assigned
//   - Logical timestamps only, never wall-clock time
//   - Append is the only mutating operation on a Chain
package ledger

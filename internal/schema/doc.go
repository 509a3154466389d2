// Package schema loads and validates scenario documents.
//
// A scenario document is a YAML description of a complete simulation: the
// cells of a base ledger, an authorization request, the frozen time pair,
// and an optional counterfactual overlay. Documents are validated against
// an embedded CUE schema before any cell is constructed, so malformed
// input fails with a position-carrying error instead of a half-built
// chain.
package schema

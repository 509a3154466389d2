// Package engine orchestrates counterfactual simulations against a base
// chain.
//
// The pipeline is strictly sequential: validate request, capture the base
// head, query base reality, build the overlay, open a session, query
// shadow reality at the same frozen time pair, close the session,
// re-capture the head and attest, compute the delta, and assemble an
// immutable result.
//
// Error taxonomy:
//   - validation errors surface immediately, nothing is queried
//   - integrity errors are fatal and leave the chain unchanged
//   - reference errors (an override naming a missing base cell) are
//     recovered by skipping that one override
//   - contamination violations are fatal, loudly surfaced, and never
//     swallowed
package engine

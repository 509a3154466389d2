// Package session provides the scoped execution context for one
// counterfactual simulation.
//
// A session forks the base chain into a structurally independent shadow
// chain, merges the overlay context into it in a fixed order, and binds a
// query engine to the result. The session never holds a mutable reference
// to the base chain's containers, so nothing inside it can write to base
// state - isolation is structural, not a runtime check.
//
// Teardown runs exactly once, on every exit path; callers defer Close.
package session

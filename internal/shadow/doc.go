// Package shadow produces counterfactual variants of ledger cells and
// indexes them for precedence during a simulation.
//
// A shadow cell is an ordinary cell: it carries no back-reference to its
// base. Relationship to the base is equality of everything that was not
// overridden; provenance is tracked externally by the overlay context and
// origin-tagged result bundles.
package shadow

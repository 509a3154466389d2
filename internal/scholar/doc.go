// Package scholar resolves facts, rules, policy snapshots, and bridges
// against a chain as of two independent time axes: when a fact is true in
// the world (valid time) and when it was recorded in the ledger (system
// time).
//
// A Scholar is bound to exactly one chain and never mutates it. Later
// chain positions win when two visible cells share a key, which is what
// gives shadow cells (appended after every base cell in a forked chain)
// deterministic precedence over their bases.
package scholar

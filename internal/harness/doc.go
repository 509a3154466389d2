// Package harness runs end-to-end simulation scenarios described in YAML
// and checks their results against declarative assertions and golden
// files. Scenarios validate whole-system behavior: chain construction,
// the bitemporal query, shadow derivation, and the delta report, in one
// pass.
package harness

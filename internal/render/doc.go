// Package render produces human-readable views of a chain: a per-namespace
// audit listing and a Graphviz DOT rendering of the cell linkage. Both are
// deterministic for a given chain so output can be golden-tested.
package render

// Package report compares base-reality and shadow-reality query results
// and attests that the base chain survived a simulation unmutated.
//
// Everything here is a value: reports and attestations are built once and
// never modified, and origin tagging always returns a deep copy.
package report

// Package dataset loads the visit dataset from Excel or CSV into an
// ordered table of raw string cells and maps arbitrary column names to
// the semantic roles the pipeline needs.
//
// The mapper only assigns columns; it never checks that a column's
// content matches the expected type. Type mismatches surface later as
// missing values during normalization, so a wrong mapping degrades the
// run instead of failing it.
package dataset

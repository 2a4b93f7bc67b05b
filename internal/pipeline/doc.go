// Package pipeline turns a raw mapped table into normalized visit
// records and aggregates them into the weekly, department, and doctor
// compliance views plus the top-level KPIs.
//
// Every run is a pure recomputation: a Params value goes in, tables
// come out, and nothing is cached or mutated between runs. Malformed
// cells become missing values rather than errors, so a single bad row
// never blocks the rest of the dataset.
package pipeline

// Package exporter serializes the aggregate views to delimited text
// and assembles the four-slide summary deck. No computation happens
// here: everything is rendered from already-aggregated snapshot data.
package exporter

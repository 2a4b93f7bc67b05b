package exporter

import (
	"strconv"
	"time"
)

// formatPct emits a percentage as a plain decimal number so downstream
// tools can re-parse it. The shortest exact representation is used;
// display rounding is the consumer's job.
func formatPct(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// formatPctCell is formatPct with an empty cell for undefined values
// (groups with no evaluable visits).
func formatPctCell(v float64, evaluated int) string {
	if evaluated == 0 {
		return ""
	}
	return formatPct(v)
}

// formatDate formats a date column cell.
func formatDate(t time.Time) string {
	return t.Format("2006-01-02")
}

// formatDatePtr formats an optional date, empty when absent.
func formatDatePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return formatDate(*t)
}

// formatIntPtr formats an optional integer, empty when absent.
func formatIntPtr(i *int) string {
	if i == nil {
		return ""
	}
	return strconv.Itoa(*i)
}

package dataset

import (
	"fmt"
	"strings"
)

// WaitingMode selects how waiting time is derived during normalization.
type WaitingMode string

const (
	// WaitingModeDirect reads waiting minutes from a numeric column.
	WaitingModeDirect WaitingMode = "direct"
	// WaitingModeTimeDiff derives waiting minutes as seen − arrival.
	WaitingModeTimeDiff WaitingMode = "timediff"
)

// Mapping assigns dataset column names to the semantic roles the
// pipeline consumes. LicenseExpiry is optional; when empty the entire
// licensing-risk column degrades to Unknown.
type Mapping struct {
	VisitDate      string `json:"visit_date"`
	Department     string `json:"department"`
	Doctor         string `json:"doctor"`
	WaitingMinutes string `json:"waiting_minutes,omitempty"`
	ArrivalTime    string `json:"arrival_time,omitempty"`
	SeenTime       string `json:"seen_time,omitempty"`
	LicenseExpiry  string `json:"license_expiry,omitempty"`
}

// Suggest proposes a mapping for the given header, picking the first
// column whose name contains a role-specific keyword and falling back
// to the first column when nothing matches. The suggestion is only a
// starting point; callers may override any assignment.
func Suggest(columns []string) Mapping {
	return Mapping{
		VisitDate:      firstMatch(columns, true, "date"),
		Department:     firstMatch(columns, true, "dept", "department"),
		Doctor:         firstMatch(columns, true, "doctor"),
		WaitingMinutes: firstMatchAll(columns, "wait", "min"),
		ArrivalTime:    firstMatch(columns, true, "arrival", "check"),
		SeenTime:       firstMatch(columns, true, "seen", "start"),
		LicenseExpiry:  firstMatch(columns, false, "licen", "expir"),
	}
}

// Merge overlays non-empty override fields onto the mapping.
func (m Mapping) Merge(override Mapping) Mapping {
	if override.VisitDate != "" {
		m.VisitDate = override.VisitDate
	}
	if override.Department != "" {
		m.Department = override.Department
	}
	if override.Doctor != "" {
		m.Doctor = override.Doctor
	}
	if override.WaitingMinutes != "" {
		m.WaitingMinutes = override.WaitingMinutes
	}
	if override.ArrivalTime != "" {
		m.ArrivalTime = override.ArrivalTime
	}
	if override.SeenTime != "" {
		m.SeenTime = override.SeenTime
	}
	if override.LicenseExpiry != "" {
		m.LicenseExpiry = override.LicenseExpiry
	}
	return m
}

// Validate checks that every role the selected waiting mode needs is
// assigned to a column that exists in the table. Content of the mapped
// columns is not checked; mismatches degrade to missing values during
// normalization.
func (m Mapping) Validate(t *Table, mode WaitingMode) error {
	required := map[string]string{
		"visit_date": m.VisitDate,
		"department": m.Department,
		"doctor":     m.Doctor,
	}
	switch mode {
	case WaitingModeDirect:
		required["waiting_minutes"] = m.WaitingMinutes
	case WaitingModeTimeDiff:
		required["arrival_time"] = m.ArrivalTime
		required["seen_time"] = m.SeenTime
	default:
		return fmt.Errorf("unknown waiting mode %q", mode)
	}

	for role, col := range required {
		if col == "" {
			return fmt.Errorf("no column mapped for role %s", role)
		}
		if t.ColumnIndex(col) < 0 {
			return fmt.Errorf("column %q mapped for role %s not found in dataset", col, role)
		}
	}

	if m.LicenseExpiry != "" && t.ColumnIndex(m.LicenseExpiry) < 0 {
		return fmt.Errorf("column %q mapped for role license_expiry not found in dataset", m.LicenseExpiry)
	}
	return nil
}

// firstMatch returns the first column containing any of the keywords.
// When fallback is true and nothing matches, the first column is
// returned; otherwise the role stays unassigned.
func firstMatch(columns []string, fallback bool, keywords ...string) string {
	for _, col := range columns {
		lower := strings.ToLower(col)
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				return col
			}
		}
	}
	if fallback && len(columns) > 0 {
		return columns[0]
	}
	return ""
}

// firstMatchAll returns the first column containing all keywords, with
// the same first-column fallback as firstMatch.
func firstMatchAll(columns []string, keywords ...string) string {
	for _, col := range columns {
		lower := strings.ToLower(col)
		all := true
		for _, kw := range keywords {
			if !strings.Contains(lower, kw) {
				all = false
				break
			}
		}
		if all {
			return col
		}
	}
	if len(columns) > 0 {
		return columns[0]
	}
	return ""
}

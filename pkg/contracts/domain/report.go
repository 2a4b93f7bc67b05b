package domain

import (
	"time"
)

// RiskLevel classifies a doctor's licensing status relative to the
// configured alert window.
type RiskLevel string

const (
	RiskUnknown      RiskLevel = "Unknown"
	RiskExpired      RiskLevel = "Expired"
	RiskExpiringSoon RiskLevel = "Expiring Soon"
	RiskOK           RiskLevel = "OK"
)

// Rank returns the fixed sort order for risk levels. Risky states sort
// before OK regardless of their labels.
func (r RiskLevel) Rank() int {
	switch r {
	case RiskUnknown:
		return 0
	case RiskExpired:
		return 1
	case RiskExpiringSoon:
		return 2
	case RiskOK:
		return 3
	default:
		return 4
	}
}

// AtRisk reports whether the level should appear on the licensing-risk
// slide of the summary deck.
func (r RiskLevel) AtRisk() bool {
	return r == RiskExpired || r == RiskExpiringSoon
}

// TrafficLight is the department indicator relative to the threshold.
type TrafficLight string

const (
	LightGreen TrafficLight = "green"
	LightRed   TrafficLight = "red"
	// LightNone is used when the department has no evaluable visits and
	// the compliance percentage is undefined.
	LightNone TrafficLight = "none"
)

// WeeklyCompliance is one row of the weekly view. CompliancePct is only
// meaningful when Evaluated > 0.
type WeeklyCompliance struct {
	WeekStart     time.Time `json:"week_start"`
	Visits        int       `json:"visits"`
	Evaluated     int       `json:"evaluated"`
	CompliancePct float64   `json:"compliance_pct"`
}

// DepartmentPerformance is one row of the per-department view.
type DepartmentPerformance struct {
	Department    string       `json:"department"`
	Visits        int          `json:"visits"`
	Evaluated     int          `json:"evaluated"`
	CompliancePct float64      `json:"compliance_pct"`
	Indicator     TrafficLight `json:"indicator"`
}

// DoctorSummary is one row of the per-doctor view. LicenseExpiry is the
// maximum expiry date observed across the doctor's visits.
type DoctorSummary struct {
	Doctor        string     `json:"doctor"`
	Visits        int        `json:"visits"`
	Evaluated     int        `json:"evaluated"`
	CompliancePct float64    `json:"compliance_pct"`
	LicenseExpiry *time.Time `json:"license_expiry,omitempty"`
	DaysToExpiry  *int       `json:"days_to_expiry,omitempty"`
	Risk          RiskLevel  `json:"risk"`
}

// Summary holds the top-level KPIs derived once per run. Best and worst
// department are "-" when no department has evaluable visits.
type Summary struct {
	TotalVisits       int     `json:"total_visits"`
	EvaluatedVisits   int     `json:"evaluated_visits"`
	NoncompliantPct   float64 `json:"noncompliant_pct"`
	BestDepartment    string  `json:"best_department"`
	BestPct           float64 `json:"best_pct"`
	WorstDepartment   string  `json:"worst_department"`
	WorstPct          float64 `json:"worst_pct"`
	ExpiredCount      int     `json:"expired_count"`
	ExpiringSoonCount int     `json:"expiring_soon_count"`
}

// Snapshot is the result of one pipeline run. It is immutable once
// built; every refresh produces a new snapshot from scratch.
type Snapshot struct {
	RunID       string                  `json:"run_id"`
	GeneratedAt time.Time               `json:"generated_at"`
	Summary     Summary                 `json:"summary"`
	Weekly      []WeeklyCompliance      `json:"weekly"`
	Departments []DepartmentPerformance `json:"departments"`
	Doctors     []DoctorSummary         `json:"doctors"`
}

// AtRiskDoctors returns the doctors that belong on the risk slide, in
// table order.
func (s *Snapshot) AtRiskDoctors() []DoctorSummary {
	var out []DoctorSummary
	for _, d := range s.Doctors {
		if d.Risk.AtRisk() {
			out = append(out, d)
		}
	}
	return out
}

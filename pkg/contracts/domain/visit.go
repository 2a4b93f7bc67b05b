package domain

import (
	"time"
)

// Visit represents a single patient visit after normalization.
// WaitingMinutes and LicenseExpiry are nil when the source cell was
// missing or could not be parsed; VisitDate is always valid because
// rows without a parsable visit date are dropped before this type is
// constructed.
type Visit struct {
	VisitDate      time.Time  `json:"visit_date"`
	WeekStart      time.Time  `json:"week_start"`
	Department     string     `json:"department"`
	Doctor         string     `json:"doctor"`
	WaitingMinutes *float64   `json:"waiting_minutes,omitempty"`
	LicenseExpiry  *time.Time `json:"license_expiry,omitempty"`
}

// HasWaiting reports whether the waiting time is known for this visit.
func (v Visit) HasWaiting() bool {
	return v.WaitingMinutes != nil
}

// Compliant reports whether the visit met the target. The second return
// value is false when the waiting time is unknown and the comparison
// cannot be evaluated.
func (v Visit) Compliant(targetMinutes float64) (bool, bool) {
	if v.WaitingMinutes == nil {
		return false, false
	}
	return *v.WaitingMinutes <= targetMinutes, true
}

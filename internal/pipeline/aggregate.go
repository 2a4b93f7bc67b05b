package pipeline

import (
	"sort"
	"time"

	"clinicpulse/pkg/contracts/domain"
)

// Result holds the three aggregate views and the KPIs of one run.
type Result struct {
	Weekly      []domain.WeeklyCompliance
	Departments []domain.DepartmentPerformance
	Doctors     []domain.DoctorSummary
	Summary     domain.Summary
}

// counter accumulates compliance counts for one group.
type counter struct {
	visits    int
	evaluated int
	compliant int
}

func (c *counter) add(v domain.Visit, p Params) {
	c.visits++
	ok, known := v.Compliant(float64(p.TargetMinutes))
	if known {
		c.evaluated++
		if ok {
			c.compliant++
		}
	} else if p.CountMissingAsNoncompliant {
		c.evaluated++
	}
}

func (c *counter) pct() float64 {
	if c.evaluated == 0 {
		return 0
	}
	return 100 * float64(c.compliant) / float64(c.evaluated)
}

// ClassifyRisk maps days-to-expiry onto a risk level. It is a pure
// function of its inputs: changing the alert window relabels doctors
// but never changes their days-to-expiry.
func ClassifyRisk(daysToExpiry *int, alertDays int) domain.RiskLevel {
	switch {
	case daysToExpiry == nil:
		return domain.RiskUnknown
	case *daysToExpiry < 0:
		return domain.RiskExpired
	case *daysToExpiry <= alertDays:
		return domain.RiskExpiringSoon
	default:
		return domain.RiskOK
	}
}

// DaysToExpiry returns the whole days between midnight of now and
// midnight of the expiry date. Negative when the license has expired.
func DaysToExpiry(expiry, now time.Time) int {
	e := time.Date(expiry.Year(), expiry.Month(), expiry.Day(), 0, 0, 0, 0, time.UTC)
	n := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return int(e.Sub(n).Hours() / 24)
}

// Aggregate computes the three views and the KPIs from normalized
// visit records. All ordering is deterministic: weekly chronological,
// departments by compliance descending then name, doctors by risk
// rank then compliance descending then name.
func Aggregate(visits []domain.Visit, p Params, now time.Time) Result {
	weekly := aggregateWeekly(visits, p)
	departments := aggregateDepartments(visits, p)
	doctors := aggregateDoctors(visits, p, now)

	return Result{
		Weekly:      weekly,
		Departments: departments,
		Doctors:     doctors,
		Summary:     buildSummary(visits, p, departments, doctors),
	}
}

func aggregateWeekly(visits []domain.Visit, p Params) []domain.WeeklyCompliance {
	groups := make(map[time.Time]*counter)
	for _, v := range visits {
		c := groups[v.WeekStart]
		if c == nil {
			c = &counter{}
			groups[v.WeekStart] = c
		}
		c.add(v, p)
	}

	out := make([]domain.WeeklyCompliance, 0, len(groups))
	for week, c := range groups {
		out = append(out, domain.WeeklyCompliance{
			WeekStart:     week,
			Visits:        c.visits,
			Evaluated:     c.evaluated,
			CompliancePct: c.pct(),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].WeekStart.Before(out[j].WeekStart)
	})
	return out
}

func aggregateDepartments(visits []domain.Visit, p Params) []domain.DepartmentPerformance {
	groups := make(map[string]*counter)
	for _, v := range visits {
		c := groups[v.Department]
		if c == nil {
			c = &counter{}
			groups[v.Department] = c
		}
		c.add(v, p)
	}

	out := make([]domain.DepartmentPerformance, 0, len(groups))
	for dept, c := range groups {
		row := domain.DepartmentPerformance{
			Department:    dept,
			Visits:        c.visits,
			Evaluated:     c.evaluated,
			CompliancePct: c.pct(),
			Indicator:     domain.LightNone,
		}
		if c.evaluated > 0 {
			if row.CompliancePct >= float64(p.DeptThreshold) {
				row.Indicator = domain.LightGreen
			} else {
				row.Indicator = domain.LightRed
			}
		}
		out = append(out, row)
	}

	// Compliance descending; departments without evaluable visits sort
	// last; name ascending breaks ties deterministically.
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if (a.Evaluated > 0) != (b.Evaluated > 0) {
			return a.Evaluated > 0
		}
		if a.CompliancePct != b.CompliancePct {
			return a.CompliancePct > b.CompliancePct
		}
		return a.Department < b.Department
	})
	return out
}

type doctorAcc struct {
	counter
	maxExpiry *time.Time
}

func aggregateDoctors(visits []domain.Visit, p Params, now time.Time) []domain.DoctorSummary {
	groups := make(map[string]*doctorAcc)
	for _, v := range visits {
		acc := groups[v.Doctor]
		if acc == nil {
			acc = &doctorAcc{}
			groups[v.Doctor] = acc
		}
		acc.add(v, p)
		// A doctor may appear with repeated or conflicting expiry
		// values; keep the latest.
		if v.LicenseExpiry != nil {
			if acc.maxExpiry == nil || v.LicenseExpiry.After(*acc.maxExpiry) {
				expiry := *v.LicenseExpiry
				acc.maxExpiry = &expiry
			}
		}
	}

	out := make([]domain.DoctorSummary, 0, len(groups))
	for doctor, acc := range groups {
		row := domain.DoctorSummary{
			Doctor:        doctor,
			Visits:        acc.visits,
			Evaluated:     acc.evaluated,
			CompliancePct: acc.pct(),
			LicenseExpiry: acc.maxExpiry,
		}
		if acc.maxExpiry != nil {
			days := DaysToExpiry(*acc.maxExpiry, now)
			row.DaysToExpiry = &days
		}
		row.Risk = ClassifyRisk(row.DaysToExpiry, p.AlertDays)
		out = append(out, row)
	}

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Risk.Rank() != b.Risk.Rank() {
			return a.Risk.Rank() < b.Risk.Rank()
		}
		if a.CompliancePct != b.CompliancePct {
			return a.CompliancePct > b.CompliancePct
		}
		return a.Doctor < b.Doctor
	})
	return out
}

func buildSummary(visits []domain.Visit, p Params, departments []domain.DepartmentPerformance, doctors []domain.DoctorSummary) domain.Summary {
	total := counter{}
	for _, v := range visits {
		total.add(v, p)
	}

	s := domain.Summary{
		TotalVisits:     total.visits,
		EvaluatedVisits: total.evaluated,
		BestDepartment:  "-",
		WorstDepartment: "-",
	}
	if total.evaluated > 0 {
		s.NoncompliantPct = 100 - total.pct()
	}

	// Best and worst are the first and last rows of the sorted table
	// that have evaluable visits. Ties fall to the table's name-order
	// tie-break; that choice is presentation, not contract.
	for _, d := range departments {
		if d.Evaluated == 0 {
			continue
		}
		if s.BestDepartment == "-" {
			s.BestDepartment = d.Department
			s.BestPct = d.CompliancePct
		}
		s.WorstDepartment = d.Department
		s.WorstPct = d.CompliancePct
	}

	for _, d := range doctors {
		switch d.Risk {
		case domain.RiskExpired:
			s.ExpiredCount++
		case domain.RiskExpiringSoon:
			s.ExpiringSoonCount++
		}
	}
	return s
}

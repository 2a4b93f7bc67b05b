package pipeline

import (
	"log/slog"
	"strconv"
	"strings"
	"time"

	"clinicpulse/internal/dataset"
	"clinicpulse/pkg/contracts/domain"
)

// dateLayouts are tried in order when coercing date-like cells. The
// list covers ISO forms plus the formats excelize produces for styled
// date cells and common regional exports.
var dateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02",
	"01-02-06",
	"1/2/06 15:04",
	"01/02/2006 15:04",
	"01/02/2006",
	"02-Jan-06",
	"02-Jan-2006",
}

// parseDate coerces a cell to a timestamp. Unparseable values return
// ok=false rather than an error.
func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// parseFloat coerces a cell to a float, tolerating thousands
// separators. Unparseable values return ok=false.
func parseFloat(s string) (float64, bool) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// WeekStart truncates a timestamp to midnight of the Monday of its
// week.
func WeekStart(t time.Time) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	offset := (int(day.Weekday()) + 6) % 7 // Monday=0 ... Sunday=6
	return day.AddDate(0, 0, -offset)
}

// Normalize coerces the mapped columns of a table into visit records.
// Rows whose visit date cannot be parsed are dropped entirely; every
// other malformed cell degrades to a missing value on that record.
//
// In time-difference mode the waiting time is seen − arrival in
// minutes. Negative results propagate unclamped; they indicate a data
// problem upstream and skew compliance toward 100%.
func Normalize(t *dataset.Table, m dataset.Mapping, mode dataset.WaitingMode) []domain.Visit {
	dateIdx := t.ColumnIndex(m.VisitDate)
	deptIdx := t.ColumnIndex(m.Department)
	doctorIdx := t.ColumnIndex(m.Doctor)
	waitIdx := t.ColumnIndex(m.WaitingMinutes)
	arrivalIdx := t.ColumnIndex(m.ArrivalTime)
	seenIdx := t.ColumnIndex(m.SeenTime)
	expiryIdx := -1
	if m.LicenseExpiry != "" {
		expiryIdx = t.ColumnIndex(m.LicenseExpiry)
	}

	visits := make([]domain.Visit, 0, len(t.Rows))
	dropped := 0

	for _, row := range t.Rows {
		visitDate, ok := parseDate(t.Cell(row, dateIdx))
		if !ok {
			dropped++
			continue
		}

		v := domain.Visit{
			VisitDate:  visitDate,
			WeekStart:  WeekStart(visitDate),
			Department: t.Cell(row, deptIdx),
			Doctor:     t.Cell(row, doctorIdx),
		}

		switch mode {
		case dataset.WaitingModeTimeDiff:
			arrival, okA := parseDate(t.Cell(row, arrivalIdx))
			seen, okS := parseDate(t.Cell(row, seenIdx))
			if okA && okS {
				minutes := seen.Sub(arrival).Minutes()
				v.WaitingMinutes = &minutes
			}
		default:
			if w, ok := parseFloat(t.Cell(row, waitIdx)); ok {
				v.WaitingMinutes = &w
			}
		}

		if expiryIdx >= 0 {
			if expiry, ok := parseDate(t.Cell(row, expiryIdx)); ok {
				v.LicenseExpiry = &expiry
			}
		}

		visits = append(visits, v)
	}

	if dropped > 0 {
		slog.Debug("dropped rows without a parsable visit date",
			slog.Int("dropped", dropped),
			slog.Int("kept", len(visits)))
	}
	return visits
}

package exporter

import (
	"fmt"
	"strconv"

	"clinicpulse/internal/config"
	"clinicpulse/pkg/contracts/domain"
)

// Column headers for the three exported views. Order is part of the
// export contract.
var (
	WeeklyHeaders = []string{"week_start", "compliance_pct"}
	DeptHeaders   = []string{"Department", "Compliance %"}
	DoctorHeaders = []string{"Doctor", "Visits", "Compliance %", "License Expiry", "Days to Expiry", "Risk"}
)

// WeeklyRecords serializes the weekly view in table order.
func WeeklyRecords(rows []domain.WeeklyCompliance) [][]string {
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, []string{
			formatDate(r.WeekStart),
			formatPctCell(r.CompliancePct, r.Evaluated),
		})
	}
	return out
}

// DeptRecords serializes the department view in table order.
func DeptRecords(rows []domain.DepartmentPerformance) [][]string {
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, []string{
			r.Department,
			formatPctCell(r.CompliancePct, r.Evaluated),
		})
	}
	return out
}

// DoctorRecords serializes the doctor view in table order.
func DoctorRecords(rows []domain.DoctorSummary) [][]string {
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, []string{
			r.Doctor,
			strconv.Itoa(r.Visits),
			formatPctCell(r.CompliancePct, r.Evaluated),
			formatDatePtr(r.LicenseExpiry),
			formatIntPtr(r.DaysToExpiry),
			string(r.Risk),
		})
	}
	return out
}

// WriteSnapshot writes the three view CSVs for a snapshot into the
// derived-output directory, overwriting prior results.
func (w *CSVWriter) WriteSnapshot(s *domain.Snapshot) error {
	files := []struct {
		name    string
		headers []string
		records [][]string
	}{
		{config.WeeklyCSV, WeeklyHeaders, WeeklyRecords(s.Weekly)},
		{config.DeptCSV, DeptHeaders, DeptRecords(s.Departments)},
		{config.DoctorCSV, DoctorHeaders, DoctorRecords(s.Doctors)},
	}

	for _, f := range files {
		err := w.WriteCSV(f.name, WriteOptions{
			Headers:   f.headers,
			Records:   f.records,
			BOMPrefix: true,
		})
		if err != nil {
			return fmt.Errorf("failed to write %s: %w", f.name, err)
		}
	}
	return nil
}

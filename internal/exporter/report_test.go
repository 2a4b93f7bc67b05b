package exporter

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clinicpulse/internal/config"
	"clinicpulse/pkg/contracts/domain"
)

func testPaths(t *testing.T) *config.Paths {
	t.Helper()
	base := t.TempDir()
	paths, err := config.NewPaths(config.PathsConfig{
		DataDir:    filepath.Join(base, "data"),
		DerivedDir: filepath.Join(base, "derived"),
		LogsDir:    filepath.Join(base, "logs"),
	})
	require.NoError(t, err)
	return paths
}

func testSnapshot() *domain.Snapshot {
	expiry := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	days := 9
	return &domain.Snapshot{
		RunID:       "test-run",
		GeneratedAt: time.Date(2024, 6, 1, 10, 30, 0, 0, time.UTC),
		Summary: domain.Summary{
			TotalVisits:       3,
			EvaluatedVisits:   2,
			NoncompliantPct:   50,
			BestDepartment:    "Cardiology",
			BestPct:           100,
			WorstDepartment:   "Dermatology",
			WorstPct:          0,
			ExpiringSoonCount: 1,
		},
		Weekly: []domain.WeeklyCompliance{
			{WeekStart: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Visits: 2, Evaluated: 2, CompliancePct: 50},
			{WeekStart: time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC), Visits: 1, Evaluated: 0},
		},
		Departments: []domain.DepartmentPerformance{
			{Department: "Cardiology", Visits: 1, Evaluated: 1, CompliancePct: 100, Indicator: domain.LightGreen},
			{Department: "Dermatology", Visits: 1, Evaluated: 1, CompliancePct: 0, Indicator: domain.LightRed},
			{Department: "Radiology", Visits: 1, Evaluated: 0, Indicator: domain.LightNone},
		},
		Doctors: []domain.DoctorSummary{
			{Doctor: "Dr. Soon", Visits: 2, Evaluated: 2, CompliancePct: 50, LicenseExpiry: &expiry, DaysToExpiry: &days, Risk: domain.RiskExpiringSoon},
			{Doctor: "Dr. Unknown", Visits: 1, Evaluated: 0, Risk: domain.RiskUnknown},
		},
	}
}

func TestWeeklyRecords(t *testing.T) {
	records := WeeklyRecords(testSnapshot().Weekly)

	require.Len(t, records, 2)
	assert.Equal(t, []string{"2024-01-01", "50"}, records[0])
	assert.Equal(t, []string{"2024-01-08", ""}, records[1], "undefined percentage stays empty")
}

func TestDoctorRecords(t *testing.T) {
	records := DoctorRecords(testSnapshot().Doctors)

	require.Len(t, records, 2)
	assert.Equal(t, []string{"Dr. Soon", "2", "50", "2024-06-10", "9", "Expiring Soon"}, records[0])
	assert.Equal(t, []string{"Dr. Unknown", "1", "", "", "", "Unknown"}, records[1])
}

func TestFormatPctExact(t *testing.T) {
	// Percentages round-trip exactly; no display rounding in exports.
	assert.Equal(t, "50", formatPct(50))
	assert.Equal(t, "87.5", formatPct(87.5))

	v := 100.0 / 3.0
	parsed, err := strconv.ParseFloat(formatPct(v), 64)
	require.NoError(t, err)
	assert.Equal(t, v, parsed)
}

func TestWriteSnapshot(t *testing.T) {
	paths := testPaths(t)
	writer := NewCSVWriter(paths)

	require.NoError(t, writer.WriteSnapshot(testSnapshot()))

	for _, name := range []string{config.WeeklyCSV, config.DeptCSV, config.DoctorCSV} {
		data, err := os.ReadFile(paths.GetDerivedPath(name))
		require.NoError(t, err, "expected %s to exist", name)
		assert.True(t, bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}), "%s should carry a UTF-8 BOM", name)
	}

	data, err := os.ReadFile(paths.GetDerivedPath(config.DeptCSV))
	require.NoError(t, err)
	reader := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})))
	rows, err := reader.ReadAll()
	require.NoError(t, err)

	require.Len(t, rows, 4)
	assert.Equal(t, DeptHeaders, rows[0])
	assert.Equal(t, []string{"Cardiology", "100"}, rows[1])
	assert.Equal(t, []string{"Radiology", ""}, rows[3])
}

func TestWriteSnapshotOverwrites(t *testing.T) {
	paths := testPaths(t)
	writer := NewCSVWriter(paths)

	require.NoError(t, writer.WriteSnapshot(testSnapshot()))

	smaller := testSnapshot()
	smaller.Weekly = smaller.Weekly[:1]
	require.NoError(t, writer.WriteSnapshot(smaller))

	data, err := os.ReadFile(paths.GetDerivedPath(config.WeeklyCSV))
	require.NoError(t, err)
	reader := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})))
	rows, err := reader.ReadAll()
	require.NoError(t, err)
	assert.Len(t, rows, 2, "stale rows from the previous run must not survive")
}

func TestEncodeCSV(t *testing.T) {
	data, err := EncodeCSV([]string{"a", "b"}, [][]string{{"1", "with,comma"}})
	require.NoError(t, err)
	assert.Equal(t, "a,b\n1,\"with,comma\"\n", string(data))
}

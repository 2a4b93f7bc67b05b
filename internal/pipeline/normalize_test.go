package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clinicpulse/internal/dataset"
)

func TestWeekStart(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "monday maps to itself", in: "2024-01-01", want: "2024-01-01"},
		{name: "tuesday", in: "2024-01-02", want: "2024-01-01"},
		{name: "sunday belongs to the preceding monday", in: "2024-01-07", want: "2024-01-01"},
		{name: "next monday starts a new week", in: "2024-01-08", want: "2024-01-08"},
		{name: "crosses month boundary", in: "2024-03-01", want: "2024-02-26"},
		{name: "crosses year boundary", in: "2025-01-01", want: "2024-12-30"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, err := time.Parse("2006-01-02", tt.in)
			require.NoError(t, err)
			got := WeekStart(in)
			assert.Equal(t, tt.want, got.Format("2006-01-02"))
			assert.Equal(t, time.Monday, got.Weekday())
		})
	}
}

func TestWeekStartDropsTimeOfDay(t *testing.T) {
	in := time.Date(2024, 1, 3, 23, 45, 12, 0, time.UTC)
	got := WeekStart(in)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), got)
}

func TestParseDateFormats(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "2024-01-02", want: "2024-01-02"},
		{in: "2024-01-02 14:30:00", want: "2024-01-02"},
		{in: "2024/01/02", want: "2024-01-02"},
		{in: "01/02/2024", want: "2024-01-02"},
		{in: "02-Jan-24", want: "2024-01-02"},
		{in: "  2024-01-02  ", want: "2024-01-02"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := parseDate(tt.in)
			require.True(t, ok)
			assert.Equal(t, tt.want, got.Format("2006-01-02"))
		})
	}

	for _, bad := range []string{"", "not a date", "32/13/2024"} {
		_, ok := parseDate(bad)
		assert.False(t, ok, "expected %q to be unparseable", bad)
	}
}

func TestParseFloat(t *testing.T) {
	v, ok := parseFloat("1,234.5")
	require.True(t, ok)
	assert.Equal(t, 1234.5, v)

	_, ok = parseFloat("n/a")
	assert.False(t, ok)

	_, ok = parseFloat("")
	assert.False(t, ok)
}

func directMapping() dataset.Mapping {
	return dataset.Mapping{
		VisitDate:      "Visit Date",
		Department:     "Department",
		Doctor:         "Doctor",
		WaitingMinutes: "Waiting Minutes",
		LicenseExpiry:  "License Expiry",
	}
}

func TestNormalizeDirect(t *testing.T) {
	table := &dataset.Table{
		Columns: []string{"Visit Date", "Department", "Doctor", "Waiting Minutes", "License Expiry"},
		Rows: [][]string{
			{"2024-01-02", "Cardiology", "Dr. A", "20", "2025-06-30"},
			{"2024-01-03", "Dermatology", "Dr. B", "", ""},
			{"garbage", "Radiology", "Dr. C", "15", ""},
		},
	}

	visits := Normalize(table, directMapping(), dataset.WaitingModeDirect)

	// The row with an unparseable visit date is dropped.
	require.Len(t, visits, 2)

	first := visits[0]
	assert.Equal(t, "Cardiology", first.Department)
	assert.Equal(t, "Dr. A", first.Doctor)
	require.NotNil(t, first.WaitingMinutes)
	assert.Equal(t, 20.0, *first.WaitingMinutes)
	require.NotNil(t, first.LicenseExpiry)
	assert.Equal(t, "2025-06-30", first.LicenseExpiry.Format("2006-01-02"))
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), first.WeekStart)

	second := visits[1]
	assert.Nil(t, second.WaitingMinutes, "blank waiting cell degrades to missing")
	assert.Nil(t, second.LicenseExpiry)
}

func TestNormalizeTimeDiff(t *testing.T) {
	table := &dataset.Table{
		Columns: []string{"Visit Date", "Department", "Doctor", "Arrival", "Seen"},
		Rows: [][]string{
			{"2024-01-02", "Cardiology", "Dr. A", "2024-01-02 09:00:00", "2024-01-02 09:25:00"},
			{"2024-01-02", "Cardiology", "Dr. A", "2024-01-02 09:00:00", ""},
			// Seen before arrival stays negative.
			{"2024-01-02", "Cardiology", "Dr. A", "2024-01-02 09:30:00", "2024-01-02 09:00:00"},
		},
	}
	m := dataset.Mapping{
		VisitDate:   "Visit Date",
		Department:  "Department",
		Doctor:      "Doctor",
		ArrivalTime: "Arrival",
		SeenTime:    "Seen",
	}

	visits := Normalize(table, m, dataset.WaitingModeTimeDiff)

	require.Len(t, visits, 3)
	require.NotNil(t, visits[0].WaitingMinutes)
	assert.Equal(t, 25.0, *visits[0].WaitingMinutes)
	assert.Nil(t, visits[1].WaitingMinutes, "missing seen time degrades to missing")
	require.NotNil(t, visits[2].WaitingMinutes)
	assert.Equal(t, -30.0, *visits[2].WaitingMinutes)
}

func TestNormalizeRaggedRows(t *testing.T) {
	table := &dataset.Table{
		Columns: []string{"Visit Date", "Department", "Doctor", "Waiting Minutes", "License Expiry"},
		Rows: [][]string{
			{"2024-01-02", "Cardiology"},
		},
	}

	visits := Normalize(table, directMapping(), dataset.WaitingModeDirect)

	require.Len(t, visits, 1)
	assert.Equal(t, "", visits[0].Doctor)
	assert.Nil(t, visits[0].WaitingMinutes)
	assert.Nil(t, visits[0].LicenseExpiry)
}

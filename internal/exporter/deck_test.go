package exporter

import (
	"archive/zip"
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clinicpulse/pkg/contracts/domain"
)

func readDeck(t *testing.T, data []byte) map[string]string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err, "deck must be a valid zip archive")

	parts := make(map[string]string, len(zr.File))
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		content, err := io.ReadAll(rc)
		require.NoError(t, err)
		require.NoError(t, rc.Close())
		parts[f.Name] = string(content)
	}
	return parts
}

func TestBuildKPIBullets(t *testing.T) {
	s := testSnapshot()
	bullets := BuildKPIBullets(s)

	require.Len(t, bullets, 5)
	assert.Equal(t, "Total visits analyzed: 3", bullets[0])
	assert.Equal(t, "Noncompliant visits: 50.0%", bullets[1])
	assert.Equal(t, "Best department: Cardiology (100.0%)", bullets[2])
	assert.Equal(t, "Worst department: Dermatology (0.0%)", bullets[3])
	assert.Equal(t, "Licensing risks: 0 expired, 1 expiring soon", bullets[4])
}

func TestBuildKPIBulletsNoDepartments(t *testing.T) {
	s := &domain.Snapshot{Summary: domain.Summary{BestDepartment: "-", WorstDepartment: "-"}}
	bullets := BuildKPIBullets(s)

	require.Len(t, bullets, 3)
	for _, b := range bullets {
		assert.NotContains(t, b, "Best department")
	}
}

func TestBuildDeck(t *testing.T) {
	s := testSnapshot()
	weeklyPNG := []byte("\x89PNG-weekly")
	deptPNG := []byte("\x89PNG-dept")

	deck, err := BuildDeck(s, BuildKPIBullets(s), weeklyPNG, deptPNG)
	require.NoError(t, err)

	parts := readDeck(t, deck)

	for _, name := range []string{
		"[Content_Types].xml",
		"_rels/.rels",
		"ppt/presentation.xml",
		"ppt/slideMasters/slideMaster1.xml",
		"ppt/slideLayouts/slideLayout1.xml",
		"ppt/theme/theme1.xml",
		"ppt/slides/slide1.xml",
		"ppt/slides/slide2.xml",
		"ppt/slides/slide3.xml",
		"ppt/slides/slide4.xml",
		"ppt/media/image1.png",
		"ppt/media/image2.png",
	} {
		assert.Contains(t, parts, name)
	}

	// Exactly four slides are registered.
	assert.Equal(t, 4, strings.Count(parts["ppt/presentation.xml"], "<p:sldId "))

	assert.Contains(t, parts["ppt/slides/slide1.xml"], DeckTitle)
	assert.Contains(t, parts["ppt/slides/slide1.xml"], "Generated on 2024-06-01 10:30")
	assert.Contains(t, parts["ppt/slides/slide2.xml"], "Key Findings")
	assert.Contains(t, parts["ppt/slides/slide2.xml"], "Total visits analyzed: 3")
	assert.Contains(t, parts["ppt/slides/slide3.xml"], `r:embed="rId2"`)
	assert.Contains(t, parts["ppt/slides/slide3.xml"], `r:embed="rId3"`)
	assert.Contains(t, parts["ppt/slides/slide4.xml"], "Dr. Soon - License Expires: 2024-06-10 - Status: Expiring Soon")
	assert.NotContains(t, parts["ppt/slides/slide4.xml"], "Dr. Unknown", "unknown-risk doctors stay off the risk slide")
}

func TestBuildDeckWithoutCharts(t *testing.T) {
	s := testSnapshot()
	s.Doctors = nil

	deck, err := BuildDeck(s, BuildKPIBullets(s), nil, nil)
	require.NoError(t, err)

	parts := readDeck(t, deck)

	assert.NotContains(t, parts, "ppt/media/image1.png")
	assert.NotContains(t, parts, "ppt/media/image2.png")
	assert.Contains(t, parts["ppt/slides/slide3.xml"], "No chart data available.")
	assert.NotContains(t, parts["ppt/slides/_rels/slide3.xml.rels"], "image1.png")
	assert.Contains(t, parts["ppt/slides/slide4.xml"], "No licensing risks detected.")
}

func TestBuildDeckSingleChart(t *testing.T) {
	s := testSnapshot()

	deck, err := BuildDeck(s, BuildKPIBullets(s), []byte("\x89PNG-weekly"), nil)
	require.NoError(t, err)

	parts := readDeck(t, deck)

	assert.Contains(t, parts, "ppt/media/image1.png")
	assert.NotContains(t, parts, "ppt/media/image2.png")
	// The relationship part must only reference images that exist.
	assert.Contains(t, parts["ppt/slides/_rels/slide3.xml.rels"], "image1.png")
	assert.NotContains(t, parts["ppt/slides/_rels/slide3.xml.rels"], "image2.png")
	assert.Contains(t, parts["ppt/slides/slide3.xml"], `r:embed="rId2"`)
	assert.NotContains(t, parts["ppt/slides/slide3.xml"], `r:embed="rId3"`)
}

func TestBuildDeckEscapesXML(t *testing.T) {
	s := testSnapshot()
	s.Summary.BestDepartment = "Ear, Nose & Throat"

	deck, err := BuildDeck(s, BuildKPIBullets(s), nil, nil)
	require.NoError(t, err)

	parts := readDeck(t, deck)
	assert.Contains(t, parts["ppt/slides/slide2.xml"], "Ear, Nose &amp; Throat")
}

func TestRenderChartsEmptyInput(t *testing.T) {
	png, err := RenderWeeklyLine(nil)
	require.NoError(t, err)
	assert.Nil(t, png)

	png, err = RenderDepartmentBars(nil)
	require.NoError(t, err)
	assert.Nil(t, png)
}

func TestRenderCharts(t *testing.T) {
	s := testSnapshot()

	weekly, err := RenderWeeklyLine(s.Weekly)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(weekly, []byte("\x89PNG")), "expected a PNG header")

	dept, err := RenderDepartmentBars(s.Departments)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(dept, []byte("\x89PNG")), "expected a PNG header")
}

package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths contains the resolved application paths. This is the single
// source of truth for file locations: the dataset, the derived-output
// directory the refresh pipeline writes into, and the logs directory.
type Paths struct {
	DataDir    string
	DerivedDir string
	LogsDir    string
}

// NewPaths resolves the configured paths to absolute paths and creates
// the directories if needed.
func NewPaths(cfg PathsConfig) (*Paths, error) {
	p := &Paths{
		DataDir:    cfg.DataDir,
		DerivedDir: cfg.DerivedDir,
		LogsDir:    cfg.LogsDir,
	}

	for _, dir := range []*string{&p.DataDir, &p.DerivedDir, &p.LogsDir} {
		abs, err := filepath.Abs(*dir)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve path %q: %w", *dir, err)
		}
		*dir = abs
	}

	for _, dir := range []string{p.DataDir, p.DerivedDir, p.LogsDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory %q: %w", dir, err)
		}
	}

	return p, nil
}

// GetDerivedPath returns the full path of a derived-output file.
func (p *Paths) GetDerivedPath(filename string) string {
	return filepath.Join(p.DerivedDir, filename)
}

// GetDataPath returns the full path of a file in the data directory.
func (p *Paths) GetDataPath(filename string) string {
	return filepath.Join(p.DataDir, filename)
}

// Well-known derived-output file names. The refresh pipeline overwrites
// these on every invocation; there is no versioning.
const (
	WeeklyCSV  = "weekly_compliance.csv"
	DeptCSV    = "department_performance.csv"
	DoctorCSV  = "doctor_compliance_licensing.csv"
	SummaryPPT = "compliance_summary.pptx"
)

package services

import (
	"errors"
)

// Sentinel errors returned by the report service. Handlers map these
// onto API error responses.
var (
	// ErrDatasetLoad wraps terminal load failures: the input file was
	// unreadable or unparseable as tabular data.
	ErrDatasetLoad = errors.New("dataset load failed")
	// ErrInvalidParams wraps out-of-range run parameters.
	ErrInvalidParams = errors.New("invalid run parameters")
	// ErrInvalidMapping wraps a mapping that names columns absent from
	// the dataset or leaves a required role unassigned.
	ErrInvalidMapping = errors.New("invalid column mapping")
)

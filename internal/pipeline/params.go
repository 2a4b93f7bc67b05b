package pipeline

import (
	"github.com/go-playground/validator/v10"

	"clinicpulse/internal/dataset"
)

var validate = validator.New()

// Params are the scalar configuration values for one pipeline run.
// A Params value is immutable once handed to the engine; UI-driven
// changes produce a new value and a full recompute.
type Params struct {
	// TargetMinutes is the compliance cutoff: a visit is compliant when
	// its waiting time does not exceed this many minutes.
	TargetMinutes int `json:"target_minutes" validate:"min=1,max=600"`
	// DeptThreshold is the green/red traffic-light cutoff in percent.
	DeptThreshold int `json:"dept_threshold" validate:"min=0,max=100"`
	// AlertDays is the licensing-risk window in days.
	AlertDays int `json:"alert_days" validate:"min=1,max=365"`
	// WaitingMode selects direct minutes vs seen−arrival derivation.
	WaitingMode dataset.WaitingMode `json:"waiting_mode" validate:"oneof=direct timediff"`
	// CountMissingAsNoncompliant controls the denominator policy for
	// visits with unknown waiting time. When false (the default and the
	// reference behavior) such visits contribute to neither numerator
	// nor denominator of compliance percentages; when true they count
	// as non-compliant.
	CountMissingAsNoncompliant bool `json:"count_missing_as_noncompliant"`
}

// DefaultParams returns the documented defaults: 30 minute target,
// 90% department threshold, 30 day alert window, direct waiting mode.
func DefaultParams() Params {
	return Params{
		TargetMinutes: 30,
		DeptThreshold: 90,
		AlertDays:     30,
		WaitingMode:   dataset.WaitingModeDirect,
	}
}

// Merge overlays non-zero override fields onto the params, so callers
// may supply a partial value and keep the defaults for the rest. The
// policy flag can only be switched on this way; switching it off takes
// a fully specified params value.
func (p Params) Merge(override Params) Params {
	if override.TargetMinutes != 0 {
		p.TargetMinutes = override.TargetMinutes
	}
	if override.DeptThreshold != 0 {
		p.DeptThreshold = override.DeptThreshold
	}
	if override.AlertDays != 0 {
		p.AlertDays = override.AlertDays
	}
	if override.WaitingMode != "" {
		p.WaitingMode = override.WaitingMode
	}
	if override.CountMissingAsNoncompliant {
		p.CountMissingAsNoncompliant = true
	}
	return p
}

// Validate checks the parameter ranges before any aggregation runs.
// Callers wrap the result with their own context.
func (p Params) Validate() error {
	return validate.Struct(p)
}

// Package services orchestrates the load, normalize, and aggregate
// steps of one pipeline run and exposes the result as an immutable
// snapshot.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"clinicpulse/internal/config"
	"clinicpulse/internal/dataset"
	"clinicpulse/internal/infrastructure"
	"clinicpulse/internal/pipeline"
	"clinicpulse/pkg/contracts/domain"
)

var (
	runsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "clinicpulse_runs_total",
		Help: "Pipeline runs by outcome.",
	}, []string{"status"})
	runDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "clinicpulse_run_duration_seconds",
		Help:    "Duration of pipeline runs.",
		Buckets: prometheus.DefBuckets,
	})
)

func init() {
	prometheus.MustRegister(runsTotal, runDuration)
}

// RunOptions carries per-run overrides on top of the configured
// defaults. Params may be partial: zero-valued fields keep the
// defaults, merged per pipeline.Params.Merge.
type RunOptions struct {
	Params  *pipeline.Params `json:"params,omitempty"`
	Mapping dataset.Mapping  `json:"mapping,omitempty"`
}

// ReportService runs the compliance pipeline against the configured
// dataset. Each Run recomputes everything from scratch; the service
// holds no state between runs.
type ReportService struct {
	cfg    *config.Config
	logger *slog.Logger
	now    func() time.Time
}

// NewReportService creates a report service for the given
// configuration.
func NewReportService(cfg *config.Config, logger *slog.Logger) *ReportService {
	return &ReportService{cfg: cfg, logger: logger, now: time.Now}
}

// DefaultParams returns the configured default run parameters.
func (s *ReportService) DefaultParams() pipeline.Params {
	return pipeline.Params{
		TargetMinutes:              s.cfg.Pipeline.TargetMinutes,
		DeptThreshold:              s.cfg.Pipeline.DeptThreshold,
		AlertDays:                  s.cfg.Pipeline.AlertDays,
		WaitingMode:                dataset.WaitingMode(s.cfg.Pipeline.WaitingMode),
		CountMissingAsNoncompliant: s.cfg.Pipeline.CountMissingAsNoncompliant,
	}
}

// SuggestMapping loads the configured dataset and returns the keyword
// suggestion for its header, with the configured overrides applied.
func (s *ReportService) SuggestMapping(ctx context.Context) (dataset.Mapping, error) {
	table, err := dataset.Load(s.cfg.Dataset.File, s.cfg.Dataset.Sheet)
	if err != nil {
		return dataset.Mapping{}, fmt.Errorf("%w: %v", ErrDatasetLoad, err)
	}
	return dataset.Suggest(table.Columns).Merge(s.configMapping()), nil
}

// Run executes one synchronous pipeline run: load, map, normalize,
// aggregate. Load failures abort the run; everything else degrades to
// missing values and empty tables.
func (s *ReportService) Run(ctx context.Context, opts RunOptions) (*domain.Snapshot, error) {
	start := s.now()
	logger := infrastructure.LoggerWithContext(ctx)

	params := s.DefaultParams()
	if opts.Params != nil {
		params = params.Merge(*opts.Params)
	}
	if err := params.Validate(); err != nil {
		runsTotal.WithLabelValues("invalid").Inc()
		return nil, fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}

	table, err := dataset.Load(s.cfg.Dataset.File, s.cfg.Dataset.Sheet)
	if err != nil {
		runsTotal.WithLabelValues("load_error").Inc()
		return nil, fmt.Errorf("%w: %v", ErrDatasetLoad, err)
	}

	mapping := dataset.Suggest(table.Columns).
		Merge(s.configMapping()).
		Merge(opts.Mapping)
	if err := mapping.Validate(table, params.WaitingMode); err != nil {
		runsTotal.WithLabelValues("invalid").Inc()
		return nil, fmt.Errorf("%w: %v", ErrInvalidMapping, err)
	}

	visits := pipeline.Normalize(table, mapping, params.WaitingMode)
	result := pipeline.Aggregate(visits, params, s.now())

	snapshot := &domain.Snapshot{
		RunID:       uuid.New().String(),
		GeneratedAt: s.now(),
		Summary:     result.Summary,
		Weekly:      result.Weekly,
		Departments: result.Departments,
		Doctors:     result.Doctors,
	}

	elapsed := s.now().Sub(start)
	runsTotal.WithLabelValues("ok").Inc()
	runDuration.Observe(elapsed.Seconds())

	logger.Info("pipeline run complete",
		slog.String("run_id", snapshot.RunID),
		slog.Int("rows", len(table.Rows)),
		slog.Int("visits", len(visits)),
		slog.Int("weeks", len(result.Weekly)),
		slog.Int("departments", len(result.Departments)),
		slog.Int("doctors", len(result.Doctors)),
		slog.Duration("elapsed", elapsed))

	return snapshot, nil
}

func (s *ReportService) configMapping() dataset.Mapping {
	m := s.cfg.Dataset.Mapping
	return dataset.Mapping{
		VisitDate:      m.VisitDate,
		Department:     m.Department,
		Doctor:         m.Doctor,
		WaitingMinutes: m.WaitingMinutes,
		ArrivalTime:    m.ArrivalTime,
		SeenTime:       m.SeenTime,
		LicenseExpiry:  m.LicenseExpiry,
	}
}

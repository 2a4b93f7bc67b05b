package http

import (
	"context"

	"clinicpulse/internal/dataset"
	"clinicpulse/internal/pipeline"
	"clinicpulse/internal/services"
	"clinicpulse/pkg/contracts/domain"
)

// ReportService is the interface the handlers need from the report
// service, kept narrow for testability.
type ReportService interface {
	Run(ctx context.Context, opts services.RunOptions) (*domain.Snapshot, error)
	SuggestMapping(ctx context.Context) (dataset.Mapping, error)
	DefaultParams() pipeline.Params
}

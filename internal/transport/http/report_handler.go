package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"clinicpulse/internal/dataset"
	apierrors "clinicpulse/internal/errors"
	"clinicpulse/internal/exporter"
	"clinicpulse/internal/services"
	"clinicpulse/pkg/contracts/domain"
)

// ReportHandler serves the dashboard report views and exports. Every
// request triggers a fresh pipeline run; there is no snapshot cache.
type ReportHandler struct {
	service ReportService
	logger  *slog.Logger
}

// NewReportHandler creates a new report handler
func NewReportHandler(service ReportService, logger *slog.Logger) *ReportHandler {
	return &ReportHandler{service: service, logger: logger}
}

// Routes sets up the report routes
func (h *ReportHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/report", h.GetReport)
	r.Get("/report/weekly", h.GetWeekly)
	r.Get("/report/departments", h.GetDepartments)
	r.Get("/report/doctors", h.GetDoctors)
	r.Post("/refresh", h.Refresh)
	r.Get("/mapping/suggest", h.SuggestMapping)
	r.Get("/export/weekly.csv", h.ExportWeekly)
	r.Get("/export/departments.csv", h.ExportDepartments)
	r.Get("/export/doctors.csv", h.ExportDoctors)
	r.Get("/export/summary.pptx", h.ExportDeck)
	return r
}

// GetReport returns the full snapshot: KPIs plus the three views.
func (h *ReportHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	snapshot, ok := h.run(w, r)
	if !ok {
		return
	}
	render.JSON(w, r, snapshot)
}

// GetWeekly returns the weekly compliance view.
func (h *ReportHandler) GetWeekly(w http.ResponseWriter, r *http.Request) {
	snapshot, ok := h.run(w, r)
	if !ok {
		return
	}
	render.JSON(w, r, snapshot.Weekly)
}

// GetDepartments returns the department performance view.
func (h *ReportHandler) GetDepartments(w http.ResponseWriter, r *http.Request) {
	snapshot, ok := h.run(w, r)
	if !ok {
		return
	}
	render.JSON(w, r, snapshot.Departments)
}

// GetDoctors returns the doctor compliance and licensing view.
func (h *ReportHandler) GetDoctors(w http.ResponseWriter, r *http.Request) {
	snapshot, ok := h.run(w, r)
	if !ok {
		return
	}
	render.JSON(w, r, snapshot.Doctors)
}

// Refresh runs the pipeline with explicit overrides in the body.
func (h *ReportHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var opts services.RunOptions
	if err := render.DecodeJSON(r.Body, &opts); err != nil {
		h.renderError(w, r, fmt.Errorf("%w: %v", services.ErrInvalidParams, err))
		return
	}

	snapshot, err := h.service.Run(r.Context(), opts)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	render.JSON(w, r, snapshot)
}

// SuggestMapping returns the keyword-based role suggestion for the
// configured dataset's header.
func (h *ReportHandler) SuggestMapping(w http.ResponseWriter, r *http.Request) {
	mapping, err := h.service.SuggestMapping(r.Context())
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	render.JSON(w, r, mapping)
}

// ExportWeekly downloads the weekly view as CSV.
func (h *ReportHandler) ExportWeekly(w http.ResponseWriter, r *http.Request) {
	snapshot, ok := h.run(w, r)
	if !ok {
		return
	}
	h.serveCSV(w, r, "weekly_compliance.csv",
		exporter.WeeklyHeaders, exporter.WeeklyRecords(snapshot.Weekly))
}

// ExportDepartments downloads the department view as CSV.
func (h *ReportHandler) ExportDepartments(w http.ResponseWriter, r *http.Request) {
	snapshot, ok := h.run(w, r)
	if !ok {
		return
	}
	h.serveCSV(w, r, "department_performance.csv",
		exporter.DeptHeaders, exporter.DeptRecords(snapshot.Departments))
}

// ExportDoctors downloads the doctor view as CSV.
func (h *ReportHandler) ExportDoctors(w http.ResponseWriter, r *http.Request) {
	snapshot, ok := h.run(w, r)
	if !ok {
		return
	}
	h.serveCSV(w, r, "doctor_compliance_licensing.csv",
		exporter.DoctorHeaders, exporter.DoctorRecords(snapshot.Doctors))
}

// ExportDeck builds and downloads the four-slide summary deck.
func (h *ReportHandler) ExportDeck(w http.ResponseWriter, r *http.Request) {
	snapshot, ok := h.run(w, r)
	if !ok {
		return
	}

	weeklyPNG, err := exporter.RenderWeeklyLine(snapshot.Weekly)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	deptPNG, err := exporter.RenderDepartmentBars(snapshot.Departments)
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	deck, err := exporter.BuildDeck(snapshot, exporter.BuildKPIBullets(snapshot), weeklyPNG, deptPNG)
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.presentationml.presentation")
	w.Header().Set("Content-Disposition", `attachment; filename="compliance_summary.pptx"`)
	w.Write(deck)
}

// run executes the pipeline with any query-string parameter overrides
// applied and renders errors itself. The second return value is false
// when a response was already written.
func (h *ReportHandler) run(w http.ResponseWriter, r *http.Request) (*domain.Snapshot, bool) {
	opts, err := h.optionsFromQuery(r)
	if err != nil {
		h.renderError(w, r, err)
		return nil, false
	}

	snapshot, err := h.service.Run(r.Context(), opts)
	if err != nil {
		h.renderError(w, r, err)
		return nil, false
	}
	return snapshot, true
}

// optionsFromQuery applies threshold/mode overrides from the query
// string onto the configured defaults. Zero-valued overrides keep the
// defaults, same as any partial params value.
func (h *ReportHandler) optionsFromQuery(r *http.Request) (services.RunOptions, error) {
	q := r.URL.Query()
	params := h.service.DefaultParams()
	changed := false

	for key, dst := range map[string]*int{
		"target_minutes": &params.TargetMinutes,
		"dept_threshold": &params.DeptThreshold,
		"alert_days":     &params.AlertDays,
	} {
		if v := q.Get(key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return services.RunOptions{}, fmt.Errorf("%w: %s must be an integer", services.ErrInvalidParams, key)
			}
			*dst = n
			changed = true
		}
	}
	if v := q.Get("waiting_mode"); v != "" {
		params.WaitingMode = dataset.WaitingMode(v)
		changed = true
	}
	if v := q.Get("count_missing"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return services.RunOptions{}, fmt.Errorf("%w: count_missing must be a boolean", services.ErrInvalidParams)
		}
		params.CountMissingAsNoncompliant = b
		changed = true
	}

	if !changed {
		return services.RunOptions{}, nil
	}
	return services.RunOptions{Params: &params}, nil
}

func (h *ReportHandler) serveCSV(w http.ResponseWriter, r *http.Request, filename string, headers []string, records [][]string) {
	data, err := exporter.EncodeCSV(headers, records)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Write(data)
}

func (h *ReportHandler) renderError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.LogAttrs(r.Context(), slog.LevelError, "request failed",
		slog.String("path", r.URL.Path),
		slog.String("error", err.Error()))

	var apiErr *apierrors.APIError
	switch {
	case errors.Is(err, services.ErrDatasetLoad):
		apiErr = apierrors.ErrDatasetLoad.WithDetails(err.Error())
	case errors.Is(err, services.ErrInvalidParams), errors.Is(err, services.ErrInvalidMapping):
		apiErr = apierrors.ErrValidationFailed.WithDetails(err.Error())
	default:
		apiErr = apierrors.ErrInternal
	}
	render.Render(w, r, apiErr)
}

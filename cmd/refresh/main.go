package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"clinicpulse/internal/config"
	"clinicpulse/internal/exporter"
	"clinicpulse/internal/infrastructure"
	"clinicpulse/internal/services"
)

func main() {
	configFile := flag.String("config", "", "path to YAML config file (optional, env vars apply either way)")
	datasetFile := flag.String("dataset", "", "visit dataset file, Excel or CSV (overrides config)")
	outputDir := flag.String("out", "", "output directory for derived artifacts (defaults to the configured derived dir)")
	targetMinutes := flag.Int("target", 0, "waiting-time target in minutes (overrides config)")
	alertDays := flag.Int("alert-days", 0, "license expiry alert window in days (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if *datasetFile != "" {
		cfg.Dataset.File = *datasetFile
	}
	if *outputDir != "" {
		cfg.Paths.DerivedDir = *outputDir
	}
	if *targetMinutes > 0 {
		cfg.Pipeline.TargetMinutes = *targetMinutes
	}
	if *alertDays > 0 {
		cfg.Pipeline.AlertDays = *alertDays
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Error("Failed to initialize logger", "error", err)
		os.Exit(1)
	}
	defer infrastructure.CloseLogFile()

	paths, err := config.NewPaths(cfg.Paths)
	if err != nil {
		logger.Error("Failed to initialize paths", "error", err)
		os.Exit(1)
	}

	ctx := infrastructure.EnsureTraceID(context.Background())
	service := services.NewReportService(cfg, logger)

	logger.Info("Refreshing compliance artifacts",
		"dataset", cfg.Dataset.File,
		"output", paths.DerivedDir)

	snapshot, err := service.Run(ctx, services.RunOptions{})
	if err != nil {
		logger.Error("Pipeline run failed", "error", err)
		os.Exit(1)
	}

	writer := exporter.NewCSVWriter(paths)
	if err := writer.WriteSnapshot(snapshot); err != nil {
		logger.Error("Failed to write CSV exports", "error", err)
		os.Exit(1)
	}

	weeklyPNG, err := exporter.RenderWeeklyLine(snapshot.Weekly)
	if err != nil {
		logger.Error("Failed to render weekly chart", "error", err)
		os.Exit(1)
	}
	deptPNG, err := exporter.RenderDepartmentBars(snapshot.Departments)
	if err != nil {
		logger.Error("Failed to render department chart", "error", err)
		os.Exit(1)
	}

	deck, err := exporter.BuildDeck(snapshot, exporter.BuildKPIBullets(snapshot), weeklyPNG, deptPNG)
	if err != nil {
		logger.Error("Failed to build summary deck", "error", err)
		os.Exit(1)
	}
	deckPath := paths.GetDerivedPath(config.SummaryPPT)
	if err := os.WriteFile(deckPath, deck, 0644); err != nil {
		logger.Error("Failed to write summary deck", "error", err, "path", deckPath)
		os.Exit(1)
	}

	logger.Info("Refresh complete",
		"run_id", snapshot.RunID,
		"visits", snapshot.Summary.TotalVisits,
		"weekly_csv", paths.GetDerivedPath(config.WeeklyCSV),
		"department_csv", paths.GetDerivedPath(config.DeptCSV),
		"doctor_csv", paths.GetDerivedPath(config.DoctorCSV),
		"deck", deckPath)
}

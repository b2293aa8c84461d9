package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/millbrook/garage-vhc/internal/config"
	"github.com/millbrook/garage-vhc/internal/export"
	"github.com/millbrook/garage-vhc/internal/repository"
	"github.com/millbrook/garage-vhc/internal/vhc"
	"github.com/millbrook/garage-vhc/pkg/database"
)

// vhc-export derives a job's health check report and writes the summary
// workbook without going through the HTTP server. Useful for back-office
// batch runs and for inspecting what a customer would be sent.
func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to config file")
	jobID := flag.String("job", "", "Job ID to export")
	outDir := flag.String("out", "", "Output directory (defaults to export.output_dir)")
	verbose := flag.Bool("verbose", false, "Verbose output")
	flag.Parse()

	if *jobID == "" {
		fmt.Fprintf(os.Stderr, "Usage: vhc-export --job <job-id> [--config <path>] [--out <dir>]\n")
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	var logger *zap.Logger
	if *verbose {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	db, err := database.New(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	jobRepo := repository.NewJobRepository(db.DB, logger)
	checkRepo := repository.NewVhcCheckRepository(db.DB, logger)
	snapshotRepo := repository.NewSnapshotRepository(db, decimal.NewFromFloat(cfg.Workshop.LabourRate), logger)
	service := vhc.NewService(snapshotRepo, checkRepo, logger)

	job, err := jobRepo.GetByID(*jobID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load job: %v\n", err)
		os.Exit(1)
	}
	if job == nil {
		fmt.Fprintf(os.Stderr, "Job %s not found\n", *jobID)
		os.Exit(1)
	}

	report, err := service.Report(*jobID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to derive report: %v\n", err)
		os.Exit(1)
	}

	outputDir := cfg.Export.OutputDir
	if *outDir != "" {
		outputDir = *outDir
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create output directory: %v\n", err)
		os.Exit(1)
	}

	exporter := export.NewSummaryExporter(cfg.Workshop.Name, cfg.Workshop.Currency, outputDir, logger)
	path, err := exporter.Export(job, report)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to export summary: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Job:        %s (%s)\n", job.ID, job.VehicleReg)
	fmt.Printf("Findings:   %d\n", len(report.Findings))
	fmt.Printf("Red work:   %s\n", report.Totals.RedWork.StringFixed(2))
	fmt.Printf("Amber work: %s\n", report.Totals.AmberWork.StringFixed(2))
	fmt.Printf("Workbook:   %s\n", path)
}

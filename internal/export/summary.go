package export

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/millbrook/garage-vhc/internal/models"
	"github.com/millbrook/garage-vhc/internal/vhc"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// SummaryExporter renders a job's VHC report as a customer-facing Excel
// workbook: identification header, financial summary grid, then the
// findings grouped by bucket. Grey findings appear under the green group,
// matching the customer-facing presentation.
type SummaryExporter struct {
	workshopName string
	currency     string
	outputDir    string
	logger       *zap.Logger
}

// NewSummaryExporter creates a new summary exporter
func NewSummaryExporter(workshopName, currency, outputDir string, logger *zap.Logger) *SummaryExporter {
	return &SummaryExporter{
		workshopName: workshopName,
		currency:     currency,
		outputDir:    outputDir,
		logger:       logger,
	}
}

const summarySheet = "VHC Summary"

// Build renders the workbook in memory.
func (e *SummaryExporter) Build(job *models.Job, report *vhc.Report) (*excelize.File, error) {
	f := excelize.NewFile()

	index, err := f.NewSheet(summarySheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to remove default sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 12}})
	if err != nil {
		return nil, fmt.Errorf("failed to create style: %w", err)
	}

	e.setCell(f, "A1", e.workshopName)
	e.setCell(f, "A2", "Vehicle Health Check Summary")
	e.setCell(f, "A3", fmt.Sprintf("Vehicle: %s", job.VehicleReg))
	e.setCell(f, "A4", fmt.Sprintf("Customer: %s", job.CustomerName))
	e.setCell(f, "A5", fmt.Sprintf("Date: %s", time.Now().Format("2006-01-02")))
	_ = f.SetCellStyle(summarySheet, "A1", "A2", headerStyle)

	// Financial summary grid. Red/amber work cover every finding of that
	// severity, authorised/declined cover bucket membership only.
	e.setCell(f, "A7", "Red work total")
	e.setCell(f, "B7", e.money(report.Totals.RedWork.StringFixed(2)))
	e.setCell(f, "A8", "Amber work total")
	e.setCell(f, "B8", e.money(report.Totals.AmberWork.StringFixed(2)))
	e.setCell(f, "A9", "Authorised total")
	e.setCell(f, "B9", e.money(report.Totals.AuthorizedTotal.StringFixed(2)))
	e.setCell(f, "A10", "Declined total")
	e.setCell(f, "B10", e.money(report.Totals.DeclinedTotal.StringFixed(2)))

	row := 12
	row = e.writeGroup(f, headerStyle, row, "Immediate attention required", report.Groups.Red)
	row = e.writeGroup(f, headerStyle, row, "Advisory items", report.Groups.Amber)
	row = e.writeGroup(f, headerStyle, row, "Checked and OK", report.Groups.Green)
	row = e.writeGroup(f, headerStyle, row, "Authorised work", report.Groups.Authorized)
	e.writeGroup(f, headerStyle, row, "Declined work", report.Groups.Declined)

	return f, nil
}

// Export saves the workbook under the configured output directory and
// returns its path.
func (e *SummaryExporter) Export(job *models.Job, report *vhc.Report) (string, error) {
	f, err := e.Build(job, report)
	if err != nil {
		return "", err
	}
	defer f.Close()

	filename := fmt.Sprintf("vhc_%s_%s.xlsx", job.ID, time.Now().Format("20060102_150405"))
	outputPath := filepath.Join(e.outputDir, filename)

	if err := f.SaveAs(outputPath); err != nil {
		e.logger.Error("Failed to save summary workbook",
			zap.String("path", outputPath),
			zap.Error(err))
		return "", fmt.Errorf("failed to save summary workbook: %w", err)
	}

	e.logger.Info("Summary workbook exported",
		zap.String("job_id", job.ID),
		zap.String("path", outputPath))
	return outputPath, nil
}

func (e *SummaryExporter) writeGroup(f *excelize.File, headerStyle, row int, title string, findings []models.Finding) int {
	cell := fmt.Sprintf("A%d", row)
	e.setCell(f, cell, title)
	_ = f.SetCellStyle(summarySheet, cell, cell, headerStyle)
	row++

	if len(findings) == 0 {
		e.setCell(f, fmt.Sprintf("A%d", row), "None")
		return row + 2
	}

	e.setCell(f, fmt.Sprintf("A%d", row), "Item")
	e.setCell(f, fmt.Sprintf("B%d", row), "Section")
	e.setCell(f, fmt.Sprintf("C%d", row), "Condition")
	e.setCell(f, fmt.Sprintf("D%d", row), "Measurement")
	e.setCell(f, fmt.Sprintf("E%d", row), "Notes")
	e.setCell(f, fmt.Sprintf("F%d", row), "Total")
	row++

	for _, finding := range findings {
		e.setCell(f, fmt.Sprintf("A%d", row), finding.Label)
		e.setCell(f, fmt.Sprintf("B%d", row), finding.SectionName)
		e.setCell(f, fmt.Sprintf("C%d", row), finding.Severity)
		e.setCell(f, fmt.Sprintf("D%d", row), finding.Measurement)
		e.setCell(f, fmt.Sprintf("E%d", row), finding.Notes)
		e.setCell(f, fmt.Sprintf("F%d", row), e.money(finding.Total.StringFixed(2)))
		row++
	}
	return row + 1
}

func (e *SummaryExporter) money(amount string) string {
	symbol := "£"
	switch e.currency {
	case "EUR":
		symbol = "€"
	case "USD":
		symbol = "$"
	}
	return symbol + amount
}

// setCell sets a cell value, logging rather than failing on error
func (e *SummaryExporter) setCell(f *excelize.File, cell, value string) {
	if err := f.SetCellValue(summarySheet, cell, value); err != nil {
		e.logger.Warn("Failed to set cell value",
			zap.String("cell", cell),
			zap.Error(err))
	}
}

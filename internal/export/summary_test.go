package export

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/millbrook/garage-vhc/internal/models"
	"github.com/millbrook/garage-vhc/internal/vhc"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testReport() *vhc.Report {
	findings := []models.Finding{
		{
			ID:          "brakes-front_pads-0",
			Label:       "Front pads",
			SectionName: "Brakes",
			Severity:    models.SeverityRed,
			Measurement: "Pad thickness: 2mm",
			PartsCost:   decimal.NewFromInt(30),
			Total:       decimal.NewFromInt(30),
		},
	}
	groups := vhc.GroupFindings(findings, nil)
	return &vhc.Report{
		JobID:    "job-1",
		Findings: findings,
		Groups:   groups,
		Totals:   vhc.ComputeTotals(findings, groups),
	}
}

func TestBuildSummaryWorkbook(t *testing.T) {
	exporter := NewSummaryExporter("Millbrook Garage", "GBP", t.TempDir(), zap.NewNop())
	job := &models.Job{ID: "job-1", VehicleReg: "AB12 CDE", CustomerName: "J Smith"}

	f, err := exporter.Build(job, testReport())
	require.NoError(t, err)
	defer f.Close()

	name, err := f.GetCellValue(summarySheet, "A1")
	require.NoError(t, err)
	assert.Equal(t, "Millbrook Garage", name)

	redTotal, err := f.GetCellValue(summarySheet, "B7")
	require.NoError(t, err)
	assert.Equal(t, "£30.00", redTotal)

	// First red group row: title at A12, column headers at 13, item at 14.
	item, err := f.GetCellValue(summarySheet, "A14")
	require.NoError(t, err)
	assert.Equal(t, "Front pads", item)
}

func TestExportWritesWorkbook(t *testing.T) {
	dir := t.TempDir()
	exporter := NewSummaryExporter("Millbrook Garage", "GBP", dir, zap.NewNop())
	job := &models.Job{ID: "job-1", VehicleReg: "AB12 CDE", CustomerName: "J Smith"}

	path, err := exporter.Export(job, testReport())
	require.NoError(t, err)
	assert.Equal(t, dir, filepath.Dir(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

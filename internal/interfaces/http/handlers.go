// Package http is the HTTP adapter: it translates requests into service
// and repository calls and never contains derivation logic itself.
package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/millbrook/garage-vhc/internal/models"
	"github.com/millbrook/garage-vhc/internal/vhc"
	"github.com/xuri/excelize/v2"
)

// VhcService is the engine surface the handlers consume.
type VhcService interface {
	Report(jobID string) (*vhc.Report, error)
	UpdateDecision(jobID, itemID, status string) error
}

// JobStore handles job card persistence.
type JobStore interface {
	Create(job *models.Job) error
	GetByID(id string) (*models.Job, error)
	List() ([]*models.Job, error)
}

// ChecksheetStore persists the raw technician payload.
type ChecksheetStore interface {
	Save(jobID string, payload []byte) error
}

// PartsStore persists parts lines.
type PartsStore interface {
	Create(line *models.PartsLine) error
	ListByJob(jobID string) ([]*models.PartsLine, error)
}

// AuthorizedStore maintains the customer-authorized item set.
type AuthorizedStore interface {
	Add(jobID, itemID string) error
	Remove(jobID, itemID string) error
}

// OverrideStore persists manually raised VHC items.
type OverrideStore interface {
	Create(check *models.VhcCheck) error
}

// AliasStore maps synthesized checksheet item ids to canonical row ids.
type AliasStore interface {
	Upsert(jobID, displayID, canonicalID string) error
}

// SummaryBuilder renders a report as a workbook.
type SummaryBuilder interface {
	Build(job *models.Job, report *vhc.Report) (*excelize.File, error)
}

// SummaryDrafter drafts customer-facing wording for a report.
type SummaryDrafter interface {
	Enabled() bool
	CustomerSummary(ctx context.Context, job *models.Job, report *vhc.Report) (string, error)
}

// LineExtractor extracts draft parts lines from an uploaded document.
type LineExtractor interface {
	ExtractFromDocument(ctx context.Context, docPath string) ([]*models.PartsLine, error)
}

// Handlers contains all HTTP request handlers
type Handlers struct {
	vhcService  VhcService
	jobs        JobStore
	checksheets ChecksheetStore
	parts       PartsStore
	authorized  AuthorizedStore
	overrides   OverrideStore
	aliases     AliasStore
	exporter    SummaryBuilder
	advisor     SummaryDrafter
	extractor   LineExtractor
	logger      *zap.Logger
}

// NewHandlers creates a new Handlers instance. advisor and extractor may be
// nil when the OpenAI-backed features are not configured.
func NewHandlers(
	vhcService VhcService,
	jobs JobStore,
	checksheets ChecksheetStore,
	parts PartsStore,
	authorized AuthorizedStore,
	overrides OverrideStore,
	aliases AliasStore,
	exporter SummaryBuilder,
	advisor SummaryDrafter,
	extractor LineExtractor,
	logger *zap.Logger,
) *Handlers {
	return &Handlers{
		vhcService:  vhcService,
		jobs:        jobs,
		checksheets: checksheets,
		parts:       parts,
		authorized:  authorized,
		overrides:   overrides,
		aliases:     aliases,
		exporter:    exporter,
		advisor:     advisor,
		extractor:   extractor,
		logger:      logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "garage-vhc",
		"time":    time.Now().Format(time.RFC3339),
	})
}

// CreateJob handles POST /api/v1/jobs
func (h *Handlers) CreateJob(c *gin.Context) {
	var req struct {
		VehicleReg   string `json:"vehicle_reg" binding:"required"`
		CustomerName string `json:"customer_name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}

	job := &models.Job{VehicleReg: req.VehicleReg, CustomerName: req.CustomerName}
	if err := h.jobs.Create(job); err != nil {
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "failed to create job"})
		return
	}
	c.JSON(http.StatusCreated, Response{Success: true, Data: job})
}

// ListJobs handles GET /api/v1/jobs
func (h *Handlers) ListJobs(c *gin.Context) {
	jobs, err := h.jobs.List()
	if err != nil {
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "failed to list jobs"})
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: jobs})
}

// GetJob handles GET /api/v1/jobs/:id
func (h *Handlers) GetJob(c *gin.Context) {
	job, err := h.jobs.GetByID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "failed to get job"})
		return
	}
	if job == nil {
		c.JSON(http.StatusNotFound, Response{Success: false, Error: "job not found"})
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: job})
}

// SaveChecksheet handles PUT /api/v1/jobs/:id/checksheet. The body is the
// raw technician payload; it is stored opaquely and normalized on read, so
// a malformed sheet never blocks the upload.
func (h *Handlers) SaveChecksheet(c *gin.Context) {
	payload, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "failed to read body"})
		return
	}
	if err := h.checksheets.Save(c.Param("id"), payload); err != nil {
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "failed to save checksheet"})
		return
	}
	c.JSON(http.StatusOK, Response{Success: true})
}

// GetVhcReport handles GET /api/v1/jobs/:id/vhc
func (h *Handlers) GetVhcReport(c *gin.Context) {
	report, err := h.vhcService.Report(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "failed to derive vhc report"})
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: report})
}

// UpdateDecision handles PUT /api/v1/jobs/:id/vhc/items/:itemId/decision.
// A null status reverts the item to pending.
func (h *Handlers) UpdateDecision(c *gin.Context) {
	var req struct {
		Status *string `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}

	status := ""
	if req.Status != nil {
		status = *req.Status
	}

	if err := h.vhcService.UpdateDecision(c.Param("id"), c.Param("itemId"), status); err != nil {
		if errors.Is(err, vhc.ErrInvalidDecision) {
			c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "failed to update decision"})
		return
	}
	c.JSON(http.StatusOK, Response{Success: true})
}

// CreateVhcItem handles POST /api/v1/jobs/:id/vhc/items. A service advisor
// raises a priced item; when the item originated from a checksheet line the
// caller passes its display_id so the alias map keeps the two resolving to
// one identity.
func (h *Handlers) CreateVhcItem(c *gin.Context) {
	var req struct {
		DisplayID     string          `json:"display_id"`
		Section       string          `json:"section" binding:"required"`
		IssueTitle    string          `json:"issue_title" binding:"required"`
		Severity      string          `json:"severity"`
		DisplayStatus string          `json:"display_status"`
		LabourHours   float64         `json:"labour_hours"`
		PartsCost     decimal.Decimal `json:"parts_cost"`
		TotalOverride decimal.Decimal `json:"total_override"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}

	check := &models.VhcCheck{
		ID:            uuid.NewString(),
		JobID:         c.Param("id"),
		Section:       req.Section,
		IssueTitle:    req.IssueTitle,
		Severity:      req.Severity,
		DisplayStatus: req.DisplayStatus,
		LabourHours:   req.LabourHours,
		PartsCost:     req.PartsCost,
		TotalOverride: req.TotalOverride,
	}
	if err := h.overrides.Create(check); err != nil {
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "failed to create vhc item"})
		return
	}

	if req.DisplayID != "" {
		if err := h.aliases.Upsert(check.JobID, req.DisplayID, check.ID); err != nil {
			c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "failed to record item alias"})
			return
		}
	}

	c.JSON(http.StatusCreated, Response{Success: true, Data: check})
}

// ConfirmAuthorization handles POST /api/v1/jobs/:id/vhc/authorized/:itemId
func (h *Handlers) ConfirmAuthorization(c *gin.Context) {
	if err := h.authorized.Add(c.Param("id"), c.Param("itemId")); err != nil {
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "failed to confirm authorization"})
		return
	}
	c.JSON(http.StatusOK, Response{Success: true})
}

// WithdrawAuthorization handles DELETE /api/v1/jobs/:id/vhc/authorized/:itemId
func (h *Handlers) WithdrawAuthorization(c *gin.Context) {
	if err := h.authorized.Remove(c.Param("id"), c.Param("itemId")); err != nil {
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "failed to withdraw authorization"})
		return
	}
	c.JSON(http.StatusOK, Response{Success: true})
}

// ExportSummary handles GET /api/v1/jobs/:id/vhc/summary.xlsx
func (h *Handlers) ExportSummary(c *gin.Context) {
	job, err := h.jobs.GetByID(c.Param("id"))
	if err != nil || job == nil {
		c.JSON(http.StatusNotFound, Response{Success: false, Error: "job not found"})
		return
	}

	report, err := h.vhcService.Report(job.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "failed to derive vhc report"})
		return
	}

	f, err := h.exporter.Build(job, report)
	if err != nil {
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "failed to build workbook"})
		return
	}
	defer f.Close()

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="vhc_%s.xlsx"`, job.ID))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := f.Write(c.Writer); err != nil {
		h.logger.Error("Failed to stream workbook", zap.String("job_id", job.ID), zap.Error(err))
	}
}

// CustomerSummary handles GET /api/v1/jobs/:id/vhc/customer-summary
func (h *Handlers) CustomerSummary(c *gin.Context) {
	if h.advisor == nil || !h.advisor.Enabled() {
		c.JSON(http.StatusServiceUnavailable, Response{Success: false, Error: "advisor is not configured"})
		return
	}

	job, err := h.jobs.GetByID(c.Param("id"))
	if err != nil || job == nil {
		c.JSON(http.StatusNotFound, Response{Success: false, Error: "job not found"})
		return
	}

	report, err := h.vhcService.Report(job.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "failed to derive vhc report"})
		return
	}

	summary, err := h.advisor.CustomerSummary(c.Request.Context(), job, report)
	if err != nil {
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "failed to draft summary"})
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: gin.H{"summary": summary}})
}

// CreatePartsLine handles POST /api/v1/jobs/:id/parts
func (h *Handlers) CreatePartsLine(c *gin.Context) {
	var line models.PartsLine
	if err := c.ShouldBindJSON(&line); err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: err.Error()})
		return
	}
	line.JobID = c.Param("id")

	if err := h.parts.Create(&line); err != nil {
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "failed to create parts line"})
		return
	}
	c.JSON(http.StatusCreated, Response{Success: true, Data: line})
}

// ListPartsLines handles GET /api/v1/jobs/:id/parts
func (h *Handlers) ListPartsLines(c *gin.Context) {
	lines, err := h.parts.ListByJob(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "failed to list parts lines"})
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: lines})
}

// ExtractPartsInvoice handles POST /api/v1/parts-invoices/extract. The
// uploaded document is rendered and read into draft parts lines; nothing
// is persisted.
func (h *Handlers) ExtractPartsInvoice(c *gin.Context) {
	if h.extractor == nil {
		c.JSON(http.StatusServiceUnavailable, Response{Success: false, Error: "parts-invoice extraction is not configured"})
		return
	}

	file, err := c.FormFile("document")
	if err != nil {
		c.JSON(http.StatusBadRequest, Response{Success: false, Error: "document file is required"})
		return
	}

	tmpPath := filepath.Join(os.TempDir(), fmt.Sprintf("parts_invoice_%d%s", time.Now().UnixNano(), filepath.Ext(file.Filename)))
	if err := c.SaveUploadedFile(file, tmpPath); err != nil {
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "failed to store upload"})
		return
	}
	defer os.Remove(tmpPath)

	lines, err := h.extractor.ExtractFromDocument(c.Request.Context(), tmpPath)
	if err != nil {
		c.JSON(http.StatusInternalServerError, Response{Success: false, Error: "failed to extract parts lines"})
		return
	}
	c.JSON(http.StatusOK, Response{Success: true, Data: lines})
}

package repository

import (
	"database/sql"
	"fmt"

	"github.com/millbrook/garage-vhc/internal/models"
	"go.uber.org/zap"
)

// VhcCheckRepository handles vhc_checks (override row) database operations
type VhcCheckRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewVhcCheckRepository creates a new override-row repository
func NewVhcCheckRepository(db *sql.DB, logger *zap.Logger) *VhcCheckRepository {
	return &VhcCheckRepository{
		db:     db,
		logger: logger,
	}
}

const vhcCheckColumns = `id, job_id, section, issue_title, severity, display_status,
	approval_status, labour_hours, parts_cost, total_override, created_at, updated_at`

// ListByJob returns all override rows for a job in insertion order.
func (r *VhcCheckRepository) ListByJob(jobID string) ([]*models.VhcCheck, error) {
	checks, err := listVhcChecks(r.db, jobID)
	if err != nil {
		r.logger.Error("Failed to list vhc checks", zap.String("job_id", jobID), zap.Error(err))
		return nil, err
	}
	return checks, nil
}

// GetByID retrieves one override row by canonical id
func (r *VhcCheckRepository) GetByID(id string) (*models.VhcCheck, error) {
	query := fmt.Sprintf(`SELECT %s FROM vhc_checks WHERE id = ?`, vhcCheckColumns)

	check, err := scanVhcCheck(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get vhc check", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get vhc check: %w", err)
	}
	return check, nil
}

// Create inserts a complete override row
func (r *VhcCheckRepository) Create(check *models.VhcCheck) error {
	query := `
		INSERT INTO vhc_checks (
			id, job_id, section, issue_title, severity, display_status,
			approval_status, labour_hours, parts_cost, total_override
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.Exec(query,
		check.ID,
		check.JobID,
		check.Section,
		check.IssueTitle,
		nullable(check.Severity),
		nullable(check.DisplayStatus),
		nullable(check.ApprovalStatus),
		check.LabourHours,
		check.PartsCost,
		check.TotalOverride,
	)
	if err != nil {
		r.logger.Error("Failed to create vhc check", zap.String("id", check.ID), zap.Error(err))
		return fmt.Errorf("failed to create vhc check: %w", err)
	}
	return nil
}

// UpsertApprovalStatus writes exactly one row's approval decision, creating
// the row when no override exists yet for the id. Severity, hours and cost
// columns are never touched. Re-applying the same decision is a no-op.
func (r *VhcCheckRepository) UpsertApprovalStatus(jobID, itemID, status string) error {
	query := `
		INSERT INTO vhc_checks (id, job_id, approval_status)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			approval_status = excluded.approval_status,
			updated_at = CURRENT_TIMESTAMP
	`

	if _, err := r.db.Exec(query, itemID, jobID, status); err != nil {
		r.logger.Error("Failed to upsert approval status",
			zap.String("job_id", jobID),
			zap.String("item_id", itemID),
			zap.Error(err))
		return fmt.Errorf("failed to upsert approval status: %w", err)
	}
	return nil
}

func listVhcChecks(q querier, jobID string) ([]*models.VhcCheck, error) {
	query := fmt.Sprintf(`SELECT %s FROM vhc_checks WHERE job_id = ? ORDER BY created_at, id`, vhcCheckColumns)

	rows, err := q.Query(query, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to list vhc checks: %w", err)
	}
	defer rows.Close()

	var checks []*models.VhcCheck
	for rows.Next() {
		check, err := scanVhcCheck(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan vhc check: %w", err)
		}
		checks = append(checks, check)
	}
	return checks, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVhcCheck(row rowScanner) (*models.VhcCheck, error) {
	var check models.VhcCheck
	var severity, displayStatus, approvalStatus sql.NullString

	err := row.Scan(
		&check.ID,
		&check.JobID,
		&check.Section,
		&check.IssueTitle,
		&severity,
		&displayStatus,
		&approvalStatus,
		&check.LabourHours,
		&check.PartsCost,
		&check.TotalOverride,
		&check.CreatedAt,
		&check.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	check.Severity = severity.String
	check.DisplayStatus = displayStatus.String
	check.ApprovalStatus = approvalStatus.String
	return &check, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

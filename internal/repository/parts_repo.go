package repository

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/millbrook/garage-vhc/internal/models"
	"go.uber.org/zap"
)

// PartsLineRepository handles parts_lines database operations
type PartsLineRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewPartsLineRepository creates a new parts-line repository
func NewPartsLineRepository(db *sql.DB, logger *zap.Logger) *PartsLineRepository {
	return &PartsLineRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a parts line, generating its id when absent
func (r *PartsLineRepository) Create(line *models.PartsLine) error {
	if line.ID == "" {
		line.ID = uuid.NewString()
	}

	query := `
		INSERT INTO parts_lines (id, job_id, vhc_item_id, description, quantity, unit_price, labour_hours)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.Exec(query,
		line.ID,
		line.JobID,
		nullable(line.VhcItemID),
		line.Description,
		line.Quantity,
		line.UnitPrice,
		line.LabourHours,
	)
	if err != nil {
		r.logger.Error("Failed to create parts line", zap.String("job_id", line.JobID), zap.Error(err))
		return fmt.Errorf("failed to create parts line: %w", err)
	}
	return nil
}

// ListByJob returns all parts lines for a job
func (r *PartsLineRepository) ListByJob(jobID string) ([]*models.PartsLine, error) {
	lines, err := listPartsLines(r.db, jobID)
	if err != nil {
		r.logger.Error("Failed to list parts lines", zap.String("job_id", jobID), zap.Error(err))
		return nil, err
	}
	return lines, nil
}

func listPartsLines(q querier, jobID string) ([]*models.PartsLine, error) {
	query := `
		SELECT id, job_id, vhc_item_id, description, quantity, unit_price, labour_hours, created_at
		FROM parts_lines
		WHERE job_id = ?
		ORDER BY created_at, id
	`

	rows, err := q.Query(query, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to list parts lines: %w", err)
	}
	defer rows.Close()

	var lines []*models.PartsLine
	for rows.Next() {
		var line models.PartsLine
		var itemID sql.NullString
		if err := rows.Scan(
			&line.ID,
			&line.JobID,
			&itemID,
			&line.Description,
			&line.Quantity,
			&line.UnitPrice,
			&line.LabourHours,
			&line.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan parts line: %w", err)
		}
		line.VhcItemID = itemID.String
		lines = append(lines, &line)
	}
	return lines, rows.Err()
}

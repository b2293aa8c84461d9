package repository

import (
	"database/sql"
	"fmt"

	"go.uber.org/zap"
)

// ChecksheetRepository stores the raw technician checksheet payload per job.
// The payload is opaque JSON at this layer; normalization and shape
// tolerance belong to models.ParseChecksheet.
type ChecksheetRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewChecksheetRepository creates a new checksheet repository
func NewChecksheetRepository(db *sql.DB, logger *zap.Logger) *ChecksheetRepository {
	return &ChecksheetRepository{
		db:     db,
		logger: logger,
	}
}

// Save stores (or replaces) the checksheet payload for a job
func (r *ChecksheetRepository) Save(jobID string, payload []byte) error {
	query := `
		INSERT INTO vhc_checksheets (job_id, payload)
		VALUES (?, ?)
		ON CONFLICT(job_id) DO UPDATE SET
			payload = excluded.payload,
			updated_at = CURRENT_TIMESTAMP
	`
	if _, err := r.db.Exec(query, jobID, string(payload)); err != nil {
		r.logger.Error("Failed to save checksheet", zap.String("job_id", jobID), zap.Error(err))
		return fmt.Errorf("failed to save checksheet: %w", err)
	}
	return nil
}

// GetPayload returns the raw checksheet payload, nil when none is stored
func (r *ChecksheetRepository) GetPayload(jobID string) ([]byte, error) {
	payload, err := loadChecksheetPayload(r.db, jobID)
	if err != nil {
		r.logger.Error("Failed to get checksheet", zap.String("job_id", jobID), zap.Error(err))
		return nil, err
	}
	return payload, nil
}

func loadChecksheetPayload(q querier, jobID string) ([]byte, error) {
	var payload string
	err := q.QueryRow(`SELECT payload FROM vhc_checksheets WHERE job_id = ?`, jobID).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load checksheet payload: %w", err)
	}
	return []byte(payload), nil
}

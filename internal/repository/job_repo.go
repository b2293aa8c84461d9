package repository

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/millbrook/garage-vhc/internal/models"
	"go.uber.org/zap"
)

// JobRepository handles job card database operations
type JobRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewJobRepository creates a new job repository
func NewJobRepository(db *sql.DB, logger *zap.Logger) *JobRepository {
	return &JobRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a job card, generating its id when absent
func (r *JobRepository) Create(job *models.Job) error {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.Status == "" {
		job.Status = models.JobStatusOpen
	}

	query := `INSERT INTO jobs (id, vehicle_reg, customer_name, status) VALUES (?, ?, ?, ?)`
	if _, err := r.db.Exec(query, job.ID, job.VehicleReg, job.CustomerName, job.Status); err != nil {
		r.logger.Error("Failed to create job", zap.String("vehicle_reg", job.VehicleReg), zap.Error(err))
		return fmt.Errorf("failed to create job: %w", err)
	}
	return nil
}

// GetByID retrieves a job card by id
func (r *JobRepository) GetByID(id string) (*models.Job, error) {
	query := `
		SELECT id, vehicle_reg, customer_name, status, completed_at, created_at, updated_at
		FROM jobs
		WHERE id = ?
	`

	var job models.Job
	var completedAt sql.NullTime
	err := r.db.QueryRow(query, id).Scan(
		&job.ID,
		&job.VehicleReg,
		&job.CustomerName,
		&job.Status,
		&completedAt,
		&job.CreatedAt,
		&job.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get job", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get job: %w", err)
	}

	if completedAt.Valid {
		job.CompletedAt = &completedAt.Time
	}
	return &job, nil
}

// List returns all job cards, newest first
func (r *JobRepository) List() ([]*models.Job, error) {
	query := `
		SELECT id, vehicle_reg, customer_name, status, completed_at, created_at, updated_at
		FROM jobs
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(query)
	if err != nil {
		r.logger.Error("Failed to list jobs", zap.Error(err))
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*models.Job
	for rows.Next() {
		var job models.Job
		var completedAt sql.NullTime
		if err := rows.Scan(
			&job.ID,
			&job.VehicleReg,
			&job.CustomerName,
			&job.Status,
			&completedAt,
			&job.CreatedAt,
			&job.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		if completedAt.Valid {
			job.CompletedAt = &completedAt.Time
		}
		jobs = append(jobs, &job)
	}
	return jobs, rows.Err()
}

// UpdateStatus moves a job card to a new status
func (r *JobRepository) UpdateStatus(id, status string) error {
	query := `UPDATE jobs SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
	result, err := r.db.Exec(query, status, id)
	if err != nil {
		r.logger.Error("Failed to update job status", zap.String("id", id), zap.Error(err))
		return fmt.Errorf("failed to update job status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("job not found: %s", id)
	}
	return nil
}

package repository

import (
	"database/sql"
	"fmt"

	"go.uber.org/zap"
)

// AuthorizedItemRepository handles the authorized-items set: the system of
// record for which canonical item ids the customer has approved billing on.
type AuthorizedItemRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewAuthorizedItemRepository creates a new authorized-items repository
func NewAuthorizedItemRepository(db *sql.DB, logger *zap.Logger) *AuthorizedItemRepository {
	return &AuthorizedItemRepository{
		db:     db,
		logger: logger,
	}
}

// Add confirms an item id as customer-authorized
func (r *AuthorizedItemRepository) Add(jobID, itemID string) error {
	query := `
		INSERT INTO vhc_authorized_items (job_id, item_id)
		VALUES (?, ?)
		ON CONFLICT(job_id, item_id) DO NOTHING
	`
	if _, err := r.db.Exec(query, jobID, itemID); err != nil {
		r.logger.Error("Failed to add authorized item",
			zap.String("job_id", jobID),
			zap.String("item_id", itemID),
			zap.Error(err))
		return fmt.Errorf("failed to add authorized item: %w", err)
	}
	return nil
}

// Remove withdraws an item id from the authorized set
func (r *AuthorizedItemRepository) Remove(jobID, itemID string) error {
	if _, err := r.db.Exec(`DELETE FROM vhc_authorized_items WHERE job_id = ? AND item_id = ?`, jobID, itemID); err != nil {
		r.logger.Error("Failed to remove authorized item",
			zap.String("job_id", jobID),
			zap.String("item_id", itemID),
			zap.Error(err))
		return fmt.Errorf("failed to remove authorized item: %w", err)
	}
	return nil
}

// SetByJob returns the authorized item ids for a job
func (r *AuthorizedItemRepository) SetByJob(jobID string) (map[string]struct{}, error) {
	set, err := loadAuthorizedSet(r.db, jobID)
	if err != nil {
		r.logger.Error("Failed to load authorized set", zap.String("job_id", jobID), zap.Error(err))
		return nil, err
	}
	return set, nil
}

func loadAuthorizedSet(q querier, jobID string) (map[string]struct{}, error) {
	rows, err := q.Query(`SELECT item_id FROM vhc_authorized_items WHERE job_id = ?`, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to load authorized set: %w", err)
	}
	defer rows.Close()

	set := make(map[string]struct{})
	for rows.Next() {
		var itemID string
		if err := rows.Scan(&itemID); err != nil {
			return nil, fmt.Errorf("failed to scan authorized item: %w", err)
		}
		set[itemID] = struct{}{}
	}
	return set, rows.Err()
}

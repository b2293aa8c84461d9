package repository

import (
	"database/sql"
	"fmt"

	"github.com/millbrook/garage-vhc/internal/models"
	"go.uber.org/zap"
)

// AliasRepository handles vhc_aliases database operations
type AliasRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewAliasRepository creates a new alias repository
func NewAliasRepository(db *sql.DB, logger *zap.Logger) *AliasRepository {
	return &AliasRepository{
		db:     db,
		logger: logger,
	}
}

// Upsert records (or retargets) a display-id to canonical-id mapping
func (r *AliasRepository) Upsert(jobID, displayID, canonicalID string) error {
	query := `
		INSERT INTO vhc_aliases (job_id, display_id, canonical_id)
		VALUES (?, ?, ?)
		ON CONFLICT(job_id, display_id) DO UPDATE SET canonical_id = excluded.canonical_id
	`
	if _, err := r.db.Exec(query, jobID, displayID, canonicalID); err != nil {
		r.logger.Error("Failed to upsert alias",
			zap.String("job_id", jobID),
			zap.String("display_id", displayID),
			zap.Error(err))
		return fmt.Errorf("failed to upsert alias: %w", err)
	}
	return nil
}

// MapByJob returns the display-id to canonical-id map for a job
func (r *AliasRepository) MapByJob(jobID string) (map[string]string, error) {
	aliases, err := loadAliasMap(r.db, jobID)
	if err != nil {
		r.logger.Error("Failed to load alias map", zap.String("job_id", jobID), zap.Error(err))
		return nil, err
	}
	return aliases, nil
}

func loadAliasMap(q querier, jobID string) (map[string]string, error) {
	rows, err := q.Query(`SELECT job_id, display_id, canonical_id, created_at FROM vhc_aliases WHERE job_id = ?`, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to load alias map: %w", err)
	}
	defer rows.Close()

	aliases := make(map[string]string)
	for rows.Next() {
		var alias models.VhcAlias
		if err := rows.Scan(&alias.JobID, &alias.DisplayID, &alias.CanonicalID, &alias.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan alias: %w", err)
		}
		aliases[alias.DisplayID] = alias.CanonicalID
	}
	return aliases, rows.Err()
}

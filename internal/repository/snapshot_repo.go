package repository

import (
	"database/sql"
	"fmt"

	"github.com/millbrook/garage-vhc/internal/models"
	"github.com/millbrook/garage-vhc/internal/vhc"
	"github.com/millbrook/garage-vhc/pkg/database"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// SnapshotRepository loads everything one VHC derivation reads — payload,
// override rows, aliases, authorized set, parts lines — inside a single
// read transaction. A decision update landing mid-load can therefore never
// produce a mixed before/after snapshot.
type SnapshotRepository struct {
	db         *database.DB
	labourRate decimal.Decimal
	logger     *zap.Logger
}

// NewSnapshotRepository creates a new snapshot loader
func NewSnapshotRepository(db *database.DB, labourRate decimal.Decimal, logger *zap.Logger) *SnapshotRepository {
	return &SnapshotRepository{
		db:         db,
		labourRate: labourRate,
		logger:     logger,
	}
}

// LoadSnapshot implements vhc.SnapshotSource.
func (r *SnapshotRepository) LoadSnapshot(jobID string) (*vhc.Snapshot, error) {
	snap := &vhc.Snapshot{
		JobID:      jobID,
		LabourRate: r.labourRate,
	}

	err := r.db.WithReadTx(func(tx *sql.Tx) error {
		payload, err := loadChecksheetPayload(tx, jobID)
		if err != nil {
			return err
		}
		checksheet, parseErr := models.ParseChecksheet(payload)
		if parseErr != nil {
			// Malformed payloads degrade to zero payload findings;
			// override-sourced findings are still derivable.
			r.logger.Warn("Malformed checksheet payload, deriving from overrides only",
				zap.String("job_id", jobID),
				zap.Error(parseErr))
		}
		snap.Checksheet = checksheet

		if snap.Overrides, err = listVhcChecks(tx, jobID); err != nil {
			return err
		}
		if snap.Aliases, err = loadAliasMap(tx, jobID); err != nil {
			return err
		}
		if snap.AuthorizedIDs, err = loadAuthorizedSet(tx, jobID); err != nil {
			return err
		}
		if snap.PartsLines, err = listPartsLines(tx, jobID); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		r.logger.Error("Failed to load vhc snapshot", zap.String("job_id", jobID), zap.Error(err))
		return nil, fmt.Errorf("failed to load vhc snapshot: %w", err)
	}

	return snap, nil
}

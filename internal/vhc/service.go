package vhc

import (
	"errors"
	"fmt"

	"github.com/millbrook/garage-vhc/internal/models"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ErrInvalidDecision marks UpdateDecision requests rejected before any
// write happens, so callers can tell bad input from a storage failure.
var ErrInvalidDecision = errors.New("invalid decision")

// Snapshot is everything one derivation reads, loaded atomically by the
// snapshot source so a concurrent decision update can never produce a
// half-old, half-new view.
type Snapshot struct {
	JobID         string
	Checksheet    *models.Checksheet
	Overrides     []*models.VhcCheck
	Aliases       map[string]string
	AuthorizedIDs map[string]struct{}
	PartsLines    []*models.PartsLine
	LabourRate    decimal.Decimal
}

// Report is the full derived view of a job's VHC.
type Report struct {
	JobID    string           `json:"job_id"`
	Findings []models.Finding `json:"findings"`
	Groups   Groups           `json:"groups"`
	Totals   Totals           `json:"totals"`
}

// SnapshotSource loads one consistent snapshot of a job's VHC state.
type SnapshotSource interface {
	LoadSnapshot(jobID string) (*Snapshot, error)
}

// DecisionStore persists the approval decision of a single override row.
type DecisionStore interface {
	UpsertApprovalStatus(jobID, itemID, status string) error
}

// Service ties the pure derivation to its collaborators. It holds no
// derived state: every Report call re-derives from a fresh snapshot.
type Service struct {
	snapshots SnapshotSource
	decisions DecisionStore
	logger    *zap.Logger
}

// NewService creates a new VHC service.
func NewService(snapshots SnapshotSource, decisions DecisionStore, logger *zap.Logger) *Service {
	return &Service{
		snapshots: snapshots,
		decisions: decisions,
		logger:    logger,
	}
}

// BuildReport runs the full derivation over one snapshot. Pure: same
// snapshot, same report.
func BuildReport(snap *Snapshot) *Report {
	findings := DeriveFindings(Inputs{
		Checksheet: snap.Checksheet,
		Overrides:  snap.Overrides,
		Aliases:    snap.Aliases,
		PartsLines: snap.PartsLines,
		LabourRate: snap.LabourRate,
	})
	groups := GroupFindings(findings, snap.AuthorizedIDs)
	return &Report{
		JobID:    snap.JobID,
		Findings: findings,
		Groups:   groups,
		Totals:   ComputeTotals(findings, groups),
	}
}

// Report loads a snapshot for the job and derives the full VHC view.
func (s *Service) Report(jobID string) (*Report, error) {
	snap, err := s.snapshots.LoadSnapshot(jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to load vhc snapshot: %w", err)
	}
	return BuildReport(snap), nil
}

// UpdateDecision writes one override row's approval status. An empty
// status reverts the item to pending. The write either fully applies or
// fails with prior state untouched; severity, hours and costs are never
// modified here. Applying the same decision twice is a no-op.
func (s *Service) UpdateDecision(jobID, itemID, status string) error {
	if itemID == "" {
		return fmt.Errorf("%w: item id is required", ErrInvalidDecision)
	}

	normalized := models.ApprovalPending
	switch status {
	case "":
		// revert to pending
	case models.ApprovalAuthorized, models.ApprovalDeclined:
		normalized = status
	default:
		return fmt.Errorf("%w: unknown status %q", ErrInvalidDecision, status)
	}

	if err := s.decisions.UpsertApprovalStatus(jobID, itemID, normalized); err != nil {
		s.logger.Error("Failed to update decision",
			zap.String("job_id", jobID),
			zap.String("item_id", itemID),
			zap.String("status", normalized),
			zap.Error(err))
		return err
	}

	s.logger.Info("Decision updated",
		zap.String("job_id", jobID),
		zap.String("item_id", itemID),
		zap.String("status", normalized))
	return nil
}

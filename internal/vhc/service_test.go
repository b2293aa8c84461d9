package vhc

import (
	"errors"
	"testing"

	"github.com/millbrook/garage-vhc/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockSnapshotSource implements SnapshotSource for testing
type MockSnapshotSource struct {
	snapshot *Snapshot
	err      error
}

func (m *MockSnapshotSource) LoadSnapshot(jobID string) (*Snapshot, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.snapshot, nil
}

// MockDecisionStore implements DecisionStore with an in-memory override table
type MockDecisionStore struct {
	statuses map[string]string // item id -> approval status
	writes   int
	err      error
}

func (m *MockDecisionStore) UpsertApprovalStatus(jobID, itemID, status string) error {
	if m.err != nil {
		return m.err
	}
	if m.statuses == nil {
		m.statuses = make(map[string]string)
	}
	m.statuses[itemID] = status
	m.writes++
	return nil
}

func testSnapshot() *Snapshot {
	return &Snapshot{
		JobID: "job-1",
		Checksheet: &models.Checksheet{
			Sections: []models.ChecksheetSection{
				{
					Name: "Brakes",
					Items: []models.ChecksheetItem{
						{Heading: "Front pads", Status: "red", Measurement: "Pad thickness: 2mm"},
					},
				},
			},
		},
		PartsLines: []*models.PartsLine{
			{VhcItemID: "brakes-front_pads-0", Quantity: decimal.NewFromInt(2), UnitPrice: decimal.NewFromInt(15)},
		},
		LabourRate: decimal.NewFromInt(85),
	}
}

func TestServiceReport(t *testing.T) {
	svc := NewService(&MockSnapshotSource{snapshot: testSnapshot()}, &MockDecisionStore{}, zap.NewNop())

	report, err := svc.Report("job-1")
	require.NoError(t, err)
	require.Len(t, report.Findings, 1)
	assert.Equal(t, "brakes-front_pads-0", report.Findings[0].ID)
	require.Len(t, report.Groups.Red, 1)
	assert.True(t, report.Totals.RedWork.Equal(decimal.NewFromInt(30)))
}

func TestServiceReportSnapshotError(t *testing.T) {
	svc := NewService(&MockSnapshotSource{err: errors.New("db unreachable")}, &MockDecisionStore{}, zap.NewNop())

	_, err := svc.Report("job-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db unreachable")
}

func TestUpdateDecisionIdempotent(t *testing.T) {
	store := &MockDecisionStore{}
	svc := NewService(&MockSnapshotSource{snapshot: testSnapshot()}, store, zap.NewNop())

	require.NoError(t, svc.UpdateDecision("job-1", "brakes-front_pads-0", models.ApprovalAuthorized))
	first := store.statuses["brakes-front_pads-0"]

	require.NoError(t, svc.UpdateDecision("job-1", "brakes-front_pads-0", models.ApprovalAuthorized))
	assert.Equal(t, first, store.statuses["brakes-front_pads-0"], "same decision twice, same final state")
	assert.Equal(t, models.ApprovalAuthorized, store.statuses["brakes-front_pads-0"])
}

func TestUpdateDecisionRevertToPending(t *testing.T) {
	store := &MockDecisionStore{}
	svc := NewService(&MockSnapshotSource{snapshot: testSnapshot()}, store, zap.NewNop())

	require.NoError(t, svc.UpdateDecision("job-1", "chk-1", models.ApprovalDeclined))
	require.NoError(t, svc.UpdateDecision("job-1", "chk-1", ""))

	assert.Equal(t, models.ApprovalPending, store.statuses["chk-1"])
}

func TestUpdateDecisionInvalidStatus(t *testing.T) {
	store := &MockDecisionStore{}
	svc := NewService(&MockSnapshotSource{snapshot: testSnapshot()}, store, zap.NewNop())

	err := svc.UpdateDecision("job-1", "chk-1", "maybe")
	require.ErrorIs(t, err, ErrInvalidDecision)
	assert.Zero(t, store.writes, "nothing written for an invalid status")
}

func TestUpdateDecisionMissingItemID(t *testing.T) {
	store := &MockDecisionStore{}
	svc := NewService(&MockSnapshotSource{snapshot: testSnapshot()}, store, zap.NewNop())

	require.ErrorIs(t, svc.UpdateDecision("job-1", "", models.ApprovalAuthorized), ErrInvalidDecision)
	assert.Zero(t, store.writes)
}

func TestUpdateDecisionWriteFailurePropagates(t *testing.T) {
	writeErr := errors.New("constraint violation")
	store := &MockDecisionStore{err: writeErr}
	svc := NewService(&MockSnapshotSource{snapshot: testSnapshot()}, store, zap.NewNop())

	err := svc.UpdateDecision("job-1", "chk-1", models.ApprovalAuthorized)
	require.ErrorIs(t, err, writeErr)
	assert.Empty(t, store.statuses, "prior state untouched on failure")
}

func TestDecisionThenRederivation(t *testing.T) {
	// Authorize the red brake item, then re-derive with the authorized set
	// confirming it: the finding lands in the authorized bucket and its
	// total still counts toward red work.
	store := &MockDecisionStore{}
	source := &MockSnapshotSource{snapshot: testSnapshot()}
	svc := NewService(source, store, zap.NewNop())

	require.NoError(t, svc.UpdateDecision("job-1", "brakes-front_pads-0", models.ApprovalAuthorized))

	snap := testSnapshot()
	snap.Overrides = []*models.VhcCheck{
		{
			ID:             "brakes-front_pads-0",
			JobID:          "job-1",
			Section:        "Brakes",
			IssueTitle:     "Front pads",
			ApprovalStatus: store.statuses["brakes-front_pads-0"],
		},
	}
	snap.AuthorizedIDs = map[string]struct{}{"brakes-front_pads-0": {}}
	source.snapshot = snap

	report, err := svc.Report("job-1")
	require.NoError(t, err)

	require.Len(t, report.Groups.Authorized, 1)
	assert.Empty(t, report.Groups.Red)
	assert.True(t, report.Totals.RedWork.Equal(decimal.NewFromInt(30)), "red work still counts the authorized item")
	assert.True(t, report.Totals.AuthorizedTotal.Equal(decimal.NewFromInt(30)))
}

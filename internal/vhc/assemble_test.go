package vhc

import (
	"testing"

	"github.com/millbrook/garage-vhc/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func labourRate() decimal.Decimal {
	return decimal.NewFromInt(85)
}

func TestDeriveFindingsConcreteScenario(t *testing.T) {
	// A single red brake item with two pads on order and no override row.
	cs := &models.Checksheet{
		Sections: []models.ChecksheetSection{
			{
				Name: "Brakes",
				Items: []models.ChecksheetItem{
					{Heading: "Front pads", Status: "red", Measurement: "Pad thickness: 2mm"},
				},
			},
		},
	}
	lines := []*models.PartsLine{
		{VhcItemID: "brakes-front_pads-0", Quantity: decimal.NewFromInt(2), UnitPrice: decimal.NewFromInt(15)},
	}

	findings := DeriveFindings(Inputs{
		Checksheet: cs,
		PartsLines: lines,
		LabourRate: labourRate(),
	})

	require.Len(t, findings, 1)
	f := findings[0]
	assert.Equal(t, "brakes-front_pads-0", f.ID)
	assert.Equal(t, models.SeverityRed, f.Severity)
	assert.Equal(t, models.ApprovalPending, f.ApprovalStatus)
	assert.Equal(t, models.CategoryBrakesHubs, f.Category)
	assert.Equal(t, "Pad thickness: 2mm", f.Measurement)
	assert.Equal(t, 0.0, f.LabourHours)
	assert.True(t, f.PartsCost.Equal(decimal.NewFromInt(30)), "partsCost = %s", f.PartsCost)
	assert.True(t, f.Total.Equal(decimal.NewFromInt(30)), "total = %s", f.Total)
	assert.Equal(t, models.SourcePayload, f.Source)

	groups := GroupFindings(findings, nil)
	require.Len(t, groups.Red, 1)
	assert.Equal(t, "brakes-front_pads-0", groups.Red[0].ID)
}

func TestDeriveFindingsIdentityUniqueness(t *testing.T) {
	// The payload item resolves to chk-1 through the alias map; the chk-1
	// override row must not produce a second finding.
	cs := &models.Checksheet{
		Sections: []models.ChecksheetSection{
			{
				Name: "Brakes",
				Items: []models.ChecksheetItem{
					{Heading: "Front pads", Status: "red"},
					{Heading: "Front pads", Status: "red"}, // duplicate heading, same index-1 id
				},
			},
		},
	}
	overrides := []*models.VhcCheck{
		{ID: "chk-1", JobID: "job-1", Section: "Brakes", IssueTitle: "Front pads", Severity: "red"},
	}
	aliases := map[string]string{"brakes-front_pads-0": "chk-1"}

	findings := DeriveFindings(Inputs{
		Checksheet: cs,
		Overrides:  overrides,
		Aliases:    aliases,
		LabourRate: labourRate(),
	})

	seen := make(map[string]bool)
	for _, f := range findings {
		assert.False(t, seen[f.ID], "duplicate finding id %s", f.ID)
		seen[f.ID] = true
	}
	assert.Len(t, findings, 2)
	assert.True(t, seen["chk-1"])
	assert.True(t, seen["brakes-front_pads-1"])
}

func TestDeriveFindingsOverrideOnlyPass(t *testing.T) {
	overrides := []*models.VhcCheck{
		{ID: "chk-meta", Section: models.SectionSentinelChecksheet, IssueTitle: "metadata"},
		{ID: "chk-2", Section: "Underside", IssueTitle: "Exhaust corrosion", Severity: "amber"},
	}

	findings := DeriveFindings(Inputs{
		Overrides:  overrides,
		LabourRate: labourRate(),
	})

	require.Len(t, findings, 1, "sentinel row must not become a finding")
	f := findings[0]
	assert.Equal(t, "chk-2", f.ID)
	assert.Equal(t, "Exhaust corrosion", f.Label)
	assert.Equal(t, models.SeverityAmber, f.Severity)
	assert.Equal(t, models.CategoryUnderside, f.Category)
	assert.Equal(t, models.SourceDatabase, f.Source)
}

func TestDeriveFindingsMalformedPayloadDegrades(t *testing.T) {
	cs, err := models.ParseChecksheet([]byte(`{"sections": "not an array"`))
	require.Error(t, err)
	require.NotNil(t, cs)

	overrides := []*models.VhcCheck{
		{ID: "chk-3", Section: "Brakes", IssueTitle: "Discs", Severity: "red"},
	}

	findings := DeriveFindings(Inputs{
		Checksheet: cs,
		Overrides:  overrides,
		LabourRate: labourRate(),
	})

	// Zero payload findings, but the override-sourced finding survives.
	require.Len(t, findings, 1)
	assert.Equal(t, "chk-3", findings[0].ID)
	assert.Equal(t, models.SourceDatabase, findings[0].Source)
}

func TestApplyCostsLabourMaxNotSum(t *testing.T) {
	cs := &models.Checksheet{
		Sections: []models.ChecksheetSection{
			{Name: "Brakes", Items: []models.ChecksheetItem{{Heading: "Front pads", Status: "red"}}},
		},
	}
	lines := []*models.PartsLine{
		{VhcItemID: "brakes-front_pads-0", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(40), LabourHours: 1.5},
		{VhcItemID: "brakes-front_pads-0", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(20), LabourHours: 2.0},
	}

	findings := DeriveFindings(Inputs{Checksheet: cs, PartsLines: lines, LabourRate: labourRate()})

	require.Len(t, findings, 1)
	f := findings[0]
	assert.Equal(t, 2.0, f.LabourHours, "labour is requested once per item, take the max")
	assert.True(t, f.PartsCost.Equal(decimal.NewFromInt(60)))
	// 2.0h x 85 + 60
	assert.True(t, f.Total.Equal(decimal.NewFromInt(230)), "total = %s", f.Total)
}

func TestApplyCostsTotalOverridePrecedence(t *testing.T) {
	cs := &models.Checksheet{
		Sections: []models.ChecksheetSection{
			{Name: "Brakes", Items: []models.ChecksheetItem{{VhcID: "chk-9", Heading: "Front pads", Status: "red"}}},
		},
	}
	overrides := []*models.VhcCheck{
		{ID: "chk-9", Section: "Brakes", IssueTitle: "Front pads", LabourHours: 2, TotalOverride: decimal.NewFromInt(50)},
	}
	lines := []*models.PartsLine{
		{VhcItemID: "chk-9", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(30)},
	}

	findings := DeriveFindings(Inputs{
		Checksheet: cs,
		Overrides:  overrides,
		PartsLines: lines,
		LabourRate: labourRate(),
	})

	require.Len(t, findings, 1)
	f := findings[0]
	// Computed would be 2x85+30 = 200; the explicit override wins.
	assert.True(t, f.Total.Equal(decimal.NewFromInt(50)), "total = %s", f.Total)
	assert.True(t, f.TotalOverride.Equal(decimal.NewFromInt(50)))
}

func TestApplyCostsPartsFallbackToOverrideRow(t *testing.T) {
	overrides := []*models.VhcCheck{
		{ID: "chk-4", Section: "Brakes", IssueTitle: "Discs", Severity: "amber",
			LabourHours: 1, PartsCost: decimal.NewFromInt(45)},
	}

	findings := DeriveFindings(Inputs{Overrides: overrides, LabourRate: labourRate()})

	require.Len(t, findings, 1)
	f := findings[0]
	assert.True(t, f.PartsCost.Equal(decimal.NewFromInt(45)), "stored parts_cost is the fallback")
	// 1h x 85 + 45
	assert.True(t, f.Total.Equal(decimal.NewFromInt(130)), "total = %s", f.Total)
}

func TestDeriveFindingsGreyIsTerminal(t *testing.T) {
	cs := &models.Checksheet{
		Sections: []models.ChecksheetSection{
			{Name: "Interior", Items: []models.ChecksheetItem{{Heading: "Horn"}}},
		},
	}

	findings := DeriveFindings(Inputs{Checksheet: cs, LabourRate: labourRate()})

	require.Len(t, findings, 1, "items with no discernible severity are still emitted")
	assert.Equal(t, models.SeverityGrey, findings[0].Severity)
}

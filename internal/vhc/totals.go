package vhc

import (
	"github.com/millbrook/garage-vhc/internal/models"
	"github.com/shopspring/decimal"
)

// Totals is the financial summary grid. RedWork and AmberWork aggregate by
// severity over every finding regardless of bucket (an authorized red item
// still counts as red work for reporting); AuthorizedTotal and
// DeclinedTotal aggregate by bucket membership. The two rollups are
// independent views over the same finding list.
type Totals struct {
	RedWork         decimal.Decimal `json:"red_work"`
	AmberWork       decimal.Decimal `json:"amber_work"`
	AuthorizedTotal decimal.Decimal `json:"authorized_total"`
	DeclinedTotal   decimal.Decimal `json:"declined_total"`
}

// ComputeTotals derives the financial summary from the full finding list
// and its grouping.
func ComputeTotals(findings []models.Finding, groups Groups) Totals {
	t := Totals{
		RedWork:         decimal.Zero,
		AmberWork:       decimal.Zero,
		AuthorizedTotal: decimal.Zero,
		DeclinedTotal:   decimal.Zero,
	}

	for _, f := range findings {
		switch f.Severity {
		case models.SeverityRed:
			t.RedWork = t.RedWork.Add(f.Total)
		case models.SeverityAmber:
			t.AmberWork = t.AmberWork.Add(f.Total)
		}
	}

	for _, f := range groups.Authorized {
		t.AuthorizedTotal = t.AuthorizedTotal.Add(f.Total)
	}
	for _, f := range groups.Declined {
		t.DeclinedTotal = t.DeclinedTotal.Add(f.Total)
	}

	return t
}

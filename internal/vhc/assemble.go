package vhc

import (
	"github.com/millbrook/garage-vhc/internal/models"
	"github.com/shopspring/decimal"
)

// Inputs is one consistent snapshot of the sources a derivation runs over.
// Derivation never mixes state from two snapshots: the caller loads all of
// this atomically and hands it over as a value.
type Inputs struct {
	Checksheet *models.Checksheet
	Overrides  []*models.VhcCheck
	Aliases    map[string]string
	PartsLines []*models.PartsLine
	LabourRate decimal.Decimal
}

// DeriveFindings reconciles the checksheet payload with the override rows
// and parts lines into the canonical finding list.
//
// The payload is traversed first in document order; each item resolves to
// one canonical id and both the display id and canonical id are marked
// consumed, so no identity ever produces two findings. Override rows not
// consumed by the payload pass are emitted as database-sourced findings,
// except the checksheet-metadata sentinel row.
func DeriveFindings(in Inputs) []models.Finding {
	overridesByID := make(map[string]*models.VhcCheck, len(in.Overrides))
	for _, check := range in.Overrides {
		overridesByID[check.ID] = check
	}

	linesByItem := make(map[string][]*models.PartsLine)
	for _, line := range in.PartsLines {
		if line.VhcItemID != "" {
			linesByItem[line.VhcItemID] = append(linesByItem[line.VhcItemID], line)
		}
	}

	consumed := make(map[string]bool)
	var findings []models.Finding

	if in.Checksheet != nil {
		for si := range in.Checksheet.Sections {
			section := &in.Checksheet.Sections[si]
			for ii := range section.Items {
				item := &section.Items[ii]
				displayID := DisplayID(section.Name, item.Heading, ii)
				canonicalID := ResolveCanonicalID(item.VhcID, section.Name, item.Heading, ii, in.Aliases)
				if consumed[canonicalID] || consumed[displayID] {
					continue
				}
				consumed[canonicalID] = true
				consumed[displayID] = true

				check := overridesByID[canonicalID]
				f := models.Finding{
					ID:             canonicalID,
					Label:          item.Heading,
					SectionName:    section.Name,
					Category:       CategoryForSection(section.Name),
					Notes:          item.Notes,
					Measurement:    item.Measurement,
					Severity:       DeriveSeverity(item, section, check),
					ApprovalStatus: approvalOf(check),
					Source:         models.SourcePayload,
				}
				applyCosts(&f, check, linesByItem[canonicalID], in.LabourRate)
				findings = append(findings, f)
			}
		}
	}

	for _, check := range in.Overrides {
		if consumed[check.ID] || check.Section == models.SectionSentinelChecksheet {
			continue
		}
		consumed[check.ID] = true

		f := models.Finding{
			ID:             check.ID,
			Label:          check.IssueTitle,
			SectionName:    check.Section,
			Category:       CategoryForSection(check.Section),
			Severity:       DeriveOverrideSeverity(check),
			ApprovalStatus: approvalOf(check),
			Source:         models.SourceDatabase,
		}
		applyCosts(&f, check, linesByItem[check.ID], in.LabourRate)
		findings = append(findings, f)
	}

	return findings
}

func approvalOf(check *models.VhcCheck) string {
	if check == nil {
		return models.ApprovalPending
	}
	return NormalizeApproval(check.ApprovalStatus)
}

// applyCosts fills the money fields of a finding.
//
// Labour is the maximum of the override row's hours and any referencing
// parts line's hours, not the sum: labour is requested once per item even
// when split across part lines. Parts cost sums the extended line costs,
// falling back to the override row's stored cost when no line references
// the item. A positive total_override supersedes the computed total.
func applyCosts(f *models.Finding, check *models.VhcCheck, lines []*models.PartsLine, rate decimal.Decimal) {
	var hours float64
	if check != nil {
		hours = check.LabourHours
	}

	partsCost := decimal.Zero
	for _, line := range lines {
		partsCost = partsCost.Add(line.UnitPrice.Mul(line.Quantity))
		if line.LabourHours > hours {
			hours = line.LabourHours
		}
	}
	if len(lines) == 0 && check != nil {
		partsCost = check.PartsCost
	}

	f.LabourHours = hours
	f.PartsCost = partsCost

	if check != nil && check.TotalOverride.IsPositive() {
		f.TotalOverride = check.TotalOverride
		f.Total = check.TotalOverride
		return
	}
	f.Total = decimal.NewFromFloat(hours).Mul(rate).Add(partsCost)
}

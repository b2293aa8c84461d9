package vhc

import (
	"sort"

	"github.com/millbrook/garage-vhc/internal/models"
)

// Groups partitions the finding list for presentation. Grey-severity
// findings that are neither authorized nor declined appear in both Green
// (customer-facing grouping folds grey into green) and Grey (internal
// views keep the distinction).
type Groups struct {
	Red        []models.Finding `json:"red"`
	Amber      []models.Finding `json:"amber"`
	Green      []models.Finding `json:"green"`
	Grey       []models.Finding `json:"grey"`
	Authorized []models.Finding `json:"authorized"`
	Declined   []models.Finding `json:"declined"`
}

// GroupFindings buckets findings by effective decision first, severity
// second.
//
// The authorized-items set is the system of record for "customer approved
// billing": when it is non-empty and does not contain an item whose
// override row claims authorized/completed, the decision is downgraded to
// pending and the finding falls through to its severity bucket.
func GroupFindings(findings []models.Finding, authorizedIDs map[string]struct{}) Groups {
	var g Groups
	for _, f := range findings {
		decision := f.ApprovalStatus
		if decision == models.ApprovalAuthorized || decision == models.ApprovalCompleted {
			if len(authorizedIDs) > 0 {
				if _, ok := authorizedIDs[f.ID]; !ok {
					decision = models.ApprovalPending
				}
			}
		}

		switch {
		case decision == models.ApprovalAuthorized || decision == models.ApprovalCompleted:
			g.Authorized = append(g.Authorized, f)
		case decision == models.ApprovalDeclined:
			g.Declined = append(g.Declined, f)
		case f.Severity == models.SeverityRed:
			g.Red = append(g.Red, f)
		case f.Severity == models.SeverityAmber:
			g.Amber = append(g.Amber, f)
		default:
			g.Green = append(g.Green, f)
			if f.Severity == models.SeverityGrey {
				g.Grey = append(g.Grey, f)
			}
		}
	}

	sortBySeverity(g.Authorized)
	sortBySeverity(g.Declined)
	return g
}

var severityRank = map[string]int{
	models.SeverityRed:   0,
	models.SeverityAmber: 1,
	models.SeverityGreen: 2,
	models.SeverityGrey:  3,
}

func sortBySeverity(findings []models.Finding) {
	sort.SliceStable(findings, func(i, j int) bool {
		return severityRank[findings[i].Severity] < severityRank[findings[j].Severity]
	})
}

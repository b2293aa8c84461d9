package vhc

import (
	"strings"

	"github.com/millbrook/garage-vhc/internal/models"
)

// ClassifySeverity maps free-form status text to a severity. Matching is a
// case-insensitive substring check; anything unrecognized is grey. Grey is
// the terminal default, never a match that stops the precedence chain.
func ClassifySeverity(text string) string {
	t := strings.ToLower(text)
	switch {
	case strings.Contains(t, "red"):
		return models.SeverityRed
	case strings.Contains(t, "amber"), strings.Contains(t, "yellow"), strings.Contains(t, "orange"):
		return models.SeverityAmber
	case strings.Contains(t, "green"), strings.Contains(t, "good"), strings.Contains(t, "pass"):
		return models.SeverityGreen
	default:
		return models.SeverityGrey
	}
}

// DeriveSeverity resolves the severity of a payload-backed finding.
//
// Sources are checked in strict precedence order, stopping at the first
// non-grey result. The override row's explicit severity column always wins
// over its display_status: legacy data reuses display_status to encode
// severity, but authorizing an item must never erase the recorded red or
// amber condition.
func DeriveSeverity(item *models.ChecksheetItem, section *models.ChecksheetSection, check *models.VhcCheck) string {
	if check != nil {
		if s := classifyNonEmpty(check.Severity); s != models.SeverityGrey {
			return s
		}
		if s := classifyNonEmpty(check.DisplayStatus); s != models.SeverityGrey {
			return s
		}
	}

	// Item status or colour beats the parent section's.
	for _, hint := range []string{item.Status, item.Colour, section.Status, section.Colour} {
		if s := classifyNonEmpty(hint); s != models.SeverityGrey {
			return s
		}
	}

	for _, hint := range item.ConcernStatuses {
		if s := classifyNonEmpty(hint); s != models.SeverityGrey {
			return s
		}
	}
	for _, hint := range item.RowStatuses {
		if s := classifyNonEmpty(hint); s != models.SeverityGrey {
			return s
		}
	}

	// Fuzzy fallback over the surrounding text.
	return ClassifySeverity(section.Name + " " + item.Heading)
}

// DeriveOverrideSeverity resolves the severity of a database-only finding,
// where no checksheet item exists: severity column, then display_status,
// then the fuzzy text fallback.
func DeriveOverrideSeverity(check *models.VhcCheck) string {
	if s := classifyNonEmpty(check.Severity); s != models.SeverityGrey {
		return s
	}
	if s := classifyNonEmpty(check.DisplayStatus); s != models.SeverityGrey {
		return s
	}
	return ClassifySeverity(check.Section + " " + check.IssueTitle)
}

func classifyNonEmpty(text string) string {
	if strings.TrimSpace(text) == "" {
		return models.SeverityGrey
	}
	return ClassifySeverity(text)
}

// NormalizeApproval maps a stored approval_status value to one of the four
// decision states, defaulting to pending.
func NormalizeApproval(status string) string {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "authorized", "authorised", "approved":
		return models.ApprovalAuthorized
	case "completed", "complete", "done":
		return models.ApprovalCompleted
	case "declined", "rejected":
		return models.ApprovalDeclined
	default:
		return models.ApprovalPending
	}
}

package vhc

import (
	"testing"

	"github.com/millbrook/garage-vhc/internal/models"
)

func TestClassifySeverity(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{name: "red", text: "RED", want: models.SeverityRed},
		{name: "red embedded", text: "urgent - red work", want: models.SeverityRed},
		{name: "amber", text: "Amber", want: models.SeverityAmber},
		{name: "yellow maps to amber", text: "yellow", want: models.SeverityAmber},
		{name: "orange maps to amber", text: "Orange advisory", want: models.SeverityAmber},
		{name: "green", text: "green", want: models.SeverityGreen},
		{name: "good maps to green", text: "Good condition", want: models.SeverityGreen},
		{name: "pass maps to green", text: "PASS", want: models.SeverityGreen},
		{name: "unknown defaults to grey", text: "checked", want: models.SeverityGrey},
		{name: "empty defaults to grey", text: "", want: models.SeverityGrey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifySeverity(tt.text)
			if got != tt.want {
				t.Errorf("ClassifySeverity(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestDeriveSeverityPrecedence(t *testing.T) {
	plainSection := &models.ChecksheetSection{Name: "Brakes"}
	greenSection := &models.ChecksheetSection{Name: "Brakes", Status: "green"}

	tests := []struct {
		name    string
		item    models.ChecksheetItem
		section *models.ChecksheetSection
		check   *models.VhcCheck
		want    string
	}{
		{
			name: "explicit severity column never shadowed by approval status",
			item: models.ChecksheetItem{Heading: "Front pads"},
			check: &models.VhcCheck{
				Severity:      "red",
				DisplayStatus: "authorized",
			},
			want: models.SeverityRed,
		},
		{
			name: "display status used when severity column empty",
			item: models.ChecksheetItem{Heading: "Front pads"},
			check: &models.VhcCheck{
				DisplayStatus: "amber",
			},
			want: models.SeverityAmber,
		},
		{
			name: "unclassifiable severity column falls through to display status",
			item: models.ChecksheetItem{Heading: "Front pads"},
			check: &models.VhcCheck{
				Severity:      "n/a",
				DisplayStatus: "red",
			},
			want: models.SeverityRed,
		},
		{
			name:    "item status beats section status",
			item:    models.ChecksheetItem{Heading: "Front pads", Status: "red"},
			section: greenSection,
			want:    models.SeverityRed,
		},
		{
			name:    "item colour consulted after item status",
			item:    models.ChecksheetItem{Heading: "Front pads", Status: "checked", Colour: "amber"},
			section: greenSection,
			want:    models.SeverityAmber,
		},
		{
			name:    "section status used when item has none",
			item:    models.ChecksheetItem{Heading: "Front pads"},
			section: greenSection,
			want:    models.SeverityGreen,
		},
		{
			name:    "section status terminates before concerns",
			item:    models.ChecksheetItem{Heading: "Front pads", ConcernStatuses: []string{"red"}},
			section: greenSection,
			want:    models.SeverityGreen,
		},
		{
			name: "concern status consulted",
			item: models.ChecksheetItem{
				Heading:         "Front pads",
				ConcernStatuses: []string{"noted", "amber"},
			},
			want: models.SeverityAmber,
		},
		{
			name: "row status consulted after concerns",
			item: models.ChecksheetItem{
				Heading:         "Front pads",
				ConcernStatuses: []string{"noted"},
				RowStatuses:     []string{"red"},
			},
			want: models.SeverityRed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			section := tt.section
			if section == nil {
				section = plainSection
			}
			got := DeriveSeverity(&tt.item, section, tt.check)
			if got != tt.want {
				t.Errorf("DeriveSeverity() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDeriveSeverityFuzzyFallback(t *testing.T) {
	section := &models.ChecksheetSection{Name: "Advisory - amber items"}
	item := &models.ChecksheetItem{Heading: "Wiper blades"}

	if got := DeriveSeverity(item, section, nil); got != models.SeverityAmber {
		t.Errorf("DeriveSeverity() = %v, want amber from section text", got)
	}
}

func TestDeriveSeverityGreyTerminal(t *testing.T) {
	section := &models.ChecksheetSection{Name: "Interior"}
	item := &models.ChecksheetItem{Heading: "Horn"}

	if got := DeriveSeverity(item, section, nil); got != models.SeverityGrey {
		t.Errorf("DeriveSeverity() = %v, want grey when no source matches", got)
	}
}

func TestDeriveOverrideSeverity(t *testing.T) {
	tests := []struct {
		name  string
		check models.VhcCheck
		want  string
	}{
		{
			name:  "severity column first",
			check: models.VhcCheck{Severity: "Red", DisplayStatus: "green"},
			want:  models.SeverityRed,
		},
		{
			name:  "display status second",
			check: models.VhcCheck{DisplayStatus: "green"},
			want:  models.SeverityGreen,
		},
		{
			name:  "fuzzy text fallback",
			check: models.VhcCheck{Section: "Brakes", IssueTitle: "Amber wear on discs"},
			want:  models.SeverityAmber,
		},
		{
			name:  "grey when nothing matches",
			check: models.VhcCheck{Section: "Brakes", IssueTitle: "Discs"},
			want:  models.SeverityGrey,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeriveOverrideSeverity(&tt.check)
			if got != tt.want {
				t.Errorf("DeriveOverrideSeverity() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNormalizeApproval(t *testing.T) {
	tests := []struct {
		status string
		want   string
	}{
		{status: "authorized", want: models.ApprovalAuthorized},
		{status: "Authorised", want: models.ApprovalAuthorized},
		{status: "approved", want: models.ApprovalAuthorized},
		{status: "completed", want: models.ApprovalCompleted},
		{status: "declined", want: models.ApprovalDeclined},
		{status: "rejected", want: models.ApprovalDeclined},
		{status: "", want: models.ApprovalPending},
		{status: "anything else", want: models.ApprovalPending},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			got := NormalizeApproval(tt.status)
			if got != tt.want {
				t.Errorf("NormalizeApproval(%q) = %v, want %v", tt.status, got, tt.want)
			}
		})
	}
}

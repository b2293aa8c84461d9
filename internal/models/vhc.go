package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Finding is one reconciled inspection item: the merge of a checksheet
// entry, its override row (if any) and the parts lines that reference it.
// Findings are derived on every read and never persisted.
type Finding struct {
	ID             string          `json:"id"`
	Label          string          `json:"label"`
	SectionName    string          `json:"section_name"`
	Category       string          `json:"category"`
	Notes          string          `json:"notes,omitempty"`
	Measurement    string          `json:"measurement,omitempty"`
	Severity       string          `json:"severity"`
	ApprovalStatus string          `json:"approval_status"`
	LabourHours    float64         `json:"labour_hours"`
	PartsCost      decimal.Decimal `json:"parts_cost"`
	TotalOverride  decimal.Decimal `json:"total_override,omitempty"`
	Total          decimal.Decimal `json:"total"`
	Source         string          `json:"source"`
}

// VhcCheck is the persisted override row for one inspection item. It is
// the only durable state the engine mutates: the approval decision plus
// any manually entered severity, hours and costs.
type VhcCheck struct {
	ID             string          `json:"id"` // canonical item id
	JobID          string          `json:"job_id"`
	Section        string          `json:"section"`
	IssueTitle     string          `json:"issue_title"`
	Severity       string          `json:"severity,omitempty"`
	DisplayStatus  string          `json:"display_status,omitempty"`
	ApprovalStatus string          `json:"approval_status,omitempty"`
	LabourHours    float64         `json:"labour_hours"`
	PartsCost      decimal.Decimal `json:"parts_cost"`
	TotalOverride  decimal.Decimal `json:"total_override"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// VhcAlias maps a synthesized display id (section+heading+index) to the
// canonical vhc_checks id once an override row exists for the item.
type VhcAlias struct {
	JobID       string    `json:"job_id"`
	DisplayID   string    `json:"display_id"`
	CanonicalID string    `json:"canonical_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// PartsLine is one parts-order line, optionally attached to a VHC item.
type PartsLine struct {
	ID          string          `json:"id"`
	JobID       string          `json:"job_id"`
	VhcItemID   string          `json:"vhc_item_id,omitempty"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LabourHours float64         `json:"labour_hours"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Severity constants
const (
	SeverityRed   = "red"
	SeverityAmber = "amber"
	SeverityGreen = "green"
	SeverityGrey  = "grey"
)

// Approval status constants
const (
	ApprovalPending    = "pending"
	ApprovalAuthorized = "authorized"
	ApprovalCompleted  = "completed"
	ApprovalDeclined   = "declined"
)

// Finding source constants
const (
	SourcePayload  = "payload"
	SourceDatabase = "database"
)

// Category constants, derived from the originating section name
const (
	CategoryWheelsTyres        = "wheels_tyres"
	CategoryBrakesHubs         = "brakes_hubs"
	CategoryServiceIndicator   = "service_indicator"
	CategoryExternalInspection = "external_inspection"
	CategoryInternalElectrics  = "internal_electrics"
	CategoryUnderside          = "underside"
	CategoryOther              = "other"
)

// SectionSentinelChecksheet marks the vhc_checks row that stores checksheet
// metadata rather than a real inspection item; it never becomes a Finding.
const SectionSentinelChecksheet = "VHC_CHECKSHEET"

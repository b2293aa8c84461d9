package models

import "time"

// Job represents a workshop job card. The VHC engine only needs the id to
// scope its snapshot; the remaining fields exist for the job listing API.
type Job struct {
	ID           string     `json:"id"`
	VehicleReg   string     `json:"vehicle_reg"`
	CustomerName string     `json:"customer_name"`
	Status       string     `json:"status"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Job status constants
const (
	JobStatusOpen         = "OPEN"
	JobStatusInspecting   = "INSPECTING"
	JobStatusAwaitingAuth = "AWAITING_AUTHORISATION"
	JobStatusInProgress   = "IN_PROGRESS"
	JobStatusComplete     = "COMPLETE"
	JobStatusInvoiced     = "INVOICED"
)

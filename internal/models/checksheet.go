package models

import (
	"encoding/json"
	"strings"
)

// Checksheet is the normalized form of the technician-authored inspection
// payload. The wire format is loosely typed (field names drifted across
// checksheet template versions), so all fallback resolution happens once
// here; downstream derivation only ever sees the normalized shape.
type Checksheet struct {
	Sections []ChecksheetSection `json:"sections"`
}

// ChecksheetSection is one inspection section (e.g. "Brakes", "Wheels & Tyres").
type ChecksheetSection struct {
	Name   string           `json:"name"`
	Status string           `json:"status,omitempty"`
	Colour string           `json:"colour,omitempty"`
	Items  []ChecksheetItem `json:"items"`
}

// ChecksheetItem is one inspected item within a section.
type ChecksheetItem struct {
	VhcID           string   `json:"vhc_id,omitempty"`
	Heading         string   `json:"heading"`
	Status          string   `json:"status,omitempty"`
	Colour          string   `json:"colour,omitempty"`
	Notes           string   `json:"notes,omitempty"`
	Measurement     string   `json:"measurement,omitempty"`
	ConcernStatuses []string `json:"concern_statuses,omitempty"`
	RowStatuses     []string `json:"row_statuses,omitempty"`
}

// Wire shapes. Older templates use label/name instead of heading, color
// instead of colour, reading instead of measurement.
type rawChecksheet struct {
	Sections []rawSection `json:"sections"`
}

type rawSection struct {
	Name   string    `json:"name"`
	Title  string    `json:"title"`
	Status string    `json:"status"`
	Colour string    `json:"colour"`
	Color  string    `json:"color"`
	Items  []rawItem `json:"items"`
}

type rawItem struct {
	VhcID       string     `json:"vhc_id"`
	Heading     string     `json:"heading"`
	Label       string     `json:"label"`
	Name        string     `json:"name"`
	Status      string     `json:"status"`
	Colour      string     `json:"colour"`
	Color       string     `json:"color"`
	Notes       string     `json:"notes"`
	Description string     `json:"description"`
	Measurement string     `json:"measurement"`
	Reading     string     `json:"reading"`
	Concerns    []rawEntry `json:"concerns"`
	Rows        []rawEntry `json:"rows"`
}

type rawEntry struct {
	Status string `json:"status"`
	Colour string `json:"colour"`
	Color  string `json:"color"`
}

// ParseChecksheet normalizes a raw checksheet payload. A malformed payload
// is not an error at this layer: it yields an empty checksheet so that
// override-sourced findings can still be derived. The returned error is
// informational (for logging) and always accompanies a usable value.
func ParseChecksheet(data []byte) (*Checksheet, error) {
	cs := &Checksheet{}
	if len(data) == 0 {
		return cs, nil
	}

	var raw rawChecksheet
	if err := json.Unmarshal(data, &raw); err != nil {
		return cs, err
	}

	for _, rs := range raw.Sections {
		section := ChecksheetSection{
			Name:   firstNonEmpty(rs.Name, rs.Title),
			Status: rs.Status,
			Colour: firstNonEmpty(rs.Colour, rs.Color),
		}
		for _, ri := range rs.Items {
			item := ChecksheetItem{
				VhcID:       strings.TrimSpace(ri.VhcID),
				Heading:     firstNonEmpty(ri.Heading, ri.Label, ri.Name),
				Status:      ri.Status,
				Colour:      firstNonEmpty(ri.Colour, ri.Color),
				Notes:       firstNonEmpty(ri.Notes, ri.Description),
				Measurement: firstNonEmpty(ri.Measurement, ri.Reading),
			}
			for _, c := range ri.Concerns {
				if s := firstNonEmpty(c.Status, c.Colour, c.Color); s != "" {
					item.ConcernStatuses = append(item.ConcernStatuses, s)
				}
			}
			for _, r := range ri.Rows {
				if s := firstNonEmpty(r.Status, r.Colour, r.Color); s != "" {
					item.RowStatuses = append(item.RowStatuses, s)
				}
			}
			section.Items = append(section.Items, item)
		}
		cs.Sections = append(cs.Sections, section)
	}

	return cs, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

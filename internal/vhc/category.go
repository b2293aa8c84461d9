package vhc

import (
	"strings"

	"github.com/millbrook/garage-vhc/internal/models"
)

// CategoryForSection maps a checksheet section name to a reporting category.
func CategoryForSection(name string) string {
	n := strings.ToLower(name)
	switch {
	case strings.Contains(n, "wheel"), strings.Contains(n, "tyre"), strings.Contains(n, "tire"):
		return models.CategoryWheelsTyres
	case strings.Contains(n, "brake"), strings.Contains(n, "hub"):
		return models.CategoryBrakesHubs
	case strings.Contains(n, "service"):
		return models.CategoryServiceIndicator
	case strings.Contains(n, "external"), strings.Contains(n, "exterior"):
		return models.CategoryExternalInspection
	case strings.Contains(n, "internal"), strings.Contains(n, "interior"), strings.Contains(n, "electric"):
		return models.CategoryInternalElectrics
	case strings.Contains(n, "underside"), strings.Contains(n, "under body"), strings.Contains(n, "undercarriage"):
		return models.CategoryUnderside
	default:
		return models.CategoryOther
	}
}

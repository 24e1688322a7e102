package presentation

import "strings"

type SeverityCategory string

const (
	CategoryHigh    SeverityCategory = "high"
	CategoryMedium  SeverityCategory = "medium"
	CategoryLow     SeverityCategory = "low"
	CategoryNeutral SeverityCategory = "neutral"
)

// SeverityStyle carries the color tokens of an alert severity plus their hex values for
// renderers that need concrete colors.
type SeverityStyle struct {
	Category      SeverityCategory `json:"category"`
	Color         string           `json:"color"`
	Background    string           `json:"background"`
	ColorHex      string           `json:"color_hex"`
	BackgroundHex string           `json:"background_hex"`
}

var severityStyles = map[SeverityCategory]SeverityStyle{
	CategoryHigh:    {Category: CategoryHigh, Color: "red", Background: "light-red", ColorHex: "#dc2626", BackgroundHex: "#fef2f2"},
	CategoryMedium:  {Category: CategoryMedium, Color: "amber", Background: "light-amber", ColorHex: "#d97706", BackgroundHex: "#fffbeb"},
	CategoryLow:     {Category: CategoryLow, Color: "blue", Background: "light-blue", ColorHex: "#2563eb", BackgroundHex: "#dbeafe"},
	CategoryNeutral: {Category: CategoryNeutral, Color: "neutral-gray", Background: "default", ColorHex: "#6b7280", BackgroundHex: "#f3f4f6"},
}

// Classify maps any severity string to its style. Unrecognized values get the neutral style.
func Classify(severity string) SeverityStyle {
	switch SeverityCategory(strings.ToLower(strings.TrimSpace(severity))) {
	case CategoryHigh:
		return severityStyles[CategoryHigh]
	case CategoryMedium:
		return severityStyles[CategoryMedium]
	case CategoryLow:
		return severityStyles[CategoryLow]
	default:
		return severityStyles[CategoryNeutral]
	}
}

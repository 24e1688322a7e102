package presentation

import (
	"fmt"
	"strings"
	"time"

	"github.com/kirillkom/ledger-dashboard/internal/core/domain"
)

const (
	DefaultTopN          = 5
	DefaultRiskThreshold = 0.7
	DefaultDateLayout    = "2006-01-02"
)

// Options tune render-time derivations. The zero value is usable: missing fields fall back
// to the defaults above and the local time zone.
type Options struct {
	TopN          int
	RiskThreshold float64
	Location      *time.Location
	DateLayout    string
	Version       string
}

func DefaultOptions() Options {
	return Options{
		TopN:          DefaultTopN,
		RiskThreshold: DefaultRiskThreshold,
		Location:      time.Local,
		DateLayout:    DefaultDateLayout,
		Version:       DefaultVersion,
	}
}

func (o Options) normalized() Options {
	if o.TopN <= 0 {
		o.TopN = DefaultTopN
	}
	if o.RiskThreshold <= 0 || o.RiskThreshold >= 1 {
		o.RiskThreshold = DefaultRiskThreshold
	}
	if o.Location == nil {
		o.Location = time.Local
	}
	if strings.TrimSpace(o.DateLayout) == "" {
		o.DateLayout = DefaultDateLayout
	}
	if strings.TrimSpace(o.Version) == "" {
		o.Version = DefaultVersion
	}
	return o
}

// TopN returns at most n leading items in their original order.
func TopN[T any](items []T, n int) []T {
	if n < 0 {
		n = 0
	}
	if len(items) <= n {
		return items
	}
	return items[:n]
}

// Risk is the rendered anomaly score. Present is false for documents not yet analyzed.
type Risk struct {
	Present  bool    `json:"present"`
	Score    float64 `json:"score,omitempty"`
	Label    string  `json:"label,omitempty"`
	Elevated bool    `json:"elevated"`
}

// FormatRisk renders a score as a one-decimal percentage. A score of exactly zero is an
// analyzed document with no risk and still renders.
func FormatRisk(score *float64, threshold float64) Risk {
	if score == nil {
		return Risk{}
	}
	return Risk{
		Present:  true,
		Score:    *score,
		Label:    fmt.Sprintf("%.1f%%", *score*100),
		Elevated: *score > threshold,
	}
}

// StatusBadge uppercases known statuses and passes anything else through unchanged.
func StatusBadge(status domain.DocumentStatus) string {
	switch domain.DocumentStatus(strings.ToLower(strings.TrimSpace(string(status)))) {
	case domain.StatusProcessed:
		return "PROCESSED"
	case domain.StatusPending:
		return "PENDING"
	default:
		return string(status)
	}
}

// FormatDate renders the calendar date of ts in loc. Values that never parsed are shown as
// received.
func FormatDate(ts domain.Timestamp, loc *time.Location, layout string) string {
	if !ts.Valid() {
		return ts.Raw
	}
	if loc == nil {
		loc = time.Local
	}
	if layout == "" {
		layout = DefaultDateLayout
	}
	return ts.Time.In(loc).Format(layout)
}

package domain

type DocumentStatus string

const (
	StatusPending   DocumentStatus = "pending"
	StatusProcessed DocumentStatus = "processed"
)

// Document is one ingested document as listed by the backend.
// AnomalyScore is nil until analysis has run.
type Document struct {
	ID           ID             `json:"id"`
	Filename     string         `json:"filename"`
	DocHash      string         `json:"doc_hash,omitempty"`
	Tag          string         `json:"tag"`
	Status       DocumentStatus `json:"status"`
	CreatedAt    Timestamp      `json:"created_at"`
	AnomalyScore *float64       `json:"anomaly_score"`
}

type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

// Alert is one generated alert. Severity is kept as received; unknown values are
// handled by the presentation layer.
type Alert struct {
	ID              ID        `json:"id"`
	DocumentID      ID        `json:"document_id,omitempty"`
	AlertType       string    `json:"alert_type,omitempty"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	Severity        Severity  `json:"severity"`
	ConfidenceScore *float64  `json:"confidence_score,omitempty"`
	Status          string    `json:"status,omitempty"`
	CreatedAt       Timestamp `json:"created_at"`
}

type DocumentStats struct {
	Total     int `json:"total"`
	Pending   int `json:"pending"`
	Processed int `json:"processed"`
}

type AlertStats struct {
	Total  int `json:"total"`
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
}

type StatsSnapshot struct {
	Documents DocumentStats `json:"documents"`
	Alerts    AlertStats    `json:"alerts"`
}

// Consistent reports whether the totals match their breakdowns.
func (s StatsSnapshot) Consistent() bool {
	return s.Documents.Total == s.Documents.Pending+s.Documents.Processed &&
		s.Alerts.Total == s.Alerts.High+s.Alerts.Medium+s.Alerts.Low
}

// Snapshot is the result of one fetch cycle: all three collections from the same cycle.
type Snapshot struct {
	Stats     StatsSnapshot `json:"stats"`
	Documents []Document    `json:"documents"`
	Alerts    []Alert       `json:"alerts"`
}

func (s Snapshot) Clone() Snapshot {
	out := Snapshot{Stats: s.Stats}
	out.Documents = make([]Document, len(s.Documents))
	for i, doc := range s.Documents {
		if doc.AnomalyScore != nil {
			score := *doc.AnomalyScore
			doc.AnomalyScore = &score
		}
		out.Documents[i] = doc
	}
	out.Alerts = make([]Alert, len(s.Alerts))
	for i, alert := range s.Alerts {
		if alert.ConfidenceScore != nil {
			score := *alert.ConfidenceScore
			alert.ConfidenceScore = &score
		}
		out.Alerts[i] = alert
	}
	return out
}

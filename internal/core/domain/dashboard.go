package domain

import "time"

type HealthStatus string

const (
	HealthUnknown  HealthStatus = "unknown"
	HealthHealthy  HealthStatus = "healthy"
	HealthDegraded HealthStatus = "degraded"
)

type Health struct {
	Status    HealthStatus      `json:"status"`
	Services  map[string]string `json:"services,omitempty"`
	CheckedAt time.Time         `json:"checked_at,omitempty"`
}

// ViewState is the aggregate dashboard state. Stats, Documents and Alerts always come
// from the same fetch cycle (Cycle).
type ViewState struct {
	Stats     StatsSnapshot `json:"stats"`
	Documents []Document    `json:"documents"`
	Alerts    []Alert       `json:"alerts"`

	Loading      bool          `json:"loading"`
	Uploading    bool          `json:"uploading"`
	UploadState  UploadState   `json:"upload_state"`
	SelectedFile *SelectedFile `json:"selected_file,omitempty"`
	UploadLimits UploadLimits  `json:"upload_limits"`

	Health         Health    `json:"health"`
	Cycle          uint64    `json:"cycle"`
	RefreshedAt    time.Time `json:"refreshed_at,omitempty"`
	LastFetchError string    `json:"last_fetch_error,omitempty"`
}

func NewViewState(limits UploadLimits) ViewState {
	return ViewState{
		Documents:    []Document{},
		Alerts:       []Alert{},
		Loading:      true,
		UploadState:  UploadIdle,
		UploadLimits: limits,
		Health:       Health{Status: HealthUnknown},
	}
}

// Snapshot returns the three backend collections of the view.
func (v ViewState) Snapshot() Snapshot {
	return Snapshot{Stats: v.Stats, Documents: v.Documents, Alerts: v.Alerts}
}

package ports

import "time"

// DashboardObserver receives lifecycle events for metrics. Implementations must be
// safe for concurrent use.
type DashboardObserver interface {
	ObserveFetchCycle(outcome string, duration time.Duration)
	ObserveStaleCycle(outcome string)
	ObserveUpload(outcome string, duration time.Duration)
	SetUploadInFlight(inFlight bool)
}

type NopObserver struct{}

func (NopObserver) ObserveFetchCycle(string, time.Duration) {}
func (NopObserver) ObserveStaleCycle(string)                {}
func (NopObserver) ObserveUpload(string, time.Duration)     {}
func (NopObserver) SetUploadInFlight(bool)                  {}

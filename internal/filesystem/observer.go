package filesystem

import "sync"

// Observer records filesystem operation metrics. Implementations are provided
// by the metrics package to break the import cycle between filesystem and metrics.
type Observer interface {
	// ObserveOperation records duration and error status for one logical
	// operation ("stat", "open", "readdir"), including any retries.
	ObserveOperation(operation string, durationSeconds float64, err error)

	ObserveRetryAttempt(operation string)
	ObserveRetrySuccess(operation string)
	ObserveRetryFailure(operation string)
	ObserveStaleError(operation string)
}

var (
	observerMu      sync.RWMutex
	defaultObserver Observer
)

// SetObserver sets the package-level metrics observer.
// Call this once at startup after creating the observer implementation.
func SetObserver(o Observer) {
	observerMu.Lock()
	defer observerMu.Unlock()
	defaultObserver = o
}

// nopObserver is used when no observer has been installed.
type nopObserver struct{}

func (nopObserver) ObserveOperation(string, float64, error) {}
func (nopObserver) ObserveRetryAttempt(string)              {}
func (nopObserver) ObserveRetrySuccess(string)              {}
func (nopObserver) ObserveRetryFailure(string)              {}
func (nopObserver) ObserveStaleError(string)                {}

func observe() Observer {
	observerMu.RLock()
	defer observerMu.RUnlock()
	if defaultObserver == nil {
		return nopObserver{}
	}
	return defaultObserver
}

package indexer

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"media-calendar/internal/logging"
	"media-calendar/internal/metrics"
)

// DefaultWarmUp is the delay between scheduler start and the first scan.
const DefaultWarmUp = 10 * time.Second

// State is the scheduler lifecycle state.
type State int32

const (
	// StateIdle waits for the next scan.
	StateIdle State = iota
	// StateScanning has a scan in flight.
	StateScanning
	// StateShutdown has stopped for good.
	StateShutdown
)

var stateNames = []string{"idle", "scanning", "shutdown"}

func (s State) String() string {
	if int(s) >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

// Scanner runs one scan.
type Scanner interface {
	Scan(ctx context.Context) (Summary, error)
}

// IntervalSource supplies the pause between scans. It is consulted after
// every scan so configuration changes apply without a restart.
type IntervalSource interface {
	Interval() time.Duration
}

// FixedInterval is a constant IntervalSource.
type FixedInterval time.Duration

// Interval returns the duration itself.
func (f FixedInterval) Interval() time.Duration { return time.Duration(f) }

// Scheduler runs scans after a warm-up delay and then once per interval
// until its context is cancelled.
type Scheduler struct {
	scanner  Scanner
	warmUp   time.Duration
	interval IntervalSource

	state   atomic.Int32
	trigger chan struct{}
}

// NewScheduler creates a scheduler in the idle state.
func NewScheduler(scanner Scanner, warmUp time.Duration, interval IntervalSource) *Scheduler {
	s := &Scheduler{
		scanner:  scanner,
		warmUp:   warmUp,
		interval: interval,
		trigger:  make(chan struct{}, 1),
	}
	s.setState(StateIdle)
	return s
}

// State returns the current state.
func (s *Scheduler) State() State {
	return State(s.state.Load())
}

func (s *Scheduler) setState(st State) {
	s.state.Store(int32(st))
	metrics.SetSchedulerState(st.String(), stateNames)
}

// Trigger wakes an idle scheduler so the next scan starts now. It returns
// ErrScanInProgress while a scan is running.
func (s *Scheduler) Trigger() error {
	if s.State() == StateScanning {
		return ErrScanInProgress
	}
	select {
	case s.trigger <- struct{}{}:
	default:
	}
	return nil
}

// Run blocks until ctx is cancelled. Scan failures and panics are logged and
// never stop the loop.
func (s *Scheduler) Run(ctx context.Context) {
	defer s.setState(StateShutdown)

	logging.Info("Scan scheduler started (warm-up %v)", s.warmUp)
	if !s.sleep(ctx, s.warmUp) {
		logging.Info("Scan scheduler stopped")
		return
	}

	for {
		s.runOnce(ctx)
		if ctx.Err() != nil {
			break
		}

		s.setState(StateIdle)
		interval := s.interval.Interval()
		logging.Debug("Next scan in %v", interval)
		if !s.sleep(ctx, interval) {
			break
		}
	}

	logging.Info("Scan scheduler stopped")
}

// sleep waits for d, a trigger or cancellation. It reports false when ctx is done.
func (s *Scheduler) sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	case <-s.trigger:
		logging.Info("Scan triggered manually")
		return true
	}
}

func (s *Scheduler) runOnce(ctx context.Context) {
	s.setState(StateScanning)

	defer func() {
		if r := recover(); r != nil {
			logging.Error("Scan panicked: %v", r)
			metrics.IndexerRunsTotal.WithLabelValues("error").Inc()
		}
	}()

	_, err := s.scanner.Scan(ctx)
	switch {
	case err == nil:
	case errors.Is(err, context.Canceled):
		logging.Info("Scan interrupted by shutdown")
	case errors.Is(err, ErrScanInProgress):
		logging.Info("Scan already in progress, skipping scheduled run")
	default:
		logging.Error("Scan failed: %v", err)
	}
}

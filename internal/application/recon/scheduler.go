package recon

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// ErrRunInProgress is returned by TriggerNow when a run is already executing.
var ErrRunInProgress = errors.New("reconciliation run already in progress")

// Runner executes one reconciliation run. *Orchestrator satisfies it.
type Runner interface {
	Run(ctx context.Context, trigger string) (*Summary, error)
}

// Scheduler drives reconciliation runs on a fixed interval with at most one
// run executing at a time. A tick that fires while a run is still in progress
// is skipped, not queued — this bounds external API load and keeps two runs
// from racing for the same transaction. The same mutex guards manual triggers
// so an admin-initiated run can never overlap a scheduled one either.
type Scheduler struct {
	runner   Runner
	interval time.Duration
	logger   *slog.Logger

	runMu sync.Mutex

	startOnce sync.Once
	stopOnce  sync.Once
	cancel    context.CancelFunc
	done      chan struct{}
}

// NewScheduler creates a scheduler around the given runner.
func NewScheduler(runner Runner, interval time.Duration, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}

	return &Scheduler{
		runner:   runner,
		interval: interval,
		logger:   logger,
		done:     make(chan struct{}),
	}
}

// Start launches the background ticker loop. Safe to call once.
func (s *Scheduler) Start() {
	s.startOnce.Do(func() {
		ctx, cancel := context.WithCancel(context.Background())
		s.cancel = cancel

		go s.loop(ctx)

		s.logger.Info("reconciliation scheduler started", "interval", s.interval)
	})
}

// Stop cancels the loop and blocks until it has fully exited.
// An in-flight run finishes; no new run starts.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		if s.cancel == nil {
			close(s.done)
			return
		}
		s.cancel()
		<-s.done
		s.logger.Info("reconciliation scheduler stopped")
	})
}

// TriggerNow runs a manual reconciliation immediately, with the same
// mutual exclusion as scheduled ticks. Returns ErrRunInProgress instead of
// waiting when a run is already executing.
func (s *Scheduler) TriggerNow(ctx context.Context) (*Summary, error) {
	if !s.runMu.TryLock() {
		return nil, ErrRunInProgress
	}
	defer s.runMu.Unlock()

	return s.runner.Run(ctx, TriggerManual)
}

// loop is the single background worker driving sequential runs.
func (s *Scheduler) loop(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

// tick executes one scheduled run, skipping if one is already in flight.
// A panicking run is recovered and logged; the schedule must survive any
// single run's fault.
func (s *Scheduler) tick(ctx context.Context) {
	if !s.runMu.TryLock() {
		s.logger.Debug("previous run still in progress, skipping tick")
		return
	}
	defer s.runMu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("reconciliation run panicked", "panic", r)
		}
	}()

	summary, err := s.runner.Run(ctx, TriggerSchedule)
	if err != nil {
		s.logger.Warn("reconciliation run failed",
			"scanned", summaryScanned(summary),
			"error", err,
		)
		return
	}

	if summary.Scanned > 0 {
		s.logger.Info("reconciliation run completed",
			"scanned", summary.Scanned,
			"matched", summary.Matched,
			"failed", summary.Failed,
		)
	}
}

func summaryScanned(s *Summary) int {
	if s == nil {
		return 0
	}
	return s.Scanned
}

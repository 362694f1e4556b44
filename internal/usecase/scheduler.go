package usecase

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"SignalForge/internal/domain/models"
	domrepo "SignalForge/internal/domain/repository"
	"SignalForge/pkg/logger"
)

// CycleRunner executes one full analysis cycle. Implemented by Orchestrator.
type CycleRunner interface {
	RunCycle(ctx context.Context) models.CycleRecord
}

// ErrCycleInFlight is returned when a manual trigger races a cycle that is
// already executing.
var ErrCycleInFlight = errors.New("a cycle is already in flight")

// ErrSchedulerStopped is returned when a manual trigger arrives while the
// scheduler loop is not running.
var ErrSchedulerStopped = errors.New("scheduler is stopped")

// Scheduler drives the orchestrator on a fixed interval. It is an explicit
// two-state machine: Idle (no loop goroutine) and Running (loop goroutine
// alive). Cycles are single-flight: a tick that lands while the previous
// cycle is still executing is skipped, never queued.
type Scheduler struct {
	runner   CycleRunner
	store    domrepo.StateWriter
	interval time.Duration
	logger   *logger.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}

	inFlight atomic.Bool
}

func NewScheduler(runner CycleRunner, store domrepo.StateWriter, interval time.Duration, log *logger.Logger) *Scheduler {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &Scheduler{
		runner:   runner,
		store:    store,
		interval: interval,
		logger:   log,
	}
}

// Start moves Idle -> Running and kicks off an immediate first cycle. The
// loop owns its own context so a caller's cancellation cannot tear it down;
// only Stop does. Calling Start while already Running is a no-op.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		return
	}

	loopCtx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})
	s.store.SetRunning(true)
	s.logger.Info("scheduler started", logger.Duration("interval", s.interval))

	go s.loop(loopCtx, s.done)
}

// Stop moves Running -> Idle. Cancellation reaches only the tick loop, never
// a cycle: the in-flight cycle, if any, runs to completion on its own
// context, and Stop blocks until the loop goroutine has exited. Calling Stop
// while Idle is a no-op.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.cancel == nil {
		s.mu.Unlock()
		return
	}
	cancel := s.cancel
	done := s.done
	s.cancel = nil
	s.done = nil
	s.mu.Unlock()

	cancel()
	<-done
	s.store.SetRunning(false)
	s.logger.Info("scheduler stopped")
}

// Running reports the scheduler state.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cancel != nil
}

// TriggerOnce runs one cycle outside the schedule, sharing the single-flight
// guard with the loop. It requires the scheduler to be Running so manual
// cycles observe the same lifecycle as scheduled ones. The cycle runs on the
// scheduler's own cycle context, never the caller's, so a disconnecting HTTP
// client cannot abort it mid-flight.
func (s *Scheduler) TriggerOnce() error {
	if !s.Running() {
		return ErrSchedulerStopped
	}
	if !s.inFlight.CompareAndSwap(false, true) {
		return ErrCycleInFlight
	}
	defer s.inFlight.Store(false)

	s.runner.RunCycle(s.cycleContext())
	return nil
}

// cycleContext is the context every cycle runs on. It is deliberately
// detached from both the loop context and any caller: once a cycle starts
// it always runs to completion.
func (s *Scheduler) cycleContext() context.Context {
	return context.Background()
}

func (s *Scheduler) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	s.runGuarded()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			s.runGuarded()
		case <-ctx.Done():
			return
		}
	}
}

func (s *Scheduler) runGuarded() {
	if !s.inFlight.CompareAndSwap(false, true) {
		s.logger.Warn("tick skipped, previous cycle still executing")
		return
	}
	defer s.inFlight.Store(false)

	s.runner.RunCycle(s.cycleContext())
}

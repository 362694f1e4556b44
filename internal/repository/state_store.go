// Package repository holds the in-memory state store and external signal
// publisher backing the bot's read API.
package repository

import (
	"sync"
	"time"

	"SignalForge/internal/domain/models"
	"SignalForge/internal/domain/repository"
)

// StateStore is the single owned state object. The orchestrator is its only
// writer; readers always get copies, never references into live state.
type StateStore struct {
	mu sync.RWMutex

	running   bool
	startedAt time.Time

	lastCycle    models.CycleRecord
	hasLastCycle bool

	current map[string]models.ConsensusSignal
	history []models.ConsensusSignal
	errors  []models.BotError

	counters models.Counters

	signalCap int
	errorCap  int
}

func NewStateStore(signalCapacity, errorCapacity int) *StateStore {
	if signalCapacity <= 0 {
		signalCapacity = 200
	}
	if errorCapacity <= 0 {
		errorCapacity = 100
	}
	return &StateStore{
		current:   make(map[string]models.ConsensusSignal),
		history:   make([]models.ConsensusSignal, 0, signalCapacity),
		errors:    make([]models.BotError, 0, errorCapacity),
		counters:  models.Counters{SignalsEmitted: make(map[models.Direction]uint64)},
		signalCap: signalCapacity,
		errorCap:  errorCapacity,
	}
}

// --- StateWriter ---

func (s *StateStore) SetRunning(running bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if running && !s.running {
		s.startedAt = time.Now().UTC()
	}
	s.running = running
}

// CommitCycle applies a whole cycle result in one step: last-cycle record,
// current signals, history append, error append, and counters. A reader
// never observes a cycle half applied.
func (s *StateStore) CommitCycle(rec models.CycleRecord, errs []models.BotError) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastCycle = rec
	s.hasLastCycle = true

	s.counters.CyclesRun++
	if rec.Success {
		s.counters.CyclesSucceed++
	}

	for _, out := range rec.Outcomes {
		if out.Signal == nil {
			continue
		}
		sig := *out.Signal
		s.current[sig.Symbol] = sig
		s.appendHistory(sig)
		s.counters.SignalsEmitted[sig.Direction]++
		s.counters.ConfidenceSum += sig.Confidence
	}

	for i := range errs {
		s.appendError(errs[i])
	}
}

func (s *StateStore) RecordError(err *models.BotError) {
	if err == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appendError(*err)
}

// appendHistory keeps history a bounded FIFO; callers hold the write lock.
func (s *StateStore) appendHistory(sig models.ConsensusSignal) {
	if len(s.history) == s.signalCap {
		copy(s.history, s.history[1:])
		s.history = s.history[:s.signalCap-1]
	}
	s.history = append(s.history, sig)
}

func (s *StateStore) appendError(e models.BotError) {
	if len(s.errors) == s.errorCap {
		copy(s.errors, s.errors[1:])
		s.errors = s.errors[:s.errorCap-1]
	}
	s.errors = append(s.errors, e)
}

// --- StateReader ---

func (s *StateStore) Running() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

func (s *StateStore) StartedAt() (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.startedAt.IsZero() {
		return time.Time{}, false
	}
	return s.startedAt, true
}

func (s *StateStore) LastCycle() (models.CycleRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastCycle, s.hasLastCycle
}

func (s *StateStore) CurrentSignals() map[string]models.ConsensusSignal {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]models.ConsensusSignal, len(s.current))
	for k, v := range s.current {
		out[k] = v
	}
	return out
}

// History returns signals newest-first, filtered by since (zero = no
// filter) and capped at limit (<=0 = no cap).
func (s *StateStore) History(limit int, since time.Time) []models.ConsensusSignal {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.ConsensusSignal, 0, len(s.history))
	for i := len(s.history) - 1; i >= 0; i-- {
		sig := s.history[i]
		if !since.IsZero() && sig.Timestamp.Before(since) {
			continue
		}
		out = append(out, sig)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

func (s *StateStore) Errors() []models.BotError {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.BotError, 0, len(s.errors))
	for i := len(s.errors) - 1; i >= 0; i-- {
		out = append(out, s.errors[i])
	}
	return out
}

func (s *StateStore) Counters() models.Counters {
	s.mu.RLock()
	defer s.mu.RUnlock()

	emitted := make(map[models.Direction]uint64, len(s.counters.SignalsEmitted))
	for k, v := range s.counters.SignalsEmitted {
		emitted[k] = v
	}
	c := s.counters
	c.SignalsEmitted = emitted
	return c
}

var (
	_ repository.StateReader = (*StateStore)(nil)
	_ repository.StateWriter = (*StateStore)(nil)
)

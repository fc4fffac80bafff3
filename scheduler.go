package macrolog

import (
	"sync"
	"time"
)

// Sync rate-limiting parameters. Mutations arrive at tap frequency; the dual
// cooldown and frequency cap keep one sync from firing per tap without a
// persistent connection or server-side limiting.
const (
	// SyncCooldown is the minimum gap between consecutive sync attempts.
	SyncCooldown = 5 * time.Second

	// SyncWindow is the trailing window the frequency cap is evaluated over.
	SyncWindow = 3 * time.Minute

	// SyncWindowCap is the maximum number of attempts allowed inside
	// SyncWindow before further attempts are rejected.
	SyncWindowCap = 5
)

// DenyReason explains why the scheduler rejected a sync attempt.
type DenyReason string

const (
	DenyInFlight     DenyReason = "in_flight"
	DenyCooldown     DenyReason = "cooldown"
	DenyFrequencyCap DenyReason = "frequency_cap"
)

// SyncDecision is the outcome of a scheduler eligibility check.
type SyncDecision struct {
	Allowed bool
	Reason  DenyReason
	RetryIn time.Duration
}

// RetryMinutes returns the remaining wait rounded up to whole minutes, for
// "try again in N minutes" feedback.
func (d SyncDecision) RetryMinutes() int {
	if d.RetryIn <= 0 {
		return 0
	}
	ms := d.RetryIn.Milliseconds()
	return int((ms + 59999) / 60000)
}

// Scheduler decides whether a sync attempt is currently permitted. Attempt
// history and the cooldown-expiry marker live in the durable store so the
// limits survive restarts.
type Scheduler struct {
	store *Store
	now   func() time.Time

	mu       sync.Mutex
	inFlight bool
}

// NewScheduler creates a scheduler backed by the given store.
func NewScheduler(store *Store) *Scheduler {
	return &Scheduler{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// CanSync reports whether a sync attempt may start now. A denial is not an
// error: the decision carries the reason and the remaining wait.
func (s *Scheduler) CanSync() (SyncDecision, error) {
	s.mu.Lock()
	inFlight := s.inFlight
	s.mu.Unlock()

	if inFlight {
		return SyncDecision{Reason: DenyInFlight}, nil
	}

	now := s.now()
	history, err := s.store.SyncHistory()
	if err != nil {
		return SyncDecision{}, err
	}

	window := attemptsWithin(history, now, SyncWindow)
	if len(window) >= SyncWindowCap {
		until := window[0].Add(SyncWindow)
		if err := s.store.SetCooldownUntil(until); err != nil {
			return SyncDecision{}, err
		}
		return SyncDecision{Reason: DenyFrequencyCap, RetryIn: until.Sub(now)}, nil
	}

	if len(history) > 0 {
		last := history[len(history)-1]
		if elapsed := now.Sub(last); elapsed < SyncCooldown {
			return SyncDecision{Reason: DenyCooldown, RetryIn: SyncCooldown - elapsed}, nil
		}
	}

	return SyncDecision{Allowed: true}, nil
}

// RecordAttempt logs a sync attempt at the current time.
func (s *Scheduler) RecordAttempt() error {
	return s.store.AppendSyncAttempt(s.now())
}

// IsSyncOnCooldown recomputes the trailing-window check independent of
// CanSync. It clears the stored cooldown marker once the window has emptied,
// so UI polling converges without a sync attempt in between.
func (s *Scheduler) IsSyncOnCooldown() (bool, error) {
	now := s.now()
	history, err := s.store.SyncHistory()
	if err != nil {
		return false, err
	}

	if len(attemptsWithin(history, now, SyncWindow)) >= SyncWindowCap {
		return true, nil
	}

	until, err := s.store.CooldownUntil()
	if err != nil {
		return false, err
	}
	if !until.IsZero() {
		if err := s.store.ClearCooldown(); err != nil {
			return false, err
		}
	}
	return false, nil
}

// Begin marks a sync as in flight. Returns false if one is already running.
func (s *Scheduler) Begin() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.inFlight {
		return false
	}
	s.inFlight = true
	return true
}

// End clears the in-flight flag.
func (s *Scheduler) End() {
	s.mu.Lock()
	s.inFlight = false
	s.mu.Unlock()
}

// InFlight reports whether a sync is currently running.
func (s *Scheduler) InFlight() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inFlight
}

// attemptsWithin returns the attempts inside the trailing window, oldest
// first. History is stored oldest first already.
func attemptsWithin(history []time.Time, now time.Time, window time.Duration) []time.Time {
	cutoff := now.Add(-window)
	for i, t := range history {
		if t.After(cutoff) {
			return history[i:]
		}
	}
	return nil
}

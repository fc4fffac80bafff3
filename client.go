package macrolog

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// Client is the single state container for nutrition data: it owns the
// in-memory snapshot, applies mutations, persists write-through, and runs
// best-effort background sync. Construct with New and release with Close;
// there is no process-wide instance.
type Client struct {
	store    *Store
	server   ServerClient
	sched    *Scheduler
	notifier Notifier
	debug    *DebugLogger
	config   Config
	now      func() time.Time

	mu      sync.Mutex
	snap    *Snapshot
	syncErr error
	closed  bool

	timerMu sync.Mutex
	timer   *time.Timer
}

// New creates a client, opening (or creating) the local store and loading
// the persisted snapshot.
func New(cfg Config) (*Client, error) {
	cfg = cfg.WithDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	store, err := NewStore(cfg.LocalPath)
	if err != nil {
		return nil, fmt.Errorf("client: %w", err)
	}

	snap, err := store.LoadSnapshot()
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("client: %w", err)
	}

	debug, err := NewDebugLogger(cfg.Debug, cfg.DebugLogPath)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("client: %w", err)
	}

	c := &Client{
		store:    store,
		sched:    NewScheduler(store),
		notifier: NopNotifier{},
		debug:    debug,
		config:   cfg,
		now:      func() time.Time { return time.Now().UTC() },
		snap:     snap,
	}

	if !cfg.IsOffline() {
		c.server = NewHTTPClient(cfg.ServerURL, cfg.APIKey).WithDebugLogger(debug)
	}

	return c, nil
}

// WithNotifier sets the notification side-channel. The client only selects
// (category, outcome) pairs; text and presentation belong to the notifier.
func (c *Client) WithNotifier(n Notifier) *Client {
	if n != nil {
		c.notifier = n
	}
	return c
}

// WithServerClient overrides the sync transport (for testing).
func (c *Client) WithServerClient(s ServerClient) *Client {
	c.server = s
	return c
}

// Snapshot returns a copy of the current state, safe to read without
// coordinating with mutations.
func (c *Client) Snapshot() *Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotCopy()
}

// snapshotCopy deep-copies the day map; callers must hold c.mu.
func (c *Client) snapshotCopy() *Snapshot {
	snap := *c.snap
	snap.Days = make(map[string]*DailyLog, len(c.snap.Days))
	for date, log := range c.snap.Days {
		snap.Days[date] = cloneDay(log)
	}
	snap.Templates = append([]FoodTemplate(nil), c.snap.Templates...)
	snap.WeightHistory = append([]WeightEntry(nil), c.snap.WeightHistory...)
	return &snap
}

// Day returns a copy of the log for a date, or false when nothing has been
// recorded for it.
func (c *Client) Day(date string) (*DailyLog, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	log, ok := c.snap.Days[date]
	if !ok {
		return nil, false
	}
	return cloneDay(log), true
}

// Goals returns the current nutrition targets.
func (c *Client) Goals() Goals {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snap.Goals
}

// Templates returns a copy of the food template collection.
func (c *Client) Templates() []FoodTemplate {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]FoodTemplate(nil), c.snap.Templates...)
}

// WeightHistory returns a copy of the weight entries.
func (c *Client) WeightHistory() []WeightEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]WeightEntry(nil), c.snap.WeightHistory...)
}

// LastSyncError returns the error recorded by the most recent failed sync,
// or nil. Cleared by the next successful cycle.
func (c *Client) LastSyncError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.syncErr
}

// IsSyncOnCooldown reports whether the rate limiter currently rejects sync
// attempts. Intended for UI polling.
func (c *Client) IsSyncOnCooldown() (bool, error) {
	return c.sched.IsSyncOnCooldown()
}

// Stats returns store statistics.
func (c *Client) Stats() (*StoreStats, error) {
	lastLocal, err := c.store.LastLocalUpdate()
	if err != nil {
		return nil, err
	}
	lastServer, err := c.store.LastServerSync()
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	meals := 0
	for _, log := range c.snap.Days {
		meals += len(log.Meals)
	}

	return &StoreStats{
		DayCount:        len(c.snap.Days),
		MealCount:       meals,
		TemplateCount:   len(c.snap.Templates),
		LastLocalUpdate: lastLocal,
		LastServerSync:  lastServer,
		SchemaVersion:   schemaVersion,
	}, nil
}

// Sync runs a sync cycle on behalf of an explicit user request. Rate-limit
// rejections surface a "too frequent" notification and ErrSyncThrottled.
func (c *Client) Sync(ctx context.Context) error {
	return c.sync(ctx, true)
}

// sync performs one cycle: eligibility check, fetch, then either push local
// changes, merge in newer remote state, or nothing. The direction rule
// compares whole-snapshot timestamps; the merge itself still protects
// per-entity data on pull.
func (c *Client) sync(ctx context.Context, manual bool) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrStoreClosed
	}
	c.mu.Unlock()

	if c.server == nil {
		if manual {
			c.notifier.Notify(NotifySync, OutcomeOffline, nil)
		}
		return ErrOffline
	}

	decision, err := c.sched.CanSync()
	if err != nil {
		return err
	}
	if !decision.Allowed {
		if manual {
			params := map[string]any{"reason": string(decision.Reason)}
			if decision.Reason == DenyFrequencyCap {
				params["minutes"] = decision.RetryMinutes()
			}
			c.notifier.Notify(NotifySync, OutcomeThrottled, params)
		}
		return ErrSyncThrottled
	}

	if !c.sched.Begin() {
		return ErrSyncInFlight
	}
	defer c.sched.End()

	if err := c.sched.RecordAttempt(); err != nil {
		return err
	}

	start := c.now()
	remote, err := c.server.Fetch(ctx)
	if err != nil {
		return c.failSync(err)
	}

	lastLocal, err := c.store.LastLocalUpdate()
	if err != nil {
		return c.failSync(err)
	}
	lastServer, err := c.store.LastServerSync()
	if err != nil {
		return c.failSync(err)
	}

	switch {
	case !lastLocal.IsZero() && lastLocal.After(lastServer):
		// Local changes since the last known server sync: push wholesale.
		snap := c.Snapshot()
		if _, err := c.server.Push(ctx, snap, lastLocal); err != nil {
			return c.failSync(err)
		}
		if err := c.store.SetLastServerSync(c.now()); err != nil {
			return c.failSync(err)
		}
		c.debug.LogSync("push", fmt.Sprintf("uploaded snapshot, took %s", c.now().Sub(start)))
		c.clearSyncErr()
		c.notifier.Notify(NotifySync, OutcomeSynced, map[string]any{"direction": "push"})

	case remote.HasUpdates && remote.Data != nil && remote.LastSync.After(lastLocal):
		// Server is newer: merge it into local state and persist without
		// advancing the local-update stamp, so the merged pull is not
		// immediately pushed back.
		c.mu.Lock()
		merged := MergeSnapshots(c.snap, remote.Data)
		c.snap = merged
		saveErr := c.store.SaveSnapshot(merged, lastLocal)
		c.mu.Unlock()
		if saveErr != nil {
			return c.failSync(saveErr)
		}
		if err := c.store.SetLastServerSync(c.now()); err != nil {
			return c.failSync(err)
		}
		c.debug.LogSync("pull", fmt.Sprintf("merged %d days, took %s", len(merged.Days), c.now().Sub(start)))
		c.clearSyncErr()
		c.notifier.Notify(NotifySync, OutcomeSynced, map[string]any{"direction": "pull"})

	default:
		c.clearSyncErr()
		if manual {
			c.notifier.Notify(NotifySync, OutcomeUpToDate, nil)
		}
	}

	return nil
}

// failSync records a sync failure in state and surfaces it on the
// notification channel. Authentication failures are distinguished so the
// caller can trigger re-authentication instead of retrying.
func (c *Client) failSync(err error) error {
	c.mu.Lock()
	c.syncErr = err
	c.mu.Unlock()

	c.debug.LogError("sync", err)

	outcome := OutcomeFailed
	switch {
	case errors.Is(err, ErrUnauthorized):
		outcome = OutcomeAuth
	case errors.Is(err, ErrOffline):
		outcome = OutcomeOffline
	}
	c.notifier.Notify(NotifySync, outcome, map[string]any{"error": err.Error()})
	return err
}

func (c *Client) clearSyncErr() {
	c.mu.Lock()
	c.syncErr = nil
	c.mu.Unlock()
}

// scheduleSync arms the debounced background sync. Each mutation resets the
// timer, so a burst of taps collapses into a single attempt after SyncDelay.
func (c *Client) scheduleSync() {
	if !c.config.AutoSync || c.server == nil {
		return
	}

	c.timerMu.Lock()
	defer c.timerMu.Unlock()

	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(c.config.SyncDelay, func() {
		ctx, cancel := context.WithTimeout(context.Background(), syncTimeout)
		defer cancel()
		// Best-effort: failures are recorded and notified inside sync.
		_ = c.sync(ctx, false)
	})
}

// Close stops background work and closes the store.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	c.timerMu.Lock()
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.timerMu.Unlock()

	_ = c.debug.Close()
	return c.store.Close()
}

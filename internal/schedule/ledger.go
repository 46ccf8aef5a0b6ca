package schedule

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// HoldTTL is how long an unconfirmed hold stays alive before it
// self-destructs.
const HoldTTL = 30 * time.Minute

// EligibilityFunc is consulted before a hold is created. Create fails with
// ErrIneligibleWindow when it returns false.
type EligibilityFunc func(w TimeWindow, now time.Time) bool

// Ledger owns the client-side unconfirmed holds. Each entry has exactly
// one terminal transition out of pending: confirm, cancel, or expiry.
// The winner is decided by the entry's presence in the map, so the two
// losing operations observe ErrHoldNotFound.
type Ledger struct {
	mu       sync.Mutex
	holds    map[string]Hold
	clock    Clock
	ttl      time.Duration
	eligible EligibilityFunc
	onExpire func(Hold)
	logger   *zap.Logger
}

func NewLedger(clock Clock, ttl time.Duration, eligible EligibilityFunc, logger *zap.Logger) *Ledger {
	if clock == nil {
		clock = SystemClock()
	}
	if ttl <= 0 {
		ttl = HoldTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ledger{
		holds:    make(map[string]Hold),
		clock:    clock,
		ttl:      ttl,
		eligible: eligible,
		logger:   logger,
	}
}

// SetOnExpire registers a callback fired once per expired hold, outside
// the ledger lock.
func (l *Ledger) SetOnExpire(fn func(Hold)) {
	l.mu.Lock()
	l.onExpire = fn
	l.mu.Unlock()
}

// Create stores a new hold for the window and returns it. The id is
// locally generated and cannot collide with server-issued ids.
func (l *Ledger) Create(w TimeWindow) (Hold, error) {
	if err := w.Validate(); err != nil {
		return Hold{}, err
	}

	now := l.clock.Now()
	if l.eligible != nil && !l.eligible(w, now) {
		return Hold{}, ErrIneligibleWindow
	}

	h := Hold{
		ID:        uuid.NewString(),
		Window:    w,
		CreatedAt: now,
		ExpiresAt: now.Add(l.ttl),
	}

	l.mu.Lock()
	l.holds[h.ID] = h
	l.mu.Unlock()

	l.logger.Info("hold created",
		zap.String("hold_id", h.ID),
		zap.Time("start", w.Start),
		zap.Time("expires_at", h.ExpiresAt),
	)

	return h, nil
}

// Confirm claims the hold and removes it, returning the window for the
// caller to persist durably. A hold that already hit its deadline is
// treated as expired, not confirmed.
func (l *Ledger) Confirm(id string) (Hold, error) {
	l.mu.Lock()
	h, ok := l.holds[id]
	if !ok {
		l.mu.Unlock()
		return Hold{}, ErrHoldNotFound
	}

	delete(l.holds, id)
	if !l.clock.Now().Before(h.ExpiresAt) {
		notify := l.onExpire
		l.mu.Unlock()
		l.expire(h, notify, "confirm_after_deadline")
		return Hold{}, ErrHoldNotFound
	}
	l.mu.Unlock()

	l.logger.Info("hold confirmed", zap.String("hold_id", id))
	return h, nil
}

// Cancel removes the hold. A second cancel on the same id reports
// ErrHoldNotFound without side effects.
func (l *Ledger) Cancel(id string) error {
	l.mu.Lock()
	h, ok := l.holds[id]
	if !ok {
		l.mu.Unlock()
		return ErrHoldNotFound
	}

	delete(l.holds, id)
	if !l.clock.Now().Before(h.ExpiresAt) {
		notify := l.onExpire
		l.mu.Unlock()
		l.expire(h, notify, "cancel_after_deadline")
		return ErrHoldNotFound
	}
	l.mu.Unlock()

	l.logger.Info("hold cancelled", zap.String("hold_id", id))
	return nil
}

// Restore puts a claimed hold back with its original deadline. Used when
// the durable create dispatched after Confirm fails, so the user does not
// lose the hold. A hold whose deadline has since passed stays removed.
func (l *Ledger) Restore(h Hold) bool {
	if !l.clock.Now().Before(h.ExpiresAt) {
		l.logger.Warn("hold restore skipped, deadline passed", zap.String("hold_id", h.ID))
		return false
	}

	l.mu.Lock()
	l.holds[h.ID] = h
	l.mu.Unlock()

	l.logger.Info("hold restored", zap.String("hold_id", h.ID))
	return true
}

// Contains reports whether the id is a live pending hold.
func (l *Ledger) Contains(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	h, ok := l.holds[id]
	return ok && l.clock.Now().Before(h.ExpiresAt)
}

// Pending returns the live holds ordered by start time. Entries past
// their deadline are excluded even if the sweeper has not run yet.
func (l *Ledger) Pending() []Hold {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()
	out := make([]Hold, 0, len(l.holds))
	for _, h := range l.holds {
		if now.Before(h.ExpiresAt) {
			out = append(out, h)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Window.Start.Equal(out[j].Window.Start) {
			return out[i].ID < out[j].ID
		}
		return out[i].Window.Start.Before(out[j].Window.Start)
	})

	return out
}

// Start runs the expiry sweeper until the context is cancelled.
func (l *Ledger) Start(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				l.Sweep()
			}
		}
	}()
}

// Sweep removes every hold past its deadline and notifies per entry.
func (l *Ledger) Sweep() int {
	l.mu.Lock()
	now := l.clock.Now()
	var expired []Hold
	for id, h := range l.holds {
		if !now.Before(h.ExpiresAt) {
			delete(l.holds, id)
			expired = append(expired, h)
		}
	}
	notify := l.onExpire
	l.mu.Unlock()

	for _, h := range expired {
		l.expire(h, notify, "sweep")
	}

	return len(expired)
}

func (l *Ledger) expire(h Hold, notify func(Hold), reason string) {
	l.logger.Info("hold expired",
		zap.String("hold_id", h.ID),
		zap.String("reason", reason),
	)
	if notify != nil {
		notify(h)
	}
}

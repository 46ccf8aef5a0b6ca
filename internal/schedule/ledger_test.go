package schedule

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(now time.Time) *fakeClock {
	return &fakeClock{now: now}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func testWindow(t *testing.T) TimeWindow {
	return TimeWindow{
		Start: mustTime(t, "2024-06-03T09:00:00Z"),
		End:   mustTime(t, "2024-06-03T09:15:00Z"),
	}
}

func TestLedgerCreateAndConfirm(t *testing.T) {
	clock := newFakeClock(mustTime(t, "2024-06-01T00:00:00Z"))
	ledger := NewLedger(clock, HoldTTL, nil, nil)

	h, err := ledger.Create(testWindow(t))
	require.NoError(t, err)
	assert.NotEmpty(t, h.ID)
	assert.Equal(t, clock.Now().Add(30*time.Minute), h.ExpiresAt)
	assert.True(t, ledger.Contains(h.ID))

	clock.Advance(5 * time.Minute)

	got, err := ledger.Confirm(h.ID)
	require.NoError(t, err)
	assert.Equal(t, h.Window, got.Window)
	assert.False(t, ledger.Contains(h.ID))

	// Confirm won; every later transition on the id loses.
	_, err = ledger.Confirm(h.ID)
	assert.ErrorIs(t, err, ErrHoldNotFound)
	assert.ErrorIs(t, ledger.Cancel(h.ID), ErrHoldNotFound)
}

func TestLedgerCancelIsIdempotent(t *testing.T) {
	clock := newFakeClock(mustTime(t, "2024-06-01T00:00:00Z"))
	ledger := NewLedger(clock, HoldTTL, nil, nil)

	h, err := ledger.Create(testWindow(t))
	require.NoError(t, err)

	require.NoError(t, ledger.Cancel(h.ID))
	assert.ErrorIs(t, ledger.Cancel(h.ID), ErrHoldNotFound)
	assert.Empty(t, ledger.Pending())
}

func TestLedgerExpiryAfterHoldTTL(t *testing.T) {
	clock := newFakeClock(mustTime(t, "2024-06-01T00:00:00Z"))
	ledger := NewLedger(clock, HoldTTL, nil, nil)

	var expired []Hold
	ledger.SetOnExpire(func(h Hold) { expired = append(expired, h) })

	h, err := ledger.Create(testWindow(t))
	require.NoError(t, err)

	clock.Advance(29 * time.Minute)
	assert.Equal(t, 0, ledger.Sweep())
	assert.Len(t, ledger.Pending(), 1)

	clock.Advance(time.Minute)
	assert.Equal(t, 1, ledger.Sweep())
	assert.Empty(t, ledger.Pending())
	require.Len(t, expired, 1)
	assert.Equal(t, h.ID, expired[0].ID)

	// Expiry won the race; late confirm and cancel lose.
	_, err = ledger.Confirm(h.ID)
	assert.ErrorIs(t, err, ErrHoldNotFound)

	// The sweep fires exactly once per entry.
	assert.Equal(t, 0, ledger.Sweep())
	assert.Len(t, expired, 1)
}

func TestLedgerDeadlineCheckedWithoutSweep(t *testing.T) {
	clock := newFakeClock(mustTime(t, "2024-06-01T00:00:00Z"))
	ledger := NewLedger(clock, HoldTTL, nil, nil)

	var expired []Hold
	ledger.SetOnExpire(func(h Hold) { expired = append(expired, h) })

	h, err := ledger.Create(testWindow(t))
	require.NoError(t, err)

	clock.Advance(31 * time.Minute)

	// Reads must not resurrect the entry between sweeps.
	assert.Empty(t, ledger.Pending())
	assert.False(t, ledger.Contains(h.ID))

	_, err = ledger.Confirm(h.ID)
	assert.ErrorIs(t, err, ErrHoldNotFound)
	assert.Len(t, expired, 1)
}

func TestLedgerRestoreAfterFailedConfirm(t *testing.T) {
	clock := newFakeClock(mustTime(t, "2024-06-01T00:00:00Z"))
	ledger := NewLedger(clock, HoldTTL, nil, nil)

	h, err := ledger.Create(testWindow(t))
	require.NoError(t, err)

	claimed, err := ledger.Confirm(h.ID)
	require.NoError(t, err)
	assert.False(t, ledger.Contains(h.ID))

	// Durable create failed downstream; the hold goes back with its
	// original deadline.
	assert.True(t, ledger.Restore(claimed))
	assert.True(t, ledger.Contains(h.ID))
	assert.Equal(t, h.ExpiresAt, ledger.Pending()[0].ExpiresAt)
}

func TestLedgerRestoreSkippedPastDeadline(t *testing.T) {
	clock := newFakeClock(mustTime(t, "2024-06-01T00:00:00Z"))
	ledger := NewLedger(clock, HoldTTL, nil, nil)

	h, err := ledger.Create(testWindow(t))
	require.NoError(t, err)

	claimed, err := ledger.Confirm(h.ID)
	require.NoError(t, err)

	clock.Advance(31 * time.Minute)
	assert.False(t, ledger.Restore(claimed))
	assert.False(t, ledger.Contains(h.ID))
}

func TestLedgerCreateRejectsIneligibleWindow(t *testing.T) {
	clock := newFakeClock(mustTime(t, "2024-06-01T00:00:00Z"))
	eligible := func(w TimeWindow, now time.Time) bool { return false }
	ledger := NewLedger(clock, HoldTTL, eligible, nil)

	_, err := ledger.Create(testWindow(t))
	assert.ErrorIs(t, err, ErrIneligibleWindow)
	assert.Empty(t, ledger.Pending())
}

func TestLedgerCreateRejectsInvalidWindow(t *testing.T) {
	ledger := NewLedger(newFakeClock(mustTime(t, "2024-06-01T00:00:00Z")), HoldTTL, nil, nil)

	_, err := ledger.Create(TimeWindow{
		Start: mustTime(t, "2024-06-03T10:00:00Z"),
		End:   mustTime(t, "2024-06-03T09:00:00Z"),
	})
	assert.ErrorIs(t, err, ErrInvalidWindow)
}

func TestLedgerPendingSortedByStart(t *testing.T) {
	clock := newFakeClock(mustTime(t, "2024-06-01T00:00:00Z"))
	ledger := NewLedger(clock, HoldTTL, nil, nil)

	later := TimeWindow{
		Start: mustTime(t, "2024-06-04T09:00:00Z"),
		End:   mustTime(t, "2024-06-04T09:15:00Z"),
	}
	earlier := testWindow(t)

	_, err := ledger.Create(later)
	require.NoError(t, err)
	_, err = ledger.Create(earlier)
	require.NoError(t, err)

	pending := ledger.Pending()
	require.Len(t, pending, 2)
	assert.Equal(t, earlier.Start, pending[0].Window.Start)
	assert.Equal(t, later.Start, pending[1].Window.Start)
}

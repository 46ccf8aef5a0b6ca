package schedule

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// PromptKind identifies which confirmation dialog the UI should show.
type PromptKind string

const (
	PromptCreate      PromptKind = "create"
	PromptConfirmHold PromptKind = "confirm"
	PromptDelete      PromptKind = "delete"
)

// Prompt is a staged user decision with its target payload. PromptCreate
// carries the selected window; the other two carry the selected event.
type Prompt struct {
	Kind   PromptKind
	Window TimeWindow
	Event  Event
}

// SessionOptions tune a session. Zero values fall back to defaults.
type SessionOptions struct {
	Clock         Clock
	Logger        *zap.Logger
	HoldTTL       time.Duration
	SweepInterval time.Duration
}

// Session orchestrates mode switching, slot and event selection, and the
// booking workflows. It owns the availability index and the hold ledger;
// all durable mutations go through the Fetcher and are reflected back via
// refetch.
type Session struct {
	fetcher       Fetcher
	clock         Clock
	logger        *zap.Logger
	sweepInterval time.Duration

	index      *Index
	rules      *Rules
	ledger     *Ledger
	reconciler *Reconciler

	mu        sync.Mutex
	mode      Mode
	view      View
	fetchGen  uint64
	inflight  int
	confirmed []Event
	events    []Event
	prompt    *Prompt
}

func NewSession(fetcher Fetcher, opts SessionOptions) *Session {
	if opts.Clock == nil {
		opts.Clock = SystemClock()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.SweepInterval <= 0 {
		opts.SweepInterval = time.Minute
	}

	index := NewIndex()
	rules := NewRules(index)

	s := &Session{
		fetcher:       fetcher,
		clock:         opts.Clock,
		logger:        opts.Logger,
		sweepInterval: opts.SweepInterval,
		index:         index,
		rules:         rules,
		reconciler:    NewReconciler(index),
		mode:          ModeProvider,
		view:          ViewWeek,
	}

	eligible := func(w TimeWindow, now time.Time) bool {
		return rules.CanBook(ModeClient, w, now)
	}
	s.ledger = NewLedger(opts.Clock, opts.HoldTTL, eligible, opts.Logger)
	s.ledger.SetOnExpire(s.handleExpiredHold)

	return s
}

// Start runs the hold expiry sweeper until ctx is cancelled.
func (s *Session) Start(ctx context.Context) {
	s.ledger.Start(ctx, s.sweepInterval)
}

func (s *Session) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

// SetView records the calendar granularity the UI switched to.
func (s *Session) SetView(v View) {
	s.mu.Lock()
	s.view = v
	s.mu.Unlock()
}

// Busy reports whether any fetch or durable mutation is in flight.
func (s *Session) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inflight > 0
}

// Events returns the current display list.
func (s *Session) Events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Event(nil), s.events...)
}

// Prompt returns the staged confirmation dialog, if any.
func (s *Session) Prompt() (Prompt, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.prompt == nil {
		return Prompt{}, false
	}
	return *s.prompt, true
}

// DismissPrompt drops the staged dialog without acting on it.
func (s *Session) DismissPrompt() {
	s.mu.Lock()
	s.prompt = nil
	s.mu.Unlock()
}

// SwitchMode changes the role and refetches. Pending holds are abandoned
// in place: they keep expiring on their own schedule and reappear in the
// client overlay when client mode returns.
func (s *Session) SwitchMode(ctx context.Context, mode Mode) error {
	s.mu.Lock()
	if mode == s.mode {
		s.mu.Unlock()
		return nil
	}
	s.mode = mode
	s.prompt = nil
	s.mu.Unlock()

	return s.Refresh(ctx)
}

// Refresh fetches the confirmed events for the current mode and
// reconciles. A response that arrives after the mode switched or after a
// newer fetch started is discarded instead of overwriting fresher state.
func (s *Session) Refresh(ctx context.Context) error {
	s.mu.Lock()
	s.fetchGen++
	gen := s.fetchGen
	mode := s.mode
	s.inflight++
	s.mu.Unlock()

	var (
		remote []RemoteWindow
		err    error
	)
	if mode == ModeProvider {
		remote, err = s.fetcher.FetchProviderSchedule(ctx)
	} else {
		remote, err = s.fetcher.FetchAppointments(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.inflight--

	if err != nil {
		s.logger.Warn("fetch failed, keeping previous state",
			zap.String("mode", string(mode)),
			zap.Error(err),
		)
		return fmt.Errorf("fetch %s events: %w", mode, err)
	}

	if gen != s.fetchGen || mode != s.mode {
		s.logger.Debug("discarding stale fetch response",
			zap.String("fetched_mode", string(mode)),
			zap.String("current_mode", string(s.mode)),
		)
		return nil
	}

	s.confirmed = eventsFromRemote(mode, remote)
	s.rerenderLocked()
	return nil
}

// SelectSlot stages a creation prompt for the window. Month view is
// display only. In client mode a slot outside provider availability is
// not actionable and is silently ignored.
func (s *Session) SelectSlot(w TimeWindow) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.view == ViewMonth {
		return ErrViewNotActionable
	}
	if err := w.Validate(); err != nil {
		return err
	}
	if s.mode == ModeClient && !s.index.IsBookable(w.Start) {
		return nil
	}

	s.prompt = &Prompt{Kind: PromptCreate, Window: w}
	return nil
}

// ConfirmCreation acts on a staged create prompt. Client mode places a
// hold in the ledger; provider mode dispatches a durable create and
// refetches.
func (s *Session) ConfirmCreation(ctx context.Context) error {
	s.mu.Lock()
	if s.prompt == nil || s.prompt.Kind != PromptCreate {
		s.mu.Unlock()
		return ErrNoPrompt
	}
	w := s.prompt.Window
	mode := s.mode
	s.prompt = nil
	s.mu.Unlock()

	if mode == ModeClient {
		if _, err := s.ledger.Create(w); err != nil {
			return err
		}
		s.mu.Lock()
		s.rerenderLocked()
		s.mu.Unlock()
		return nil
	}

	s.beginOp()
	err := s.fetcher.CreateProviderWindow(ctx, w)
	s.endOp()
	if err != nil {
		return fmt.Errorf("create provider window: %w", err)
	}

	return s.Refresh(ctx)
}

// SelectEvent routes to the right dialog: pending holds get a
// confirm-or-cancel prompt, durable events a delete prompt.
func (s *Session) SelectEvent(ev Event) {
	kind := PromptDelete
	if s.ledger.Contains(ev.ID) {
		kind = PromptConfirmHold
	}

	s.mu.Lock()
	s.prompt = &Prompt{Kind: kind, Event: ev}
	s.mu.Unlock()
}

// ConfirmHold promotes the prompted hold to a durable appointment. The
// hold is claimed from the ledger first so expiry cannot race the create;
// if the create fails the hold is restored with its original deadline.
func (s *Session) ConfirmHold(ctx context.Context) error {
	s.mu.Lock()
	if s.prompt == nil || s.prompt.Kind != PromptConfirmHold {
		s.mu.Unlock()
		return ErrNoPrompt
	}
	id := s.prompt.Event.ID
	s.prompt = nil
	s.mu.Unlock()

	hold, err := s.ledger.Confirm(id)
	if err != nil {
		return err
	}

	s.beginOp()
	err = s.fetcher.CreateAppointment(ctx, hold.Window)
	s.endOp()
	if err != nil {
		s.ledger.Restore(hold)
		s.mu.Lock()
		s.rerenderLocked()
		s.mu.Unlock()
		return fmt.Errorf("create appointment: %w", err)
	}

	s.mu.Lock()
	s.rerenderLocked()
	s.mu.Unlock()

	return s.Refresh(ctx)
}

// CancelHold drops the prompted hold from the ledger.
func (s *Session) CancelHold() error {
	s.mu.Lock()
	if s.prompt == nil || s.prompt.Kind != PromptConfirmHold {
		s.mu.Unlock()
		return ErrNoPrompt
	}
	id := s.prompt.Event.ID
	s.prompt = nil
	s.mu.Unlock()

	err := s.ledger.Cancel(id)

	s.mu.Lock()
	s.rerenderLocked()
	s.mu.Unlock()

	return err
}

// DeleteEvent dispatches a durable delete for the prompted event and
// refetches.
func (s *Session) DeleteEvent(ctx context.Context) error {
	s.mu.Lock()
	if s.prompt == nil || s.prompt.Kind != PromptDelete {
		s.mu.Unlock()
		return ErrNoPrompt
	}
	id := s.prompt.Event.ID
	mode := s.mode
	s.prompt = nil
	s.mu.Unlock()

	s.beginOp()
	var err error
	if mode == ModeProvider {
		err = s.fetcher.DeleteProviderWindow(ctx, id)
	} else {
		err = s.fetcher.DeleteAppointment(ctx, id)
	}
	s.endOp()
	if err != nil {
		return fmt.Errorf("delete %s event: %w", mode, err)
	}

	return s.Refresh(ctx)
}

func (s *Session) handleExpiredHold(h Hold) {
	s.mu.Lock()
	if s.prompt != nil && s.prompt.Kind == PromptConfirmHold && s.prompt.Event.ID == h.ID {
		s.prompt = nil
	}
	s.rerenderLocked()
	s.mu.Unlock()
}

func (s *Session) rerenderLocked() {
	s.events = s.reconciler.Reconcile(s.mode, s.confirmed, s.ledger.Pending())
}

func (s *Session) beginOp() {
	s.mu.Lock()
	s.inflight++
	s.mu.Unlock()
}

func (s *Session) endOp() {
	s.mu.Lock()
	s.inflight--
	s.mu.Unlock()
}

func eventsFromRemote(mode Mode, remote []RemoteWindow) []Event {
	title := "Available"
	if mode == ModeClient {
		title = "Appointment"
	}

	out := make([]Event, 0, len(remote))
	for _, rw := range remote {
		out = append(out, Event{
			ID:        rw.ID,
			Start:     rw.Start,
			End:       rw.End,
			Title:     title,
			Confirmed: true,
		})
	}
	return out
}

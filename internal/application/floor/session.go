package floor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"github.com/google/uuid"

	"github.com/alejandrodnm/martillo/internal/domain"
	"github.com/alejandrodnm/martillo/internal/ports"
)

// ErrNotRunning is returned by PlaceBid before Run has opened the channel.
var ErrNotRunning = errors.New("floor: session not running")

// Session owns the live view of one auction: a one-shot REST load merged
// with the channel's event stream. All state transitions are applied in
// series by the Run goroutine, so the reducer never races with itself.
// The view state lives and dies with the session; nothing survives it.
type Session struct {
	slug      string
	snapshots ports.SnapshotProvider
	dialer    ports.ChannelDialer
	scope     ports.Scope

	mu      sync.RWMutex
	state   State
	channel ports.Channel

	onChange func(State)
}

// NewSession creates a session for the public scope of one auction.
// inviteToken may be empty for view-only access.
func NewSession(snapshots ports.SnapshotProvider, dialer ports.ChannelDialer, slug, inviteToken string) *Session {
	return &Session{
		slug:      slug,
		snapshots: snapshots,
		dialer:    dialer,
		scope: ports.Scope{
			Kind:        ports.ScopePublic,
			Slug:        slug,
			InviteToken: inviteToken,
		},
		state: NewState(),
	}
}

// OnChange registers a callback invoked after every state transition, from
// the session goroutine. Set it before calling Run.
func (s *Session) OnChange(fn func(State)) {
	s.onChange = fn
}

// State returns the current view model. The lots map inside is copied on
// write by the reducer, never mutated, so the returned value is safe to
// read concurrently with Run.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Run drives the session until ctx is cancelled: opens the channel, kicks
// the one-shot load, and applies events in arrival order. On return the
// channel is closed and its reconnect timers released.
func (s *Session) Run(ctx context.Context) error {
	ch, err := s.dialer.Dial(ctx, s.scope)
	if err != nil {
		return fmt.Errorf("floor: dial channel for %q: %w", s.slug, err)
	}
	s.mu.Lock()
	s.channel = ch
	s.mu.Unlock()
	defer ch.Close()

	loadCh := make(chan domain.Event, 1)
	go s.load(ctx, loadCh)

	slog.Info("floor: session started", "slug", s.slug)

	for {
		select {
		case <-ctx.Done():
			slog.Info("floor: session stopped", "slug", s.slug)
			return nil
		case ev, ok := <-loadCh:
			if !ok {
				loadCh = nil // nil channel blocks forever
				continue
			}
			s.apply(ev)
		case ev, ok := <-ch.Events():
			if !ok {
				slog.Info("floor: channel closed", "slug", s.slug)
				return nil
			}
			s.apply(ev)
		}
	}
}

// load performs exactly one pull of the full auction record. A load
// superseded by cancellation is discarded silently: its result never
// reaches the reducer. Failure surfaces as lastError, no retry; the
// channel's first snapshot can still populate the view.
func (s *Session) load(ctx context.Context, out chan<- domain.Event) {
	defer close(out)

	auction, err := s.snapshots.GetAuction(ctx, s.slug)
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		slog.Warn("floor: initial load failed", "slug", s.slug, "err", err)
		out <- domain.ErrorSignal{Detail: err.Error()}
		return
	}
	out <- domain.SnapshotLoaded{Auction: auction}
}

func (s *Session) apply(ev domain.Event) {
	s.mu.Lock()
	s.state = Reduce(s.state, ev)
	next := s.state
	s.mu.Unlock()

	if s.onChange != nil {
		s.onChange(next)
	}
}

// placeBidPayload es el mensaje saliente place_bid. El importe viaja como
// string decimal; request_id permite correlar en logs del servidor.
type placeBidPayload struct {
	RequestID string `json:"request_id"`
	LotID     string `json:"lot_id"`
	Amount    string `json:"amount"`
}

// PlaceBid sends a bid intent over the channel and returns immediately.
// Fire and forget: no local price or leader mutation happens here, the
// authoritative values only change on a later bid_accepted.
func (s *Session) PlaceBid(ctx context.Context, lotID string, amount float64) error {
	s.mu.RLock()
	ch := s.channel
	s.mu.RUnlock()
	if ch == nil {
		return ErrNotRunning
	}

	payload := placeBidPayload{
		RequestID: uuid.NewString(),
		LotID:     lotID,
		Amount:    strconv.FormatFloat(amount, 'f', 2, 64),
	}
	if err := ch.Send(ctx, "place_bid", payload); err != nil {
		return fmt.Errorf("floor: place bid on %s: %w", lotID, err)
	}
	return nil
}

// LotByNumber finds a lot in the current view by its display number.
func (s *Session) LotByNumber(number int) (domain.Lot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, l := range s.state.Lots {
		if l.LotNumber == number {
			return l, true
		}
	}
	return domain.Lot{}, false
}

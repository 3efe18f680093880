package floor_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/martillo/internal/application/floor"
	"github.com/alejandrodnm/martillo/internal/domain"
	"github.com/alejandrodnm/martillo/internal/ports"
)

// --- fakes ---

type sentMessage struct {
	typ     string
	payload any
}

type fakeChannel struct {
	events chan domain.Event

	mu   sync.Mutex
	sent []sentMessage
}

func newFakeChannel() *fakeChannel {
	return &fakeChannel{events: make(chan domain.Event, 16)}
}

func (c *fakeChannel) Events() <-chan domain.Event { return c.events }

func (c *fakeChannel) Send(_ context.Context, typ string, payload any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, sentMessage{typ: typ, payload: payload})
	return nil
}

func (c *fakeChannel) Close() error {
	close(c.events)
	return nil
}

func (c *fakeChannel) sentMessages() []sentMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]sentMessage, len(c.sent))
	copy(out, c.sent)
	return out
}

type fakeDialer struct {
	ch    *fakeChannel
	scope ports.Scope
}

func (d *fakeDialer) Dial(_ context.Context, scope ports.Scope) (ports.Channel, error) {
	d.scope = scope
	return d.ch, nil
}

type fakeProvider struct {
	auction domain.Auction
	err     error
	block   chan struct{} // if non-nil, GetAuction waits for it (or ctx)
}

func (p *fakeProvider) GetAuction(ctx context.Context, _ string) (domain.Auction, error) {
	if p.block != nil {
		select {
		case <-p.block:
		case <-ctx.Done():
		}
	}
	return p.auction, p.err
}

func (p *fakeProvider) ListAuctions(_ context.Context) ([]domain.Auction, error) {
	return []domain.Auction{p.auction}, p.err
}

func testAuction() domain.Auction {
	return domain.Auction{
		Slug:   "spring-sale",
		Title:  "Spring Sale",
		Status: domain.StatusLive,
		Lots: []domain.Lot{
			{ID: "lot-a", LotNumber: 1, Name: "Amphora", BasePrice: 100, MinIncrement: 5, Currency: "EUR", CurrentPrice: 100},
		},
	}
}

// startSession runs the session in background and returns a channel of
// state transitions plus a stop func that waits for a clean shutdown.
func startSession(t *testing.T, s *floor.Session) (<-chan floor.State, func()) {
	t.Helper()
	states := make(chan floor.State, 64)
	s.OnChange(func(st floor.State) { states <- st })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	return states, func() {
		cancel()
		select {
		case err := <-done:
			require.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Fatal("session did not stop")
		}
	}
}

func waitFor(t *testing.T, states <-chan floor.State, pred func(floor.State) bool) floor.State {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case st := <-states:
			if pred(st) {
				return st
			}
		case <-deadline:
			t.Fatal("state condition never reached")
			return floor.State{}
		}
	}
}

// payloadFields aplana un payload saliente vía JSON, sin depender del tipo
// concreto del mensaje.
func payloadFields(p any) (map[string]any, bool) {
	raw, err := json.Marshal(p)
	if err != nil {
		return nil, false
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, false
	}
	return m, true
}

// --- tests ---

func TestSession_LoadPopulatesState(t *testing.T) {
	dialer := &fakeDialer{ch: newFakeChannel()}
	session := floor.NewSession(&fakeProvider{auction: testAuction()}, dialer, "spring-sale", "tok-1")

	states, stop := startSession(t, session)
	defer stop()

	st := waitFor(t, states, func(s floor.State) bool { return s.Auction != nil })
	assert.Equal(t, "Spring Sale", st.Auction.Title)
	assert.InDelta(t, 100.0, st.Lots["lot-a"].BasePrice, 0.001)

	// el dial usó el scope público con el invite token
	assert.Equal(t, ports.ScopePublic, dialer.scope.Kind)
	assert.Equal(t, "spring-sale", dialer.scope.Slug)
	assert.Equal(t, "tok-1", dialer.scope.InviteToken)
}

func TestSession_ChannelEventsApplied(t *testing.T) {
	ch := newFakeChannel()
	session := floor.NewSession(&fakeProvider{auction: testAuction()}, &fakeDialer{ch: ch}, "spring-sale", "")

	states, stop := startSession(t, session)
	defer stop()

	waitFor(t, states, func(s floor.State) bool { return s.Auction != nil })

	ch.events <- domain.Connected{}
	ch.events <- domain.BidAccepted{LotID: "lot-a", Amount: 130, Leader: "p-4"}

	st := waitFor(t, states, func(s floor.State) bool {
		return s.Connected && s.Lots["lot-a"].CurrentLeader == "p-4"
	})
	assert.InDelta(t, 130.0, st.Lots["lot-a"].CurrentPrice, 0.001)
}

func TestSession_LoadFailureSurfacesAsError(t *testing.T) {
	ch := newFakeChannel()
	provider := &fakeProvider{err: errors.New("boom")}
	session := floor.NewSession(provider, &fakeDialer{ch: ch}, "spring-sale", "")

	states, stop := startSession(t, session)
	defer stop()

	waitFor(t, states, func(s floor.State) bool { return s.LastError != "" })

	// el snapshot del canal puebla la vista aunque el pull fallara
	ch.events <- domain.StateSnapshot{
		Auction: domain.SnapshotHeader{Slug: "spring-sale", Status: domain.StatusLive},
		Lots: []domain.LotSnapshot{
			{ID: "lot-a", LotNumber: 1, Name: "Amphora", Currency: "EUR", CurrentPrice: 110},
		},
	}
	st := waitFor(t, states, func(s floor.State) bool { return len(s.Lots) == 1 })
	assert.InDelta(t, 110.0, st.Lots["lot-a"].CurrentPrice, 0.001)
}

func TestSession_StaleLoadDiscarded(t *testing.T) {
	ch := newFakeChannel()
	provider := &fakeProvider{auction: testAuction(), block: make(chan struct{})}
	session := floor.NewSession(provider, &fakeDialer{ch: ch}, "spring-sale", "")

	states, stop := startSession(t, session)
	// cancelar antes de que el load termine: su resultado se descarta
	stop()

	select {
	case st := <-states:
		assert.Nil(t, st.Auction)
	default:
	}
	assert.Nil(t, session.State().Auction)
}

func TestSession_PlaceBidSendsDecimalString(t *testing.T) {
	ch := newFakeChannel()
	session := floor.NewSession(&fakeProvider{auction: testAuction()}, &fakeDialer{ch: ch}, "spring-sale", "")

	states, stop := startSession(t, session)
	defer stop()
	waitFor(t, states, func(s floor.State) bool { return s.Auction != nil })

	require.NoError(t, session.PlaceBid(context.Background(), "lot-a", 105))

	sent := ch.sentMessages()
	require.Len(t, sent, 1)
	assert.Equal(t, "place_bid", sent[0].typ)

	payload := sent[0].payload
	m, ok := payloadFields(payload)
	require.True(t, ok)
	assert.Equal(t, "lot-a", m["lot_id"])
	assert.Equal(t, "105.00", m["amount"])
	assert.NotEmpty(t, m["request_id"])

	// fire and forget: la vista no cambia hasta el bid_accepted
	assert.InDelta(t, 100.0, session.State().Lots["lot-a"].CurrentPrice, 0.001)
}

func TestSession_PlaceBidBeforeRun(t *testing.T) {
	session := floor.NewSession(&fakeProvider{}, &fakeDialer{ch: newFakeChannel()}, "spring-sale", "")
	err := session.PlaceBid(context.Background(), "lot-a", 100)
	assert.ErrorIs(t, err, floor.ErrNotRunning)
}

func TestSession_LotByNumber(t *testing.T) {
	ch := newFakeChannel()
	session := floor.NewSession(&fakeProvider{auction: testAuction()}, &fakeDialer{ch: ch}, "spring-sale", "")

	states, stop := startSession(t, session)
	defer stop()
	waitFor(t, states, func(s floor.State) bool { return s.Auction != nil })

	lot, ok := session.LotByNumber(1)
	require.True(t, ok)
	assert.Equal(t, "lot-a", lot.ID)

	_, ok = session.LotByNumber(99)
	assert.False(t, ok)
}

package channel_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/martillo/internal/adapters/channel"
	"github.com/alejandrodnm/martillo/internal/domain"
	"github.com/alejandrodnm/martillo/internal/ports"
)

var upgrader = websocket.Upgrader{}

// wsServer acepta conexiones websocket y las entrega por un chan para que
// el test las maneje una a una.
func wsServer(t *testing.T) (*httptest.Server, chan *websocket.Conn, chan *http.Request) {
	t.Helper()
	conns := make(chan *websocket.Conn, 4)
	reqs := make(chan *http.Request, 4)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		reqs <- r
		conns <- conn
	}))
	t.Cleanup(srv.Close)
	return srv, conns, reqs
}

func wsBase(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dialPublic(t *testing.T, srv *httptest.Server) ports.Channel {
	t.Helper()
	dialer := channel.Dialer{Base: wsBase(srv), ReconnectDelay: 20 * time.Millisecond}
	ch, err := dialer.Dial(context.Background(), ports.Scope{
		Kind:        ports.ScopePublic,
		Slug:        "spring-sale",
		InviteToken: "tok-1",
	})
	require.NoError(t, err)
	return ch
}

func nextEvent(t *testing.T, ch ports.Channel) domain.Event {
	t.Helper()
	select {
	case ev, ok := <-ch.Events():
		require.True(t, ok, "event stream closed")
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("no event arrived")
		return nil
	}
}

func TestDial_PublicScopeURL(t *testing.T) {
	srv, conns, reqs := wsServer(t)
	ch := dialPublic(t, srv)
	defer ch.Close()

	r := <-reqs
	assert.Equal(t, "/ws/auction", r.URL.Path)
	assert.Equal(t, "spring-sale", r.URL.Query().Get("slug"))
	assert.Equal(t, "tok-1", r.URL.Query().Get("t"))

	assert.IsType(t, domain.Connected{}, nextEvent(t, ch))
	(<-conns).Close()
}

func TestDial_AdminScopeURL(t *testing.T) {
	srv, conns, reqs := wsServer(t)

	dialer := channel.Dialer{Base: wsBase(srv), ReconnectDelay: 20 * time.Millisecond}
	ch, err := dialer.Dial(context.Background(), ports.Scope{
		Kind:       ports.ScopeAdmin,
		AdminToken: "admin-tok",
	})
	require.NoError(t, err)
	defer ch.Close()

	r := <-reqs
	assert.Equal(t, "/ws/admin", r.URL.Path)
	assert.Equal(t, "admin-tok", r.URL.Query().Get("token"))

	assert.IsType(t, domain.Connected{}, nextEvent(t, ch))
	(<-conns).Close()
}

func TestDial_ScopeValidation(t *testing.T) {
	dialer := channel.Dialer{Base: "ws://localhost:1"}

	_, err := dialer.Dial(context.Background(), ports.Scope{Kind: ports.ScopePublic})
	assert.Error(t, err)

	_, err = dialer.Dial(context.Background(), ports.Scope{Kind: ports.ScopeAdmin})
	assert.Error(t, err)
}

func TestSocket_DecodesIncomingMessages(t *testing.T) {
	srv, conns, _ := wsServer(t)
	ch := dialPublic(t, srv)
	defer ch.Close()

	conn := <-conns
	defer conn.Close()
	assert.IsType(t, domain.Connected{}, nextEvent(t, ch))

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{
		"type": "state",
		"auction": {"slug": "spring-sale", "title": "Spring Sale", "status": "live",
		            "start_time": null, "end_time": null},
		"lots": [{"id": "lot-a", "lot_number": 1, "name": "Amphora", "currency": "EUR",
		          "current_price": "120.00", "current_leader": "p-3", "end_time": null}],
		"participants": {"count": 7}
	}`)))

	ev := nextEvent(t, ch)
	snap, ok := ev.(domain.StateSnapshot)
	require.True(t, ok)
	assert.Equal(t, domain.StatusLive, snap.Auction.Status)
	assert.Equal(t, 7, snap.ParticipantCount)
	require.Len(t, snap.Lots, 1)
	assert.InDelta(t, 120.0, snap.Lots[0].CurrentPrice, 0.001)
	assert.Equal(t, "p-3", snap.Lots[0].CurrentLeader)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{
		"type": "bid_accepted", "lot_id": "lot-a", "amount": "125.00",
		"leader": "p-4", "ends_at": "2026-08-28T18:00:00+00:00"
	}`)))

	bid, ok := nextEvent(t, ch).(domain.BidAccepted)
	require.True(t, ok)
	assert.InDelta(t, 125.0, bid.Amount, 0.001)
	assert.Equal(t, "p-4", bid.Leader)
	require.NotNil(t, bid.EndsAt)
}

func TestSocket_UnknownAndMalformedTolerated(t *testing.T) {
	srv, conns, _ := wsServer(t)
	ch := dialPublic(t, srv)
	defer ch.Close()

	conn := <-conns
	defer conn.Close()
	assert.IsType(t, domain.Connected{}, nextEvent(t, ch))

	// type desconocido y basura: ambos se descartan sin romper el stream
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type": "lot_featured"}`)))
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`not json at all`)))
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type": "status", "status": "paused"}`)))

	st, ok := nextEvent(t, ch).(domain.StatusChanged)
	require.True(t, ok)
	assert.Equal(t, domain.StatusPaused, st.Status)
}

func TestSocket_SendInjectsType(t *testing.T) {
	srv, conns, _ := wsServer(t)
	ch := dialPublic(t, srv)
	defer ch.Close()

	conn := <-conns
	defer conn.Close()
	assert.IsType(t, domain.Connected{}, nextEvent(t, ch))

	payload := map[string]string{"lot_id": "lot-a", "amount": "105.00", "request_id": "r-1"}
	require.NoError(t, ch.Send(context.Background(), "place_bid", payload))

	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "place_bid", got["type"])
	assert.Equal(t, "lot-a", got["lot_id"])
	assert.Equal(t, "105.00", got["amount"])
}

func TestSocket_ReconnectsAfterDrop(t *testing.T) {
	srv, conns, _ := wsServer(t)
	ch := dialPublic(t, srv)
	defer ch.Close()

	first := <-conns
	assert.IsType(t, domain.Connected{}, nextEvent(t, ch))

	// el servidor corta: Disconnected y reconexión automática
	first.Close()
	assert.IsType(t, domain.Disconnected{}, nextEvent(t, ch))

	second := <-conns
	defer second.Close()
	assert.IsType(t, domain.Connected{}, nextEvent(t, ch))
}

func TestSocket_SendWhileDisconnected(t *testing.T) {
	// nadie escucha en este puerto: el socket queda en bucle de reintento
	dialer := channel.Dialer{Base: "ws://127.0.0.1:1", ReconnectDelay: 10 * time.Millisecond}
	ch, err := dialer.Dial(context.Background(), ports.Scope{
		Kind: ports.ScopePublic,
		Slug: "spring-sale",
	})
	require.NoError(t, err)
	defer ch.Close()

	err = ch.Send(context.Background(), "place_bid", map[string]string{"lot_id": "x"})
	assert.ErrorIs(t, err, channel.ErrDisconnected)
}

func TestSocket_CloseIsSynchronous(t *testing.T) {
	srv, conns, _ := wsServer(t)
	ch := dialPublic(t, srv)

	conn := <-conns
	defer conn.Close()
	assert.IsType(t, domain.Connected{}, nextEvent(t, ch))

	require.NoError(t, ch.Close())

	// tras Close el stream está cerrado, no solo vacío
	_, ok := <-ch.Events()
	assert.False(t, ok)
}

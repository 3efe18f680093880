package channel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/alejandrodnm/martillo/internal/domain"
	"github.com/alejandrodnm/martillo/internal/ports"
)

const (
	defaultReconnectDelay = 500 * time.Millisecond
	handshakeTimeout      = 10 * time.Second
	eventBuffer           = 64
)

// ErrDisconnected se devuelve al enviar mientras el canal está caído.
// El caller decide si reintenta; el canal no encola salientes.
var ErrDisconnected = errors.New("channel: disconnected")

// Dialer implementa ports.ChannelDialer sobre websockets. La reconexión
// es automática: reintentos ilimitados con delay fijo, sin backoff ni
// cap, sin intervención manual.
type Dialer struct {
	Base           string        // base ws:// o wss://
	ReconnectDelay time.Duration // 0 = default 500ms
}

// Dial abre un canal para el scope dado. Devuelve enseguida; la conexión
// ocurre en background y se señaliza con Connected/Disconnected en el
// stream de eventos. El canal vive hasta Close o hasta que ctx se cancele.
func (d Dialer) Dial(ctx context.Context, scope ports.Scope) (ports.Channel, error) {
	target, err := scopeURL(d.Base, scope)
	if err != nil {
		return nil, err
	}

	delay := d.ReconnectDelay
	if delay <= 0 {
		delay = defaultReconnectDelay
	}

	runCtx, cancel := context.WithCancel(ctx)
	s := &Socket{
		url:    target,
		delay:  delay,
		events: make(chan domain.Event, eventBuffer),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go s.run(runCtx)
	return s, nil
}

// scopeURL construye la URL del websocket para un scope.
func scopeURL(base string, scope ports.Scope) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("channel: parse base %q: %w", base, err)
	}

	q := u.Query()
	switch scope.Kind {
	case ports.ScopePublic:
		if scope.Slug == "" {
			return "", errors.New("channel: public scope requires a slug")
		}
		u.Path = strings.TrimRight(u.Path, "/") + "/ws/auction"
		q.Set("slug", scope.Slug)
		if scope.InviteToken != "" {
			q.Set("t", scope.InviteToken)
		}
	case ports.ScopeAdmin:
		if scope.AdminToken == "" {
			return "", errors.New("channel: admin scope requires a token")
		}
		u.Path = strings.TrimRight(u.Path, "/") + "/ws/admin"
		q.Set("token", scope.AdminToken)
	default:
		return "", fmt.Errorf("channel: unknown scope kind %q", scope.Kind)
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Socket es una suscripción duplex sobre un websocket con reconexión
// automática. Implementa ports.Channel.
type Socket struct {
	url    string
	delay  time.Duration
	events chan domain.Event

	mu      sync.Mutex
	conn    *websocket.Conn // nil mientras desconectado
	writeMu sync.Mutex

	cancel context.CancelFunc
	done   chan struct{}
}

// Events devuelve el stream de eventos. Se cierra tras Close.
func (s *Socket) Events() <-chan domain.Event {
	return s.events
}

// Send envía un mensaje {type, ...payload}. Falla con ErrDisconnected si
// no hay conexión en este momento.
func (s *Socket) Send(_ context.Context, typ string, payload any) error {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn == nil {
		return ErrDisconnected
	}

	msg, err := encodeMessage(typ, payload)
	if err != nil {
		return fmt.Errorf("channel: encode %s: %w", typ, err)
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
		return fmt.Errorf("channel: send %s: %w", typ, err)
	}
	return nil
}

// Close cierra la suscripción de forma síncrona: al volver, la conexión
// está cerrada, el loop de reconexión terminado y sus timers liberados.
func (s *Socket) Close() error {
	s.cancel()
	s.mu.Lock()
	if s.conn != nil {
		s.conn.Close()
	}
	s.mu.Unlock()
	<-s.done
	return nil
}

// run es el loop de (re)conexión. Emite Connected tras cada handshake y
// Disconnected tras cada caída; entre medias bombea eventos decodificados.
func (s *Socket) run(ctx context.Context) {
	defer close(s.done)
	defer close(s.events)

	dialer := &websocket.Dialer{HandshakeTimeout: handshakeTimeout}

	for {
		if ctx.Err() != nil {
			return
		}

		conn, resp, err := dialer.DialContext(ctx, s.url, nil)
		if resp != nil && resp.Body != nil {
			resp.Body.Close()
		}
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			slog.Debug("channel: dial failed, will retry", "err", err, "delay", s.delay)
			if !s.sleep(ctx) {
				return
			}
			continue
		}

		s.setConn(conn)
		s.emit(ctx, domain.Connected{})

		// conn.ReadMessage no respeta ctx; cerramos la conexión para
		// desbloquearlo cuando el contexto muere.
		readDone := make(chan struct{})
		go func() {
			select {
			case <-ctx.Done():
				conn.Close()
			case <-readDone:
			}
		}()

		s.readLoop(ctx, conn)
		close(readDone)
		conn.Close()
		s.setConn(nil)

		if ctx.Err() != nil {
			return
		}
		s.emit(ctx, domain.Disconnected{})
		if !s.sleep(ctx) {
			return
		}
	}
}

// readLoop bombea mensajes hasta que la conexión falla. Un mensaje
// indecodificable se descarta con un warning; un type desconocido se
// ignora en silencio.
func (s *Socket) readLoop(ctx context.Context, conn *websocket.Conn) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				slog.Debug("channel: read failed", "err", err)
			}
			return
		}

		ev, err := decodeEvent(data)
		if err != nil {
			slog.Warn("channel: dropping undecodable message", "err", err)
			continue
		}
		if ev == nil {
			continue
		}
		s.emit(ctx, ev)
	}
}

func (s *Socket) emit(ctx context.Context, ev domain.Event) {
	select {
	case s.events <- ev:
	case <-ctx.Done():
	}
}

// sleep espera el delay fijo de reconexión. Devuelve false si el contexto
// murió durante la espera.
func (s *Socket) sleep(ctx context.Context) bool {
	timer := time.NewTimer(s.delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}

func (s *Socket) setConn(conn *websocket.Conn) {
	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()
}

package ports

import (
	"context"

	"github.com/alejandrodnm/martillo/internal/domain"
)

// ScopeKind distingue los dos contextos de suscripción del canal.
type ScopeKind string

const (
	ScopePublic ScopeKind = "public"
	ScopeAdmin  ScopeKind = "admin"
)

// Scope identifica el contexto addressable de una suscripción: una subasta
// concreta (público) o una sesión de admin (privilegiado).
type Scope struct {
	Kind        ScopeKind
	Slug        string // requerido en scope público
	InviteToken string // opcional en scope público
	AdminToken  string // requerido en scope admin
}

// Channel es una suscripción duplex persistente con reconexión automática
// (reintentos ilimitados, delay fijo corto, sin backoff).
type Channel interface {
	// Events entrega transiciones de conectividad y eventos de dominio en
	// el orden en que el transporte los entrega (FIFO por scope, sin
	// reordenar ni bufferizar). El stream se cierra tras Close.
	Events() <-chan domain.Event

	// Send envía un mensaje saliente {type, ...payload}. Falla si el canal
	// está desconectado en ese momento; el caller decide si reintenta.
	Send(ctx context.Context, typ string, payload any) error

	// Close cierra la suscripción y libera los timers de reconexión de
	// forma síncrona. En scope admin el caller envía leave_auction antes
	// de cerrar; no hacerlo filtra la membresía de room en el servidor.
	Close() error
}

// ChannelDialer abre canales para un scope dado. Dial devuelve enseguida;
// la conexión (y reconexión) ocurre en background y se señaliza con los
// eventos Connected/Disconnected del stream.
type ChannelDialer interface {
	Dial(ctx context.Context, scope Scope) (Channel, error)
}

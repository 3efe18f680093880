package domain

import "time"

// AuctionStatus es el estado de una subasta declarado por el servidor.
// El cliente nunca origina transiciones, solo las observa.
type AuctionStatus string

const (
	StatusDraft  AuctionStatus = "draft"
	StatusLive   AuctionStatus = "live"
	StatusPaused AuctionStatus = "paused"
	StatusEnded  AuctionStatus = "ended"
)

// CanTransition indica si el servidor aceptaría el cambio de estado.
// "ended" es terminal. Se usa solo para evitar requests inútiles desde
// la consola de admin; el servidor sigue siendo la autoridad.
func (s AuctionStatus) CanTransition(to AuctionStatus) bool {
	switch s {
	case StatusDraft:
		return to == StatusLive
	case StatusLive:
		return to == StatusPaused || to == StatusEnded
	case StatusPaused:
		return to == StatusLive || to == StatusEnded
	default:
		return false
	}
}

// Auction es el evento top-level, identificado por un slug estable.
type Auction struct {
	ID          string
	Slug        string
	Title       string
	Description string
	Status      AuctionStatus
	StartTime   *time.Time
	EndTime     *time.Time
	CreatedAt   time.Time
	Lots        []Lot
}

// Lot es un artículo bajo puja dentro de una subasta.
// LotNumber es la única clave de ordenación para display: el orden de
// llegada de los updates nunca afecta al orden mostrado.
type Lot struct {
	ID            string
	LotNumber     int
	Name          string
	BasePrice     float64
	MinIncrement  float64
	Currency      string
	CurrentPrice  float64
	CurrentLeader string // participant id, "" si nadie lidera
	EndTime       *time.Time
	ImageURL      string
	Status        string
}

// MinRequired devuelve la puja mínima que el servidor aceptaría:
// max(base_price, current_price + min_increment).
func (l Lot) MinRequired() float64 {
	next := l.CurrentPrice + l.MinIncrement
	if l.BasePrice > next {
		return l.BasePrice
	}
	return next
}

// HasLeader devuelve true si algún participante lidera el lote.
func (l Lot) HasLeader() bool {
	return l.CurrentLeader != ""
}

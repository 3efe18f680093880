package domain

import "time"

// Event es la unión etiquetada de todo lo que puede mutar el view model de
// una sesión. El reducer de floor los aplica en serie, uno a uno; no hay
// mutación paralela del estado.
type Event interface {
	isEvent()
}

// SnapshotLoaded es el resultado del pull REST inicial: el registro completo
// de la subasta, incluyendo base_price y min_increment de cada lote. Es la
// única fuente de esos dos campos durante la vida de la suscripción.
type SnapshotLoaded struct {
	Auction Auction
}

// Connected y Disconnected son transiciones de conectividad del canal.
// No llevan datos de dominio y no tocan los lotes.
type Connected struct{}

type Disconnected struct{}

// StateSnapshot es el snapshot compacto que el servidor empuja en cada
// (re)conexión. Omite base_price y min_increment; el reducer los arrastra
// desde la última fuente completa.
type StateSnapshot struct {
	Auction          SnapshotHeader
	Lots             []LotSnapshot
	ParticipantCount int
}

// SnapshotHeader es la cabecera de subasta dentro del snapshot compacto.
type SnapshotHeader struct {
	Slug      string
	Title     string
	Status    AuctionStatus
	StartTime *time.Time
	EndTime   *time.Time
}

// LotSnapshot son los campos de lote presentes en el snapshot compacto.
type LotSnapshot struct {
	ID            string
	LotNumber     int
	Name          string
	Currency      string
	CurrentPrice  float64
	CurrentLeader string
	EndTime       *time.Time
}

// BidAccepted indica que el servidor aceptó una puja sobre un lote.
// EndsAt nil significa que el end_time del lote no cambia (el servidor
// solo lo mueve con anti-sniping activo).
type BidAccepted struct {
	LotID  string
	Amount float64
	Leader string
	EndsAt *time.Time
}

// BidRejected indica que el servidor rechazó la puja del propio cliente.
// Nunca muta lotes.
type BidRejected struct {
	Reason string
}

// StatusChanged es un cambio de estado de la subasta empujado por el servidor.
type StatusChanged struct {
	Status AuctionStatus
}

// ErrorSignal es un error genérico del canal, no fatal.
type ErrorSignal struct {
	Detail string
}

// BidLogged es una entrada nueva del bid log (solo scope admin).
type BidLogged struct {
	Entry BidLogEntry
}

func (SnapshotLoaded) isEvent() {}
func (Connected) isEvent()      {}
func (Disconnected) isEvent()   {}
func (StateSnapshot) isEvent()  {}
func (BidAccepted) isEvent()    {}
func (BidRejected) isEvent()    {}
func (StatusChanged) isEvent()  {}
func (ErrorSignal) isEvent()    {}
func (BidLogged) isEvent()      {}

package domain

import "time"

// Vendor es un proveedor registrado en la plataforma.
type Vendor struct {
	ID        string
	Name      string
	Email     string
	Comment   string
	CreatedAt time.Time
}

// VendorDraft es el payload de creación/actualización de un vendor.
type VendorDraft struct {
	Name    string
	Email   string
	Comment string
}

// VendorRef es la referencia embebida de vendor dentro de un participante.
type VendorRef struct {
	ID    string
	Name  string
	Email string
}

// Participant existe solo en el contexto de una subasta y un vendor.
// InviteToken da acceso al scope público de esa subasta.
type Participant struct {
	ID          string
	JoinURL     string
	InviteToken string
	Vendor      VendorRef
}

// LotDraft es el payload de creación de lote (solo admin).
type LotDraft struct {
	Name         string
	BasePrice    float64
	MinIncrement float64
	Currency     string
	ImageURL     string
}

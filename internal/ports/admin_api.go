package ports

import (
	"context"

	"github.com/alejandrodnm/martillo/internal/domain"
)

// AdminAPI es la superficie REST privilegiada del backend, consumida por
// la consola de admin a través del proxy transparente.
type AdminAPI interface {
	// ListBidLog devuelve el bid log en el orden en que lo sirve el
	// servidor; el cliente no re-ordena, solo antepone pushes nuevos.
	ListBidLog(ctx context.Context, slug string) ([]domain.BidLogEntry, error)

	// SetAuctionStatus pide una transición de estado al servidor.
	SetAuctionStatus(ctx context.Context, slug string, status domain.AuctionStatus) error

	// CreateLot crea un lote en la subasta dada.
	CreateLot(ctx context.Context, slug string, draft domain.LotDraft) (domain.Lot, error)

	// Vendor CRUD
	ListVendors(ctx context.Context) ([]domain.Vendor, error)
	GetVendor(ctx context.Context, id string) (domain.Vendor, error)
	CreateVendor(ctx context.Context, draft domain.VendorDraft) (domain.Vendor, error)
	UpdateVendor(ctx context.Context, id string, draft domain.VendorDraft) (domain.Vendor, error)
	DeleteVendor(ctx context.Context, id string) error

	// Participant CRUD (scoped a una subasta)
	ListParticipants(ctx context.Context, slug string) ([]domain.Participant, error)
	CreateParticipant(ctx context.Context, slug, vendorID string) (domain.Participant, error)
	DeleteParticipant(ctx context.Context, slug, participantID string) error
}

package ports

import (
	"context"

	"github.com/alejandrodnm/martillo/internal/domain"
)

// SnapshotProvider hace el pull one-shot del registro completo de una
// subasta (lotes con base_price y min_increment incluidos).
// No reintenta: un fallo se reporta como lastError y el primer snapshot
// del canal puede poblar el estado igualmente.
type SnapshotProvider interface {
	// GetAuction devuelve el registro completo de la subasta por slug.
	GetAuction(ctx context.Context, slug string) (domain.Auction, error)

	// ListAuctions devuelve todas las subastas visibles.
	ListAuctions(ctx context.Context) ([]domain.Auction, error)
}

package admin

import (
	"context"
	"fmt"

	"github.com/alejandrodnm/martillo/internal/domain"
	"github.com/alejandrodnm/martillo/internal/ports"
)

// Auctions exposes the privileged auction operations: status transitions
// and lot creation. Neither touches the cache; both are plain confirmed
// writes with a render-side legality check to avoid pointless requests.
type Auctions struct {
	api       ports.AdminAPI
	snapshots ports.SnapshotProvider
	notify    ports.Notifier
}

// NewAuctions wires the auction admin service.
func NewAuctions(api ports.AdminAPI, snapshots ports.SnapshotProvider, notify ports.Notifier) *Auctions {
	return &Auctions{api: api, snapshots: snapshots, notify: notify}
}

// SetStatus requests a status transition. The server enforces legality;
// the local check only rejects transitions the server is guaranteed to
// refuse (ended is terminal, draft can only go live, and so on).
func (a *Auctions) SetStatus(ctx context.Context, slug string, to domain.AuctionStatus) error {
	auction, err := a.snapshots.GetAuction(ctx, slug)
	if err != nil {
		return fmt.Errorf("admin: load auction %q: %w", slug, err)
	}
	if !auction.Status.CanTransition(to) {
		err := fmt.Errorf("admin: illegal transition %s -> %s", auction.Status, to)
		a.notify.Error(err.Error())
		return err
	}

	if err := a.api.SetAuctionStatus(ctx, slug, to); err != nil {
		a.notify.Error("Failed to change status: " + err.Error())
		return err
	}
	a.notify.Info(fmt.Sprintf("Auction %s is now %s", slug, to))
	return nil
}

// CreateLot creates a lot in the auction.
func (a *Auctions) CreateLot(ctx context.Context, slug string, draft domain.LotDraft) (domain.Lot, error) {
	lot, err := a.api.CreateLot(ctx, slug, draft)
	if err != nil {
		a.notify.Error("Failed to create lot: " + err.Error())
		return domain.Lot{}, err
	}
	a.notify.Info(fmt.Sprintf("Lot %d created", lot.LotNumber))
	return lot, nil
}

package floor

import (
	"sort"

	"github.com/alejandrodnm/martillo/internal/domain"
)

// State is the view model for one auction subscription. A single Session
// owns it; the reducer is the only writer after initial load.
type State struct {
	Auction          *domain.Auction
	Lots             map[string]domain.Lot
	Status           domain.AuctionStatus
	Connected        bool
	LastError        string
	ParticipantCount int
}

// NewState returns the empty initial state: no auction, no lots,
// disconnected.
func NewState() State {
	return State{Lots: make(map[string]domain.Lot)}
}

// Reduce applies one event and returns the next state. Pure function: the
// input state is never mutated in place, so callers may keep old snapshots
// around for comparison. Lot maps are copied on write.
func Reduce(s State, ev domain.Event) State {
	switch e := ev.(type) {
	case domain.SnapshotLoaded:
		return reduceLoaded(s, e)
	case domain.Connected:
		s.Connected = true
		return s
	case domain.Disconnected:
		s.Connected = false
		return s
	case domain.StateSnapshot:
		return reduceSnapshot(s, e)
	case domain.BidAccepted:
		return reduceBid(s, e)
	case domain.BidRejected:
		s.LastError = e.Reason
		return s
	case domain.StatusChanged:
		s.Status = e.Status
		return s
	case domain.ErrorSignal:
		s.LastError = e.Detail
		return s
	}
	return s
}

// reduceLoaded installs the full record from the one-shot pull. This is
// the only point where base_price and min_increment originate; every
// later compact snapshot carries them forward.
func reduceLoaded(s State, e domain.SnapshotLoaded) State {
	a := e.Auction
	s.Auction = &a
	s.Status = a.Status

	lots := make(map[string]domain.Lot, len(a.Lots))
	for _, l := range a.Lots {
		lots[l.ID] = l
	}
	s.Lots = lots
	return s
}

// reduceSnapshot applies a compact snapshot: full replacement of the lot
// set and of every field the payload carries, preserving only the pricing
// configuration (and other full-pull-only fields) the compact form omits.
// A lot absent from the snapshot disappears from the view.
func reduceSnapshot(s State, e domain.StateSnapshot) State {
	lots := make(map[string]domain.Lot, len(e.Lots))
	for _, ls := range e.Lots {
		lot := domain.Lot{
			ID:            ls.ID,
			LotNumber:     ls.LotNumber,
			Name:          ls.Name,
			Currency:      ls.Currency,
			CurrentPrice:  ls.CurrentPrice,
			CurrentLeader: ls.CurrentLeader,
			EndTime:       ls.EndTime,
		}
		if prev, ok := s.Lots[ls.ID]; ok {
			lot.BasePrice = prev.BasePrice
			lot.MinIncrement = prev.MinIncrement
			lot.ImageURL = prev.ImageURL
			lot.Status = prev.Status
		}
		lots[ls.ID] = lot
	}

	s.Lots = lots
	s.Status = e.Auction.Status
	s.ParticipantCount = e.ParticipantCount
	return s
}

// reduceBid applies an accepted bid to a known lot. An unknown lot id is
// ignored, not an error: the lot may belong to a snapshot we have not
// merged yet.
func reduceBid(s State, e domain.BidAccepted) State {
	lot, ok := s.Lots[e.LotID]
	if !ok {
		return s
	}

	lot.CurrentPrice = e.Amount
	lot.CurrentLeader = e.Leader
	if e.EndsAt != nil {
		lot.EndTime = e.EndsAt
	}

	lots := make(map[string]domain.Lot, len(s.Lots))
	for k, v := range s.Lots {
		lots[k] = v
	}
	lots[e.LotID] = lot
	s.Lots = lots
	return s
}

// OrderedLots returns the lots sorted ascending by lot_number, the sole
// display ordering key. Recomputed on every call.
func (s State) OrderedLots() []domain.Lot {
	lots := make([]domain.Lot, 0, len(s.Lots))
	for _, l := range s.Lots {
		lots = append(lots, l)
	}
	sort.Slice(lots, func(i, j int) bool {
		return lots[i].LotNumber < lots[j].LotNumber
	})
	return lots
}

package floor_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/martillo/internal/application/floor"
	"github.com/alejandrodnm/martillo/internal/domain"
)

func loadedAuction() domain.SnapshotLoaded {
	return domain.SnapshotLoaded{Auction: domain.Auction{
		Slug:   "spring-sale",
		Title:  "Spring Sale",
		Status: domain.StatusLive,
		Lots: []domain.Lot{
			{ID: "lot-a", LotNumber: 2, Name: "Amphora", BasePrice: 100, MinIncrement: 5, Currency: "EUR", CurrentPrice: 100, CurrentLeader: "p-9"},
			{ID: "lot-b", LotNumber: 1, Name: "Bust", BasePrice: 50, MinIncrement: 10, Currency: "EUR"},
		},
	}}
}

func TestReduce_LoadInstallsLots(t *testing.T) {
	s := floor.Reduce(floor.NewState(), loadedAuction())

	require.NotNil(t, s.Auction)
	assert.Equal(t, domain.StatusLive, s.Status)
	require.Len(t, s.Lots, 2)
	assert.InDelta(t, 100.0, s.Lots["lot-a"].BasePrice, 0.001)
	assert.InDelta(t, 5.0, s.Lots["lot-a"].MinIncrement, 0.001)
}

func TestReduce_BidAcceptedUpdatesPriceAndLeader(t *testing.T) {
	s := floor.Reduce(floor.NewState(), loadedAuction())
	ends := time.Now().Add(2 * time.Minute).UTC()

	s = floor.Reduce(s, domain.BidAccepted{
		LotID:  "lot-a",
		Amount: 120,
		Leader: "p-3",
		EndsAt: &ends,
	})

	lot := s.Lots["lot-a"]
	assert.InDelta(t, 120.0, lot.CurrentPrice, 0.001)
	assert.Equal(t, "p-3", lot.CurrentLeader)
	require.NotNil(t, lot.EndTime)
	assert.Equal(t, ends, *lot.EndTime)
	// la configuración de precios no cambia con una puja
	assert.InDelta(t, 100.0, lot.BasePrice, 0.001)
	assert.InDelta(t, 5.0, lot.MinIncrement, 0.001)
}

func TestReduce_BidAcceptedWithoutEndsAtKeepsEndTime(t *testing.T) {
	ends := time.Now().Add(time.Hour).UTC()
	s := floor.Reduce(floor.NewState(), loadedAuction())

	s = floor.Reduce(s, domain.BidAccepted{LotID: "lot-a", Amount: 110, Leader: "p-1", EndsAt: &ends})
	s = floor.Reduce(s, domain.BidAccepted{LotID: "lot-a", Amount: 115, Leader: "p-2"})

	lot := s.Lots["lot-a"]
	require.NotNil(t, lot.EndTime)
	assert.Equal(t, ends, *lot.EndTime)
	assert.Equal(t, "p-2", lot.CurrentLeader)
}

func TestReduce_BidAcceptedUnknownLotIgnored(t *testing.T) {
	s := floor.Reduce(floor.NewState(), loadedAuction())
	before := s

	s = floor.Reduce(s, domain.BidAccepted{LotID: "lot-zzz", Amount: 999, Leader: "p-1"})

	assert.Equal(t, before.Lots, s.Lots)
	assert.Empty(t, s.LastError)
}

func TestReduce_BidRejectedOnlySetsError(t *testing.T) {
	s := floor.Reduce(floor.NewState(), loadedAuction())
	before := s.Lots

	s = floor.Reduce(s, domain.BidRejected{Reason: "bid too low"})

	assert.Equal(t, "bid too low", s.LastError)
	assert.Equal(t, before, s.Lots)
}

func TestReduce_SnapshotCarriesForwardPricingConfig(t *testing.T) {
	s := floor.Reduce(floor.NewState(), loadedAuction())

	// snapshot compacto tras una reconexión: sin base_price ni min_increment
	s = floor.Reduce(s, domain.StateSnapshot{
		Auction: domain.SnapshotHeader{Slug: "spring-sale", Status: domain.StatusLive},
		Lots: []domain.LotSnapshot{
			{ID: "lot-a", LotNumber: 2, Name: "Amphora", Currency: "EUR", CurrentPrice: 140, CurrentLeader: "p-7"},
			{ID: "lot-b", LotNumber: 1, Name: "Bust", Currency: "EUR", CurrentPrice: 60, CurrentLeader: "p-2"},
		},
		ParticipantCount: 12,
	})

	lot := s.Lots["lot-a"]
	assert.InDelta(t, 140.0, lot.CurrentPrice, 0.001)
	assert.Equal(t, "p-7", lot.CurrentLeader)
	// lo que el snapshot omite se arrastra del estado previo
	assert.InDelta(t, 100.0, lot.BasePrice, 0.001)
	assert.InDelta(t, 5.0, lot.MinIncrement, 0.001)
	assert.InDelta(t, 145.0, lot.MinRequired(), 0.001)
	assert.Equal(t, 12, s.ParticipantCount)
}

func TestReduce_SnapshotIsFullReplacement(t *testing.T) {
	s := floor.Reduce(floor.NewState(), loadedAuction())

	// lot-b ausente del snapshot → desaparece de la vista
	s = floor.Reduce(s, domain.StateSnapshot{
		Auction: domain.SnapshotHeader{Slug: "spring-sale", Status: domain.StatusLive},
		Lots: []domain.LotSnapshot{
			{ID: "lot-a", LotNumber: 2, Name: "Amphora", Currency: "EUR", CurrentPrice: 100},
		},
	})

	require.Len(t, s.Lots, 1)
	_, ok := s.Lots["lot-b"]
	assert.False(t, ok)
}

func TestReduce_SnapshotForUnseenLotHasZeroPricing(t *testing.T) {
	// snapshot antes de que el pull haya llegado: sin configuración previa
	s := floor.Reduce(floor.NewState(), domain.StateSnapshot{
		Auction: domain.SnapshotHeader{Slug: "spring-sale", Status: domain.StatusLive},
		Lots: []domain.LotSnapshot{
			{ID: "lot-c", LotNumber: 3, Name: "Clock", Currency: "EUR", CurrentPrice: 70, CurrentLeader: "p-1"},
		},
	})

	lot := s.Lots["lot-c"]
	assert.InDelta(t, 0.0, lot.BasePrice, 0.001)
	assert.InDelta(t, 70.0, lot.CurrentPrice, 0.001)
}

func TestReduce_StatusChanged(t *testing.T) {
	s := floor.Reduce(floor.NewState(), loadedAuction())
	s = floor.Reduce(s, domain.StatusChanged{Status: domain.StatusPaused})
	assert.Equal(t, domain.StatusPaused, s.Status)
}

func TestReduce_ConnectivityToggle(t *testing.T) {
	s := floor.NewState()
	assert.False(t, s.Connected)

	s = floor.Reduce(s, domain.Connected{})
	assert.True(t, s.Connected)

	s = floor.Reduce(s, domain.Disconnected{})
	assert.False(t, s.Connected)
}

func TestReduce_IsPure(t *testing.T) {
	s := floor.Reduce(floor.NewState(), loadedAuction())
	snapshotBefore := s.Lots["lot-a"]

	_ = floor.Reduce(s, domain.BidAccepted{LotID: "lot-a", Amount: 500, Leader: "p-9"})

	// el estado de entrada no se muta
	assert.Equal(t, snapshotBefore, s.Lots["lot-a"])
}

func TestOrderedLots_SortedByLotNumber(t *testing.T) {
	s := floor.Reduce(floor.NewState(), loadedAuction())

	lots := s.OrderedLots()
	require.Len(t, lots, 2)
	assert.Equal(t, 1, lots[0].LotNumber)
	assert.Equal(t, 2, lots[1].LotNumber)
}

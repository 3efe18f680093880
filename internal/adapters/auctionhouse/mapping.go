package auctionhouse

import (
	"strconv"
	"time"

	"github.com/alejandrodnm/martillo/internal/domain"
)

// timeLayouts son los formatos de timestamp que emite el backend
// (isoformat con y sin fracción de segundo, con offset o con Z).
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.000Z",
	"2006-01-02T15:04:05",
}

// parseAmount convierte un decimal serializado como string. El backend
// siempre emite decimales válidos; un valor malformado se trata como 0.
func parseAmount(s string) float64 {
	v, _ := strconv.ParseFloat(s, 64)
	return v
}

// parseTime intenta los layouts conocidos y devuelve zero time si ninguno
// encaja.
func parseTime(s string) time.Time {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

// parseTimePtr es parseTime para campos nullable.
func parseTimePtr(s *string) *time.Time {
	if s == nil || *s == "" {
		return nil
	}
	t := parseTime(*s)
	if t.IsZero() {
		return nil
	}
	return &t
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// mapAuction convierte un auctionDTO a domain.Auction.
func mapAuction(dto auctionDTO) domain.Auction {
	a := domain.Auction{
		ID:          dto.ID,
		Slug:        dto.Slug,
		Title:       dto.Title,
		Description: deref(dto.Description),
		Status:      domain.AuctionStatus(dto.Status),
		StartTime:   parseTimePtr(dto.StartTime),
		EndTime:     parseTimePtr(dto.EndTime),
		CreatedAt:   parseTime(dto.CreatedAt),
	}

	a.Lots = make([]domain.Lot, 0, len(dto.Lots))
	for _, l := range dto.Lots {
		a.Lots = append(a.Lots, mapLot(l))
	}
	return a
}

// mapLot convierte un lotDTO a domain.Lot.
func mapLot(dto lotDTO) domain.Lot {
	return domain.Lot{
		ID:            dto.ID,
		LotNumber:     dto.LotNumber,
		Name:          dto.Name,
		BasePrice:     parseAmount(dto.BasePrice),
		MinIncrement:  parseAmount(dto.MinIncrement),
		Currency:      dto.Currency,
		CurrentPrice:  parseAmount(dto.CurrentPrice),
		CurrentLeader: deref(dto.CurrentLeader),
		EndTime:       parseTimePtr(dto.EndTime),
		ImageURL:      deref(dto.ImageURL),
		Status:        deref(dto.Status),
	}
}

// mapVendor convierte un vendorDTO a domain.Vendor.
func mapVendor(dto vendorDTO) domain.Vendor {
	return domain.Vendor{
		ID:        dto.ID,
		Name:      dto.Name,
		Email:     dto.Email,
		Comment:   deref(dto.Comment),
		CreatedAt: parseTime(dto.CreatedAt),
	}
}

func mapVendors(dtos []vendorDTO) []domain.Vendor {
	out := make([]domain.Vendor, 0, len(dtos))
	for _, d := range dtos {
		out = append(out, mapVendor(d))
	}
	return out
}

// mapParticipant convierte un participantDTO a domain.Participant.
func mapParticipant(dto participantDTO) domain.Participant {
	return domain.Participant{
		ID:          dto.ID,
		JoinURL:     dto.JoinURL,
		InviteToken: dto.InviteToken,
		Vendor: domain.VendorRef{
			ID:    dto.Vendor.ID,
			Name:  dto.Vendor.Name,
			Email: dto.Vendor.Email,
		},
	}
}

func mapParticipants(dtos []participantDTO) []domain.Participant {
	out := make([]domain.Participant, 0, len(dtos))
	for _, d := range dtos {
		out = append(out, mapParticipant(d))
	}
	return out
}

// mapBidLogEntry convierte un bidLogEntryDTO a domain.BidLogEntry.
func mapBidLogEntry(dto bidLogEntryDTO) domain.BidLogEntry {
	return domain.BidLogEntry{
		ID:         dto.ID,
		LotID:      dto.LotID,
		LotNumber:  dto.LotNumber,
		LotName:    dto.LotName,
		VendorName: dto.VendorName,
		Amount:     parseAmount(dto.Amount),
		Currency:   dto.Currency,
		PlacedAt:   parseTime(dto.PlacedAt),
	}
}

func mapBidLog(dtos []bidLogEntryDTO) []domain.BidLogEntry {
	out := make([]domain.BidLogEntry, 0, len(dtos))
	for _, d := range dtos {
		out = append(out, mapBidLogEntry(d))
	}
	return out
}

// formatAmount serializa un importe como decimal string para el backend.
func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func optComment(comment string) *string {
	if comment == "" {
		return nil
	}
	return &comment
}

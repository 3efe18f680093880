package channel

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/alejandrodnm/martillo/internal/domain"
)

// Mensajes del canal: un objeto JSON plano con discriminador "type". Los
// importes viajan como strings decimales, igual que en la superficie REST.

type wireEnvelope struct {
	Type string `json:"type"`
}

type wireStateAuction struct {
	Slug      string  `json:"slug"`
	Title     string  `json:"title"`
	Status    string  `json:"status"`
	StartTime *string `json:"start_time"`
	EndTime   *string `json:"end_time"`
}

type wireStateLot struct {
	ID            string  `json:"id"`
	LotNumber     int     `json:"lot_number"`
	Name          string  `json:"name"`
	Currency      string  `json:"currency"`
	CurrentPrice  string  `json:"current_price"`
	CurrentLeader *string `json:"current_leader"`
	EndTime       *string `json:"end_time"`
}

// wireState es el snapshot compacto de cada (re)conexión: estado y agenda
// de la subasta más los campos vivos de cada lote. Omite base_price y
// min_increment.
type wireState struct {
	Auction      wireStateAuction `json:"auction"`
	Lots         []wireStateLot   `json:"lots"`
	Participants struct {
		Count int `json:"count"`
	} `json:"participants"`
}

type wireBidAccepted struct {
	LotID  string  `json:"lot_id"`
	Amount string  `json:"amount"`
	Leader string  `json:"leader"`
	EndsAt *string `json:"ends_at"`
}

type wireBidRejected struct {
	Reason string `json:"reason"`
}

type wireStatus struct {
	Status string `json:"status"`
}

type wireError struct {
	Detail string `json:"detail"`
}

type wireBidLogEntry struct {
	ID         string `json:"id"`
	LotID      string `json:"lot_id"`
	LotNumber  int    `json:"lot_number"`
	LotName    string `json:"lot_name"`
	VendorName string `json:"vendor_name"`
	Amount     string `json:"amount"`
	Currency   string `json:"currency"`
	PlacedAt   string `json:"placed_at"`
}

// decodeEvent convierte un mensaje entrante en su domain.Event. Devuelve
// (nil, nil) para types desconocidos: el canal los tolera sin romper el
// stream.
func decodeEvent(data []byte) (domain.Event, error) {
	var env wireEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("envelope: %w", err)
	}

	switch env.Type {
	case "state":
		var msg wireState
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, fmt.Errorf("state: %w", err)
		}
		return mapState(msg), nil
	case "bid_accepted":
		var msg wireBidAccepted
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, fmt.Errorf("bid_accepted: %w", err)
		}
		return domain.BidAccepted{
			LotID:  msg.LotID,
			Amount: parseWireAmount(msg.Amount),
			Leader: msg.Leader,
			EndsAt: parseWireTimePtr(msg.EndsAt),
		}, nil
	case "bid_rejected":
		var msg wireBidRejected
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, fmt.Errorf("bid_rejected: %w", err)
		}
		return domain.BidRejected{Reason: msg.Reason}, nil
	case "status":
		var msg wireStatus
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, fmt.Errorf("status: %w", err)
		}
		return domain.StatusChanged{Status: domain.AuctionStatus(msg.Status)}, nil
	case "error":
		var msg wireError
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, fmt.Errorf("error: %w", err)
		}
		return domain.ErrorSignal{Detail: msg.Detail}, nil
	case "bid_log_entry":
		var msg wireBidLogEntry
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, fmt.Errorf("bid_log_entry: %w", err)
		}
		return domain.BidLogged{Entry: domain.BidLogEntry{
			ID:         msg.ID,
			LotID:      msg.LotID,
			LotNumber:  msg.LotNumber,
			LotName:    msg.LotName,
			VendorName: msg.VendorName,
			Amount:     parseWireAmount(msg.Amount),
			Currency:   msg.Currency,
			PlacedAt:   parseWireTime(msg.PlacedAt),
		}}, nil
	}
	return nil, nil
}

func mapState(msg wireState) domain.StateSnapshot {
	snap := domain.StateSnapshot{
		Auction: domain.SnapshotHeader{
			Slug:      msg.Auction.Slug,
			Title:     msg.Auction.Title,
			Status:    domain.AuctionStatus(msg.Auction.Status),
			StartTime: parseWireTimePtr(msg.Auction.StartTime),
			EndTime:   parseWireTimePtr(msg.Auction.EndTime),
		},
		ParticipantCount: msg.Participants.Count,
	}

	snap.Lots = make([]domain.LotSnapshot, 0, len(msg.Lots))
	for _, l := range msg.Lots {
		leader := ""
		if l.CurrentLeader != nil {
			leader = *l.CurrentLeader
		}
		snap.Lots = append(snap.Lots, domain.LotSnapshot{
			ID:            l.ID,
			LotNumber:     l.LotNumber,
			Name:          l.Name,
			Currency:      l.Currency,
			CurrentPrice:  parseWireAmount(l.CurrentPrice),
			CurrentLeader: leader,
			EndTime:       parseWireTimePtr(l.EndTime),
		})
	}
	return snap
}

// encodeMessage serializa un saliente inyectando el discriminador "type"
// en el objeto del payload.
func encodeMessage(typ string, payload any) ([]byte, error) {
	m := map[string]any{}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(raw, &m); err != nil {
			return nil, err
		}
	}
	m["type"] = typ
	return json.Marshal(m)
}

var wireTimeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
}

func parseWireAmount(s string) float64 {
	v, _ := strconv.ParseFloat(s, 64)
	return v
}

func parseWireTime(s string) time.Time {
	for _, layout := range wireTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

func parseWireTimePtr(s *string) *time.Time {
	if s == nil || *s == "" {
		return nil
	}
	t := parseWireTime(*s)
	if t.IsZero() {
		return nil
	}
	return &t
}

package domain

import "time"

// BidLogEntry es una entrada del registro de pujas. Append-only desde la
// perspectiva del servidor; el cliente la muestra newest-first.
type BidLogEntry struct {
	ID         string
	LotID      string
	LotNumber  int
	LotName    string
	VendorName string
	Amount     float64
	Currency   string
	PlacedAt   time.Time
}

package ports

import (
	"context"

	"github.com/alejandrodnm/martillo/internal/domain"
)

// BidLogRecorder archiva las entradas de bid log observadas por el feed de
// admin. Es un sink opcional: el feed funciona igual sin recorder.
type BidLogRecorder interface {
	Record(ctx context.Context, entry domain.BidLogEntry) error
	Close() error
}

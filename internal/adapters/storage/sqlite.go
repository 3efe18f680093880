package storage

// sqlite.go — archivo local del bid log.
//
// El servidor es la fuente de verdad del estado vivo; aquí solo se archivan
// las pujas aceptadas que pasan por el feed de admin, para poder revisarlas
// después de cerrar la consola. Una fila por entrada, INSERT OR IGNORE sobre
// el id del servidor: los re-pulls tras una reconexión no duplican filas.

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/alejandrodnm/martillo/internal/domain"
)

const schema = `
-- Pujas aceptadas, tal como las emite el feed de admin
CREATE TABLE IF NOT EXISTS bid_log (
    id          TEXT PRIMARY KEY,
    slug        TEXT NOT NULL,
    lot_id      TEXT NOT NULL,
    lot_number  INTEGER NOT NULL DEFAULT 0,
    lot_name    TEXT,
    vendor_name TEXT,
    amount      REAL NOT NULL DEFAULT 0,
    currency    TEXT,
    placed_at   DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_bidlog_slug ON bid_log(slug, placed_at DESC);
CREATE INDEX IF NOT EXISTS idx_bidlog_lot  ON bid_log(lot_id);
`

// SQLiteRecorder implementa ports.BidLogRecorder usando SQLite (pure Go,
// sin CGo).
type SQLiteRecorder struct {
	db   *sql.DB
	slug string
}

// NewSQLiteRecorder abre (o crea) la base de datos en la ruta dada y
// aplica el schema. slug identifica la subasta que se está archivando.
func NewSQLiteRecorder(path, slug string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage.NewSQLiteRecorder: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite es single-writer
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteRecorder: apply schema: %w", err)
	}
	return &SQLiteRecorder{db: db, slug: slug}, nil
}

// Record archiva una entrada del bid log. Idempotente por id de entrada.
func (s *SQLiteRecorder) Record(ctx context.Context, entry domain.BidLogEntry) error {
	id := entry.ID
	if id == "" {
		// Entradas sin id del servidor (no debería pasar): generar uno
		// local para no perder la fila.
		id = uuid.NewString()
	}
	placedAt := entry.PlacedAt
	if placedAt.IsZero() {
		placedAt = time.Now().UTC()
	}

	if _, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO bid_log
			(id, slug, lot_id, lot_number, lot_name, vendor_name, amount, currency, placed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		id,
		s.slug,
		entry.LotID,
		entry.LotNumber,
		entry.LotName,
		entry.VendorName,
		entry.Amount,
		entry.Currency,
		placedAt.UTC(),
	); err != nil {
		return fmt.Errorf("storage.Record %s: %w", id, err)
	}
	return nil
}

// History devuelve las entradas archivadas para la subasta, más reciente
// primero.
func (s *SQLiteRecorder) History(ctx context.Context) ([]domain.BidLogEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, lot_id, lot_number, lot_name, vendor_name, amount, currency, placed_at
		FROM bid_log
		WHERE slug = ?
		ORDER BY placed_at DESC
	`, s.slug)
	if err != nil {
		return nil, fmt.Errorf("storage.History: query: %w", err)
	}
	defer rows.Close()

	var entries []domain.BidLogEntry
	for rows.Next() {
		var e domain.BidLogEntry
		var placedAt string
		if err := rows.Scan(
			&e.ID,
			&e.LotID,
			&e.LotNumber,
			&e.LotName,
			&e.VendorName,
			&e.Amount,
			&e.Currency,
			&placedAt,
		); err != nil {
			return nil, fmt.Errorf("storage.History: scan row: %w", err)
		}
		e.PlacedAt, _ = time.Parse(time.RFC3339, placedAt)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close cierra la conexión a la base de datos.
func (s *SQLiteRecorder) Close() error {
	return s.db.Close()
}

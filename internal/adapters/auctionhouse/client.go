package auctionhouse

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/alejandrodnm/martillo/internal/domain"
)

const (
	defaultBase = "http://localhost:8000"

	// La superficie pública es de bajo volumen: un pull por suscripción
	// más algún listado. El limiter solo protege contra loops descontrolados.
	publicRatePerSec = 10
)

// Client es el cliente HTTP de la superficie pública. Implementa
// ports.SnapshotProvider: exactamente un pull por llamada, sin retries
// automáticos (un load fallido se reporta y el snapshot del canal puede
// poblar el estado igualmente).
type Client struct {
	http    *http.Client
	base    string
	limiter *rate.Limiter
}

// NewClient crea un Client con el base URL dado. Si base está vacío usa
// el default local.
func NewClient(base string) *Client {
	if base == "" {
		base = defaultBase
	}
	return &Client{
		http:    &http.Client{Timeout: 20 * time.Second},
		base:    base,
		limiter: rate.NewLimiter(publicRatePerSec, 5),
	}
}

// GetAuction devuelve el registro completo de la subasta por slug,
// base_price y min_increment de cada lote incluidos.
func (c *Client) GetAuction(ctx context.Context, slug string) (domain.Auction, error) {
	var dto auctionDTO
	if err := c.get(ctx, c.base+"/auctions/"+slug, &dto); err != nil {
		return domain.Auction{}, fmt.Errorf("auctionhouse.GetAuction %q: %w", slug, err)
	}
	return mapAuction(dto), nil
}

// ListAuctions devuelve todas las subastas visibles.
func (c *Client) ListAuctions(ctx context.Context) ([]domain.Auction, error) {
	var dtos []auctionDTO
	if err := c.get(ctx, c.base+"/auctions", &dtos); err != nil {
		return nil, fmt.Errorf("auctionhouse.ListAuctions: %w", err)
	}
	out := make([]domain.Auction, 0, len(dtos))
	for _, d := range dtos {
		out = append(out, mapAuction(d))
	}
	return out, nil
}

// get hace un GET con rate limiting y decodifica el JSON en out.
func (c *Client) get(ctx context.Context, url string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		var detail errorResponse
		_ = json.Unmarshal(body, &detail)
		if detail.Detail != "" {
			return fmt.Errorf("status %d: %s", resp.StatusCode, detail.Detail)
		}
		return fmt.Errorf("status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

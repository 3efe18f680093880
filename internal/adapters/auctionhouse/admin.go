package auctionhouse

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/alejandrodnm/martillo/internal/domain"
)

// AdminClient consume la superficie REST privilegiada (a través del proxy
// transparente) con el bearer token de la sesión de admin. Implementa
// ports.AdminAPI.
type AdminClient struct {
	rc *resty.Client
}

// NewAdminClient crea un AdminClient contra el base URL dado.
func NewAdminClient(base, token string) *AdminClient {
	if base == "" {
		base = defaultBase
	}
	rc := resty.New().
		SetBaseURL(base).
		SetAuthToken(token).
		SetTimeout(20 * time.Second).
		SetHeader("Accept", "application/json")
	return &AdminClient{rc: rc}
}

// ListBidLog devuelve el bid log en el orden en que lo sirve el servidor.
func (c *AdminClient) ListBidLog(ctx context.Context, slug string) ([]domain.BidLogEntry, error) {
	var out []bidLogEntryDTO
	resp, err := c.rc.R().
		SetContext(ctx).
		SetResult(&out).
		Get("/admin/auctions/" + slug + "/bids")
	if err := checkResp(resp, err); err != nil {
		return nil, fmt.Errorf("auctionhouse.ListBidLog %q: %w", slug, err)
	}
	return mapBidLog(out), nil
}

// SetAuctionStatus pide una transición de estado.
func (c *AdminClient) SetAuctionStatus(ctx context.Context, slug string, status domain.AuctionStatus) error {
	resp, err := c.rc.R().
		SetContext(ctx).
		SetBody(statusRequest{Status: string(status)}).
		Post("/admin/auctions/" + slug + "/status")
	if err := checkResp(resp, err); err != nil {
		return fmt.Errorf("auctionhouse.SetAuctionStatus %q: %w", slug, err)
	}
	return nil
}

// CreateLot crea un lote en la subasta.
func (c *AdminClient) CreateLot(ctx context.Context, slug string, draft domain.LotDraft) (domain.Lot, error) {
	var out lotDTO
	resp, err := c.rc.R().
		SetContext(ctx).
		SetBody(lotCreateRequest{
			Name:         draft.Name,
			BasePrice:    formatAmount(draft.BasePrice),
			MinIncrement: formatAmount(draft.MinIncrement),
			Currency:     draft.Currency,
			ImageURL:     draft.ImageURL,
		}).
		SetResult(&out).
		Post("/admin/auctions/" + slug + "/lots")
	if err := checkResp(resp, err); err != nil {
		return domain.Lot{}, fmt.Errorf("auctionhouse.CreateLot %q: %w", slug, err)
	}
	return mapLot(out), nil
}

// ListVendors devuelve todos los vendors.
func (c *AdminClient) ListVendors(ctx context.Context) ([]domain.Vendor, error) {
	var out []vendorDTO
	resp, err := c.rc.R().
		SetContext(ctx).
		SetResult(&out).
		Get("/admin/vendors")
	if err := checkResp(resp, err); err != nil {
		return nil, fmt.Errorf("auctionhouse.ListVendors: %w", err)
	}
	return mapVendors(out), nil
}

// GetVendor devuelve un vendor por id.
func (c *AdminClient) GetVendor(ctx context.Context, id string) (domain.Vendor, error) {
	var out vendorDTO
	resp, err := c.rc.R().
		SetContext(ctx).
		SetResult(&out).
		Get("/admin/vendors/" + id)
	if err := checkResp(resp, err); err != nil {
		return domain.Vendor{}, fmt.Errorf("auctionhouse.GetVendor %q: %w", id, err)
	}
	return mapVendor(out), nil
}

// CreateVendor crea un vendor.
func (c *AdminClient) CreateVendor(ctx context.Context, draft domain.VendorDraft) (domain.Vendor, error) {
	var out vendorDTO
	resp, err := c.rc.R().
		SetContext(ctx).
		SetBody(vendorRequest{Name: draft.Name, Email: draft.Email, Comment: optComment(draft.Comment)}).
		SetResult(&out).
		Post("/admin/vendors")
	if err := checkResp(resp, err); err != nil {
		return domain.Vendor{}, fmt.Errorf("auctionhouse.CreateVendor: %w", err)
	}
	return mapVendor(out), nil
}

// UpdateVendor actualiza un vendor.
func (c *AdminClient) UpdateVendor(ctx context.Context, id string, draft domain.VendorDraft) (domain.Vendor, error) {
	var out vendorDTO
	resp, err := c.rc.R().
		SetContext(ctx).
		SetBody(vendorRequest{Name: draft.Name, Email: draft.Email, Comment: optComment(draft.Comment)}).
		SetResult(&out).
		Put("/admin/vendors/" + id)
	if err := checkResp(resp, err); err != nil {
		return domain.Vendor{}, fmt.Errorf("auctionhouse.UpdateVendor %q: %w", id, err)
	}
	return mapVendor(out), nil
}

// DeleteVendor borra un vendor.
func (c *AdminClient) DeleteVendor(ctx context.Context, id string) error {
	resp, err := c.rc.R().
		SetContext(ctx).
		Delete("/admin/vendors/" + id)
	if err := checkResp(resp, err); err != nil {
		return fmt.Errorf("auctionhouse.DeleteVendor %q: %w", id, err)
	}
	return nil
}

// ListParticipants devuelve los participantes de una subasta.
func (c *AdminClient) ListParticipants(ctx context.Context, slug string) ([]domain.Participant, error) {
	var out []participantDTO
	resp, err := c.rc.R().
		SetContext(ctx).
		SetResult(&out).
		Get("/admin/auctions/" + slug + "/participants")
	if err := checkResp(resp, err); err != nil {
		return nil, fmt.Errorf("auctionhouse.ListParticipants %q: %w", slug, err)
	}
	return mapParticipants(out), nil
}

// CreateParticipant invita a un vendor a la subasta.
func (c *AdminClient) CreateParticipant(ctx context.Context, slug, vendorID string) (domain.Participant, error) {
	var out participantDTO
	resp, err := c.rc.R().
		SetContext(ctx).
		SetBody(participantCreateRequest{VendorID: vendorID}).
		SetResult(&out).
		Post("/admin/auctions/" + slug + "/participants")
	if err := checkResp(resp, err); err != nil {
		return domain.Participant{}, fmt.Errorf("auctionhouse.CreateParticipant %q: %w", slug, err)
	}
	return mapParticipant(out), nil
}

// DeleteParticipant elimina un participante de la subasta.
func (c *AdminClient) DeleteParticipant(ctx context.Context, slug, participantID string) error {
	resp, err := c.rc.R().
		SetContext(ctx).
		Delete("/admin/auctions/" + slug + "/participants/" + participantID)
	if err := checkResp(resp, err); err != nil {
		return fmt.Errorf("auctionhouse.DeleteParticipant %q: %w", participantID, err)
	}
	return nil
}

// checkResp colapsa el error de transporte y el error HTTP en uno solo,
// extrayendo el detail del backend cuando existe.
func checkResp(resp *resty.Response, err error) error {
	if err != nil {
		return err
	}
	if !resp.IsError() {
		return nil
	}
	var body errorResponse
	_ = json.Unmarshal(resp.Body(), &body)
	if body.Detail != "" {
		return fmt.Errorf("status %d: %s", resp.StatusCode(), body.Detail)
	}
	return fmt.Errorf("status %d", resp.StatusCode())
}

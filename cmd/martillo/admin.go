package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/alejandrodnm/martillo/config"
	"github.com/alejandrodnm/martillo/internal/adapters/auctionhouse"
	"github.com/alejandrodnm/martillo/internal/adapters/cache"
	"github.com/alejandrodnm/martillo/internal/adapters/notify"
	"github.com/alejandrodnm/martillo/internal/application/admin"
	"github.com/alejandrodnm/martillo/internal/application/mutate"
	"github.com/alejandrodnm/martillo/internal/domain"
)

type adminArgs struct {
	slug string

	vendors      bool
	newVendor    bool
	updateVendor string
	delVendor    string
	name         string
	email        string
	comment      string

	participants   bool
	newParticipant string
	delParticipant string

	setStatus string

	newLot    bool
	lotName   string
	basePrice float64
	increment float64
	currency  string
	imageURL  string
}

// runAdmin executes one privileged operation and exits. Every command goes
// through the session cache and the optimistic executor, the same path an
// interactive admin console would use.
func runAdmin(ctx context.Context, cfg *config.Config, client *auctionhouse.Client, console *notify.Console, args adminArgs) {
	if cfg.API.AdminToken == "" {
		slog.Error("admin operations require a token (-token or ADMIN_TOKEN)")
		os.Exit(1)
	}

	api := auctionhouse.NewAdminClient(cfg.API.BaseURL, cfg.API.AdminToken)
	store := cache.NewStore()
	exec := mutate.New(store)

	vendorSvc := admin.NewVendors(api, store, exec, console)
	participantSvc := admin.NewParticipants(api, store, exec, console)
	auctionSvc := admin.NewAuctions(api, client, console)

	switch {
	case args.vendors:
		list, err := vendorSvc.List(ctx)
		if err != nil {
			fatal("list vendors", err)
		}
		console.RenderVendors(list)

	case args.newVendor:
		requireVendorFields(args)
		if _, err := vendorSvc.Create(ctx, domain.VendorDraft{
			Name:    args.name,
			Email:   args.email,
			Comment: args.comment,
		}); err != nil {
			os.Exit(1)
		}

	case args.updateVendor != "":
		requireVendorFields(args)
		if err := vendorSvc.Update(ctx, args.updateVendor, domain.VendorDraft{
			Name:    args.name,
			Email:   args.email,
			Comment: args.comment,
		}); err != nil {
			os.Exit(1)
		}

	case args.delVendor != "":
		if err := vendorSvc.Delete(ctx, args.delVendor); err != nil {
			os.Exit(1)
		}

	case args.participants:
		requireSlug(args.slug)
		list, err := participantSvc.List(ctx, args.slug)
		if err != nil {
			fatal("list participants", err)
		}
		console.RenderParticipants(list)

	case args.newParticipant != "":
		requireSlug(args.slug)
		created, err := participantSvc.Create(ctx, args.slug, args.newParticipant)
		if err != nil {
			os.Exit(1)
		}
		console.RenderParticipantCreated(created)

	case args.delParticipant != "":
		requireSlug(args.slug)
		if err := participantSvc.Delete(ctx, args.slug, args.delParticipant); err != nil {
			os.Exit(1)
		}

	case args.setStatus != "":
		requireSlug(args.slug)
		if err := auctionSvc.SetStatus(ctx, args.slug, domain.AuctionStatus(args.setStatus)); err != nil {
			os.Exit(1)
		}

	case args.newLot:
		requireSlug(args.slug)
		if args.lotName == "" || args.basePrice <= 0 || args.increment <= 0 {
			slog.Error("-new-lot requires -lot-name, -base > 0 and -increment > 0")
			os.Exit(1)
		}
		if _, err := auctionSvc.CreateLot(ctx, args.slug, domain.LotDraft{
			Name:         args.lotName,
			BasePrice:    args.basePrice,
			MinIncrement: args.increment,
			Currency:     args.currency,
			ImageURL:     args.imageURL,
		}); err != nil {
			os.Exit(1)
		}
	}
}

func requireSlug(slug string) {
	if slug == "" {
		slog.Error("this operation requires -slug")
		os.Exit(1)
	}
}

func requireVendorFields(args adminArgs) {
	if args.name == "" || args.email == "" {
		slog.Error("vendor operations require -name and -email")
		os.Exit(1)
	}
}

func fatal(op string, err error) {
	slog.Error("admin operation failed", "op", op, "err", err)
	os.Exit(1)
}

package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/alejandrodnm/martillo/config"
	"github.com/alejandrodnm/martillo/internal/adapters/auctionhouse"
	"github.com/alejandrodnm/martillo/internal/adapters/channel"
	"github.com/alejandrodnm/martillo/internal/adapters/notify"
	"github.com/alejandrodnm/martillo/internal/adapters/storage"
	"github.com/alejandrodnm/martillo/internal/application/bidlog"
	"github.com/alejandrodnm/martillo/internal/ports"
)

// runBidLog follows the admin bid log of one auction, re-rendering on
// every pushed entry. With -record, entries are also archived to SQLite.
func runBidLog(ctx context.Context, cfg *config.Config, dialer channel.Dialer, console *notify.Console, slug string, record bool) {
	if slug == "" {
		slog.Error("bidlog mode requires -slug")
		os.Exit(1)
	}
	if cfg.API.AdminToken == "" {
		slog.Error("bidlog mode requires an admin token (-token or ADMIN_TOKEN)")
		os.Exit(1)
	}

	api := auctionhouse.NewAdminClient(cfg.API.BaseURL, cfg.API.AdminToken)

	var recorder ports.BidLogRecorder
	if record {
		rec, err := storage.NewSQLiteRecorder(cfg.Storage.DSN, slug)
		if err != nil {
			slog.Error("failed to open bid log archive", "err", err, "dsn", cfg.Storage.DSN)
			os.Exit(1)
		}
		defer rec.Close()
		recorder = rec

		archived, err := rec.History(ctx)
		if err != nil {
			slog.Warn("could not read archived bid log", "err", err)
		}
		slog.Info("archiving bid log", "dsn", cfg.Storage.DSN, "slug", slug, "archived", len(archived))
	}

	feed := bidlog.New(api, dialer, cfg.API.AdminToken, slug, recorder)
	feed.OnChange(func() {
		console.RenderBidLog(feed.Entries(), feed.Connected(), feed.LastError())
	})

	if err := feed.Run(ctx); err != nil {
		slog.Error("bid log feed exited with error", "err", err, "slug", slug)
		os.Exit(1)
	}
	slog.Info("martillo stopped cleanly")
}

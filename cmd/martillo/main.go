package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alejandrodnm/martillo/config"
	"github.com/alejandrodnm/martillo/internal/adapters/auctionhouse"
	"github.com/alejandrodnm/martillo/internal/adapters/channel"
	"github.com/alejandrodnm/martillo/internal/adapters/notify"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	slug := flag.String("slug", "", "auction slug")
	adminToken := flag.String("token", "", "admin bearer token (overrides config)")
	inviteToken := flag.String("invite", "", "participant invite token (overrides config)")
	verbose := flag.Bool("verbose", false, "set log level to debug")
	logFormat := flag.String("format", "", "log format: text|json (overrides config)")

	auctions := flag.Bool("auctions", false, "list visible auctions and exit")
	bidLog := flag.Bool("bidlog", false, "follow the admin bid log (requires -slug and a token)")
	record := flag.Bool("record", false, "archive bid log entries to SQLite while following")

	vendors := flag.Bool("vendors", false, "list vendors")
	newVendor := flag.Bool("new-vendor", false, "create a vendor (-name, -email, -comment)")
	updateVendor := flag.String("update-vendor", "", "update vendor by id (-name, -email, -comment)")
	delVendor := flag.String("del-vendor", "", "delete vendor by id")
	name := flag.String("name", "", "vendor name for -new-vendor / -update-vendor")
	email := flag.String("email", "", "vendor email for -new-vendor / -update-vendor")
	comment := flag.String("comment", "", "vendor comment for -new-vendor / -update-vendor")

	participants := flag.Bool("participants", false, "list participants (requires -slug)")
	newParticipant := flag.String("new-participant", "", "invite vendor id into the auction (requires -slug)")
	delParticipant := flag.String("del-participant", "", "remove participant by id (requires -slug)")

	setStatus := flag.String("set-status", "", "transition the auction: live|paused|ended (requires -slug)")
	newLot := flag.Bool("new-lot", false, "create a lot (-lot-name, -base, -increment, -currency)")
	lotName := flag.String("lot-name", "", "lot name for -new-lot")
	basePrice := flag.Float64("base", 0, "lot base price for -new-lot")
	increment := flag.Float64("increment", 0, "lot minimum increment for -new-lot")
	currency := flag.String("currency", "EUR", "lot currency for -new-lot")
	imageURL := flag.String("image", "", "lot image URL for -new-lot")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err, "path", *configPath)
		os.Exit(1)
	}

	if *verbose {
		cfg.Log.Level = "debug"
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}
	if *adminToken != "" {
		cfg.API.AdminToken = *adminToken
	}
	if *inviteToken != "" {
		cfg.API.InviteToken = *inviteToken
	}
	setupLogger(cfg.Log)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	client := auctionhouse.NewClient(cfg.API.BaseURL)
	dialer := channel.Dialer{Base: cfg.API.WSBase, ReconnectDelay: cfg.ReconnectDelay()}
	console := notify.NewConsole()

	switch {
	case *auctions:
		listAuctions(ctx, client, console)

	case *vendors, *newVendor, *updateVendor != "", *delVendor != "",
		*participants, *newParticipant != "", *delParticipant != "",
		*setStatus != "", *newLot:
		runAdmin(ctx, cfg, client, console, adminArgs{
			slug:           *slug,
			vendors:        *vendors,
			newVendor:      *newVendor,
			updateVendor:   *updateVendor,
			delVendor:      *delVendor,
			name:           *name,
			email:          *email,
			comment:        *comment,
			participants:   *participants,
			newParticipant: *newParticipant,
			delParticipant: *delParticipant,
			setStatus:      *setStatus,
			newLot:         *newLot,
			lotName:        *lotName,
			basePrice:      *basePrice,
			increment:      *increment,
			currency:       *currency,
			imageURL:       *imageURL,
		})

	case *bidLog:
		runBidLog(ctx, cfg, dialer, console, *slug, *record)

	default:
		runWatch(ctx, cfg, client, dialer, console, *slug)
	}
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}

func listAuctions(ctx context.Context, client *auctionhouse.Client, console *notify.Console) {
	list, err := client.ListAuctions(ctx)
	if err != nil {
		slog.Error("failed to list auctions", "err", err)
		os.Exit(1)
	}
	console.RenderAuctions(list)
}

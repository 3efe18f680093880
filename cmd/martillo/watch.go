package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/alejandrodnm/martillo/config"
	"github.com/alejandrodnm/martillo/internal/adapters/auctionhouse"
	"github.com/alejandrodnm/martillo/internal/adapters/channel"
	"github.com/alejandrodnm/martillo/internal/adapters/notify"
	"github.com/alejandrodnm/martillo/internal/application/floor"
)

// runWatch follows one auction's floor and accepts bid commands on stdin:
//
//	bid <lot_number> <amount>
//
// The view re-renders on every state transition; a rejected or accepted
// bid shows up when the server says so, never before.
func runWatch(ctx context.Context, cfg *config.Config, client *auctionhouse.Client, dialer channel.Dialer, console *notify.Console, slug string) {
	if slug == "" {
		slog.Error("watch mode requires -slug")
		os.Exit(1)
	}

	session := floor.NewSession(client, dialer, slug, cfg.API.InviteToken)
	session.OnChange(func(s floor.State) {
		console.RenderFloor(s.Auction, s.OrderedLots(), s.Status, s.Connected, s.ParticipantCount, s.LastError)
	})

	go readBidCommands(ctx, session, console)

	if err := session.Run(ctx); err != nil {
		slog.Error("session exited with error", "err", err, "slug", slug)
		os.Exit(1)
	}
	slog.Info("martillo stopped cleanly")
}

// readBidCommands parses stdin lines until EOF or cancellation. Malformed
// input never reaches the server; it degrades to a console notice.
func readBidCommands(ctx context.Context, session *floor.Session, console *notify.Console) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) != 3 || fields[0] != "bid" {
			console.Error("usage: bid <lot_number> <amount>")
			continue
		}

		number, err := strconv.Atoi(fields[1])
		if err != nil {
			console.Error("invalid lot number: " + fields[1])
			continue
		}
		amount, err := strconv.ParseFloat(fields[2], 64)
		if err != nil || amount <= 0 {
			console.Error("invalid amount: " + fields[2])
			continue
		}

		lot, ok := session.LotByNumber(number)
		if !ok {
			console.Error(fmt.Sprintf("no lot with number %d", number))
			continue
		}
		if required := lot.MinRequired(); amount < required {
			console.Error(fmt.Sprintf("bid below minimum: %.2f < %.2f", amount, required))
			continue
		}

		if err := session.PlaceBid(ctx, lot.ID, amount); err != nil {
			console.Error("bid not sent: " + err.Error())
			continue
		}
		console.Info(fmt.Sprintf("bid sent: lot %d for %.2f", number, amount))
	}
}

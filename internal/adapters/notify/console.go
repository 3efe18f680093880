package notify

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/alejandrodnm/martillo/internal/domain"
)

// Console implementa ports.Notifier y renderiza las vistas del terminal.
type Console struct {
	out io.Writer
}

// NewConsole crea una consola que escribe a stdout.
func NewConsole() *Console {
	return &Console{out: os.Stdout}
}

// NewConsoleWriter crea una consola para tests.
func NewConsoleWriter(w io.Writer) *Console {
	return &Console{out: w}
}

// Info imprime una notificación transitoria.
func (c *Console) Info(msg string) {
	fmt.Fprintf(c.out, "[%s] %s\n", time.Now().Format("15:04:05"), msg)
}

// Error imprime una notificación de error.
func (c *Console) Error(msg string) {
	fmt.Fprintf(c.out, "[%s] ERROR: %s\n", time.Now().Format("15:04:05"), msg)
}

// RenderFloor imprime el estado del floor: cabecera de la subasta y una
// fila por lote en orden de lot_number. Un lote sin líder muestra "-" y el
// estado de la conexión se refleja en la cabecera.
func (c *Console) RenderFloor(auction *domain.Auction, lots []domain.Lot, status domain.AuctionStatus, connected bool, participants int, lastError string) {
	now := time.Now().Format("15:04:05")

	title := "(loading)"
	if auction != nil {
		title = auction.Title
	}
	conn := "LIVE"
	if !connected {
		conn = "RECONNECTING"
	}
	fmt.Fprintf(c.out, "\n[%s] %s — %s [%s] — %d participants\n",
		now, title, strings.ToUpper(string(status)), conn, participants)

	if lastError != "" {
		fmt.Fprintf(c.out, "  !! %s\n", lastError)
	}
	if len(lots) == 0 {
		fmt.Fprintln(c.out, "  (no lots)")
		return
	}

	table := tablewriter.NewWriter(c.out)
	table.Header("#", "Lot", "Current", "Min next", "Leader", "Closes")

	for _, lot := range lots {
		table.Append(
			fmt.Sprintf("%d", lot.LotNumber),
			truncate(lot.Name, 38),
			money(lot.CurrentPrice, lot.Currency),
			money(lot.MinRequired(), lot.Currency),
			leaderLabel(lot),
			closesLabel(lot.EndTime),
		)
	}
	table.Render()
}

// RenderBidLog imprime el bid log, más reciente primero.
func (c *Console) RenderBidLog(entries []domain.BidLogEntry, connected bool, lastError string) {
	now := time.Now().Format("15:04:05")
	conn := "LIVE"
	if !connected {
		conn = "RECONNECTING"
	}
	fmt.Fprintf(c.out, "\n[%s] bid log — %d entries [%s]\n", now, len(entries), conn)

	if lastError != "" {
		fmt.Fprintf(c.out, "  !! %s\n", lastError)
	}
	if len(entries) == 0 {
		fmt.Fprintln(c.out, "  (no bids yet)")
		return
	}

	table := tablewriter.NewWriter(c.out)
	table.Header("When", "Lot", "Name", "Vendor", "Amount")

	for _, e := range entries {
		table.Append(
			e.PlacedAt.Local().Format("15:04:05"),
			fmt.Sprintf("%d", e.LotNumber),
			truncate(e.LotName, 30),
			truncate(e.VendorName, 24),
			money(e.Amount, e.Currency),
		)
	}
	table.Render()
}

// RenderAuctions imprime el listado de subastas.
func (c *Console) RenderAuctions(auctions []domain.Auction) {
	if len(auctions) == 0 {
		fmt.Fprintln(c.out, "  (no auctions)")
		return
	}

	table := tablewriter.NewWriter(c.out)
	table.Header("Slug", "Title", "Status", "Lots", "Starts")

	for _, a := range auctions {
		table.Append(
			a.Slug,
			truncate(a.Title, 38),
			string(a.Status),
			fmt.Sprintf("%d", len(a.Lots)),
			timeLabel(a.StartTime),
		)
	}
	table.Render()
}

// RenderVendors imprime el listado de vendors.
func (c *Console) RenderVendors(vendors []domain.Vendor) {
	if len(vendors) == 0 {
		fmt.Fprintln(c.out, "  (no vendors)")
		return
	}

	table := tablewriter.NewWriter(c.out)
	table.Header("ID", "Name", "Email", "Comment")

	for _, v := range vendors {
		table.Append(
			v.ID,
			truncate(v.Name, 28),
			v.Email,
			truncate(v.Comment, 30),
		)
	}
	table.Render()
}

// RenderParticipants imprime los participantes con sus credenciales de
// acceso. join_url e invite_token se muestran completos: son lo que el
// admin copia y reparte.
func (c *Console) RenderParticipants(participants []domain.Participant) {
	if len(participants) == 0 {
		fmt.Fprintln(c.out, "  (no participants)")
		return
	}

	table := tablewriter.NewWriter(c.out)
	table.Header("ID", "Vendor", "Email", "Join URL")

	for _, p := range participants {
		table.Append(
			p.ID,
			truncate(p.Vendor.Name, 24),
			p.Vendor.Email,
			p.JoinURL,
		)
	}
	table.Render()
}

// RenderParticipantCreated imprime las credenciales del participante recién
// invitado.
func (c *Console) RenderParticipantCreated(p domain.Participant) {
	fmt.Fprintf(c.out, "\n  Participant created for %s\n", p.Vendor.Name)
	fmt.Fprintf(c.out, "  join_url:     %s\n", p.JoinURL)
	fmt.Fprintf(c.out, "  invite_token: %s\n\n", p.InviteToken)
}

// --- helpers ---

func money(v float64, currency string) string {
	if currency == "" {
		return fmt.Sprintf("%.2f", v)
	}
	return fmt.Sprintf("%.2f %s", v, currency)
}

func leaderLabel(lot domain.Lot) string {
	if !lot.HasLeader() {
		return "-"
	}
	return truncate(lot.CurrentLeader, 20)
}

func closesLabel(t *time.Time) string {
	if t == nil {
		return "-"
	}
	remaining := time.Until(*t)
	if remaining <= 0 {
		return "closed"
	}
	if remaining < time.Minute {
		return fmt.Sprintf("%ds", int(remaining.Seconds()))
	}
	return fmt.Sprintf("%dm%02ds", int(remaining.Minutes()), int(remaining.Seconds())%60)
}

func timeLabel(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

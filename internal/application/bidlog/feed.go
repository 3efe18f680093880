package bidlog

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/alejandrodnm/martillo/internal/domain"
	"github.com/alejandrodnm/martillo/internal/ports"
)

// leaveTimeout acota el envío de leave_auction durante el teardown.
const leaveTimeout = time.Second

// scopePayload es el mensaje saliente join_auction / leave_auction.
type scopePayload struct {
	Slug string `json:"slug"`
}

// Feed mirrors the admin bid log for one auction: a one-shot pull plus a
// push subscription that prepends each new entry, newest first. It keeps
// its own channel and connected flag, fully independent of any floor
// session for the same auction. Growth is unbounded; only the admin
// console consumes it.
type Feed struct {
	slug     string
	api      ports.AdminAPI
	dialer   ports.ChannelDialer
	token    string
	recorder ports.BidLogRecorder // optional, may be nil

	mu        sync.RWMutex
	entries   []domain.BidLogEntry
	seen      map[string]bool
	connected bool
	lastErr   string

	onChange func()
}

// New creates a feed for one auction's bid log over the admin scope.
func New(api ports.AdminAPI, dialer ports.ChannelDialer, adminToken, slug string, recorder ports.BidLogRecorder) *Feed {
	return &Feed{
		slug:     slug,
		api:      api,
		dialer:   dialer,
		token:    adminToken,
		recorder: recorder,
		seen:     make(map[string]bool),
	}
}

// OnChange registers a callback invoked after every list change, from the
// feed goroutine. Set it before calling Run.
func (f *Feed) OnChange(fn func()) {
	f.onChange = fn
}

// Entries returns a copy of the current list, newest first.
func (f *Feed) Entries() []domain.BidLogEntry {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]domain.BidLogEntry, len(f.entries))
	copy(out, f.entries)
	return out
}

// Connected reports the channel's connectivity flag.
func (f *Feed) Connected() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.connected
}

// LastError returns the last recoverable error, empty if none.
func (f *Feed) LastError() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.lastErr
}

// Run drives the feed until ctx is cancelled. On teardown it sends the
// explicit leave_auction before closing the channel; skipping that leaks
// the room membership server-side.
func (f *Feed) Run(ctx context.Context) error {
	ch, err := f.dialer.Dial(ctx, ports.Scope{
		Kind:       ports.ScopeAdmin,
		AdminToken: f.token,
	})
	if err != nil {
		return fmt.Errorf("bidlog: dial admin channel: %w", err)
	}
	defer func() {
		leaveCtx, cancel := context.WithTimeout(context.Background(), leaveTimeout)
		if err := ch.Send(leaveCtx, "leave_auction", scopePayload{Slug: f.slug}); err != nil {
			slog.Warn("bidlog: leave_auction failed", "slug", f.slug, "err", err)
		}
		cancel()
		ch.Close()
	}()

	loadCh := make(chan []domain.BidLogEntry, 1)
	go f.load(ctx, loadCh)

	slog.Info("bidlog: feed started", "slug", f.slug)

	for {
		select {
		case <-ctx.Done():
			slog.Info("bidlog: feed stopped", "slug", f.slug)
			return nil
		case loaded, ok := <-loadCh:
			if !ok {
				loadCh = nil
				continue
			}
			f.applyInitial(loaded)
		case ev, ok := <-ch.Events():
			if !ok {
				slog.Info("bidlog: channel closed", "slug", f.slug)
				return nil
			}
			f.apply(ctx, ch, ev)
		}
	}
}

// load performs the one-shot pull of the existing bid log. No retry; a
// failure only surfaces as lastErr and the push stream keeps working.
func (f *Feed) load(ctx context.Context, out chan<- []domain.BidLogEntry) {
	defer close(out)

	entries, err := f.api.ListBidLog(ctx, f.slug)
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		slog.Warn("bidlog: initial load failed", "slug", f.slug, "err", err)
		f.mu.Lock()
		f.lastErr = err.Error()
		f.mu.Unlock()
		f.notify()
		return
	}
	out <- entries
}

// applyInitial merges the pulled list under any entries already pushed
// while the pull was in flight. Pushed entries stay in front (newest
// first); overlap is dropped by id.
func (f *Feed) applyInitial(loaded []domain.BidLogEntry) {
	f.mu.Lock()
	merged := make([]domain.BidLogEntry, 0, len(f.entries)+len(loaded))
	merged = append(merged, f.entries...)
	for _, e := range loaded {
		if f.seen[e.ID] {
			continue
		}
		f.seen[e.ID] = true
		merged = append(merged, e)
	}
	f.entries = merged
	f.mu.Unlock()
	f.notify()
}

func (f *Feed) apply(ctx context.Context, ch ports.Channel, ev domain.Event) {
	switch e := ev.(type) {
	case domain.Connected:
		f.mu.Lock()
		f.connected = true
		f.mu.Unlock()
		// (re)join the auction room on every connect
		if err := ch.Send(ctx, "join_auction", scopePayload{Slug: f.slug}); err != nil {
			slog.Warn("bidlog: join_auction failed", "slug", f.slug, "err", err)
		}
		f.notify()
	case domain.Disconnected:
		f.mu.Lock()
		f.connected = false
		f.mu.Unlock()
		f.notify()
	case domain.BidLogged:
		f.prepend(ctx, e.Entry)
	case domain.ErrorSignal:
		f.mu.Lock()
		f.lastErr = e.Detail
		f.mu.Unlock()
		f.notify()
	}
}

// prepend adds a pushed entry at the front. The channel contract says each
// entry is pushed at most once; the id check is cheap hardening against a
// server replaying entries across reconnects.
func (f *Feed) prepend(ctx context.Context, entry domain.BidLogEntry) {
	f.mu.Lock()
	if f.seen[entry.ID] {
		f.mu.Unlock()
		return
	}
	f.seen[entry.ID] = true
	f.entries = append([]domain.BidLogEntry{entry}, f.entries...)
	f.mu.Unlock()

	if f.recorder != nil {
		if err := f.recorder.Record(ctx, entry); err != nil {
			slog.Warn("bidlog: record failed", "entry", entry.ID, "err", err)
		}
	}
	f.notify()
}

func (f *Feed) notify() {
	if f.onChange != nil {
		f.onChange()
	}
}

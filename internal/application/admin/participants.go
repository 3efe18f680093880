package admin

import (
	"context"
	"fmt"

	"github.com/alejandrodnm/martillo/internal/application/mutate"
	"github.com/alejandrodnm/martillo/internal/domain"
	"github.com/alejandrodnm/martillo/internal/ports"
)

func participantsKey(slug string) string { return "participants/" + slug }

// Participants manages one auction's participant collection through the
// shared cache, with the same optimistic semantics as Vendors.
type Participants struct {
	api    ports.AdminAPI
	cache  ports.Cache
	exec   *mutate.Executor
	notify ports.Notifier
}

// NewParticipants wires the participant service over the session cache.
func NewParticipants(api ports.AdminAPI, cache ports.Cache, exec *mutate.Executor, notify ports.Notifier) *Participants {
	return &Participants{api: api, cache: cache, exec: exec, notify: notify}
}

// List returns the participants of an auction, serving the cache when warm.
func (p *Participants) List(ctx context.Context, slug string) ([]domain.Participant, error) {
	key := participantsKey(slug)
	if cached, ok := p.cache.Get(key); ok {
		return cached.([]domain.Participant), nil
	}

	rctx, cancel := p.cache.BeginRefetch(ctx, key)
	defer cancel()

	participants, err := p.api.ListParticipants(rctx, slug)
	if err != nil {
		return nil, fmt.Errorf("admin: list participants for %q: %w", slug, err)
	}
	if rctx.Err() == nil {
		p.cache.Set(key, participants)
	}
	return participants, nil
}

// Create invites a vendor into the auction. The created participant is
// returned so the console can print join_url and invite_token.
func (p *Participants) Create(ctx context.Context, slug, vendorID string) (domain.Participant, error) {
	var created domain.Participant
	err := p.exec.Do(ctx, mutate.Mutation{
		Key: participantsKey(slug),
		Call: func(ctx context.Context) error {
			var err error
			created, err = p.api.CreateParticipant(ctx, slug, vendorID)
			return err
		},
		Refetch: func(ctx context.Context) (any, error) {
			return p.api.ListParticipants(ctx, slug)
		},
	})
	if err != nil {
		p.notify.Error("Failed to create participant: " + err.Error())
		return domain.Participant{}, err
	}
	p.notify.Info("Participant created")
	return created, nil
}

// Delete removes the participant from the cached list immediately; a
// server error restores the exact prior list, same ids and order.
func (p *Participants) Delete(ctx context.Context, slug, participantID string) error {
	err := p.exec.Do(ctx, mutate.Mutation{
		Key: participantsKey(slug),
		Apply: func(prev any) any {
			participants := prev.([]domain.Participant)
			next := make([]domain.Participant, 0, len(participants))
			for _, pt := range participants {
				if pt.ID != participantID {
					next = append(next, pt)
				}
			}
			return next
		},
		Call: func(ctx context.Context) error {
			return p.api.DeleteParticipant(ctx, slug, participantID)
		},
		Refetch: func(ctx context.Context) (any, error) {
			return p.api.ListParticipants(ctx, slug)
		},
	})
	if err != nil {
		p.notify.Error("Failed to delete participant: " + err.Error())
		return err
	}
	p.notify.Info("Participant deleted")
	return nil
}

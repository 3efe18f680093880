package admin

import (
	"context"
	"fmt"

	"github.com/alejandrodnm/martillo/internal/application/mutate"
	"github.com/alejandrodnm/martillo/internal/domain"
	"github.com/alejandrodnm/martillo/internal/ports"
)

const vendorsKey = "vendors"

func vendorKey(id string) string { return "vendors/" + id }

// Vendors manages the vendor collection through the shared cache: cached
// reads plus optimistic create/update/delete. Create has no local guess
// (the server assigns id and created_at); update patches the detail key;
// delete filters the list.
type Vendors struct {
	api    ports.AdminAPI
	cache  ports.Cache
	exec   *mutate.Executor
	notify ports.Notifier
}

// NewVendors wires the vendor service over the session cache.
func NewVendors(api ports.AdminAPI, cache ports.Cache, exec *mutate.Executor, notify ports.Notifier) *Vendors {
	return &Vendors{api: api, cache: cache, exec: exec, notify: notify}
}

// List returns the vendor list, serving the cache when warm. Cold reads
// register as in-flight refetches so a concurrent mutation can cancel
// them before applying its optimistic value.
func (v *Vendors) List(ctx context.Context) ([]domain.Vendor, error) {
	if cached, ok := v.cache.Get(vendorsKey); ok {
		return cached.([]domain.Vendor), nil
	}

	rctx, cancel := v.cache.BeginRefetch(ctx, vendorsKey)
	defer cancel()

	vendors, err := v.api.ListVendors(rctx)
	if err != nil {
		return nil, fmt.Errorf("admin: list vendors: %w", err)
	}
	if rctx.Err() == nil {
		v.cache.Set(vendorsKey, vendors)
	}
	return vendors, nil
}

// Get returns one vendor, serving the detail cache key when warm.
func (v *Vendors) Get(ctx context.Context, id string) (domain.Vendor, error) {
	key := vendorKey(id)
	if cached, ok := v.cache.Get(key); ok {
		return cached.(domain.Vendor), nil
	}

	rctx, cancel := v.cache.BeginRefetch(ctx, key)
	defer cancel()

	vendor, err := v.api.GetVendor(rctx, id)
	if err != nil {
		return domain.Vendor{}, fmt.Errorf("admin: get vendor %s: %w", id, err)
	}
	if rctx.Err() == nil {
		v.cache.Set(key, vendor)
	}
	return vendor, nil
}

// Create creates a vendor. No optimistic apply: the confirmed list is
// refetched so server-assigned fields land in the cache.
func (v *Vendors) Create(ctx context.Context, draft domain.VendorDraft) (domain.Vendor, error) {
	var created domain.Vendor
	err := v.exec.Do(ctx, mutate.Mutation{
		Key: vendorsKey,
		Call: func(ctx context.Context) error {
			var err error
			created, err = v.api.CreateVendor(ctx, draft)
			return err
		},
		Refetch: func(ctx context.Context) (any, error) {
			return v.api.ListVendors(ctx)
		},
	})
	if err != nil {
		v.notify.Error("Failed to create vendor: " + err.Error())
		return domain.Vendor{}, err
	}
	v.notify.Info("Vendor created")
	return created, nil
}

// Update patches the detail key optimistically with the merged draft and,
// once confirmed, refetches the detail and invalidates the list.
func (v *Vendors) Update(ctx context.Context, id string, draft domain.VendorDraft) error {
	err := v.exec.Do(ctx, mutate.Mutation{
		Key: vendorKey(id),
		Apply: func(prev any) any {
			vendor := prev.(domain.Vendor)
			vendor.Name = draft.Name
			vendor.Email = draft.Email
			vendor.Comment = draft.Comment
			return vendor
		},
		Call: func(ctx context.Context) error {
			_, err := v.api.UpdateVendor(ctx, id, draft)
			return err
		},
		Refetch: func(ctx context.Context) (any, error) {
			return v.api.GetVendor(ctx, id)
		},
		AlsoInvalidate: []string{vendorsKey},
	})
	if err != nil {
		v.notify.Error("Failed to update vendor: " + err.Error())
		return err
	}
	v.notify.Info("Vendor updated")
	return nil
}

// Delete removes the vendor from the cached list immediately; a server
// error restores the exact prior list, same ids and order.
func (v *Vendors) Delete(ctx context.Context, id string) error {
	err := v.exec.Do(ctx, mutate.Mutation{
		Key: vendorsKey,
		Apply: func(prev any) any {
			vendors := prev.([]domain.Vendor)
			next := make([]domain.Vendor, 0, len(vendors))
			for _, vd := range vendors {
				if vd.ID != id {
					next = append(next, vd)
				}
			}
			return next
		},
		Call: func(ctx context.Context) error {
			return v.api.DeleteVendor(ctx, id)
		},
		Refetch: func(ctx context.Context) (any, error) {
			return v.api.ListVendors(ctx)
		},
		AlsoInvalidate: []string{vendorKey(id)},
	})
	if err != nil {
		v.notify.Error("Failed to delete vendor: " + err.Error())
		return err
	}
	v.notify.Info("Vendor deleted")
	return nil
}

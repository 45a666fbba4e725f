package auditlog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/publink/publink-logs/internal/db/models"
)

// OrganizationStore lists the organisations that own documents
type OrganizationStore interface {
	ListOrganizations(ctx context.Context) ([]models.OrganizationItem, error)
}

// OrganizationCache is an optional read-through cache for the organisation list
type OrganizationCache interface {
	GetOrganizations(ctx context.Context) ([]models.OrganizationItem, bool, error)
	SetOrganizations(ctx context.Context, items []models.OrganizationItem) error
}

// Directory serves the organisation list, consulting the cache first when one is set
type Directory struct {
	store OrganizationStore
	cache OrganizationCache
}

// NewDirectory creates a Directory. cache may be nil.
func NewDirectory(store OrganizationStore, cache OrganizationCache) *Directory {
	return &Directory{store: store, cache: cache}
}

// ListOrganizations returns every known organisation ordered by name then id.
// Cache failures are logged and never fail the call.
func (d *Directory) ListOrganizations(ctx context.Context) ([]models.OrganizationItem, error) {
	if d.cache != nil {
		items, ok, err := d.cache.GetOrganizations(ctx)
		switch {
		case err != nil:
			slog.WarnContext(ctx, "organization cache read failed", "error", err)
		case ok:
			return items, nil
		}
	}

	items, err := d.store.ListOrganizations(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to list organizations", "error", err)
		return nil, fmt.Errorf("list organizations: %w", err)
	}

	if d.cache != nil {
		if err := d.cache.SetOrganizations(ctx, items); err != nil {
			slog.WarnContext(ctx, "organization cache write failed", "error", err)
		}
	}
	return items, nil
}

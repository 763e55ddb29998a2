package repository

import (
	"context"
	"time"

	"github.com/formhub/backend/internal/model"
)

// SiteRepository is the persistence interface for remote site records.
// The sync engine only reads sites and advances their sync metadata;
// everything else belongs to site-management workflows.
type SiteRepository interface {
	FindByID(ctx context.Context, id int64) (*model.Site, error)
	ListActive(ctx context.Context) ([]*model.Site, error)
	Create(ctx context.Context, site *model.Site) error
	// SetContactFormID pins the discovered form id so later syncs skip
	// discovery.
	SetContactFormID(ctx context.Context, siteID, formID int64) error
	// TouchLastSynced advances the site's last-synced timestamp.
	TouchLastSynced(ctx context.Context, siteID int64, t time.Time) error
}

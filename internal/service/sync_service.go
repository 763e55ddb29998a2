package service

import (
	"context"

	"github.com/formhub/backend/internal/model"
	"github.com/formhub/backend/pkg/wordpress"
)

// SyncService drives the synchronization engine: it pulls form submissions
// from remote sites and upserts them into the local store.
type SyncService interface {
	// SyncSite runs one sync for the given site. Lock contention and
	// remote failures are normal outcomes reported via the result status;
	// the error return is reserved for unknown sites and store failures
	// before the run starts.
	SyncSite(ctx context.Context, siteID int64) (model.SyncResult, error)

	// SyncAllSites fans SyncSite out over all active sites on a bounded
	// worker pool, continuing past individual site failures. Result order
	// matches the site listing; completion order is unspecified.
	SyncAllSites(ctx context.Context) ([]model.SyncResult, error)

	// ResolveContactForm returns the contact form for a site, from the pin,
	// the cache or remote discovery. ErrNoContactForm when nothing matches.
	ResolveContactForm(ctx context.Context, siteID int64) (model.Form, error)

	// ListContactFormEntries is a live read-through of the site's contact
	// form entries. It performs no writes and is not a sync.
	ListContactFormEntries(ctx context.Context, siteID int64, page, perPage int) (*model.EntriesProjection, error)
}

// ClientFactory builds a remote API client for one site. Injected so tests
// can substitute fakes.
type ClientFactory func(site *model.Site) wordpress.Client

// NewClientFactory returns the production factory, creating one client per
// site with the shared timeout and retry configuration.
func NewClientFactory(cfg wordpress.Config) ClientFactory {
	return func(site *model.Site) wordpress.Client {
		return wordpress.NewClient(site.URL, site.Username, site.ApplicationPassword, cfg)
	}
}

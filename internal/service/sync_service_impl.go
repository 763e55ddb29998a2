package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/formhub/backend/internal/model"
	"github.com/formhub/backend/internal/repository"
	"github.com/formhub/backend/pkg/wordpress"
)

// SyncConfig carries the orchestrator knobs. Zero values select defaults.
type SyncConfig struct {
	// PageSize is the per_page value used when paging remote entries.
	PageSize int
	// BatchSize bounds how many submissions are buffered before a store
	// flush, capping memory and transaction size.
	BatchSize int
	// MaxPages is the hard cap on pages fetched per form, guarding
	// against a remote API that never reports a last page.
	MaxPages int
	// Workers bounds concurrent site syncs in SyncAllSites.
	Workers int
}

func (c SyncConfig) withDefaults() SyncConfig {
	if c.PageSize <= 0 {
		c.PageSize = 50
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 500
	}
	if c.MaxPages <= 0 {
		c.MaxPages = 1000
	}
	if c.Workers <= 0 {
		c.Workers = 4
	}
	return c
}

// syncServiceImpl is the production implementation of SyncService.
type syncServiceImpl struct {
	sites       repository.SiteRepository
	submissions repository.SubmissionRepository
	resolver    *FormResolver
	newClient   ClientFactory
	cfg         SyncConfig
	locks       *keyedLocks
	now         func() time.Time
}

// NewSyncService creates a SyncService. The resolver and client factory
// are injected so orchestrator instances never share hidden state.
func NewSyncService(
	sites repository.SiteRepository,
	submissions repository.SubmissionRepository,
	resolver *FormResolver,
	newClient ClientFactory,
	cfg SyncConfig,
) SyncService {
	return &syncServiceImpl{
		sites:       sites,
		submissions: submissions,
		resolver:    resolver,
		newClient:   newClient,
		cfg:         cfg.withDefaults(),
		locks:       newKeyedLocks(),
		now:         time.Now,
	}
}

// SyncSite loads the site and runs one sync for it.
func (s *syncServiceImpl) SyncSite(ctx context.Context, siteID int64) (model.SyncResult, error) {
	site, err := s.sites.FindByID(ctx, siteID)
	if err != nil {
		return model.SyncResult{}, err
	}
	return s.syncSite(ctx, site), nil
}

// SyncAllSites fans syncSite out over all active sites. Per-site failures
// land in the corresponding result; they never abort the fan-out.
func (s *syncServiceImpl) SyncAllSites(ctx context.Context) ([]model.SyncResult, error) {
	sites, err := s.sites.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]model.SyncResult, len(sites))
	var g errgroup.Group
	g.SetLimit(s.cfg.Workers)
	for i, site := range sites {
		g.Go(func() error {
			results[i] = s.syncSite(ctx, site)
			return nil
		})
	}
	_ = g.Wait()
	return results, nil
}

// syncSite is the per-site state machine: lock, verify, resolve, page,
// parse, upsert, advance the sync timestamp, aggregate the outcome.
func (s *syncServiceImpl) syncSite(ctx context.Context, site *model.Site) model.SyncResult {
	res := model.SyncResult{RunID: uuid.NewString(), SiteID: site.ID}
	log := slog.With("site_id", site.ID, "run_id", res.RunID)

	if !s.locks.TryLock(site.ID) {
		res.Status = model.SyncStatusInProgress
		res.Message = "A sync is already in progress for this site"
		return res
	}
	defer s.locks.Unlock(site.ID)

	log.Info("sync started", "site", site.Name)
	client := s.newClient(site)

	if err := client.VerifyCredentials(ctx); err != nil {
		log.Warn("credential verification failed", "error", err)
		res.Status = model.SyncStatusFailed
		res.Message = wordpress.ErrorMessage(err)
		return res
	}

	forms, err := s.formsToSync(ctx, site, client, log)
	if err != nil {
		log.Warn("form resolution failed", "error", err)
		res.Status = model.SyncStatusFailed
		res.Message = wordpress.ErrorMessage(err)
		return res
	}
	res.FormsFound = len(forms)

	if len(forms) == 0 {
		res.Status = model.SyncStatusCompleted
		res.Message = "No forms found to sync"
		s.touchLastSynced(ctx, site, log)
		return res
	}

	b := &upsertBatcher{repo: s.submissions, size: s.cfg.BatchSize, log: log}
	for _, form := range forms {
		if err := s.syncForm(ctx, site, client, form.ID, b); err != nil {
			log.Warn("form skipped", "form_id", form.ID, "error", err)
			res.FormsSkipped++
		}
	}
	b.flush(ctx)

	res.SubmissionsSynced = b.stored
	res.EntriesSkipped = b.skipped

	// Even a partial run advances the timestamp: credentials were good and
	// everything reachable was written.
	s.touchLastSynced(ctx, site, log)

	if res.FormsSkipped > 0 || res.EntriesSkipped > 0 {
		res.Status = model.SyncStatusPartialFailure
		res.Message = fmt.Sprintf("Sync finished: %d forms and %d entries skipped",
			res.FormsSkipped, res.EntriesSkipped)
	} else {
		res.Status = model.SyncStatusCompleted
		res.Message = "Sync completed successfully"
	}

	log.Info("sync finished",
		"status", res.Status,
		"forms_found", res.FormsFound,
		"submissions_synced", res.SubmissionsSynced,
	)
	return res
}

// formsToSync returns the forms this run pages through. A pinned or
// discovered contact form scopes the run to that single form; when nothing
// matches the allow-list the run falls back to syncing every listed form
// (legacy unscoped mode).
func (s *syncServiceImpl) formsToSync(ctx context.Context, site *model.Site, client wordpress.Client, log *slog.Logger) ([]model.Form, error) {
	form, err := s.resolver.Resolve(ctx, site, client)
	switch {
	case err == nil:
		if site.ContactFormID == nil {
			// Persist the discovery so later runs skip it entirely.
			if err := s.sites.SetContactFormID(ctx, site.ID, form.ID); err != nil {
				log.Warn("failed to pin contact form id", "form_id", form.ID, "error", err)
			}
		}
		return []model.Form{form}, nil

	case errors.Is(err, ErrNoContactForm):
		remote, err := client.ListForms(ctx)
		if err != nil {
			return nil, err
		}
		forms := make([]model.Form, 0, len(remote))
		for _, f := range remote {
			forms = append(forms, model.Form{ID: f.ID, Title: f.Title, Status: f.Status})
		}
		log.Info("no contact form matched, syncing all forms", "forms", len(forms))
		return forms, nil

	default:
		return nil, err
	}
}

// syncForm pages through one form's entries, upserting as it goes. Page
// N+1 is never fetched before page N's entries reached the batcher.
func (s *syncServiceImpl) syncForm(ctx context.Context, site *model.Site, client wordpress.Client, formID int64, b *upsertBatcher) error {
	for page := 1; ; page++ {
		if page > s.cfg.MaxPages {
			return fmt.Errorf("form %d: page limit %d exceeded", formID, s.cfg.MaxPages)
		}

		p, err := client.FetchEntries(ctx, formID, page, s.cfg.PageSize)
		if err != nil {
			return err
		}
		// An empty page is treated the same as the reported last page.
		if len(p.Entries) == 0 {
			return nil
		}

		for _, e := range p.Entries {
			parsed, data := ParseEntry(e, s.now)
			status := e.Status
			if status == "" {
				status = "new"
			}
			b.add(ctx, &model.Submission{
				SiteID:         site.ID,
				FormID:         formID,
				RemoteEntryID:  e.ID,
				Status:         status,
				Data:           data,
				SubmitterName:  parsed.SubmitterName,
				SubmitterEmail: parsed.SubmitterEmail,
				Subject:        parsed.Subject,
				Message:        parsed.Message,
				SubmittedAt:    parsed.SubmittedAt,
			})
		}

		if p.IsLast() {
			return nil
		}
	}
}

func (s *syncServiceImpl) touchLastSynced(ctx context.Context, site *model.Site, log *slog.Logger) {
	if err := s.sites.TouchLastSynced(ctx, site.ID, s.now().UTC()); err != nil {
		log.Error("failed to advance last_synced_at", "error", err)
	}
}

// ResolveContactForm resolves the contact form for a site without syncing.
func (s *syncServiceImpl) ResolveContactForm(ctx context.Context, siteID int64) (model.Form, error) {
	site, err := s.sites.FindByID(ctx, siteID)
	if err != nil {
		return model.Form{}, err
	}
	return s.resolver.Resolve(ctx, site, s.newClient(site))
}

// ListContactFormEntries fetches one page of the site's contact form
// entries straight from the remote API.
func (s *syncServiceImpl) ListContactFormEntries(ctx context.Context, siteID int64, page, perPage int) (*model.EntriesProjection, error) {
	site, err := s.sites.FindByID(ctx, siteID)
	if err != nil {
		return nil, err
	}
	client := s.newClient(site)

	form, err := s.resolver.Resolve(ctx, site, client)
	if err != nil {
		return nil, err
	}

	if page <= 0 {
		page = 1
	}
	if perPage <= 0 {
		perPage = s.cfg.PageSize
	}
	p, err := client.FetchEntries(ctx, form.ID, page, perPage)
	if err != nil {
		return nil, err
	}

	entries := make([]model.EntryView, 0, len(p.Entries))
	for _, e := range p.Entries {
		parsed, data := ParseEntry(e, s.now)
		entries = append(entries, model.EntryView{
			RemoteEntryID:  e.ID,
			Status:         e.Status,
			Data:           data,
			SubmitterName:  parsed.SubmitterName,
			SubmitterEmail: parsed.SubmitterEmail,
			Subject:        parsed.Subject,
			Message:        parsed.Message,
			SubmittedAt:    e.CreatedAt,
		})
	}

	currentPage := p.CurrentPage
	if currentPage == 0 {
		currentPage = page
	}
	return &model.EntriesProjection{
		Form: form,
		Pagination: model.Pagination{
			Page:     currentPage,
			PerPage:  perPage,
			Total:    p.Total,
			LastPage: p.LastPage,
		},
		Entries: entries,
	}, nil
}

// upsertBatcher flushes submissions to the store in bounded batches so a
// sync never buffers more than size records.
type upsertBatcher struct {
	repo    repository.SubmissionRepository
	size    int
	log     *slog.Logger
	buf     []*model.Submission
	stored  int
	skipped int
}

func (b *upsertBatcher) add(ctx context.Context, sub *model.Submission) {
	b.buf = append(b.buf, sub)
	if len(b.buf) >= b.size {
		b.flush(ctx)
	}
}

func (b *upsertBatcher) flush(ctx context.Context) {
	if len(b.buf) == 0 {
		return
	}
	n, err := b.repo.UpsertBatch(ctx, b.buf)
	if err != nil {
		b.log.Warn("submissions skipped during flush",
			"skipped", len(b.buf)-n, "error", err)
	}
	b.stored += n
	b.skipped += len(b.buf) - n
	b.buf = b.buf[:0]
}

package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/formhub/backend/internal/model"
	"github.com/formhub/backend/pkg/wordpress"
)

// ErrNoContactForm is returned when no form on the remote site matches the
// contact form title allow-list.
var ErrNoContactForm = errors.New("no contact form found")

const defaultFormCacheTTL = time.Hour

// FormResolver determines which remote form id is "the" contact form for a
// site, with a TTL cache bounding redundant discovery calls. The cache is
// process-local and intentionally never invalidated on remote changes;
// staleness is bounded purely by the TTL.
type FormResolver struct {
	ttl time.Duration
	now func() time.Time

	mu       sync.Mutex
	cache    map[int64]cachedForm
	siteLock map[int64]*sync.Mutex
}

type cachedForm struct {
	form       model.Form
	resolvedAt time.Time
}

// NewFormResolver creates a resolver. ttl <= 0 selects the one hour
// default; now == nil selects time.Now (tests inject a fake clock).
func NewFormResolver(ttl time.Duration, now func() time.Time) *FormResolver {
	if ttl <= 0 {
		ttl = defaultFormCacheTTL
	}
	if now == nil {
		now = time.Now
	}
	return &FormResolver{
		ttl:      ttl,
		now:      now,
		cache:    make(map[int64]cachedForm),
		siteLock: make(map[int64]*sync.Mutex),
	}
}

// Resolve returns the contact form for site. A pinned ContactFormID is
// authoritative and skips discovery entirely; invalid pins surface later
// as empty entry pages or a remote 404. Otherwise the cache is consulted,
// then the remote forms listing. Discovery for one site is serialized so
// concurrent syncs landing in the same window issue a single ListForms.
func (r *FormResolver) Resolve(ctx context.Context, site *model.Site, client wordpress.Client) (model.Form, error) {
	if site.ContactFormID != nil {
		return model.Form{ID: *site.ContactFormID}, nil
	}

	lock := r.lockFor(site.ID)
	lock.Lock()
	defer lock.Unlock()

	if form, ok := r.lookup(site.ID); ok {
		return form, nil
	}

	forms, err := client.ListForms(ctx)
	if err != nil {
		return model.Form{}, err
	}
	for _, f := range forms {
		if isContactTitle(f.Title) {
			form := model.Form{ID: f.ID, Title: f.Title, Status: f.Status}
			r.store(site.ID, form)
			return form, nil
		}
	}
	return model.Form{}, ErrNoContactForm
}

func (r *FormResolver) lockFor(siteID int64) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	lock, ok := r.siteLock[siteID]
	if !ok {
		lock = &sync.Mutex{}
		r.siteLock[siteID] = lock
	}
	return lock
}

func (r *FormResolver) lookup(siteID int64) (model.Form, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.cache[siteID]
	if !ok || r.now().Sub(entry.resolvedAt) >= r.ttl {
		return model.Form{}, false
	}
	return entry.form, true
}

func (r *FormResolver) store(siteID int64, form model.Form) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache[siteID] = cachedForm{form: form, resolvedAt: r.now()}
}

// isContactTitle matches form titles against the contact form allow-list,
// case-insensitively.
func isContactTitle(title string) bool {
	t := strings.ToLower(strings.TrimSpace(title))
	return t == "contact" || t == "contact us" || strings.Contains(t, "contact form")
}

package repository

import (
	"context"
	"errors"
	"time"

	"github.com/formhub/backend/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgSiteRepository is the PostgreSQL implementation of SiteRepository.
type PgSiteRepository struct {
	pool *pgxpool.Pool
}

// NewPgSiteRepository creates a PgSiteRepository backed by the given pool.
func NewPgSiteRepository(pool *pgxpool.Pool) *PgSiteRepository {
	return &PgSiteRepository{pool: pool}
}

var _ SiteRepository = (*PgSiteRepository)(nil)

const siteColumns = `id, name, url, username, application_password,
	contact_form_id, is_active, last_synced_at, created_at, updated_at`

func scanSite(row pgx.Row) (*model.Site, error) {
	var s model.Site
	err := row.Scan(
		&s.ID, &s.Name, &s.URL, &s.Username, &s.ApplicationPassword,
		&s.ContactFormID, &s.IsActive, &s.LastSyncedAt, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// FindByID returns the site with the given id or ErrNotFound.
func (r *PgSiteRepository) FindByID(ctx context.Context, id int64) (*model.Site, error) {
	site, err := scanSite(r.pool.QueryRow(ctx,
		`SELECT `+siteColumns+` FROM sites WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return site, err
}

// ListActive returns all sites with is_active = true, oldest first.
func (r *PgSiteRepository) ListActive(ctx context.Context) ([]*model.Site, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+siteColumns+` FROM sites WHERE is_active ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sites []*model.Site
	for rows.Next() {
		site, err := scanSite(rows)
		if err != nil {
			return nil, err
		}
		sites = append(sites, site)
	}
	return sites, rows.Err()
}

// Create inserts a new sites row and populates site.ID and timestamps from
// the RETURNING clause.
func (r *PgSiteRepository) Create(ctx context.Context, site *model.Site) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO sites (name, url, username, application_password, contact_form_id, is_active)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at, updated_at`,
		site.Name, site.URL, site.Username, site.ApplicationPassword,
		site.ContactFormID, site.IsActive,
	).Scan(&site.ID, &site.CreatedAt, &site.UpdatedAt)
}

// SetContactFormID pins the resolved contact form id on the site row.
func (r *PgSiteRepository) SetContactFormID(ctx context.Context, siteID, formID int64) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE sites SET contact_form_id = $2, updated_at = now() WHERE id = $1`,
		siteID, formID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// TouchLastSynced advances last_synced_at to t.
func (r *PgSiteRepository) TouchLastSynced(ctx context.Context, siteID int64, t time.Time) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE sites SET last_synced_at = $2, updated_at = now() WHERE id = $1`,
		siteID, t)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

package repository

import (
	"context"
	"strconv"

	"github.com/formhub/backend/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgSubmissionRepository is the PostgreSQL implementation of SubmissionRepository.
type PgSubmissionRepository struct {
	pool *pgxpool.Pool
}

// NewPgSubmissionRepository creates a PgSubmissionRepository backed by the given pool.
func NewPgSubmissionRepository(pool *pgxpool.Pool) *PgSubmissionRepository {
	return &PgSubmissionRepository{pool: pool}
}

var _ SubmissionRepository = (*PgSubmissionRepository)(nil)

// upsertSQL writes one submission keyed on (site_id, remote_entry_id).
// Only mutable fields are overwritten on conflict; identity fields,
// submitted_at and the review flags keep their stored values.
const upsertSQL = `
	INSERT INTO form_submissions
		(site_id, form_id, remote_entry_id, status, data,
		 submitter_name, submitter_email, subject, message,
		 submitted_at, is_read, is_active)
	VALUES ($1, $2, $3, $4, $5,
		NULLIF($6, ''), NULLIF($7, ''), NULLIF($8, ''), NULLIF($9, ''),
		$10, false, true)
	ON CONFLICT (site_id, remote_entry_id) DO UPDATE SET
		status          = EXCLUDED.status,
		data            = EXCLUDED.data,
		submitter_name  = EXCLUDED.submitter_name,
		submitter_email = EXCLUDED.submitter_email,
		subject         = EXCLUDED.subject,
		message         = EXCLUDED.message,
		updated_at      = now()`

func upsertArgs(sub *model.Submission) []any {
	return []any{
		sub.SiteID, sub.FormID, sub.RemoteEntryID, sub.Status, sub.Data,
		sub.SubmitterName, sub.SubmitterEmail, sub.Subject, sub.Message,
		sub.SubmittedAt,
	}
}

// Upsert inserts or updates a single submission row.
func (r *PgSubmissionRepository) Upsert(ctx context.Context, sub *model.Submission) error {
	_, err := r.pool.Exec(ctx, upsertSQL, upsertArgs(sub)...)
	return err
}

// UpsertBatch writes the batch in one round trip. pgx batches run in an
// implicit transaction, so a single bad row rolls back the whole batch;
// in that case the rows are retried one by one and only the offending
// ones are skipped.
func (r *PgSubmissionRepository) UpsertBatch(ctx context.Context, subs []*model.Submission) (int, error) {
	if len(subs) == 0 {
		return 0, nil
	}

	b := &pgx.Batch{}
	for _, sub := range subs {
		b.Queue(upsertSQL, upsertArgs(sub)...)
	}
	br := r.pool.SendBatch(ctx, b)
	var batchErr error
	for range subs {
		if _, err := br.Exec(); err != nil && batchErr == nil {
			batchErr = err
		}
	}
	if err := br.Close(); err != nil && batchErr == nil {
		batchErr = err
	}
	if batchErr == nil {
		return len(subs), nil
	}

	stored := 0
	var firstErr error
	for _, sub := range subs {
		if err := r.Upsert(ctx, sub); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		stored++
	}
	return stored, firstErr
}

const submissionColumns = `id, site_id, form_id, remote_entry_id, status, data,
	COALESCE(submitter_name, ''), COALESCE(submitter_email, ''),
	COALESCE(subject, ''), COALESCE(message, ''),
	submitted_at, is_read, is_active, created_at, updated_at`

func scanSubmission(row pgx.Row) (*model.Submission, error) {
	var s model.Submission
	err := row.Scan(
		&s.ID, &s.SiteID, &s.FormID, &s.RemoteEntryID, &s.Status, &s.Data,
		&s.SubmitterName, &s.SubmitterEmail, &s.Subject, &s.Message,
		&s.SubmittedAt, &s.IsRead, &s.IsActive, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// ListBySite returns stored submissions for a site, newest first.
func (r *PgSubmissionRepository) ListBySite(ctx context.Context, siteID int64, opts model.SubmissionListOptions) ([]*model.Submission, error) {
	args := []any{siteID}
	where := "WHERE site_id = $1 AND is_active"
	if opts.FormID != 0 {
		args = append(args, opts.FormID)
		where += " AND form_id = $2"
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit, opts.Offset)
	limitArg := strconv.Itoa(len(args) - 1)
	offsetArg := strconv.Itoa(len(args))

	rows, err := r.pool.Query(ctx,
		`SELECT `+submissionColumns+` FROM form_submissions `+where+
			` ORDER BY submitted_at DESC, id DESC LIMIT $`+limitArg+` OFFSET $`+offsetArg,
		args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subs []*model.Submission
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

// CountBySite returns the number of active submissions stored for a site.
func (r *PgSubmissionRepository) CountBySite(ctx context.Context, siteID int64) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT count(*) FROM form_submissions WHERE site_id = $1 AND is_active`,
		siteID).Scan(&n)
	return n, err
}

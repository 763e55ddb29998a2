package repository

import (
	"context"

	"github.com/formhub/backend/internal/model"
)

// SubmissionRepository is the upsert target of the sync engine plus the
// read surface used for review. Upserts key on (site_id, remote_entry_id):
// an existing row gets its mutable fields overwritten, identity fields and
// submitted_at are never touched after insert. Sync never deletes rows.
type SubmissionRepository interface {
	// Upsert inserts or updates a single submission.
	Upsert(ctx context.Context, sub *model.Submission) error

	// UpsertBatch upserts a batch in one round trip and returns the number
	// of rows stored. Individual row failures are skipped (the returned
	// error names the first one); the rest of the batch is still written.
	UpsertBatch(ctx context.Context, subs []*model.Submission) (int, error)

	ListBySite(ctx context.Context, siteID int64, opts model.SubmissionListOptions) ([]*model.Submission, error)
	CountBySite(ctx context.Context, siteID int64) (int, error)
}

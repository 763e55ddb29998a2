package service

import (
	"context"

	"github.com/formhub/backend/internal/model"
	"github.com/formhub/backend/internal/repository"
)

// SubmissionService reads the locally stored submissions of a site.
type SubmissionService interface {
	// ListBySite returns the stored submissions of a site, newest first,
	// together with the total count for the site.
	ListBySite(ctx context.Context, siteID int64, opts model.SubmissionListOptions) ([]*model.Submission, int, error)
}

type submissionServiceImpl struct {
	submissions repository.SubmissionRepository
}

// NewSubmissionService creates a SubmissionService backed by the store.
func NewSubmissionService(submissions repository.SubmissionRepository) SubmissionService {
	return &submissionServiceImpl{submissions: submissions}
}

func (s *submissionServiceImpl) ListBySite(ctx context.Context, siteID int64, opts model.SubmissionListOptions) ([]*model.Submission, int, error) {
	subs, err := s.submissions.ListBySite(ctx, siteID, opts)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.submissions.CountBySite(ctx, siteID)
	if err != nil {
		return nil, 0, err
	}
	return subs, total, nil
}

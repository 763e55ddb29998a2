package model

import "time"

// Submission is the locally persisted, normalized representation of a
// remote form entry. The pair (SiteID, RemoteEntryID) is the natural key:
// syncing the same entry again updates the existing row, never inserts a
// second one. Identity fields and SubmittedAt are never changed after the
// row is created.
type Submission struct {
	ID            int64 `json:"id"`
	SiteID        int64 `json:"site_id"`
	FormID        int64 `json:"form_id"`
	RemoteEntryID int64 `json:"remote_entry_id"`

	// Status is the free-form lifecycle tag reported by the remote side
	// ("new", "read", "closed", ...).
	Status string `json:"status"`

	// Data holds the submitted form fields verbatim (minus plugin-internal
	// keys). Parsing is best effort; this blob is the fallback.
	Data map[string]any `json:"data"`

	// Convenience fields extracted from Data. Each may be empty.
	SubmitterName  string `json:"submitter_name,omitempty"`
	SubmitterEmail string `json:"submitter_email,omitempty"`
	Subject        string `json:"subject,omitempty"`
	Message        string `json:"message,omitempty"`

	SubmittedAt time.Time `json:"submitted_at"`

	// IsRead and IsActive are controlled by downstream review workflows,
	// not by sync.
	IsRead   bool `json:"is_read"`
	IsActive bool `json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SubmissionListOptions carries pagination parameters for listing stored
// submissions of a site.
type SubmissionListOptions struct {
	FormID int64 // 0 means all forms
	Limit  int
	Offset int
}

package model

import "time"

// Site is a remote WordPress installation whose contact form submissions
// are pulled into the hub. Credentials are a site-scoped application
// password used for HTTP Basic auth against the plugin REST API.
type Site struct {
	ID                  int64      `json:"id"`
	Name                string     `json:"name"`
	URL                 string     `json:"url"`
	Username            string     `json:"username"`
	ApplicationPassword string     `json:"-"`
	// ContactFormID pins the form to sync. nil means the form is
	// discovered by title on the next sync.
	ContactFormID *int64     `json:"contact_form_id,omitempty"`
	IsActive      bool       `json:"is_active"`
	LastSyncedAt  *time.Time `json:"last_synced_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// Form is a transient value object fetched during form resolution.
// It is never persisted.
type Form struct {
	ID     int64  `json:"id"`
	Title  string `json:"title"`
	Status string `json:"status,omitempty"`
}

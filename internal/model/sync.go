package model

// SyncStatus classifies the outcome of one site sync run.
type SyncStatus string

const (
	// SyncStatusCompleted means every form and entry was processed.
	SyncStatusCompleted SyncStatus = "completed"
	// SyncStatusPartialFailure means some forms or entries were skipped
	// but the run itself finished.
	SyncStatusPartialFailure SyncStatus = "partial_failure"
	// SyncStatusFailed means the run aborted before writing anything
	// (bad credentials, unreachable site, plugin absent).
	SyncStatusFailed SyncStatus = "failed"
	// SyncStatusInProgress means another sync already holds the site lock;
	// this run did nothing.
	SyncStatusInProgress SyncStatus = "in_progress"
)

// SyncResult aggregates the outcome of one SyncSite run.
type SyncResult struct {
	RunID             string     `json:"run_id"`
	SiteID            int64      `json:"site_id"`
	FormsFound        int        `json:"forms_found"`
	SubmissionsSynced int        `json:"submissions_synced"`
	FormsSkipped      int        `json:"forms_skipped,omitempty"`
	EntriesSkipped    int        `json:"entries_skipped,omitempty"`
	Status            SyncStatus `json:"status"`
	Message           string     `json:"message"`
}

// Pagination describes one page of a remote entries listing.
type Pagination struct {
	Page     int `json:"page"`
	PerPage  int `json:"per_page"`
	Total    int `json:"total"`
	LastPage int `json:"last_page"`
}

// EntryView is a remote entry as returned by the read-through listing:
// parsed convenience fields plus the raw payload. Nothing here is persisted
// by the listing itself.
type EntryView struct {
	RemoteEntryID  int64          `json:"remote_entry_id"`
	Status         string         `json:"status"`
	Data           map[string]any `json:"data"`
	SubmitterName  string         `json:"submitter_name,omitempty"`
	SubmitterEmail string         `json:"submitter_email,omitempty"`
	Subject        string         `json:"subject,omitempty"`
	Message        string         `json:"message,omitempty"`
	SubmittedAt    string         `json:"submitted_at,omitempty"`
}

// EntriesProjection is the read-through view of a site's contact form
// entries, fetched live from the remote API.
type EntriesProjection struct {
	Form       Form        `json:"form"`
	Pagination Pagination  `json:"pagination"`
	Entries    []EntryView `json:"entries"`
}

// DiagnosticsCheck is the outcome of a single operator diagnostics probe.
type DiagnosticsCheck struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// PluginCheck reports install/activation state of the forms plugin.
type PluginCheck struct {
	Installed bool   `json:"installed"`
	Active    bool   `json:"active"`
	Version   string `json:"version,omitempty"`
	Error     string `json:"error,omitempty"`
}

// DiagnosticsReport aggregates the operator-facing checks for one site.
// None of these probes are on the sync path.
type DiagnosticsReport struct {
	SiteID    int64            `json:"site_id"`
	Reachable DiagnosticsCheck `json:"wordpress"`
	PluginAPI DiagnosticsCheck `json:"forms_api"`
	Plugin    PluginCheck      `json:"plugin"`
}

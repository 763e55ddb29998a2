// Package wordpress provides a lightweight client for the Fluent Forms
// REST surface of a WordPress site. Uses raw HTTP calls (no SDK); every
// call is authenticated with the site's application password, bounded by
// one shared timeout and wrapped in the package retry policy.
package wordpress

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Form is a form definition as listed by the remote plugin.
type Form struct {
	ID     int64  `json:"id"`
	Title  string `json:"title"`
	Status string `json:"status"`
}

// Entry is a single form submission record as returned by the remote
// plugin API. Response carries the submitted fields; depending on the
// plugin version it arrives either as a JSON object or as a JSON-encoded
// string, so it is kept raw here and decoded by the caller.
type Entry struct {
	ID        int64           `json:"id"`
	Status    string          `json:"status"`
	Response  json.RawMessage `json:"response"`
	CreatedAt string          `json:"created_at"`
}

// EntriesPage is one page of a paginated entries listing.
type EntriesPage struct {
	Entries     []Entry
	Total       int
	CurrentPage int
	LastPage    int
}

// IsLast reports whether no further pages exist. Missing page metadata is
// treated as "unknown", letting the caller stop on the first empty page.
func (p EntriesPage) IsLast() bool {
	return p.LastPage > 0 && p.CurrentPage >= p.LastPage
}

// PluginInfo is the install/activation state of the forms plugin.
type PluginInfo struct {
	Name    string `json:"name"`
	Status  string `json:"status"`
	Version string `json:"version"`
}

// Client is the remote site API used by the sync engine and the
// diagnostics surface.
type Client interface {
	// VerifyCredentials checks the application password against the site.
	VerifyCredentials(ctx context.Context) error
	// ListForms returns all forms defined on the site.
	ListForms(ctx context.Context) ([]Form, error)
	// FetchEntries returns one page of submissions for a form.
	FetchEntries(ctx context.Context, formID int64, page, perPage int) (EntriesPage, error)
	// CheckReachable probes the REST root. Diagnostics only.
	CheckReachable(ctx context.Context) error
	// CheckPluginAPI probes the forms plugin namespace. Diagnostics only.
	CheckPluginAPI(ctx context.Context) error
	// PluginStatus returns the plugin's install/activation listing entry.
	// Diagnostics only.
	PluginStatus(ctx context.Context) (PluginInfo, error)
}

// Config carries the per-client knobs. Zero values select the defaults
// (10s timeout, DefaultRetryPolicy).
type Config struct {
	Timeout time.Duration
	Retry   RetryPolicy
}

// HTTPClient is the production Client. One instance per site; the
// underlying http.Client keeps its connection pool alive across calls so
// TLS setup is paid once per sync run.
type HTTPClient struct {
	baseURL  string
	username string
	password string
	retry    RetryPolicy
	http     *http.Client
}

var _ Client = (*HTTPClient)(nil)

// NewClient creates an HTTPClient for one site. siteURL is the site root
// (with or without trailing slash); username/appPassword feed HTTP Basic
// auth.
func NewClient(siteURL, username, appPassword string, cfg Config) *HTTPClient {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.Retry.MaxAttempts == 0 {
		cfg.Retry = DefaultRetryPolicy()
	}
	return &HTTPClient{
		baseURL:  strings.TrimRight(siteURL, "/"),
		username: username,
		password: appPassword,
		retry:    cfg.Retry,
		http:     &http.Client{Timeout: cfg.Timeout},
	}
}

// VerifyCredentials calls the authenticated profile endpoint. A 401 maps
// to ErrAuthentication.
func (c *HTTPClient) VerifyCredentials(ctx context.Context) error {
	return c.get(ctx, "verify credentials", "wp/v2/users/me", nil, nil)
}

// ListForms fetches the form definitions. The plugin returns either a bare
// array or a paginated envelope; both are accepted.
func (c *HTTPClient) ListForms(ctx context.Context) ([]Form, error) {
	var raw json.RawMessage
	if err := c.get(ctx, "list forms", "fluentform/v1/forms", nil, &raw); err != nil {
		return nil, err
	}
	var forms []Form
	if err := json.Unmarshal(raw, &forms); err == nil {
		return forms, nil
	}
	var envelope struct {
		Data []Form `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, &MalformedResponseError{Op: "list forms", Err: err}
	}
	return envelope.Data, nil
}

// FetchEntries fetches one page of submissions for formID.
func (c *HTTPClient) FetchEntries(ctx context.Context, formID int64, page, perPage int) (EntriesPage, error) {
	q := url.Values{}
	q.Set("form_id", strconv.FormatInt(formID, 10))
	q.Set("page", strconv.Itoa(page))
	q.Set("per_page", strconv.Itoa(perPage))

	var raw json.RawMessage
	if err := c.get(ctx, "fetch entries", "fluentform/v1/submissions", q, &raw); err != nil {
		return EntriesPage{}, err
	}

	var envelope struct {
		Data        []Entry `json:"data"`
		Total       int     `json:"total"`
		CurrentPage int     `json:"current_page"`
		LastPage    int     `json:"last_page"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && (envelope.Data != nil || envelope.Total > 0) {
		return EntriesPage{
			Entries:     envelope.Data,
			Total:       envelope.Total,
			CurrentPage: envelope.CurrentPage,
			LastPage:    envelope.LastPage,
		}, nil
	}

	var entries []Entry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return EntriesPage{}, &MalformedResponseError{Op: "fetch entries", Err: err}
	}
	return EntriesPage{Entries: entries, Total: len(entries), CurrentPage: page}, nil
}

// CheckReachable probes the REST API root of the site.
func (c *HTTPClient) CheckReachable(ctx context.Context) error {
	return c.get(ctx, "check reachable", "", nil, nil)
}

// CheckPluginAPI probes the forms plugin REST namespace.
func (c *HTTPClient) CheckPluginAPI(ctx context.Context) error {
	return c.get(ctx, "check plugin api", "fluentform/v1", nil, nil)
}

// PluginStatus searches the plugin listing for the forms plugin. Requires
// a credential with plugin read access.
func (c *HTTPClient) PluginStatus(ctx context.Context) (PluginInfo, error) {
	q := url.Values{}
	q.Set("search", "fluentforms")
	q.Set("context", "edit")

	var plugins []PluginInfo
	if err := c.get(ctx, "plugin status", "wp/v2/plugins", q, &plugins); err != nil {
		return PluginInfo{}, err
	}
	for _, p := range plugins {
		if p.Name == "Fluent Forms" {
			return p, nil
		}
	}
	return PluginInfo{}, &notFoundError{op: "plugin status"}
}

// get issues one GET under the retry policy, decoding a JSON body into out
// when out is non-nil.
func (c *HTTPClient) get(ctx context.Context, op, endpoint string, query url.Values, out any) error {
	return c.retry.run(ctx, func() error {
		return c.getOnce(ctx, op, endpoint, query, out)
	})
}

func (c *HTTPClient) getOnce(ctx context.Context, op, endpoint string, query url.Values, out any) error {
	u := c.baseURL + "/wp-json/" + strings.TrimPrefix(endpoint, "/")
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.SetBasicAuth(c.username, c.password)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return &ConnectivityError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return &authError{op: op}
	case resp.StatusCode == http.StatusNotFound:
		return &notFoundError{op: op}
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return &StatusError{Op: op, Code: resp.StatusCode}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &ConnectivityError{Op: op, Err: err}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &MalformedResponseError{Op: op, Err: err}
	}
	return nil
}

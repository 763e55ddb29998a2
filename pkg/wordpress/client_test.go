package wordpress

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetry() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}
}

func newTestClient(serverURL string) *HTTPClient {
	return NewClient(serverURL, "admin", "app-pass", Config{
		Timeout: 2 * time.Second,
		Retry:   fastRetry(),
	})
}

func TestVerifyCredentials_SendsBasicAuth(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"id":1,"name":"admin"}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	require.NoError(t, c.VerifyCredentials(context.Background()))

	want := "Basic " + base64.StdEncoding.EncodeToString([]byte("admin:app-pass"))
	assert.Equal(t, want, gotAuth)
}

func TestVerifyCredentials_401NotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	err := c.VerifyCredentials(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAuthentication)
	assert.Equal(t, int32(1), calls.Load(), "401 must not be retried")
	assert.Equal(t, "Invalid credentials", ErrorMessage(err))
}

func TestListForms_404MapsToNotFound(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	_, err := c.ListForms(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, int32(1), calls.Load(), "404 must not be retried")
}

func TestListForms_5xxRetriedThreeTimes(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	_, err := c.ListForms(context.Background())
	require.Error(t, err)

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusBadGateway, se.Code)
	assert.Equal(t, int32(3), calls.Load(), "5xx retried exactly MaxAttempts times")
}

func TestListForms_BareArrayAndEnvelope(t *testing.T) {
	bodies := []string{
		`[{"id":3,"title":"Contact Form","status":"published"}]`,
		`{"data":[{"id":3,"title":"Contact Form","status":"published"}],"total":1}`,
	}
	for _, body := range bodies {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(body))
		}))
		c := newTestClient(srv.URL)
		forms, err := c.ListForms(context.Background())
		srv.Close()

		require.NoError(t, err)
		require.Len(t, forms, 1)
		assert.Equal(t, int64(3), forms[0].ID)
		assert.Equal(t, "Contact Form", forms[0].Title)
	}
}

func TestListForms_MalformedBodyNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(`<html>maintenance</html>`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	_, err := c.ListForms(context.Background())
	require.Error(t, err)

	var me *MalformedResponseError
	assert.ErrorAs(t, err, &me)
	assert.Equal(t, int32(1), calls.Load())
}

func TestFetchEntries_PaginationMetadata(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "7", r.URL.Query().Get("form_id"))
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "50", r.URL.Query().Get("per_page"))
		w.Write([]byte(`{
			"data":[{"id":42,"status":"read","response":"{\"email\":\"a@b.com\"}","created_at":"2026-01-15 09:30:00"}],
			"total":1203,"current_page":2,"last_page":25
		}`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	page, err := c.FetchEntries(context.Background(), 7, 2, 50)
	require.NoError(t, err)

	assert.Equal(t, 1203, page.Total)
	assert.Equal(t, 2, page.CurrentPage)
	assert.Equal(t, 25, page.LastPage)
	assert.False(t, page.IsLast())
	require.Len(t, page.Entries, 1)
	assert.Equal(t, int64(42), page.Entries[0].ID)
}

func TestFetchEntries_BareArrayFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id":1,"status":"new","response":"{}","created_at":""}]`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	page, err := c.FetchEntries(context.Background(), 1, 1, 50)
	require.NoError(t, err)
	assert.Len(t, page.Entries, 1)
	assert.False(t, page.IsLast(), "missing page metadata means unknown, not last")
}

func TestTimeout_RetriedAndClassified(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		time.Sleep(300 * time.Millisecond)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "admin", "pw", Config{
		Timeout: 30 * time.Millisecond,
		Retry:   fastRetry(),
	})
	err := c.VerifyCredentials(context.Background())
	require.Error(t, err)

	var ce *ConnectivityError
	require.ErrorAs(t, err, &ce)
	assert.True(t, ce.Timeout())
	assert.Equal(t, "Connection timeout", ErrorMessage(err))
	assert.Equal(t, int32(3), calls.Load(), "timeouts retried exactly MaxAttempts times")
}

func TestConnectionRefused_Classified(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing listening anymore

	c := newTestClient(srv.URL)
	err := c.CheckReachable(context.Background())
	require.Error(t, err)

	var ce *ConnectivityError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "Could not connect to site", ErrorMessage(err))
}

func TestPluginStatus_FindsPluginByName(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "fluentforms", r.URL.Query().Get("search"))
		w.Write([]byte(`[
			{"name":"Some Other Plugin","status":"inactive","version":"0.1"},
			{"name":"Fluent Forms","status":"active","version":"5.2.0"}
		]`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	info, err := c.PluginStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "active", info.Status)
	assert.Equal(t, "5.2.0", info.Version)
}

func TestPluginStatus_MissingPluginIsNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	_, err := c.PluginStatus(context.Background())
	assert.True(t, errors.Is(err, ErrNotFound))
}

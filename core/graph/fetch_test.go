package graph

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pagedServer serves canned page bodies keyed by path (plus raw query if any).
func pagedServer(t *testing.T, pages map[string]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.URL.Path
		if r.URL.RawQuery != "" {
			key += "?" + r.URL.RawQuery
		}
		body, ok := pages[key]
		if !ok {
			t.Errorf("unexpected request: %s", key)
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func drain(p *Pager) []Record {
	var out []Record
	for {
		rec, ok := p.Next()
		if !ok {
			return out
		}
		out = append(out, rec)
	}
}

func TestPager_WalksAllPagesInOrder(t *testing.T) {
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	mux.HandleFunc("/users/delta", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("$skiptoken") == "page2" {
			fmt.Fprint(w, `{"value":[{"id":"u2"},{"id":"u3"}],"@odata.deltaLink":"https://graph.microsoft.com/v1.0/users/delta?$deltatoken=abc123"}`)
			return
		}
		// The next link must be followed verbatim, query state included.
		fmt.Fprintf(w, `{"value":[{"id":"u1"}],"@odata.nextLink":"%s/users/delta?$skiptoken=page2"}`, srv.URL)
	})

	p := testClient(srv.URL).Fetch(context.Background(), "/users/delta", "")
	records := drain(p)

	require.NoError(t, p.Err())
	require.Len(t, records, 3)
	assert.Equal(t, "u1", records[0].ID())
	assert.Equal(t, "u2", records[1].ID())
	assert.Equal(t, "u3", records[2].ID())
	assert.Equal(t, "abc123", p.Delta())

	// The cursor only exists once its page has been fetched: the first
	// page streams out untagged, the delta page and everything after
	// carry the new token.
	_, tagged := records[0][FieldUpdated]
	assert.False(t, tagged)
	assert.Equal(t, "abc123", records[1][FieldUpdated])
	assert.Equal(t, "abc123", records[2][FieldUpdated])
}

func TestPager_TagsRecordsWithActiveCursor(t *testing.T) {
	srv := pagedServer(t, map[string]string{
		"/groups/delta": `{"value":[{"id":"g1"}],"@odata.deltaLink":"https://graph.microsoft.com/v1.0/groups/delta?$deltatoken=tok-9"}`,
	})

	p := testClient(srv.URL).Fetch(context.Background(), "/groups/delta", "")
	records := drain(p)

	require.NoError(t, p.Err())
	require.Len(t, records, 1)
	assert.Equal(t, "g1", records[0][FieldID])
	assert.Equal(t, "tok-9", records[0][FieldUpdated])
}

func TestPager_ResumesFromSuppliedCursor(t *testing.T) {
	srv := pagedServer(t, map[string]string{
		"/users/delta?%24deltatoken=old-cursor": `{"value":[{"id":"u1"}]}`,
	})

	p := testClient(srv.URL).Fetch(context.Background(), "/users/delta", "old-cursor")
	records := drain(p)

	require.NoError(t, p.Err())
	require.Len(t, records, 1)
	// No delta link in the response: the supplied cursor stays active.
	assert.Equal(t, "old-cursor", records[0][FieldUpdated])
	assert.Equal(t, "old-cursor", p.Delta())
}

func TestPager_NoDeltaSupport(t *testing.T) {
	srv := pagedServer(t, map[string]string{
		"/devices/": `{"value":[{"id":"d1"}]}`,
	})

	p := testClient(srv.URL).Fetch(context.Background(), "/devices/", "")
	records := drain(p)

	require.NoError(t, p.Err())
	require.Len(t, records, 1)
	assert.Equal(t, "d1", records[0][FieldID])
	// Absent delta link is not an error and leaves no cursor behind.
	_, tagged := records[0][FieldUpdated]
	assert.False(t, tagged)
	assert.Empty(t, p.Delta())
}

func TestPager_EmptyCollection(t *testing.T) {
	srv := pagedServer(t, map[string]string{
		"/users/delta": `{"value":[]}`,
	})

	p := testClient(srv.URL).Fetch(context.Background(), "/users/delta", "")
	records := drain(p)

	require.NoError(t, p.Err())
	assert.Empty(t, records)
}

func TestPager_RemovedAnnotationMarksDeleted(t *testing.T) {
	srv := pagedServer(t, map[string]string{
		"/users/delta": `{"value":[{"id":"u1","@removed":{"reason":"changed"}}]}`,
	})

	p := testClient(srv.URL).Fetch(context.Background(), "/users/delta", "")
	records := drain(p)

	require.NoError(t, p.Err())
	require.Len(t, records, 1)
	assert.True(t, records[0].Deleted())
}

func TestPager_UpstreamErrorStopsIteration(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":"TooManyRequests"}}`, http.StatusTooManyRequests)
	}))
	t.Cleanup(srv.Close)

	p := testClient(srv.URL).Fetch(context.Background(), "/users/delta", "")
	records := drain(p)

	assert.Empty(t, records)
	var reqErr *RequestError
	require.ErrorAs(t, p.Err(), &reqErr)
	assert.Equal(t, http.StatusTooManyRequests, reqErr.StatusCode)
}

func TestPager_Prime(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		fmt.Fprint(w, `{"value":[{"id":"u1"}]}`)
	}))
	t.Cleanup(srv.Close)

	p := testClient(srv.URL).Fetch(context.Background(), "/users/delta", "")
	require.NoError(t, p.Prime())
	assert.Equal(t, 1, calls)

	records := drain(p)
	require.Len(t, records, 1)
	// Prime fetched the page; draining must not re-request it.
	assert.Equal(t, 1, calls)
}

func TestPager_PrimeSurfacesAuthFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":"InvalidAuthenticationToken"}}`, http.StatusUnauthorized)
	}))
	t.Cleanup(srv.Close)

	p := testClient(srv.URL).Fetch(context.Background(), "/users/delta", "")
	err := p.Prime()

	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, http.StatusUnauthorized, reqErr.StatusCode)
}

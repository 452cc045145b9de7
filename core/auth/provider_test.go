package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeIdP spins up a token endpoint that counts exchanges and issues tokens
// with the given lifetime.
func fakeIdP(t *testing.T, ttlSeconds int, exchanges *atomic.Int64) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, r.ParseForm())

		n := exchanges.Add(1)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"access_token": fmt.Sprintf("token-%d", n),
			"token_type":   "Bearer",
			"expires_in":   ttlSeconds,
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(authority string) Config {
	return Config{
		TenantID:     "tenant",
		ClientID:     "client",
		ClientSecret: "secret",
		Scope:        "https://graph.microsoft.com/.default",
		AuthorityURL: authority,
	}
}

func TestProvider_Token_Caches(t *testing.T) {
	var exchanges atomic.Int64
	srv := fakeIdP(t, 3600, &exchanges)

	p := NewProvider(testConfig(srv.URL))
	ctx := context.Background()

	tok1, err := p.Token(ctx)
	require.NoError(t, err)
	tok2, err := p.Token(ctx)
	require.NoError(t, err)

	assert.Equal(t, tok1.AccessToken, tok2.AccessToken)
	assert.EqualValues(t, 1, exchanges.Load())
}

func TestProvider_Token_RefreshesNearExpiry(t *testing.T) {
	var exchanges atomic.Int64
	srv := fakeIdP(t, 3600, &exchanges)

	p := NewProvider(testConfig(srv.URL))
	base := time.Now()
	offset := time.Duration(0)
	p.now = func() time.Time { return base.Add(offset) }

	ctx := context.Background()

	_, err := p.Token(ctx)
	require.NoError(t, err)

	// Well before the safety margin: cached token is reused.
	offset = 3600*time.Second - 6*time.Second
	_, err = p.Token(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, exchanges.Load())

	// Inside the safety margin: refreshed exactly once.
	offset = 3600*time.Second - 4*time.Second
	_, err = p.Token(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, exchanges.Load())

	_, err = p.Token(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, exchanges.Load())
}

func TestProvider_Token_ExchangeRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid_client"}`, http.StatusUnauthorized)
	}))
	t.Cleanup(srv.Close)

	p := NewProvider(testConfig(srv.URL))

	tok, err := p.Token(context.Background())
	assert.Nil(t, tok)

	var authErr *AuthenticationError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, "client", authErr.Principal)
}

func TestProvider_TokenOnBehalfOf_SeparateCacheEntry(t *testing.T) {
	var exchanges atomic.Int64
	srv := fakeIdP(t, 3600, &exchanges)

	p := NewProvider(testConfig(srv.URL))
	ctx := context.Background()

	_, err := p.Token(ctx)
	require.NoError(t, err)
	_, err = p.TokenOnBehalfOf(ctx, "a@b.com", "hunter2")
	require.NoError(t, err)
	assert.EqualValues(t, 2, exchanges.Load())

	// Both entries are now warm.
	_, err = p.Token(ctx)
	require.NoError(t, err)
	_, err = p.TokenOnBehalfOf(ctx, "a@b.com", "hunter2")
	require.NoError(t, err)
	assert.EqualValues(t, 2, exchanges.Load())
}

func TestProvider_ExchangeCode_PlantsToken(t *testing.T) {
	var exchanges atomic.Int64
	srv := fakeIdP(t, 3600, &exchanges)

	cfg := testConfig(srv.URL)
	cfg.RedirectURL = "http://localhost:5000/auth"
	p := NewProvider(cfg)
	ctx := context.Background()

	tok, err := p.ExchangeCode(ctx, "some-code")
	require.NoError(t, err)
	require.NotEmpty(t, tok.AccessToken)

	// The interactive token now serves the client-credentials principal.
	got, err := p.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, tok.AccessToken, got.AccessToken)
	assert.EqualValues(t, 1, exchanges.Load())
}

func TestProvider_AuthCodeURL(t *testing.T) {
	cfg := testConfig("https://login.example.com")
	cfg.RedirectURL = "http://localhost:5000/auth"
	p := NewProvider(cfg)

	u := p.AuthCodeURL("state-123")
	assert.Contains(t, u, "https://login.example.com/tenant/oauth2/v2.0/authorize")
	assert.Contains(t, u, "state=state-123")
	assert.Contains(t, u, "client_id=client")
}

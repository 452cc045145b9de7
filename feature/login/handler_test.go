package login

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"azuread-connector/core/auth"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupTestApp(t *testing.T, idpStatus int) (*fiber.App, string, *[]url.Values) {
	t.Helper()

	var exchanges []url.Values
	idp := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		exchanges = append(exchanges, r.PostForm)
		if idpStatus != http.StatusOK {
			http.Error(w, `{"error":"invalid_grant"}`, idpStatus)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"access_token":"interactive-token","token_type":"Bearer","expires_in":3600}`)
	}))
	t.Cleanup(idp.Close)

	cfg := auth.Config{
		TenantID:     "tenant",
		ClientID:     "client",
		ClientSecret: "secret",
		RedirectURL:  "http://localhost:5000/auth",
		Scope:        "https://graph.microsoft.com/.default",
		AuthorityURL: idp.URL,
	}
	provider := auth.NewProvider(cfg)
	feature := NewFeature(provider, cfg, zap.NewNop())
	require.True(t, feature.IsEnabled())

	app := fiber.New()
	require.NoError(t, feature.Load(app))
	return app, idp.URL, &exchanges
}

// stateFromCookies digs the anti-forgery state out of the Set-Cookie header.
func stateFromCookies(t *testing.T, resp *http.Response) string {
	t.Helper()
	for _, c := range resp.Cookies() {
		if c.Name == stateCookie {
			return c.Value
		}
	}
	t.Fatal("state cookie not set")
	return ""
}

func TestHandleAuth_RedirectsToIdentityProvider(t *testing.T) {
	app, idpURL, _ := setupTestApp(t, http.StatusOK)

	resp, err := app.Test(httptest.NewRequest("GET", "/auth", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusFound, resp.StatusCode)

	location, err := url.Parse(resp.Header.Get(fiber.HeaderLocation))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(location.String(), idpURL+"/tenant/oauth2/v2.0/authorize"))

	q := location.Query()
	assert.Equal(t, "client", q.Get("client_id"))
	assert.Equal(t, "http://localhost:5000/auth", q.Get("redirect_uri"))
	assert.Equal(t, stateFromCookies(t, resp), q.Get("state"))
}

func TestHandleAuth_CallbackExchangesCode(t *testing.T) {
	app, _, exchanges := setupTestApp(t, http.StatusOK)

	req := httptest.NewRequest("GET", "/auth?code=the-code&state=xyz", nil)
	req.AddCookie(&http.Cookie{Name: stateCookie, Value: "xyz"})

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "token acquired", body["message"])

	require.Len(t, *exchanges, 1)
	assert.Equal(t, "authorization_code", (*exchanges)[0].Get("grant_type"))
	assert.Equal(t, "the-code", (*exchanges)[0].Get("code"))
}

func TestHandleAuth_RejectsMismatchedState(t *testing.T) {
	app, _, exchanges := setupTestApp(t, http.StatusOK)

	req := httptest.NewRequest("GET", "/auth?code=the-code&state=evil", nil)
	req.AddCookie(&http.Cookie{Name: stateCookie, Value: "xyz"})

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Empty(t, *exchanges)
}

func TestHandleAuth_RejectsMissingState(t *testing.T) {
	app, _, exchanges := setupTestApp(t, http.StatusOK)

	resp, err := app.Test(httptest.NewRequest("GET", "/auth?code=the-code", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Empty(t, *exchanges)
}

func TestHandleAuth_ExchangeFailure(t *testing.T) {
	app, _, _ := setupTestApp(t, http.StatusBadRequest)

	req := httptest.NewRequest("GET", "/auth?code=bad-code&state=xyz", nil)
	req.AddCookie(&http.Cookie{Name: stateCookie, Value: "xyz"})

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestFeature_DisabledWithoutRedirectURL(t *testing.T) {
	provider := auth.NewProvider(auth.Config{})
	feature := NewFeature(provider, auth.Config{}, zap.NewNop())
	assert.False(t, feature.IsEnabled())
}

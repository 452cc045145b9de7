package auth

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/oauth2/microsoft"
)

// refreshMargin is subtracted from a token's lifetime when deciding whether
// a cached token is still usable. A token within this margin of its expiry
// is refreshed before being handed out.
const refreshMargin = 5 * time.Second

// AuthenticationError reports a rejected token exchange with the identity
// provider (bad secret, bad tenant, network failure).
type AuthenticationError struct {
	// Principal identifies the credential that failed to authenticate.
	Principal string
	// Err is the underlying exchange error.
	Err error
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("authentication failed for principal %q: %v", e.Principal, e.Err)
}

func (e *AuthenticationError) Unwrap() error { return e.Err }

// Provider obtains and caches access tokens for the configured principals.
//
// Tokens are cached per principal key and transparently refreshed once they
// come within refreshMargin of their expiry. Cache entries are independent;
// a stale entry for one principal never blocks reads for another beyond the
// map access itself.
type Provider struct {
	cfg Config

	mu     sync.Mutex
	tokens map[string]*oauth2.Token

	// now is swappable for tests.
	now func() time.Time
}

// NewProvider creates a credential provider for the given configuration.
func NewProvider(cfg Config) *Provider {
	return &Provider{
		cfg:    cfg,
		tokens: make(map[string]*oauth2.Token),
		now:    time.Now,
	}
}

// Token returns an access token for the client-credentials principal,
// performing a token exchange only when no fresh cached token exists.
func (p *Provider) Token(ctx context.Context) (*oauth2.Token, error) {
	key := p.cfg.ClientID + p.cfg.TenantID
	return p.cached(key, p.cfg.ClientID, func() (*oauth2.Token, error) {
		cc := &clientcredentials.Config{
			ClientID:     p.cfg.ClientID,
			ClientSecret: p.cfg.ClientSecret,
			TokenURL:     p.endpoint().TokenURL,
			Scopes:       []string{p.cfg.Scope},
		}
		return cc.Token(ctx)
	})
}

// TokenOnBehalfOf returns an access token acquired with the resource-owner
// flow for the given end user. The cache key includes the username, so
// application tokens and user tokens never shadow each other.
func (p *Provider) TokenOnBehalfOf(ctx context.Context, username, password string) (*oauth2.Token, error) {
	key := p.cfg.ClientID + p.cfg.TenantID + username
	return p.cached(key, username, func() (*oauth2.Token, error) {
		return p.oauthConfig().PasswordCredentialsToken(ctx, username, password)
	})
}

// AuthCodeURL builds the Azure AD authorize URL for the interactive flow.
func (p *Provider) AuthCodeURL(state string) string {
	return p.oauthConfig().AuthCodeURL(state)
}

// ExchangeCode trades an authorization code for a token and plants it in the
// cache under the client-credentials principal, so subsequent requests run
// with the interactively acquired token until it expires.
func (p *Provider) ExchangeCode(ctx context.Context, code string) (*oauth2.Token, error) {
	tok, err := p.oauthConfig().Exchange(ctx, code)
	if err != nil {
		return nil, &AuthenticationError{Principal: p.cfg.ClientID, Err: err}
	}

	p.mu.Lock()
	p.tokens[p.cfg.ClientID+p.cfg.TenantID] = tok
	p.mu.Unlock()

	return tok, nil
}

// cached returns a fresh token for the key, exchanging a new one when the
// cache misses or the cached token is within refreshMargin of expiry.
// The exchange runs outside the lock; a concurrent duplicate exchange for
// the same key is harmless, the last writer wins.
func (p *Provider) cached(key, principal string, exchange func() (*oauth2.Token, error)) (*oauth2.Token, error) {
	p.mu.Lock()
	tok, ok := p.tokens[key]
	now := p.now()
	p.mu.Unlock()

	if ok && tok.AccessToken != "" && (tok.Expiry.IsZero() || now.Add(refreshMargin).Before(tok.Expiry)) {
		return tok, nil
	}

	tok, err := exchange()
	if err != nil {
		return nil, &AuthenticationError{Principal: principal, Err: err}
	}
	if tok.AccessToken == "" {
		return nil, &AuthenticationError{Principal: principal, Err: fmt.Errorf("access_token not found in response")}
	}

	p.mu.Lock()
	p.tokens[key] = tok
	p.mu.Unlock()

	return tok, nil
}

// oauthConfig builds the three-legged oauth2 config shared by the
// resource-owner and authorization-code flows.
func (p *Provider) oauthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     p.cfg.ClientID,
		ClientSecret: p.cfg.ClientSecret,
		RedirectURL:  p.cfg.RedirectURL,
		Endpoint:     p.endpoint(),
		Scopes:       []string{p.cfg.Scope},
	}
}

// endpoint resolves the Azure AD endpoints for the configured tenant,
// honoring the authority override when set.
func (p *Provider) endpoint() oauth2.Endpoint {
	if p.cfg.AuthorityURL != "" {
		base := strings.TrimRight(p.cfg.AuthorityURL, "/") + "/" + p.cfg.TenantID
		return oauth2.Endpoint{
			AuthURL:  base + "/oauth2/v2.0/authorize",
			TokenURL: base + "/oauth2/v2.0/token",
		}
	}
	return microsoft.AzureADEndpoint(p.cfg.TenantID)
}

package auth

// Config holds the credentials used against the Microsoft identity platform.
type Config struct {
	// TenantID is the Azure AD tenant identifier.
	TenantID string `mapstructure:"tenant_id" default:""`
	// ClientID is the application (client) id from the app registration.
	ClientID string `mapstructure:"client_id" default:""`
	// ClientSecret is the client secret from the app registration.
	ClientSecret string `mapstructure:"client_secret" default:""`
	// Username is the end-user login for the resource-owner flow.
	Username string `mapstructure:"username" default:""`
	// Password is the end-user password for the resource-owner flow.
	Password string `mapstructure:"password" default:""`
	// RedirectURL is the callback URL for the interactive login flow.
	// Leaving it empty disables the /auth endpoint.
	RedirectURL string `mapstructure:"redirect_url" default:""`
	// Scope is the OAuth2 scope requested during token exchanges.
	// The .default scope grants every permission assigned to the app
	// registration in Azure AD.
	Scope string `mapstructure:"scope" default:"https://graph.microsoft.com/.default"`
	// AuthorityURL overrides the login.microsoftonline.com authority.
	// Mainly useful for tests.
	AuthorityURL string `mapstructure:"authority_url" default:""`
}

package graph

// Config holds configuration for the Microsoft Graph client.
type Config struct {
	// BaseURL is the Graph API root all resource paths are appended to.
	BaseURL string `mapstructure:"base_url" default:"https://graph.microsoft.com/v1.0"`
	// Metadata is the odata.metadata level requested in the Accept header
	// (minimal or full).
	Metadata string `mapstructure:"metadata" default:"minimal"`
	// SupportsSince enables delta queries for generic dataset kinds.
	// The user and group datasets always use delta regardless.
	SupportsSince bool `mapstructure:"supports_since" default:"false"`
	// TimeoutSeconds is the per-connection timeout for upstream calls.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
}

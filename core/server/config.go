package server

// Config holds configuration for the HTTP server.
type Config struct {
	// Port is the port where the server will listen.
	Port string `mapstructure:"port" default:"5000"`
	// BodyLimitMB caps the size of inbound request bodies in megabytes.
	// Sync batches from the pipeline can get large, so this is higher
	// than Fiber's 4MB default.
	BodyLimitMB int `mapstructure:"body_limit_mb" default:"32"`
}

// BodyLimit returns the body limit in bytes, falling back to the default
// when the configured value is not positive.
func (c Config) BodyLimit() int {
	mb := c.BodyLimitMB
	if mb <= 0 {
		mb = 32
	}
	return mb * 1024 * 1024
}

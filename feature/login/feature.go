package login

import (
	"azuread-connector/core/auth"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Feature wires the interactive login endpoint into the application.
type Feature struct {
	handler *Handler
	enabled bool
}

// NewFeature creates the login feature.
func NewFeature(provider *auth.Provider, cfg auth.Config, logger *zap.Logger) *Feature {
	return &Feature{
		handler: NewHandler(provider, logger),
		enabled: cfg.RedirectURL != "",
	}
}

// Name identifies the feature.
func (f *Feature) Name() string { return "login" }

// IsEnabled reports whether the feature should load. The interactive flow
// needs a registered redirect URL; without one the endpoint stays off.
func (f *Feature) IsEnabled() bool { return f.enabled }

// Load registers the feature routes.
func (f *Feature) Load(app fiber.Router) error {
	f.handler.RegisterRoutes(app)
	return nil
}

package planner

import (
	"azuread-connector/core/auth"
	"azuread-connector/core/graph"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Feature wires the planner endpoints into the application.
type Feature struct {
	handler *Handler
}

// NewFeature creates the planner feature.
func NewFeature(provider *auth.Provider, graphCfg graph.Config, logger *zap.Logger) *Feature {
	service := NewService(provider, graphCfg, logger)
	return &Feature{handler: NewHandler(service, logger)}
}

// Name identifies the feature.
func (f *Feature) Name() string { return "planner" }

// IsEnabled reports whether the feature should load.
func (f *Feature) IsEnabled() bool { return true }

// Load registers the feature routes.
func (f *Feature) Load(app fiber.Router) error {
	f.handler.RegisterRoutes(app)
	return nil
}

package datasets

import (
	"azuread-connector/core/auth"
	"azuread-connector/core/graph"
	"azuread-connector/core/syncstate"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Feature wires the dataset endpoints into the application.
type Feature struct {
	handler *Handler
}

// NewFeature creates the datasets feature.
func NewFeature(provider *auth.Provider, graphCfg graph.Config, authCfg auth.Config, checkpoints *syncstate.Store, logger *zap.Logger) *Feature {
	service := NewService(provider, graphCfg, authCfg, checkpoints, logger)
	return &Feature{handler: NewHandler(service, logger)}
}

// Name identifies the feature.
func (f *Feature) Name() string { return "datasets" }

// IsEnabled reports whether the feature should load. Datasets are the
// core of the connector and always on.
func (f *Feature) IsEnabled() bool { return true }

// Load registers the feature routes.
func (f *Feature) Load(app fiber.Router) error {
	f.handler.RegisterRoutes(app)
	return nil
}

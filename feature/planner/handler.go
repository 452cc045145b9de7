package planner

import (
	"bufio"

	"azuread-connector/core/logger"
	"azuread-connector/core/stream"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

// Handler handles the planner HTTP endpoints.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes registers the planner routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	app.Get("/groups/plans/entities", h.HandlePlans)
}

// HandlePlans streams every planner plan reachable through the tenant's
// groups as a JSON array, details embedded.
func (h *Handler) HandlePlans(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)
	l.Info("streaming planner plans")

	plans, err := h.service.Plans(c.Context())
	if err != nil {
		l.Error("failed to start plan traversal", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		if err := stream.WriteArray(w, plans); err != nil {
			l.Error("plan stream aborted", zap.Error(err))
			return
		}
		l.Info("plan stream completed")
	}))

	return nil
}

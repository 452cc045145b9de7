package datasets

import (
	"bufio"
	"context"
	"encoding/json"

	"azuread-connector/core/graph"
	"azuread-connector/core/logger"
	"azuread-connector/core/stream"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

// Handler handles the dataset HTTP endpoints.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes registers the dataset routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/datasets")
	group.Get("/:kind/entities", h.HandleEntities)
	group.Post("/:kind", h.HandleSync)
}

// HandleEntities streams all records of a dataset kind as a JSON array.
// The since query parameter resumes an incremental sync from a delta
// cursor; auth=user switches to the resource-owner principal.
func (h *Handler) HandleEntities(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)

	kind := c.Params("kind")
	since := c.Query("since")
	asUser := c.Query("auth") == "user"

	l.Info("streaming entities",
		zap.String("dataset", kind),
		zap.Bool("incremental", since != ""),
		zap.Bool("as_user", asUser),
	)

	pager, err := h.service.Fetch(c.Context(), kind, since, asUser)
	if err != nil {
		l.Error("failed to start entity fetch", zap.String("dataset", kind), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	service := h.service
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		if err := stream.WriteArray(w, pager); err != nil {
			// Mid-stream failure or consumer disconnect; the
			// status line is long gone, all we can do is stop.
			l.Error("entity stream aborted", zap.String("dataset", kind), zap.Error(err))
			return
		}
		service.SaveCheckpoint(context.Background(), kind, pager.Delta())
		l.Info("entity stream completed", zap.String("dataset", kind))
	}))

	return nil
}

// HandleSync reconciles a JSON array of pipeline entities into the
// upstream directory. Returns an empty 200 body when every entity
// reconciled; the first unrecoverable error otherwise.
func (h *Handler) HandleSync(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)
	kind := c.Params("kind")

	var batch []graph.Record
	if err := json.Unmarshal(c.Body(), &batch); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "request body must be a JSON array of entities"})
	}

	l.Info("syncing entities", zap.String("dataset", kind), zap.Int("count", len(batch)))

	if _, err := h.service.Sync(c.Context(), kind, batch); err != nil {
		l.Error("entity sync failed", zap.String("dataset", kind), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.SendString("")
}

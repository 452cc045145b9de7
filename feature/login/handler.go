package login

import (
	"azuread-connector/core/auth"
	"azuread-connector/core/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// stateCookie carries the anti-forgery state between the redirect to the
// identity provider and the callback.
const stateCookie = "auth_state"

// Handler handles the interactive login endpoint.
type Handler struct {
	provider *auth.Provider
	logger   *zap.Logger
}

// NewHandler creates a new HTTP handler.
func NewHandler(provider *auth.Provider, logger *zap.Logger) *Handler {
	return &Handler{provider: provider, logger: logger}
}

// RegisterRoutes registers the login routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	app.Get("/auth", h.HandleAuth)
}

// HandleAuth drives the authorization-code flow. Without a code it sends the
// operator to the identity provider; the callback lands here again with the
// code and the echoed state, and a successful exchange arms the connector
// with the interactively acquired token.
func (h *Handler) HandleAuth(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)

	code := c.Query("code")
	if code == "" {
		state := uuid.NewString()
		c.Cookie(&fiber.Cookie{
			Name:     stateCookie,
			Value:    state,
			HTTPOnly: true,
			SameSite: "Lax",
			MaxAge:   600,
		})
		l.Info("redirecting to identity provider")
		return c.Redirect(h.provider.AuthCodeURL(state), fiber.StatusFound)
	}

	if c.Query("state") == "" || c.Query("state") != c.Cookies(stateCookie) {
		l.Warn("auth callback with mismatched state")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "state mismatch"})
	}
	c.ClearCookie(stateCookie)

	if _, err := h.provider.ExchangeCode(c.Context(), code); err != nil {
		l.Error("code exchange failed", zap.Error(err))
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": err.Error()})
	}

	l.Info("interactive token acquired")
	return c.JSON(fiber.Map{"status": "ok", "message": "token acquired"})
}

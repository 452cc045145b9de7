package rayid

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// LocalsKey is the fiber locals key under which the ray id is stored.
const LocalsKey = "ray_id"

// HeaderName is the response header carrying the ray id back to the caller.
const HeaderName = "X-Ray-Id"

// New returns a middleware that assigns a ray id to every request.
// An id supplied by the caller via the X-Ray-Id header is reused so that
// chained services keep a single correlation id.
func New() fiber.Handler {
	return func(c *fiber.Ctx) error {
		rid := c.Get(HeaderName)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Locals(LocalsKey, rid)
		c.Set(HeaderName, rid)
		return c.Next()
	}
}

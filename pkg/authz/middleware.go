package authz

import (
	"net/url"

	"github.com/gofiber/fiber/v2"
	"github.com/mutuo-app/mutuo/pkg/kernel"
)

// GuardMiddleware adapts guard decisions to Fiber handlers. Browser
// navigations receive the redirect the guard asked for; API clients receive
// a JSON body carrying the same target so the frontend router can apply it.
type GuardMiddleware struct {
	sessions *SessionStore
	contexts *ContextStore
	checker  AccessChecker
	audit    AuditService
	paths    GuardPaths
}

// NewGuardMiddleware creates the middleware set over the two stores.
func NewGuardMiddleware(sessions *SessionStore, contexts *ContextStore, checker AccessChecker, audit AuditService, paths GuardPaths) *GuardMiddleware {
	return &GuardMiddleware{
		sessions: sessions,
		contexts: contexts,
		checker:  checker,
		audit:    audit,
		paths:    paths,
	}
}

// Authenticate admits only authenticated requests.
func (gm *GuardMiddleware) Authenticate() fiber.Handler {
	guard := NewAuthGuard(gm.sessions, gm.paths)
	return func(c *fiber.Ctx) error {
		decision := guard.Check(c.OriginalURL())
		if !decision.Allowed {
			return gm.deny(c, fiber.StatusUnauthorized, ErrNotAuthenticated().Error(), decision)
		}

		if user := gm.sessions.User(); user != nil {
			c.Locals("principal", &kernel.Principal{
				UserID: user.UserID,
				Email:  user.Email,
			})
		}
		return c.Next()
	}
}

// GuestOnly admits only unauthenticated requests.
func (gm *GuardMiddleware) GuestOnly() fiber.Handler {
	guard := NewGuestGuard(gm.sessions, gm.paths)
	return func(c *fiber.Ctx) error {
		decision := guard.Check()
		if !decision.Allowed {
			return gm.deny(c, fiber.StatusForbidden, "already authenticated", decision)
		}
		return c.Next()
	}
}

// RequireResource protects routes bound to a specific entity instance; the
// identifier is taken from the named route parameter.
func (gm *GuardMiddleware) RequireResource(resource, param string) fiber.Handler {
	guard := NewResourceGuard(resource, gm.sessions, gm.checker, gm.audit, gm.paths)
	return func(c *fiber.Ctx) error {
		decision := guard.Check(c.UserContext(), c.OriginalURL(), c.Params(param))
		if decision.Allowed {
			return c.Next()
		}

		status := fiber.StatusForbidden
		switch decision.Redirect {
		case gm.paths.Login:
			status = fiber.StatusUnauthorized
		case gm.paths.NotFound:
			status = fiber.StatusNotFound
		}
		return gm.deny(c, status, ErrAccessDenied().Error(), decision)
	}
}

// RequireLevel admits only principals whose administrative reach covers the
// target level.
func (gm *GuardMiddleware) RequireLevel(target AdminLevel) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !gm.sessions.IsAuthenticated() {
			return gm.deny(c, fiber.StatusUnauthorized, ErrNotAuthenticated().Error(),
				DenyTo(gm.paths.Login, "not authenticated").WithQuery(ReturnURLParam, c.OriginalURL()))
		}
		if !gm.contexts.CanAccessLevel(target) {
			return gm.deny(c, fiber.StatusForbidden, ErrAccessDenied().Error(),
				DenyTo(gm.paths.Forbidden, "insufficient administrative level"))
		}
		return c.Next()
	}
}

// deny renders a denial: a real redirect for browsers, a JSON envelope with
// the redirect target for API clients.
func (gm *GuardMiddleware) deny(c *fiber.Ctx, status int, message string, decision Decision) error {
	target := decision.Redirect
	if len(decision.Query) > 0 {
		values := url.Values{}
		for k, v := range decision.Query {
			values.Set(k, v)
		}
		target += "?" + values.Encode()
	}

	if c.Accepts("text/html", "application/json") == "text/html" {
		return c.Redirect(target, fiber.StatusFound)
	}
	return c.Status(status).JSON(fiber.Map{
		"error":    message,
		"redirect": target,
	})
}

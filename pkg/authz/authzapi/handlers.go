package authzapi

import (
	"github.com/gofiber/fiber/v2"
	"github.com/mutuo-app/mutuo/pkg/authz"
	"github.com/mutuo-app/mutuo/pkg/authz/authzsrv"
	"github.com/mutuo-app/mutuo/pkg/errx"
)

// AuthHandlers exposes the authentication flows over HTTP.
type AuthHandlers struct {
	orchestrator *authzsrv.Orchestrator
	sessions     *authz.SessionStore
	contexts     *authz.ContextStore
}

// NewAuthHandlers creates the handler set.
func NewAuthHandlers(orchestrator *authzsrv.Orchestrator, sessions *authz.SessionStore, contexts *authz.ContextStore) *AuthHandlers {
	return &AuthHandlers{
		orchestrator: orchestrator,
		sessions:     sessions,
		contexts:     contexts,
	}
}

// RegisterRoutes mounts the auth endpoints. Guest-only endpoints sit behind
// the guest guard, identity endpoints behind the authentication guard.
func (h *AuthHandlers) RegisterRoutes(app *fiber.App, guards *authz.GuardMiddleware) {
	auth := app.Group("/auth")

	auth.Post("/login", guards.GuestOnly(), h.Login)
	auth.Post("/register", guards.GuestOnly(), h.Register)
	auth.Post("/refresh", h.Refresh)
	auth.Post("/logout", guards.Authenticate(), h.Logout)
	auth.Get("/me", guards.Authenticate(), h.Me)
	auth.Get("/context", guards.Authenticate(), h.Context)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login authenticates and installs the session.
func (h *AuthHandlers) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return errx.New("invalid login payload", errx.TypeValidation)
	}
	if req.Email == "" || req.Password == "" {
		return errx.New("email and password are required", errx.TypeValidation)
	}

	if err := h.orchestrator.Login(c.UserContext(), req.Email, req.Password); err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"user":       h.sessions.User(),
		"expires_at": h.sessions.ExpiresAt(),
		"view_mode":  h.contexts.ViewMode(),
	})
}

// Register creates an account and logs it in.
func (h *AuthHandlers) Register(c *fiber.Ctx) error {
	var req authz.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return errx.New("invalid registration payload", errx.TypeValidation)
	}
	if req.Email == "" || req.Password == "" {
		return errx.New("email and password are required", errx.TypeValidation)
	}

	if err := h.orchestrator.Register(c.UserContext(), req); err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"user":      h.sessions.User(),
		"view_mode": h.contexts.ViewMode(),
	})
}

// Refresh rotates the token pair.
func (h *AuthHandlers) Refresh(c *fiber.Ctx) error {
	if err := h.orchestrator.Refresh(c.UserContext()); err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"expires_at": h.sessions.ExpiresAt(),
	})
}

// Logout destroys the session and the authorization context together.
func (h *AuthHandlers) Logout(c *fiber.Ctx) error {
	if err := h.orchestrator.Logout(c.UserContext()); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"logged_out": true})
}

// Me returns the authenticated identity summary.
func (h *AuthHandlers) Me(c *fiber.Ctx) error {
	user := h.sessions.User()
	if user == nil {
		return authz.ErrNotAuthenticated()
	}
	return c.JSON(fiber.Map{
		"user":        user,
		"view_mode":   h.contexts.ViewMode(),
		"admin_level": h.contexts.AdminLevel(),
	})
}

// Context returns the current authorization snapshot for the frontend.
func (h *AuthHandlers) Context(c *fiber.Ctx) error {
	snap := h.contexts.Snapshot()
	return c.JSON(fiber.Map{
		"user":        snap.User,
		"permissions": snap.Permissions,
		"scope":       snap.Scope,
		"hierarchy":   snap.Hierarchy,
		"roles":       snap.Roles,
		"view_mode":   snap.ViewMode(),
		"admin_level": snap.AdminLevel(),
		"is_loaded":   snap.Loaded,
	})
}

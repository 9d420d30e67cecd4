package authz

import (
	"context"

	"github.com/google/uuid"
	"github.com/mutuo-app/mutuo/pkg/logx"
)

// ============================================================================
// Guard Decisions
// ============================================================================

// Decision is the outcome of a guard: proceed, or deny with a redirect
// target. Guards never return errors and never panic; callers branch on the
// outcome.
type Decision struct {
	Allowed  bool
	Redirect string
	Query    map[string]string
	// Reason is diagnostic only; it never changes the outcome.
	Reason string
}

// Proceed is the allow decision.
func Proceed() Decision {
	return Decision{Allowed: true}
}

// DenyTo builds a redirect decision.
func DenyTo(path, reason string) Decision {
	return Decision{Redirect: path, Reason: reason}
}

// WithQuery attaches query parameters to a denial.
func (d Decision) WithQuery(key, value string) Decision {
	if d.Query == nil {
		d.Query = make(map[string]string)
	}
	d.Query[key] = value
	return d
}

// GuardPaths are the redirect targets used by denials.
type GuardPaths struct {
	Login     string
	Landing   string
	Forbidden string
	NotFound  string
}

// DefaultGuardPaths returns the conventional redirect targets.
func DefaultGuardPaths() GuardPaths {
	return GuardPaths{
		Login:     "/login",
		Landing:   "/",
		Forbidden: "/forbidden",
		NotFound:  "/not-found",
	}
}

// ReturnURLParam carries the originally requested path on a login redirect.
const ReturnURLParam = "returnUrl"

// ============================================================================
// Authentication Guard
// ============================================================================

// AuthGuard admits only authenticated principals. Denials redirect to the
// login view with the attempted path attached as returnUrl.
type AuthGuard struct {
	sessions *SessionStore
	paths    GuardPaths
}

// NewAuthGuard creates an authentication guard.
func NewAuthGuard(sessions *SessionStore, paths GuardPaths) *AuthGuard {
	return &AuthGuard{sessions: sessions, paths: paths}
}

// Check decides whether the requested path may be entered.
func (g *AuthGuard) Check(requestedPath string) Decision {
	if g.sessions.IsAuthenticated() {
		return Proceed()
	}
	return DenyTo(g.paths.Login, "not authenticated").WithQuery(ReturnURLParam, requestedPath)
}

// ============================================================================
// Guest Guard
// ============================================================================

// GuestGuard is the inverse of AuthGuard: it admits only unauthenticated
// visitors and sends authenticated ones to the default landing view.
type GuestGuard struct {
	sessions *SessionStore
	paths    GuardPaths
}

// NewGuestGuard creates a guest-only guard.
func NewGuestGuard(sessions *SessionStore, paths GuardPaths) *GuestGuard {
	return &GuestGuard{sessions: sessions, paths: paths}
}

// Check decides whether the guest-only view may be entered.
func (g *GuestGuard) Check() Decision {
	if !g.sessions.IsAuthenticated() {
		return Proceed()
	}
	return DenyTo(g.paths.Landing, "already authenticated")
}

// ============================================================================
// Resource Access Guard
// ============================================================================

// ResourceGuard protects views bound to a specific entity instance. It is
// the one suspending decision point of the core: after authentication and
// identifier checks it awaits a single external access check. The context
// carries cancellation, so a superseded navigation can abandon an in-flight
// check. A failed check is indistinguishable from a denial at the decision
// boundary (fail-closed); the distinction survives only in the audit log.
type ResourceGuard struct {
	sessions *SessionStore
	checker  AccessChecker
	audit    AuditService
	paths    GuardPaths
	resource string
}

// NewResourceGuard creates a guard for one resource kind.
func NewResourceGuard(resource string, sessions *SessionStore, checker AccessChecker, audit AuditService, paths GuardPaths) *ResourceGuard {
	return &ResourceGuard{
		sessions: sessions,
		checker:  checker,
		audit:    audit,
		paths:    paths,
		resource: resource,
	}
}

// Check decides whether the view for the given resource instance may be
// entered. A missing identifier is a malformed request (not-found), not a
// permission failure.
func (g *ResourceGuard) Check(ctx context.Context, requestedPath, resourceID string) Decision {
	if !g.sessions.IsAuthenticated() {
		return DenyTo(g.paths.Login, "not authenticated").WithQuery(ReturnURLParam, requestedPath)
	}
	if resourceID == "" {
		return DenyTo(g.paths.NotFound, "missing resource identifier")
	}

	principal := g.sessions.PrincipalID()
	checkID := uuid.NewString()

	result, err := g.checker.CheckAccess(ctx, principal, g.resource, resourceID)
	if err != nil {
		logx.WithFields(logx.Fields{
			"check_id":    checkID,
			"resource":    g.resource,
			"resource_id": resourceID,
		}).WithError(err).Warn("access check failed, denying")
		if g.audit != nil {
			g.audit.LogAccessDecision(ctx, principal, g.resource, resourceID, false, true, err.Error())
		}
		return DenyTo(g.paths.Forbidden, "access check failed")
	}

	if g.audit != nil {
		g.audit.LogAccessDecision(ctx, principal, g.resource, resourceID, result.Allowed, false, result.Reason)
	}
	if !result.Allowed {
		return DenyTo(g.paths.Forbidden, result.Reason)
	}
	return Proceed()
}

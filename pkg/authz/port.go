package authz

import (
	"context"
	"time"

	"github.com/mutuo-app/mutuo/pkg/kernel"
)

// ============================================================================
// Persistence
// ============================================================================

// SnapshotStore persists full-state JSON snapshots under namespaced keys.
// Load must treat a corrupt payload exactly like an absent one: the stores
// recover to their empty state, never surface a decode error.
type SnapshotStore interface {
	Save(ctx context.Context, key string, value interface{}) error
	Load(ctx context.Context, key string, dest interface{}) (bool, error)
	Delete(ctx context.Context, key string) error
}

// ============================================================================
// Access Checking
// ============================================================================

// AccessResult is the outcome of an external ownership check.
type AccessResult struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

// AccessChecker verifies that a principal may access a specific resource
// instance. It is the one asynchronous collaborator of the guard layer; a
// transport failure is treated identically to a denial (fail-closed).
type AccessChecker interface {
	CheckAccess(ctx context.Context, principal kernel.UserID, resource, resourceID string) (AccessResult, error)
}

// ============================================================================
// Identity Backend
// ============================================================================

// TokenPair is a rotated credential returned by the identity backend.
// ExpiresAt is nil for legacy tokens issued without an expiry.
type TokenPair struct {
	AccessToken  string     `json:"access_token"`
	RefreshToken string     `json:"refresh_token,omitempty"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
}

// LoginResult is the payload of a successful login or registration.
type LoginResult struct {
	User         *User      `json:"user"`
	AccessToken  string     `json:"access_token"`
	RefreshToken string     `json:"refresh_token,omitempty"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
}

// RegisterRequest is the account-creation payload.
type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

// IdentityClient is the transport boundary to the identity/authorization
// backend. The core only depends on the shapes it receives, never on how
// they travel.
type IdentityClient interface {
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	Register(ctx context.Context, req RegisterRequest) (*LoginResult, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
	FetchContext(ctx context.Context, accessToken string) (*Context, error)
}

// ============================================================================
// Audit
// ============================================================================

// AuditService records authentication and authorization events for
// diagnostics. The denial-vs-transport-failure distinction of access checks
// lives only here; it never relaxes a decision.
type AuditService interface {
	LogLogin(ctx context.Context, userID kernel.UserID, success bool)
	LogLogout(ctx context.Context, userID kernel.UserID)
	LogTokenRefresh(ctx context.Context, userID kernel.UserID, success bool)
	LogAccessDecision(ctx context.Context, principal kernel.UserID, resource, resourceID string, allowed bool, checkFailed bool, reason string)
}

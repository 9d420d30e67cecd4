// Package authz is the authorization core of the platform.
//
// It answers two questions for every protected action: is this principal
// authenticated with a non-expired credential, and does this principal's
// authorization scope permit this operation on this entity. State lives in
// two explicit containers (SessionStore and ContextStore); every derived
// value (view mode, admin level, entity reach) is recomputed on demand from
// an immutable snapshot. Guards turn those answers into redirect decisions.
//
// The package never validates token signatures: it trusts the opaque
// token-with-expiry issued by the identity backend.
package authz

import (
	"net/http"

	"github.com/mutuo-app/mutuo/pkg/errx"
)

// ============================================================================
// Error Registry
// ============================================================================

var ErrRegistry = errx.NewRegistry("AUTHZ")

var (
	CodeNotAuthenticated   = ErrRegistry.Register("NOT_AUTHENTICATED", errx.TypeAuthentication, http.StatusUnauthorized, "Not authenticated")
	CodeAccessDenied       = ErrRegistry.Register("ACCESS_DENIED", errx.TypeAuthorization, http.StatusForbidden, "Access denied")
	CodeLoginFailed        = ErrRegistry.Register("LOGIN_FAILED", errx.TypeAuthentication, http.StatusUnauthorized, "Login failed")
	CodeRefreshFailed      = ErrRegistry.Register("REFRESH_FAILED", errx.TypeAuthentication, http.StatusUnauthorized, "Token refresh failed")
	CodeContextFetchFailed = ErrRegistry.Register("CONTEXT_FETCH_FAILED", errx.TypeExternal, http.StatusBadGateway, "Authorization context fetch failed")
	CodeAccessCheckFailed  = ErrRegistry.Register("ACCESS_CHECK_FAILED", errx.TypeExternal, http.StatusBadGateway, "Access check failed")
	CodePersistenceFailed  = ErrRegistry.Register("PERSISTENCE_FAILED", errx.TypeInternal, http.StatusInternalServerError, "State persistence failed")
)

// Helper functions
func ErrNotAuthenticated() *errx.Error {
	return ErrRegistry.New(CodeNotAuthenticated)
}

func ErrAccessDenied() *errx.Error {
	return ErrRegistry.New(CodeAccessDenied)
}

func ErrLoginFailed() *errx.Error {
	return ErrRegistry.New(CodeLoginFailed)
}

func ErrRefreshFailed() *errx.Error {
	return ErrRegistry.New(CodeRefreshFailed)
}

func ErrContextFetchFailed() *errx.Error {
	return ErrRegistry.New(CodeContextFetchFailed)
}

func ErrAccessCheckFailed() *errx.Error {
	return ErrRegistry.New(CodeAccessCheckFailed)
}

func ErrPersistenceFailed() *errx.Error {
	return ErrRegistry.New(CodePersistenceFailed)
}

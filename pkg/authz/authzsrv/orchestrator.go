package authzsrv

import (
	"context"

	"github.com/mutuo-app/mutuo/pkg/authz"
	"github.com/mutuo-app/mutuo/pkg/logx"
)

// Orchestrator performs the login/refresh/context-fetch flows and writes
// their results into the two stores. It is the only writer of authorization
// state; guards and handlers read.
//
// Invariant: the credential and the authorization context are created
// together and destroyed together. There is no state where the session says
// "authenticated" while the context is empty.
type Orchestrator struct {
	sessions *authz.SessionStore
	contexts *authz.ContextStore
	identity authz.IdentityClient
	audit    authz.AuditService
}

// NewOrchestrator wires the orchestrator over its collaborators.
func NewOrchestrator(sessions *authz.SessionStore, contexts *authz.ContextStore, identity authz.IdentityClient, audit authz.AuditService) *Orchestrator {
	return &Orchestrator{
		sessions: sessions,
		contexts: contexts,
		identity: identity,
		audit:    audit,
	}
}

// Login authenticates against the identity backend, then installs the
// credential and the fetched authorization context as one logical step. If
// the context fetch fails the credential is rolled back: a half-logged-in
// state never survives.
func (o *Orchestrator) Login(ctx context.Context, email, password string) error {
	result, err := o.identity.Login(ctx, email, password)
	if err != nil {
		o.audit.LogLogin(ctx, "", false)
		return authz.ErrRegistry.NewWithCause(authz.CodeLoginFailed, err)
	}
	return o.installSession(ctx, result)
}

// Register creates an account and logs it in, same semantics as Login.
func (o *Orchestrator) Register(ctx context.Context, req authz.RegisterRequest) error {
	result, err := o.identity.Register(ctx, req)
	if err != nil {
		o.audit.LogLogin(ctx, "", false)
		return authz.ErrRegistry.NewWithCause(authz.CodeLoginFailed, err)
	}
	return o.installSession(ctx, result)
}

func (o *Orchestrator) installSession(ctx context.Context, result *authz.LoginResult) error {
	// A backend returning no error and no payload is misbehaving; treat it
	// as a failed login rather than dereferencing it.
	if result == nil {
		return authz.ErrLoginFailed().WithDetail("reason", "empty backend response")
	}

	expiresAt := result.ExpiresAt
	if expiresAt == nil {
		// Some backends omit the explicit expiry; recover it from the
		// token's own exp claim when it has one.
		expiresAt = authz.ExtractExpiry(result.AccessToken)
	}

	if err := o.sessions.SetCredential(ctx, result.User, result.AccessToken, result.RefreshToken, expiresAt); err != nil {
		return err
	}

	if err := o.FetchContext(ctx); err != nil {
		// Roll back to keep credential and context in lockstep.
		if clearErr := o.sessions.Clear(ctx); clearErr != nil {
			logx.WithError(clearErr).Error("failed to clear session after context fetch failure")
		}
		return err
	}

	o.audit.LogLogin(ctx, o.sessions.PrincipalID(), true)
	return nil
}

// FetchContext refreshes the authorization context from the backend and
// replaces the store state wholesale.
func (o *Orchestrator) FetchContext(ctx context.Context) error {
	payload, err := o.identity.FetchContext(ctx, o.sessions.AccessToken())
	if err != nil {
		return authz.ErrRegistry.NewWithCause(authz.CodeContextFetchFailed, err)
	}
	return o.contexts.SetContext(ctx, payload)
}

// Refresh rotates the token pair without touching the authorization
// context or re-fetching the user.
func (o *Orchestrator) Refresh(ctx context.Context) error {
	refreshToken := o.sessions.RefreshToken()
	if refreshToken == "" {
		return authz.ErrRefreshFailed().WithDetail("reason", "no refresh token")
	}

	pair, err := o.identity.Refresh(ctx, refreshToken)
	if err != nil {
		o.audit.LogTokenRefresh(ctx, o.sessions.PrincipalID(), false)
		return authz.ErrRegistry.NewWithCause(authz.CodeRefreshFailed, err)
	}

	if err := o.sessions.SetAccessToken(ctx, pair.AccessToken); err != nil {
		return err
	}
	if pair.RefreshToken != "" {
		if err := o.sessions.SetRefreshToken(ctx, pair.RefreshToken); err != nil {
			return err
		}
	}
	expiresAt := pair.ExpiresAt
	if expiresAt == nil {
		expiresAt = authz.ExtractExpiry(pair.AccessToken)
	}
	if err := o.sessions.SetExpiry(ctx, expiresAt); err != nil {
		return err
	}

	o.audit.LogTokenRefresh(ctx, o.sessions.PrincipalID(), true)
	return nil
}

// Logout destroys the credential and the authorization context together.
func (o *Orchestrator) Logout(ctx context.Context) error {
	userID := o.sessions.PrincipalID()

	if err := o.sessions.Clear(ctx); err != nil {
		return err
	}
	if err := o.contexts.ClearContext(ctx); err != nil {
		return err
	}

	o.audit.LogLogout(ctx, userID)
	return nil
}

// Bootstrap restores persisted state on startup and re-validates it. An
// expired or incomplete credential clears both stores: the process starts
// either fully authenticated or fully logged out.
func (o *Orchestrator) Bootstrap(ctx context.Context) error {
	o.sessions.Load(ctx)
	o.contexts.Load(ctx)

	if o.sessions.AccessToken() == "" {
		return nil
	}

	if !o.sessions.IsAuthenticated() {
		logx.Info("persisted credential invalid or expired, clearing session")
		return o.clearBoth(ctx)
	}

	if !o.contexts.IsLoaded() {
		if err := o.FetchContext(ctx); err != nil {
			logx.WithError(err).Warn("startup context fetch failed, clearing session")
			return o.clearBoth(ctx)
		}
	}
	return nil
}

// RecoverUnauthorized handles a backend 401: whatever the stores believe,
// the credential is dead. Both are cleared together.
func (o *Orchestrator) RecoverUnauthorized(ctx context.Context) error {
	logx.Warn("backend rejected credential, clearing session")
	return o.clearBoth(ctx)
}

func (o *Orchestrator) clearBoth(ctx context.Context) error {
	if err := o.sessions.Clear(ctx); err != nil {
		return err
	}
	return o.contexts.ClearContext(ctx)
}

package authz_test

import (
	"context"
	"errors"
	"testing"

	"github.com/mutuo-app/mutuo/pkg/authz"
	"github.com/mutuo-app/mutuo/pkg/authz/authzinfra"
	"github.com/mutuo-app/mutuo/pkg/kernel"
)

// stubChecker returns a canned access result or error.
type stubChecker struct {
	result authz.AccessResult
	err    error

	calls int
	// last call arguments, for assertions
	principal  kernel.UserID
	resource   string
	resourceID string
}

func (c *stubChecker) CheckAccess(ctx context.Context, principal kernel.UserID, resource, resourceID string) (authz.AccessResult, error) {
	c.calls++
	c.principal = principal
	c.resource = resource
	c.resourceID = resourceID
	return c.result, c.err
}

// recordingAudit captures access decisions for assertions.
type recordingAudit struct {
	decisions []auditDecision
}

type auditDecision struct {
	allowed     bool
	checkFailed bool
	reason      string
}

func (a *recordingAudit) LogLogin(ctx context.Context, userID kernel.UserID, success bool) {}
func (a *recordingAudit) LogLogout(ctx context.Context, userID kernel.UserID)              {}
func (a *recordingAudit) LogTokenRefresh(ctx context.Context, userID kernel.UserID, success bool) {
}
func (a *recordingAudit) LogAccessDecision(ctx context.Context, principal kernel.UserID, resource, resourceID string, allowed bool, checkFailed bool, reason string) {
	a.decisions = append(a.decisions, auditDecision{allowed: allowed, checkFailed: checkFailed, reason: reason})
}

func authenticatedSession(t *testing.T) *authz.SessionStore {
	t.Helper()
	store := authz.NewSessionStore(authzinfra.NewInMemorySnapshotStore(), "test")
	if err := store.SetCredential(context.Background(), testUser("u1"), "tok", "ref", nil); err != nil {
		t.Fatalf("SetCredential: %v", err)
	}
	return store
}

func emptySession() *authz.SessionStore {
	return authz.NewSessionStore(authzinfra.NewInMemorySnapshotStore(), "test")
}

func TestAuthGuard_RedirectsToLoginWithReturnURL(t *testing.T) {
	guard := authz.NewAuthGuard(emptySession(), authz.DefaultGuardPaths())

	d := guard.Check("/members/42")
	if d.Allowed {
		t.Fatal("unauthenticated request must be denied")
	}
	if d.Redirect != "/login" {
		t.Fatalf("Redirect = %q, want /login", d.Redirect)
	}
	if got := d.Query[authz.ReturnURLParam]; got != "/members/42" {
		t.Fatalf("returnUrl = %q, want /members/42", got)
	}
}

func TestAuthGuard_AdmitsAuthenticated(t *testing.T) {
	guard := authz.NewAuthGuard(authenticatedSession(t), authz.DefaultGuardPaths())

	if d := guard.Check("/members/42"); !d.Allowed {
		t.Fatalf("authenticated request denied: %+v", d)
	}
}

func TestGuestGuard_InvertsAuthentication(t *testing.T) {
	paths := authz.DefaultGuardPaths()

	if d := authz.NewGuestGuard(emptySession(), paths).Check(); !d.Allowed {
		t.Fatalf("guest should pass: %+v", d)
	}

	d := authz.NewGuestGuard(authenticatedSession(t), paths).Check()
	if d.Allowed {
		t.Fatal("authenticated visitor must be bounced off guest-only views")
	}
	if d.Redirect != "/" {
		t.Fatalf("Redirect = %q, want /", d.Redirect)
	}
}

func TestResourceGuard_UnauthenticatedGoesToLogin(t *testing.T) {
	checker := &stubChecker{result: authz.AccessResult{Allowed: true}}
	guard := authz.NewResourceGuard("member", emptySession(), checker, nil, authz.DefaultGuardPaths())

	d := guard.Check(context.Background(), "/members/42", "42")
	if d.Allowed || d.Redirect != "/login" {
		t.Fatalf("decision = %+v, want login redirect", d)
	}
	if checker.calls != 0 {
		t.Fatal("checker must not run before authentication")
	}
}

func TestResourceGuard_MissingIdentifierIsNotFound(t *testing.T) {
	checker := &stubChecker{result: authz.AccessResult{Allowed: true}}
	guard := authz.NewResourceGuard("member", authenticatedSession(t), checker, nil, authz.DefaultGuardPaths())

	d := guard.Check(context.Background(), "/members/", "")
	if d.Allowed || d.Redirect != "/not-found" {
		t.Fatalf("decision = %+v, want not-found redirect", d)
	}
	if checker.calls != 0 {
		t.Fatal("checker must not run for a malformed request")
	}
}

func TestResourceGuard_AllowedProceeds(t *testing.T) {
	checker := &stubChecker{result: authz.AccessResult{Allowed: true}}
	audit := &recordingAudit{}
	guard := authz.NewResourceGuard("member", authenticatedSession(t), checker, audit, authz.DefaultGuardPaths())

	d := guard.Check(context.Background(), "/members/42", "42")
	if !d.Allowed {
		t.Fatalf("decision = %+v, want allow", d)
	}
	if checker.principal != "u1" || checker.resource != "member" || checker.resourceID != "42" {
		t.Fatalf("checker called with %q/%q/%q", checker.principal, checker.resource, checker.resourceID)
	}
	if len(audit.decisions) != 1 || !audit.decisions[0].allowed || audit.decisions[0].checkFailed {
		t.Fatalf("audit = %+v", audit.decisions)
	}
}

func TestResourceGuard_DeniedGoesToForbidden(t *testing.T) {
	checker := &stubChecker{result: authz.AccessResult{Allowed: false, Reason: "not yours"}}
	audit := &recordingAudit{}
	guard := authz.NewResourceGuard("member", authenticatedSession(t), checker, audit, authz.DefaultGuardPaths())

	d := guard.Check(context.Background(), "/members/42", "42")
	if d.Allowed || d.Redirect != "/forbidden" {
		t.Fatalf("decision = %+v, want forbidden redirect", d)
	}
	if d.Reason != "not yours" {
		t.Fatalf("Reason = %q", d.Reason)
	}
	if len(audit.decisions) != 1 || audit.decisions[0].allowed || audit.decisions[0].checkFailed {
		t.Fatalf("audit = %+v", audit.decisions)
	}
}

func TestResourceGuard_CheckerErrorFailsClosed(t *testing.T) {
	checker := &stubChecker{err: errors.New("backend down")}
	audit := &recordingAudit{}
	guard := authz.NewResourceGuard("member", authenticatedSession(t), checker, audit, authz.DefaultGuardPaths())

	d := guard.Check(context.Background(), "/members/42", "42")
	if d.Allowed {
		t.Fatal("a failed check must deny")
	}
	if d.Redirect != "/forbidden" {
		t.Fatalf("Redirect = %q, want /forbidden", d.Redirect)
	}
	// The failure-vs-denial distinction survives only in the audit trail.
	if len(audit.decisions) != 1 || !audit.decisions[0].checkFailed || audit.decisions[0].allowed {
		t.Fatalf("audit = %+v", audit.decisions)
	}
}

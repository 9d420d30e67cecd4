package authzcontainer

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/mutuo-app/mutuo/pkg/authz"
	"github.com/mutuo-app/mutuo/pkg/authz/authzapi"
	"github.com/mutuo-app/mutuo/pkg/authz/authzinfra"
	"github.com/mutuo-app/mutuo/pkg/authz/authzsrv"
	"github.com/mutuo-app/mutuo/pkg/config"
	"github.com/mutuo-app/mutuo/pkg/logx"
	"github.com/redis/go-redis/v9"
)

// ---------------------------------------------------------------------------
// Deps: explicit external dependencies this bounded context requires.
// No hidden globals, no ambient state: everything comes through here.
// ---------------------------------------------------------------------------

type Deps struct {
	DB    *sqlx.DB
	Redis *redis.Client
	Cfg   *config.Config
}

// ---------------------------------------------------------------------------
// Container: the public surface of the authorization module. One session
// store and one context store per running process, owned here.
// ---------------------------------------------------------------------------

type Container struct {
	SessionStore *authz.SessionStore
	ContextStore *authz.ContextStore

	Orchestrator  *authzsrv.Orchestrator
	AccessChecker authz.AccessChecker

	// Handlers and middleware, needed by cmd/ to register routes
	AuthHandlers    *authzapi.AuthHandlers
	GuardMiddleware *authz.GuardMiddleware
}

// New constructs the authorization dependency graph.
// Order matters: infra → stores → services → handlers → middleware.
func New(deps Deps) *Container {
	logx.Info("Initializing authorization container...")

	c := &Container{}

	// ── Snapshot stores ──────────────────────────────────────────────────
	// The session record survives restarts (Redis); the authorization
	// context is process-scoped and refetched per session (memory).

	sessionSnapshots := authzinfra.NewRedisSnapshotStore(deps.Redis, deps.Cfg.Session.TTL)
	contextSnapshots := authzinfra.NewInMemorySnapshotStore()

	c.SessionStore = authz.NewSessionStore(sessionSnapshots, deps.Cfg.Session.Namespace)
	c.ContextStore = authz.NewContextStore(contextSnapshots, deps.Cfg.Session.Namespace)

	// ── Collaborators ────────────────────────────────────────────────────

	identity := authzinfra.NewHTTPIdentityClient(deps.Cfg.Identity.BaseURL, deps.Cfg.Identity.Timeout)
	audit := authzinfra.NewLogxAuditService()
	c.AccessChecker = authzinfra.NewPostgresAccessChecker(deps.DB)

	// ── Services ─────────────────────────────────────────────────────────

	c.Orchestrator = authzsrv.NewOrchestrator(c.SessionStore, c.ContextStore, identity, audit)

	// ── Handlers and middleware ──────────────────────────────────────────

	c.GuardMiddleware = authz.NewGuardMiddleware(
		c.SessionStore,
		c.ContextStore,
		c.AccessChecker,
		audit,
		authz.DefaultGuardPaths(),
	)
	c.AuthHandlers = authzapi.NewAuthHandlers(c.Orchestrator, c.SessionStore, c.ContextStore)

	logx.Info("Authorization container initialized")
	return c
}

// Bootstrap restores persisted state and re-validates the credential.
func (c *Container) Bootstrap(ctx context.Context) error {
	return c.Orchestrator.Bootstrap(ctx)
}

package authzinfra

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/mutuo-app/mutuo/pkg/authz"
	"github.com/mutuo-app/mutuo/pkg/errx"
	"github.com/mutuo-app/mutuo/pkg/kernel"
)

// PostgresAccessChecker answers resource ownership checks against the
// membership schema. It is the authoritative side of the guard's access
// check: the stores' scope math is advisory, these rows are not.
type PostgresAccessChecker struct {
	db *sqlx.DB
}

// NewPostgresAccessChecker creates a checker over the given database.
func NewPostgresAccessChecker(db *sqlx.DB) authz.AccessChecker {
	return &PostgresAccessChecker{db: db}
}

// CheckAccess verifies that the principal may access the resource instance.
// Unknown resource kinds are a denial, not an error (closed policy).
func (c *PostgresAccessChecker) CheckAccess(ctx context.Context, principal kernel.UserID, resource, resourceID string) (authz.AccessResult, error) {
	if principal.IsEmpty() || resourceID == "" {
		return authz.AccessResult{Allowed: false, Reason: "missing principal or resource id"}, nil
	}

	query, ok := accessQueries[resource]
	if !ok {
		return authz.AccessResult{Allowed: false, Reason: "unknown resource kind"}, nil
	}

	var allowed bool
	err := c.db.GetContext(ctx, &allowed, query, resourceID, principal.String())
	if errors.Is(err, sql.ErrNoRows) {
		return authz.AccessResult{Allowed: false, Reason: "not found"}, nil
	}
	if err != nil {
		return authz.AccessResult{}, errx.Wrap(err, "access check query failed", errx.TypeExternal).
			WithDetail("resource", resource).
			WithDetail("resource_id", resourceID)
	}

	if !allowed {
		return authz.AccessResult{Allowed: false, Reason: "not owner"}, nil
	}
	return authz.AccessResult{Allowed: true}, nil
}

// accessQueries resolve to true when the principal owns or administers the
// resource instance. Admin assignment rows cover the administrative side;
// the member and agent rows cover self-access.
var accessQueries = map[string]string{
	"member": `
		SELECT EXISTS (
			SELECT 1 FROM members m
			WHERE m.id = $1
			  AND (m.user_id = $2
			       OR EXISTS (
			           SELECT 1 FROM agents a
			           WHERE a.id = m.agent_id AND a.user_id = $2))
		)`,
	"agent": `
		SELECT EXISTS (
			SELECT 1 FROM agents a
			WHERE a.id = $1
			  AND (a.user_id = $2
			       OR EXISTS (
			           SELECT 1 FROM unit_admins ua
			           WHERE ua.unit_id = a.unit_id AND ua.user_id = $2))
		)`,
	"unit": `
		SELECT EXISTS (
			SELECT 1 FROM unit_admins ua
			WHERE ua.unit_id = $1 AND ua.user_id = $2
		)`,
	"area": `
		SELECT EXISTS (
			SELECT 1 FROM area_admins aa
			WHERE aa.area_id = $1 AND aa.user_id = $2
		)`,
	"forum": `
		SELECT EXISTS (
			SELECT 1 FROM forum_admins fa
			WHERE fa.forum_id = $1 AND fa.user_id = $2
		)`,
}

package authz

import (
	"time"

	"github.com/mutuo-app/mutuo/pkg/kernel"
)

// User is the denormalized account identity owned by the session. It is
// independent of authorization data: clearing the authorization context
// leaves it untouched and vice versa.
type User struct {
	UserID         kernel.UserID          `json:"user_id"`
	ExternalAuthID string                 `json:"external_auth_id"`
	Email          string                 `json:"email"`
	FirstName      string                 `json:"first_name,omitempty"`
	LastName       string                 `json:"last_name,omitempty"`
	IsActive       bool                   `json:"is_active"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt      time.Time              `json:"created_at"`
	LastSyncedAt   *time.Time             `json:"last_synced_at,omitempty"`
}

// clone returns a copy whose Metadata map is independent of the receiver's,
// so callers mutating the copy never reach store-internal state.
func (u User) clone() User {
	if u.Metadata != nil {
		m := make(map[string]interface{}, len(u.Metadata))
		for k, v := range u.Metadata {
			m[k] = v
		}
		u.Metadata = m
	}
	return u
}

// UserPatch is a partial user update. Nil fields are left untouched.
type UserPatch struct {
	Email        *string
	FirstName    *string
	LastName     *string
	IsActive     *bool
	Metadata     map[string]interface{}
	LastSyncedAt *time.Time
}

// apply merges the patch into a copy of the user.
func (p UserPatch) apply(u User) User {
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.FirstName != nil {
		u.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		u.LastName = *p.LastName
	}
	if p.IsActive != nil {
		u.IsActive = *p.IsActive
	}
	if p.Metadata != nil {
		u.Metadata = p.Metadata
	}
	if p.LastSyncedAt != nil {
		u.LastSyncedAt = p.LastSyncedAt
	}
	return u
}

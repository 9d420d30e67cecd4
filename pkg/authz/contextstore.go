package authz

import (
	"context"
	"sync"

	"github.com/mutuo-app/mutuo/pkg/errx"
	"github.com/mutuo-app/mutuo/pkg/logx"
)

// contextRecord is the persisted authorization state shape.
type contextRecord struct {
	User        *User            `json:"user"`
	Permissions []string         `json:"permissions"`
	Scope       Scope            `json:"scope"`
	Hierarchy   Position         `json:"hierarchy"`
	Roles       []RoleAssignment `json:"roles"`
	IsLoaded    bool             `json:"is_loaded"`
}

// ContextStore owns the richer authorization payload: permission set, scope,
// hierarchy position and role assignments. State is only ever replaced
// wholesale from a fetched Context, so readers never observe a torn mix of
// two payloads. All queries are synchronous pure functions over a snapshot
// taken at call time.
type ContextStore struct {
	mu    sync.RWMutex
	store SnapshotStore
	key   string

	record contextRecord
}

// NewContextStore creates an authorization context store persisting under
// the given namespace.
func NewContextStore(store SnapshotStore, namespace string) *ContextStore {
	return &ContextStore{
		store: store,
		key:   namespace + ":context",
		record: contextRecord{
			Scope: defaultScope(),
		},
	}
}

// Load restores previously persisted authorization state. Absence and
// corruption both yield the empty, unloaded state.
func (s *ContextStore) Load(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var rec contextRecord
	found, err := s.store.Load(ctx, s.key, &rec)
	if err != nil || !found {
		if err != nil {
			logx.WithError(err).Warn("authorization context load failed, starting empty")
		}
		s.record = contextRecord{Scope: defaultScope()}
		return
	}
	s.record = rec
}

// SetContext replaces user, permissions, scope, hierarchy and roles
// wholesale, marks the store loaded and persists the snapshot.
func (s *ContextStore) SetContext(ctx context.Context, payload *Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.record = contextRecord{
		User:        payload.User,
		Permissions: payload.Permissions,
		Scope:       payload.Scope,
		Hierarchy:   payload.Hierarchy,
		Roles:       payload.Roles,
		IsLoaded:    true,
	}
	if err := s.store.Save(ctx, s.key, s.record); err != nil {
		return ErrRegistry.NewWithCause(CodePersistenceFailed, err).WithDetail("key", s.key)
	}
	return nil
}

// ClearContext resets to the member default scope, empty hierarchy and no
// roles, marks the store unloaded and removes the persisted copy.
func (s *ContextStore) ClearContext(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.record = contextRecord{Scope: defaultScope()}
	if err := s.store.Delete(ctx, s.key); err != nil {
		return errx.Wrap(err, "failed to remove persisted authorization context", errx.TypeInternal)
	}
	return nil
}

// IsLoaded reports whether a context payload has been applied since the
// last clear.
func (s *ContextStore) IsLoaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.record.IsLoaded
}

// Snapshot returns an immutable copy of the current authorization state.
// Every derived value is a pure function over one of these.
func (s *ContextStore) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		Scope:     s.record.Scope,
		Hierarchy: s.record.Hierarchy,
		Loaded:    s.record.IsLoaded,
	}
	if s.record.User != nil {
		u := s.record.User.clone()
		snap.User = &u
	}
	if len(s.record.Permissions) > 0 {
		snap.Permissions = append([]string(nil), s.record.Permissions...)
	}
	if len(s.record.Roles) > 0 {
		snap.Roles = append([]RoleAssignment(nil), s.record.Roles...)
	}
	return snap
}

// ============================================================================
// Read-through queries - all delegate to a point-in-time snapshot
// ============================================================================

// ViewMode derives the UI perspective for the current principal.
func (s *ContextStore) ViewMode() ViewMode { return s.Snapshot().ViewMode() }

// AdminLevel returns the ordinal placement of the current principal.
func (s *ContextStore) AdminLevel() AdminLevel { return s.Snapshot().AdminLevel() }

// IsSuperAdmin reports whether the current scope is unrestricted.
func (s *ContextStore) IsSuperAdmin() bool { return s.Snapshot().IsSuperAdmin() }

// CanAccessLevel reports whether the principal's reach covers the target
// level.
func (s *ContextStore) CanAccessLevel(target AdminLevel) bool {
	return s.Snapshot().CanAccessLevel(target)
}

// IsOwnEntity reports whether the entity is exactly the principal's scope
// anchor.
func (s *ContextStore) IsOwnEntity(entityType EntityType, entityID string) bool {
	return s.Snapshot().IsOwnEntity(entityType, entityID)
}

// IsEntityInScope reports whether the entity falls inside the principal's
// administrative scope. See Snapshot.IsEntityInScope for the fallback
// semantics.
func (s *ContextStore) IsEntityInScope(entityType EntityType, entityID string, hint *ParentHint) bool {
	return s.Snapshot().IsEntityInScope(entityType, entityID, hint)
}

// CanManageEntity reports whether the given management action on the entity
// is permitted.
func (s *ContextStore) CanManageEntity(entityType EntityType, entityID string, action ManageAction) bool {
	return s.Snapshot().CanManageEntity(entityType, entityID, action)
}

// HasPermission reports membership in the stored permission list.
func (s *ContextStore) HasPermission(permission string) bool {
	return s.Snapshot().HasPermission(permission)
}

// HasAnyPermission reports whether any of the given permissions is held.
func (s *ContextStore) HasAnyPermission(permissions ...string) bool {
	return s.Snapshot().HasAnyPermission(permissions...)
}

// HasAllPermissions reports whether every given permission is held.
func (s *ContextStore) HasAllPermissions(permissions ...string) bool {
	return s.Snapshot().HasAllPermissions(permissions...)
}

// HasRole reports whether a role with the given code is assigned.
func (s *ContextStore) HasRole(roleCode string) bool {
	return s.Snapshot().HasRole(roleCode)
}

// HasAnyRole reports whether any of the given role codes is assigned.
func (s *ContextStore) HasAnyRole(roleCodes ...string) bool {
	return s.Snapshot().HasAnyRole(roleCodes...)
}

// PrimaryRole returns the first role assignment in receipt order, nil when
// none. This is positional: it is NOT the highest-priority role and may
// disagree with ViewMode's selection.
func (s *ContextStore) PrimaryRole() *RoleAssignment {
	return s.Snapshot().PrimaryRole()
}

// Scope returns the current authorization anchor.
func (s *ContextStore) Scope() Scope { return s.Snapshot().Scope }

// Hierarchy returns the principal's own position in the tree.
func (s *ContextStore) Hierarchy() Position { return s.Snapshot().Hierarchy }

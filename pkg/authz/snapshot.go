package authz

// Snapshot is an immutable point-in-time view of authorization state. All
// derivations are pure functions over it; none mutate, none touch storage.
type Snapshot struct {
	User        *User
	Permissions []string
	Scope       Scope
	Hierarchy   Position
	Roles       []RoleAssignment
	Loaded      bool
}

// IsSuperAdmin reports whether the scope grants unrestricted access.
func (s Snapshot) IsSuperAdmin() bool {
	return s.Scope.IsUnrestricted()
}

// ViewMode derives the UI perspective label. The highest-priority
// recognized role wins; ties resolve to the first assignment seen. With no
// recognized role the scope type decides.
func (s Snapshot) ViewMode() ViewMode {
	best := -1
	var view ViewMode
	for _, role := range s.Roles {
		entry, ok := rolePriorities[role.RoleCode]
		if !ok {
			continue
		}
		// Strictly greater: equal priority keeps the earlier assignment.
		if entry.priority > best {
			best = entry.priority
			view = entry.view
		}
	}
	if best >= 0 {
		return view
	}
	return viewModeForScope(s.Scope.Type)
}

// AdminLevel returns the principal's ordinal placement among scoped
// administrators. A super-admin transcends levels and returns
// AdminLevelNone, as does any non-admin scope.
func (s Snapshot) AdminLevel() AdminLevel {
	if s.IsSuperAdmin() {
		return AdminLevelNone
	}
	return adminLevelForScope(s.Scope.Type)
}

// CanAccessLevel reports whether the principal's administrative reach is at
// or above the target level: a forum admin reaches area and unit levels, an
// area admin reaches unit level only.
func (s Snapshot) CanAccessLevel(target AdminLevel) bool {
	if s.IsSuperAdmin() {
		return true
	}
	own := s.AdminLevel()
	if own == AdminLevelNone {
		return false
	}
	targetRank, ok := adminLevelRank[target]
	if !ok {
		return false
	}
	return own.Rank() >= targetRank
}

// IsOwnEntity reports whether the entity is exactly the principal's scope
// anchor: both the scope type and the entity id must match.
func (s Snapshot) IsOwnEntity(entityType EntityType, entityID string) bool {
	want := scopeTypeForEntity(entityType)
	if want == "" || entityID == "" {
		return false
	}
	return s.Scope.Type == want && s.Scope.EntityID == entityID
}

// IsEntityInScope reports whether the entity falls inside the principal's
// administrative scope. Checks run in order:
//
//  1. direct ownership (the entity is the scope anchor itself);
//  2. with an explicit hint, the principal administers the entity's
//     immediate parent per the backend-supplied linkage;
//  3. without a hint, the principal's own hierarchy position stands in for
//     the entity's parent linkage.
//
// Tier 3 is weaker evidence: the principal's own branch is only a proxy for
// the entity's real parent, and the backend remains the final authority for
// cross-branch checks. Unrecognized entity types always return false.
func (s Snapshot) IsEntityInScope(entityType EntityType, entityID string, hint *ParentHint) bool {
	if s.IsSuperAdmin() {
		return true
	}
	if s.IsOwnEntity(entityType, entityID) {
		return true
	}

	switch entityType {
	case EntityForum:
		// Forums have no parent: ownership was the only path.
		return false

	case EntityArea:
		if s.Scope.Type != ScopeForum {
			return false
		}
		if hint != nil && !hint.ForumID.IsEmpty() {
			return s.Scope.EntityID == hint.ForumID.String()
		}
		return s.ownPositionMatch(string(s.Hierarchy.ForumID))

	case EntityUnit:
		if s.Scope.Type != ScopeArea {
			return false
		}
		if hint != nil && !hint.AreaID.IsEmpty() {
			return s.Scope.EntityID == hint.AreaID.String()
		}
		return s.ownPositionMatch(string(s.Hierarchy.AreaID))

	case EntityAgent:
		if s.Scope.Type != ScopeUnit {
			return false
		}
		if hint != nil && !hint.UnitID.IsEmpty() {
			return s.Scope.EntityID == hint.UnitID.String()
		}
		return s.ownPositionMatch(string(s.Hierarchy.UnitID))

	default:
		// Closed policy: unknown entity kinds are never in scope.
		return false
	}
}

// ownPositionMatch compares the scope anchor against the principal's own
// recorded position at the parent level (tier 3 of IsEntityInScope).
func (s Snapshot) ownPositionMatch(positionID string) bool {
	return positionID != "" && s.Scope.EntityID == positionID
}

// CanManageEntity reports whether the management action on the entity is
// permitted.
//
// Edit requires ownership or a strictly higher administrative level: a
// same-level principal can never edit a sibling. Reassigning an admin is
// forbidden on one's own entity (no self-reassignment) and otherwise
// requires reach at or above the entity's level. Creating a subordinate is
// only permitted along the exact parent→child chain; the check runs against
// the parent entity because the child does not exist yet.
func (s Snapshot) CanManageEntity(entityType EntityType, entityID string, action ManageAction) bool {
	if s.IsSuperAdmin() {
		return true
	}
	rank, ok := entityRank[entityType]
	if !ok || entityID == "" {
		return false
	}

	switch action {
	case ActionEdit:
		if s.IsOwnEntity(entityType, entityID) {
			return true
		}
		return s.AdminLevel().Rank() > rank

	case ActionReassignAdmin:
		if s.IsOwnEntity(entityType, entityID) {
			return false
		}
		return s.AdminLevel().Rank() >= rank && s.AdminLevel() != AdminLevelNone

	case ActionCreateSubordinate:
		// entityID names the parent the new child goes under. Only the
		// parent's own admin creates directly beneath it.
		if s.Scope.Type != scopeTypeForEntity(entityType) {
			return false
		}
		return s.IsEntityInScope(entityType, entityID, nil)

	default:
		return false
	}
}

// HasPermission reports membership in the permission list.
func (s Snapshot) HasPermission(permission string) bool {
	for _, p := range s.Permissions {
		if p == permission {
			return true
		}
	}
	return false
}

// HasAnyPermission reports whether at least one permission is held.
func (s Snapshot) HasAnyPermission(permissions ...string) bool {
	for _, p := range permissions {
		if s.HasPermission(p) {
			return true
		}
	}
	return false
}

// HasAllPermissions reports whether every permission is held.
func (s Snapshot) HasAllPermissions(permissions ...string) bool {
	for _, p := range permissions {
		if !s.HasPermission(p) {
			return false
		}
	}
	return true
}

// HasRole reports whether a role with the given code is assigned.
func (s Snapshot) HasRole(roleCode string) bool {
	for _, r := range s.Roles {
		if r.RoleCode == roleCode {
			return true
		}
	}
	return false
}

// HasAnyRole reports whether any of the given role codes is assigned.
func (s Snapshot) HasAnyRole(roleCodes ...string) bool {
	for _, code := range roleCodes {
		if s.HasRole(code) {
			return true
		}
	}
	return false
}

// PrimaryRole returns the first assignment in receipt order, nil when none.
// Positional by contract; callers must not assume it matches ViewMode's
// priority resolution.
func (s Snapshot) PrimaryRole() *RoleAssignment {
	if len(s.Roles) == 0 {
		return nil
	}
	r := s.Roles[0]
	return &r
}

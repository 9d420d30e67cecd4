package authz

// ============================================================================
// Authorization Scope
// ============================================================================

// ScopeType identifies which node kind of the organizational tree a
// principal is authorized to administer.
type ScopeType string

const (
	// ScopeNone denotes unrestricted (super-admin) access. It never carries
	// an entity id.
	ScopeNone ScopeType = "NONE"

	ScopeForum  ScopeType = "FORUM"
	ScopeArea   ScopeType = "AREA"
	ScopeUnit   ScopeType = "UNIT"
	ScopeAgent  ScopeType = "AGENT"
	ScopeMember ScopeType = "MEMBER"
)

// Scope is the single authorization anchor of a principal: the one node
// type+identifier they administer. It is distinct from where the principal
// sits in the tree (Position).
type Scope struct {
	Type     ScopeType `json:"type"`
	EntityID string    `json:"entity_id,omitempty"`
}

// IsUnrestricted reports whether the scope grants super-admin access.
func (s Scope) IsUnrestricted() bool {
	return s.Type == ScopeNone
}

// defaultScope is the post-logout / never-loaded scope.
func defaultScope() Scope {
	return Scope{Type: ScopeMember}
}

// ============================================================================
// Admin Levels
// ============================================================================

// AdminLevel is the ordinal placement of a scoped administrator. Super-admins
// transcend levels and map to AdminLevelNone, as do non-admin principals.
type AdminLevel string

const (
	AdminLevelNone  AdminLevel = ""
	AdminLevelForum AdminLevel = "forum"
	AdminLevelArea  AdminLevel = "area"
	AdminLevelUnit  AdminLevel = "unit"
)

// adminLevelRank orders administrative reach: forum > area > unit.
var adminLevelRank = map[AdminLevel]int{
	AdminLevelForum: 3,
	AdminLevelArea:  2,
	AdminLevelUnit:  1,
}

// Rank returns the ordinal of the level, 0 for none.
func (l AdminLevel) Rank() int {
	return adminLevelRank[l]
}

// adminLevelForScope maps a scope type to its admin level.
func adminLevelForScope(t ScopeType) AdminLevel {
	switch t {
	case ScopeForum:
		return AdminLevelForum
	case ScopeArea:
		return AdminLevelArea
	case ScopeUnit:
		return AdminLevelUnit
	default:
		return AdminLevelNone
	}
}

// ============================================================================
// Entity Types
// ============================================================================

// EntityType names a concrete entity kind an authorization query refers to.
type EntityType string

const (
	EntityForum EntityType = "forum"
	EntityArea  EntityType = "area"
	EntityUnit  EntityType = "unit"
	EntityAgent EntityType = "agent"
)

// scopeTypeForEntity maps an entity type to the scope type that owns it.
// Unknown entity types map to "", which every check treats as a denial
// (closed policy).
func scopeTypeForEntity(t EntityType) ScopeType {
	switch t {
	case EntityForum:
		return ScopeForum
	case EntityArea:
		return ScopeArea
	case EntityUnit:
		return ScopeUnit
	case EntityAgent:
		return ScopeAgent
	default:
		return ""
	}
}

// entityRank orders entities for manage checks: agents sit below units.
var entityRank = map[EntityType]int{
	EntityForum: 3,
	EntityArea:  2,
	EntityUnit:  1,
	EntityAgent: 0,
}

// ManageAction is a management operation on a hierarchy entity.
type ManageAction string

const (
	// ActionEdit modifies the entity itself.
	ActionEdit ManageAction = "edit"

	// ActionReassignAdmin replaces the entity's administrator.
	ActionReassignAdmin ManageAction = "reassignAdmin"

	// ActionCreateSubordinate creates a direct child under the entity.
	ActionCreateSubordinate ManageAction = "createSubordinate"
)

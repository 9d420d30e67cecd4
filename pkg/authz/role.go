package authz

import "time"

// ============================================================================
// View Modes
// ============================================================================

// ViewMode is the UI-perspective label derived from a principal's roles or,
// failing that, from their scope type.
type ViewMode string

const (
	ViewModeSuperAdmin ViewMode = "superadmin"
	ViewModeAdmin      ViewMode = "admin"
	ViewModeAgent      ViewMode = "agent"
	ViewModeMember     ViewMode = "member"
)

// ============================================================================
// Role Assignments
// ============================================================================

// RoleAssignment is one of possibly many simultaneous roles held by a
// principal.
type RoleAssignment struct {
	RoleCode   string     `json:"role_code"`
	Name       string     `json:"name,omitempty"`
	AssignedAt *time.Time `json:"assigned_at,omitempty"`
}

// rolePriority maps a role code to its priority and the view mode it
// implies. Higher priority wins; ties resolve to the first assignment seen.
type rolePriority struct {
	priority int
	view     ViewMode
}

var rolePriorities = map[string]rolePriority{
	"SUPER_ADMIN": {priority: 100, view: ViewModeSuperAdmin},
	"FORUM_ADMIN": {priority: 70, view: ViewModeAdmin},
	"AREA_ADMIN":  {priority: 50, view: ViewModeAdmin},
	"UNIT_ADMIN":  {priority: 30, view: ViewModeAdmin},
	"AGENT":       {priority: 20, view: ViewModeAgent},
	"MEMBER":      {priority: 10, view: ViewModeMember},
}

// viewModeForScope is the fallback used when no assigned role carries a
// recognized priority.
func viewModeForScope(t ScopeType) ViewMode {
	switch t {
	case ScopeNone:
		return ViewModeSuperAdmin
	case ScopeForum, ScopeArea, ScopeUnit:
		return ViewModeAdmin
	case ScopeAgent:
		return ViewModeAgent
	default:
		return ViewModeMember
	}
}

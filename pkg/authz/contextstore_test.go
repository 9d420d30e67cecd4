package authz_test

import (
	"context"
	"testing"

	"github.com/mutuo-app/mutuo/pkg/authz"
	"github.com/mutuo-app/mutuo/pkg/authz/authzinfra"
	"github.com/mutuo-app/mutuo/pkg/kernel"
)

func newContextStore(t *testing.T, payload *authz.Context) *authz.ContextStore {
	t.Helper()
	store := authz.NewContextStore(authzinfra.NewInMemorySnapshotStore(), "test")
	if payload != nil {
		if err := store.SetContext(context.Background(), payload); err != nil {
			t.Fatalf("SetContext: %v", err)
		}
	}
	return store
}

func scopedContext(scopeType authz.ScopeType, entityID string) *authz.Context {
	return &authz.Context{
		User:  testUser("u1"),
		Scope: authz.Scope{Type: scopeType, EntityID: entityID},
	}
}

// --- view mode ---

func TestViewMode_HighestPriorityRoleWinsRegardlessOfOrder(t *testing.T) {
	payload := scopedContext(authz.ScopeUnit, "U1")
	payload.Roles = []authz.RoleAssignment{
		{RoleCode: "UNIT_ADMIN"},
		{RoleCode: "AREA_ADMIN"},
	}
	store := newContextStore(t, payload)
	if got := store.ViewMode(); got != authz.ViewModeAdmin {
		t.Fatalf("ViewMode = %q, want admin", got)
	}

	// Reversed order selects the same role.
	payload.Roles = []authz.RoleAssignment{
		{RoleCode: "AREA_ADMIN"},
		{RoleCode: "UNIT_ADMIN"},
	}
	store = newContextStore(t, payload)
	if got := store.ViewMode(); got != authz.ViewModeAdmin {
		t.Fatalf("ViewMode = %q, want admin", got)
	}
}

func TestViewMode_AgentRoleBeatsMemberRole(t *testing.T) {
	payload := scopedContext(authz.ScopeMember, "M1")
	payload.Roles = []authz.RoleAssignment{
		{RoleCode: "MEMBER"},
		{RoleCode: "AGENT"},
	}
	store := newContextStore(t, payload)
	if got := store.ViewMode(); got != authz.ViewModeAgent {
		t.Fatalf("ViewMode = %q, want agent", got)
	}
}

func TestViewMode_FallsBackToScopeWhenNoRecognizedRole(t *testing.T) {
	cases := []struct {
		scope authz.ScopeType
		want  authz.ViewMode
	}{
		{authz.ScopeNone, authz.ViewModeSuperAdmin},
		{authz.ScopeForum, authz.ViewModeAdmin},
		{authz.ScopeArea, authz.ViewModeAdmin},
		{authz.ScopeUnit, authz.ViewModeAdmin},
		{authz.ScopeAgent, authz.ViewModeAgent},
		{authz.ScopeMember, authz.ViewModeMember},
	}
	for _, tc := range cases {
		payload := scopedContext(tc.scope, "X1")
		payload.Roles = []authz.RoleAssignment{{RoleCode: "SOMETHING_UNKNOWN"}}
		store := newContextStore(t, payload)
		if got := store.ViewMode(); got != tc.want {
			t.Fatalf("scope %s: ViewMode = %q, want %q", tc.scope, got, tc.want)
		}
	}
}

// --- admin level and reach ---

func TestAdminLevel_SuperAdminTranscendsLevels(t *testing.T) {
	store := newContextStore(t, scopedContext(authz.ScopeNone, ""))
	if !store.IsSuperAdmin() {
		t.Fatal("None scope should be super-admin")
	}
	if got := store.AdminLevel(); got != authz.AdminLevelNone {
		t.Fatalf("super-admin AdminLevel = %q, want none", got)
	}
	if !store.CanAccessLevel(authz.AdminLevelUnit) {
		t.Fatal("super-admin should reach every level")
	}
}

func TestCanAccessLevel_OrdinalReach(t *testing.T) {
	cases := []struct {
		scope  authz.ScopeType
		target authz.AdminLevel
		want   bool
	}{
		{authz.ScopeForum, authz.AdminLevelUnit, true},
		{authz.ScopeForum, authz.AdminLevelArea, true},
		{authz.ScopeForum, authz.AdminLevelForum, true},
		{authz.ScopeArea, authz.AdminLevelUnit, true},
		{authz.ScopeArea, authz.AdminLevelForum, false},
		{authz.ScopeUnit, authz.AdminLevelUnit, true},
		{authz.ScopeUnit, authz.AdminLevelArea, false},
		{authz.ScopeMember, authz.AdminLevelUnit, false},
	}
	for _, tc := range cases {
		store := newContextStore(t, scopedContext(tc.scope, "X1"))
		if got := store.CanAccessLevel(tc.target); got != tc.want {
			t.Fatalf("%s → %s: CanAccessLevel = %v, want %v", tc.scope, tc.target, got, tc.want)
		}
	}
}

// --- entity ownership and scope ---

func TestIsOwnEntity_ExactMatchOnly(t *testing.T) {
	store := newContextStore(t, scopedContext(authz.ScopeUnit, "U1"))

	if !store.IsOwnEntity(authz.EntityUnit, "U1") {
		t.Fatal("own unit should match")
	}
	if store.IsOwnEntity(authz.EntityUnit, "U2") {
		t.Fatal("sibling unit should not match")
	}
	if store.IsOwnEntity(authz.EntityArea, "U1") {
		t.Fatal("entity type must match scope type")
	}
	if store.IsOwnEntity("cluster", "U1") {
		t.Fatal("unknown entity type should never match")
	}
}

func TestIsEntityInScope_ExplicitParentHint(t *testing.T) {
	store := newContextStore(t, scopedContext(authz.ScopeArea, "A1"))

	inScope := store.IsEntityInScope(authz.EntityUnit, "U1", &authz.ParentHint{AreaID: kernel.NewAreaID("A1")})
	if !inScope {
		t.Fatal("unit under the administered area should be in scope")
	}

	outOfScope := store.IsEntityInScope(authz.EntityUnit, "U1", &authz.ParentHint{AreaID: kernel.NewAreaID("A2")})
	if outOfScope {
		t.Fatal("unit under a different area should be out of scope")
	}
}

func TestIsEntityInScope_OwnPositionFallback(t *testing.T) {
	payload := scopedContext(authz.ScopeArea, "A1")
	payload.Hierarchy = authz.Position{
		ForumID: kernel.NewForumID("F1"),
		AreaID:  kernel.NewAreaID("A1"),
	}
	store := newContextStore(t, payload)

	// No hint: the caller's own position stands in for parent linkage.
	if !store.IsEntityInScope(authz.EntityUnit, "U9", nil) {
		t.Fatal("without a hint, own-branch fallback should admit the unit")
	}

	// A caller whose position disagrees with their scope gets a denial.
	payload.Hierarchy = authz.Position{AreaID: kernel.NewAreaID("A2")}
	store = newContextStore(t, payload)
	if store.IsEntityInScope(authz.EntityUnit, "U9", nil) {
		t.Fatal("fallback should compare scope against own position")
	}
}

func TestIsEntityInScope_SuperAdminAndClosedPolicy(t *testing.T) {
	super := newContextStore(t, scopedContext(authz.ScopeNone, ""))
	if !super.IsEntityInScope(authz.EntityForum, "anything", nil) {
		t.Fatal("super-admin should reach every entity")
	}

	area := newContextStore(t, scopedContext(authz.ScopeArea, "A1"))
	if area.IsEntityInScope("cluster", "C1", nil) {
		t.Fatal("unknown entity types must be denied")
	}
	if area.IsEntityInScope(authz.EntityForum, "F1", nil) {
		t.Fatal("an area admin does not reach a forum")
	}
}

// --- manage actions ---

func TestCanManageEntity_Edit(t *testing.T) {
	area := newContextStore(t, scopedContext(authz.ScopeArea, "A1"))

	if !area.CanManageEntity(authz.EntityArea, "A1", authz.ActionEdit) {
		t.Fatal("own entity should be editable")
	}
	if area.CanManageEntity(authz.EntityArea, "A2", authz.ActionEdit) {
		t.Fatal("a same-level sibling must not be editable")
	}
	if !area.CanManageEntity(authz.EntityUnit, "U1", authz.ActionEdit) {
		t.Fatal("a strictly lower level should be editable")
	}
	if area.CanManageEntity(authz.EntityForum, "F1", authz.ActionEdit) {
		t.Fatal("a higher level must not be editable")
	}
}

func TestCanManageEntity_ReassignAdminForbiddenOnOwnEntity(t *testing.T) {
	unit := newContextStore(t, scopedContext(authz.ScopeUnit, "U1"))

	if unit.CanManageEntity(authz.EntityUnit, "U1", authz.ActionReassignAdmin) {
		t.Fatal("self-reassignment must be forbidden")
	}
	// The same caller could still edit U1.
	if !unit.CanManageEntity(authz.EntityUnit, "U1", authz.ActionEdit) {
		t.Fatal("own entity should remain editable")
	}

	area := newContextStore(t, scopedContext(authz.ScopeArea, "A1"))
	if !area.CanManageEntity(authz.EntityUnit, "U1", authz.ActionReassignAdmin) {
		t.Fatal("reassign with sufficient reach should be allowed")
	}

	member := newContextStore(t, scopedContext(authz.ScopeMember, "M1"))
	if member.CanManageEntity(authz.EntityAgent, "AG1", authz.ActionReassignAdmin) {
		t.Fatal("non-admins must not reassign anything")
	}
}

func TestCanManageEntity_CreateSubordinateAlongParentChain(t *testing.T) {
	forum := newContextStore(t, scopedContext(authz.ScopeForum, "F1"))

	// A forum admin creates areas under their own forum.
	if !forum.CanManageEntity(authz.EntityForum, "F1", authz.ActionCreateSubordinate) {
		t.Fatal("forum admin should create under own forum")
	}
	if forum.CanManageEntity(authz.EntityForum, "F2", authz.ActionCreateSubordinate) {
		t.Fatal("forum admin must not create under another forum")
	}
	// Not under an area two levels down, either.
	if forum.CanManageEntity(authz.EntityArea, "A1", authz.ActionCreateSubordinate) {
		t.Fatal("creation must follow the exact parent→child chain")
	}

	area := newContextStore(t, scopedContext(authz.ScopeArea, "A1"))
	if !area.CanManageEntity(authz.EntityArea, "A1", authz.ActionCreateSubordinate) {
		t.Fatal("area admin should create under own area")
	}
}

func TestCanManageEntity_SuperAdminAlwaysAllowed(t *testing.T) {
	super := newContextStore(t, scopedContext(authz.ScopeNone, ""))

	for _, action := range []authz.ManageAction{
		authz.ActionEdit, authz.ActionReassignAdmin, authz.ActionCreateSubordinate,
	} {
		if !super.CanManageEntity(authz.EntityUnit, "X", action) {
			t.Fatalf("super-admin denied %q", action)
		}
	}
}

// --- permissions and roles ---

func TestPermissionQueries(t *testing.T) {
	payload := scopedContext(authz.ScopeUnit, "U1")
	payload.Permissions = []string{"members:read", "members:write"}
	store := newContextStore(t, payload)

	if !store.HasPermission("members:read") {
		t.Fatal("expected members:read")
	}
	if store.HasPermission("members:delete") {
		t.Fatal("unexpected members:delete")
	}
	if !store.HasAnyPermission("members:delete", "members:write") {
		t.Fatal("HasAnyPermission should find members:write")
	}
	if store.HasAllPermissions("members:read", "members:delete") {
		t.Fatal("HasAllPermissions should require every permission")
	}
	if !store.HasAllPermissions("members:read", "members:write") {
		t.Fatal("HasAllPermissions should pass when all held")
	}
}

func TestPrimaryRoleIsPositionalNotPriority(t *testing.T) {
	payload := scopedContext(authz.ScopeUnit, "U1")
	payload.Roles = []authz.RoleAssignment{
		{RoleCode: "UNIT_ADMIN"},
		{RoleCode: "AREA_ADMIN"},
	}
	store := newContextStore(t, payload)

	primary := store.PrimaryRole()
	if primary == nil || primary.RoleCode != "UNIT_ADMIN" {
		t.Fatalf("PrimaryRole = %+v, want first-received UNIT_ADMIN", primary)
	}
	// ViewMode still resolves by priority; the two are allowed to disagree.
	if store.ViewMode() != authz.ViewModeAdmin {
		t.Fatalf("ViewMode = %q", store.ViewMode())
	}

	empty := newContextStore(t, scopedContext(authz.ScopeMember, "M1"))
	if empty.PrimaryRole() != nil {
		t.Fatal("no roles should yield nil primary role")
	}
}

func TestRoleQueries(t *testing.T) {
	payload := scopedContext(authz.ScopeUnit, "U1")
	payload.Roles = []authz.RoleAssignment{{RoleCode: "UNIT_ADMIN"}}
	store := newContextStore(t, payload)

	if !store.HasRole("UNIT_ADMIN") {
		t.Fatal("expected UNIT_ADMIN")
	}
	if store.HasRole("AREA_ADMIN") {
		t.Fatal("unexpected AREA_ADMIN")
	}
	if !store.HasAnyRole("AREA_ADMIN", "UNIT_ADMIN") {
		t.Fatal("HasAnyRole should find UNIT_ADMIN")
	}
}

// --- lifecycle ---

func TestClearContext_ResetsToMemberDefaults(t *testing.T) {
	ctx := context.Background()
	payload := scopedContext(authz.ScopeNone, "")
	payload.Permissions = []string{"everything"}
	store := newContextStore(t, payload)

	if !store.IsSuperAdmin() || !store.IsLoaded() {
		t.Fatal("setup: expected loaded super-admin")
	}

	if err := store.ClearContext(ctx); err != nil {
		t.Fatalf("ClearContext: %v", err)
	}
	if store.IsSuperAdmin() {
		t.Fatal("cleared store must not be super-admin")
	}
	if store.ViewMode() != authz.ViewModeMember {
		t.Fatalf("cleared ViewMode = %q, want member", store.ViewMode())
	}
	if store.IsLoaded() {
		t.Fatal("cleared store must be unloaded")
	}
	if store.HasPermission("everything") {
		t.Fatal("cleared store must hold no permissions")
	}
}

func TestSetContext_ReplacesWholesale(t *testing.T) {
	first := scopedContext(authz.ScopeForum, "F1")
	first.Permissions = []string{"forums:manage"}
	store := newContextStore(t, first)

	second := scopedContext(authz.ScopeUnit, "U1")
	second.Roles = []authz.RoleAssignment{{RoleCode: "UNIT_ADMIN"}}
	if err := store.SetContext(context.Background(), second); err != nil {
		t.Fatalf("SetContext: %v", err)
	}

	// Nothing from the first payload survives.
	if store.HasPermission("forums:manage") {
		t.Fatal("stale permission survived wholesale replace")
	}
	if store.Scope().Type != authz.ScopeUnit {
		t.Fatalf("Scope = %+v", store.Scope())
	}
}

func TestContextStore_PersistsAndRestores(t *testing.T) {
	ctx := context.Background()
	snapshots := authzinfra.NewInMemorySnapshotStore()

	store := authz.NewContextStore(snapshots, "test")
	payload := scopedContext(authz.ScopeArea, "A1")
	if err := store.SetContext(ctx, payload); err != nil {
		t.Fatalf("SetContext: %v", err)
	}

	restored := authz.NewContextStore(snapshots, "test")
	restored.Load(ctx)
	if !restored.IsLoaded() {
		t.Fatal("restored store should be loaded")
	}
	if restored.AdminLevel() != authz.AdminLevelArea {
		t.Fatalf("restored AdminLevel = %q", restored.AdminLevel())
	}
}

func TestSnapshot_UserCopyDoesNotAliasStoreState(t *testing.T) {
	payload := scopedContext(authz.ScopeUnit, "U1")
	payload.User.Metadata = map[string]interface{}{"plan": "basic"}
	store := newContextStore(t, payload)

	snap := store.Snapshot()
	snap.User.Metadata["plan"] = "tampered"

	if store.Snapshot().User.Metadata["plan"] != "basic" {
		t.Fatal("mutating a snapshot's user must not reach the store")
	}
}

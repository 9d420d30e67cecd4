package authz

// Context is the authorization payload fetched atomically from the backend.
// ContextStore state is always replaced wholesale from one of these; it is
// never patched field-by-field from partial responses.
type Context struct {
	User        *User            `json:"user"`
	Permissions []string         `json:"permissions"`
	Scope       Scope            `json:"scope"`
	Hierarchy   Position         `json:"hierarchy"`
	Roles       []RoleAssignment `json:"roles"`
}

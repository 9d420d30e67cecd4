package kernel

// ============================================================================
// Context Keys - keys used to stash request-scoped values
// ============================================================================

type ContextKey string

const (
	// PrincipalContextKey stores the authenticated principal summary
	PrincipalContextKey ContextKey = "principal"

	// RequestIDKey stores the request correlation id
	RequestIDKey ContextKey = "request_id"
)

// Principal is the minimal identity attached to every authenticated request.
type Principal struct {
	UserID UserID   `json:"user_id"`
	Email  string   `json:"email"`
	Scopes []string `json:"scopes,omitempty"`
}

// IsValid reports whether the principal carries a usable identity.
func (p *Principal) IsValid() bool {
	return p != nil && !p.UserID.IsEmpty()
}

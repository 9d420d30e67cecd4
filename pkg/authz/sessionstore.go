package authz

import (
	"context"
	"sync"
	"time"

	"github.com/mutuo-app/mutuo/pkg/errx"
	"github.com/mutuo-app/mutuo/pkg/kernel"
	"github.com/mutuo-app/mutuo/pkg/logx"
)

// expiryMargin treats near-expired tokens as already expired so a request
// is never issued with a token the backend would reject mid-flight.
const expiryMargin = 30 * time.Second

// sessionRecord is the persisted session shape. All fields are nullable:
// the empty record means "no session".
type sessionRecord struct {
	User         *User      `json:"user"`
	AccessToken  string     `json:"access_token,omitempty"`
	RefreshToken string     `json:"refresh_token,omitempty"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
}

// SessionStore owns the credential lifecycle: bearer token, refresh token,
// expiry and the authenticated principal summary. Exactly one credential is
// active per process. Every mutation is a full-record replace persisted to
// the SnapshotStore; Load on start reconstructs state, treating absent or
// corrupt storage as "no session".
type SessionStore struct {
	mu    sync.RWMutex
	store SnapshotStore
	key   string
	now   func() time.Time

	record sessionRecord
}

// SessionOption customizes a SessionStore.
type SessionOption func(*SessionStore)

// WithClock overrides the time source (used by expiry tests).
func WithClock(now func() time.Time) SessionOption {
	return func(s *SessionStore) { s.now = now }
}

// NewSessionStore creates a session store persisting under the given
// namespace. Call Load to restore any previously persisted session.
func NewSessionStore(store SnapshotStore, namespace string, opts ...SessionOption) *SessionStore {
	s := &SessionStore{
		store: store,
		key:   namespace + ":session",
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load restores the persisted session record. Absence and corruption both
// yield the empty record; neither is an error to the caller.
func (s *SessionStore) Load(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var rec sessionRecord
	found, err := s.store.Load(ctx, s.key, &rec)
	if err != nil {
		logx.WithError(err).Warn("session load failed, starting unauthenticated")
		s.record = sessionRecord{}
		return
	}
	if !found {
		s.record = sessionRecord{}
		return
	}
	s.record = rec
}

// IsAuthenticated reports whether a token and a user are present and the
// token is currently valid. Token presence alone is insufficient.
func (s *SessionStore) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.record.AccessToken != "" && s.record.User != nil && s.tokenValidLocked()
}

// IsTokenValid reports credential validity. With no recorded expiry,
// validity degrades to "token exists" (legacy tokens are valid while
// present). With an expiry, the token is valid strictly before
// expiresAt - 30s.
func (s *SessionStore) IsTokenValid() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tokenValidLocked()
}

func (s *SessionStore) tokenValidLocked() bool {
	if s.record.AccessToken == "" {
		return false
	}
	if s.record.ExpiresAt == nil {
		return true
	}
	return s.now().Before(s.record.ExpiresAt.Add(-expiryMargin))
}

// AccessToken returns the current bearer token, empty when unauthenticated.
func (s *SessionStore) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.record.AccessToken
}

// RefreshToken returns the current refresh token.
func (s *SessionStore) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.record.RefreshToken
}

// User returns a copy of the authenticated user, nil when absent.
func (s *SessionStore) User() *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.record.User == nil {
		return nil
	}
	u := s.record.User.clone()
	return &u
}

// PrincipalID returns the authenticated user's id, empty when absent.
func (s *SessionStore) PrincipalID() kernel.UserID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.record.User == nil {
		return ""
	}
	return s.record.User.UserID
}

// ExpiresAt returns the recorded token expiry, nil for legacy tokens.
func (s *SessionStore) ExpiresAt() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.record.ExpiresAt
}

// SetCredential atomically replaces the full session record.
func (s *SessionStore) SetCredential(ctx context.Context, user *User, accessToken, refreshToken string, expiresAt *time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.record = sessionRecord{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    expiresAt,
	}
	return s.persistLocked(ctx)
}

// SetAccessToken rotates the bearer token, preserving the rest of the
// record. ExpiresAt must be refreshed separately via SetExpiry when the
// rotated token carries one.
func (s *SessionStore) SetAccessToken(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record.AccessToken = token
	return s.persistLocked(ctx)
}

// SetRefreshToken rotates the refresh token, preserving the rest of the
// record.
func (s *SessionStore) SetRefreshToken(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record.RefreshToken = token
	return s.persistLocked(ctx)
}

// SetExpiry replaces the recorded token expiry.
func (s *SessionStore) SetExpiry(ctx context.Context, expiresAt *time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record.ExpiresAt = expiresAt
	return s.persistLocked(ctx)
}

// UpdateUser merges the patch into the existing user record. It is a no-op
// when no user is currently set.
func (s *SessionStore) UpdateUser(ctx context.Context, patch UserPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.record.User == nil {
		return nil
	}
	updated := patch.apply(*s.record.User)
	s.record.User = &updated
	return s.persistLocked(ctx)
}

// Clear resets the store to the fully-empty record and removes the
// persisted copy.
func (s *SessionStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.record = sessionRecord{}
	if err := s.store.Delete(ctx, s.key); err != nil {
		return errx.Wrap(err, "failed to remove persisted session", errx.TypeInternal)
	}
	return nil
}

func (s *SessionStore) persistLocked(ctx context.Context) error {
	if err := s.store.Save(ctx, s.key, s.record); err != nil {
		return ErrRegistry.NewWithCause(CodePersistenceFailed, err).WithDetail("key", s.key)
	}
	return nil
}

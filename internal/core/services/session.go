package services

import (
	"context"
	"crypto/subtle"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/procdesk/internal/core/domain"
	"github.com/custodia-labs/procdesk/internal/core/ports/driving"
)

// Ensure SessionService implements the interface.
var _ driving.SessionGate = (*SessionService)(nil)

// SessionService gates core operations behind one shared secret.
// It keeps no state of its own: each front-end holds the *domain.Session
// it was given and passes it back on every call.
type SessionService struct {
	secret  string
	ttl     time.Duration
	isDflt  bool
	nowFunc func() time.Time
}

// NewSessionService creates a gate for the configured access settings.
func NewSessionService(settings domain.AccessSettings) *SessionService {
	return &SessionService{
		secret:  settings.Secret,
		ttl:     settings.SessionTTL,
		isDflt:  settings.Secret == domain.DefaultAccessSecret,
		nowFunc: time.Now,
	}
}

// Admit checks the secret and returns a new admitted session.
func (s *SessionService) Admit(_ context.Context, secret, user string) (*domain.Session, error) {
	if subtle.ConstantTimeCompare([]byte(secret), []byte(s.secret)) != 1 {
		return nil, domain.ErrInvalidSecret
	}

	now := s.nowFunc()
	session := &domain.Session{
		ID:         uuid.New().String(),
		User:       user,
		AdmittedAt: now,
		Admitted:   true,
	}
	if s.ttl > 0 {
		session.ExpiresAt = now.Add(s.ttl)
	}
	return session, nil
}

// Validate returns nil if the session may use core operations.
func (s *SessionService) Validate(session *domain.Session) error {
	if session == nil || !session.Admitted {
		return domain.ErrNotAdmitted
	}
	if session.Expired(s.nowFunc()) {
		return domain.ErrSessionExpired
	}
	return nil
}

// Logout invalidates the session. A nil session is ignored.
func (s *SessionService) Logout(session *domain.Session) {
	session.Invalidate()
}

// UsingDefaultSecret returns true if the insecure default secret is active.
func (s *SessionService) UsingDefaultSecret() bool {
	return s.isDflt
}

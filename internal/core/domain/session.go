package domain

import "time"

// Session is an operator session admitted by the session gate.
// It is created at admission and invalidated on logout or expiry.
type Session struct {
	ID         string
	User       string
	AdmittedAt time.Time
	// ExpiresAt is zero when the session never expires.
	ExpiresAt time.Time
	Admitted  bool
}

// Valid returns true if the session is admitted and not expired at now.
func (s *Session) Valid(now time.Time) bool {
	if s == nil || !s.Admitted {
		return false
	}
	return !s.Expired(now)
}

// Expired returns true if the session has an expiry that has passed.
func (s *Session) Expired(now time.Time) bool {
	if s == nil || s.ExpiresAt.IsZero() {
		return false
	}
	return !now.Before(s.ExpiresAt)
}

// Invalidate revokes the session.
func (s *Session) Invalidate() {
	if s != nil {
		s.Admitted = false
	}
}

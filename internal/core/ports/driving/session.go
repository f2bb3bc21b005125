package driving

import (
	"context"

	"github.com/custodia-labs/procdesk/internal/core/domain"
)

// SessionGate admits operators holding the shared access secret.
type SessionGate interface {
	// Admit checks the secret and returns a new admitted session.
	Admit(ctx context.Context, secret, user string) (*domain.Session, error)

	// Validate returns nil if the session may use core operations.
	Validate(session *domain.Session) error

	// Logout invalidates the session.
	Logout(session *domain.Session)

	// UsingDefaultSecret returns true if the insecure default secret is active.
	UsingDefaultSecret() bool
}

// Package domain holds the procdesk vocabulary shared by every layer:
// processes and their summaries, invocation reports, result archives,
// ledger records, sessions and settings.
//
// It imports only the standard library. The sentinel errors defined here
// (ErrNotFound, ErrInvalidInput, ErrSessionExpired and friends) are the
// ones adapters test for with errors.Is.
package domain

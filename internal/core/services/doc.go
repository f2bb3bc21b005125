// Package services holds the procdesk use cases: plugin discovery,
// process invocation with result packaging and ledger recording, session
// admission, ledger queries and settings resolution.
//
// Services depend only on domain types and the driven ports; adapters
// are injected by the app container.
package services

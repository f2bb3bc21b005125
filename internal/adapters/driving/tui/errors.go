package tui

import "errors"

// ErrMissingProcessService is returned when the process service is not provided.
var ErrMissingProcessService = errors.New("tui: process service is required")

// ErrMissingLedgerService is returned when the ledger service is not provided.
var ErrMissingLedgerService = errors.New("tui: ledger service is required")

// ErrMissingSessionGate is returned when the session gate is not provided.
var ErrMissingSessionGate = errors.New("tui: session gate is required")

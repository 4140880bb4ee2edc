package orchestrator

import "errors"

// ErrDeletionNotConfigured is returned by DeleteIntent when the
// Orchestrator was not constructed with WithIntentDeletion.
var ErrDeletionNotConfigured = errors.New("orchestrator: intent deletion collaborators not configured")

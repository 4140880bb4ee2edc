package execctx

import "errors"

var (
	// ErrEmptyPath is returned by operations given an empty dot-path.
	ErrEmptyPath = errors.New("execctx: path must not be empty")
	// ErrNotContainer names a path segment that addresses a JSON scalar
	// rather than a mapping or sequence. Put and Remove do not return it:
	// Put returns sjson's own error, if any, and Remove reports absence.
	ErrNotContainer = errors.New("execctx: path segment is not a container")
)

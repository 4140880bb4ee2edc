package types

import "time"

// parseTimeLayout is a thin wrapper around time.Parse kept in its own file
// so port.go's tolerant-validator logic reads as a flat list of predicates.
func parseTimeLayout(layout, value string) (time.Time, error) {
	return time.Parse(layout, value)
}

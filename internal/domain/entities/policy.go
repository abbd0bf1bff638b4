package entities

import "fmt"

// MismatchPolicy decides what happens when an archive's app identifier does
// not match the configured one
type MismatchPolicy string

// Mismatch policies
const (
	// MismatchAbort stops the whole run
	MismatchAbort MismatchPolicy = "abort"
	// MismatchSkip marks the file failed and moves on to the next one
	MismatchSkip MismatchPolicy = "skip"
)

// ParseMismatchPolicy parses a policy name; empty means MismatchAbort
func ParseMismatchPolicy(s string) (MismatchPolicy, error) {
	switch MismatchPolicy(s) {
	case "", MismatchAbort:
		return MismatchAbort, nil
	case MismatchSkip:
		return MismatchSkip, nil
	default:
		return "", fmt.Errorf("unknown mismatch policy %q (want %q or %q)", s, MismatchAbort, MismatchSkip)
	}
}

package types

import "strings"

// NormalizeKey trims and case folds an identifier for comparison.
func NormalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

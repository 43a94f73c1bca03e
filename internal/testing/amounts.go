package testing

import "fmt"

// UnitsPerToken is the decimal scale used by test amounts.
const UnitsPerToken uint64 = 1_000_000

// Tokens converts whole tokens to base units.
// For example, Tokens(100) returns 100,000,000.
func Tokens(n uint64) uint64 {
	return n * UnitsPerToken
}

// Units returns the base-unit amount unchanged.
// This is a convenience function for clarity when specifying raw amounts.
func Units(n uint64) uint64 {
	return n
}

// FormatTokens renders base units as whole tokens, e.g. "12.500000".
func FormatTokens(units uint64) string {
	return fmt.Sprintf("%d.%06d", units/UnitsPerToken, units%UnitsPerToken)
}

// Package validators provides validation functions for ethPM registry entities.
package validators

import (
	"fmt"
)

const (
	// maxContractNameLength bounds contract names and aliases.
	maxContractNameLength = 256
)

// IsValidPackageName reports whether name is a valid package name.
//
// A package name must be non-empty and consist entirely of lowercase
// ASCII letters, ASCII digits, and hyphens. No uppercase, no underscore,
// no other punctuation, no whitespace.
//
// Examples of valid names:
//   - safe-math-lib
//   - erc20
//
// Examples of invalid names:
//   - Invalid_Name (uppercase, underscore)
//   - "" (empty)
func IsValidPackageName(name string) bool {
	if name == "" {
		return false
	}
	for _, c := range []byte(name) {
		if !isLowerAlphaNumHyphen(c) {
			return false
		}
	}
	return true
}

// ValidatePackageName validates a package name and returns a descriptive
// error if it fails the grammar. This is the error-returning counterpart
// of IsValidPackageName for callers that surface the reason.
func ValidatePackageName(name string) error {
	if name == "" {
		return fmt.Errorf("package name cannot be empty")
	}
	if !IsValidPackageName(name) {
		return fmt.Errorf(
			"package name '%s' is invalid. Package names may only contain lowercase letters, digits, and hyphens",
			name,
		)
	}
	return nil
}

// IsValidContractName reports whether name is a valid contract name.
//
// A contract name must be 1-256 characters long, start with an ASCII
// letter, underscore, or dollar sign, and contain only ASCII letters,
// digits, underscores, and dollar signs afterwards.
//
// Examples of valid names:
//   - _MyContract
//   - $proxy
//
// Examples of invalid names:
//   - 123Contract (digit-led)
//   - my-contract (hyphen)
func IsValidContractName(name string) bool {
	if len(name) == 0 || len(name) > maxContractNameLength {
		return false
	}
	if !isAlpha(name[0]) && name[0] != '_' && name[0] != '$' {
		return false
	}
	for i := 1; i < len(name); i++ {
		c := name[i]
		if !isAlpha(c) && !isDigit(c) && c != '_' && c != '$' {
			return false
		}
	}
	return true
}

// IsValidContractAlias reports whether alias is a valid contract alias.
//
// An alias must be 1-256 characters long and consist entirely of ASCII
// letters, digits, hyphens, and underscores. Unlike contract names there
// is no separate first-character rule; the whole-string character class
// is the only constraint.
func IsValidContractAlias(alias string) bool {
	if len(alias) == 0 || len(alias) > maxContractNameLength {
		return false
	}
	for _, c := range []byte(alias) {
		if !isAlpha(c) && !isDigit(c) && c != '-' && c != '_' {
			return false
		}
	}
	return true
}

func isLowerAlphaNumHyphen(c byte) bool {
	return (c >= 'a' && c <= 'z') || isDigit(c) || c == '-'
}

func isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// Package joincode generates and validates the 6-character codes users type
// to join a group.
//
// A code is three uppercase ASCII letters followed by three ASCII digits,
// e.g. "KQZ042". Codes are random, so uniqueness is checked against the store
// at issuance by Allocator.
package joincode

import (
	"context"
	"math/rand/v2"
	"strings"

	"github.com/mmynk/watchtogether/internal/apperr"
)

const (
	// Length is the exact length of a join code.
	Length = 6

	letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	digits  = "0123456789"

	// DefaultMaxAttempts bounds GenerateUnique when no limit is configured.
	DefaultMaxAttempts = 20
)

// Generate draws a code uniformly: 3 letters from A-Z, then 3 digits from 0-9.
// A nil rng uses the global source.
func Generate(rng *rand.Rand) string {
	intN := rand.IntN
	if rng != nil {
		intN = rng.IntN
	}

	var b [Length]byte
	for i := 0; i < 3; i++ {
		b[i] = letters[intN(len(letters))]
	}
	for i := 3; i < Length; i++ {
		b[i] = digits[intN(len(digits))]
	}
	return string(b[:])
}

// Valid reports whether code is exactly in the canonical form.
func Valid(code string) bool {
	if len(code) != Length {
		return false
	}
	for i := 0; i < 3; i++ {
		if code[i] < 'A' || code[i] > 'Z' {
			return false
		}
	}
	for i := 3; i < Length; i++ {
		if code[i] < '0' || code[i] > '9' {
			return false
		}
	}
	return true
}

// Normalize trims and uppercases user input and checks the result.
func Normalize(raw string) (string, error) {
	code := strings.ToUpper(strings.TrimSpace(raw))
	if len(code) != Length {
		return "", apperr.New(apperr.KindValidation, "join code must be %d characters", Length)
	}
	if !Valid(code) {
		return "", apperr.New(apperr.KindValidation, "join code must be 3 letters followed by 3 digits")
	}
	return code, nil
}

// Checker reports whether a code is already taken.
type Checker interface {
	JoinCodeExists(ctx context.Context, code string) (bool, error)
}

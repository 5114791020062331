// Package domain holds the shared identity value types. Typed handles parsed
// at trust boundaries keep raw strings out of services.
package domain

import (
	"fmt"
	"strings"

	dErrors "chainpass/pkg/domain-errors"
)

// Address is an account identity handle: 0x-prefixed, 40 hex characters,
// stored lowercased so map keys and cache keys compare canonically.
type Address string

// ZeroAddress is the null identity; transfers to it model burns, which the
// credential ledger rejects like any other transfer.
const ZeroAddress Address = "0x0000000000000000000000000000000000000000"

// ParseAddress validates and canonicalizes an identity handle.
// IDs must be valid, non-empty, well-formed addresses.
func ParseAddress(raw string) (Address, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "address must not be empty")
	}
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		return "", dErrors.New(dErrors.CodeInvalidInput, "address must start with 0x")
	}
	hexPart := s[2:]
	if len(hexPart) != 40 {
		return "", dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("address must contain 40 hex characters, got %d", len(hexPart)))
	}
	for _, c := range hexPart {
		if !isHex(c) {
			return "", dErrors.New(dErrors.CodeInvalidInput, "address contains non-hex characters")
		}
	}
	return Address("0x" + strings.ToLower(hexPart)), nil
}

// MustAddress parses or panics; for tests and static configuration only.
func MustAddress(raw string) Address {
	addr, err := ParseAddress(raw)
	if err != nil {
		panic(err)
	}
	return addr
}

func (a Address) String() string { return string(a) }

// IsZero reports whether the address is unset or the null identity.
func (a Address) IsZero() bool { return a == "" || a == ZeroAddress }

// Short returns a truncated form for logs: 0xabcd...1234.
func (a Address) Short() string {
	s := string(a)
	if len(s) < 12 {
		return s
	}
	return s[:6] + "..." + s[len(s)-4:]
}

func isHex(c rune) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

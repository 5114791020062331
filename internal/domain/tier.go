package domain

import (
	"fmt"

	dErrors "chainpass/pkg/domain-errors"
)

// Tier classifies a computed activity score. The set is closed; anything
// outside it is rejected at the boundary rather than coerced.
type Tier string

const (
	TierBronze Tier = "bronze"
	TierSilver Tier = "silver"
	TierGold   Tier = "gold"
)

// ParseTier validates a wire-level tier value.
func ParseTier(raw string) (Tier, error) {
	switch Tier(raw) {
	case TierBronze, TierSilver, TierGold:
		return Tier(raw), nil
	default:
		return "", dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("unknown tier %q", raw))
	}
}

// Valid reports whether the tier belongs to the closed set.
func (t Tier) Valid() bool {
	switch t {
	case TierBronze, TierSilver, TierGold:
		return true
	}
	return false
}

// DisplayName returns the capitalized form used in rendered metadata.
func (t Tier) DisplayName() string {
	switch t {
	case TierBronze:
		return "Bronze"
	case TierSilver:
		return "Silver"
	case TierGold:
		return "Gold"
	default:
		return string(t)
	}
}

package domain

import (
	"time"

	id "chainpass/pkg/domain"
)

// Credential is a soulbound reputation token. Owner, tier, score, and
// issuance time are write-once at issuance; no transfer or burn path exists.
type Credential struct {
	TokenID  uint64     `json:"token_id"`
	Owner    id.Address `json:"owner"`
	Tier     Tier       `json:"tier"`
	Score    int        `json:"score"`
	IssuedAt time.Time  `json:"issued_at"`
}

// Approval is harmless bookkeeping attached to a credential. Recording an
// approved operator never enables a transfer to complete.
type Approval struct {
	TokenID    uint64     `json:"token_id"`
	Operator   id.Address `json:"operator"`
	ApprovedAt time.Time  `json:"approved_at"`
}

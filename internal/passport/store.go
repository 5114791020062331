package passport

import (
	"context"
	"time"

	"chainpass/internal/domain"
	id "chainpass/pkg/domain"
)

// Store persists credentials and the owner->issued set. Issue must be a
// single indivisible transition: token id allocation, the one-per-owner
// check, and the insert commit together or not at all.
type Store interface {
	// Issue allocates the next token id and records the credential.
	// Returns sentinel.ErrConflict (wrapped) when the owner already issued.
	Issue(ctx context.Context, owner id.Address, tier domain.Tier, score int, issuedAt time.Time) (domain.Credential, error)

	// ByTokenID returns the credential, or sentinel.ErrNotFound.
	ByTokenID(ctx context.Context, tokenID uint64) (domain.Credential, error)

	// ByOwner returns the owner's credential, or sentinel.ErrNotFound.
	ByOwner(ctx context.Context, owner id.Address) (domain.Credential, error)

	// HasIssued reports whether the owner ever issued.
	HasIssued(ctx context.Context, owner id.Address) (bool, error)

	// SaveApproval records operator bookkeeping for an issued token.
	// Returns sentinel.ErrNotFound for unknown token ids.
	SaveApproval(ctx context.Context, approval domain.Approval) error

	// ApprovalFor returns the recorded approval, or sentinel.ErrNotFound.
	ApprovalFor(ctx context.Context, tokenID uint64) (domain.Approval, error)
}

// Package passport owns the soulbound credential ledger: one credential per
// identity, ever, with write-once attributes and no transfer path.
package passport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"chainpass/internal/domain"
	"chainpass/internal/events"
	"chainpass/internal/passport/metrics"
	id "chainpass/pkg/domain"
	dErrors "chainpass/pkg/domain-errors"
	"chainpass/pkg/platform/sentinel"
	"chainpass/pkg/requestcontext"
)

var (
	ErrAlreadyIssued = dErrors.New(dErrors.CodeConflict, "caller already holds a credential")
	ErrInvalidTier   = dErrors.New(dErrors.CodeInvalidInput, "tier is outside the allowed set")
	ErrNegativeScore = dErrors.New(dErrors.CodeInvalidInput, "score must not be negative")
	ErrNotFound      = dErrors.New(dErrors.CodeNotFound, "credential does not exist")
	ErrNoCaller      = dErrors.New(dErrors.CodeUnauthorized, "caller identity required")

	// ErrNonTransferable is returned by every ownership-change operation,
	// unconditionally. The transfer capability simply does not exist; this
	// is not an authorization failure that some caller could pass.
	ErrNonTransferable = dErrors.New(dErrors.CodeConflict, "credential is non-transferable")
)

// Service implements the credential ledger. Issue is the single
// state-mutating entry point for credentials; Approve records harmless
// bookkeeping that never enables a transfer.
//
// The score passed to Issue is caller-supplied and trusted as-is. The ledger
// deliberately does not re-derive it from the scoring engine: the score is
// advisory at issuance, a documented trust boundary of the system rather
// than an omission.
type Service struct {
	store     Store
	publisher events.Publisher
	logger    *slog.Logger
	metrics   *metrics.Metrics

	// writeMu spans the issuance and its emission: the event for token N is
	// on the stream before token N+1 can commit, so stream order never
	// diverges from mutation order.
	writeMu sync.Mutex
}

func NewService(store Store, publisher events.Publisher, logger *slog.Logger, m *metrics.Metrics) *Service {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &Service{store: store, publisher: publisher, logger: logger, metrics: m}
}

// Issue mints the caller's credential. At most once per identity: a second
// call fails with AlreadyIssued and leaves the first credential untouched.
func (s *Service) Issue(ctx context.Context, score int, tier domain.Tier) (domain.Credential, error) {
	caller := requestcontext.Caller(ctx)
	if caller.IsZero() {
		return domain.Credential{}, ErrNoCaller
	}
	if !tier.Valid() {
		return domain.Credential{}, ErrInvalidTier
	}
	if score < 0 {
		return domain.Credential{}, ErrNegativeScore
	}

	s.writeMu.Lock()
	cred, err := s.store.Issue(ctx, caller, tier, score, requestcontext.Now(ctx))
	if err != nil {
		s.writeMu.Unlock()
		if errors.Is(err, sentinel.ErrConflict) {
			s.metrics.IncrementRejected("already_issued")
			return domain.Credential{}, ErrAlreadyIssued
		}
		return domain.Credential{}, dErrors.Wrap(dErrors.CodeInternal, "issue credential", err)
	}
	emitErr := s.publisher.Emit(ctx, events.NewCredentialIssued(cred))
	s.writeMu.Unlock()

	s.metrics.IncrementIssued(string(tier))
	if s.logger != nil {
		s.logger.InfoContext(ctx, "credential issued",
			"token_id", cred.TokenID,
			"owner", cred.Owner.Short(),
			"tier", cred.Tier,
			"score", cred.Score,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
	if emitErr != nil && s.logger != nil {
		s.logger.ErrorContext(ctx, "credential_issued event dropped", "token_id", cred.TokenID, "error", emitErr)
	}
	return cred, nil
}

// Transfer always fails. Every caller, every destination, including the
// owner, an approved operator, self-transfer, and the zero address.
func (s *Service) Transfer(ctx context.Context, tokenID uint64, to id.Address) error {
	s.metrics.IncrementRejected("transfer")
	return ErrNonTransferable
}

// Burn is a transfer to nowhere and fails the same way.
func (s *Service) Burn(ctx context.Context, tokenID uint64) error {
	s.metrics.IncrementRejected("burn")
	return ErrNonTransferable
}

// Approve records an operator for a token. The record is readable metadata
// and nothing more; approval bookkeeping and transfer execution are
// decoupled, and the latter does not exist.
func (s *Service) Approve(ctx context.Context, tokenID uint64, operator id.Address) (domain.Approval, error) {
	caller := requestcontext.Caller(ctx)
	if caller.IsZero() {
		return domain.Approval{}, ErrNoCaller
	}
	cred, err := s.credential(ctx, tokenID)
	if err != nil {
		return domain.Approval{}, err
	}
	if cred.Owner != caller {
		return domain.Approval{}, dErrors.New(dErrors.CodeForbidden, "only the owner may approve an operator")
	}

	approval := domain.Approval{
		TokenID:    tokenID,
		Operator:   operator,
		ApprovedAt: requestcontext.Now(ctx),
	}
	if err := s.store.SaveApproval(ctx, approval); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return domain.Approval{}, ErrNotFound
		}
		return domain.Approval{}, dErrors.Wrap(dErrors.CodeInternal, "save approval", err)
	}
	return approval, nil
}

// ApprovalFor returns the recorded operator approval, if any.
func (s *Service) ApprovalFor(ctx context.Context, tokenID uint64) (domain.Approval, error) {
	approval, err := s.store.ApprovalFor(ctx, tokenID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return domain.Approval{}, ErrNotFound
		}
		return domain.Approval{}, dErrors.Wrap(dErrors.CodeInternal, "get approval", err)
	}
	return approval, nil
}

// Credential returns the full credential for a token id.
func (s *Service) Credential(ctx context.Context, tokenID uint64) (domain.Credential, error) {
	return s.credential(ctx, tokenID)
}

// CredentialOf returns the credential held by an owner.
func (s *Service) CredentialOf(ctx context.Context, owner id.Address) (domain.Credential, error) {
	cred, err := s.store.ByOwner(ctx, owner)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return domain.Credential{}, ErrNotFound
		}
		return domain.Credential{}, dErrors.Wrap(dErrors.CodeInternal, "get credential by owner", err)
	}
	return cred, nil
}

// Tier returns the write-once tier of a token.
func (s *Service) Tier(ctx context.Context, tokenID uint64) (domain.Tier, error) {
	cred, err := s.credential(ctx, tokenID)
	if err != nil {
		return "", err
	}
	return cred.Tier, nil
}

// Score returns the write-once score of a token.
func (s *Service) Score(ctx context.Context, tokenID uint64) (int, error) {
	cred, err := s.credential(ctx, tokenID)
	if err != nil {
		return 0, err
	}
	return cred.Score, nil
}

// Owner returns the permanently bound holder of a token.
func (s *Service) Owner(ctx context.Context, tokenID uint64) (id.Address, error) {
	cred, err := s.credential(ctx, tokenID)
	if err != nil {
		return "", err
	}
	return cred.Owner, nil
}

// IssuedAt returns the issuance time of a token.
func (s *Service) IssuedAt(ctx context.Context, tokenID uint64) (time.Time, error) {
	cred, err := s.credential(ctx, tokenID)
	if err != nil {
		return time.Time{}, err
	}
	return cred.IssuedAt, nil
}

// Metadata is the rendered descriptive document for a token, embedding the
// token id, tier name, score, and issuance time.
type Metadata struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Attributes  []Attribute `json:"attributes"`
}

type Attribute struct {
	TraitType string `json:"trait_type"`
	Value     any    `json:"value"`
}

// RenderMetadata produces the descriptive representation of a credential.
func (s *Service) RenderMetadata(ctx context.Context, tokenID uint64) (Metadata, error) {
	cred, err := s.credential(ctx, tokenID)
	if err != nil {
		return Metadata{}, err
	}
	return Metadata{
		Name: fmt.Sprintf("Chainpass Credential #%d", cred.TokenID),
		Description: fmt.Sprintf("%s tier reputation credential, score %d, permanently bound to %s.",
			cred.Tier.DisplayName(), cred.Score, cred.Owner),
		Attributes: []Attribute{
			{TraitType: "Tier", Value: cred.Tier.DisplayName()},
			{TraitType: "Score", Value: cred.Score},
			{TraitType: "Issued At", Value: cred.IssuedAt.UTC().Format("2006-01-02T15:04:05Z07:00")},
		},
	}, nil
}

// RenderMetadataJSON is RenderMetadata marshaled for transport.
func (s *Service) RenderMetadataJSON(ctx context.Context, tokenID uint64) ([]byte, error) {
	meta, err := s.RenderMetadata(ctx, tokenID)
	if err != nil {
		return nil, err
	}
	return json.Marshal(meta)
}

func (s *Service) credential(ctx context.Context, tokenID uint64) (domain.Credential, error) {
	cred, err := s.store.ByTokenID(ctx, tokenID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return domain.Credential{}, ErrNotFound
		}
		return domain.Credential{}, dErrors.Wrap(dErrors.CodeInternal, "get credential", err)
	}
	return cred, nil
}

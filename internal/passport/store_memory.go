package passport

import (
	"context"
	"sync"
	"time"

	"chainpass/internal/domain"
	id "chainpass/pkg/domain"
	"chainpass/pkg/platform/sentinel"
)

// MemoryStore holds credentials behind one mutex so every write is a single
// indivisible transition, standing in for the hosting ledger's transaction
// model.
type MemoryStore struct {
	mu          sync.RWMutex
	nextTokenID uint64
	byToken     map[uint64]domain.Credential
	byOwner     map[id.Address]uint64
	approvals   map[uint64]domain.Approval
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byToken:   make(map[uint64]domain.Credential),
		byOwner:   make(map[id.Address]uint64),
		approvals: make(map[uint64]domain.Approval),
	}
}

func (s *MemoryStore) Issue(_ context.Context, owner id.Address, tier domain.Tier, score int, issuedAt time.Time) (domain.Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byOwner[owner]; exists {
		return domain.Credential{}, sentinel.ErrConflict
	}

	cred := domain.Credential{
		TokenID:  s.nextTokenID,
		Owner:    owner,
		Tier:     tier,
		Score:    score,
		IssuedAt: issuedAt,
	}
	s.byToken[cred.TokenID] = cred
	s.byOwner[owner] = cred.TokenID
	s.nextTokenID++
	return cred, nil
}

func (s *MemoryStore) ByTokenID(_ context.Context, tokenID uint64) (domain.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if cred, ok := s.byToken[tokenID]; ok {
		return cred, nil
	}
	return domain.Credential{}, sentinel.ErrNotFound
}

func (s *MemoryStore) ByOwner(_ context.Context, owner id.Address) (domain.Credential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if tokenID, ok := s.byOwner[owner]; ok {
		return s.byToken[tokenID], nil
	}
	return domain.Credential{}, sentinel.ErrNotFound
}

func (s *MemoryStore) HasIssued(_ context.Context, owner id.Address) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.byOwner[owner]
	return ok, nil
}

func (s *MemoryStore) SaveApproval(_ context.Context, approval domain.Approval) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byToken[approval.TokenID]; !ok {
		return sentinel.ErrNotFound
	}
	s.approvals[approval.TokenID] = approval
	return nil
}

func (s *MemoryStore) ApprovalFor(_ context.Context, tokenID uint64) (domain.Approval, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if approval, ok := s.approvals[tokenID]; ok {
		return approval, nil
	}
	return domain.Approval{}, sentinel.ErrNotFound
}

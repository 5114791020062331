package passport

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"chainpass/internal/domain"
	id "chainpass/pkg/domain"
	"chainpass/pkg/platform/sentinel"
)

// PostgresStore persists credentials in PostgreSQL. The unique constraint on
// owner is the durable form of the owner->issued set; the insert transaction
// is the single indivisible transition.
type PostgresStore struct {
	db *sql.DB
}

const Schema = `
CREATE TABLE IF NOT EXISTS credentials (
	token_id  BIGINT PRIMARY KEY,
	owner     TEXT NOT NULL UNIQUE,
	tier      TEXT NOT NULL,
	score     INTEGER NOT NULL CHECK (score >= 0),
	issued_at TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS credential_approvals (
	token_id    BIGINT PRIMARY KEY REFERENCES credentials(token_id),
	operator    TEXT NOT NULL,
	approved_at TIMESTAMPTZ NOT NULL
);`

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("ensure credentials schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Issue(ctx context.Context, owner id.Address, tier domain.Tier, score int, issuedAt time.Time) (domain.Credential, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Credential{}, fmt.Errorf("begin issue: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "LOCK TABLE credentials IN EXCLUSIVE MODE"); err != nil {
		return domain.Credential{}, fmt.Errorf("lock credentials: %w", err)
	}

	var next uint64
	if err := tx.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(token_id) + 1, 0) FROM credentials").Scan(&next); err != nil {
		return domain.Credential{}, fmt.Errorf("next token id: %w", err)
	}

	cred := domain.Credential{
		TokenID:  next,
		Owner:    owner,
		Tier:     tier,
		Score:    score,
		IssuedAt: issuedAt,
	}
	_, err = tx.ExecContext(ctx,
		"INSERT INTO credentials (token_id, owner, tier, score, issued_at) VALUES ($1, $2, $3, $4, $5)",
		cred.TokenID, cred.Owner.String(), string(cred.Tier), cred.Score, cred.IssuedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return domain.Credential{}, sentinel.ErrConflict
		}
		return domain.Credential{}, fmt.Errorf("insert credential: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return domain.Credential{}, fmt.Errorf("commit issue: %w", err)
	}
	return cred, nil
}

func (s *PostgresStore) ByTokenID(ctx context.Context, tokenID uint64) (domain.Credential, error) {
	return s.scanOne(s.db.QueryRowContext(ctx,
		"SELECT token_id, owner, tier, score, issued_at FROM credentials WHERE token_id = $1", tokenID))
}

func (s *PostgresStore) ByOwner(ctx context.Context, owner id.Address) (domain.Credential, error) {
	return s.scanOne(s.db.QueryRowContext(ctx,
		"SELECT token_id, owner, tier, score, issued_at FROM credentials WHERE owner = $1", owner.String()))
}

func (s *PostgresStore) HasIssued(ctx context.Context, owner id.Address) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		"SELECT EXISTS (SELECT 1 FROM credentials WHERE owner = $1)", owner.String()).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check issued: %w", err)
	}
	return exists, nil
}

func (s *PostgresStore) SaveApproval(ctx context.Context, approval domain.Approval) error {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO credential_approvals (token_id, operator, approved_at)
		SELECT $1, $2, $3 WHERE EXISTS (SELECT 1 FROM credentials WHERE token_id = $1)
		ON CONFLICT (token_id) DO UPDATE SET operator = $2, approved_at = $3`,
		approval.TokenID, approval.Operator.String(), approval.ApprovedAt,
	)
	if err != nil {
		return fmt.Errorf("save approval: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("save approval result: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ApprovalFor(ctx context.Context, tokenID uint64) (domain.Approval, error) {
	var approval domain.Approval
	var operator string
	err := s.db.QueryRowContext(ctx,
		"SELECT token_id, operator, approved_at FROM credential_approvals WHERE token_id = $1",
		tokenID,
	).Scan(&approval.TokenID, &operator, &approval.ApprovedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Approval{}, sentinel.ErrNotFound
		}
		return domain.Approval{}, fmt.Errorf("get approval: %w", err)
	}
	approval.Operator = id.Address(operator)
	return approval, nil
}

func (s *PostgresStore) scanOne(row *sql.Row) (domain.Credential, error) {
	var cred domain.Credential
	var owner, tier string
	err := row.Scan(&cred.TokenID, &owner, &tier, &cred.Score, &cred.IssuedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Credential{}, sentinel.ErrNotFound
		}
		return domain.Credential{}, fmt.Errorf("scan credential: %w", err)
	}
	cred.Owner = id.Address(owner)
	cred.Tier = domain.Tier(tier)
	return cred, nil
}

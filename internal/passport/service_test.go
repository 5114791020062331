package passport

import (
	"context"
	"encoding/json"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chainpass/internal/domain"
	"chainpass/internal/events"
	id "chainpass/pkg/domain"
	dErrors "chainpass/pkg/domain-errors"
	"chainpass/pkg/requestcontext"
)

var (
	alice    = id.MustAddress("0x" + strings.Repeat("a1", 20))
	bob      = id.MustAddress("0x" + strings.Repeat("b2", 20))
	operator = id.MustAddress("0x" + strings.Repeat("c3", 20))
)

func newTestService(t *testing.T) (*Service, *events.MemorySink) {
	t.Helper()
	sink := events.NewMemorySink()
	svc := NewService(NewMemoryStore(), events.NewSinkPublisher(sink), nil, nil)
	return svc, sink
}

func asCaller(addr id.Address) context.Context {
	return requestcontext.WithCaller(context.Background(), addr)
}

func TestIssue_SingleIssuancePerIdentity(t *testing.T) {
	svc, sink := newTestService(t)
	issuedAt := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(asCaller(alice), issuedAt)

	first, err := svc.Issue(ctx, 80, domain.TierSilver)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), first.TokenID)
	assert.Equal(t, alice, first.Owner)
	assert.Equal(t, domain.TierSilver, first.Tier)
	assert.Equal(t, 80, first.Score)
	assert.Equal(t, issuedAt, first.IssuedAt)

	t.Run("second issue fails with conflict", func(t *testing.T) {
		later := requestcontext.WithTime(asCaller(alice), issuedAt.Add(time.Hour))
		_, err := svc.Issue(later, 100, domain.TierGold)
		require.ErrorIs(t, err, ErrAlreadyIssued)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
	})

	t.Run("first credential is untouched by the failed attempt", func(t *testing.T) {
		cred, err := svc.Credential(context.Background(), first.TokenID)
		require.NoError(t, err)
		assert.Equal(t, first, cred)
	})

	t.Run("exactly one event emitted", func(t *testing.T) {
		emitted := sink.List()
		require.Len(t, emitted, 1)
		assert.Equal(t, events.KindCredentialIssued, emitted[0].Kind)

		var payload events.CredentialIssued
		require.NoError(t, json.Unmarshal(emitted[0].Payload, &payload))
		assert.Equal(t, alice, payload.Owner)
		assert.Equal(t, uint64(0), payload.TokenID)
		assert.Equal(t, domain.TierSilver, payload.Tier)
		assert.Equal(t, 80, payload.Score)
	})
}

func TestIssue_SequentialTokenIDs(t *testing.T) {
	svc, _ := newTestService(t)

	credA, err := svc.Issue(asCaller(alice), 10, domain.TierBronze)
	require.NoError(t, err)
	credB, err := svc.Issue(asCaller(bob), 100, domain.TierGold)
	require.NoError(t, err)

	assert.Equal(t, uint64(0), credA.TokenID)
	assert.Equal(t, uint64(1), credB.TokenID)
}

// stallingPublisher delays the first emission so a racing second issuance
// could overtake it on the stream if emission ran outside the write lock.
type stallingPublisher struct {
	sink  events.Sink
	stall time.Duration
	seen  atomic.Int32
}

func (p *stallingPublisher) Emit(ctx context.Context, event events.Event) error {
	if p.seen.Add(1) == 1 {
		time.Sleep(p.stall)
	}
	return p.sink.Append(ctx, event)
}

func TestIssue_ConcurrentIssuancesKeepStreamOrder(t *testing.T) {
	sink := events.NewMemorySink()
	pub := &stallingPublisher{sink: sink, stall: 60 * time.Millisecond}
	svc := NewService(NewMemoryStore(), pub, nil, nil)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := svc.Issue(asCaller(alice), 40, domain.TierBronze)
		assert.NoError(t, err)
	}()
	// Let the first issuance commit and enter its stalled emission.
	time.Sleep(20 * time.Millisecond)
	_, err := svc.Issue(asCaller(bob), 60, domain.TierSilver)
	require.NoError(t, err)
	<-done

	emitted := sink.List()
	require.Len(t, emitted, 2)
	for i, event := range emitted {
		var payload events.CredentialIssued
		require.NoError(t, json.Unmarshal(event.Payload, &payload))
		assert.Equal(t, uint64(i), payload.TokenID)
	}
	var first events.CredentialIssued
	require.NoError(t, json.Unmarshal(emitted[0].Payload, &first))
	assert.Equal(t, alice, first.Owner)
}

func TestIssue_Validation(t *testing.T) {
	svc, sink := newTestService(t)

	t.Run("tier outside the closed set", func(t *testing.T) {
		_, err := svc.Issue(asCaller(alice), 50, domain.Tier("platinum"))
		require.ErrorIs(t, err, ErrInvalidTier)
	})

	t.Run("negative score", func(t *testing.T) {
		_, err := svc.Issue(asCaller(alice), -1, domain.TierBronze)
		require.ErrorIs(t, err, ErrNegativeScore)
	})

	t.Run("anonymous caller", func(t *testing.T) {
		_, err := svc.Issue(context.Background(), 50, domain.TierSilver)
		require.ErrorIs(t, err, ErrNoCaller)
	})

	t.Run("failed issuance mutates nothing", func(t *testing.T) {
		has, err := svc.store.HasIssued(context.Background(), alice)
		require.NoError(t, err)
		assert.False(t, has)
		assert.Empty(t, sink.List())
	})
}

// Every transfer-style operation fails for every caller, including the owner,
// an approved operator, self-transfer, and the zero-address (burn) case.
func TestTransfer_AlwaysFails(t *testing.T) {
	svc, _ := newTestService(t)
	cred, err := svc.Issue(asCaller(alice), 100, domain.TierGold)
	require.NoError(t, err)

	cases := map[string]struct {
		caller id.Address
		to     id.Address
	}{
		"owner to third party":  {alice, bob},
		"owner to self":         {alice, alice},
		"owner to zero address": {alice, id.ZeroAddress},
		"non-owner":             {bob, bob},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			err := svc.Transfer(asCaller(tc.caller), cred.TokenID, tc.to)
			require.ErrorIs(t, err, ErrNonTransferable)
		})
	}

	t.Run("burn fails identically", func(t *testing.T) {
		err := svc.Burn(asCaller(alice), cred.TokenID)
		require.ErrorIs(t, err, ErrNonTransferable)
	})

	t.Run("ownership is unchanged afterwards", func(t *testing.T) {
		after, err := svc.Credential(context.Background(), cred.TokenID)
		require.NoError(t, err)
		assert.Equal(t, alice, after.Owner)
	})
}

// Approval bookkeeping succeeds but never enables a transfer to complete.
func TestApprove_DecoupledFromTransfer(t *testing.T) {
	svc, _ := newTestService(t)
	cred, err := svc.Issue(asCaller(alice), 60, domain.TierSilver)
	require.NoError(t, err)

	approval, err := svc.Approve(asCaller(alice), cred.TokenID, operator)
	require.NoError(t, err)
	assert.Equal(t, operator, approval.Operator)

	stored, err := svc.ApprovalFor(context.Background(), cred.TokenID)
	require.NoError(t, err)
	assert.Equal(t, operator, stored.Operator)

	t.Run("approved operator still cannot transfer", func(t *testing.T) {
		err := svc.Transfer(asCaller(operator), cred.TokenID, operator)
		require.ErrorIs(t, err, ErrNonTransferable)
	})

	t.Run("only the owner may approve", func(t *testing.T) {
		_, err := svc.Approve(asCaller(bob), cred.TokenID, bob)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeForbidden))
	})

	t.Run("approving an unknown token fails", func(t *testing.T) {
		_, err := svc.Approve(asCaller(alice), 999, operator)
		require.ErrorIs(t, err, ErrNotFound)
	})
}

func TestReadAccessors(t *testing.T) {
	svc, _ := newTestService(t)
	issuedAt := time.Date(2026, 4, 2, 8, 30, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(asCaller(alice), issuedAt)
	cred, err := svc.Issue(ctx, 100, domain.TierGold)
	require.NoError(t, err)

	tier, err := svc.Tier(context.Background(), cred.TokenID)
	require.NoError(t, err)
	assert.Equal(t, domain.TierGold, tier)

	score, err := svc.Score(context.Background(), cred.TokenID)
	require.NoError(t, err)
	assert.Equal(t, 100, score)

	at, err := svc.IssuedAt(context.Background(), cred.TokenID)
	require.NoError(t, err)
	assert.Equal(t, issuedAt, at)

	byOwner, err := svc.CredentialOf(context.Background(), alice)
	require.NoError(t, err)
	assert.Equal(t, cred, byOwner)
}

func TestReadAccessors_UnknownTokenIsNotFound(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Tier(context.Background(), 0)
	require.ErrorIs(t, err, ErrNotFound)
	_, err = svc.Score(context.Background(), 42)
	require.ErrorIs(t, err, ErrNotFound)
	_, err = svc.IssuedAt(context.Background(), 42)
	require.ErrorIs(t, err, ErrNotFound)
	_, err = svc.RenderMetadata(context.Background(), 42)
	require.ErrorIs(t, err, ErrNotFound)
	_, err = svc.CredentialOf(context.Background(), bob)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRenderMetadata(t *testing.T) {
	svc, _ := newTestService(t)
	issuedAt := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(asCaller(alice), issuedAt)
	cred, err := svc.Issue(ctx, 100, domain.TierGold)
	require.NoError(t, err)

	meta, err := svc.RenderMetadata(context.Background(), cred.TokenID)
	require.NoError(t, err)

	assert.Equal(t, "Chainpass Credential #0", meta.Name)
	assert.Contains(t, meta.Description, "Gold")
	assert.Contains(t, meta.Description, "100")
	assert.Contains(t, meta.Description, alice.String())

	require.Len(t, meta.Attributes, 3)
	assert.Equal(t, "Gold", meta.Attributes[0].Value)
	assert.Equal(t, 100, meta.Attributes[1].Value)
	assert.Equal(t, "2026-05-01T00:00:00Z", meta.Attributes[2].Value)

	raw, err := svc.RenderMetadataJSON(context.Background(), cred.TokenID)
	require.NoError(t, err)
	assert.True(t, json.Valid(raw))
}

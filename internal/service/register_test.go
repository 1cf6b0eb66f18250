package service

import (
	"context"
	"testing"

	"github.com/sardorbek/referral_bot/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestRegisterMemberIdempotent(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	created, err := s.RegisterMember(ctx, 10, "alice", nil)
	require.NoError(t, err)
	require.True(t, created)

	created, err = s.RegisterMember(ctx, 20, "bob", ref(10))
	require.NoError(t, err)
	require.True(t, created)
	requireBalance(t, s, 10, 100)

	// Second registration of the same id is a no-op: no new rewards, no
	// counter change.
	created, err = s.RegisterMember(ctx, 20, "bob-again", ref(10))
	require.NoError(t, err)
	require.False(t, created)

	requireBalance(t, s, 10, 100)
	alice, err := s.GetMember(ctx, 10)
	require.NoError(t, err)
	require.Equal(t, 1, alice.ReferralCount)

	txs, err := s.ListMemberTransactions(ctx, 10)
	require.NoError(t, err)
	require.Len(t, txs, 1)
}

func TestRegisterChainDistributesLevelRewards(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	// A <- B <- C <- D <- E, then F joins via E.
	registerChain(t, s, 1, 2, 3, 4, 5)

	before := map[int64]decimal.Decimal{}
	for id := int64(1); id <= 5; id++ {
		m, err := s.GetMember(ctx, id)
		require.NoError(t, err)
		before[id] = m.Balance
	}

	created, err := s.RegisterMember(ctx, 6, "F", ref(5))
	require.NoError(t, err)
	require.True(t, created)

	// Levels relative to F: E=1, D=2, C=3, B=4, A=5.
	expected := map[int64]int64{5: 100, 4: 50, 3: 25, 2: 10, 1: 5}
	for id, delta := range expected {
		m, err := s.GetMember(ctx, id)
		require.NoError(t, err)
		want := before[id].Add(decimal.NewFromInt(delta))
		require.True(t, m.Balance.Equal(want), "member %d: expected %s, got %s", id, want, m.Balance)
	}

	// Only the direct referrer's counter moves.
	e, err := s.GetMember(ctx, 5)
	require.NoError(t, err)
	require.Equal(t, 1, e.ReferralCount)
	a, err := s.GetMember(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, 1, a.ReferralCount) // from B's registration only
}

func TestRegisterRewardsStopAtMaxLevel(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	registerChain(t, s, 1, 2, 3, 4, 5, 6)

	a, err := s.GetMember(ctx, 1)
	require.NoError(t, err)
	balanceBefore := a.Balance

	// G joins via 6; member 1 is its level-6 ancestor and earns nothing.
	created, err := s.RegisterMember(ctx, 7, "G", ref(6))
	require.NoError(t, err)
	require.True(t, created)

	a, err = s.GetMember(ctx, 1)
	require.NoError(t, err)
	require.True(t, a.Balance.Equal(balanceBefore))
}

func TestRegisterBonusTransactionShape(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	registerChain(t, s, 1, 2)

	txs, err := s.ListMemberTransactions(ctx, 1)
	require.NoError(t, err)
	require.Len(t, txs, 1)

	bonus := txs[0]
	require.Equal(t, models.TxTypeBonus, bonus.Type)
	require.Equal(t, models.TxStatusApproved, bonus.Status)
	require.Equal(t, "system", bonus.Method)
	require.True(t, bonus.Amount.Equal(decimal.NewFromInt(100)))
	require.NotNil(t, bonus.ProcessedAt)
	require.NotNil(t, bonus.AdminID)
	require.Equal(t, testOwnerID, *bonus.AdminID)
	require.Contains(t, bonus.Note, "Referral level 1 bonus from new user 2")
}

func TestRegisterUnknownReferrer(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	created, err := s.RegisterMember(ctx, 10, "orphan", ref(999))
	require.NoError(t, err)
	require.True(t, created)

	member, err := s.GetMember(ctx, 10)
	require.NoError(t, err)
	require.Nil(t, member.ReferrerID)
	require.Equal(t, models.RoleGuest, member.Role)
	require.True(t, member.Balance.Equal(decimal.Zero))

	txs, err := s.ListMemberTransactions(ctx, 10)
	require.NoError(t, err)
	require.Empty(t, txs)
}

func TestRegisterBlockedAncestorPolicy(t *testing.T) {
	t.Run("blocked ancestors rewarded by default", func(t *testing.T) {
		s := newTestService(t)
		ctx := context.Background()

		registerChain(t, s, 1, 2)
		require.NoError(t, s.SetBlocked(ctx, 1, true))

		created, err := s.RegisterMember(ctx, 3, "C", ref(2))
		require.NoError(t, err)
		require.True(t, created)

		// Member 1 is blocked but still earns the level-2 bonus.
		requireBalance(t, s, 1, 100+50)
	})

	t.Run("blocked ancestors skipped when disabled", func(t *testing.T) {
		s := newTestServiceWithPolicy(t, RewardPolicy{
			LevelRewards:           DefaultLevelRewards(),
			RewardBlockedAncestors: false,
			OwnerID:                testOwnerID,
		})
		ctx := context.Background()

		registerChain(t, s, 1, 2)
		require.NoError(t, s.SetBlocked(ctx, 1, true))

		created, err := s.RegisterMember(ctx, 3, "C", ref(2))
		require.NoError(t, err)
		require.True(t, created)

		// No level-2 credit for the blocked ancestor; level 1 still paid, and
		// the skipped level is consumed, not shifted downward.
		requireBalance(t, s, 1, 100)
		requireBalance(t, s, 2, 100)
	})
}

package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/sardorbek/referral_bot/internal/models"
	"github.com/sardorbek/referral_bot/internal/repository"
	"github.com/sardorbek/referral_bot/utils"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

const testOwnerID = int64(1000)

func newTestService(t *testing.T) *Service {
	return newTestServiceWithPolicy(t, RewardPolicy{
		LevelRewards:           DefaultLevelRewards(),
		RewardBlockedAncestors: true,
		OwnerID:                testOwnerID,
	})
}

func newTestServiceWithPolicy(t *testing.T, policy RewardPolicy) *Service {
	t.Helper()
	// Per-test in-memory database to avoid cross-test interference.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormLogger.Default.LogMode(gormLogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Member{}, &models.Transaction{}))

	logger := utils.InitLogger()
	return NewService(repository.NewRepository(db, logger), policy, logger)
}

func ref(id int64) *int64 {
	return &id
}

// registerChain registers the given ids in order, each referred by the
// previous one. The first id is registered unreferred.
func registerChain(t *testing.T, s *Service, ids ...int64) {
	t.Helper()
	ctx := context.Background()
	for i, id := range ids {
		var referrer *int64
		if i > 0 {
			referrer = ref(ids[i-1])
		}
		created, err := s.RegisterMember(ctx, id, fmt.Sprintf("member-%d", id), referrer)
		require.NoError(t, err)
		require.True(t, created)
	}
}

func requireBalance(t *testing.T, s *Service, id int64, expected int64) {
	t.Helper()
	member, err := s.GetMember(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, member)
	require.True(t, member.Balance.Equal(decimal.NewFromInt(expected)),
		"member %d: expected balance %d, got %s", id, expected, member.Balance)
}

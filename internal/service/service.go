package service

import (
	"context"
	"errors"

	"github.com/sardorbek/referral_bot/internal/models"
	"github.com/sardorbek/referral_bot/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrInvalidAmount  = errors.New("amount must be positive")
	ErrMemberNotFound = errors.New("member not found")
	ErrInvalidRole    = errors.New("invalid role")
)

// Outcome is the result of processing a withdrawal or a manual payout.
// Expected, recoverable results are reported here rather than as errors; the
// presentation layer decides what text to show for each.
type Outcome string

const (
	OutcomeNotFound            Outcome = "not_found"
	OutcomeAlreadyProcessed    Outcome = "already_processed"
	OutcomeUserNotFound        Outcome = "user_not_found"
	OutcomeInsufficientBalance Outcome = "insufficient_balance"
	OutcomeApproved            Outcome = "approved"
	OutcomeDeclined            Outcome = "declined"
	OutcomeOk                  Outcome = "ok"
)

// RewardPolicy configures reward distribution. It is injected into the
// service instead of living in package-level state.
type RewardPolicy struct {
	LevelRewards           map[int]decimal.Decimal
	RewardBlockedAncestors bool
	OwnerID                int64
}

func (p RewardPolicy) MaxRewardLevel() int {
	max := 0
	for level := range p.LevelRewards {
		if level > max {
			max = level
		}
	}
	return max
}

func DefaultLevelRewards() map[int]decimal.Decimal {
	return map[int]decimal.Decimal{
		1: decimal.NewFromInt(100),
		2: decimal.NewFromInt(50),
		3: decimal.NewFromInt(25),
		4: decimal.NewFromInt(10),
		5: decimal.NewFromInt(5),
	}
}

type Service struct {
	repo   Repository
	policy RewardPolicy
	logger *utils.Logger
}

type Repository interface {
	GetMember(ctx context.Context, tx *gorm.DB, id int64) (*models.Member, error)
	CreateMember(ctx context.Context, tx *gorm.DB, member *models.Member) error
	IncrementReferralCount(ctx context.Context, tx *gorm.DB, id int64) error
	CreditBalance(ctx context.Context, tx *gorm.DB, id int64, amount decimal.Decimal) error
	DebitBalanceIfSufficient(ctx context.Context, tx *gorm.DB, id int64, amount decimal.Decimal) (bool, error)
	GetChildren(ctx context.Context, id int64) ([]*models.Member, error)
	ListChildIDs(ctx context.Context, id int64) ([]int64, error)
	ListMembers(ctx context.Context, offset, limit int) ([]*models.Member, int64, error)
	UpdateMemberRole(ctx context.Context, id int64, role models.Role) (bool, error)
	UpdateMemberBlocked(ctx context.Context, id int64, blocked bool) (bool, error)

	GetTransaction(ctx context.Context, tx *gorm.DB, id int64) (*models.Transaction, error)
	CreateTransaction(ctx context.Context, tx *gorm.DB, trx *models.Transaction) error
	ClaimPendingTransaction(ctx context.Context, tx *gorm.DB, id int64, status models.TxStatus, adminID int64, noteSuffix string) (bool, error)
	SetTransactionStatus(ctx context.Context, tx *gorm.DB, id int64, status models.TxStatus, noteSuffix string) error
	ListPendingWithdrawals(ctx context.Context) ([]*models.Transaction, error)
	ListMemberTransactions(ctx context.Context, memberID int64) ([]*models.Transaction, error)

	BeginTransaction(ctx context.Context) (*gorm.DB, error)
	Commit(tx *gorm.DB) error
	Rollback(tx *gorm.DB)
}

func NewService(repo Repository, policy RewardPolicy, logger *utils.Logger) *Service {
	if policy.LevelRewards == nil {
		policy.LevelRewards = DefaultLevelRewards()
	}
	return &Service{
		repo:   repo,
		policy: policy,
		logger: logger,
	}
}

func (s *Service) GetMember(ctx context.Context, id int64) (*models.Member, error) {
	return s.repo.GetMember(ctx, nil, id)
}

func (s *Service) GetTransaction(ctx context.Context, id int64) (*models.Transaction, error) {
	return s.repo.GetTransaction(ctx, nil, id)
}

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sardorbek/referral_bot/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// RegisterMember creates a member and distributes level rewards up the
// referrer chain. It returns false when the id is already registered, in
// which case nothing is changed — this makes duplicate /start invocations
// safe. The member insert, the referrer counter increment and every ancestor
// credit commit as one unit of work.
func (s *Service) RegisterMember(ctx context.Context, id int64, displayName string, referrerID *int64) (bool, error) {
	existing, err := s.repo.GetMember(ctx, nil, id)
	if err != nil {
		return false, err
	}
	if existing != nil {
		return false, nil
	}

	tx, err := s.repo.BeginTransaction(ctx)
	if err != nil {
		return false, err
	}

	var referrer *models.Member
	if referrerID != nil {
		referrer, err = s.repo.GetMember(ctx, tx, *referrerID)
		if err != nil {
			s.repo.Rollback(tx)
			return false, err
		}
	}

	member := &models.Member{
		ID:          id,
		DisplayName: displayName,
		Role:        models.RoleGuest,
		Balance:     decimal.Zero,
	}
	// An unknown referrer id is dropped: the member is created unreferred.
	if referrer != nil {
		member.ReferrerID = referrerID
	}

	if err := s.repo.CreateMember(ctx, tx, member); err != nil {
		s.repo.Rollback(tx)
		// The primary key is the arbiter between concurrent registrations of
		// the same id; the loser rolls back fully and reports "already exists".
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return false, nil
		}
		return false, fmt.Errorf("failed to create member %d: %w", id, err)
	}

	if referrer != nil {
		if err := s.repo.IncrementReferralCount(ctx, tx, referrer.ID); err != nil {
			s.repo.Rollback(tx)
			return false, err
		}
		if err := s.distributeRewards(ctx, tx, referrer, id); err != nil {
			s.repo.Rollback(tx)
			return false, err
		}
	}

	if err := s.repo.Commit(tx); err != nil {
		return false, err
	}

	s.logger.Infof("Registered member %d (referrer: %v)", id, referrerID)
	return true, nil
}

// distributeRewards walks the chain leaf-to-root starting at the direct
// referrer, fetching the eligible ancestors up front and then applying all
// credits, so the lock-acquisition order is consistent across racing
// registrations on overlapping chains.
func (s *Service) distributeRewards(ctx context.Context, tx *gorm.DB, referrer *models.Member, newMemberID int64) error {
	maxLevel := s.policy.MaxRewardLevel()

	ancestors := make([]*models.Member, 0, maxLevel)
	current := referrer
	for current != nil && len(ancestors) < maxLevel {
		ancestors = append(ancestors, current)
		if current.ReferrerID == nil {
			break
		}
		next, err := s.repo.GetMember(ctx, tx, *current.ReferrerID)
		if err != nil {
			return err
		}
		current = next
	}

	now := time.Now().UTC()
	for i, ancestor := range ancestors {
		level := i + 1
		reward, ok := s.policy.LevelRewards[level]
		if !ok || reward.IsZero() {
			continue
		}
		if ancestor.Blocked && !s.policy.RewardBlockedAncestors {
			s.logger.Debugf("Skipping level %d reward: ancestor %d is blocked", level, ancestor.ID)
			continue
		}

		if err := s.repo.CreditBalance(ctx, tx, ancestor.ID, reward); err != nil {
			return err
		}

		processedAt := now
		adminID := s.policy.OwnerID
		bonus := &models.Transaction{
			MemberID:    ancestor.ID,
			Amount:      reward,
			Type:        models.TxTypeBonus,
			Method:      "system",
			Status:      models.TxStatusApproved,
			ProcessedAt: &processedAt,
			AdminID:     &adminID,
			Note:        fmt.Sprintf("Referral level %d bonus from new user %d", level, newMemberID),
		}
		if err := s.repo.CreateTransaction(ctx, tx, bonus); err != nil {
			return err
		}
	}
	return nil
}

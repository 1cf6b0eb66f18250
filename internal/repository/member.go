package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/sardorbek/referral_bot/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func (r *Repository) GetMember(ctx context.Context, tx *gorm.DB, id int64) (*models.Member, error) {
	var member models.Member
	err := r.conn(tx).WithContext(ctx).First(&member, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get member %d: %w", id, err)
	}
	return &member, nil
}

// CreateMember inserts a new member row. The primary-key constraint is the
// arbiter for concurrent registrations of the same id: the loser gets
// gorm.ErrDuplicatedKey and must roll back.
func (r *Repository) CreateMember(ctx context.Context, tx *gorm.DB, member *models.Member) error {
	return r.conn(tx).WithContext(ctx).Create(member).Error
}

func (r *Repository) IncrementReferralCount(ctx context.Context, tx *gorm.DB, id int64) error {
	res := r.conn(tx).WithContext(ctx).
		Model(&models.Member{}).
		Where("id = ?", id).
		Update("referral_count", gorm.Expr("referral_count + 1"))
	if res.Error != nil {
		return fmt.Errorf("failed to increment referral count for %d: %w", id, res.Error)
	}
	return nil
}

func (r *Repository) CreditBalance(ctx context.Context, tx *gorm.DB, id int64, amount decimal.Decimal) error {
	res := r.conn(tx).WithContext(ctx).
		Model(&models.Member{}).
		Where("id = ?", id).
		Update("balance", gorm.Expr("balance + ?", amount))
	if res.Error != nil {
		return fmt.Errorf("failed to credit member %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("member %d not found for credit", id)
	}
	return nil
}

// DebitBalanceIfSufficient deducts amount from the member's balance in a
// single conditional UPDATE. It reports false when the balance is below
// amount (or the member vanished), which keeps balance >= 0 enforced by the
// statement itself rather than a read-then-write pair.
func (r *Repository) DebitBalanceIfSufficient(ctx context.Context, tx *gorm.DB, id int64, amount decimal.Decimal) (bool, error) {
	res := r.conn(tx).WithContext(ctx).
		Model(&models.Member{}).
		Where("id = ? AND balance >= ?", id, amount).
		Update("balance", gorm.Expr("balance - ?", amount))
	if res.Error != nil {
		return false, fmt.Errorf("failed to debit member %d: %w", id, res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *Repository) GetChildren(ctx context.Context, id int64) ([]*models.Member, error) {
	var children []*models.Member
	err := r.db.WithContext(ctx).
		Where("referrer_id = ?", id).
		Order("created_at ASC, id ASC").
		Find(&children).
		Error
	if err != nil {
		return nil, fmt.Errorf("failed to get children of %d: %w", id, err)
	}
	return children, nil
}

func (r *Repository) ListChildIDs(ctx context.Context, id int64) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).
		Model(&models.Member{}).
		Where("referrer_id = ?", id).
		Order("created_at ASC, id ASC").
		Pluck("id", &ids).
		Error
	if err != nil {
		return nil, fmt.Errorf("failed to list child ids of %d: %w", id, err)
	}
	return ids, nil
}

func (r *Repository) ListMembers(ctx context.Context, offset, limit int) ([]*models.Member, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Member{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count members: %w", err)
	}

	var members []*models.Member
	err := r.db.WithContext(ctx).
		Order("created_at ASC, id ASC").
		Offset(offset).
		Limit(limit).
		Find(&members).
		Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list members: %w", err)
	}
	return members, total, nil
}

func (r *Repository) UpdateMemberRole(ctx context.Context, id int64, role models.Role) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Member{}).
		Where("id = ?", id).
		Update("role", role)
	if res.Error != nil {
		return false, fmt.Errorf("failed to update role for %d: %w", id, res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *Repository) UpdateMemberBlocked(ctx context.Context, id int64, blocked bool) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Member{}).
		Where("id = ?", id).
		Update("blocked", blocked)
	if res.Error != nil {
		return false, fmt.Errorf("failed to update blocked flag for %d: %w", id, res.Error)
	}
	return res.RowsAffected > 0, nil
}

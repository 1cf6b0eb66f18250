package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sardorbek/referral_bot/internal/models"
	"gorm.io/gorm"
)

func (r *Repository) GetTransaction(ctx context.Context, tx *gorm.DB, id int64) (*models.Transaction, error) {
	var trx models.Transaction
	err := r.conn(tx).WithContext(ctx).First(&trx, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get transaction %d: %w", id, err)
	}
	return &trx, nil
}

func (r *Repository) CreateTransaction(ctx context.Context, tx *gorm.DB, trx *models.Transaction) error {
	return r.conn(tx).WithContext(ctx).Create(trx).Error
}

// ClaimPendingTransaction flips a pending transaction to a terminal status,
// stamping processed_at and admin_id and appending to the note. The
// status = 'pending' condition is the arbiter between racing processors:
// exactly one caller observes RowsAffected == 1.
func (r *Repository) ClaimPendingTransaction(ctx context.Context, tx *gorm.DB, id int64, status models.TxStatus, adminID int64, noteSuffix string) (bool, error) {
	res := r.conn(tx).WithContext(ctx).
		Model(&models.Transaction{}).
		Where("id = ? AND status = ?", id, models.TxStatusPending).
		Updates(map[string]interface{}{
			"status":       status,
			"processed_at": time.Now().UTC(),
			"admin_id":     adminID,
			"note":         gorm.Expr("note || ?", noteSuffix),
		})
	if res.Error != nil {
		return false, fmt.Errorf("failed to claim transaction %d: %w", id, res.Error)
	}
	return res.RowsAffected > 0, nil
}

// SetTransactionStatus overrides the status of an already-claimed transaction
// within the same unit of work, e.g. approve claimed but the balance check
// failed so the claim is downgraded to declined before commit.
func (r *Repository) SetTransactionStatus(ctx context.Context, tx *gorm.DB, id int64, status models.TxStatus, noteSuffix string) error {
	updates := map[string]interface{}{"status": status}
	if noteSuffix != "" {
		updates["note"] = gorm.Expr("note || ?", noteSuffix)
	}
	err := r.conn(tx).WithContext(ctx).
		Model(&models.Transaction{}).
		Where("id = ?", id).
		Updates(updates).
		Error
	if err != nil {
		return fmt.Errorf("failed to set status of transaction %d: %w", id, err)
	}
	return nil
}

func (r *Repository) ListPendingWithdrawals(ctx context.Context) ([]*models.Transaction, error) {
	var pending []*models.Transaction
	err := r.db.WithContext(ctx).
		Where("type = ? AND status = ?", models.TxTypeWithdraw, models.TxStatusPending).
		Order("created_at ASC, id ASC").
		Find(&pending).
		Error
	if err != nil {
		return nil, fmt.Errorf("failed to get pending withdrawals: %w", err)
	}
	return pending, nil
}

func (r *Repository) ListMemberTransactions(ctx context.Context, memberID int64) ([]*models.Transaction, error) {
	var txs []*models.Transaction
	err := r.db.WithContext(ctx).
		Where("member_id = ?", memberID).
		Order("created_at DESC, id DESC").
		Find(&txs).
		Error
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions for member %d: %w", memberID, err)
	}
	return txs, nil
}

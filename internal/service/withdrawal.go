package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sardorbek/referral_bot/internal/models"
	"github.com/shopspring/decimal"
)

// RequestWithdraw creates a pending withdrawal. The balance is deliberately
// not checked here: requests queue up first-come and funds are verified when
// an admin actually processes them.
func (s *Service) RequestWithdraw(ctx context.Context, memberID int64, amount decimal.Decimal, method, note string) (*models.Transaction, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInvalidAmount
	}

	member, err := s.repo.GetMember(ctx, nil, memberID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, ErrMemberNotFound
	}

	if method == "" {
		method = "manual"
	}
	trx := &models.Transaction{
		MemberID: memberID,
		Amount:   amount,
		Type:     models.TxTypeWithdraw,
		Method:   method,
		Status:   models.TxStatusPending,
		Note:     note,
	}
	if err := s.repo.CreateTransaction(ctx, nil, trx); err != nil {
		return nil, fmt.Errorf("failed to create withdrawal request: %w", err)
	}

	s.logger.Infof("Withdrawal request #%d: member %d, amount %s", trx.ID, memberID, amount.StringFixed(2))
	return trx, nil
}

// ProcessWithdraw drives the single pending -> approved|declined transition.
// Approval re-checks the member's balance; an insufficient balance declines
// the request without deducting anything. All steps run in one unit of work.
func (s *Service) ProcessWithdraw(ctx context.Context, txID, adminID int64, approve bool, note string) (Outcome, error) {
	tx, err := s.repo.BeginTransaction(ctx)
	if err != nil {
		return "", err
	}

	trx, err := s.repo.GetTransaction(ctx, tx, txID)
	if err != nil {
		s.repo.Rollback(tx)
		return "", err
	}
	if trx == nil {
		s.repo.Rollback(tx)
		return OutcomeNotFound, nil
	}
	if trx.Status != models.TxStatusPending {
		s.repo.Rollback(tx)
		return OutcomeAlreadyProcessed, nil
	}

	if !approve {
		claimed, err := s.repo.ClaimPendingTransaction(ctx, tx, txID, models.TxStatusDeclined, adminID, processedNote("declined", adminID, note))
		if err != nil {
			s.repo.Rollback(tx)
			return "", err
		}
		if !claimed {
			s.repo.Rollback(tx)
			return OutcomeAlreadyProcessed, nil
		}
		if err := s.repo.Commit(tx); err != nil {
			return "", err
		}
		return OutcomeDeclined, nil
	}

	// Claim first with an empty note: the conditional flip is the arbiter
	// between racing processors. The final note depends on the balance check.
	claimed, err := s.repo.ClaimPendingTransaction(ctx, tx, txID, models.TxStatusApproved, adminID, "")
	if err != nil {
		s.repo.Rollback(tx)
		return "", err
	}
	if !claimed {
		s.repo.Rollback(tx)
		return OutcomeAlreadyProcessed, nil
	}

	member, err := s.repo.GetMember(ctx, tx, trx.MemberID)
	if err != nil {
		s.repo.Rollback(tx)
		return "", err
	}
	if member == nil {
		if err := s.repo.SetTransactionStatus(ctx, tx, txID, models.TxStatusDeclined, ""); err != nil {
			s.repo.Rollback(tx)
			return "", err
		}
		if err := s.repo.Commit(tx); err != nil {
			return "", err
		}
		return OutcomeUserNotFound, nil
	}

	deducted, err := s.repo.DebitBalanceIfSufficient(ctx, tx, trx.MemberID, trx.Amount)
	if err != nil {
		s.repo.Rollback(tx)
		return "", err
	}
	if !deducted {
		if err := s.repo.SetTransactionStatus(ctx, tx, txID, models.TxStatusDeclined, " | declined: insufficient balance"); err != nil {
			s.repo.Rollback(tx)
			return "", err
		}
		if err := s.repo.Commit(tx); err != nil {
			return "", err
		}
		return OutcomeInsufficientBalance, nil
	}

	if err := s.repo.SetTransactionStatus(ctx, tx, txID, models.TxStatusApproved, processedNote("approved", adminID, note)); err != nil {
		s.repo.Rollback(tx)
		return "", err
	}
	if err := s.repo.Commit(tx); err != nil {
		return "", err
	}

	s.logger.Infof("Withdrawal #%d approved by %d", txID, adminID)
	return OutcomeApproved, nil
}

// ManualPayout debits a member directly, recording an already-approved
// manual transaction. The pending phase is skipped because the admin action
// is presumed authorized.
func (s *Service) ManualPayout(ctx context.Context, adminID, memberID int64, amount decimal.Decimal, method, note string) (Outcome, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return "", ErrInvalidAmount
	}

	tx, err := s.repo.BeginTransaction(ctx)
	if err != nil {
		return "", err
	}

	member, err := s.repo.GetMember(ctx, tx, memberID)
	if err != nil {
		s.repo.Rollback(tx)
		return "", err
	}
	if member == nil {
		s.repo.Rollback(tx)
		return OutcomeUserNotFound, nil
	}

	deducted, err := s.repo.DebitBalanceIfSufficient(ctx, tx, memberID, amount)
	if err != nil {
		s.repo.Rollback(tx)
		return "", err
	}
	if !deducted {
		s.repo.Rollback(tx)
		return OutcomeInsufficientBalance, nil
	}

	if method == "" {
		method = "manual"
	}
	now := time.Now().UTC()
	trx := &models.Transaction{
		MemberID:    memberID,
		Amount:      amount,
		Type:        models.TxTypeManual,
		Method:      method,
		Status:      models.TxStatusApproved,
		ProcessedAt: &now,
		AdminID:     &adminID,
		Note:        note,
	}
	if err := s.repo.CreateTransaction(ctx, tx, trx); err != nil {
		s.repo.Rollback(tx)
		return "", err
	}

	if err := s.repo.Commit(tx); err != nil {
		return "", err
	}

	s.logger.Infof("Manual payout: %s to member %d by admin %d", amount.StringFixed(2), memberID, adminID)
	return OutcomeOk, nil
}

func (s *Service) ListPendingWithdrawals(ctx context.Context) ([]*models.Transaction, error) {
	return s.repo.ListPendingWithdrawals(ctx)
}

func (s *Service) ListMemberTransactions(ctx context.Context, memberID int64) ([]*models.Transaction, error) {
	return s.repo.ListMemberTransactions(ctx, memberID)
}

func processedNote(verb string, adminID int64, note string) string {
	if note != "" {
		return fmt.Sprintf(" | %s by %d: %s", verb, adminID, note)
	}
	return fmt.Sprintf(" | %s by %d", verb, adminID)
}

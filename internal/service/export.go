package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/sardorbek/referral_bot/internal/models"
)

// ExportPendingWithdrawalsCSV writes all pending withdrawal requests to w in
// CSV form, oldest first, and returns the number of data rows written. A
// return of 0 means there was nothing pending and nothing was written.
func (s *Service) ExportPendingWithdrawalsCSV(ctx context.Context, w io.Writer) (int, error) {
	pending, err := s.repo.ListPendingWithdrawals(ctx)
	if err != nil {
		return 0, err
	}
	if len(pending) == 0 {
		return 0, nil
	}

	writer := csv.NewWriter(w)
	header := []string{"id", "member_id", "display_name", "amount", "method", "status", "created_at", "note"}
	if err := writer.Write(header); err != nil {
		return 0, fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, trx := range pending {
		displayName := ""
		member, err := s.repo.GetMember(ctx, nil, trx.MemberID)
		if err != nil {
			return 0, err
		}
		if member != nil {
			displayName = member.DisplayName
		}

		record := []string{
			strconv.FormatInt(trx.ID, 10),
			strconv.FormatInt(trx.MemberID, 10),
			displayName,
			trx.Amount.StringFixed(2),
			trx.Method,
			string(trx.Status),
			trx.CreatedAt.Format("2006-01-02 15:04:05"),
			trx.Note,
		}
		if err := writer.Write(record); err != nil {
			return 0, fmt.Errorf("failed to write csv record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return 0, fmt.Errorf("failed to flush csv: %w", err)
	}
	return len(pending), nil
}

// ListMembers returns one page of members in creation order plus the total
// page count. Pages are 1-based.
func (s *Service) ListMembers(ctx context.Context, page, perPage int) ([]*models.Member, int, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}

	members, total, err := s.repo.ListMembers(ctx, (page-1)*perPage, perPage)
	if err != nil {
		return nil, 0, err
	}

	totalPages := int((total + int64(perPage) - 1) / int64(perPage))
	if totalPages < 1 {
		totalPages = 1
	}
	return members, totalPages, nil
}

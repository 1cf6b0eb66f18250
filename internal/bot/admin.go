package bot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/sardorbek/referral_bot/internal/models"
	"github.com/sardorbek/referral_bot/internal/service"
	"github.com/shopspring/decimal"
)

// handleAdminCommand is only reached for callers in the configured admin set;
// the accounting core itself does not authenticate anyone.
func (b *Bot) handleAdminCommand(ctx context.Context, chatID, adminID int64, command, args string) {
	switch command {
	case "withdraw_requests":
		b.handleWithdrawRequests(ctx, chatID)
	case "confirm_withdraw":
		b.handleProcessWithdraw(ctx, chatID, adminID, args, true)
	case "decline_withdraw":
		b.handleProcessWithdraw(ctx, chatID, adminID, args, false)
	case "manual_payout":
		b.handleManualPayout(ctx, chatID, adminID, args)
	case "setrole":
		b.handleSetRole(ctx, chatID, args)
	case "block":
		b.handleSetBlocked(ctx, chatID, args, true)
	case "unblock":
		b.handleSetBlocked(ctx, chatID, args, false)
	case "users":
		b.handleUsers(ctx, chatID, args)
	case "export_withdraws":
		b.handleExportWithdraws(ctx, chatID)
	}
}

func (b *Bot) handleWithdrawRequests(ctx context.Context, chatID int64) {
	pending, err := b.service.ListPendingWithdrawals(ctx)
	if err != nil {
		b.logger.Errorf("Failed to list pending withdrawals: %v", err)
		return
	}
	if len(pending) == 0 {
		b.sendMessage(chatID, "Hozircha pending withdraw so'rovlar yo'q.")
		return
	}
	lines := make([]string, 0, len(pending))
	for _, t := range pending {
		lines = append(lines, fmt.Sprintf(
			"ID:%d | User:%d | %s | created:%s",
			t.ID, t.MemberID, t.Amount.StringFixed(2), t.CreatedAt.Format("2006-01-02 15:04"),
		))
	}
	b.sendMessage(chatID, "🔔 Pending withdraws:\n\n"+strings.Join(lines, "\n")+
		"\n\nUse /confirm_withdraw <tx_id> yoki /decline_withdraw <tx_id>")
}

func (b *Bot) handleProcessWithdraw(ctx context.Context, chatID, adminID int64, args string, approve bool) {
	parts := strings.SplitN(strings.TrimSpace(args), " ", 2)
	txID, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		b.sendMessage(chatID, "Foydalanish: /confirm_withdraw <tx_id> [note]")
		return
	}
	note := ""
	if len(parts) > 1 {
		note = parts[1]
	}

	outcome, err := b.service.ProcessWithdraw(ctx, txID, adminID, approve, note)
	if err != nil {
		b.logger.Errorf("Failed to process withdrawal %d: %v", txID, err)
		b.sendMessage(chatID, "Xatolik yuz berdi. Keyinroq urinib ko'ring.")
		return
	}

	switch outcome {
	case service.OutcomeNotFound:
		b.sendMessage(chatID, "TX topilmadi.")
	case service.OutcomeAlreadyProcessed:
		b.sendMessage(chatID, "TX allaqachon qayta ishlangan.")
	case service.OutcomeUserNotFound:
		b.sendMessage(chatID, "Foydalanuvchi topilmadi — tranzaksiya bekor qilindi.")
	case service.OutcomeInsufficientBalance:
		b.sendMessage(chatID, "Foydalanuvchi balansida yetarli mablag' yo'q — tranzaksiya bekor qilindi.")
	case service.OutcomeApproved:
		b.sendMessage(chatID, "✅ Tranzaksiya tasdiqlandi va balansdan yechildi.")
		b.notifyMemberOfWithdrawal(ctx, txID, true, note)
	case service.OutcomeDeclined:
		b.sendMessage(chatID, "❌ Tranzaksiya rad etildi.")
		b.notifyMemberOfWithdrawal(ctx, txID, false, note)
	}
}

func (b *Bot) notifyMemberOfWithdrawal(ctx context.Context, txID int64, approved bool, note string) {
	trx, err := b.service.GetTransaction(ctx, txID)
	if err != nil || trx == nil {
		return
	}
	if approved {
		b.sendMessage(trx.MemberID, fmt.Sprintf("💰 Sizning withdraw so'rovingiz (ID:%d) tasdiqlandi.", txID))
		return
	}
	reason := note
	if reason == "" {
		reason = "—"
	}
	b.sendMessage(trx.MemberID, fmt.Sprintf("❌ Sizning withdraw so'rovingiz (ID:%d) rad etildi. Sabab: %s", txID, reason))
}

func (b *Bot) handleManualPayout(ctx context.Context, chatID, adminID int64, args string) {
	parts := strings.Fields(args)
	if len(parts) < 2 {
		b.sendMessage(chatID, "Foydalanish: /manual_payout <user_id> <amount> [method] [note]")
		return
	}
	memberID, err1 := strconv.ParseInt(parts[0], 10, 64)
	amount, err2 := decimal.NewFromString(parts[1])
	if err1 != nil || err2 != nil {
		b.sendMessage(chatID, "user_id va amount to'g'ri formatda bo'lishi kerak.")
		return
	}
	method := "manual"
	if len(parts) > 2 {
		method = parts[2]
	}
	note := ""
	if len(parts) > 3 {
		note = strings.Join(parts[3:], " ")
	}

	outcome, err := b.service.ManualPayout(ctx, adminID, memberID, amount, method, note)
	if err != nil {
		if errors.Is(err, service.ErrInvalidAmount) {
			b.sendMessage(chatID, "Summa musbat bo'lishi kerak.")
			return
		}
		b.logger.Errorf("Manual payout failed: %v", err)
		b.sendMessage(chatID, "Xatolik yuz berdi. Keyinroq urinib ko'ring.")
		return
	}

	switch outcome {
	case service.OutcomeUserNotFound:
		b.sendMessage(chatID, "Foydalanuvchi topilmadi.")
	case service.OutcomeInsufficientBalance:
		b.sendMessage(chatID, "Foydalanuvchining balansida yetarli mablag' yo'q.")
	case service.OutcomeOk:
		b.sendMessage(chatID, fmt.Sprintf("✅ Manual payout: %s to user %d (method: %s)", amount.StringFixed(2), memberID, method))
		b.sendMessage(memberID, fmt.Sprintf("💸 Sizga %s summa qo'lda to'lov sifatida yuborildi (method: %s).", amount.StringFixed(2), method))
	}
}

func (b *Bot) handleSetRole(ctx context.Context, chatID int64, args string) {
	parts := strings.Fields(args)
	if len(parts) != 2 {
		b.sendMessage(chatID, "Foydalanish: /setrole <user_id> <role>")
		return
	}
	target, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		b.sendMessage(chatID, "user_id raqam bo'lishi kerak.")
		return
	}

	role := models.Role(strings.ToLower(parts[1]))
	if err := b.service.SetRole(ctx, target, role); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidRole):
			b.sendMessage(chatID, "Noto'g'ri rol.")
		case errors.Is(err, service.ErrMemberNotFound):
			b.sendMessage(chatID, "Foydalanuvchi topilmadi.")
		default:
			b.logger.Errorf("Failed to set role: %v", err)
			b.sendMessage(chatID, "Xatolik yuz berdi.")
		}
		return
	}
	b.sendMessage(chatID, fmt.Sprintf("✅ Rol muvaffaqiyatli o'rnatildi: %d -> %s", target, role))
	b.sendMessage(target, fmt.Sprintf("🔔 Sizga '%s' roli berildi.", role))
}

func (b *Bot) handleSetBlocked(ctx context.Context, chatID int64, args string, blocked bool) {
	target, err := strconv.ParseInt(strings.TrimSpace(args), 10, 64)
	if err != nil {
		b.sendMessage(chatID, "Foydalanish: /block <user_id> yoki /unblock <user_id>")
		return
	}
	if err := b.service.SetBlocked(ctx, target, blocked); err != nil {
		if errors.Is(err, service.ErrMemberNotFound) {
			b.sendMessage(chatID, "Foydalanuvchi topilmadi.")
			return
		}
		b.logger.Errorf("Failed to update blocked flag: %v", err)
		return
	}
	if blocked {
		b.sendMessage(chatID, fmt.Sprintf("🚫 Foydalanuvchi %d bloklandi.", target))
	} else {
		b.sendMessage(chatID, fmt.Sprintf("✅ Foydalanuvchi %d blokdan chiqarildi.", target))
	}
}

func (b *Bot) handleUsers(ctx context.Context, chatID int64, args string) {
	page := 1
	if p, err := strconv.Atoi(strings.TrimSpace(args)); err == nil && p > 0 {
		page = p
	}

	members, totalPages, err := b.service.ListMembers(ctx, page, 10)
	if err != nil {
		b.logger.Errorf("Failed to list members: %v", err)
		return
	}

	lines := []string{fmt.Sprintf("📋 Foydalanuvchilar — Sahifa %d/%d", page, totalPages)}
	for _, m := range members {
		ref := "-"
		if m.ReferrerID != nil {
			ref = strconv.FormatInt(*m.ReferrerID, 10)
		}
		lines = append(lines, fmt.Sprintf(
			"%d | %s | %s | bal:%s | ref:%s",
			m.ID, m.DisplayName, m.Role, m.Balance.StringFixed(2), ref,
		))
	}
	b.sendMessage(chatID, strings.Join(lines, "\n"))
}

func (b *Bot) handleExportWithdraws(ctx context.Context, chatID int64) {
	var buf bytes.Buffer
	rows, err := b.service.ExportPendingWithdrawalsCSV(ctx, &buf)
	if err != nil {
		b.logger.Errorf("CSV export failed: %v", err)
		b.sendMessage(chatID, "CSV eksportda xato yuz berdi.")
		return
	}
	if rows == 0 {
		b.sendMessage(chatID, "Pending withdraw topilmadi — eksport qilishga hojati yo'q.")
		return
	}
	b.sendDocument(chatID, "pending_withdraws.csv", buf.Bytes(), "Pending withdraws CSV")
}

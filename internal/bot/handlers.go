package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/sardorbek/referral_bot/internal/service"
	"github.com/shopspring/decimal"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func (b *Bot) HandleUpdate(update tgbotapi.Update) {
	ctx := context.Background()
	command := update.Message.Command()
	args := update.Message.CommandArguments()
	chatID := update.Message.Chat.ID
	userID := update.Message.From.ID

	b.logger.Debugf("Command /%s from user %d", command, userID)

	switch command {
	case "start":
		b.handleStart(ctx, chatID, update.Message.From, args)
	case "me":
		b.handleMe(ctx, chatID, userID)
	case "balance":
		b.handleBalance(ctx, chatID, userID)
	case "tree":
		b.handleTree(ctx, chatID, userID)
	case "downline":
		b.handleDownline(ctx, chatID, userID)
	case "withdraw":
		b.handleWithdraw(ctx, chatID, userID, args)
	case "transactions":
		b.handleTransactions(ctx, chatID, userID)
	default:
		if b.isAdmin(userID) {
			b.handleAdminCommand(ctx, chatID, userID, command, args)
		}
	}
}

func (b *Bot) handleStart(ctx context.Context, chatID int64, from *tgbotapi.User, args string) {
	var referrerID *int64
	if ref, err := strconv.ParseInt(strings.TrimSpace(args), 10, 64); err == nil {
		referrerID = &ref
	}

	displayName := from.UserName
	if displayName == "" {
		displayName = from.FirstName
	}

	created, err := b.service.RegisterMember(ctx, from.ID, displayName, referrerID)
	if err != nil {
		b.logger.Errorf("Failed to register member %d: %v", from.ID, err)
		b.sendMessage(chatID, "Xatolik yuz berdi. Keyinroq urinib ko'ring.")
		return
	}

	me, err := b.API.GetMe()
	if err != nil {
		b.logger.Errorf("getMe failed: %v", err)
		return
	}
	refLink := fmt.Sprintf("https://t.me/%s?start=%d", me.UserName, from.ID)

	if !created {
		b.sendMessage(chatID, fmt.Sprintf("Siz allaqachon ro'yxatda bo'lgansiz ✅\nSizning referal link: %s", refLink))
		return
	}
	b.sendMessage(chatID, fmt.Sprintf(
		"🎉 Salom, %s!\nSiz muvaffaqiyatli ro'yxatdan o'tdingiz.\n\n👥 Sizning referal linkingiz:\n%s",
		from.FirstName, refLink,
	))
}

func (b *Bot) handleMe(ctx context.Context, chatID, userID int64) {
	member, err := b.service.GetMember(ctx, userID)
	if err != nil {
		b.logger.Errorf("Failed to get member %d: %v", userID, err)
		return
	}
	if member == nil {
		b.sendMessage(chatID, "Siz ro'yxatda yo'q.")
		return
	}
	blocked := "❌"
	if member.Blocked {
		blocked = "✅"
	}
	b.sendMessage(chatID, fmt.Sprintf(
		"👤 %s\nID: %d\nRol: %s\nDirect referrals: %d\nBalance: %s\nBlocked: %s",
		member.DisplayName, member.ID, member.Role, member.ReferralCount, member.Balance.StringFixed(2), blocked,
	))
}

func (b *Bot) handleBalance(ctx context.Context, chatID, userID int64) {
	member, err := b.service.GetMember(ctx, userID)
	if err != nil {
		b.logger.Errorf("Failed to get member %d: %v", userID, err)
		return
	}
	balance := decimal.Zero
	if member != nil {
		balance = member.Balance
	}
	b.sendMessage(chatID, fmt.Sprintf("💳 Sizning balansingiz: %s", balance.StringFixed(2)))
}

func (b *Bot) handleTree(ctx context.Context, chatID, userID int64) {
	tree, err := b.service.RenderTree(ctx, userID, b.config.MaxTreeDepth)
	if err != nil {
		b.logger.Errorf("Failed to render tree for %d: %v", userID, err)
		return
	}
	if tree == "" {
		b.sendMessage(chatID, "Siz hali hech kimni taklif qilmagansiz 🌱")
		return
	}
	b.sendMessage(chatID, fmt.Sprintf("🌳 Sizning referal daraxtingiz:\n\n<pre>%s</pre>", tree))
}

func (b *Bot) handleDownline(ctx context.Context, chatID, userID int64) {
	total, err := b.service.CountDescendants(ctx, userID)
	if err != nil {
		b.logger.Errorf("Failed to count downline of %d: %v", userID, err)
		return
	}
	b.sendMessage(chatID, fmt.Sprintf("👥 Sizning barcha avlodlaringiz soni: %d", total))
}

func (b *Bot) handleWithdraw(ctx context.Context, chatID, userID int64, args string) {
	amount, err := decimal.NewFromString(strings.TrimSpace(args))
	if err != nil {
		b.sendMessage(chatID, "Foydalanish: /withdraw <sum> (masalan: /withdraw 100)")
		return
	}

	trx, err := b.service.RequestWithdraw(ctx, userID, amount, "manual", "")
	if err != nil {
		switch err {
		case service.ErrInvalidAmount:
			b.sendMessage(chatID, "Summa musbat bo'lishi kerak.")
		case service.ErrMemberNotFound:
			b.sendMessage(chatID, "Siz ro'yxatda mavjud emassiz.")
		default:
			b.logger.Errorf("Failed to create withdrawal for %d: %v", userID, err)
			b.sendMessage(chatID, "Xatolik yuz berdi. Keyinroq urinib ko'ring.")
		}
		return
	}

	b.sendMessage(chatID, fmt.Sprintf("💸 Yechib olish so'rovi qabul qilindi. TX_ID: %d. Admin tasdiqlashini kuting.", trx.ID))
	for _, admin := range b.config.AdminIDList() {
		b.sendMessage(admin, fmt.Sprintf(
			"💸 Yangi withdraw so'rovi\nUser: %d\nAmount: %s\nTX_ID: %d\n/confirm_withdraw %d yoki /decline_withdraw %d",
			userID, trx.Amount.StringFixed(2), trx.ID, trx.ID, trx.ID,
		))
	}
}

func (b *Bot) handleTransactions(ctx context.Context, chatID, userID int64) {
	txs, err := b.service.ListMemberTransactions(ctx, userID)
	if err != nil {
		b.logger.Errorf("Failed to list transactions of %d: %v", userID, err)
		return
	}
	if len(txs) == 0 {
		b.sendMessage(chatID, "Tranzaksiyalar topilmadi.")
		return
	}
	lines := make([]string, 0, len(txs))
	for _, t := range txs {
		lines = append(lines, fmt.Sprintf(
			"ID:%d | %s | %s | %s | %s",
			t.ID, t.Type, t.Amount.StringFixed(2), t.Status, t.CreatedAt.Format("2006-01-02 15:04"),
		))
	}
	b.sendMessage(chatID, "🧾 Sizning tranzaksiyalaringiz:\n\n"+strings.Join(lines, "\n"))
}

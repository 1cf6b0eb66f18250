package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Role string

const (
	RoleOwner    Role = "owner"
	RoleAdmin    Role = "admin"
	RoleManager  Role = "manager"
	RoleWorker   Role = "worker"
	RoleDiller   Role = "diller"
	RoleDastafka Role = "dastafka"
	RoleGuest    Role = "guest"
)

func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleManager, RoleWorker, RoleDiller, RoleDastafka, RoleGuest:
		return true
	}
	return false
}

type TxType string

const (
	TxTypeBonus    TxType = "bonus"
	TxTypeWithdraw TxType = "withdraw"
	TxTypeManual   TxType = "manual"
)

type TxStatus string

const (
	TxStatusPending  TxStatus = "pending"
	TxStatusApproved TxStatus = "approved"
	TxStatusDeclined TxStatus = "declined"
)

// Member is a participant of the referral network. The primary key is the
// external account id (Telegram id); ReferrerID is set once at registration
// and never changes afterwards.
type Member struct {
	ID            int64           `gorm:"primaryKey" json:"id"`
	DisplayName   string          `json:"display_name"`
	ReferrerID    *int64          `gorm:"index" json:"referrer_id,omitempty"`
	Role          Role            `gorm:"type:varchar(16);default:guest" json:"role"`
	Balance       decimal.Decimal `gorm:"type:numeric(20,2);default:0" json:"balance"`
	ReferralCount int             `gorm:"default:0" json:"referral_count"`
	Blocked       bool            `gorm:"default:false" json:"blocked"`
	CreatedAt     time.Time       `json:"created_at"`
}

// Transaction is an append-only ledger entry. Amount is always stored
// positive; the sign of the balance effect follows from Type. The only
// mutation a transaction ever sees is the single pending -> terminal
// transition plus note appension.
type Transaction struct {
	ID          int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	MemberID    int64           `gorm:"index" json:"member_id"`
	Amount      decimal.Decimal `gorm:"type:numeric(20,2)" json:"amount"`
	Type        TxType          `gorm:"type:varchar(16)" json:"type"`
	Method      string          `json:"method"`
	Status      TxStatus        `gorm:"type:varchar(16);index;default:pending" json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
	ProcessedAt *time.Time      `json:"processed_at,omitempty"`
	AdminID     *int64          `json:"admin_id,omitempty"`
	Note        string          `gorm:"default:''" json:"note"`
}

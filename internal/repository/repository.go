package repository

import (
	"github.com/sardorbek/referral_bot/utils"
	"gorm.io/gorm"
)

type Repository struct {
	db     *gorm.DB
	logger *utils.Logger
}

func NewRepository(db *gorm.DB, logger *utils.Logger) *Repository {
	return &Repository{db: db, logger: logger}
}

// conn returns the transaction handle when one is passed, the root handle
// otherwise. Every mutating method accepts an optional tx so the service can
// group multi-row operations into one unit of work.
func (r *Repository) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

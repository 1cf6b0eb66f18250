package db

import (
	"time"

	"github.com/sardorbek/referral_bot/internal/models"
	"github.com/sardorbek/referral_bot/utils"
	"gorm.io/driver/postgres"

	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

func ConnectDb(url string, log *utils.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  url,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		Logger:         gormLogger.Default.LogMode(gormLogger.Error),
		TranslateError: true,
	})

	if err != nil {
		return nil, err
	}

	log.Info("✅ Database connection successfully")

	log.Info("📦 Setting database connection pool...")
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxIdleConns(20)
	sqlDB.SetMaxOpenConns(200)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return db, nil
}

func Migrate(db *gorm.DB, trigger bool, log *utils.Logger) error {

	if trigger {
		log.Info("📦 Migrating database...")
		models := []interface{}{
			&models.Member{},
			&models.Transaction{},
		}

		if err := db.AutoMigrate(models...); err != nil {
			log.Errorf("✖ Failed to migrate database: %v", err)
			return err
		}
	}

	log.Info("✅ Database migration done")
	return nil
}

package db

import (
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/duetapp/duet-bot/internal/config"
)

// NewDB opens the database configured by cfg and migrates the schema.
// MYSQL_DSN selects the mysql dialect; the default is a local sqlite file,
// which is how the bot runs in a single-process deployment.
func NewDB(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	if cfg.DB.DSN != "" {
		dialector = mysql.Open(cfg.DB.DSN)
	} else {
		dialector = sqlite.Open(cfg.DB.SQLitePath)
	}

	database, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true, // surface gorm.ErrDuplicatedKey across dialects
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}

	// AutoMigrate keeps the schema in sync with the models.
	if err := database.AutoMigrate(&User{}, &ConversationState{}, &Rating{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	return database, nil
}

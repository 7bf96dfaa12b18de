package server

import (
	"fmt"

	"github.com/golang/glog"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"taskboard/internal/config"
	"taskboard/internal/model"
)

// OpenDB connects the local user directory and migrates its schema.
func OpenDB(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case config.DriverSQLite:
		dialector = sqlite.Open(cfg.SQLitePath)
	default:
		dialector = postgres.Open(cfg.PostgresDSN())
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("❌ failed to connect to DB: %w", err)
	}
	glog.Infof("✅ Connected to database (%s)", cfg.DBDriver)

	if err := db.AutoMigrate(&model.User{}); err != nil {
		return nil, fmt.Errorf("❌ failed to migrate users: %w", err)
	}
	return db, nil
}

package config

import (
	"log"
	"os"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens the subscription store: MySQL when MYSQL_DSN is set, otherwise
// a local SQLite file (SQLITE_PATH, default catalog.db).
func NewDB() (*gorm.DB, error) {
	logMode := logger.Warn
	if os.Getenv("GORM_LOG") == "off" {
		logMode = logger.Silent
	}

	gormLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold: time.Second,
			LogLevel:      logMode,
			Colorful:      true,
		},
	)

	var dialector gorm.Dialector
	if dsn := os.Getenv("MYSQL_DSN"); dsn != "" {
		dialector = mysql.Open(dsn)
	} else {
		dialector = sqlite.Open(GetEnv("SQLITE_PATH", "catalog.db"))
	}
	return gorm.Open(dialector, &gorm.Config{Logger: gormLogger})
}

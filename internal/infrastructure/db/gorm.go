package db

import (
	"fmt"
	"log"
	"strings"
	"time"

	"loan-backoffice/internal/domain/accrual"
	"loan-backoffice/internal/domain/audit"
	"loan-backoffice/internal/domain/banktx"
	"loan-backoffice/internal/domain/disbursement"
	"loan-backoffice/internal/domain/note"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ParseLogLevel maps DB_LOG_LEVEL to a gorm logger level. Unknown values
// fall back to Warn.
func ParseLogLevel(s string) logger.LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}

func gormConfig(level logger.LogLevel) *gorm.Config {
	return &gorm.Config{
		Logger: logger.Default.LogMode(level),
		// unique violations surface as gorm.ErrDuplicatedKey
		TranslateError: true,
		// open() pings once after pool tuning
		DisableAutomaticPing: true,
		NowFunc:              func() time.Time { return time.Now().UTC() },
	}
}

func OpenGorm(dsn string, level logger.LogLevel) (*gorm.DB, error) {
	return open(mysql.Open(dsn), level, func(db *gorm.DB) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		sqlDB.SetMaxOpenConns(30)
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
		sqlDB.SetConnMaxIdleTime(10 * time.Minute)
		return nil
	})
}

// OpenGormWithDialector opens and pings an arbitrary dialector; tests hand it
// a sqlmock-backed connection.
func OpenGormWithDialector(dial gorm.Dialector) (*gorm.DB, error) {
	return open(dial, logger.Warn, nil)
}

// OpenSQLite opens a single-connection SQLite database. One connection keeps
// ":memory:" databases alive and serializes writers.
func OpenSQLite(path string, level logger.LogLevel) (*gorm.DB, error) {
	return open(sqlite.Open(path), level, func(db *gorm.DB) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		sqlDB.SetMaxOpenConns(1)
		return nil
	})
}

func open(dial gorm.Dialector, level logger.LogLevel, tune func(*gorm.DB) error) (*gorm.DB, error) {
	db, err := gorm.Open(dial, gormConfig(level))
	if err != nil {
		return nil, err
	}
	if tune != nil {
		if err := tune(db); err != nil {
			return nil, err
		}
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("gorm: ping %s: %w", dial.Name(), err)
	}
	log.Printf("gorm: connected (%s)", dial.Name())
	return db, nil
}

// Models lists every persisted type in dependency order.
func Models() []any {
	return []any{
		&disbursement.Disbursement{},
		&note.PromissoryNote{},
		&banktx.BankTransaction{},
		&accrual.InterestAccrual{},
		&audit.Entry{},
	}
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("gorm: migrate: %w", err)
	}
	log.Printf("gorm: migrated %d tables", len(Models()))
	return nil
}

// Package dbtest opens throwaway SQLite ledgers for tests.
package dbtest

import (
	"testing"

	"loan-backoffice/internal/adapter/repository/mysql"
	"loan-backoffice/internal/domain/uow"
	"loan-backoffice/internal/infrastructure/db"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open returns a migrated in-memory database closed at test cleanup.
func Open(t testing.TB) *gorm.DB {
	t.Helper()
	gdb, err := db.OpenSQLite(":memory:", logger.Silent)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return gdb
}

// Ledger bundles pool-bound repositories with a transactional unit of work.
type Ledger struct {
	DB    *gorm.DB
	Repos uow.Repos
	UoW   *mysql.GormUoW
}

func NewLedger(t testing.TB) *Ledger {
	gdb := Open(t)
	return &Ledger{DB: gdb, Repos: mysql.NewRepos(gdb), UoW: mysql.NewGormUoW(gdb)}
}

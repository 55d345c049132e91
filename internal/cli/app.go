package cli

import (
	"context"
	"fmt"
	"log"

	httpadp "loan-backoffice/internal/adapter/http"
	"loan-backoffice/internal/adapter/repository/mysql"
	"loan-backoffice/internal/config"
	"loan-backoffice/internal/infrastructure/cache"
	"loan-backoffice/internal/infrastructure/db"
	"loan-backoffice/internal/usecase/accrual"
	"loan-backoffice/internal/usecase/batch"
	"loan-backoffice/internal/usecase/disbursement"
	"loan-backoffice/internal/usecase/note"
	"loan-backoffice/internal/usecase/reconciliation"
	"loan-backoffice/internal/usecase/reporting"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// app holds every wired dependency for one process.
type app struct {
	cfg *config.Config
	db  *gorm.DB
	rdb *redis.Client

	disbursements  *disbursement.Usecase
	notes          *note.Usecase
	accruals       *accrual.Usecase
	reconciliation *reconciliation.Usecase
	reports        *reporting.Usecase
	runner         *batch.Runner
}

func openDB(cfg *config.Config) (*gorm.DB, error) {
	level := db.ParseLogLevel(cfg.DBLogLevel)
	if cfg.DBDriver == config.DriverSQLite {
		return db.OpenSQLite(cfg.SQLitePath, level)
	}
	return db.OpenGorm(cfg.MySQLDSN(), level)
}

func newApp(cfg *config.Config) (*app, error) {
	gdb, err := openDB(cfg)
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, db: gdb}

	var lock batch.Locker
	if cfg.RedisAddr != "" {
		rdb, err := cache.OpenRedis(cfg.RedisAddr, cfg.RedisDB)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("redis: %w", err)
		}
		a.rdb = rdb
		lock = cache.NewBatchLock(rdb)
	} else {
		log.Printf("REDIS_ADDR not set: idempotency and batch locking disabled")
	}

	repos := mysql.NewRepos(gdb)
	tx := mysql.NewGormUoW(gdb)
	a.disbursements = disbursement.NewUsecase(repos.Disbursements, tx)
	a.notes = note.NewUsecase(repos.Notes, repos.Disbursements, tx, cfg.DefaultInterestRate)
	a.accruals = accrual.NewUsecase(repos.Notes, repos.Accruals)
	a.reconciliation = reconciliation.NewUsecase(repos.Transactions, repos.Notes, repos.Disbursements, tx)
	a.reports = reporting.NewUsecase(repos.Disbursements, repos.Notes, repos.Accruals, a.reconciliation)
	a.runner = batch.NewRunner(a.accruals, a.notes, accrual.Config{DayBasis: cfg.InterestDayBasis}, lock, cfg.BatchTimeout())
	return a, nil
}

func (a *app) handlers() httpadp.Handlers {
	deps := map[string]httpadp.Pinger{
		"db": func(ctx context.Context) error {
			sqlDB, err := a.db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
	if a.rdb != nil {
		deps["redis"] = func(ctx context.Context) error { return a.rdb.Ping(ctx).Err() }
	}
	return httpadp.Handlers{
		Health:         httpadp.NewHandler(deps),
		Disbursements:  httpadp.NewDisbursementHandler(a.disbursements),
		Notes:          httpadp.NewNoteHandler(a.notes, a.accruals),
		Reconciliation: httpadp.NewReconciliationHandler(a.reconciliation),
		Jobs:           httpadp.NewJobHandler(a.runner),
		Reports:        httpadp.NewReportHandler(a.reports),
	}
}

func (a *app) close() {
	if a.rdb != nil {
		_ = a.rdb.Close()
	}
	if sqlDB, err := a.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

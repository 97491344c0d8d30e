package testutil

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/yungbote/streamhub-backend/internal/data/db"
	"github.com/yungbote/streamhub-backend/internal/platform/logger"
)

var (
	pgOnce sync.Once
	pgDB   *gorm.DB
	pgErr  error

	logOnce sync.Once
	logg    *logger.Logger
	logErr  error
)

func Logger(tb testing.TB) *logger.Logger {
	tb.Helper()
	logOnce.Do(func() {
		logg, logErr = logger.New("test")
	})
	if logErr != nil {
		tb.Fatalf("failed to init logger: %v", logErr)
	}
	return logg
}

// DB returns a migrated database for one test. By default every call gets a
// fresh in-memory SQLite database. TEST_POSTGRES_DSN points all tests at a
// shared Postgres instead; TEST_DOCKER_POSTGRES=1 starts one with dockertest.
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()
	if dsn := postgresDSN(tb); dsn != "" {
		return sharedPostgres(tb, dsn)
	}
	name := "file:test_" + strings.ReplaceAll(uuid.NewString(), "-", "") + "?mode=memory&cache=shared"
	svc, err := db.Open(Logger(tb), db.Config{Driver: db.DriverSQLite, SQLitePath: name})
	if err != nil {
		tb.Fatalf("open sqlite: %v", err)
	}
	if err := svc.AutoMigrateAll(); err != nil {
		tb.Fatalf("migrate sqlite: %v", err)
	}
	tb.Cleanup(func() { _ = svc.Close() })
	return svc.DB()
}

// IsPostgres reports whether DB hands out Postgres connections.
func IsPostgres(tb testing.TB) bool {
	tb.Helper()
	return os.Getenv("TEST_POSTGRES_DSN") != "" || os.Getenv("TEST_DOCKER_POSTGRES") == "1"
}

func postgresDSN(tb testing.TB) string {
	if dsn := os.Getenv("TEST_POSTGRES_DSN"); dsn != "" {
		return dsn
	}
	if os.Getenv("TEST_DOCKER_POSTGRES") == "1" {
		return dockerPostgresDSN(tb)
	}
	return ""
}

func sharedPostgres(tb testing.TB, dsn string) *gorm.DB {
	pgOnce.Do(func() {
		pgDB, pgErr = gorm.Open(postgres.Open(dsn), &gorm.Config{
			DisableForeignKeyConstraintWhenMigrating: true,
			TranslateError:                           true,
			Logger:                                   gormLogger.Default.LogMode(gormLogger.Silent),
		})
		if pgErr != nil {
			return
		}
		pgErr = db.AutoMigrateAll(pgDB)
	})
	if pgErr != nil {
		tb.Fatalf("failed to init test postgres: %v", pgErr)
	}
	return pgDB
}

// Tx begins a transaction that is rolled back when the test ends.
func Tx(tb testing.TB, db *gorm.DB) *gorm.DB {
	tb.Helper()
	tx := db.Begin()
	if tx.Error != nil {
		tb.Fatalf("begin tx: %v", tx.Error)
	}
	tb.Cleanup(func() {
		_ = tx.Rollback().Error
	})
	return tx
}

func mustf(tb testing.TB, err error, format string, args ...any) {
	tb.Helper()
	if err != nil {
		tb.Fatalf("%s: %v", fmt.Sprintf(format, args...), err)
	}
}

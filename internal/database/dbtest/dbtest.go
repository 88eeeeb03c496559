// Package dbtest 为测试提供已完成迁移的临时 SQLite 数据库。
package dbtest

import (
	"path/filepath"
	"runtime"
	"testing"

	"go.uber.org/zap"

	"github.com/MorseWayne/catalog_shop/internal/config"
	"github.com/MorseWayne/catalog_shop/internal/database"
)

// MigrationsDir 返回仓库内 SQLite 迁移目录的绝对路径
func MigrationsDir() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "..", "..", "migrations", config.DriverSQLite3)
}

// New 在 t.TempDir() 中创建数据库并执行全部迁移，测试结束时自动关闭
func New(t testing.TB) *database.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "catalog_test.db")
	db, err := database.Open(config.DriverSQLite3, path, zap.NewNop())
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := db.RunMigrations(MigrationsDir()); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
	return db
}

// Exec 依次执行建数据语句
func Exec(t testing.TB, db *database.DB, statements ...string) {
	t.Helper()
	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("exec %q: %v", stmt, err)
		}
	}
}

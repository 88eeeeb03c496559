// Package database 提供数据库连接与迁移功能，支持 MySQL 与 SQLite 两种驱动。
package database

import (
	"database/sql"
	"errors"
	"fmt"

	// 驱动通过 init 注册到 database/sql，后续 sql.Open 按名称查找
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/MorseWayne/catalog_shop/internal/config"
)

// DB 封装数据库连接
type DB struct {
	*sql.DB
	logger *zap.Logger
	driver string
	dsn    string
}

// New 按配置创建数据库连接
func New(cfg *config.Config, logger *zap.Logger) (*DB, error) {
	var dsn string
	switch cfg.Database.Driver {
	case config.DriverMySQL:
		dsn = fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=true&loc=Local",
			cfg.Database.User,
			cfg.Database.Password,
			cfg.Database.Host,
			cfg.Database.Port,
			cfg.Database.DBName,
		)
	case config.DriverSQLite3:
		dsn = cfg.Database.Path
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}

	db, err := Open(cfg.Database.Driver, dsn, logger)
	if err != nil {
		return nil, err
	}

	if cfg.Database.Driver == config.DriverMySQL {
		logger.Info("database connected",
			zap.String("driver", cfg.Database.Driver),
			zap.String("host", cfg.Database.Host),
			zap.Int("port", cfg.Database.Port),
			zap.String("database", cfg.Database.DBName),
		)
	} else {
		logger.Info("database connected",
			zap.String("driver", cfg.Database.Driver),
			zap.String("path", cfg.Database.Path),
		)
	}
	return db, nil
}

// Open 使用给定驱动与 DSN 打开连接并探活。SQLite 的 DSN 为数据库文件路径。
func Open(driver, dsn string, logger *zap.Logger) (*DB, error) {
	if driver == config.DriverSQLite3 {
		dsn = sqliteDSN(dsn)
	}

	sqlDB, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// 配置连接池；SQLite 单写者，限制为一个连接避免 database is locked
	if driver == config.DriverSQLite3 {
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(10)
	}

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &DB{DB: sqlDB, logger: logger, driver: driver, dsn: dsn}, nil
}

// Driver 返回当前驱动名
func (db *DB) Driver() string {
	return db.driver
}

func sqliteDSN(path string) string {
	return "file:" + path + "?_foreign_keys=on&_busy_timeout=5000"
}

// newMigrator 基于独立连接创建 migrate 实例，避免迁移出错时影响主连接。
// 调用方负责 Close 返回的 migrate 实例。
func (db *DB) newMigrator(migrationsDir string) (*migrate.Migrate, error) {
	dsn := db.dsn
	if db.driver == config.DriverMySQL {
		// 迁移文件可能包含多条语句
		dsn += "&multiStatements=true"
	}

	migrateSQLDB, err := sql.Open(db.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database for migration: %w", err)
	}

	var driver migratedb.Driver
	switch db.driver {
	case config.DriverMySQL:
		driver, err = migratemysql.WithInstance(migrateSQLDB, &migratemysql.Config{})
	case config.DriverSQLite3:
		driver, err = migratesqlite.WithInstance(migrateSQLDB, &migratesqlite.Config{})
	default:
		err = fmt.Errorf("unsupported database driver %q", db.driver)
	}
	if err != nil {
		_ = migrateSQLDB.Close()
		return nil, fmt.Errorf("create %s migration driver: %w", db.driver, err)
	}

	// 使用 file:// 协议指定迁移文件目录；migrate 实例关闭时一并关闭 driver 连接
	m, err := migrate.NewWithDatabaseInstance(fmt.Sprintf("file://%s", migrationsDir), db.driver, driver)
	if err != nil {
		_ = driver.Close()
		return nil, fmt.Errorf("create migrate instance: %w", err)
	}
	return m, nil
}

// RunMigrations 执行所有待执行的向上迁移
func (db *DB) RunMigrations(migrationsDir string) error {
	m, err := db.newMigrator(migrationsDir)
	if err != nil {
		return err
	}
	defer m.Close()

	currentVersion, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("get current version: %w", err)
	}
	if dirty {
		return fmt.Errorf("database is in dirty state at version %d, please check and fix manually", currentVersion)
	}

	db.logger.Info("current migration version", zap.Uint("version", currentVersion))

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			db.logger.Info("no new migrations to apply")
			return nil
		}
		return fmt.Errorf("run migrations: %w", err)
	}

	newVersion, _, err := m.Version()
	if err != nil {
		return fmt.Errorf("get new version: %w", err)
	}

	db.logger.Info("migrations completed successfully",
		zap.Uint("from_version", currentVersion),
		zap.Uint("to_version", newVersion),
	)
	return nil
}

// MigrateDown 执行向下迁移（回滚）
// 注意：这个方法应该谨慎使用，特别是在生产环境中
func (db *DB) MigrateDown(migrationsDir string, steps int) error {
	m, err := db.newMigrator(migrationsDir)
	if err != nil {
		return err
	}
	defer m.Close()

	currentVersion, dirty, err := m.Version()
	if err != nil {
		return fmt.Errorf("get current version: %w", err)
	}
	if dirty {
		return fmt.Errorf("database is in dirty state at version %d", currentVersion)
	}

	db.logger.Info("starting migration rollback",
		zap.Uint("current_version", currentVersion),
		zap.Int("steps", steps),
	)

	if err := m.Steps(-steps); err != nil {
		return fmt.Errorf("migrate down: %w", err)
	}

	newVersion, _, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("get new version: %w", err)
	}

	db.logger.Info("migration rollback completed",
		zap.Uint("from_version", currentVersion),
		zap.Uint("to_version", newVersion),
	)
	return nil
}

// MigrateToVersion 迁移到指定版本
func (db *DB) MigrateToVersion(migrationsDir string, version uint) error {
	m, err := db.newMigrator(migrationsDir)
	if err != nil {
		return err
	}
	defer m.Close()

	currentVersion, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("get current version: %w", err)
	}
	if dirty {
		return fmt.Errorf("database is in dirty state at version %d", currentVersion)
	}

	db.logger.Info("migrating to specific version",
		zap.Uint("current_version", currentVersion),
		zap.Uint("target_version", version),
	)

	if err := m.Migrate(version); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			db.logger.Info("already at target version", zap.Uint("version", version))
			return nil
		}
		return fmt.Errorf("migrate to version %d: %w", version, err)
	}

	db.logger.Info("migration to version completed",
		zap.Uint("from_version", currentVersion),
		zap.Uint("to_version", version),
	)
	return nil
}

// ForceMigrationVersion 强制设置迁移版本状态
// 注意：只在修复脏状态时使用
func (db *DB) ForceMigrationVersion(migrationsDir string, version uint) error {
	m, err := db.newMigrator(migrationsDir)
	if err != nil {
		return err
	}
	defer m.Close()

	db.logger.Info("forcing migration version", zap.Uint("version", version))

	if err := m.Force(int(version)); err != nil {
		return fmt.Errorf("force migration version: %w", err)
	}

	db.logger.Info("migration version forced successfully", zap.Uint("version", version))
	return nil
}

// MigrationVersion 返回当前迁移版本与脏状态；尚未执行任何迁移时 applied 为 false
func (db *DB) MigrationVersion(migrationsDir string) (version uint, dirty bool, applied bool, err error) {
	m, err := db.newMigrator(migrationsDir)
	if err != nil {
		return 0, false, false, err
	}
	defer m.Close()

	version, dirty, err = m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, false, nil
	}
	if err != nil {
		return 0, false, false, fmt.Errorf("get current version: %w", err)
	}
	return version, dirty, true, nil
}

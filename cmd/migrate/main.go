// Package main 数据库迁移命令行工具，连接参数取自 DB_* 环境变量
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/MorseWayne/catalog_shop/internal/config"
	"github.com/MorseWayne/catalog_shop/internal/database"
	"github.com/MorseWayne/catalog_shop/internal/logger"
)

type migrateOptions struct {
	dir string
}

func newRootCommand() *cobra.Command {
	opts := &migrateOptions{}

	root := &cobra.Command{
		Use:           "migrate",
		Short:         "Manage catalog database migrations",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.dir, "dir", "", "migrations directory (default MIGRATIONS_DIR or migrations/<driver>)")

	root.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withDB(opts, func(db *database.DB, dir string) error {
					return db.RunMigrations(dir)
				})
			},
		},
		newDownCommand(opts),
		&cobra.Command{
			Use:   "goto <version>",
			Short: "Migrate up or down to a specific version",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				v, err := parseVersion(args[0])
				if err != nil {
					return err
				}
				if v == 0 {
					return fmt.Errorf("target version must be positive, use down to roll back everything")
				}
				return withDB(opts, func(db *database.DB, dir string) error {
					return db.MigrateToVersion(dir, v)
				})
			},
		},
		&cobra.Command{
			Use:   "force <version>",
			Short: "Set the migration version without running migrations (clears the dirty flag)",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				v, err := parseVersion(args[0])
				if err != nil {
					return err
				}
				return withDB(opts, func(db *database.DB, dir string) error {
					return db.ForceMigrationVersion(dir, v)
				})
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the current migration version",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withDB(opts, func(db *database.DB, dir string) error {
					v, dirty, applied, err := db.MigrationVersion(dir)
					if err != nil {
						return err
					}
					out := cmd.OutOrStdout()
					switch {
					case !applied:
						fmt.Fprintf(out, "%s: no migrations applied\n", db.Driver())
					case dirty:
						fmt.Fprintf(out, "%s: version %d (dirty)\n", db.Driver(), v)
					default:
						fmt.Fprintf(out, "%s: version %d\n", db.Driver(), v)
					}
					return nil
				})
			},
		},
	)
	return root
}

func newDownCommand(opts *migrateOptions) *cobra.Command {
	var steps int
	cmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if steps < 1 {
				return fmt.Errorf("--steps must be at least 1")
			}
			return withDB(opts, func(db *database.DB, dir string) error {
				return db.MigrateDown(dir, steps)
			})
		},
	}
	cmd.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")
	return cmd
}

func parseVersion(s string) (uint, error) {
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid version %q", s)
	}
	return uint(v), nil
}

// withDB 加载配置并连接数据库后执行 fn
func withDB(opts *migrateOptions, fn func(db *database.DB, dir string) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	lg, err := logger.New(cfg.App.Env, cfg.Log.Level, cfg.Log.Encoding, "migrate", cfg.App.Version)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = lg.Sync() }()

	dir := opts.dir
	if dir == "" {
		dir = cfg.Migrations.Dir
	}

	db, err := database.New(cfg, lg)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			lg.Error("failed to close database", zap.Error(err))
		}
	}()

	lg.Info("using migrations directory", zap.String("path", dir), zap.String("driver", db.Driver()))
	return fn(db, dir)
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "migrate:", err)
		os.Exit(1)
	}
}
